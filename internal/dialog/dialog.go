// Package dialog implements the conflict/error dialog protocol of §4.9: an
// abstract "ask user" primitive that lets a background job block on a
// foreground decision without the core speaking any GUI toolkit's types.
package dialog

import (
	"sync"
	"time"
)

// Response is one of the allowed dialog response tags.
type Response int

const (
	Cancel Response = iota
	Skip
	SkipAll
	Retry
	Delete
	DeleteAll
	Replace
	ReplaceAll
	Merge
	MergeAll
	Rename
	Proceed
	EmptyTrash
)

// ResponseSet is a bitset of allowed responses for a given Request.
type ResponseSet uint32

const (
	AllowCancel ResponseSet = 1 << iota
	AllowSkip
	AllowSkipAll
	AllowRetry
	AllowDelete
	AllowDeleteAll
	AllowReplace
	AllowReplaceAll
	AllowMerge
	AllowMergeAll
	AllowRename
	AllowProceed
	AllowEmptyTrash
)

// Has reports whether r is set in s.
func (s ResponseSet) Has(r ResponseSet) bool { return s&r != 0 }

// Request is the input to the "ask user" primitive.
type Request struct {
	Heading             string
	Body                string
	Details             string
	Allowed             ResponseSet
	DelayInteractivity   bool
}

// Reply is the output of the "ask user" primitive.
type Reply struct {
	Response Response
	NewName  string // only meaningful when Response == Rename
}

// Pauser is implemented by a progress handle so the protocol can stop its
// clock while blocked on a dialog (§4.9 "Pause semantics").
type Pauser interface {
	Pause()
	Resume()
}

// Presenter renders a Request on the foreground executor and eventually
// calls the supplied callback with the user's Reply. Implementations must
// not block; Ask does the blocking on the caller's behalf.
type Presenter interface {
	Present(req Request, respond func(Reply))
}

// Service coordinates the blocking handshake between a job's goroutine and
// a foreground Presenter, and tracks delay-interactivity timing per job.
type Service struct {
	presenter Presenter

	mu            sync.Mutex
	lastDialogAt  time.Time
	jobStartedAt  time.Time
	hasJobStarted bool
}

// NewService wraps a Presenter.
func NewService(p Presenter) *Service {
	return &Service{presenter: p}
}

// MarkJobStarted records when the owning job began, for delay-interactivity
// computation.
func (s *Service) MarkJobStarted(t time.Time) {
	s.mu.Lock()
	s.jobStartedAt = t
	s.hasJobStarted = true
	s.mu.Unlock()
}

// delayInteractivity implements "delay_interactivity = (elapsed > 2s) AND
// (time_since_last_dialog < 1s)". A job that has not shown a dialog yet
// counts as meeting the second condition.
func (s *Service) delayInteractivity(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasJobStarted {
		return false
	}
	elapsed := now.Sub(s.jobStartedAt)
	sinceLast := now.Sub(s.lastDialogAt)
	return elapsed > 2*time.Second && (s.lastDialogAt.IsZero() || sinceLast < time.Second)
}

// Ask blocks the calling goroutine (the job thread) until the foreground
// answers req. If pauser is non-nil, the progress handle is paused for the
// duration of the wait, per §4.9.
func (s *Service) Ask(req Request, pauser Pauser) Reply {
	now := time.Now()
	req.DelayInteractivity = s.delayInteractivity(now)

	s.mu.Lock()
	s.lastDialogAt = now
	s.mu.Unlock()

	if pauser != nil {
		pauser.Pause()
		defer pauser.Resume()
	}

	var mu sync.Mutex
	cond := sync.NewCond(&mu)
	var reply Reply
	done := false

	s.presenter.Present(req, func(r Reply) {
		mu.Lock()
		reply = r
		done = true
		mu.Unlock()
		cond.Signal()
	})

	mu.Lock()
	for !done {
		cond.Wait()
	}
	mu.Unlock()
	return reply
}

// AutoPresenter is a Presenter that answers every Request synchronously
// with a fixed Reply. It is useful for headless/batch callers (and tests)
// that want no interactive prompts at all.
type AutoPresenter struct {
	Reply Reply
}

func (a AutoPresenter) Present(req Request, respond func(Reply)) {
	respond(a.Reply)
}
