package dialog

import (
	"testing"
	"time"
)

type recordingPauser struct {
	paused, resumed int
}

func (p *recordingPauser) Pause()  { p.paused++ }
func (p *recordingPauser) Resume() { p.resumed++ }

func TestAskReturnsPresenterReply(t *testing.T) {
	svc := NewService(AutoPresenter{Reply: Reply{Response: Skip}})
	reply := svc.Ask(Request{Heading: "h", Allowed: AllowSkip | AllowCancel}, nil)
	if reply.Response != Skip {
		t.Errorf("expected Skip, got %v", reply.Response)
	}
}

func TestAskPausesAndResumes(t *testing.T) {
	svc := NewService(AutoPresenter{Reply: Reply{Response: Cancel}})
	p := &recordingPauser{}
	svc.Ask(Request{}, p)
	if p.paused != 1 || p.resumed != 1 {
		t.Errorf("expected exactly one pause/resume pair, got %+v", p)
	}
}

func TestDelayInteractivity(t *testing.T) {
	svc := NewService(AutoPresenter{Reply: Reply{Response: Cancel}})
	svc.MarkJobStarted(time.Now().Add(-3 * time.Second))

	// First dialog: no prior dialog yet, so "time since last" is treated
	// as satisfied (lastDialogAt is zero) and elapsed > 2s -> delayed.
	if !svc.delayInteractivity(time.Now()) {
		t.Error("expected delay_interactivity on first long-running dialog")
	}
}

func TestResponseSetHas(t *testing.T) {
	s := AllowSkip | AllowCancel
	if !s.Has(AllowSkip) {
		t.Error("expected AllowSkip to be set")
	}
	if s.Has(AllowRetry) {
		t.Error("did not expect AllowRetry to be set")
	}
}
