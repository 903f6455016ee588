// Package undo is the process-wide UndoManager of §6: a stack of
// completed operations the host can walk backwards (and forwards again)
// one step at a time. Jobs never call the stack directly — each job gets
// its own Op from NewOp, accumulates origin/target pairs or permission
// pre-images into it as it runs, and the job's own Finalize/Abort decide
// whether to Commit or Discard it (see internal/job's UndoBuilder).
package undo

import (
	"fmt"
	"os"
	"sync"

	"github.com/spf13/afero"
)

// OpKind names the operation families §6 lists for the undo manager.
type OpKind string

const (
	OpCopy                   OpKind = "copy"
	OpMove                   OpKind = "move"
	OpDuplicate              OpKind = "duplicate"
	OpCreateLink             OpKind = "create_link"
	OpRestoreFromTrash       OpKind = "restore_from_trash"
	OpTrash                  OpKind = "trash"
	OpCreateEmptyFile        OpKind = "create_empty_file"
	OpCreateFileFromTemplate OpKind = "create_file_from_template"
	OpCreateFolder           OpKind = "create_folder"
	OpExtract                OpKind = "extract"
	OpCompress               OpKind = "compress"
	OpRecPermissions         OpKind = "rec_permissions"
)

// OriginTarget is one add_origin_target_pair record.
type OriginTarget struct {
	Origin string
	Target string
}

// PermChange is one pre-image recorded by a recursive permissions job,
// per §4.5 "record pre-image to the undo builder" before applying.
type PermChange struct {
	Path    string
	OldMode uint32
	NewMode uint32
}

// Trasher is the narrow capability Undo/Redo need to reverse a Trash or
// RestoreFromTrash op, declared locally (rather than importing
// internal/trash) the same way internal/job declares PowerInhibitor —
// so this package has no dependency on the concrete trash backend.
type Trasher interface {
	Trash(path string) (trashedPath string, err error)
	RestoreFromTrash(trashedPath, originalPath string) error
}

// Op accumulates one job's undo-relevant state. A job's Finalize calls
// Commit on success, Discard otherwise (§4's "finalize(job) ... records
// the undo builder into the undo manager iff the job completed
// successfully"). Op satisfies internal/job.UndoBuilder.
type Op struct {
	Kind OpKind

	mgr *Manager

	mu          sync.Mutex
	pairs       []OriginTarget
	permChanges []PermChange
	committed   bool
	discarded   bool
}

// AddOriginTargetPair records one source/destination pair produced by a
// copy, move, duplicate, link, trash, restore, create, extract or
// compress step.
func (o *Op) AddOriginTargetPair(origin, target string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.pairs = append(o.pairs, OriginTarget{Origin: origin, Target: target})
}

// AddPermissionsChange records one file or directory's mode before a
// recursive permissions job overwrote it.
func (o *Op) AddPermissionsChange(path string, oldMode, newMode uint32) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.permChanges = append(o.permChanges, PermChange{Path: path, OldMode: oldMode, NewMode: newMode})
}

// Commit records the op onto its manager's undo stack, unless it turned
// out empty (§4.4: "record output_files into the undo builder only if
// at least one archive produced output, else clear the builder") or the
// manager is itself mid-replay (an undo/redo step's own job never grows
// the stack it's being played from).
func (o *Op) Commit() {
	o.mu.Lock()
	already := o.committed || o.discarded
	o.committed = true
	empty := len(o.pairs) == 0 && len(o.permChanges) == 0
	o.mu.Unlock()
	if already || o.mgr == nil {
		return
	}
	if empty {
		return
	}
	o.mgr.push(o)
}

// Discard drops the op: nothing it recorded is remembered. Called on
// job abort, or on Finalize(false) for a failed job.
func (o *Op) Discard() {
	o.mu.Lock()
	o.discarded = true
	o.mu.Unlock()
}

func (o *Op) snapshot() ([]OriginTarget, []PermChange) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]OriginTarget{}, o.pairs...), append([]PermChange{}, o.permChanges...)
}

// maxHistory bounds the undo stack, mirroring internal/jobs' historyMax
// trimming so a long session doesn't grow it without bound.
const maxHistory = 100

// Manager is the process-wide undo/redo stack.
type Manager struct {
	mu        sync.Mutex
	undoStack []*Op
	redoStack []*Op
	operating bool
}

var (
	defaultManager *Manager
	once           sync.Once
)

// Default returns the process-wide manager singleton, mirroring
// internal/jobs.Default's once-initialized pattern.
func Default() *Manager {
	once.Do(func() { defaultManager = NewManager() })
	return defaultManager
}

// NewManager constructs an empty Manager; tests use this for isolation.
func NewManager() *Manager {
	return &Manager{}
}

// NewOp starts a fresh, uncommitted Op of the given kind bound to m.
func (m *Manager) NewOp(kind OpKind) *Op {
	return &Op{Kind: kind, mgr: m}
}

// IsOperating reports whether an Undo or Redo replay is currently in
// flight, per §6's is_operating(). A job started to carry out a replay
// checks this so it doesn't re-enter the undo/redo menu for its own
// dialogs and so its own Commit doesn't grow the stack it came from.
func (m *Manager) IsOperating() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.operating
}

func (m *Manager) push(op *Op) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.operating {
		return
	}
	m.undoStack = append(m.undoStack, op)
	if len(m.undoStack) > maxHistory {
		m.undoStack = append([]*Op{}, m.undoStack[len(m.undoStack)-maxHistory:]...)
	}
	m.redoStack = nil
}

// CanUndo reports whether there is a committed op to undo.
func (m *Manager) CanUndo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.undoStack) > 0
}

// CanRedo reports whether there is an undone op to redo.
func (m *Manager) CanRedo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.redoStack) > 0
}

func (m *Manager) popUndo() (*Op, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.undoStack) == 0 {
		return nil, false
	}
	op := m.undoStack[len(m.undoStack)-1]
	m.undoStack = m.undoStack[:len(m.undoStack)-1]
	return op, true
}

func (m *Manager) popRedo() (*Op, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.redoStack) == 0 {
		return nil, false
	}
	op := m.redoStack[len(m.redoStack)-1]
	m.redoStack = m.redoStack[:len(m.redoStack)-1]
	return op, true
}

// Undo pops the most recently committed Op and reverses it, moving it
// onto the redo stack on success. fs performs the filesystem-level
// reversal (rename back, remove a created path, restore a mode);
// trasher is consulted only for OpTrash/OpRestoreFromTrash and may be
// nil if the host never wired trash support.
func (m *Manager) Undo(fs afero.Fs, trasher Trasher) (*Op, error) {
	op, ok := m.popUndo()
	if !ok {
		return nil, nil
	}

	m.mu.Lock()
	m.operating = true
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		m.operating = false
		m.mu.Unlock()
	}()

	if err := reverse(op, fs, trasher); err != nil {
		m.mu.Lock()
		m.undoStack = append(m.undoStack, op)
		m.mu.Unlock()
		return op, err
	}

	m.mu.Lock()
	m.redoStack = append(m.redoStack, op)
	m.mu.Unlock()
	return op, nil
}

// Redo pops the most recently undone Op and re-applies it.
func (m *Manager) Redo(fs afero.Fs, trasher Trasher) (*Op, error) {
	op, ok := m.popRedo()
	if !ok {
		return nil, nil
	}

	m.mu.Lock()
	m.operating = true
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		m.operating = false
		m.mu.Unlock()
	}()

	if err := apply(op, fs, trasher); err != nil {
		m.mu.Lock()
		m.redoStack = append(m.redoStack, op)
		m.mu.Unlock()
		return op, err
	}

	m.mu.Lock()
	m.undoStack = append(m.undoStack, op)
	m.mu.Unlock()
	return op, nil
}

// reverse undoes op's effect: a copy/duplicate/link/create/extract/
// compress is undone by removing what it produced; a move is undone by
// moving back; a trash is undone by restoring, a restore by re-trashing;
// a permissions change is undone by restoring every pre-image mode.
func reverse(op *Op, fs afero.Fs, trasher Trasher) error {
	pairs, perms := op.snapshot()

	switch op.Kind {
	case OpMove:
		for _, p := range pairs {
			if err := fs.Rename(p.Target, p.Origin); err != nil {
				return fmt.Errorf("undo move %s: %w", p.Target, err)
			}
		}
	case OpCopy, OpDuplicate, OpCreateLink, OpCreateEmptyFile, OpCreateFileFromTemplate, OpCreateFolder, OpExtract, OpCompress:
		for _, p := range pairs {
			if err := fs.RemoveAll(p.Target); err != nil {
				return fmt.Errorf("undo %s %s: %w", op.Kind, p.Target, err)
			}
		}
	case OpTrash:
		if trasher == nil {
			return fmt.Errorf("undo trash: no trash capability wired")
		}
		for _, p := range pairs {
			if err := trasher.RestoreFromTrash(p.Target, p.Origin); err != nil {
				return fmt.Errorf("undo trash %s: %w", p.Origin, err)
			}
		}
	case OpRestoreFromTrash:
		if trasher == nil {
			return fmt.Errorf("undo restore: no trash capability wired")
		}
		for _, p := range pairs {
			if _, err := trasher.Trash(p.Target); err != nil {
				return fmt.Errorf("undo restore %s: %w", p.Target, err)
			}
		}
	case OpRecPermissions:
		for _, pc := range perms {
			if err := fs.Chmod(pc.Path, modeOf(pc.OldMode)); err != nil {
				return fmt.Errorf("undo permissions %s: %w", pc.Path, err)
			}
		}
	}
	return nil
}

// apply re-does op's effect after it was undone; it mirrors reverse with
// source/target swapped.
func apply(op *Op, fs afero.Fs, trasher Trasher) error {
	pairs, perms := op.snapshot()

	switch op.Kind {
	case OpMove:
		for _, p := range pairs {
			if err := fs.Rename(p.Origin, p.Target); err != nil {
				return fmt.Errorf("redo move %s: %w", p.Origin, err)
			}
		}
	case OpTrash:
		if trasher == nil {
			return fmt.Errorf("redo trash: no trash capability wired")
		}
		for _, p := range pairs {
			if _, err := trasher.Trash(p.Origin); err != nil {
				return fmt.Errorf("redo trash %s: %w", p.Origin, err)
			}
		}
	case OpRestoreFromTrash:
		if trasher == nil {
			return fmt.Errorf("redo restore: no trash capability wired")
		}
		for _, p := range pairs {
			if err := trasher.RestoreFromTrash(p.Origin, p.Target); err != nil {
				return fmt.Errorf("redo restore %s: %w", p.Target, err)
			}
		}
	case OpRecPermissions:
		for _, pc := range perms {
			if err := fs.Chmod(pc.Path, modeOf(pc.NewMode)); err != nil {
				return fmt.Errorf("redo permissions %s: %w", pc.Path, err)
			}
		}
	default:
		return fmt.Errorf("%s cannot be redone: its source files no longer exist to recreate it from", op.Kind)
	}
	return nil
}

func modeOf(m uint32) os.FileMode { return os.FileMode(m) }
