package progress

import (
	"testing"
	"time"
)

func TestSnapshotFraction(t *testing.T) {
	h := New()
	h.SetTotals(4, 400)
	h.Report(2, 200, true, "Copying files", "Copying files", "", "/dest")
	snap := h.Snapshot()
	if snap.Fraction != 0.5 {
		t.Errorf("expected fraction 0.5, got %v", snap.Fraction)
	}
	if !snap.HasDestination || snap.Destination != "/dest" {
		t.Errorf("expected destination to be set, got %+v", snap)
	}
}

func TestPauseResumeReflectedInSnapshot(t *testing.T) {
	h := New()
	h.Pause()
	if !h.Snapshot().IsPaused {
		t.Error("expected IsPaused after Pause()")
	}
	h.Resume()
	time.Sleep(minReportInterval)
	if h.Snapshot().IsPaused {
		t.Error("expected !IsPaused after Resume()")
	}
}

func TestCancelReflectedInSnapshot(t *testing.T) {
	h := New()
	h.Cancel()
	if !h.Snapshot().IsCancelled {
		t.Error("expected IsCancelled after Cancel()")
	}
}

func TestNoETAWithoutPartialProgress(t *testing.T) {
	h := New()
	h.SetTotals(10, 1000)
	h.Report(1, 50, false, "", "", "", "")
	snap := h.Snapshot()
	if snap.RemainingSeconds != -1 {
		t.Errorf("expected no ETA when partialProgress is false, got %d", snap.RemainingSeconds)
	}
}
