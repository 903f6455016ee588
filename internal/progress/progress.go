// Package progress implements the progress model of §4.6: a handle fed by
// per-file callbacks that produces rate-limited, phrased snapshots for UI
// consumption (status_long, status_short, details, fraction, ETA).
package progress

import (
	"sync"
	"time"
)

// secondsNeededForReliableTransferRate mirrors the original's
// SECONDS_NEEDED_FOR_RELIABLE_TRANSFER_RATE: below this many elapsed
// seconds, rate/ETA are too noisy to report.
const secondsNeededForReliableTransferRate = 8

// minReportInterval coalesces reports to avoid flooding the UI thread.
const minReportInterval = 100 * time.Millisecond

// Snapshot is the read-only view a UI consumer receives.
type Snapshot struct {
	StatusLong        string
	StatusShort       string
	Details           string
	Fraction          float64 // in [0,1]
	RemainingSeconds  int64   // -1 if unknown
	ElapsedSeconds    float64
	IsPaused          bool
	IsCancelled       bool
	Destination       string
	HasDestination    bool
}

// Handle tracks one job's progress state and emits rate-limited snapshots.
// It is safe for concurrent use: the worker goroutine reports progress
// while the UI thread polls Snapshot.
type Handle struct {
	mu sync.Mutex

	startTime    time.Time
	pausedAt     time.Time
	pausedTotal  time.Duration
	paused       bool
	cancelled    bool

	totalFiles, doneFiles int
	totalBytes, doneBytes int64
	partialProgress       bool // transfer_info.partial_progress

	lastReportTime time.Time
	lastSnapshot   Snapshot

	statusLong  string
	statusShort string
	details     string
	destination string
}

// New creates a Handle with its clock started.
func New() *Handle {
	return &Handle{startTime: time.Now(), lastSnapshot: Snapshot{RemainingSeconds: -1}}
}

// Pause stops the elapsed-time clock (§4.9 "Pause semantics" — while
// blocked on a dialog, the job's timer is stopped and progress is marked
// paused, so ETA isn't corrupted by user-think-time).
func (h *Handle) Pause() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.paused {
		return
	}
	h.paused = true
	h.pausedAt = time.Now()
}

// Resume restarts the elapsed-time clock after a pause.
func (h *Handle) Resume() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.paused {
		return
	}
	h.paused = false
	h.pausedTotal += time.Since(h.pausedAt)
}

// Cancel marks the progress as cancelled; subsequent snapshots reflect it.
func (h *Handle) Cancel() {
	h.mu.Lock()
	h.cancelled = true
	h.mu.Unlock()
}

// SetTotals records the scan totals (SourceInfo.num_files/num_bytes).
func (h *Handle) SetTotals(files int, bytes int64) {
	h.mu.Lock()
	h.totalFiles = files
	h.totalBytes = bytes
	h.mu.Unlock()
}

// Report records progress for the current file and recomputes the phrased
// status. partialProgress should be true whenever the backend reported a
// byte count strictly between 0 and the file's total — see
// TransferInfo.partial_progress in §3.
func (h *Handle) Report(doneFiles int, doneBytes int64, partialProgress bool, statusLong, statusShort, details, destination string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.doneFiles = doneFiles
	h.doneBytes = doneBytes
	h.partialProgress = partialProgress
	h.statusLong = statusLong
	h.statusShort = statusShort
	h.details = details
	h.destination = destination
}

// elapsed returns time elapsed since start, excluding paused time. Caller
// must hold h.mu.
func (h *Handle) elapsedLocked() time.Duration {
	total := time.Since(h.startTime) - h.pausedTotal
	if h.paused {
		total -= time.Since(h.pausedAt)
	}
	if total < 0 {
		total = 0
	}
	return total
}

// Snapshot returns the current progress snapshot, rate-limiting repeated
// calls to at most one fresh computation per minReportInterval — except
// the final report (doneFiles == totalFiles) which always recomputes, per
// §4.6's "Rate limiting" rule.
func (h *Handle) Snapshot() Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()

	final := h.totalFiles > 0 && h.doneFiles >= h.totalFiles
	now := time.Now()
	if !final && now.Sub(h.lastReportTime) < minReportInterval {
		return h.lastSnapshot
	}
	h.lastReportTime = now

	elapsed := h.elapsedLocked()
	var fraction float64
	if h.totalBytes > 0 {
		fraction = float64(h.doneBytes) / float64(h.totalBytes)
	} else if h.totalFiles > 0 {
		fraction = float64(h.doneFiles) / float64(h.totalFiles)
	}
	if fraction > 1 {
		fraction = 1
	}

	remaining := int64(-1)
	if !h.partialProgress {
		// Byte-level progress unavailable for the current file: per spec,
		// omit ETA even if elapsed is past threshold, to avoid stutter.
	} else if elapsed.Seconds() >= secondsNeededForReliableTransferRate {
		rate := float64(h.doneBytes) / elapsed.Seconds()
		if rate > 0 {
			remainingBytes := h.totalBytes - h.doneBytes
			if remainingBytes > 0 {
				secs := int64(float64(remainingBytes) / rate)
				if secs > 0 {
					remaining = secs
				}
			}
		}
	}

	snap := Snapshot{
		StatusLong:       h.statusLong,
		StatusShort:      h.statusShort,
		Details:          h.details,
		Fraction:         fraction,
		RemainingSeconds: remaining,
		ElapsedSeconds:   elapsed.Seconds(),
		IsPaused:         h.paused,
		IsCancelled:      h.cancelled,
		Destination:      h.destination,
		HasDestination:   h.destination != "",
	}
	h.lastSnapshot = snap
	return snap
}
