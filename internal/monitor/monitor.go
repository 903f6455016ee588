// Package monitor implements the directory monitor of §4.8: a per-directory
// handle wrapping the platform's directory-watch capability, translating
// raw filesystem events into changequeue.Entry values.
package monitor

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/nekomimist/fileopsd/internal/changequeue"
)

var debugf func(format string, args ...interface{})

// SetDebug installs a debug logger.
func SetDebug(fn func(format string, args ...interface{})) { debugf = fn }

func dbg(format string, args ...interface{}) {
	if debugf != nil {
		debugf("monitor: "+format, args...)
	}
}

// renamePairWindow bounds how long a dropped Rename event waits for a
// matching Create in the same directory before it is flushed as a plain
// Removed, per §4.8's "moved-out with other-file ... else Removed(child)".
const renamePairWindow = 250 * time.Millisecond

// MountMonitor is the §6 capability a Watch subscribes to for non-native
// (gvfs/remote) locations, so a mount teardown that never emits a
// per-file delete still produces an Unmounted entry.
type MountMonitor interface {
	OnMountRemoved(fn func(mountRoot string))
}

// Watch is a per-directory handle wrapping fsnotify, emitting translated
// entries onto a changequeue.Queue.
type Watch struct {
	dir     string
	queue   *changequeue.Queue
	watcher *fsnotify.Watcher

	nonNative bool
	mounts    MountMonitor

	mu            sync.Mutex
	pendingRemove map[string]time.Time // basename -> rename timestamp, within dir

	done chan struct{}
}

// New creates a Watch over dir. nonNative marks remote/gvfs-style
// locations that additionally need the MountMonitor augmentation; mounts
// may be nil when no volume-monitor capability is wired in.
func New(dir string, queue *changequeue.Queue, nonNative bool, mounts MountMonitor) (*Watch, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, err
	}
	watch := &Watch{
		dir:           dir,
		queue:         queue,
		watcher:       w,
		nonNative:     nonNative,
		mounts:        mounts,
		pendingRemove: make(map[string]time.Time),
		done:          make(chan struct{}),
	}
	if nonNative && mounts != nil {
		mounts.OnMountRemoved(watch.handleMountRemoved)
	}
	return watch, nil
}

// Start runs the event-translation loop until Close is called.
func (w *Watch) Start() {
	go w.loop()
	go w.sweepStaleRenames()
}

func (w *Watch) loop() {
	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.translate(ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			dbg("watcher error on %s: %v", w.dir, err)
		case <-w.done:
			return
		}
	}
}

// translate maps one fsnotify.Event onto the §4.8 event-translation table.
func (w *Watch) translate(ev fsnotify.Event) {
	child := ev.Name
	base := filepath.Base(child)

	switch {
	case ev.Op&fsnotify.Create != 0:
		if from, ok := w.takePendingRemove(base); ok {
			w.queue.MovedEntry(from, child)
			return
		}
		w.queue.Added(child)
	case ev.Op&fsnotify.Write != 0, ev.Op&fsnotify.Chmod != 0:
		// content-written-batch markers aren't distinguishable from an
		// ordinary write through fsnotify; a single Changed is the closest
		// faithful translation rather than inventing a hint we can't see.
		w.queue.Changed(child)
	case ev.Op&fsnotify.Remove != 0:
		w.queue.Removed(child)
	case ev.Op&fsnotify.Rename != 0:
		// fsnotify reports a Rename on the old path; if a Create for the
		// new basename lands on this watch within renamePairWindow, it's
		// paired into a single Moved entry above. Otherwise it's a
		// moved-out with no visible destination, i.e. a Removed.
		w.markPendingRemove(base, child)
	}
}

func (w *Watch) markPendingRemove(base, path string) {
	w.mu.Lock()
	w.pendingRemove[base] = time.Now()
	w.mu.Unlock()
	_ = path
}

func (w *Watch) takePendingRemove(base string) (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	var from string
	var newest time.Time
	for old, t := range w.pendingRemove {
		if old != base && time.Since(t) <= renamePairWindow && t.After(newest) {
			from, newest = old, t
		}
	}
	if from == "" {
		return "", false
	}
	delete(w.pendingRemove, from)
	return filepath.Join(w.dir, from), true
}

func (w *Watch) sweepStaleRenames() {
	ticker := time.NewTicker(renamePairWindow)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			w.flushStaleRenames()
		case <-w.done:
			return
		}
	}
}

func (w *Watch) flushStaleRenames() {
	w.mu.Lock()
	var stale []string
	now := time.Now()
	for base, t := range w.pendingRemove {
		if now.Sub(t) > renamePairWindow {
			stale = append(stale, base)
		}
	}
	for _, base := range stale {
		delete(w.pendingRemove, base)
	}
	w.mu.Unlock()

	for _, base := range stale {
		w.queue.Removed(filepath.Join(w.dir, base))
	}
}

func (w *Watch) handleMountRemoved(mountRoot string) {
	rel, err := filepath.Rel(mountRoot, w.dir)
	if err != nil || (rel != "." && len(rel) >= 2 && rel[:2] == "..") {
		return
	}
	w.queue.UnmountedEntry(w.dir)
}

// Close stops the watch and releases the underlying fsnotify watcher.
func (w *Watch) Close() error {
	close(w.done)
	return w.watcher.Close()
}
