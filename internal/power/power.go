// Package power implements §6's PowerInhibit capability: a session-level
// "don't suspend, don't log me out" lock a long-running job holds for its
// duration, taken out in job.Job.InhibitPower and released in Finalize.
package power

import (
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"
)

// appID identifies this process to the session manager in the inhibit
// dialog a desktop environment may show the user.
const appID = "fileopsd"

// Inhibit flags from org.gnome.SessionManager's inhibit contract: a bit
// mask of what's being suppressed. A file operation job only ever needs
// to stop logout and suspend, never idle-dimming or user switching.
const (
	flagLogout  uint32 = 1 << 0
	flagSuspend uint32 = 1 << 2
)

const inhibitFlags = flagLogout | flagSuspend

// Inhibitor holds a live session-bus connection to org.gnome.SessionManager
// and implements internal/job.PowerInhibitor over it.
type Inhibitor struct {
	conn dbus.BusObject
	mu   sync.Mutex
}

// New dials the session bus and returns an Inhibitor bound to
// org.gnome.SessionManager. Callers on a host with no session bus (a
// headless batch run, a container) should fall back to Noop{} instead
// of calling New.
func New() (*Inhibitor, error) {
	conn, err := dbus.SessionBusPrivate()
	if err != nil {
		return nil, fmt.Errorf("power: session bus: %w", err)
	}
	if err := conn.Auth(nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("power: session bus auth: %w", err)
	}
	if err := conn.Hello(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("power: session bus hello: %w", err)
	}
	obj := conn.Object("org.gnome.SessionManager", dbus.ObjectPath("/org/gnome/SessionManager"))
	return &Inhibitor{conn: obj}, nil
}

// Inhibit requests a suspend+logout inhibit, returning the cookie
// Uninhibit needs to release it later.
func (p *Inhibitor) Inhibit(reason string) (uint32, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var cookie uint32
	call := p.conn.Call("org.gnome.SessionManager.Inhibit", 0, appID, uint32(0), reason, inhibitFlags)
	if call.Err != nil {
		return 0, fmt.Errorf("power: inhibit: %w", call.Err)
	}
	if err := call.Store(&cookie); err != nil {
		return 0, fmt.Errorf("power: inhibit: %w", err)
	}
	return cookie, nil
}

// Uninhibit releases a previously acquired cookie. Errors are swallowed:
// the caller is already tearing the job down, and an inhibit that
// outlives its job is recovered automatically once the session ends.
func (p *Inhibitor) Uninhibit(cookie uint32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.conn.Call("org.gnome.SessionManager.Uninhibit", 0, cookie)
}

// Noop implements PowerInhibitor as a no-op, for hosts with no session
// bus and for tests that don't care about power management.
type Noop struct{}

// Inhibit always succeeds with a zero cookie.
func (Noop) Inhibit(string) (uint32, error) { return 0, nil }

// Uninhibit does nothing.
func (Noop) Uninhibit(uint32) {}
