package power

import "testing"

func TestNoopInhibitorIsHarmless(t *testing.T) {
	var n Noop
	cookie, err := n.Inhibit("testing")
	if err != nil {
		t.Fatalf("Noop.Inhibit: %v", err)
	}
	if cookie != 0 {
		t.Errorf("expected a zero cookie from Noop, got %d", cookie)
	}
	n.Uninhibit(cookie) // must not panic
}

func TestInhibitFlagsCoverLogoutAndSuspend(t *testing.T) {
	if inhibitFlags&flagLogout == 0 {
		t.Error("expected the logout bit to be set")
	}
	if inhibitFlags&flagSuspend == 0 {
		t.Error("expected the suspend bit to be set")
	}
}
