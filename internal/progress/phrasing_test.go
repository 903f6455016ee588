package progress

import "testing"

func TestFormattedTime(t *testing.T) {
	cases := []struct {
		secs int64
		want string
	}{
		{5, "5 seconds"},
		{90, "1 minutes"},
		{14400, "4 hours"},
		{5400, "1 hours, 30 minutes"},
	}
	for _, c := range cases {
		if got := FormattedTime(c.secs); got != c.want {
			t.Errorf("FormattedTime(%d) = %q, want %q", c.secs, got, c.want)
		}
	}
}

func TestStatusLongPlural(t *testing.T) {
	one := StatusLong(PhraseCopying, 1)
	many := StatusLong(PhraseCopying, 3)
	if one == many {
		t.Errorf("expected singular/plural to differ, both were %q", one)
	}
}

func TestStatusShort(t *testing.T) {
	if StatusShort(PhraseCopying, 1) != "Copying file" {
		t.Errorf("unexpected short status for singular copy: %q", StatusShort(PhraseCopying, 1))
	}
	if StatusShort(PhraseCopying, 2) != "Copying files" {
		t.Errorf("unexpected short status for plural copy: %q", StatusShort(PhraseCopying, 2))
	}
}

func TestTruncateDisplayNameShort(t *testing.T) {
	name := "short.txt"
	if got := TruncateDisplayName(name); got != name {
		t.Errorf("short name should be unchanged, got %q", got)
	}
}

func TestTruncateDisplayNameLong(t *testing.T) {
	long := ""
	for i := 0; i < 80; i++ {
		long += "a"
	}
	got := TruncateDisplayName(long)
	runeCount := 0
	for range got {
		runeCount++
	}
	if runeCount > maxDisplayRunes {
		t.Errorf("truncated name has %d runes, want <= %d", runeCount, maxDisplayRunes)
	}
	if got == long {
		t.Error("expected truncation to change the name")
	}
}

func TestTruncateDisplayNameInvalidUTF8(t *testing.T) {
	bad := string([]byte{0xff, 0xfe, 0xfd})
	got := TruncateDisplayName(bad)
	if got == bad {
		t.Error("expected invalid UTF-8 to be percent-escaped")
	}
}
