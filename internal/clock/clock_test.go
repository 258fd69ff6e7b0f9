package clock

import (
	"testing"
	"time"
)

func TestNew_RejectsUnknownZone(t *testing.T) {
	if _, err := New("Atlantis/Lost"); err == nil {
		t.Fatal("expected error for unknown timezone")
	}
}

func TestToUserTZ_KeepsWallClock(t *testing.T) {
	c, err := New("Europe/Berlin")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	in := time.Date(2026, 3, 2, 14, 30, 45, 0, time.UTC)
	out := c.ToUserTZ(in)

	if out.Hour() != 14 || out.Minute() != 30 || out.Second() != 45 {
		t.Fatalf("wall clock changed: %v", out)
	}
	if out.Location() != c.Location() {
		t.Fatalf("location: got %v", out.Location())
	}
	// Berlin is ahead of UTC, so the instant moved.
	if out.Equal(in) {
		t.Fatal("instant should differ after reinterpretation")
	}
}

func TestFixed(t *testing.T) {
	at := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	c := Fixed(at)
	if !c.Now().Equal(at) {
		t.Fatalf("Now: got %v", c.Now())
	}
}

func TestParseClockTime(t *testing.T) {
	h, m, err := ParseClockTime("07:45")
	if err != nil || h != 7 || m != 45 {
		t.Fatalf("ParseClockTime: got %d:%d, %v", h, m, err)
	}
	if _, _, err := ParseClockTime("7:45pm"); err == nil {
		t.Fatal("expected error for non-24h format")
	}
	if _, _, err := ParseClockTime(""); err == nil {
		t.Fatal("expected error for empty string")
	}
}
