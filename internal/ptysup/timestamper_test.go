package ptysup

import (
	"testing"
	"time"
)

func TestTimestamperWall(t *testing.T) {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	ts := NewTimestamper(TimestampWall, "%T", start)
	if got := ts.Next(start); got != "03:04:05" {
		t.Errorf("Next() = %q, want %q", got, "03:04:05")
	}
}

func TestTimestamperElapsed(t *testing.T) {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	ts := NewTimestamper(TimestampElapsed, "%S", start)
	if got := ts.Next(start.Add(7 * time.Second)); got != "07" {
		t.Errorf("Next() = %q, want %q", got, "07")
	}
}

func TestTimestamperDeltaFirstLineIsZero(t *testing.T) {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	ts := NewTimestamper(TimestampDelta, "%S", start)
	if got := ts.Next(start.Add(5 * time.Second)); got != "00" {
		t.Errorf("first Next() = %q, want %q", got, "00")
	}
	if got := ts.Next(start.Add(8 * time.Second)); got != "03" {
		t.Errorf("second Next() = %q, want %q", got, "03")
	}
}

func TestFormatStrftimeFractional(t *testing.T) {
	tm := time.Date(2026, 1, 1, 0, 0, 0, 123456789, time.UTC)
	if got := formatStrftime("%.3f", tm); got != ".123" {
		t.Errorf("formatStrftime(%%.3f) = %q, want %q", got, ".123")
	}
	if got := formatStrftime("%%", tm); got != "%" {
		t.Errorf("formatStrftime(%%%%) = %q, want %q", got, "%")
	}
}
