package util

import (
	"testing"
	"time"
)

func TestTrailingWindow(t *testing.T) {
	now := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC)
	from, to := TrailingWindow(now, 24*time.Hour)
	if !to.Equal(now) {
		t.Fatalf("unexpected end %v", to)
	}
	if to.Sub(from) != 24*time.Hour {
		t.Fatalf("unexpected window %v", to.Sub(from))
	}
}

func TestDaysCovering(t *testing.T) {
	cases := map[int]int{0: 1, 1: 1, 24: 1, 25: 2, 48: 2, 168: 7}
	for hours, want := range cases {
		if got := DaysCovering(hours); got != want {
			t.Fatalf("DaysCovering(%d) = %d, want %d", hours, got, want)
		}
	}
}

func TestTruncateHour(t *testing.T) {
	in := time.Date(2024, 10, 10, 10, 59, 59, 999, time.FixedZone("X", 3600))
	got := TruncateHour(in)
	want := time.Date(2024, 10, 10, 9, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("unexpected %v", got)
	}
}

func TestParseDefaults(t *testing.T) {
	if ParseIntDefault("x", 7) != 7 || ParseIntDefault("12", 7) != 12 {
		t.Fatalf("ParseIntDefault")
	}
	if ParseFloatDefault("", 1.5) != 1.5 || ParseFloatDefault("2.25", 0) != 2.25 {
		t.Fatalf("ParseFloatDefault")
	}
}
