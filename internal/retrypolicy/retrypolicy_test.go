package retrypolicy

import (
	"testing"
	"time"
)

func TestParseDelayLevels(t *testing.T) {
	levels, err := ParseDelayLevels("1s 5s 10s 30s 1m 2m 1h 2h")
	if err != nil {
		t.Fatalf("ParseDelayLevels: %v", err)
	}
	want := []time.Duration{
		time.Second, 5 * time.Second, 10 * time.Second, 30 * time.Second,
		time.Minute, 2 * time.Minute, time.Hour, 2 * time.Hour,
	}
	if len(levels) != len(want) {
		t.Fatalf("got %d levels, want %d", len(levels), len(want))
	}
	for i := range want {
		if levels[i] != want[i] {
			t.Errorf("level %d = %s, want %s", i, levels[i], want[i])
		}
	}
}

func TestParseDelayLevelsRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "5x", "abc", "5"} {
		if _, err := ParseDelayLevels(s); err == nil {
			t.Errorf("ParseDelayLevels(%q) should fail", s)
		}
	}
}

func TestNackInvisibleBackoff(t *testing.T) {
	p, err := New("1s 5s 10s", 5*time.Second, 2*time.Hour, 2.0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	tests := []struct {
		attempt int32
		want    time.Duration
	}{
		{0, 5 * time.Second},
		{1, 10 * time.Second},
		{2, 20 * time.Second},
		{5, 160 * time.Second},
		{-1, 5 * time.Second},
		{60, 2 * time.Hour}, // capped, would overflow float math otherwise
	}
	for _, tt := range tests {
		if got := p.NackInvisible(tt.attempt); got != tt.want {
			t.Errorf("NackInvisible(%d) = %s, want %s", tt.attempt, got, tt.want)
		}
	}
}

func TestNackInvisibleDefaults(t *testing.T) {
	p, err := New("1s", 0, 0, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := p.NackInvisible(0); got != DefaultInitialInvisible {
		t.Fatalf("got %s, want default initial %s", got, DefaultInitialInvisible)
	}
}

func TestDelayLevelClamped(t *testing.T) {
	p, err := New("1s 5s 10s", 0, 0, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := p.DelayLevel(0); got != 1 {
		t.Errorf("DelayLevel(0) = %d, want 1", got)
	}
	if got := p.DelayLevel(1); got != 2 {
		t.Errorf("DelayLevel(1) = %d, want 2", got)
	}
	if got := p.DelayLevel(99); got != 3 {
		t.Errorf("DelayLevel(99) = %d, want 3 (clamped)", got)
	}
	if got := p.LevelDuration(2); got != 5*time.Second {
		t.Errorf("LevelDuration(2) = %s, want 5s", got)
	}
	if got := p.LevelDuration(99); got != 10*time.Second {
		t.Errorf("LevelDuration(99) = %s, want 10s (clamped)", got)
	}
}
