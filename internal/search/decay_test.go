package search

import (
	"math"
	"testing"
	"time"

	"github.com/novamem/shardhub/internal/shard"
)

var decayNow = time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

const (
	testHalfLife = 7 * 24 * time.Hour
	testFloor    = 0.7
)

func TestDecayMultiplier_FreshShard(t *testing.T) {
	e := &shard.IndexEntry{LastUsed: decayNow}
	got := decayMultiplier(e, decayNow, testHalfLife, testFloor)

	if math.Abs(got-1.0) > 0.001 {
		t.Errorf("just-used shard should decay to 1.0, got %f", got)
	}
}

func TestDecayMultiplier_OneHalfLife(t *testing.T) {
	e := &shard.IndexEntry{LastUsed: decayNow.Add(-testHalfLife)}
	got := decayMultiplier(e, decayNow, testHalfLife, testFloor)

	// recency = 0.5, usage = 0 -> 0.7 + 0.3*0.5 = 0.85
	if math.Abs(got-0.85) > 0.001 {
		t.Errorf("expected 0.85 after one half-life, got %f", got)
	}
}

func TestDecayMultiplier_FloorBound(t *testing.T) {
	// A year of disuse: recency is effectively 0, usage 0.
	e := &shard.IndexEntry{LastUsed: decayNow.Add(-365 * 24 * time.Hour)}
	got := decayMultiplier(e, decayNow, testHalfLife, testFloor)

	if got < testFloor {
		t.Errorf("decay fell below floor: %f", got)
	}
	if math.Abs(got-testFloor) > 0.001 {
		t.Errorf("expected decay near floor %f, got %f", testFloor, got)
	}
}

func TestDecayMultiplier_UsageKeepsShardAlive(t *testing.T) {
	// Old but heavily used: usage component saturates at 1.0 and wins
	// over the fully decayed recency.
	e := &shard.IndexEntry{
		LastUsed:   decayNow.Add(-365 * 24 * time.Hour),
		UsageCount: 10,
	}
	got := decayMultiplier(e, decayNow, testHalfLife, testFloor)

	if math.Abs(got-1.0) > 0.001 {
		t.Errorf("saturated usage should hold decay at 1.0, got %f", got)
	}
}

func TestDecayMultiplier_PartialUsage(t *testing.T) {
	// usage = 5/10 = 0.5, recency ~0 -> 0.7 + 0.3*0.5 = 0.85
	e := &shard.IndexEntry{
		LastUsed:   decayNow.Add(-365 * 24 * time.Hour),
		UsageCount: 5,
	}
	got := decayMultiplier(e, decayNow, testHalfLife, testFloor)

	if math.Abs(got-0.85) > 0.001 {
		t.Errorf("expected 0.85, got %f", got)
	}
}

func TestDecayMultiplier_NeverLoadedFallsBackToCreation(t *testing.T) {
	recent := &shard.IndexEntry{CreatedAt: decayNow.Add(-time.Hour)}
	old := &shard.IndexEntry{CreatedAt: decayNow.Add(-60 * 24 * time.Hour)}

	recentDecay := decayMultiplier(recent, decayNow, testHalfLife, testFloor)
	oldDecay := decayMultiplier(old, decayNow, testHalfLife, testFloor)

	if recentDecay <= oldDecay {
		t.Errorf("newer unloaded shard should decay less: recent=%f old=%f", recentDecay, oldDecay)
	}
}

func TestDecayMultiplier_ZeroReference(t *testing.T) {
	e := &shard.IndexEntry{}
	if got := decayMultiplier(e, decayNow, testHalfLife, testFloor); got != 1.0 {
		t.Errorf("zero reference time should not decay, got %f", got)
	}
}

func TestDecayMultiplier_FutureReferenceClamped(t *testing.T) {
	e := &shard.IndexEntry{LastUsed: decayNow.Add(time.Hour)}
	got := decayMultiplier(e, decayNow, testHalfLife, testFloor)

	if got > 1.0 {
		t.Errorf("decay must never exceed 1.0, got %f", got)
	}
}
