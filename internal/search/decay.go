package search

import (
	"math"
	"time"

	"github.com/novamem/shardhub/internal/shard"
)

// usageSaturation is the usage count at which the usage component of
// the decay multiplier saturates at 1.0.
const usageSaturation = 10.0

// decayMultiplier computes the recency/usage dampening factor for a
// shard, bounded to [floor, 1.0].
//
// The recency component decays exponentially with a configurable
// half-life from the shard's last load (creation time if never loaded);
// the usage component grows linearly with usage_count and saturates.
// Taking the max of the two means a shard stays fresh if it is either
// recently touched or historically heavily used. The floor bounds the
// spread so decay can suppress but never invert the ranking of two
// shards whose raw scores differ by more than (1 - floor).
func decayMultiplier(e *shard.IndexEntry, now time.Time, halfLife time.Duration, floor float64) float64 {
	ref := e.Reference()
	if ref.IsZero() {
		return 1.0
	}

	age := now.Sub(ref)
	if age < 0 {
		age = 0
	}

	recency := math.Exp(-math.Ln2 * age.Hours() / halfLife.Hours())
	usage := math.Min(float64(e.UsageCount)/usageSaturation, 1.0)

	liveliness := math.Max(recency, usage)
	return floor + (1.0-floor)*liveliness
}
