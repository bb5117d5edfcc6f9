package search

import (
	"math"
	"testing"
)

func TestCosineSimilarity_Identical(t *testing.T) {
	a := []float32{0.5, 0.5, 0.5}
	if got := CosineSimilarity(a, a); math.Abs(got-1.0) > 0.001 {
		t.Errorf("expected 1.0, got %f", got)
	}
}

func TestCosineSimilarity_Orthogonal(t *testing.T) {
	a := []float32{1, 0}
	b := []float32{0, 1}
	if got := CosineSimilarity(a, b); math.Abs(got) > 0.001 {
		t.Errorf("expected 0.0, got %f", got)
	}
}

func TestCosineSimilarity_Opposite(t *testing.T) {
	a := []float32{1, 0}
	b := []float32{-1, 0}
	if got := CosineSimilarity(a, b); math.Abs(got+1.0) > 0.001 {
		t.Errorf("expected -1.0, got %f", got)
	}
}

func TestCosineSimilarity_MismatchedLengths(t *testing.T) {
	a := []float32{1, 0}
	b := []float32{1, 0, 0}
	if got := CosineSimilarity(a, b); got != 0.0 {
		t.Errorf("mismatched lengths should score 0.0, got %f", got)
	}
}

func TestCosineSimilarity_ZeroVector(t *testing.T) {
	a := []float32{0, 0}
	b := []float32{1, 0}
	if got := CosineSimilarity(a, b); got != 0.0 {
		t.Errorf("zero vector should score 0.0, got %f", got)
	}
}

func TestMinMaxNormalize_Empty(t *testing.T) {
	if got := minMaxNormalize(nil); len(got) != 0 {
		t.Errorf("expected empty, got %v", got)
	}
}

func TestMinMaxNormalize_Spread(t *testing.T) {
	// min=0.2, max=0.8, range=0.6
	// 0.2 -> 0.0, 0.5 -> 0.5, 0.8 -> 1.0
	got := minMaxNormalize([]float64{0.2, 0.5, 0.8})

	want := []float64{0.0, 0.5, 1.0}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 0.001 {
			t.Errorf("index %d: expected %f, got %f", i, want[i], got[i])
		}
	}
}

func TestMinMaxNormalize_AllEqualPositive(t *testing.T) {
	got := minMaxNormalize([]float64{0.4, 0.4, 0.4})
	for i, v := range got {
		if v != 1.0 {
			t.Errorf("index %d: equal positive scores should map to 1.0, got %f", i, v)
		}
	}
}

func TestMinMaxNormalize_AllZero(t *testing.T) {
	got := minMaxNormalize([]float64{0, 0, 0})
	for i, v := range got {
		if v != 0.0 {
			t.Errorf("index %d: zero scores should stay 0.0, got %f", i, v)
		}
	}
}

func TestNormalizeSubset_OnlyMarked(t *testing.T) {
	scores := []float64{0.9, 0.2, 0.8}
	present := []bool{true, false, true}

	got := normalizeSubset(scores, present)

	// Subset {0.9, 0.8}: 0.8 -> 0.0, 0.9 -> 1.0. Unmarked stays 0.
	if got[0] != 1.0 {
		t.Errorf("expected 1.0 at index 0, got %f", got[0])
	}
	if got[1] != 0.0 {
		t.Errorf("unmarked position should be 0.0, got %f", got[1])
	}
	if got[2] != 0.0 {
		t.Errorf("expected 0.0 at index 2, got %f", got[2])
	}
}
