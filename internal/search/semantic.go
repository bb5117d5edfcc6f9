package search

import "math"

// CosineSimilarity computes cosine similarity between two vectors.
// Mismatched lengths or zero vectors score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0.0
	}

	var dotProduct float64
	var normA float64
	var normB float64

	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

// minMaxNormalize maps scores into [0, 1] within the given set.
// When all scores are equal, positive scores map to 1.0 and
// non-positive scores to 0.0, so a uniformly irrelevant set does not
// inflate into a uniformly perfect one.
func minMaxNormalize(scores []float64) []float64 {
	if len(scores) == 0 {
		return scores
	}

	minScore := scores[0]
	maxScore := scores[0]
	for _, s := range scores {
		if s < minScore {
			minScore = s
		}
		if s > maxScore {
			maxScore = s
		}
	}

	normalized := make([]float64, len(scores))
	if maxScore == minScore {
		for i := range scores {
			if scores[i] > 0 {
				normalized[i] = 1.0
			}
		}
		return normalized
	}

	for i, s := range scores {
		normalized[i] = (s - minScore) / (maxScore - minScore)
	}
	return normalized
}
