package embedding

import "context"

// StaticEmbedder returns pre-seeded vectors by exact text match.
// Used in tests and offline development; unknown text embeds to nil,
// which callers treat as "no semantic signal".
type StaticEmbedder struct {
	Vectors map[string][]float32
}

// Embed implements Embedder.
func (s *StaticEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if s.Vectors == nil {
		return nil, nil
	}
	return s.Vectors[text], nil
}
