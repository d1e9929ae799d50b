package vecstore

import (
	"math"
	"sort"

	"kareerbot/pkg/domain"
)

// Collection is the embedded representation of all chunks for one user.
// It is namespaced strictly per user: queries against one user's collection
// can never return another user's chunks.
type Collection struct {
	UserID string                 `json:"userId"`
	Chunks []domain.EmbeddedChunk `json:"chunks"`
}

// Search returns the topK chunks ranked by cosine similarity to the query
// embedding.
func (c *Collection) Search(query []float32, topK int) []domain.ScoredChunk {
	if topK <= 0 || len(c.Chunks) == 0 {
		return nil
	}
	scored := make([]domain.ScoredChunk, 0, len(c.Chunks))
	for _, chunk := range c.Chunks {
		scored = append(scored, domain.ScoredChunk{
			Text:  chunk.Text,
			Score: cosineSimilarity(query, chunk.Embedding),
		})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if topK > len(scored) {
		topK = len(scored)
	}
	return scored[:topK]
}

func cosineSimilarity(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
