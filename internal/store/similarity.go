package store

import (
	"context"
	"math"
	"sort"

	"github.com/agromitra/agromitra/internal/models"
)

// VectorIndex ranks candidate items against a query vector. The only
// implementation here is an exact full-corpus scan; a production build
// can swap in an approximate structure without touching the engine.
type VectorIndex interface {
	Rank(ctx context.Context, query []float32, items []models.KnowledgeItem, topK int) ([]models.ScoredItem, error)
}

// BruteForceIndex computes exact cosine similarity over every candidate.
type BruteForceIndex struct{}

// Rank scores items by cosine similarity to the query, descending, with
// a stable tie-break on the items' incoming (insertion) order. When topK
// exceeds the candidate count, everything is returned. The scan checks
// ctx so a caller-supplied deadline aborts instead of blocking.
func (BruteForceIndex) Rank(
	ctx context.Context,
	query []float32,
	items []models.KnowledgeItem,
	topK int,
) ([]models.ScoredItem, error) {
	scored := make([]models.ScoredItem, 0, len(items))

	for i, it := range items {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		if len(it.Embedding) != len(query) {
			return nil, models.Validationf(
				"embedding dimension mismatch: query %d, item %q has %d",
				len(query), it.ID, len(it.Embedding))
		}

		scored = append(scored, models.ScoredItem{
			KnowledgeItem: it,
			Score:         CosineSimilarity(query, it.Embedding),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if topK >= 0 && topK < len(scored) {
		scored = scored[:topK]
	}

	return scored, nil
}

// CosineSimilarity returns dot(a,b) / (|a||b|) accumulated in float64,
// or 0 when either vector has zero norm. The result is always in [-1,1]
// up to floating-point rounding.
func CosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64

	for i := range a {
		av, bv := float64(a[i]), float64(b[i])
		dot += av * bv
		normA += av * av
		normB += bv * bv
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
