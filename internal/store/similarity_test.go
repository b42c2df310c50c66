package store

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/agromitra/agromitra/internal/models"
)

func TestCosineSimilaritySelf(t *testing.T) {
	vectors := [][]float32{
		{1, 0, 0},
		{0.3, -0.7, 0.2},
		{5, 5, 5, 5},
	}

	for _, v := range vectors {
		if got := CosineSimilarity(v, v); math.Abs(got-1) > 1e-9 {
			t.Errorf("CosineSimilarity(v, v) = %v, want 1", got)
		}
	}
}

func TestCosineSimilarityBounds(t *testing.T) {
	a := []float32{1, 2, 3}
	b := []float32{-3, 1, -2}

	got := CosineSimilarity(a, b)
	if got < -1-1e-9 || got > 1+1e-9 {
		t.Errorf("similarity %v outside [-1,1]", got)
	}

	opposite := CosineSimilarity([]float32{1, 0}, []float32{-1, 0})
	if math.Abs(opposite+1) > 1e-9 {
		t.Errorf("opposite vectors = %v, want -1", opposite)
	}
}

func TestCosineSimilarityZeroVector(t *testing.T) {
	if got := CosineSimilarity([]float32{0, 0}, []float32{1, 2}); got != 0 {
		t.Errorf("zero-norm query = %v, want 0", got)
	}

	if got := CosineSimilarity([]float32{1, 2}, []float32{0, 0}); got != 0 {
		t.Errorf("zero-norm item = %v, want 0", got)
	}
}

func rankItems(t *testing.T, query []float32, items []models.KnowledgeItem, topK int) []models.ScoredItem {
	t.Helper()

	scored, err := BruteForceIndex{}.Rank(context.Background(), query, items, topK)
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}

	return scored
}

func TestRankOrdering(t *testing.T) {
	items := []models.KnowledgeItem{
		{ID: "far", Embedding: []float32{0, 1}},
		{ID: "near", Embedding: []float32{1, 0.01}},
		{ID: "exact", Embedding: []float32{1, 0}},
	}

	scored := rankItems(t, []float32{1, 0}, items, 10)

	if len(scored) != 3 {
		t.Fatalf("got %d results, want 3", len(scored))
	}

	if scored[0].ID != "exact" || scored[1].ID != "near" || scored[2].ID != "far" {
		t.Errorf("order = %s, %s, %s", scored[0].ID, scored[1].ID, scored[2].ID)
	}

	for i := 1; i < len(scored); i++ {
		if scored[i].Score > scored[i-1].Score {
			t.Error("scores must be non-increasing")
		}
	}
}

func TestRankStableTies(t *testing.T) {
	// Identical embeddings: insertion order must be preserved.
	items := []models.KnowledgeItem{
		{ID: "first", Embedding: []float32{1, 1}},
		{ID: "second", Embedding: []float32{1, 1}},
		{ID: "third", Embedding: []float32{2, 2}}, // same direction, same cosine
	}

	scored := rankItems(t, []float32{1, 1}, items, 10)

	order := []string{scored[0].ID, scored[1].ID, scored[2].ID}
	want := []string{"first", "second", "third"}

	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("tie order = %v, want %v", order, want)
		}
	}
}

func TestRankTopK(t *testing.T) {
	items := []models.KnowledgeItem{
		{ID: "a", Embedding: []float32{1, 0}},
		{ID: "b", Embedding: []float32{0, 1}},
		{ID: "c", Embedding: []float32{1, 1}},
	}

	if got := rankItems(t, []float32{1, 0}, items, 2); len(got) != 2 {
		t.Errorf("topK=2 returned %d", len(got))
	}

	// topK beyond corpus size returns everything.
	if got := rankItems(t, []float32{1, 0}, items, 50); len(got) != 3 {
		t.Errorf("topK=50 returned %d", len(got))
	}
}

func TestRankDimensionMismatch(t *testing.T) {
	items := []models.KnowledgeItem{{ID: "a", Embedding: []float32{1, 0, 0}}}

	_, err := BruteForceIndex{}.Rank(context.Background(), []float32{1, 0}, items, 5)
	if !errors.Is(err, models.ErrValidation) {
		t.Errorf("got %v, want validation error", err)
	}
}

func TestRankHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	items := make([]models.KnowledgeItem, 300)
	for i := range items {
		items[i] = models.KnowledgeItem{Embedding: []float32{1}}
	}

	if _, err := (BruteForceIndex{}).Rank(ctx, []float32{1}, items, 5); err == nil {
		t.Error("expected context error")
	}
}
