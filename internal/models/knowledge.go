// Package models defines the domain types for the knowledge core:
// embedded text items, graph entities and relationships, and metric
// points, plus the request records the stores validate.
package models

import (
	"time"

	"github.com/google/uuid"
)

// KnowledgeItem is an embedded text document. Immutable once stored
// except for deletion.
type KnowledgeItem struct {
	ID        string         `json:"id"`
	Text      string         `json:"text"`
	Embedding []float32      `json:"embedding,omitempty"`
	Metadata  map[string]any `json:"metadata"`
	CreatedAt time.Time      `json:"created_at"`
}

// ScoredItem pairs a KnowledgeItem with its cosine similarity to a query.
type ScoredItem struct {
	KnowledgeItem
	Score float64 `json:"score"`
}

// PutItemRequest is the payload for storing a knowledge item.
type PutItemRequest struct {
	ID        string         `json:"id,omitempty"`
	Text      string         `json:"text"`
	Embedding []float32      `json:"embedding"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Validate checks required fields. If ID is empty, a UUID is generated.
func (r *PutItemRequest) Validate() error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}

	if r.Text == "" {
		return ErrMissingText
	}

	if len(r.Embedding) == 0 {
		return ErrMissingEmbedding
	}

	return nil
}
