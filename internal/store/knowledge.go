package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/agromitra/agromitra/internal/models"
)

// Embedder generates vector embeddings from text.
type Embedder interface {
	Generate(ctx context.Context, text string) ([]float32, error)
}

// KnowledgeStore handles the embedded text corpus and similarity search.
type KnowledgeStore struct {
	Base
	embedder Embedder
	index    VectorIndex
}

// NewKnowledgeStore creates a KnowledgeStore. The embedder is required
// for SearchByText; embedding-supplied operations work without it.
func NewKnowledgeStore(base Base, embedder Embedder) *KnowledgeStore {
	return &KnowledgeStore{Base: base, embedder: embedder, index: BruteForceIndex{}}
}

// Put stores a knowledge item, generating an id when absent. A put with
// an existing id overwrites the stored triple.
func (s *KnowledgeStore) Put(ctx context.Context, req models.PutItemRequest) (_ string, err error) {
	start := time.Now()
	defer func() { observe("knowledge", "put", start, err) }()

	if err = req.Validate(); err != nil {
		return "", err
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if err = s.checkDimension(ctx, len(req.Embedding)); err != nil {
		return "", err
	}

	metaJSON, err := marshalJSON(req.Metadata)
	if err != nil {
		return "", err
	}

	_, err = s.Pool.Exec(ctx,
		`INSERT INTO knowledge_items (id, text, embedding, metadata)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE
		 SET text = EXCLUDED.text, embedding = EXCLUDED.embedding, metadata = EXCLUDED.metadata`,
		req.ID, req.Text, req.Embedding, metaJSON,
	)
	if err != nil {
		return "", backendErr(err, "storing knowledge item")
	}

	return req.ID, nil
}

// checkDimension verifies the deployment's fixed embedding dimension
// against an arbitrary stored row. An empty corpus accepts any dimension.
func (s *KnowledgeStore) checkDimension(ctx context.Context, dim int) error {
	var stored int

	err := s.Pool.QueryRow(ctx,
		`SELECT cardinality(embedding) FROM knowledge_items LIMIT 1`).Scan(&stored)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}

	if err != nil {
		return backendErr(err, "checking embedding dimension")
	}

	if stored != dim {
		return models.Validationf("embedding dimension mismatch: store uses %d, got %d", stored, dim)
	}

	return nil
}

// Get returns a knowledge item by id.
func (s *KnowledgeStore) Get(ctx context.Context, id string) (_ *models.KnowledgeItem, err error) {
	start := time.Now()
	defer func() { observe("knowledge", "get", start, err) }()

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	row := s.Pool.QueryRow(ctx,
		`SELECT `+itemColumns+` FROM knowledge_items WHERE id = $1`, id)

	it, err := scanItem(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrItemNotFound
		}

		return nil, backendErr(err, "reading knowledge item")
	}

	return it, nil
}

// Delete removes a knowledge item by id.
func (s *KnowledgeStore) Delete(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { observe("knowledge", "delete", start, err) }()

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tag, err := s.Pool.Exec(ctx, `DELETE FROM knowledge_items WHERE id = $1`, id)
	if err != nil {
		return backendErr(err, "deleting knowledge item")
	}

	if tag.RowsAffected() == 0 {
		return models.ErrItemNotFound
	}

	return nil
}

// Search ranks the corpus by cosine similarity to the query vector.
// The metadata filter is an exact-match conjunction pushed into SQL
// before ranking; rows come back in insertion order so equal-similarity
// ties stay stable.
func (s *KnowledgeStore) Search(
	ctx context.Context,
	query []float32,
	filter map[string]any,
	topK int,
) (_ []models.ScoredItem, err error) {
	start := time.Now()
	defer func() { observe("knowledge", "search", start, err) }()

	if len(query) == 0 {
		return nil, models.ErrMissingEmbedding
	}

	if topK <= 0 {
		topK = 10
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	sql := `SELECT ` + itemColumns + ` FROM knowledge_items`
	args := []any{}

	if len(filter) > 0 {
		filterJSON, err := marshalJSON(filter)
		if err != nil {
			return nil, err
		}

		sql += ` WHERE metadata @> $1::jsonb`
		args = append(args, filterJSON)
	}

	sql += ` ORDER BY created_at, id`

	rows, err := s.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, backendErr(err, "scanning knowledge corpus")
	}
	defer rows.Close()

	items, err := collectItems(rows)
	if err != nil {
		return nil, backendErr(err, "scanning knowledge corpus")
	}

	scored, err := s.index.Rank(ctx, query, items, topK)
	if err != nil {
		return nil, fmt.Errorf("ranking %d candidates: %w", len(items), err)
	}

	return scored, nil
}

// SearchByText embeds the query text and searches. A provider failure
// propagates as a provider error; no retry happens here.
func (s *KnowledgeStore) SearchByText(
	ctx context.Context,
	text string,
	filter map[string]any,
	topK int,
) ([]models.ScoredItem, error) {
	if text == "" {
		return nil, models.ErrMissingText
	}

	embedding, err := s.embedder.Generate(ctx, text)
	if err != nil {
		return nil, models.Providerf(err, "embedding query text")
	}

	return s.Search(ctx, embedding, filter, topK)
}
