package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/agromitra/agromitra/internal/models"
)

// GraphStore handles typed entities and their relationships.
type GraphStore struct {
	Base
}

// NewGraphStore creates a GraphStore.
func NewGraphStore(base Base) *GraphStore {
	return &GraphStore{Base: base}
}

// CreateNode inserts an entity if absent and returns its id. Creation
// is idempotent: a second call with the same (type, name) returns the
// existing id without touching stored properties.
func (s *GraphStore) CreateNode(ctx context.Context, req models.CreateNodeRequest) (_ string, err error) {
	start := time.Now()
	defer func() { observe("graph", "create_node", start, err) }()

	if err = req.Validate(); err != nil {
		return "", err
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	nodeID := models.NodeID(req.Type, req.Name)

	propsJSON, err := marshalJSON(req.Properties)
	if err != nil {
		return "", err
	}

	tag, err := s.Pool.Exec(ctx,
		`INSERT INTO graph_nodes (id, type, name, properties, confidence, source)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO NOTHING`,
		nodeID, req.Type, req.Name, propsJSON, req.ConfidenceOrDefault(), req.Source,
	)
	if err != nil {
		return "", backendErr(err, "creating node")
	}

	if tag.RowsAffected() == 0 {
		s.Log.WithField("node_id", nodeID).Debug("node already exists, create is a no-op")
	}

	return nodeID, nil
}

// GetNode returns an entity by id.
func (s *GraphStore) GetNode(ctx context.Context, nodeID string) (_ *models.Node, err error) {
	start := time.Now()
	defer func() { observe("graph", "get_node", start, err) }()

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	row := s.Pool.QueryRow(ctx,
		`SELECT `+nodeColumns+` FROM graph_nodes WHERE id = $1`, nodeID)

	n, err := scanNode(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNodeNotFound
		}

		return nil, backendErr(err, "reading node")
	}

	return n, nil
}

// DeleteNode removes a node and, via the schema's cascade, every edge
// touching it.
func (s *GraphStore) DeleteNode(ctx context.Context, nodeID string) (err error) {
	start := time.Now()
	defer func() { observe("graph", "delete_node", start, err) }()

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tag, err := s.Pool.Exec(ctx, `DELETE FROM graph_nodes WHERE id = $1`, nodeID)
	if err != nil {
		return backendErr(err, "deleting node")
	}

	if tag.RowsAffected() == 0 {
		return models.ErrNodeNotFound
	}

	return nil
}
