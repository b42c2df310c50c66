package store

import (
	"context"
	"fmt"
	"time"

	"github.com/agromitra/agromitra/internal/models"
)

// CreateEdge inserts a relationship between two existing nodes. Storage
// holds a single forward row; the reverse direction is served by the
// (target, relation) index, so there is no second write to race with.
// A duplicate (source, relation, target) is a no-op.
func (s *GraphStore) CreateEdge(ctx context.Context, req models.CreateEdgeRequest) (err error) {
	start := time.Now()
	defer func() { observe("graph", "create_edge", start, err) }()

	if err = req.Validate(); err != nil {
		return err
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return backendErr(err, "creating edge")
	}

	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	// Verify source and target nodes exist in a single query.
	var sourceExists, targetExists bool
	err = tx.QueryRow(ctx,
		`SELECT
			EXISTS(SELECT 1 FROM graph_nodes WHERE id = $1),
			EXISTS(SELECT 1 FROM graph_nodes WHERE id = $2)`,
		req.Source, req.Target).Scan(&sourceExists, &targetExists)
	if err != nil {
		return backendErr(err, "checking edge endpoints")
	}

	if !sourceExists {
		return fmt.Errorf("source %q: %w", req.Source, models.ErrNodeNotFound)
	}

	if !targetExists {
		return fmt.Errorf("target %q: %w", req.Target, models.ErrNodeNotFound)
	}

	propsJSON, err := marshalJSON(req.Properties)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO graph_edges (source, relation, target, properties, confidence, source_ref)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (source, relation, target) DO NOTHING`,
		req.Source, req.Relation, req.Target, propsJSON, req.ConfidenceOrDefault(), req.SourceRef,
	)
	if err != nil {
		return backendErr(err, "inserting edge")
	}

	if err := tx.Commit(ctx); err != nil {
		return backendErr(err, "committing edge")
	}

	return nil
}

// DeleteEdge removes an edge by its composite key. The relation may be
// given in either namespace; a reverse-namespaced key is normalized to
// the stored forward row.
func (s *GraphStore) DeleteEdge(ctx context.Context, source, relation, target string) (err error) {
	start := time.Now()
	defer func() { observe("graph", "delete_edge", start, err) }()

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if fwd, reversed := models.ForwardRelation(relation); reversed {
		source, relation, target = target, fwd, source
	}

	tag, err := s.Pool.Exec(ctx,
		`DELETE FROM graph_edges WHERE source = $1 AND relation = $2 AND target = $3`,
		source, relation, target,
	)
	if err != nil {
		return backendErr(err, "deleting edge")
	}

	if tag.RowsAffected() == 0 {
		return models.ErrEdgeNotFound
	}

	return nil
}

// GetEdges returns all edges attached to nodeID in insertion order,
// optionally filtered by relation. Forward edges come back as stored;
// edges where the node is the target are surfaced under the "reverse:"
// namespace, preserving the wire convention of dual-write deployments.
func (s *GraphStore) GetEdges(ctx context.Context, nodeID, relation string) (_ []models.Edge, err error) {
	start := time.Now()
	defer func() { observe("graph", "get_edges", start, err) }()

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	fwd, reversed := models.ForwardRelation(relation)

	switch {
	case relation == "":
		return s.edgesBothDirections(ctx, nodeID)
	case reversed:
		return s.reverseEdges(ctx, nodeID, fwd)
	default:
		return s.forwardEdges(ctx, nodeID, relation)
	}
}

func (s *GraphStore) forwardEdges(ctx context.Context, nodeID, relation string) ([]models.Edge, error) {
	rows, err := s.Pool.Query(ctx,
		`SELECT `+edgeColumns+` FROM graph_edges
		 WHERE source = $1 AND relation = $2 ORDER BY seq`,
		nodeID, relation)
	if err != nil {
		return nil, backendErr(err, "querying edges")
	}
	defer rows.Close()

	return collectEdges(rows)
}

func (s *GraphStore) reverseEdges(ctx context.Context, nodeID, relation string) ([]models.Edge, error) {
	rows, err := s.Pool.Query(ctx,
		`SELECT `+edgeColumns+` FROM graph_edges
		 WHERE target = $1 AND relation = $2 ORDER BY seq`,
		nodeID, relation)
	if err != nil {
		return nil, backendErr(err, "querying reverse edges")
	}
	defer rows.Close()

	edges, err := collectEdges(rows)
	if err != nil {
		return nil, err
	}

	for i := range edges {
		edges[i] = edges[i].Reversed()
	}

	return edges, nil
}

func (s *GraphStore) edgesBothDirections(ctx context.Context, nodeID string) ([]models.Edge, error) {
	rows, err := s.Pool.Query(ctx,
		`SELECT `+edgeColumns+` FROM graph_edges
		 WHERE source = $1 OR target = $1 ORDER BY seq`,
		nodeID)
	if err != nil {
		return nil, backendErr(err, "querying edges")
	}
	defer rows.Close()

	stored, err := collectEdges(rows)
	if err != nil {
		return nil, err
	}

	edges := make([]models.Edge, 0, len(stored))

	for _, e := range stored {
		if e.Source == nodeID {
			edges = append(edges, e)
		}

		// A self-loop contributes both directions, like dual-write did.
		if e.Target == nodeID {
			edges = append(edges, e.Reversed())
		}
	}

	return edges, nil
}

// Traverse returns neighbor node ids one hop away over the given
// relation, in insertion order. With reverse set (or a reverse-namespaced
// relation) it walks edges pointing at nodeID instead.
func (s *GraphStore) Traverse(ctx context.Context, nodeID, relation string, reverse bool) (_ []string, err error) {
	start := time.Now()
	defer func() { observe("graph", "traverse", start, err) }()

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	fwd, namespaced := models.ForwardRelation(relation)
	if namespaced {
		relation, reverse = fwd, true
	}

	sql := `SELECT target FROM graph_edges WHERE source = $1 AND relation = $2 ORDER BY seq`
	if reverse {
		sql = `SELECT source FROM graph_edges WHERE target = $1 AND relation = $2 ORDER BY seq`
	}

	rows, err := s.Pool.Query(ctx, sql, nodeID, relation)
	if err != nil {
		return nil, backendErr(err, "traversing edges")
	}
	defer rows.Close()

	ids := make([]string, 0, 8)

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, backendErr(err, "scanning neighbor id")
		}

		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, backendErr(err, "iterating neighbors")
	}

	return ids, nil
}
