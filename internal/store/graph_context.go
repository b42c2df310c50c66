package store

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/agromitra/agromitra/internal/metrics"
	"github.com/agromitra/agromitra/internal/models"
)

// EntityContext returns an entity with its relationships grouped by
// relation type, each edge target resolved to a summary. Targets are
// independent point reads and resolve concurrently.
func (s *GraphStore) EntityContext(ctx context.Context, nodeID string) (_ *models.EntityContext, err error) {
	start := time.Now()
	defer func() { observe("graph", "entity_context", start, err) }()

	entity, err := s.GetNode(ctx, nodeID)
	if err != nil {
		return nil, err
	}

	edges, err := s.GetEdges(ctx, nodeID, "")
	if err != nil {
		return nil, err
	}

	summaries := make([]models.RelatedEntity, len(edges))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency())

	for i, e := range edges {
		g.Go(func() error {
			target, err := s.GetNode(gctx, e.Target)
			if err != nil {
				if errors.Is(err, models.ErrNotFound) {
					// Dangling target: surface the id, keep going.
					summaries[i] = models.RelatedEntity{ID: e.Target, Confidence: e.Confidence}

					return nil
				}

				return err
			}

			summaries[i] = models.RelatedEntity{
				ID:         target.ID,
				Type:       target.Type,
				Name:       target.Name,
				Confidence: e.Confidence,
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	grouped := make(map[string][]models.RelatedEntity, len(edges))
	for i, e := range edges {
		grouped[e.Relation] = append(grouped[e.Relation], summaries[i])
	}

	return &models.EntityContext{Entity: *entity, Relationships: grouped}, nil
}

// CheckSymmetry scans for legacy dual-write rows around a node: an edge
// stored under the reverse namespace whose forward twin is missing.
// Natively written data cannot be asymmetric (there is only one row per
// edge), so findings come from imported datasets. Warnings are logged
// and counted, never returned as failures.
func (s *GraphStore) CheckSymmetry(ctx context.Context, nodeID string) (warnings []models.ConsistencyWarning, err error) {
	start := time.Now()
	defer func() { observe("graph", "check_symmetry", start, err) }()

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := s.Pool.Query(ctx,
		`SELECT r.source, r.relation, r.target FROM graph_edges r
		 WHERE (r.source = $1 OR r.target = $1)
		   AND r.relation LIKE 'reverse:%'
		   AND NOT EXISTS (
			SELECT 1 FROM graph_edges f
			WHERE f.source = r.target
			  AND f.relation = substring(r.relation FROM 9)
			  AND f.target = r.source
		 )`,
		nodeID)
	if err != nil {
		return nil, backendErr(err, "checking edge symmetry")
	}
	defer rows.Close()

	for rows.Next() {
		var w models.ConsistencyWarning
		if err := rows.Scan(&w.Source, &w.Relation, &w.Target); err != nil {
			return nil, backendErr(err, "scanning asymmetric edge")
		}

		w.Detail = "reverse row without forward twin (imported dual-write data)"
		warnings = append(warnings, w)
	}

	if err := rows.Err(); err != nil {
		return nil, backendErr(err, "iterating asymmetric edges")
	}

	for _, w := range warnings {
		metrics.ConsistencyWarnings.Inc()
		s.Log.WithField("warning", w.String()).Warn("graph consistency warning")
	}

	return warnings, nil
}
