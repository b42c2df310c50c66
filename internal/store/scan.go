package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/agromitra/agromitra/internal/models"
)

// itemColumns lists the columns selected for knowledge item queries.
const itemColumns = `id, text, embedding, metadata, created_at`

// nodeColumns lists the columns selected for graph node queries.
const nodeColumns = `id, type, name, properties, confidence, source, created_at`

// edgeColumns lists the columns selected for graph edge queries.
const edgeColumns = `source, relation, target, properties, confidence, source_ref, created_at`

// pointColumns lists the columns selected for metric point queries.
const pointColumns = `metric_id, ts, value, location, source, unit, metadata, expires_at`

// scanItem scans a single row into a models.KnowledgeItem.
func scanItem(scan func(dest ...any) error) (*models.KnowledgeItem, error) {
	var it models.KnowledgeItem
	var meta []byte

	if err := scan(&it.ID, &it.Text, &it.Embedding, &meta, &it.CreatedAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(meta, &it.Metadata); err != nil {
		return nil, fmt.Errorf("unmarshalling item metadata: %w", err)
	}

	return &it, nil
}

// scanNode scans a single row into a models.Node.
func scanNode(scan func(dest ...any) error) (*models.Node, error) {
	var n models.Node
	var props []byte

	if err := scan(&n.ID, &n.Type, &n.Name, &props, &n.Confidence, &n.Source, &n.CreatedAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(props, &n.Properties); err != nil {
		return nil, fmt.Errorf("unmarshalling node properties: %w", err)
	}

	return &n, nil
}

// scanEdge scans a single row into a models.Edge.
func scanEdge(scan func(dest ...any) error) (*models.Edge, error) {
	var e models.Edge
	var props []byte

	if err := scan(&e.Source, &e.Relation, &e.Target, &props, &e.Confidence, &e.SourceRef, &e.CreatedAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(props, &e.Properties); err != nil {
		return nil, fmt.Errorf("unmarshalling edge properties: %w", err)
	}

	return &e, nil
}

// scanPoint scans a single row into a models.MetricPoint.
func scanPoint(scan func(dest ...any) error) (*models.MetricPoint, error) {
	var p models.MetricPoint
	var meta []byte
	var expires *time.Time

	if err := scan(&p.MetricID, &p.Timestamp, &p.Value, &p.Location, &p.Source, &p.Unit, &meta, &expires); err != nil {
		return nil, err
	}

	p.ExpiresAt = expires

	if err := json.Unmarshal(meta, &p.Metadata); err != nil {
		return nil, fmt.Errorf("unmarshalling point metadata: %w", err)
	}

	return &p, nil
}

// collectItems scans all rows into a knowledge item slice.
func collectItems(rows pgx.Rows) ([]models.KnowledgeItem, error) {
	items := make([]models.KnowledgeItem, 0, 16)

	for rows.Next() {
		it, err := scanItem(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning item row: %w", err)
		}

		items = append(items, *it)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating item rows: %w", err)
	}

	return items, nil
}

// collectEdges scans all rows into an edge slice.
func collectEdges(rows pgx.Rows) ([]models.Edge, error) {
	edges := make([]models.Edge, 0, 16)

	for rows.Next() {
		e, err := scanEdge(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning edge row: %w", err)
		}

		edges = append(edges, *e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating edge rows: %w", err)
	}

	return edges, nil
}

// collectPoints scans all rows into a metric point slice.
func collectPoints(rows pgx.Rows) ([]models.MetricPoint, error) {
	points := make([]models.MetricPoint, 0, 32)

	for rows.Next() {
		p, err := scanPoint(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning point row: %w", err)
		}

		points = append(points, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating point rows: %w", err)
	}

	return points, nil
}

// marshalJSON marshals properties/metadata maps with an empty-object default.
func marshalJSON(m map[string]any) ([]byte, error) {
	if m == nil {
		m = map[string]any{}
	}

	data, err := json.Marshal(m)
	if err != nil {
		return nil, models.Validationf("invalid JSON value: %v", err)
	}

	return data, nil
}
