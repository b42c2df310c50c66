package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/errgroup"

	"github.com/agromitra/agromitra/internal/models"
)

// MetricStore handles append-only time-series measurements.
type MetricStore struct {
	Base
}

// NewMetricStore creates a MetricStore.
func NewMetricStore(base Base) *MetricStore {
	return &MetricStore{Base: base}
}

// Append upserts a point. Appends are idempotent per (metric id,
// timestamp): a second append with the same key overwrites the first.
func (s *MetricStore) Append(ctx context.Context, p models.MetricPoint) (err error) {
	start := time.Now()
	defer func() { observe("metric", "append", start, err) }()

	if err = p.Validate(); err != nil {
		return err
	}

	p.ApplyRetention(time.Now())

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	metaJSON, err := marshalJSON(p.Metadata)
	if err != nil {
		return err
	}

	_, err = s.Pool.Exec(ctx, appendSQL,
		p.MetricID, p.Timestamp, p.Value, p.Location, p.Source, p.Unit, metaJSON, p.ExpiresAt,
	)
	if err != nil {
		return backendErr(err, "appending metric point")
	}

	return nil
}

const appendSQL = `INSERT INTO metric_points (metric_id, ts, value, location, source, unit, metadata, expires_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (metric_id, ts) DO UPDATE
	SET value = EXCLUDED.value, location = EXCLUDED.location, source = EXCLUDED.source,
		unit = EXCLUDED.unit, metadata = EXCLUDED.metadata, expires_at = EXCLUDED.expires_at`

// AppendBatch upserts many points in one round trip. Each point is an
// independently keyed write; a failure reports the first bad point.
func (s *MetricStore) AppendBatch(ctx context.Context, points []models.MetricPoint) (err error) {
	start := time.Now()
	defer func() { observe("metric", "append_batch", start, err) }()

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	batch := &pgx.Batch{}

	for i := range points {
		p := &points[i]
		if err = p.Validate(); err != nil {
			return fmt.Errorf("point %d: %w", i, err)
		}

		p.ApplyRetention(time.Now())

		metaJSON, err := marshalJSON(p.Metadata)
		if err != nil {
			return fmt.Errorf("point %d: %w", i, err)
		}

		batch.Queue(appendSQL,
			p.MetricID, p.Timestamp, p.Value, p.Location, p.Source, p.Unit, metaJSON, p.ExpiresAt)
	}

	results := s.Pool.SendBatch(ctx, batch)
	defer results.Close() //nolint:errcheck // close after per-result errors are checked.

	for i := range points {
		if _, err = results.Exec(); err != nil {
			return backendErr(fmt.Errorf("point %d: %w", i, err), "appending metric batch")
		}
	}

	return nil
}

// Range returns points for a metric within [start, end], ascending by
// timestamp. Expired points are filtered at read time: readers must not
// assume the retention sweep has run.
func (s *MetricStore) Range(ctx context.Context, metricID string, startTS, endTS int64) (_ []models.MetricPoint, err error) {
	start := time.Now()
	defer func() { observe("metric", "range", start, err) }()

	if metricID == "" {
		return nil, models.ErrMissingMetricID
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := s.Pool.Query(ctx,
		`SELECT `+pointColumns+` FROM metric_points
		 WHERE metric_id = $1 AND ts >= $2 AND ts <= $3
		   AND (expires_at IS NULL OR expires_at > now())
		 ORDER BY ts`,
		metricID, startTS, endTS)
	if err != nil {
		return nil, backendErr(err, "querying metric range")
	}
	defer rows.Close()

	return collectPoints(rows)
}

// Latest returns the most recent unexpired point for a metric.
func (s *MetricStore) Latest(ctx context.Context, metricID string) (_ *models.MetricPoint, err error) {
	start := time.Now()
	defer func() { observe("metric", "latest", start, err) }()

	if metricID == "" {
		return nil, models.ErrMissingMetricID
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	row := s.Pool.QueryRow(ctx,
		`SELECT `+pointColumns+` FROM metric_points
		 WHERE metric_id = $1 AND (expires_at IS NULL OR expires_at > now())
		 ORDER BY ts DESC LIMIT 1`,
		metricID)

	p, err := scanPoint(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrSeriesEmpty
		}

		return nil, backendErr(err, "reading latest point")
	}

	return p, nil
}

// MultiRange runs independent per-id range queries concurrently and
// returns a map with an entry for every requested id (empty slice when
// the id has no data in the window).
func (s *MetricStore) MultiRange(ctx context.Context, metricIDs []string, startTS, endTS int64) (_ map[string][]models.MetricPoint, err error) {
	start := time.Now()
	defer func() { observe("metric", "multi_range", start, err) }()

	results := make(map[string][]models.MetricPoint, len(metricIDs))

	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency())

	for _, id := range metricIDs {
		g.Go(func() error {
			points, err := s.Range(gctx, id, startTS, endTS)
			if err != nil {
				return fmt.Errorf("range %q: %w", id, err)
			}

			mu.Lock()
			results[id] = points
			mu.Unlock()

			return nil
		})
	}

	if err = g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// Aggregate buckets a range into fixed windows keyed by
// floor(ts/bucketMs)*bucketMs. Only non-empty buckets are emitted,
// ascending by key.
func (s *MetricStore) Aggregate(ctx context.Context, metricID string, startTS, endTS, bucketMs int64) (_ []models.Bucket, err error) {
	start := time.Now()
	defer func() { observe("metric", "aggregate", start, err) }()

	if bucketMs <= 0 {
		return nil, models.Validationf("bucket width must be positive, got %d", bucketMs)
	}

	points, err := s.Range(ctx, metricID, startTS, endTS)
	if err != nil {
		return nil, err
	}

	return aggregatePoints(points, bucketMs), nil
}

// Statistics summarizes a range: min/max/avg/count, population standard
// deviation, and the regression-slope trend classification. An empty
// range is a not-found condition.
func (s *MetricStore) Statistics(ctx context.Context, metricID string, startTS, endTS int64) (_ *models.SeriesStats, err error) {
	start := time.Now()
	defer func() { observe("metric", "statistics", start, err) }()

	points, err := s.Range(ctx, metricID, startTS, endTS)
	if err != nil {
		return nil, err
	}

	if len(points) == 0 {
		return nil, models.ErrSeriesEmpty
	}

	return computeStats(points), nil
}

// DeleteRange enumerates matching points and deletes each individually;
// there is no atomic range-delete. A concurrent append landing mid-delete
// may or may not survive; the race is accepted.
func (s *MetricStore) DeleteRange(ctx context.Context, metricID string, startTS, endTS int64) (deleted int, err error) {
	start := time.Now()
	defer func() { observe("metric", "delete_range", start, err) }()

	if metricID == "" {
		return 0, models.ErrMissingMetricID
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := s.Pool.Query(ctx,
		`SELECT ts FROM metric_points WHERE metric_id = $1 AND ts >= $2 AND ts <= $3 ORDER BY ts`,
		metricID, startTS, endTS)
	if err != nil {
		return 0, backendErr(err, "enumerating points for delete")
	}

	var stamps []int64

	for rows.Next() {
		var ts int64
		if err := rows.Scan(&ts); err != nil {
			rows.Close()

			return 0, backendErr(err, "scanning point timestamp")
		}

		stamps = append(stamps, ts)
	}

	if err := rows.Err(); err != nil {
		rows.Close()

		return 0, backendErr(err, "iterating point timestamps")
	}

	rows.Close()

	for _, ts := range stamps {
		if err := ctx.Err(); err != nil {
			return deleted, err
		}

		tag, err := s.Pool.Exec(ctx,
			`DELETE FROM metric_points WHERE metric_id = $1 AND ts = $2`, metricID, ts)
		if err != nil {
			return deleted, backendErr(err, "deleting metric point")
		}

		deleted += int(tag.RowsAffected())
	}

	return deleted, nil
}

// PruneExpired removes points whose retention expiry has passed. This is
// the sweep hook: expiry is otherwise enforced passively at read time.
func (s *MetricStore) PruneExpired(ctx context.Context) (pruned int, err error) {
	start := time.Now()
	defer func() { observe("metric", "prune_expired", start, err) }()

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tag, err := s.Pool.Exec(ctx,
		`DELETE FROM metric_points WHERE expires_at IS NOT NULL AND expires_at <= now()`)
	if err != nil {
		return 0, backendErr(err, "pruning expired points")
	}

	return int(tag.RowsAffected()), nil
}
