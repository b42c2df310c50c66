// Package store provides focused, single-concern data access stores for
// the agricultural knowledge core.
//
// Each store owns one domain (knowledge items, the relationship graph,
// metric series) and embeds shared helpers (Pool, logger) via the Base
// struct. Stores never import each other; shared logic lives in this
// file or in dedicated helper files (scan.go, similarity.go,
// metric_math.go).
package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"github.com/agromitra/agromitra/internal/dbpool"
	"github.com/agromitra/agromitra/internal/metrics"
	"github.com/agromitra/agromitra/internal/models"
)

const defaultQueryTimeout = 30 * time.Second

// defaultConcurrency bounds fan-out reads (multi-series ranges, edge
// target resolution) when Base.Concurrency is unset.
const defaultConcurrency = 4

// Base contains shared dependencies for all stores.
// Embed this in each store struct.
type Base struct {
	Pool *dbpool.Pool
	Log  *logrus.Logger

	// Concurrency limits parallel reads within one composed request.
	Concurrency int
}

func (b *Base) concurrency() int {
	if b.Concurrency > 0 {
		return b.Concurrency
	}

	return defaultConcurrency
}

// withTimeout creates a context with the default query timeout.
func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, defaultQueryTimeout)
}

// observe records the duration and error class of a store operation.
func observe(store, op string, start time.Time, err error) {
	metrics.StoreQueryDuration.WithLabelValues(store, op).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.StoreErrorsTotal.WithLabelValues(store, errClass(err)).Inc()
	}
}

func errClass(err error) string {
	switch {
	case errors.Is(err, models.ErrValidation):
		return "validation"
	case errors.Is(err, models.ErrNotFound):
		return "not_found"
	case errors.Is(err, models.ErrProvider):
		return "provider"
	default:
		return "internal"
	}
}

// backendErr maps a backend failure into the provider error class so it
// never crosses the component boundary as a raw pgx error. pgx.ErrNoRows
// is the caller's responsibility to map to the right not-found sentinel.
func backendErr(err error, op string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	return models.Providerf(err, op)
}
