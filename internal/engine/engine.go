// Package engine composes the stores into the four advisory operations
// consumed by the dialogue layer and the CLI. Every operation is
// stateless: it validates its request, fans out reads, and returns a
// structured result or a typed error.
package engine

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/agromitra/agromitra/internal/models"
)

// MetricReader is the slice of the metric store the engine reads from.
type MetricReader interface {
	Range(ctx context.Context, metricID string, startTS, endTS int64) ([]models.MetricPoint, error)
	Latest(ctx context.Context, metricID string) (*models.MetricPoint, error)
	MultiRange(ctx context.Context, metricIDs []string, startTS, endTS int64) (map[string][]models.MetricPoint, error)
}

// CropRecommender ranks crops from the relationship graph.
type CropRecommender interface {
	RecommendedCrops(ctx context.Context, location, soilType, season string) ([]models.RankedCrop, bool, error)
}

// KnowledgeSearcher retrieves knowledge items by semantic text search.
type KnowledgeSearcher interface {
	SearchByText(ctx context.Context, text string, filter map[string]any, topK int) ([]models.ScoredItem, error)
}

// Engine answers weather, crop, market and scheme questions.
type Engine struct {
	metrics     MetricReader
	graph       CropRecommender
	knowledge   KnowledgeSearcher
	log         *logrus.Logger
	concurrency int

	// now is swapped in tests to pin window arithmetic.
	now func() time.Time
}

// New creates an Engine. concurrency bounds fan-out within one request;
// values < 1 fall back to 4.
func New(metrics MetricReader, graph CropRecommender, knowledge KnowledgeSearcher, log *logrus.Logger, concurrency int) *Engine {
	if concurrency < 1 {
		concurrency = 4
	}

	return &Engine{
		metrics:     metrics,
		graph:       graph,
		knowledge:   knowledge,
		log:         log,
		concurrency: concurrency,
		now:         time.Now,
	}
}
