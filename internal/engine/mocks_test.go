package engine

import (
	"context"
	"io"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/agromitra/agromitra/internal/models"
)

// mockMetricReader records calls and returns configured responses.
type mockMetricReader struct {
	mu    sync.Mutex
	calls []string

	rangeFn    func(ctx context.Context, metricID string, startTS, endTS int64) ([]models.MetricPoint, error)
	latest     func(ctx context.Context, metricID string) (*models.MetricPoint, error)
	multiRange func(ctx context.Context, metricIDs []string, startTS, endTS int64) (map[string][]models.MetricPoint, error)
}

func (m *mockMetricReader) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, name)
}

func (m *mockMetricReader) Range(ctx context.Context, metricID string, startTS, endTS int64) ([]models.MetricPoint, error) {
	m.record("Range")
	return m.rangeFn(ctx, metricID, startTS, endTS)
}

func (m *mockMetricReader) Latest(ctx context.Context, metricID string) (*models.MetricPoint, error) {
	m.record("Latest")
	return m.latest(ctx, metricID)
}

func (m *mockMetricReader) MultiRange(ctx context.Context, metricIDs []string, startTS, endTS int64) (map[string][]models.MetricPoint, error) {
	m.record("MultiRange")
	return m.multiRange(ctx, metricIDs, startTS, endTS)
}

// mockRecommender returns a configured crop ranking.
type mockRecommender struct {
	mu    sync.Mutex
	calls []string

	recommendedCrops func(ctx context.Context, location, soilType, season string) ([]models.RankedCrop, bool, error)
}

func (m *mockRecommender) RecommendedCrops(ctx context.Context, location, soilType, season string) ([]models.RankedCrop, bool, error) {
	m.mu.Lock()
	m.calls = append(m.calls, "RecommendedCrops")
	m.mu.Unlock()

	return m.recommendedCrops(ctx, location, soilType, season)
}

// mockSearcher records the queries it saw.
type mockSearcher struct {
	mu      sync.Mutex
	queries []string
	filters []map[string]any

	searchByText func(ctx context.Context, text string, filter map[string]any, topK int) ([]models.ScoredItem, error)
}

func (m *mockSearcher) SearchByText(ctx context.Context, text string, filter map[string]any, topK int) ([]models.ScoredItem, error) {
	m.mu.Lock()
	m.queries = append(m.queries, text)
	m.filters = append(m.filters, filter)
	m.mu.Unlock()

	return m.searchByText(ctx, text, filter, topK)
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)

	return log
}

func testEngine(metrics MetricReader, graph CropRecommender, knowledge KnowledgeSearcher) *Engine {
	return New(metrics, graph, knowledge, testLogger(), 4)
}
