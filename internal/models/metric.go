package models

import (
	"strings"
	"time"
)

// Retention defaults applied by ingestion when a point carries no
// explicit expiry.
const (
	WeatherRetention = 365 * 24 * time.Hour
	MarketRetention  = 2 * 365 * 24 * time.Hour
)

// MetricPoint is one time-stamped measurement in a metric series.
// Timestamps are epoch milliseconds. A second append with the same
// (MetricID, Timestamp) overwrites the first.
type MetricPoint struct {
	MetricID  string         `json:"metric_id"`
	Timestamp int64          `json:"timestamp"`
	Value     float64        `json:"value"`
	Location  string         `json:"location,omitempty"`
	Source    string         `json:"source,omitempty"`
	Unit      string         `json:"unit,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	ExpiresAt *time.Time     `json:"expires_at,omitempty"`
}

// Validate checks required fields.
func (p *MetricPoint) Validate() error {
	if p.MetricID == "" {
		return ErrMissingMetricID
	}

	if p.Timestamp <= 0 {
		return Validationf("timestamp must be positive epoch milliseconds, got %d", p.Timestamp)
	}

	return nil
}

// Time returns the point's timestamp as a time.Time.
func (p *MetricPoint) Time() time.Time {
	return time.UnixMilli(p.Timestamp)
}

// ApplyRetention fills in the default expiry for a point that carries
// none, keyed on the metric id namespace. Points outside the weather
// and market namespaces keep no expiry.
func (p *MetricPoint) ApplyRetention(now time.Time) {
	if p.ExpiresAt != nil {
		return
	}

	var retention time.Duration

	switch {
	case strings.HasPrefix(p.MetricID, "weather:"):
		retention = WeatherRetention
	case strings.HasPrefix(p.MetricID, "market:"):
		retention = MarketRetention
	default:
		return
	}

	expires := now.Add(retention)
	p.ExpiresAt = &expires
}

// Bucket is one non-empty aggregation bucket. Timestamp is the bucket
// key: floor(point timestamp / width) * width.
type Bucket struct {
	Timestamp int64   `json:"timestamp"`
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	Avg       float64 `json:"avg"`
	Count     int     `json:"count"`
}

// Trend classifications derived from the regression slope of a series.
const (
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
	TrendStable     = "stable"
)

// SeriesStats summarizes a metric range. StdDev is the population
// standard deviation. Trend classifies the least-squares slope of value
// against elapsed days since the first point, thresholded at ±5% of the
// mean; a single-point range is stable with zero deviation.
type SeriesStats struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Avg    float64 `json:"avg"`
	Count  int     `json:"count"`
	StdDev float64 `json:"std_dev"`
	Trend  string  `json:"trend"`
}
