package store

import (
	"math"
	"sort"

	"github.com/agromitra/agromitra/internal/models"
)

const msPerDay = 24 * 60 * 60 * 1000

// trendThreshold classifies a regression slope relative to the series
// mean: |slope| must exceed 5% of the mean to leave "stable".
const trendThreshold = 0.05

// aggregatePoints buckets points by floor(ts/bucketMs)*bucketMs. Only
// buckets that contain points are emitted, sorted ascending by key.
func aggregatePoints(points []models.MetricPoint, bucketMs int64) []models.Bucket {
	byKey := make(map[int64]*models.Bucket)

	for _, p := range points {
		key := (p.Timestamp / bucketMs) * bucketMs

		b, ok := byKey[key]
		if !ok {
			byKey[key] = &models.Bucket{
				Timestamp: key,
				Min:       p.Value,
				Max:       p.Value,
				Avg:       p.Value,
				Count:     1,
			}

			continue
		}

		b.Min = math.Min(b.Min, p.Value)
		b.Max = math.Max(b.Max, p.Value)
		// Avg holds the running sum until the final pass.
		b.Avg += p.Value
		b.Count++
	}

	buckets := make([]models.Bucket, 0, len(byKey))

	for _, b := range byKey {
		b.Avg /= float64(b.Count)
		buckets = append(buckets, *b)
	}

	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Timestamp < buckets[j].Timestamp
	})

	return buckets
}

// computeStats summarizes a non-empty point slice ordered by timestamp.
// StdDev is the population standard deviation. The trend is the sign of
// the least-squares slope of value against elapsed days since the first
// point, thresholded at ±5% of the mean; a single point has an undefined
// slope, guarded to zero, and reports stable.
func computeStats(points []models.MetricPoint) *models.SeriesStats {
	stats := &models.SeriesStats{
		Min:   points[0].Value,
		Max:   points[0].Value,
		Count: len(points),
	}

	var sum float64

	for _, p := range points {
		stats.Min = math.Min(stats.Min, p.Value)
		stats.Max = math.Max(stats.Max, p.Value)
		sum += p.Value
	}

	stats.Avg = sum / float64(len(points))

	var sqDiff float64

	for _, p := range points {
		d := p.Value - stats.Avg
		sqDiff += d * d
	}

	stats.StdDev = math.Sqrt(sqDiff / float64(len(points)))
	stats.Trend = classifyTrend(regressionSlope(points), stats.Avg)

	return stats
}

// regressionSlope fits value = a + b*x by least squares, where x is the
// elapsed time in days since the first point. Returns 0 for fewer than
// two points or a degenerate x spread.
func regressionSlope(points []models.MetricPoint) float64 {
	n := float64(len(points))
	if n < 2 {
		return 0
	}

	first := points[0].Timestamp

	var sumX, sumY, sumXY, sumXX float64

	for _, p := range points {
		x := float64(p.Timestamp-first) / msPerDay
		sumX += x
		sumY += p.Value
		sumXY += x * p.Value
		sumXX += x * x
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}

	return (n*sumXY - sumX*sumY) / denom
}

func classifyTrend(slope, avg float64) string {
	switch {
	case slope > trendThreshold*avg:
		return models.TrendIncreasing
	case slope < -trendThreshold*avg:
		return models.TrendDecreasing
	default:
		return models.TrendStable
	}
}
