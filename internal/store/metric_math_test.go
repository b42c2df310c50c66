package store

import (
	"math"
	"testing"

	"github.com/agromitra/agromitra/internal/models"
)

func pts(pairs ...float64) []models.MetricPoint {
	// pairs alternate timestamp, value.
	points := make([]models.MetricPoint, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		points = append(points, models.MetricPoint{
			MetricID:  "test:series",
			Timestamp: int64(pairs[i]),
			Value:     pairs[i+1],
		})
	}

	return points
}

func TestAggregateBuckets(t *testing.T) {
	const bucket = 1000

	points := pts(
		0, 10,
		500, 20,
		999, 30,
		1000, 5,
		2500, 7,
	)

	buckets := aggregatePoints(points, bucket)

	if len(buckets) != 3 {
		t.Fatalf("got %d buckets, want 3 (sparse)", len(buckets))
	}

	// Keys are multiples of the bucket width, ascending.
	for i, b := range buckets {
		if b.Timestamp%bucket != 0 {
			t.Errorf("bucket key %d is not a multiple of %d", b.Timestamp, bucket)
		}

		if i > 0 && b.Timestamp <= buckets[i-1].Timestamp {
			t.Error("buckets must ascend")
		}
	}

	first := buckets[0]
	if first.Count != 3 || first.Min != 10 || first.Max != 30 || math.Abs(first.Avg-20) > 1e-9 {
		t.Errorf("first bucket = %+v", first)
	}

	if buckets[1].Count != 1 || buckets[1].Avg != 5 {
		t.Errorf("second bucket = %+v", buckets[1])
	}

	if buckets[2].Timestamp != 2000 {
		t.Errorf("third bucket key = %d, want 2000", buckets[2].Timestamp)
	}
}

func TestAggregateEmpty(t *testing.T) {
	if got := aggregatePoints(nil, 1000); len(got) != 0 {
		t.Errorf("empty input produced %d buckets", len(got))
	}
}

func TestStatsSinglePoint(t *testing.T) {
	stats := computeStats(pts(1000, 42))

	if stats.Count != 1 || stats.Min != 42 || stats.Max != 42 || stats.Avg != 42 {
		t.Errorf("stats = %+v", stats)
	}

	if stats.StdDev != 0 {
		t.Errorf("single-point stddev = %v, want 0", stats.StdDev)
	}

	if stats.Trend != models.TrendStable {
		t.Errorf("single-point trend = %q, want stable", stats.Trend)
	}
}

func TestStatsPopulationStdDev(t *testing.T) {
	stats := computeStats(pts(0, 2, 1, 4, 2, 4, 3, 4, 4, 5, 5, 5, 6, 7, 7, 9))

	// Known population: mean 5, stddev 2.
	if math.Abs(stats.Avg-5) > 1e-9 {
		t.Errorf("avg = %v, want 5", stats.Avg)
	}

	if math.Abs(stats.StdDev-2) > 1e-9 {
		t.Errorf("stddev = %v, want 2", stats.StdDev)
	}
}

func TestTrendClassification(t *testing.T) {
	day := float64(msPerDay)

	tests := []struct {
		name   string
		points []models.MetricPoint
		want   string
	}{
		{
			// +10/day against avg ~105: slope far above 5% of mean.
			"increasing",
			pts(0, 100, day, 110, 2*day, 120),
			models.TrendIncreasing,
		},
		{
			"decreasing",
			pts(0, 120, day, 110, 2*day, 100),
			models.TrendDecreasing,
		},
		{
			// +1/day against avg ~100: inside the ±5% band.
			"stable",
			pts(0, 100, day, 101, 2*day, 102),
			models.TrendStable,
		},
		{
			// Same timestamp twice: degenerate x spread guards to zero.
			"degenerate",
			pts(1000, 1, 1000, 100),
			models.TrendStable,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := computeStats(tc.points).Trend; got != tc.want {
				t.Errorf("trend = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestRegressionSlope(t *testing.T) {
	// Exact line: value = 50 + 10 * days.
	slope := regressionSlope(pts(0, 50, float64(msPerDay), 60, 2*float64(msPerDay), 70))

	if math.Abs(slope-10) > 1e-9 {
		t.Errorf("slope = %v, want 10", slope)
	}
}
