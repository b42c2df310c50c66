package engine

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/agromitra/agromitra/internal/models"
)

func hasAdvisory(advisories []string, want string) bool {
	for _, a := range advisories {
		if a == want {
			return true
		}
	}

	return false
}

const favorableAdvisory = "Temperature conditions are favorable for most crops."

func TestWeatherForecastColdStart(t *testing.T) {
	metrics := &mockMetricReader{
		multiRange: func(_ context.Context, ids []string, _, _ int64) (map[string][]models.MetricPoint, error) {
			out := make(map[string][]models.MetricPoint, len(ids))
			for _, id := range ids {
				out[id] = nil
			}

			return out, nil
		},
	}

	e := testEngine(metrics, nil, nil)

	result, err := e.WeatherForecast(context.Background(), WeatherRequest{District: "Pune", Days: 3})
	if err != nil {
		t.Fatalf("WeatherForecast: %v", err)
	}

	if len(result.Days) != 3 {
		t.Fatalf("got %d days, want 3", len(result.Days))
	}

	for i, d := range result.Days {
		if d.TempHigh != 25 || d.TempLow != 15 || d.Rainfall != 0 || d.Humidity != 50 || d.WindSpeed != 5 {
			t.Errorf("day %d did not use defaults: %+v", i, d)
		}
	}

	if result.Summary.TempAvg != 20 {
		t.Errorf("avg temp = %v, want 20", result.Summary.TempAvg)
	}

	if result.Summary.RainProbability != 0 {
		t.Errorf("rain probability = %v, want 0", result.Summary.RainProbability)
	}

	if !hasAdvisory(result.Advisories, favorableAdvisory) {
		t.Errorf("missing favorable advisory, got %v", result.Advisories)
	}
}

func TestWeatherForecastAdvisories(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	dayStart := now.Truncate(24 * time.Hour)

	point := func(id string, day int, value float64) models.MetricPoint {
		return models.MetricPoint{
			MetricID:  id,
			Timestamp: dayStart.AddDate(0, 0, day).UnixMilli(),
			Value:     value,
		}
	}

	highID, lowID, rainID, _, _ := weatherSeries("Nagpur")

	metrics := &mockMetricReader{
		multiRange: func(_ context.Context, _ []string, _, _ int64) (map[string][]models.MetricPoint, error) {
			return map[string][]models.MetricPoint{
				highID: {point(highID, 0, 41), point(highID, 1, 39)},
				lowID:  {point(lowID, 0, 8)},
				rainID: {point(rainID, 1, 60)},
			}, nil
		},
	}

	e := testEngine(metrics, nil, nil)
	e.now = func() time.Time { return now }

	result, err := e.WeatherForecast(context.Background(), WeatherRequest{District: "Nagpur", Days: 2})
	if err != nil {
		t.Fatalf("WeatherForecast: %v", err)
	}

	if result.Summary.TempMax != 41 || result.Summary.TempMin != 8 {
		t.Errorf("range = [%v, %v], want [8, 41]", result.Summary.TempMin, result.Summary.TempMax)
	}

	if result.Summary.TotalRainfall != 60 {
		t.Errorf("total rainfall = %v, want 60", result.Summary.TotalRainfall)
	}

	if math.Abs(result.Summary.RainProbability-0.5) > 1e-9 {
		t.Errorf("rain probability = %v, want 0.5", result.Summary.RainProbability)
	}

	if len(result.Advisories) != 3 {
		t.Fatalf("got %d advisories, want heat, frost and drainage: %v", len(result.Advisories), result.Advisories)
	}

	if hasAdvisory(result.Advisories, favorableAdvisory) {
		t.Error("favorable advisory present despite extreme range")
	}
}

func TestWeatherForecastDrySpell(t *testing.T) {
	metrics := &mockMetricReader{
		multiRange: func(_ context.Context, _ []string, _, _ int64) (map[string][]models.MetricPoint, error) {
			return map[string][]models.MetricPoint{}, nil
		},
	}

	e := testEngine(metrics, nil, nil)

	result, err := e.WeatherForecast(context.Background(), WeatherRequest{District: "Pune", Days: 7})
	if err != nil {
		t.Fatalf("WeatherForecast: %v", err)
	}

	if !hasAdvisory(result.Advisories, "Very little rainfall expected. Plan irrigation for the coming week.") {
		t.Errorf("missing irrigation advisory over a 7 day dry window: %v", result.Advisories)
	}
}

func TestWeatherForecastValidation(t *testing.T) {
	e := testEngine(&mockMetricReader{}, nil, nil)

	_, err := e.WeatherForecast(context.Background(), WeatherRequest{})
	if !errors.Is(err, models.ErrValidation) {
		t.Errorf("got %v, want ErrValidation", err)
	}

	_, err = e.WeatherForecast(context.Background(), WeatherRequest{District: "Pune", Days: 90})
	if !errors.Is(err, models.ErrValidation) {
		t.Errorf("oversized days: got %v, want ErrValidation", err)
	}
}

func TestWeatherForecastDefaultDays(t *testing.T) {
	var sawIDs []string

	metrics := &mockMetricReader{
		multiRange: func(_ context.Context, ids []string, _, _ int64) (map[string][]models.MetricPoint, error) {
			sawIDs = ids
			return map[string][]models.MetricPoint{}, nil
		},
	}

	e := testEngine(metrics, nil, nil)

	result, err := e.WeatherForecast(context.Background(), WeatherRequest{District: "Nashik"})
	if err != nil {
		t.Fatalf("WeatherForecast: %v", err)
	}

	if len(result.Days) != defaultForecast {
		t.Errorf("got %d days, want default %d", len(result.Days), defaultForecast)
	}

	if len(sawIDs) != 5 {
		t.Fatalf("queried %d series, want 5", len(sawIDs))
	}

	if sawIDs[0] != "weather:temperature:high:nashik" {
		t.Errorf("first series id = %q", sawIDs[0])
	}
}
