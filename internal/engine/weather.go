package engine

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/agromitra/agromitra/internal/metrics"
	"github.com/agromitra/agromitra/internal/models"
)

// Per-day substitutes used when a series has no point for a forecast day.
const (
	defaultTempHigh = 25
	defaultTempLow  = 15
	defaultRainfall = 0
	defaultHumidity = 50
	defaultWind     = 5
)

// Advisory thresholds.
const (
	heatStressTemp  = 35.0
	frostTemp       = 10.0
	drainageRainMM  = 50.0
	drySpellRainMM  = 5.0
	drySpellMinDays = 7
	maxForecastDays = 14
	defaultForecast = 3
)

// WeatherRequest asks for a district forecast.
type WeatherRequest struct {
	District string `json:"district"`
	Days     int    `json:"days"`
}

// Validate checks required fields and normalizes Days.
func (r *WeatherRequest) Validate() error {
	if r.District == "" {
		return models.Validationf("district is required")
	}

	if r.Days <= 0 {
		r.Days = defaultForecast
	}

	if r.Days > maxForecastDays {
		return models.Validationf("days must be at most %d", maxForecastDays)
	}

	return nil
}

// DayForecast is one day of the forecast, defaults filled in where the
// series had no data.
type DayForecast struct {
	Date      string  `json:"date"`
	TempHigh  float64 `json:"temp_high"`
	TempLow   float64 `json:"temp_low"`
	Rainfall  float64 `json:"rainfall_mm"`
	Humidity  float64 `json:"humidity_pct"`
	WindSpeed float64 `json:"wind_speed_kmh"`
}

// WeatherSummary aggregates the forecast window.
type WeatherSummary struct {
	TempMax         float64 `json:"temp_max"`
	TempMin         float64 `json:"temp_min"`
	TempAvg         float64 `json:"temp_avg"`
	TotalRainfall   float64 `json:"total_rainfall_mm"`
	RainProbability float64 `json:"rain_probability"`
}

// WeatherResult is the forecast with qualitative advisories.
type WeatherResult struct {
	District   string         `json:"district"`
	Days       []DayForecast  `json:"days"`
	Summary    WeatherSummary `json:"summary"`
	Advisories []string       `json:"advisories"`
}

// weatherSeries enumerates the per-district series the forecast reads.
func weatherSeries(district string) (high, low, rain, humidity, wind string) {
	high = models.MetricID("weather", "temperature", "high", district)
	low = models.MetricID("weather", "temperature", "low", district)
	rain = models.MetricID("weather", "rainfall", district)
	humidity = models.MetricID("weather", "humidity", district)
	wind = models.MetricID("weather", "wind", district)

	return
}

// WeatherForecast reads the district's weather series for the next
// req.Days days. A day with no stored point gets fixed defaults rather
// than failing, so a cold store still produces a usable forecast.
func (e *Engine) WeatherForecast(ctx context.Context, req WeatherRequest) (_ *WeatherResult, err error) {
	defer func() { observeAdvisory("weather", err) }()

	if err = req.Validate(); err != nil {
		return nil, err
	}

	highID, lowID, rainID, humidityID, windID := weatherSeries(req.District)

	dayStart := e.now().UTC().Truncate(24 * time.Hour)
	startTS := dayStart.UnixMilli()
	endTS := dayStart.AddDate(0, 0, req.Days).UnixMilli() - 1

	series, err := e.metrics.MultiRange(ctx, []string{highID, lowID, rainID, humidityID, windID}, startTS, endTS)
	if err != nil {
		return nil, err
	}

	dayMs := int64(24 * time.Hour / time.Millisecond)

	// Last point per day wins, matching append overwrite semantics.
	perDay := func(id string, day int, fallback float64) float64 {
		value := fallback

		for _, p := range series[id] {
			if (p.Timestamp-startTS)/dayMs == int64(day) {
				value = p.Value
			}
		}

		return value
	}

	result := &WeatherResult{District: req.District}
	tempSum := 0.0
	rainyDays := 0

	result.Summary.TempMax = math.Inf(-1)
	result.Summary.TempMin = math.Inf(1)

	for day := 0; day < req.Days; day++ {
		d := DayForecast{
			Date:      dayStart.AddDate(0, 0, day).Format("2006-01-02"),
			TempHigh:  perDay(highID, day, defaultTempHigh),
			TempLow:   perDay(lowID, day, defaultTempLow),
			Rainfall:  perDay(rainID, day, defaultRainfall),
			Humidity:  perDay(humidityID, day, defaultHumidity),
			WindSpeed: perDay(windID, day, defaultWind),
		}

		result.Days = append(result.Days, d)

		result.Summary.TempMax = math.Max(result.Summary.TempMax, d.TempHigh)
		result.Summary.TempMin = math.Min(result.Summary.TempMin, d.TempLow)
		tempSum += (d.TempHigh + d.TempLow) / 2
		result.Summary.TotalRainfall += d.Rainfall

		if d.Rainfall > 0 {
			rainyDays++
		}
	}

	result.Summary.TempAvg = tempSum / float64(req.Days)
	result.Summary.RainProbability = float64(rainyDays) / float64(req.Days)
	result.Advisories = weatherAdvisories(result.Summary, req.Days)

	e.log.WithField("district", req.District).WithField("days", req.Days).Debug("weather forecast served")

	return result, nil
}

// weatherAdvisories derives qualitative guidance from fixed thresholds.
func weatherAdvisories(s WeatherSummary, days int) []string {
	var out []string

	if s.TempMax > heatStressTemp {
		out = append(out, fmt.Sprintf(
			"High temperatures up to %.0f°C expected. Irrigate in the evening to reduce heat stress.", s.TempMax))
	}

	if s.TempMin < frostTemp {
		out = append(out, fmt.Sprintf(
			"Low temperatures down to %.0f°C expected. Protect sensitive crops from frost.", s.TempMin))
	}

	if s.TotalRainfall > drainageRainMM {
		out = append(out, fmt.Sprintf(
			"Heavy rainfall of %.0fmm expected. Ensure field drainage is clear.", s.TotalRainfall))
	}

	if s.TotalRainfall < drySpellRainMM && days >= drySpellMinDays {
		out = append(out, "Very little rainfall expected. Plan irrigation for the coming week.")
	}

	if s.TempMax <= heatStressTemp && s.TempMin >= frostTemp {
		out = append(out, "Temperature conditions are favorable for most crops.")
	}

	return out
}

// observeAdvisory records one advisory request outcome.
func observeAdvisory(kind string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}

	metrics.AdvisoryRequestsTotal.WithLabelValues(kind, outcome).Inc()
}
