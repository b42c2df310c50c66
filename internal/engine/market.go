package engine

import (
	"context"

	"github.com/agromitra/agromitra/internal/models"
)

const (
	defaultMarketDays = 30
	trendWindow       = 7
	trendThresholdPct = 3.0
)

// Market trend classes.
const (
	TrendRising  = "rising"
	TrendFalling = "falling"
	TrendFlat    = "stable"
)

var sellingTips = map[string]string{
	TrendRising:  "Prices are rising. Holding stock for a few days may fetch a better rate.",
	TrendFalling: "Prices are falling. Selling sooner may avoid further decline.",
	TrendFlat:    "Prices are stable. Sell according to your storage and cash needs.",
}

// MarketRequest asks for a price analysis of one crop.
type MarketRequest struct {
	Crop       string `json:"crop"`
	Days       int    `json:"days"`
	MarketArea string `json:"market_area,omitempty"`
}

// Validate checks required fields and normalizes Days.
func (r *MarketRequest) Validate() error {
	if r.Crop == "" {
		return models.Validationf("crop is required")
	}

	if r.Days <= 0 {
		r.Days = defaultMarketDays
	}

	return nil
}

// MarketResult summarizes recent prices for a crop. Weekly and monthly
// change are nil when the window holds no baseline point old enough.
type MarketResult struct {
	Crop          string   `json:"crop"`
	MarketArea    string   `json:"market_area,omitempty"`
	CurrentPrice  float64  `json:"current_price"`
	Unit          string   `json:"unit,omitempty"`
	WeeklyChange  *float64 `json:"weekly_change_pct,omitempty"`
	MonthlyChange *float64 `json:"monthly_change_pct,omitempty"`
	Trend         string   `json:"trend"`
	SellingTip    string   `json:"selling_tip"`
	PointCount    int      `json:"point_count"`
}

// MarketPrices analyzes the price series for the crop over the last
// req.Days days. The current price is the newest point in the window;
// an empty window is a not-found error, never a zero price.
func (e *Engine) MarketPrices(ctx context.Context, req MarketRequest) (_ *MarketResult, err error) {
	defer func() { observeAdvisory("market", err) }()

	if err = req.Validate(); err != nil {
		return nil, err
	}

	metricID := models.MetricID("market", "price", req.Crop, req.MarketArea)
	now := e.now().UTC()
	endTS := now.UnixMilli()
	startTS := now.AddDate(0, 0, -req.Days).UnixMilli()

	points, err := e.metrics.Range(ctx, metricID, startTS, endTS)
	if err != nil {
		return nil, err
	}

	if len(points) == 0 {
		return nil, models.ErrSeriesEmpty
	}

	current := points[len(points)-1]

	result := &MarketResult{
		Crop:         req.Crop,
		MarketArea:   req.MarketArea,
		CurrentPrice: current.Value,
		Unit:         current.Unit,
		PointCount:   len(points),
	}

	weekAgo := now.AddDate(0, 0, -trendWindow).UnixMilli()
	monthAgo := now.AddDate(0, 0, -defaultMarketDays).UnixMilli()

	result.WeeklyChange = percentChange(points, weekAgo, current.Value)
	result.MonthlyChange = percentChange(points, monthAgo, current.Value)
	result.Trend = priceTrend(points)
	result.SellingTip = sellingTips[result.Trend]

	e.log.WithField("metric_id", metricID).WithField("points", len(points)).Debug("market analysis served")

	return result, nil
}

// percentChange computes the change of current against the newest point
// at or before cutoff. Nil when no point is old enough.
func percentChange(points []models.MetricPoint, cutoff int64, current float64) *float64 {
	var baseline *models.MetricPoint

	for i := range points {
		if points[i].Timestamp <= cutoff {
			baseline = &points[i]
		}
	}

	if baseline == nil || baseline.Value == 0 {
		return nil
	}

	change := (current - baseline.Value) / baseline.Value * 100

	return &change
}

// priceTrend compares the mean of the newest trendWindow points against
// the mean of the oldest trendWindow points in the window.
func priceTrend(points []models.MetricPoint) string {
	n := len(points)

	window := trendWindow
	if n < window {
		window = n
	}

	oldMean := meanValue(points[:window])
	newMean := meanValue(points[n-window:])

	if oldMean == 0 {
		return TrendFlat
	}

	switch pct := (newMean - oldMean) / oldMean * 100; {
	case pct > trendThresholdPct:
		return TrendRising
	case pct < -trendThresholdPct:
		return TrendFalling
	default:
		return TrendFlat
	}
}

func meanValue(points []models.MetricPoint) float64 {
	if len(points) == 0 {
		return 0
	}

	sum := 0.0
	for _, p := range points {
		sum += p.Value
	}

	return sum / float64(len(points))
}
