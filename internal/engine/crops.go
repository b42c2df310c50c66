package engine

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/agromitra/agromitra/internal/models"
)

const snippetsPerCrop = 2

// CropRequest asks for ranked crop recommendations.
type CropRequest struct {
	District string `json:"district"`
	SoilType string `json:"soil_type"`
	Season   string `json:"season"`
}

// Validate checks required fields.
func (r *CropRequest) Validate() error {
	if r.District == "" {
		return models.Validationf("district is required")
	}

	if r.SoilType == "" {
		return models.Validationf("soil type is required")
	}

	if r.Season == "" {
		return models.Validationf("season is required")
	}

	return nil
}

// CropAdvice is one recommendation with optional supporting snippets
// pulled from the knowledge corpus.
type CropAdvice struct {
	models.RankedCrop
	Snippets []string `json:"snippets,omitempty"`
}

// CropResult is the ranked recommendation list.
type CropResult struct {
	Crops        []CropAdvice `json:"crops"`
	FallbackUsed bool         `json:"fallback_used"`
}

// CropRecommendations ranks crops for the request criteria and enriches
// the top results with cultivation snippets from the knowledge corpus.
// A snippet lookup failure is logged and degrades to an un-enriched
// recommendation; it never fails the operation.
func (e *Engine) CropRecommendations(ctx context.Context, req CropRequest) (_ *CropResult, err error) {
	defer func() { observeAdvisory("crops", err) }()

	if err = req.Validate(); err != nil {
		return nil, err
	}

	ranked, fallback, err := e.graph.RecommendedCrops(ctx, req.District, req.SoilType, req.Season)
	if err != nil {
		return nil, err
	}

	if fallback {
		e.log.WithField("district", req.District).Warn("no graph candidates, serving fallback crops")
	}

	result := &CropResult{FallbackUsed: fallback}
	for _, rc := range ranked {
		result.Crops = append(result.Crops, CropAdvice{RankedCrop: rc})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for i := range result.Crops {
		if i >= 3 {
			break
		}

		advice := &result.Crops[i]

		g.Go(func() error {
			query := fmt.Sprintf("cultivation practices for %s", advice.Name)

			items, searchErr := e.knowledge.SearchByText(gctx, query, nil, snippetsPerCrop)
			if searchErr != nil {
				e.log.WithError(searchErr).WithField("crop", advice.Name).Warn("snippet lookup failed")

				return nil
			}

			for _, item := range items {
				advice.Snippets = append(advice.Snippets, item.Text)
			}

			return nil
		})
	}

	if err = g.Wait(); err != nil {
		return nil, err
	}

	return result, nil
}
