package store

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/agromitra/agromitra/internal/metrics"
	"github.com/agromitra/agromitra/internal/models"
)

// Relations used by the crop recommendation traversal.
const (
	RelationSuitableFor = "suitable_for"
	RelationGrownDuring = "grown_during"
)

// fallbackCrops is returned when the graph yields no candidates at all,
// so the engine never answers a recommendation request with an empty
// list. Callers can tell the two cases apart via the fallback flag.
var fallbackCrops = []models.RankedCrop{
	{NodeID: "crop:wheat", Name: "Wheat", Score: 0.8, Reasons: []string{"Widely grown staple with reliable yield"}},
	{NodeID: "crop:rice", Name: "Rice", Score: 0.8, Reasons: []string{"Staple crop suited to irrigated land"}},
	{NodeID: "crop:cotton", Name: "Cotton", Score: 0.6, Reasons: []string{"Common cash crop for the region"}},
}

// FallbackCrops returns a copy of the static default recommendation list.
func FallbackCrops() []models.RankedCrop {
	out := make([]models.RankedCrop, len(fallbackCrops))
	copy(out, fallbackCrops)

	return out
}

// RecommendedCrops gathers crop candidates from three independent
// traversals (crops suitable for the location, crops grown during the
// season via reverse edges, crops suitable for the soil) and scores
// each candidate as the sum of only the matched criterion weights, so a
// candidate matching one criterion still surfaces with a partial score.
// The returned bool reports whether the static fallback list was used.
func (s *GraphStore) RecommendedCrops(
	ctx context.Context,
	location, soilType, season string,
) (_ []models.RankedCrop, fallback bool, err error) {
	start := time.Now()
	defer func() { observe("graph", "recommended_crops", start, err) }()

	var byLocation, bySeason, bySoil []string

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency())

	g.Go(func() (err error) {
		byLocation, err = s.Traverse(gctx, models.NodeID(models.TypeLocation, location), RelationSuitableFor, false)

		return err
	})
	g.Go(func() (err error) {
		bySeason, err = s.Traverse(gctx, models.NodeID(models.TypeSeason, season), RelationGrownDuring, true)

		return err
	})
	g.Go(func() (err error) {
		bySoil, err = s.Traverse(gctx, models.NodeID(models.TypeSoil, soilType), RelationSuitableFor, false)

		return err
	})

	if err = g.Wait(); err != nil {
		return nil, false, err
	}

	ranked := scoreCropCandidates(byLocation, bySeason, bySoil, location, season, soilType)
	if len(ranked) == 0 {
		metrics.FallbackRecommendations.Inc()
		s.Log.WithFields(logrus.Fields{
			"location": location,
			"soil":     soilType,
			"season":   season,
		}).Info("no graph candidates, serving fallback crop list")

		return FallbackCrops(), true, nil
	}

	s.resolveCropNames(ctx, ranked)

	return ranked, false, nil
}

// scoreCropCandidates unions the candidate sets and scores each crop by
// the criteria it matched: +0.4 location, +0.4 season, +0.2 soil. Scores
// are never normalized against missing criteria. Zero-score candidates
// are dropped; ties keep first-seen order.
func scoreCropCandidates(byLocation, bySeason, bySoil []string, location, season, soil string) []models.RankedCrop {
	inLocation := toSet(byLocation)
	inSeason := toSet(bySeason)
	inSoil := toSet(bySoil)

	var order []string
	seen := make(map[string]bool)

	for _, set := range [][]string{byLocation, bySeason, bySoil} {
		for _, id := range set {
			if !strings.HasPrefix(id, models.TypeCrop+":") {
				continue
			}

			if !seen[id] {
				seen[id] = true
				order = append(order, id)
			}
		}
	}

	ranked := make([]models.RankedCrop, 0, len(order))

	for _, id := range order {
		var score float64
		var reasons []string

		if inLocation[id] {
			score += models.LocationWeight
			reasons = append(reasons, "Suited to the "+location+" area")
		}

		if inSeason[id] {
			score += models.SeasonWeight
			reasons = append(reasons, "Grows during the "+season+" season")
		}

		if inSoil[id] {
			score += models.SoilWeight
			reasons = append(reasons, "Matches "+soil+" soil")
		}

		if score == 0 {
			continue
		}

		ranked = append(ranked, models.RankedCrop{
			NodeID:  id,
			Name:    nameFromID(id),
			Score:   score,
			Reasons: reasons,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	return ranked
}

// resolveCropNames replaces slug-derived names with stored node names
// where available. Failures leave the derived name in place.
func (s *GraphStore) resolveCropNames(ctx context.Context, ranked []models.RankedCrop) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency())

	for i := range ranked {
		g.Go(func() error {
			node, err := s.GetNode(gctx, ranked[i].NodeID)
			if err == nil {
				ranked[i].Name = node.Name
			}

			return nil
		})
	}

	g.Wait() //nolint:errcheck // goroutines never return errors.
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}

	return set
}

// nameFromID derives a display name from a node id's slug part.
func nameFromID(nodeID string) string {
	_, slug, found := strings.Cut(nodeID, ":")
	if !found {
		return nodeID
	}

	words := strings.Split(slug, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}

	return strings.Join(words, " ")
}
