package models

import "time"

// Entity types permitted in the relationship graph.
const (
	TypeCrop         = "crop"
	TypeDisease      = "disease"
	TypePest         = "pest"
	TypeTreatment    = "treatment"
	TypeWeather      = "weather"
	TypeLocation     = "location"
	TypeSeason       = "season"
	TypeMarketFactor = "market_factor"
	TypeSoil         = "soil"
)

// EntityTypes is the closed set of valid node types.
var EntityTypes = map[string]bool{
	TypeCrop:         true,
	TypeDisease:      true,
	TypePest:         true,
	TypeTreatment:    true,
	TypeWeather:      true,
	TypeLocation:     true,
	TypeSeason:       true,
	TypeMarketFactor: true,
	TypeSoil:         true,
}

// Node is a typed vertex in the relationship graph. IDs are globally
// unique ("type:slug") and creation is idempotent: a second create with
// the same type and name never overwrites stored properties.
type Node struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Name       string         `json:"name"`
	Properties map[string]any `json:"properties"`
	Confidence float64        `json:"confidence"`
	Source     string         `json:"source,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// CreateNodeRequest is the payload for creating a graph node.
type CreateNodeRequest struct {
	Type       string         `json:"type"`
	Name       string         `json:"name"`
	Properties map[string]any `json:"properties,omitempty"`
	Confidence *float64       `json:"confidence,omitempty"`
	Source     string         `json:"source,omitempty"`
}

// Validate checks the type against the closed entity-type set and
// clamps confidence into [0,1] (defaulting to 1 when absent).
func (r *CreateNodeRequest) Validate() error {
	if r.Type == "" {
		return ErrMissingType
	}

	if !EntityTypes[r.Type] {
		return Validationf("unknown entity type %q", r.Type)
	}

	if r.Name == "" {
		return ErrMissingName
	}

	if r.Confidence != nil && (*r.Confidence < 0 || *r.Confidence > 1) {
		return Validationf("confidence must be in [0,1], got %v", *r.Confidence)
	}

	return nil
}

// ConfidenceOrDefault returns the requested confidence or 1.0.
func (r *CreateNodeRequest) ConfidenceOrDefault() float64 {
	if r.Confidence == nil {
		return 1.0
	}

	return *r.Confidence
}

// RelatedEntity is a resolved edge target inside an EntityContext.
type RelatedEntity struct {
	ID         string  `json:"id"`
	Type       string  `json:"type"`
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

// EntityContext is a node together with its outgoing relationships,
// grouped by relation type, each target resolved to a summary.
type EntityContext struct {
	Entity        Node                       `json:"entity"`
	Relationships map[string][]RelatedEntity `json:"relationships"`
}

// Crop recommendation criterion weights. A candidate's score is the sum
// of the weights for the criteria it matched, never normalized against
// criteria that produced no data, so a partial match still surfaces.
const (
	LocationWeight = 0.4
	SeasonWeight   = 0.4
	SoilWeight     = 0.2
)

// RankedCrop is one scored crop recommendation.
type RankedCrop struct {
	NodeID  string   `json:"node_id"`
	Name    string   `json:"name"`
	Score   float64  `json:"score"`
	Reasons []string `json:"reasons"`
}
