package models

import "time"

// Edge is a typed, directed, confidence-scored relationship between two
// nodes. Edges are immutable: there is no update, only create and delete.
//
// Storage holds only forward rows; the reverse direction is served by a
// covering index on (target, relation). Callers that ask for the
// "reverse:" namespace still see edges named with the reverse relation,
// matching the wire convention of dual-write deployments.
type Edge struct {
	Source     string         `json:"source"`
	Relation   string         `json:"relation"`
	Target     string         `json:"target"`
	Properties map[string]any `json:"properties"`
	Confidence float64        `json:"confidence"`
	SourceRef  string         `json:"source_ref,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// Reversed returns the reverse-namespace twin of the edge, with
// identical confidence and properties.
func (e Edge) Reversed() Edge {
	return Edge{
		Source:     e.Target,
		Relation:   ReverseRelation(e.Relation),
		Target:     e.Source,
		Properties: e.Properties,
		Confidence: e.Confidence,
		SourceRef:  e.SourceRef,
		CreatedAt:  e.CreatedAt,
	}
}

// CreateEdgeRequest is the payload for creating an edge.
type CreateEdgeRequest struct {
	Source     string         `json:"source"`
	Relation   string         `json:"relation"`
	Target     string         `json:"target"`
	Properties map[string]any `json:"properties,omitempty"`
	Confidence *float64       `json:"confidence,omitempty"`
	SourceRef  string         `json:"source_ref,omitempty"`
}

// Validate checks required fields. Reverse-namespaced relations are
// rejected: callers create forward edges only and read either direction.
func (r *CreateEdgeRequest) Validate() error {
	if r.Source == "" {
		return ErrMissingSource
	}

	if r.Target == "" {
		return ErrMissingTarget
	}

	if r.Relation == "" {
		return ErrMissingRelation
	}

	if _, reversed := ForwardRelation(r.Relation); reversed {
		return Validationf("relation %q: create forward edges only", r.Relation)
	}

	if r.Confidence != nil && (*r.Confidence < 0 || *r.Confidence > 1) {
		return Validationf("confidence must be in [0,1], got %v", *r.Confidence)
	}

	return nil
}

// ConfidenceOrDefault returns the requested confidence or 1.0.
func (r *CreateEdgeRequest) ConfidenceOrDefault() float64 {
	if r.Confidence == nil {
		return 1.0
	}

	return *r.Confidence
}
