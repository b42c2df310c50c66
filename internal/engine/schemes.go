package engine

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/agromitra/agromitra/internal/models"
)

const schemeResults = 5

// SchemeRequest filters government scheme lookup. Any field may be
// "all" (or empty) to skip that filter.
type SchemeRequest struct {
	FarmerType string `json:"farmer_type,omitempty"`
	CropType   string `json:"crop_type,omitempty"`
	State      string `json:"state,omitempty"`
}

// Scheme is one extracted scheme description.
type Scheme struct {
	Title       string  `json:"title,omitempty"`
	Description string  `json:"description"`
	Eligibility string  `json:"eligibility,omitempty"`
	Benefits    string  `json:"benefits,omitempty"`
	Application string  `json:"application,omitempty"`
	Score       float64 `json:"score"`
}

// SchemeResult is the scheme lookup response.
type SchemeResult struct {
	Query   string   `json:"query"`
	Schemes []Scheme `json:"schemes"`
}

// Section extractors for corpus text that lacks structured fields. Each
// captures up to the next known section header or end of text.
var sectionPatterns = map[string]*regexp.Regexp{
	"eligibility": sectionPattern("eligibility"),
	"benefits":    sectionPattern("benefits?"),
	"application": sectionPattern("(?:application|how to apply)"),
}

func sectionPattern(header string) *regexp.Regexp {
	return regexp.MustCompile(
		`(?is)` + header + `\s*[:\-]\s*(.*?)(?:\n\s*(?:eligibility|benefits?|application|how to apply)\s*[:\-]|\z)`)
}

// GovernmentSchemes searches the knowledge corpus for schemes matching
// the request filters. Items with structured metadata fields are used
// as-is; unstructured legacy text falls back to section-header
// extraction.
func (e *Engine) GovernmentSchemes(ctx context.Context, req SchemeRequest) (_ *SchemeResult, err error) {
	defer func() { observeAdvisory("schemes", err) }()

	query := schemeQuery(req)
	filter := map[string]any{"category": "government_scheme"}

	items, err := e.knowledge.SearchByText(ctx, query, filter, schemeResults)
	if err != nil {
		return nil, err
	}

	result := &SchemeResult{Query: query}
	for _, item := range items {
		result.Schemes = append(result.Schemes, extractScheme(item))
	}

	e.log.WithField("query", query).WithField("results", len(items)).Debug("scheme lookup served")

	return result, nil
}

// schemeQuery builds the free-text query, skipping "all" filters.
func schemeQuery(req SchemeRequest) string {
	parts := []string{"government schemes"}

	if selected(req.FarmerType) {
		parts = append(parts, fmt.Sprintf("for %s farmers", req.FarmerType))
	}

	if selected(req.CropType) {
		parts = append(parts, fmt.Sprintf("for %s cultivation", req.CropType))
	}

	if selected(req.State) {
		parts = append(parts, fmt.Sprintf("in %s", req.State))
	}

	return strings.Join(parts, " ")
}

func selected(filter string) bool {
	return filter != "" && !strings.EqualFold(filter, "all")
}

// extractScheme pulls the scheme sections out of one search result.
// Structured metadata fields win over text extraction.
func extractScheme(item models.ScoredItem) Scheme {
	s := Scheme{Description: item.Text, Score: item.Score}

	if title, ok := item.Metadata["title"].(string); ok {
		s.Title = title
	}

	s.Eligibility = schemeField(item, "eligibility")
	s.Benefits = schemeField(item, "benefits")
	s.Application = schemeField(item, "application")

	return s
}

func schemeField(item models.ScoredItem, field string) string {
	if v, ok := item.Metadata[field].(string); ok && v != "" {
		return v
	}

	if m := sectionPatterns[field].FindStringSubmatch(item.Text); m != nil {
		return strings.TrimSpace(m[1])
	}

	return ""
}
