package models

import (
	"errors"
	"testing"
	"time"
)

func TestSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Wheat", "wheat"},
		{"  Black Soil  ", "black_soil"},
		{"RED\tsandy   LOAM", "red_sandy_loam"},
		{"", ""},
	}

	for _, tc := range tests {
		if got := Slug(tc.in); got != tc.want {
			t.Errorf("Slug(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNodeID(t *testing.T) {
	if got := NodeID(TypeCrop, "Basmati Rice"); got != "crop:basmati_rice" {
		t.Errorf("NodeID = %q, want crop:basmati_rice", got)
	}
}

func TestMetricID(t *testing.T) {
	tests := []struct {
		parts []string
		want  string
	}{
		{[]string{"weather", "temperature", "high", "Pune"}, "weather:temperature:high:pune"},
		{[]string{"market", "price", "wheat", ""}, "market:price:wheat"},
	}

	for _, tc := range tests {
		if got := MetricID(tc.parts...); got != tc.want {
			t.Errorf("MetricID(%v) = %q, want %q", tc.parts, got, tc.want)
		}
	}
}

func TestReverseRelation(t *testing.T) {
	rev := ReverseRelation("grown_during")
	if rev != "reverse:grown_during" {
		t.Fatalf("ReverseRelation = %q", rev)
	}

	fwd, reversed := ForwardRelation(rev)
	if !reversed || fwd != "grown_during" {
		t.Errorf("ForwardRelation(%q) = %q, %v", rev, fwd, reversed)
	}

	fwd, reversed = ForwardRelation("suitable_for")
	if reversed || fwd != "suitable_for" {
		t.Errorf("ForwardRelation(suitable_for) = %q, %v", fwd, reversed)
	}
}

func TestCreateNodeRequestValidate(t *testing.T) {
	conf := 0.8
	bad := 1.5

	tests := []struct {
		name    string
		req     CreateNodeRequest
		wantErr error
	}{
		{"valid", CreateNodeRequest{Type: TypeCrop, Name: "Wheat", Confidence: &conf}, nil},
		{"missing type", CreateNodeRequest{Name: "Wheat"}, ErrMissingType},
		{"unknown type", CreateNodeRequest{Type: "galaxy", Name: "Wheat"}, ErrValidation},
		{"missing name", CreateNodeRequest{Type: TypeCrop}, ErrMissingName},
		{"bad confidence", CreateNodeRequest{Type: TypeCrop, Name: "Wheat", Confidence: &bad}, ErrValidation},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.req.Validate()
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("got %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestCreateEdgeRequestValidate(t *testing.T) {
	valid := CreateEdgeRequest{Source: "crop:wheat", Relation: "suitable_for", Target: "location:pune"}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid edge rejected: %v", err)
	}

	reverse := CreateEdgeRequest{Source: "a", Relation: "reverse:suitable_for", Target: "b"}
	if err := reverse.Validate(); !errors.Is(err, ErrValidation) {
		t.Errorf("reverse-namespace create: got %v, want validation error", err)
	}
}

func TestPutItemRequestValidate(t *testing.T) {
	req := PutItemRequest{Text: "wheat cultivation", Embedding: []float32{0.1, 0.2}}
	if err := req.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if req.ID == "" {
		t.Error("expected auto-generated ID")
	}

	empty := PutItemRequest{Embedding: []float32{0.1}}
	if err := empty.Validate(); !errors.Is(err, ErrMissingText) {
		t.Errorf("got %v, want ErrMissingText", err)
	}
}

func TestErrorTaxonomy(t *testing.T) {
	if !errors.Is(ErrItemNotFound, ErrNotFound) {
		t.Error("ErrItemNotFound should match ErrNotFound")
	}

	if !errors.Is(ErrSeriesEmpty, ErrNotFound) {
		t.Error("ErrSeriesEmpty should match ErrNotFound")
	}

	wrapped := Providerf(errors.New("connection refused"), "embedding")
	if !errors.Is(wrapped, ErrProvider) {
		t.Error("Providerf result should match ErrProvider")
	}
}

func TestApplyRetention(t *testing.T) {
	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	weather := MetricPoint{MetricID: "weather:rainfall:pune", Timestamp: 1}
	weather.ApplyRetention(now)
	if weather.ExpiresAt == nil || !weather.ExpiresAt.Equal(now.Add(WeatherRetention)) {
		t.Errorf("weather expiry = %v", weather.ExpiresAt)
	}

	market := MetricPoint{MetricID: "market:price:wheat", Timestamp: 1}
	market.ApplyRetention(now)
	if market.ExpiresAt == nil || !market.ExpiresAt.Equal(now.Add(MarketRetention)) {
		t.Errorf("market expiry = %v", market.ExpiresAt)
	}

	other := MetricPoint{MetricID: "soil:ph:pune", Timestamp: 1}
	other.ApplyRetention(now)
	if other.ExpiresAt != nil {
		t.Errorf("unexpected expiry for unmanaged namespace: %v", other.ExpiresAt)
	}

	explicit := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	pinned := MetricPoint{MetricID: "weather:rainfall:pune", Timestamp: 1, ExpiresAt: &explicit}
	pinned.ApplyRetention(now)
	if !pinned.ExpiresAt.Equal(explicit) {
		t.Errorf("explicit expiry overwritten: %v", pinned.ExpiresAt)
	}
}
