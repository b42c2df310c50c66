package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/agromitra/agromitra/internal/models"
	"github.com/agromitra/agromitra/internal/store"
)

func mustCreateNode(t *testing.T, gs *store.GraphStore, entityType, name string) string {
	t.Helper()

	id, err := gs.CreateNode(context.Background(), models.CreateNodeRequest{Type: entityType, Name: name})
	if err != nil {
		t.Fatalf("CreateNode(%s, %s): %v", entityType, name, err)
	}

	return id
}

func mustCreateEdge(t *testing.T, gs *store.GraphStore, source, relation, target string) {
	t.Helper()

	err := gs.CreateEdge(context.Background(), models.CreateEdgeRequest{
		Source: source, Relation: relation, Target: target,
	})
	if err != nil {
		t.Fatalf("CreateEdge(%s -%s-> %s): %v", source, relation, target, err)
	}
}

func TestCreateNodeIdempotent(t *testing.T) {
	gs := store.NewGraphStore(setupTestBase(t))
	ctx := context.Background()

	props := map[string]any{"duration_days": 120}
	first, err := gs.CreateNode(ctx, models.CreateNodeRequest{
		Type: models.TypeCrop, Name: "Wheat", Properties: props,
	})
	if err != nil {
		t.Fatalf("CreateNode: %v", err)
	}

	if first != "crop:wheat" {
		t.Errorf("node id = %q, want crop:wheat", first)
	}

	// Second create with different properties: same id, no overwrite.
	second, err := gs.CreateNode(ctx, models.CreateNodeRequest{
		Type: models.TypeCrop, Name: "Wheat", Properties: map[string]any{"duration_days": 999},
	})
	if err != nil {
		t.Fatalf("CreateNode (repeat): %v", err)
	}

	if second != first {
		t.Errorf("repeat create returned %q, want %q", second, first)
	}

	node, err := gs.GetNode(ctx, first)
	if err != nil {
		t.Fatalf("GetNode: %v", err)
	}

	if node.Properties["duration_days"] != float64(120) {
		t.Errorf("properties overwritten: %+v", node.Properties)
	}
}

func TestCreateEdgeRequiresEndpoints(t *testing.T) {
	gs := store.NewGraphStore(setupTestBase(t))

	err := gs.CreateEdge(context.Background(), models.CreateEdgeRequest{
		Source: "crop:ghost", Relation: "suitable_for", Target: "location:nowhere",
	})
	if !errors.Is(err, models.ErrNodeNotFound) {
		t.Errorf("got %v, want ErrNodeNotFound", err)
	}
}

func TestTraverseBothDirections(t *testing.T) {
	gs := store.NewGraphStore(setupTestBase(t))
	ctx := context.Background()

	wheat := mustCreateNode(t, gs, models.TypeCrop, "Wheat")
	rabi := mustCreateNode(t, gs, models.TypeSeason, "Rabi")
	mustCreateEdge(t, gs, wheat, "grown_during", rabi)

	forward, err := gs.Traverse(ctx, wheat, "grown_during", false)
	if err != nil {
		t.Fatalf("Traverse forward: %v", err)
	}

	if len(forward) != 1 || forward[0] != rabi {
		t.Errorf("forward = %v, want [%s]", forward, rabi)
	}

	reverse, err := gs.Traverse(ctx, rabi, "grown_during", true)
	if err != nil {
		t.Fatalf("Traverse reverse: %v", err)
	}

	if len(reverse) != 1 || reverse[0] != wheat {
		t.Errorf("reverse = %v, want [%s]", reverse, wheat)
	}

	// The reverse namespace works as the relation argument too.
	viaNamespace, err := gs.Traverse(ctx, rabi, models.ReverseRelation("grown_during"), false)
	if err != nil {
		t.Fatalf("Traverse via namespace: %v", err)
	}

	if len(viaNamespace) != 1 || viaNamespace[0] != wheat {
		t.Errorf("namespace traverse = %v, want [%s]", viaNamespace, wheat)
	}
}

func TestGetEdgesReverseNamespace(t *testing.T) {
	gs := store.NewGraphStore(setupTestBase(t))
	ctx := context.Background()

	wheat := mustCreateNode(t, gs, models.TypeCrop, "Wheat")
	rabi := mustCreateNode(t, gs, models.TypeSeason, "Rabi")
	mustCreateEdge(t, gs, wheat, "grown_during", rabi)

	edges, err := gs.GetEdges(ctx, rabi, "")
	if err != nil {
		t.Fatalf("GetEdges: %v", err)
	}

	if len(edges) != 1 {
		t.Fatalf("got %d edges, want 1", len(edges))
	}

	e := edges[0]
	if e.Source != rabi || e.Relation != "reverse:grown_during" || e.Target != wheat {
		t.Errorf("reverse twin = %+v", e)
	}
}

func TestGetEdgesInsertionOrder(t *testing.T) {
	gs := store.NewGraphStore(setupTestBase(t))
	ctx := context.Background()

	pune := mustCreateNode(t, gs, models.TypeLocation, "Pune")
	crops := []string{"Wheat", "Jowar", "Sugarcane"}

	for _, c := range crops {
		id := mustCreateNode(t, gs, models.TypeCrop, c)
		mustCreateEdge(t, gs, pune, "suitable_for", id)
	}

	edges, err := gs.GetEdges(ctx, pune, "suitable_for")
	if err != nil {
		t.Fatalf("GetEdges: %v", err)
	}

	if len(edges) != 3 {
		t.Fatalf("got %d edges, want 3", len(edges))
	}

	for i, want := range []string{"crop:wheat", "crop:jowar", "crop:sugarcane"} {
		if edges[i].Target != want {
			t.Errorf("edge %d target = %q, want %q", i, edges[i].Target, want)
		}
	}
}

func TestCreateEdgeDuplicateNoOp(t *testing.T) {
	gs := store.NewGraphStore(setupTestBase(t))
	ctx := context.Background()

	wheat := mustCreateNode(t, gs, models.TypeCrop, "Wheat")
	rabi := mustCreateNode(t, gs, models.TypeSeason, "Rabi")

	mustCreateEdge(t, gs, wheat, "grown_during", rabi)
	mustCreateEdge(t, gs, wheat, "grown_during", rabi)

	edges, err := gs.GetEdges(ctx, wheat, "grown_during")
	if err != nil {
		t.Fatalf("GetEdges: %v", err)
	}

	if len(edges) != 1 {
		t.Errorf("duplicate create produced %d edges, want 1", len(edges))
	}
}

func TestEntityContext(t *testing.T) {
	gs := store.NewGraphStore(setupTestBase(t))
	ctx := context.Background()

	wheat := mustCreateNode(t, gs, models.TypeCrop, "Wheat")
	rabi := mustCreateNode(t, gs, models.TypeSeason, "Rabi")
	rust := mustCreateNode(t, gs, models.TypeDisease, "Leaf Rust")

	mustCreateEdge(t, gs, wheat, "grown_during", rabi)
	mustCreateEdge(t, gs, rust, "affects", wheat)

	ec, err := gs.EntityContext(ctx, wheat)
	if err != nil {
		t.Fatalf("EntityContext: %v", err)
	}

	if ec.Entity.ID != wheat {
		t.Errorf("entity = %q", ec.Entity.ID)
	}

	seasons := ec.Relationships["grown_during"]
	if len(seasons) != 1 || seasons[0].Name != "Rabi" {
		t.Errorf("grown_during = %+v", seasons)
	}

	diseases := ec.Relationships["reverse:affects"]
	if len(diseases) != 1 || diseases[0].Name != "Leaf Rust" {
		t.Errorf("reverse:affects = %+v", diseases)
	}
}

func TestRecommendedCrops(t *testing.T) {
	gs := store.NewGraphStore(setupTestBase(t))
	ctx := context.Background()

	pune := mustCreateNode(t, gs, models.TypeLocation, "Pune")
	rabi := mustCreateNode(t, gs, models.TypeSeason, "Rabi")
	black := mustCreateNode(t, gs, models.TypeSoil, "Black")

	wheat := mustCreateNode(t, gs, models.TypeCrop, "Wheat")
	jowar := mustCreateNode(t, gs, models.TypeCrop, "Jowar")
	rice := mustCreateNode(t, gs, models.TypeCrop, "Rice")

	// Wheat matches all three criteria, jowar two, rice one.
	mustCreateEdge(t, gs, pune, "suitable_for", wheat)
	mustCreateEdge(t, gs, wheat, "grown_during", rabi)
	mustCreateEdge(t, gs, black, "suitable_for", wheat)

	mustCreateEdge(t, gs, pune, "suitable_for", jowar)
	mustCreateEdge(t, gs, jowar, "grown_during", rabi)

	mustCreateEdge(t, gs, black, "suitable_for", rice)

	ranked, fallback, err := gs.RecommendedCrops(ctx, "Pune", "Black", "Rabi")
	if err != nil {
		t.Fatalf("RecommendedCrops: %v", err)
	}

	if fallback {
		t.Fatal("fallback flag set despite graph candidates")
	}

	if len(ranked) != 3 {
		t.Fatalf("got %d crops, want 3", len(ranked))
	}

	if ranked[0].NodeID != wheat || ranked[0].Score != 1.0 {
		t.Errorf("top = %+v", ranked[0])
	}

	if ranked[1].NodeID != jowar || ranked[1].Score != 0.8 {
		t.Errorf("second = %+v", ranked[1])
	}

	if ranked[2].NodeID != rice || ranked[2].Score != 0.2 {
		t.Errorf("third = %+v", ranked[2])
	}

	if ranked[0].Name != "Wheat" {
		t.Errorf("resolved name = %q, want Wheat", ranked[0].Name)
	}
}

func TestRecommendedCropsFallback(t *testing.T) {
	gs := store.NewGraphStore(setupTestBase(t))

	ranked, fallback, err := gs.RecommendedCrops(context.Background(), "Atlantis", "Unknown", "Never")
	if err != nil {
		t.Fatalf("RecommendedCrops: %v", err)
	}

	if !fallback {
		t.Fatal("expected fallback flag on empty graph")
	}

	if len(ranked) != 3 {
		t.Fatalf("fallback list has %d entries, want 3", len(ranked))
	}

	for _, rc := range ranked {
		if rc.Score <= 0 || len(rc.Reasons) == 0 {
			t.Errorf("fallback entry incomplete: %+v", rc)
		}
	}
}

func TestDeleteNodeCascades(t *testing.T) {
	gs := store.NewGraphStore(setupTestBase(t))
	ctx := context.Background()

	wheat := mustCreateNode(t, gs, models.TypeCrop, "Wheat")
	rabi := mustCreateNode(t, gs, models.TypeSeason, "Rabi")
	mustCreateEdge(t, gs, wheat, "grown_during", rabi)

	if err := gs.DeleteNode(ctx, rabi); err != nil {
		t.Fatalf("DeleteNode: %v", err)
	}

	edges, err := gs.GetEdges(ctx, wheat, "")
	if err != nil {
		t.Fatalf("GetEdges: %v", err)
	}

	if len(edges) != 0 {
		t.Errorf("expected cascade delete, found %d edges", len(edges))
	}
}
