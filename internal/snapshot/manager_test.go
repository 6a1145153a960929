package snapshot

import (
	"context"
	"testing"

	"github.com/dgraph-io/badger/v4"

	"github.com/contextfp/cf/internal/graphmodel"
	"github.com/contextfp/cf/internal/typeregistry"
)

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	dir := t.TempDir()
	db, err := badger.Open(badger.DefaultOptions(dir).WithLogger(nil))
	if err != nil {
		t.Fatalf("opening test badger db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func buildSampleGraph() (*graphmodel.Graph, *typeregistry.Registry) {
	g := graphmodel.New("/proj")
	a, _ := g.AddNode(graphmodel.Node{Kind: graphmodel.NodeKindFunction, Function: &graphmodel.FunctionNode{
		Core: graphmodel.NodeCore{ID: "a", Name: "a", ContextSize: 10},
	}})
	b, _ := g.AddNode(graphmodel.Node{Kind: graphmodel.NodeKindVariable, Variable: &graphmodel.VariableNode{
		Core: graphmodel.NodeCore{ID: "b", Name: "b", ContextSize: 5}, Mutability: graphmodel.MutabilityMutable,
	}})
	g.AddEdge(a, b, graphmodel.EdgeWrite)

	reg := typeregistry.New()
	reg.Put("T", typeregistry.TypeInfo{
		Definition: typeregistry.Definition{ID: "T", Name: "Thing"},
		DocScore:   0.4,
	})
	reg.AddImplementor("T", "U")

	return g, reg
}

func TestManager_New_RejectsNilDB(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Error("expected an error for a nil badger handle")
	}
}

func TestContentHash_IsStableAndDistinct(t *testing.T) {
	h1 := ContentHash([]byte(`{"a":1}`))
	h2 := ContentHash([]byte(`{"a":1}`))
	h3 := ContentHash([]byte(`{"a":2}`))
	if h1 != h2 {
		t.Error("expected identical input to hash identically")
	}
	if h1 == h3 {
		t.Error("expected different input to hash differently")
	}
}

func TestManager_SaveAndLoadRoundTrip(t *testing.T) {
	db := openTestDB(t)
	mgr, err := New(db)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	g, reg := buildSampleGraph()
	hash := ContentHash([]byte("sample"))

	meta, err := mgr.Save(context.Background(), hash, g, reg)
	if err != nil {
		t.Fatalf("unexpected error on save: %v", err)
	}
	if meta.NodeCount != 2 {
		t.Errorf("expected NodeCount 2, got %d", meta.NodeCount)
	}
	if meta.EdgeCount != 1 {
		t.Errorf("expected EdgeCount 1, got %d", meta.EdgeCount)
	}

	loadedGraph, loadedReg, loadedMeta, err := mgr.Load(context.Background(), hash)
	if err != nil {
		t.Fatalf("unexpected error on load: %v", err)
	}
	if loadedGraph == nil || loadedReg == nil || loadedMeta == nil {
		t.Fatal("expected a non-nil graph, registry, and metadata")
	}
	if loadedGraph.NodeCount() != 2 {
		t.Errorf("expected reloaded graph to have 2 nodes, got %d", loadedGraph.NodeCount())
	}
	if !loadedGraph.Frozen() {
		t.Error("expected a loaded graph to be frozen")
	}

	node, idx, ok := loadedGraph.NodeBySymbol("a")
	if !ok {
		t.Fatal("expected symbol a to round-trip")
	}
	if node.Core().ContextSize != 10 {
		t.Errorf("expected ContextSize 10 for a, got %d", node.Core().ContextSize)
	}
	edges := loadedGraph.OutgoingEdges(idx)
	if len(edges) != 1 || edges[0].Kind != graphmodel.EdgeWrite {
		t.Errorf("expected a single Write edge out of a, got %+v", edges)
	}

	info, ok := loadedReg.Get("T")
	if !ok || info.Definition.Name != "Thing" {
		t.Errorf("expected type T to round-trip with name Thing, got %+v (ok=%v)", info, ok)
	}
	if children := loadedReg.DirectImplementors("T"); len(children) != 1 || children[0] != "U" {
		t.Errorf("expected T's implementors to round-trip, got %v", children)
	}
}

func TestManager_LoadMissingReturnsNilWithoutError(t *testing.T) {
	db := openTestDB(t)
	mgr, err := New(db)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	g, reg, meta, err := mgr.Load(context.Background(), "does-not-exist")
	if err != nil {
		t.Fatalf("expected a cache miss to not be an error, got %v", err)
	}
	if g != nil || reg != nil || meta != nil {
		t.Error("expected all nil results for a cache miss")
	}
}
