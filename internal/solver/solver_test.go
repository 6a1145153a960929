package solver

import (
	"context"
	"testing"

	"github.com/contextfp/cf/internal/graphmodel"
	"github.com/contextfp/cf/internal/pruning"
)

type fakeRegistry struct {
	abstract map[graphmodel.TypeId]bool
	docScore map[graphmodel.TypeId]float32
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{abstract: map[graphmodel.TypeId]bool{}, docScore: map[graphmodel.TypeId]float32{}}
}

func (f *fakeRegistry) IsUnboundedTypeVar(graphmodel.TypeId) bool { return false }
func (f *fakeRegistry) IsAbstract(id graphmodel.TypeId) bool     { return f.abstract[id] }
func (f *fakeRegistry) TypeDocScore(id graphmodel.TypeId) (float32, bool) {
	v, ok := f.docScore[id]
	return v, ok
}

func fn(id string, size uint32, docScore float32) graphmodel.FunctionNode {
	return graphmodel.FunctionNode{Core: graphmodel.NodeCore{ID: id, Name: id, ContextSize: size, DocScore: docScore}}
}

func fnNode(n graphmodel.FunctionNode) graphmodel.Node {
	return graphmodel.Node{Kind: graphmodel.NodeKindFunction, Function: &n}
}

func varNode(id string, size uint32, mut graphmodel.Mutability) graphmodel.Node {
	return graphmodel.Node{Kind: graphmodel.NodeKindVariable, Variable: &graphmodel.VariableNode{
		Core:       graphmodel.NodeCore{ID: id, Name: id, ContextSize: size},
		Mutability: mut,
	}}
}

func TestComputeCF_UnknownStart(t *testing.T) {
	g := graphmodel.New("/proj")
	_, err := ComputeCF(context.Background(), g, newFakeRegistry(), graphmodel.NodeIndex(7), pruning.Strict(), nil)
	if err == nil {
		t.Fatal("expected an error for an unknown start index")
	}
	if _, ok := err.(*UnknownSymbolError); !ok {
		t.Errorf("expected *UnknownSymbolError, got %T", err)
	}
}

func TestComputeCF_SimpleTransparentChain(t *testing.T) {
	g := graphmodel.New("/proj")
	a, _ := g.AddNode(fnNode(fn("a", 10, 0)))
	b, _ := g.AddNode(fnNode(fn("b", 20, 0)))
	c, _ := g.AddNode(fnNode(fn("c", 30, 0)))
	g.AddEdge(a, b, graphmodel.EdgeCall)
	g.AddEdge(b, c, graphmodel.EdgeCall)

	result, err := ComputeCF(context.Background(), g, newFakeRegistry(), a, pruning.Strict(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TotalContextSize != 60 {
		t.Errorf("expected total size 60, got %d", result.TotalContextSize)
	}
	if len(result.ReachableSet) != 3 {
		t.Errorf("expected 3 reachable nodes, got %d", len(result.ReachableSet))
	}
	if result.Truncated {
		t.Error("did not expect truncation")
	}
}

func TestComputeCF_BoundaryStopsExpansion(t *testing.T) {
	g := graphmodel.New("/proj")
	a, _ := g.AddNode(fnNode(fn("a", 10, 0)))
	// b is doc-qualified under Academic mode, so it is a Boundary: counted
	// once but never expanded.
	b, _ := g.AddNode(fnNode(graphmodel.FunctionNode{
		Core:        graphmodel.NodeCore{ID: "b", Name: "b", ContextSize: 20, DocScore: 0.9},
		Parameters:  []graphmodel.Parameter{{Name: "x", ParamType: "int"}},
		ReturnTypes: []graphmodel.TypeId{"int"},
	}))
	c, _ := g.AddNode(fnNode(fn("c", 1000, 0)))
	g.AddEdge(a, b, graphmodel.EdgeCall)
	g.AddEdge(b, c, graphmodel.EdgeCall)

	result, err := ComputeCF(context.Background(), g, newFakeRegistry(), a, pruning.Academic(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TotalContextSize != 30 {
		t.Errorf("expected boundary to stop traversal before c's large size, got total %d", result.TotalContextSize)
	}
	if len(result.ReachableSet) != 2 {
		t.Errorf("expected 2 reachable nodes (a, b), got %d", len(result.ReachableSet))
	}
}

func TestComputeCF_SharedMutableStateWrite(t *testing.T) {
	g := graphmodel.New("/proj")
	reader, _ := g.AddNode(fnNode(fn("reader", 10, 0)))
	state, _ := g.AddNode(varNode("state", 5, graphmodel.MutabilityMutable))
	writer, _ := g.AddNode(fnNode(fn("writer", 40, 0)))

	g.AddEdge(reader, state, graphmodel.EdgeRead)
	g.AddEdge(writer, state, graphmodel.EdgeWrite)

	result, err := ComputeCF(context.Background(), g, newFakeRegistry(), reader, pruning.Strict(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found := false
	for _, idx := range result.ReachableSet {
		if idx == writer {
			found = true
		}
	}
	if !found {
		t.Error("expected the writer of a read mutable variable to be pulled into the reachable set")
	}
	if result.TotalContextSize != 55 {
		t.Errorf("expected total size 55 (reader+state+writer), got %d", result.TotalContextSize)
	}
}

func TestComputeCF_ConstReadDoesNotPullWriter(t *testing.T) {
	g := graphmodel.New("/proj")
	reader, _ := g.AddNode(fnNode(fn("reader", 10, 0)))
	state, _ := g.AddNode(varNode("state", 5, graphmodel.MutabilityConst))
	writer, _ := g.AddNode(fnNode(fn("writer", 40, 0)))
	g.AddEdge(reader, state, graphmodel.EdgeRead)
	g.AddEdge(writer, state, graphmodel.EdgeWrite)

	result, err := ComputeCF(context.Background(), g, newFakeRegistry(), reader, pruning.Strict(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, idx := range result.ReachableSet {
		if idx == writer {
			t.Error("a const read is a Boundary; its writer should never be explored")
		}
	}
}

func TestComputeCF_CallInExploration(t *testing.T) {
	g := graphmodel.New("/proj")
	// an under-specified (no doc, incomplete signature) function used as
	// the start node is not reached via a Call edge, so ShouldExploreCallers
	// should walk its callers in too.
	callee, _ := g.AddNode(fnNode(fn("callee", 10, 0)))
	caller, _ := g.AddNode(fnNode(fn("caller", 20, 0)))
	g.AddEdge(caller, callee, graphmodel.EdgeCall)

	result, err := ComputeCF(context.Background(), g, newFakeRegistry(), callee, pruning.Strict(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found := false
	for _, idx := range result.ReachableSet {
		if idx == caller {
			found = true
		}
	}
	if !found {
		t.Error("expected an under-specified start function to pull in its callers")
	}
}

func TestComputeCF_WellDocumentedStartSuppressesCallIn(t *testing.T) {
	g := graphmodel.New("/proj")
	callee, _ := g.AddNode(fnNode(graphmodel.FunctionNode{
		Core:        graphmodel.NodeCore{ID: "callee", Name: "callee", ContextSize: 10, DocScore: 0.9},
		Parameters:  []graphmodel.Parameter{{Name: "x", ParamType: "int"}},
		ReturnTypes: []graphmodel.TypeId{"int"},
	}))
	caller, _ := g.AddNode(fnNode(fn("caller", 20, 0)))
	g.AddEdge(caller, callee, graphmodel.EdgeCall)

	result, err := ComputeCF(context.Background(), g, newFakeRegistry(), callee, pruning.Strict(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, idx := range result.ReachableSet {
		if idx == caller {
			t.Error("expected a well-documented, signature-complete start function to suppress call-in exploration")
		}
	}
}

func TestComputeCF_CycleTerminates(t *testing.T) {
	g := graphmodel.New("/proj")
	a, _ := g.AddNode(fnNode(fn("a", 1, 0)))
	b, _ := g.AddNode(fnNode(fn("b", 1, 0)))
	g.AddEdge(a, b, graphmodel.EdgeCall)
	g.AddEdge(b, a, graphmodel.EdgeCall)

	result, err := ComputeCF(context.Background(), g, newFakeRegistry(), a, pruning.Strict(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.ReachableSet) != 2 {
		t.Errorf("expected cycle to resolve to exactly 2 nodes, got %d", len(result.ReachableSet))
	}
}

func TestComputeCF_MaxTokensTruncates(t *testing.T) {
	g := graphmodel.New("/proj")
	a, _ := g.AddNode(fnNode(fn("a", 50, 0)))
	b, _ := g.AddNode(fnNode(fn("b", 50, 0)))
	c, _ := g.AddNode(fnNode(fn("c", 50, 0)))
	g.AddEdge(a, b, graphmodel.EdgeCall)
	g.AddEdge(b, c, graphmodel.EdgeCall)

	limit := uint32(60)
	result, err := ComputeCF(context.Background(), g, newFakeRegistry(), a, pruning.Strict(), &limit)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Truncated {
		t.Error("expected traversal to report truncated once the budget is exceeded")
	}
	if result.TotalContextSize < uint64(limit) {
		t.Errorf("expected total size to have reached the budget before stopping, got %d", result.TotalContextSize)
	}
}

func TestComputeCF_MaxTokensTruncatesAcrossMultipleBoundaryEdges(t *testing.T) {
	g := graphmodel.New("/proj")
	a, _ := g.AddNode(fnNode(fn("a", 10, 0)))
	// b, c, d are all doc-qualified boundaries reached directly from a, each
	// individually large. A single pass over a's outgoing edges must stop
	// adding boundary sizes the moment the budget is reached rather than
	// draining the whole edge list first.
	boundary := func(id string, size uint32) graphmodel.NodeIndex {
		idx, _ := g.AddNode(fnNode(graphmodel.FunctionNode{
			Core:        graphmodel.NodeCore{ID: id, Name: id, ContextSize: size, DocScore: 0.9},
			Parameters:  []graphmodel.Parameter{{Name: "x", ParamType: "int"}},
			ReturnTypes: []graphmodel.TypeId{"int"},
		}))
		return idx
	}
	b := boundary("b", 100)
	c := boundary("c", 100)
	d := boundary("d", 100)
	g.AddEdge(a, b, graphmodel.EdgeCall)
	g.AddEdge(a, c, graphmodel.EdgeCall)
	g.AddEdge(a, d, graphmodel.EdgeCall)

	limit := uint32(50)
	result, err := ComputeCF(context.Background(), g, newFakeRegistry(), a, pruning.Academic(), &limit)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Truncated {
		t.Error("expected traversal to report truncated once the budget is exceeded")
	}
	// a (10) plus at most one 100-size boundary neighbor should stop the
	// walk; picking up all three would overshoot the documented
	// k + max(size(v)) bound by a wide margin.
	if result.TotalContextSize > 110 {
		t.Errorf("expected traversal to stop after at most one boundary neighbor, got total %d across %d nodes", result.TotalContextSize, len(result.ReachableSet))
	}
}

func TestSaturatingAdd(t *testing.T) {
	max := ^uint64(0)
	if got := saturatingAdd(max, 10); got != max {
		t.Errorf("expected saturating add to clamp at max uint64, got %d", got)
	}
	if got := saturatingAdd(5, 10); got != 15 {
		t.Errorf("expected normal add to return 15, got %d", got)
	}
}
