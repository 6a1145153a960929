package pruning

import (
	"testing"

	"github.com/contextfp/cf/internal/graphmodel"
)

type fakeRegistry struct {
	unbounded map[graphmodel.TypeId]bool
	abstract  map[graphmodel.TypeId]bool
	docScore  map[graphmodel.TypeId]float32
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{
		unbounded: map[graphmodel.TypeId]bool{},
		abstract:  map[graphmodel.TypeId]bool{},
		docScore:  map[graphmodel.TypeId]float32{},
	}
}

func (f *fakeRegistry) IsUnboundedTypeVar(id graphmodel.TypeId) bool { return f.unbounded[id] }
func (f *fakeRegistry) IsAbstract(id graphmodel.TypeId) bool        { return f.abstract[id] }
func (f *fakeRegistry) TypeDocScore(id graphmodel.TypeId) (float32, bool) {
	v, ok := f.docScore[id]
	return v, ok
}

func newGraphWithTwoFuncs(a, b graphmodel.FunctionNode) (*graphmodel.Graph, graphmodel.NodeIndex, graphmodel.NodeIndex) {
	g := graphmodel.New("/proj")
	srcIdx, _ := g.AddNode(graphmodel.Node{Kind: graphmodel.NodeKindFunction, Function: &a})
	dstIdx, _ := g.AddNode(graphmodel.Node{Kind: graphmodel.NodeKindFunction, Function: &b})
	return g, srcIdx, dstIdx
}

func TestEvaluateForward_VariableTarget(t *testing.T) {
	g := graphmodel.New("/proj")
	src, _ := g.AddNode(graphmodel.Node{Kind: graphmodel.NodeKindFunction, Function: &graphmodel.FunctionNode{Core: graphmodel.NodeCore{ID: "f"}}})

	t.Run("write is always transparent", func(t *testing.T) {
		dst, _ := g.AddNode(graphmodel.Node{Kind: graphmodel.NodeKindVariable, Variable: &graphmodel.VariableNode{
			Core: graphmodel.NodeCore{ID: "v1"}, Mutability: graphmodel.MutabilityConst,
		}})
		if got := EvaluateForward(g, newFakeRegistry(), src, dst, graphmodel.EdgeWrite, Academic()); got != Transparent {
			t.Errorf("expected Transparent, got %v", got)
		}
	})

	t.Run("read of const is a boundary", func(t *testing.T) {
		dst, _ := g.AddNode(graphmodel.Node{Kind: graphmodel.NodeKindVariable, Variable: &graphmodel.VariableNode{
			Core: graphmodel.NodeCore{ID: "v2"}, Mutability: graphmodel.MutabilityConst,
		}})
		if got := EvaluateForward(g, newFakeRegistry(), src, dst, graphmodel.EdgeRead, Academic()); got != Boundary {
			t.Errorf("expected Boundary for const read, got %v", got)
		}
	})

	t.Run("read of mutable is transparent", func(t *testing.T) {
		dst, _ := g.AddNode(graphmodel.Node{Kind: graphmodel.NodeKindVariable, Variable: &graphmodel.VariableNode{
			Core: graphmodel.NodeCore{ID: "v3"}, Mutability: graphmodel.MutabilityMutable,
		}})
		if got := EvaluateForward(g, newFakeRegistry(), src, dst, graphmodel.EdgeRead, Academic()); got != Transparent {
			t.Errorf("expected Transparent for mutable read, got %v", got)
		}
	})
}

func TestEvaluateForward_ExternalTargetIsAlwaysBoundary(t *testing.T) {
	g := graphmodel.New("/proj")
	src, _ := g.AddNode(graphmodel.Node{Kind: graphmodel.NodeKindFunction, Function: &graphmodel.FunctionNode{Core: graphmodel.NodeCore{ID: "f"}}})
	dst, _ := g.AddNode(graphmodel.Node{Kind: graphmodel.NodeKindFunction, Function: &graphmodel.FunctionNode{
		Core: graphmodel.NodeCore{ID: "ext", IsExternal: true},
	}})
	if got := EvaluateForward(g, newFakeRegistry(), src, dst, graphmodel.EdgeCall, Academic()); got != Boundary {
		t.Errorf("expected external target to always be Boundary, got %v", got)
	}
}

func TestEvaluateForward_InterfaceMethod(t *testing.T) {
	g, src, dst := newGraphWithTwoFuncs(
		graphmodel.FunctionNode{Core: graphmodel.NodeCore{ID: "caller"}},
		graphmodel.FunctionNode{
			Core:              graphmodel.NodeCore{ID: "iface.M", DocScore: 0.9},
			ReturnTypes:       []graphmodel.TypeId{"int"},
			IsInterfaceMethod: true,
		},
	)

	t.Run("doc-qualified interface method is a boundary", func(t *testing.T) {
		if got := EvaluateForward(g, newFakeRegistry(), src, dst, graphmodel.EdgeCall, Academic()); got != Boundary {
			t.Errorf("expected Boundary for doc-qualified interface method, got %v", got)
		}
	})

	t.Run("poorly documented interface method is transparent", func(t *testing.T) {
		g2, src2, dst2 := newGraphWithTwoFuncs(
			graphmodel.FunctionNode{Core: graphmodel.NodeCore{ID: "caller2"}},
			graphmodel.FunctionNode{
				Core:              graphmodel.NodeCore{ID: "iface.M2", DocScore: 0.1},
				ReturnTypes:       []graphmodel.TypeId{"int"},
				IsInterfaceMethod: true,
			},
		)
		if got := EvaluateForward(g2, newFakeRegistry(), src2, dst2, graphmodel.EdgeCall, Strict()); got != Transparent {
			t.Errorf("expected Transparent for a poorly documented interface method, got %v", got)
		}
	})
}

func TestEvaluateForward_AbstractFactory(t *testing.T) {
	g, src, dst := newGraphWithTwoFuncs(
		graphmodel.FunctionNode{Core: graphmodel.NodeCore{ID: "caller"}},
		graphmodel.FunctionNode{
			Core:        graphmodel.NodeCore{ID: "NewWidget", DocScore: 0.1},
			ReturnTypes: []graphmodel.TypeId{"Widget"},
		},
	)
	reg := newFakeRegistry()
	reg.abstract["Widget"] = true
	reg.docScore["Widget"] = 0.9

	if got := EvaluateForward(g, reg, src, dst, graphmodel.EdgeCall, Academic()); got != Boundary {
		t.Errorf("expected abstract-factory rule to produce Boundary, got %v", got)
	}
}

func TestEvaluateForward_AcademicModeDocQualified(t *testing.T) {
	g, src, dst := newGraphWithTwoFuncs(
		graphmodel.FunctionNode{Core: graphmodel.NodeCore{ID: "caller"}},
		graphmodel.FunctionNode{
			Core:        graphmodel.NodeCore{ID: "helper", DocScore: 0.6},
			ReturnTypes: []graphmodel.TypeId{"int"},
		},
	)

	t.Run("academic mode treats doc-qualified function as boundary", func(t *testing.T) {
		if got := EvaluateForward(g, newFakeRegistry(), src, dst, graphmodel.EdgeCall, Academic()); got != Boundary {
			t.Errorf("expected Boundary under Academic mode for doc-qualified function, got %v", got)
		}
	})

	t.Run("strict mode never applies the doc-threshold rule", func(t *testing.T) {
		if got := EvaluateForward(g, newFakeRegistry(), src, dst, graphmodel.EdgeCall, Strict()); got != Transparent {
			t.Errorf("expected Transparent under Strict mode regardless of doc score, got %v", got)
		}
	})
}

func TestShouldExploreCallers(t *testing.T) {
	t.Run("never explores callers through a Call edge", func(t *testing.T) {
		fn := &graphmodel.FunctionNode{Core: graphmodel.NodeCore{ID: "f"}}
		if ShouldExploreCallers(fn, IncomingCall, newFakeRegistry(), Academic()) {
			t.Error("expected IncomingCall to suppress caller exploration")
		}
	})

	t.Run("well documented complete signature suppresses exploration", func(t *testing.T) {
		fn := &graphmodel.FunctionNode{
			Core:        graphmodel.NodeCore{ID: "f", DocScore: 0.9},
			ReturnTypes: []graphmodel.TypeId{"int"},
			Parameters:  []graphmodel.Parameter{{Name: "x", ParamType: "int"}},
		}
		if ShouldExploreCallers(fn, IncomingRead, newFakeRegistry(), Academic()) {
			t.Error("expected well-documented, complete function to suppress caller exploration")
		}
	})

	t.Run("under-specified function explores callers", func(t *testing.T) {
		fn := &graphmodel.FunctionNode{Core: graphmodel.NodeCore{ID: "f", DocScore: 0.1}}
		if !ShouldExploreCallers(fn, IncomingRead, newFakeRegistry(), Academic()) {
			t.Error("expected under-specified function to explore callers")
		}
	})
}
