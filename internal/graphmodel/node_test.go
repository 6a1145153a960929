package graphmodel

import "testing"

type fixedTypeVarChecker map[string]bool

func (f fixedTypeVarChecker) IsUnboundedTypeVar(id TypeId) bool { return f[id] }

func TestFunctionNode_IsSignatureComplete(t *testing.T) {
	t.Run("complete signature", func(t *testing.T) {
		fn := FunctionNode{
			Parameters:  []Parameter{{Name: "x", ParamType: "int"}},
			ReturnTypes: []TypeId{"int"},
		}
		if !fn.IsSignatureComplete(nil) {
			t.Error("expected complete signature to report true")
		}
	})

	t.Run("missing parameter type", func(t *testing.T) {
		fn := FunctionNode{
			Parameters:  []Parameter{{Name: "x", ParamType: ""}},
			ReturnTypes: []TypeId{"int"},
		}
		if fn.IsSignatureComplete(nil) {
			t.Error("expected missing parameter type to report false")
		}
	})

	t.Run("no return types", func(t *testing.T) {
		fn := FunctionNode{Parameters: []Parameter{{Name: "x", ParamType: "int"}}}
		if fn.IsSignatureComplete(nil) {
			t.Error("expected absent return types to report false")
		}
	})

	t.Run("unbounded type var does not count as typed", func(t *testing.T) {
		fn := FunctionNode{
			Parameters:  []Parameter{{Name: "x", ParamType: "T"}},
			ReturnTypes: []TypeId{"int"},
		}
		checker := fixedTypeVarChecker{"T": true}
		if fn.IsSignatureComplete(checker) {
			t.Error("expected unbounded type var parameter to report false")
		}
	})
}

func TestNode_CoreAndSymbol(t *testing.T) {
	t.Run("function variant", func(t *testing.T) {
		n := Node{Kind: NodeKindFunction, Function: &FunctionNode{Core: NodeCore{ID: "f", Name: "f"}}}
		if n.Symbol() != "f" {
			t.Errorf("expected symbol %q, got %q", "f", n.Symbol())
		}
		if n.Core().Name != "f" {
			t.Errorf("expected core name %q, got %q", "f", n.Core().Name)
		}
	})

	t.Run("variable variant", func(t *testing.T) {
		n := Node{Kind: NodeKindVariable, Variable: &VariableNode{Core: NodeCore{ID: "v", Name: "v"}}}
		if n.Symbol() != "v" {
			t.Errorf("expected symbol %q, got %q", "v", n.Symbol())
		}
	})
}
