// Package graphmodel implements the Context Graph: the two-variant node
// model, forward edges, and the adjacency structure the Graph Builder
// populates and the CF Solver traverses.
package graphmodel

// SymbolId is an opaque, globally-unique identifier for a definition,
// carried verbatim from the Semantic Data Contract. Treated as a black-box
// key; no internal structure is assumed.
type SymbolId = string

// TypeId is a SymbolId known to reference a type definition.
type TypeId = string

// NodeIndex is a stable integer handle into the graph's node array. Values
// remain valid for the lifetime of a built graph.
type NodeIndex int

// NoIndex is the sentinel NodeIndex (-1) used to signal "no node"; the zero
// value 0 is a valid index.
const NoIndex NodeIndex = -1

// Span is a half-open source range, end-exclusive, 0-based.
type Span struct {
	FilePath    string
	StartLine   int
	StartColumn int
	EndLine     int
	EndColumn   int
}

// Visibility mirrors the four levels carried by FunctionNode and
// VariableNode.
type Visibility string

const (
	VisibilityPublic    Visibility = "Public"
	VisibilityPrivate   Visibility = "Private"
	VisibilityProtected Visibility = "Protected"
	VisibilityInternal  Visibility = "Internal"
)

// Mutability classifies a VariableNode's write exposure.
type Mutability string

const (
	MutabilityConst     Mutability = "Const"
	MutabilityImmutable Mutability = "Immutable"
	MutabilityMutable   Mutability = "Mutable"
)

// VariableKind distinguishes where a variable lives.
type VariableKind string

const (
	VariableKindGlobal     VariableKind = "Global"
	VariableKindClassField VariableKind = "ClassField"
	VariableKindLocal      VariableKind = "Local"
)

// TypeSource records how a variable's type was determined.
type TypeSource string

const (
	TypeSourceAnnotation         TypeSource = "Annotation"
	TypeSourceInferred           TypeSource = "Inferred"
	TypeSourceExternalCallReturn TypeSource = "ExternalCallReturn"
	TypeSourceUnknown            TypeSource = "Unknown"
)

// NodeKind discriminates the two closed node variants.
type NodeKind int

const (
	NodeKindFunction NodeKind = iota
	NodeKindVariable
)

func (k NodeKind) String() string {
	switch k {
	case NodeKindFunction:
		return "Function"
	case NodeKindVariable:
		return "Variable"
	default:
		return "Unknown"
	}
}

// NodeCore holds the attributes common to both node variants (spec §3.2).
type NodeCore struct {
	ID          SymbolId
	Name        string
	Scope       SymbolId // enclosing symbol, empty for top-level definitions
	ContextSize uint32
	Span        Span
	DocScore    float32
	IsExternal  bool
	FilePath    string
}

// Parameter is one entry of FunctionNode.Parameters. ParamType is empty
// when the extractor could not determine a declared type. The builder
// copies the extractor's parameter list unchanged and does not drop
// self/this entries itself.
type Parameter struct {
	Name      string
	ParamType TypeId // "" when undeclared
}

// FunctionNode is a Function vertex of the Context Graph.
type FunctionNode struct {
	Core NodeCore

	Parameters        []Parameter
	ReturnTypes       []TypeId
	IsAsync           bool
	IsGenerator       bool
	Visibility        Visibility
	IsInterfaceMethod bool
}

// IsSignatureComplete reports whether every parameter is effectively typed
// and at least one return type is declared. An unbounded generic type
// parameter does not count as effectively typed; a declared-but-erroneous
// type (one not present in the registry) still counts as typed.
func (f *FunctionNode) IsSignatureComplete(registry TypeVarChecker) bool {
	for _, p := range f.Parameters {
		if p.ParamType == "" {
			return false
		}
		if registry != nil && registry.IsUnboundedTypeVar(p.ParamType) {
			return false
		}
	}
	return len(f.ReturnTypes) > 0
}

// TypeVarChecker is the narrow slice of the Type Registry that
// IsSignatureComplete needs: whether a TypeId names an unbounded generic
// type parameter (treated as Any, never effectively typed).
type TypeVarChecker interface {
	IsUnboundedTypeVar(id TypeId) bool
}

// VariableNode is a Variable vertex of the Context Graph.
type VariableNode struct {
	Core NodeCore

	VarType      TypeId // "" when unknown
	Mutability   Mutability
	VariableKind VariableKind
	TypeSource   TypeSource
	Visibility   Visibility
}

// Node is the closed sum of the two vertex variants. Exactly one of
// Function/Variable is non-nil, selected by Kind.
type Node struct {
	Kind     NodeKind
	Function *FunctionNode
	Variable *VariableNode
}

// Core returns the NodeCore shared by both variants.
func (n *Node) Core() *NodeCore {
	if n.Kind == NodeKindFunction {
		return &n.Function.Core
	}
	return &n.Variable.Core
}

// Symbol returns the node's SymbolId.
func (n *Node) Symbol() SymbolId {
	return n.Core().ID
}
