// Package pruning implements the edge-aware pruning predicate: the
// boundary/transparent decision the CF Solver consults on every forward
// edge and every reverse-exploration candidate (spec §4.3).
package pruning

import "github.com/contextfp/cf/internal/graphmodel"

// Decision is the outcome of evaluating a single edge.
type Decision int

const (
	// Transparent means traversal continues through the target.
	Transparent Decision = iota
	// Boundary means traversal stops at the target; the target is still
	// counted exactly once.
	Boundary
)

// Params parameterizes both predicate functions. It is a plain value type
// with two fields and two named constructors; no global state or hidden
// flags influence pruning (spec §9).
type Params struct {
	DocThreshold float32
	AcademicMode bool
}

// Academic returns the canonical Academic preset {0.5, true}.
func Academic() Params { return Params{DocThreshold: 0.5, AcademicMode: true} }

// Strict returns the canonical Strict preset {0.8, false}.
func Strict() Params { return Params{DocThreshold: 0.8, AcademicMode: false} }

// TypeVarChecker (the TypeVar bound query IsSignatureComplete needs) and the
// AbstractChecker and DocScoreChecker queries the abstract-factory rule
// needs narrow the Type Registry to small interfaces, avoiding a direct dependency on
// the typeregistry package (which would make pruning depend on a
// concrete registry implementation rather than its own small contract).
type TypeVarChecker = graphmodel.TypeVarChecker

// AbstractChecker reports whether a TypeId names an abstract type, used by
// the abstract-factory rule.
type AbstractChecker interface {
	IsAbstract(id graphmodel.TypeId) bool
}

// DocScoreChecker reports a type's documentation score, used by the
// abstract-factory rule alongside AbstractChecker.
type DocScoreChecker interface {
	TypeDocScore(id graphmodel.TypeId) (float32, bool)
}

// Registry is the full view of the Type Registry the pruning predicate
// needs: abstractness and doc score for the abstract-factory rule, plus
// the TypeVar bound check IsSignatureComplete already requires.
type Registry interface {
	TypeVarChecker
	AbstractChecker
	DocScoreChecker
}

// EvaluateForward decides whether traversal should stop at target when
// reached from source via an edge of the given kind.
func EvaluateForward(g *graphmodel.Graph, registry Registry, source, target graphmodel.NodeIndex, kind graphmodel.EdgeKind, params Params) Decision {
	targetNode := g.Node(target)
	if targetNode == nil {
		return Boundary
	}
	core := targetNode.Core()
	if core.IsExternal {
		return Boundary
	}

	switch targetNode.Kind {
	case graphmodel.NodeKindVariable:
		return evaluateVariableTarget(targetNode.Variable, kind)
	case graphmodel.NodeKindFunction:
		return evaluateFunctionTarget(targetNode.Function, registry, params)
	default:
		return Boundary
	}
}

func evaluateVariableTarget(v *graphmodel.VariableNode, kind graphmodel.EdgeKind) Decision {
	switch kind {
	case graphmodel.EdgeWrite:
		return Transparent
	case graphmodel.EdgeRead:
		if v.Mutability == graphmodel.MutabilityConst || v.Mutability == graphmodel.MutabilityImmutable {
			return Boundary
		}
		return Transparent
	default:
		// Variables are never the target of Call/OverriddenBy/Annotates;
		// treat defensively as transparent rather than panicking on
		// malformed graph construction.
		return Transparent
	}
}

// evaluateFunctionTarget implements the Function-target rules, shared by
// Call, OverriddenBy (once reached past a transparent parent), and
// Annotates edges alike per spec §4.3's closing two bullets. See
// SPEC_FULL.md §13(b) for why Annotates receives no special case here.
func evaluateFunctionTarget(f *graphmodel.FunctionNode, registry Registry, params Params) Decision {
	sigComplete := f.IsSignatureComplete(registry)
	docQualified := sigComplete && f.Core.DocScore >= params.DocThreshold

	if f.IsInterfaceMethod {
		if docQualified {
			return Boundary
		}
		return Transparent
	}

	if isAbstractFactory(f, registry, params) {
		return Boundary
	}

	if params.AcademicMode && docQualified {
		return Boundary
	}

	return Transparent
}

func isAbstractFactory(f *graphmodel.FunctionNode, registry Registry, params Params) bool {
	if len(f.ReturnTypes) == 0 {
		return false
	}
	first := f.ReturnTypes[0]
	if !registry.IsAbstract(first) {
		return false
	}
	docScore, ok := registry.TypeDocScore(first)
	if !ok {
		return false
	}
	return docScore >= params.DocThreshold
}

// ShouldExploreCallers decides whether call-in reverse exploration should
// run from current, given the edge kind it was reached by.
func ShouldExploreCallers(current *graphmodel.FunctionNode, incoming IncomingKind, registry Registry, params Params) bool {
	if incoming == IncomingCall {
		return false
	}
	if current.IsSignatureComplete(registry) && current.Core.DocScore >= params.DocThreshold {
		return false
	}
	return true
}

// IncomingKind extends graphmodel.EdgeKind with the two synthetic markers
// the CF Solver's BFS state machine uses for reverse-exploration arrivals,
// plus the start node's "no incoming edge" case.
type IncomingKind int

const (
	IncomingNone IncomingKind = iota
	IncomingCall
	IncomingRead
	IncomingWrite
	IncomingOverriddenBy
	IncomingAnnotates
	IncomingCallIn
	IncomingSharedStateWrite
)

// FromEdgeKind converts a forward EdgeKind into its IncomingKind
// equivalent, for recording how a node was first reached during forward
// expansion.
func FromEdgeKind(kind graphmodel.EdgeKind) IncomingKind {
	switch kind {
	case graphmodel.EdgeCall:
		return IncomingCall
	case graphmodel.EdgeRead:
		return IncomingRead
	case graphmodel.EdgeWrite:
		return IncomingWrite
	case graphmodel.EdgeOverriddenBy:
		return IncomingOverriddenBy
	case graphmodel.EdgeAnnotates:
		return IncomingAnnotates
	default:
		return IncomingNone
	}
}
