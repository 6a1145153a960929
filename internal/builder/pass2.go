package builder

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/contextfp/cf/internal/graphmodel"
	"github.com/contextfp/cf/internal/semantic"
)

// pass2 wires every forward edge implied by a Reference, per the
// role/action table in spec §4.1. Resolution always goes through
// resolveNearestNode so a reference whose enclosing_symbol names a Type
// or a nested block still lands on the containing Function/Variable node.
func (b *Builder) pass2(ctx context.Context, state *buildState, data *semantic.SemanticData) {
	ctx, span := tracer.Start(ctx, "Builder.pass2")
	defer span.End()
	_ = ctx

	edgesBefore := state.result.Stats.EdgesCreated
	for _, doc := range data.Documents {
		for _, ref := range doc.References {
			b.wireReference(state, ref)
		}
	}
	span.SetAttributes(
		attribute.Int("edges_created", state.result.Stats.EdgesCreated-edgesBefore),
		attribute.Int("unresolved_calls", len(state.unresolvedCalls)),
	)
}

func (b *Builder) wireReference(state *buildState, ref semantic.Reference) {
	callerIdx, ok := state.resolveNearestNode(ref.EnclosingSymbol)
	if !ok {
		state.addDiagnostic(&InconsistentReference{
			Symbol: ref.EnclosingSymbol,
			Reason: "reference's enclosing_symbol resolves to no node",
		})
		return
	}

	switch ref.Role {
	case semantic.ReferenceRoleCall:
		b.wireCall(state, callerIdx, ref)
	case semantic.ReferenceRoleRead:
		b.wireTargetEdge(state, callerIdx, ref.TargetSymbol, graphmodel.EdgeRead, graphmodel.NodeKindVariable)
	case semantic.ReferenceRoleWrite:
		b.wireTargetEdge(state, callerIdx, ref.TargetSymbol, graphmodel.EdgeWrite, graphmodel.NodeKindVariable)
	case semantic.ReferenceRoleDecorate:
		b.wireTargetEdge(state, callerIdx, ref.TargetSymbol, graphmodel.EdgeAnnotates, graphmodel.NodeKindFunction)
	default:
		state.addDiagnostic(&SemanticParseError{Location: ref.EnclosingSymbol, Message: "unknown reference role: " + string(ref.Role)})
	}
}

// wireTargetEdge resolves target and adds kind if the resolved node
// matches the expected variant. A target naming the wrong variant (e.g. a
// Read reference whose target resolved to a Function) is an inconsistent
// reference, not a panic.
func (b *Builder) wireTargetEdge(state *buildState, callerIdx graphmodel.NodeIndex, target *string, kind graphmodel.EdgeKind, expect graphmodel.NodeKind) {
	if target == nil {
		state.addDiagnostic(&InconsistentReference{Symbol: "", Reason: "missing target_symbol for " + kind.String() + " reference"})
		return
	}
	idx, ok := state.resolveNearestNode(*target)
	if !ok {
		state.addDiagnostic(&UnknownSymbol{Symbol: *target})
		return
	}
	node := state.graph.Node(idx)
	if node.Kind != expect {
		state.addDiagnostic(&InconsistentReference{Symbol: *target, Reason: "target variant mismatch for " + kind.String()})
		return
	}
	if state.graph.AddEdge(callerIdx, idx, kind) {
		state.result.Stats.EdgesCreated++
	}
}

func (b *Builder) wireCall(state *buildState, callerIdx graphmodel.NodeIndex, ref semantic.Reference) {
	resolved := false

	if ref.TargetSymbol != nil {
		if idx, ok := state.resolveNearestNode(*ref.TargetSymbol); ok {
			if node := state.graph.Node(idx); node.Kind == graphmodel.NodeKindFunction {
				if state.graph.AddEdge(callerIdx, idx, graphmodel.EdgeCall) {
					state.result.Stats.EdgesCreated++
				}
				resolved = true
			}
		}
		if !resolved {
			if ctorIdx, ok := state.initMap[*ref.TargetSymbol]; ok {
				if state.graph.AddEdge(callerIdx, ctorIdx, graphmodel.EdgeCall) {
					state.result.Stats.EdgesCreated++
				}
				resolved = true
			}
		}
	}

	if !resolved && ref.Receiver != nil {
		callerScope := ""
		if node := state.graph.Node(callerIdx); node.Kind == graphmodel.NodeKindFunction {
			callerScope = node.Function.Core.ID
		}
		state.unresolvedCalls = append(state.unresolvedCalls, unresolvedCall{
			callerIndex: callerIdx,
			callerScope: callerScope,
			receiver:    *ref.Receiver,
			methodName:  dereferenceOr(ref.MethodName, ""),
		})
	}

	if ref.AssignedTo != nil {
		target := ""
		if ref.TargetSymbol != nil {
			target = *ref.TargetSymbol
		}
		state.callAssignments[*ref.AssignedTo] = callAssignment{
			callerIndex:  callerIdx,
			targetSymbol: target,
		}
	}

	if !resolved && ref.TargetSymbol == nil && ref.Receiver == nil {
		slog.Debug("call reference left unresolved with no receiver to retry", "caller", callerIdx)
	}
}
