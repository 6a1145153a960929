package builder

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/contextfp/cf/internal/graphmodel"
)

// pass25 performs type propagation (spec §4.1 Pass 2.5). Step 1 ("copy
// declared types from Definition.details into node fields") is folded
// into Pass 1's node construction, since every field it touches is
// already available at allocation time; what remains here is the one step
// that genuinely depends on Pass 2's output — external-call-return
// propagation over call_assignments.
func (b *Builder) pass25(ctx context.Context, state *buildState) {
	ctx, span := tracer.Start(ctx, "Builder.pass2_5")
	defer span.End()
	_ = ctx

	propagated := 0
	for variableSymbol, assignment := range state.callAssignments {
		if assignment.targetSymbol == "" {
			continue
		}
		varIdx, ok := state.symbolToNode[variableSymbol]
		if !ok {
			continue
		}
		varNode := state.graph.Node(varIdx)
		if varNode.Kind != graphmodel.NodeKindVariable {
			continue
		}
		if varNode.Variable.VarType != "" {
			continue
		}

		targetIdx, ok := state.symbolToNode[assignment.targetSymbol]
		if !ok {
			continue
		}
		targetNode := state.graph.Node(targetIdx)
		if targetNode.Kind != graphmodel.NodeKindFunction {
			continue
		}
		fn := targetNode.Function
		if !fn.Core.IsExternal || len(fn.ReturnTypes) == 0 {
			continue
		}

		varNode.Variable.VarType = fn.ReturnTypes[0]
		varNode.Variable.TypeSource = graphmodel.TypeSourceExternalCallReturn
		propagated++
	}

	span.SetAttributes(attribute.Int("types_propagated", propagated))
}
