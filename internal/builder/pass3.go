package builder

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/contextfp/cf/internal/graphmodel"
)

// pass3 constructs OverriddenBy edges and recovers the receiver-typed
// calls Pass 2 could not resolve, iterating to fixpoint (spec §4.1 Pass 3).
func (b *Builder) pass3(ctx context.Context, state *buildState) {
	ctx, span := tracer.Start(ctx, "Builder.pass3")
	defer span.End()
	_ = ctx

	overriddenByCount := b.buildOverriddenByEdges(state)
	rounds, recovered := b.recoverCallsToFixpoint(state)

	state.result.Stats.FixpointRounds = rounds
	state.result.Stats.UnresolvedCalls = len(state.unresolvedCalls)

	span.SetAttributes(
		attribute.Int("overridden_by_edges", overriddenByCount),
		attribute.Int("calls_recovered", recovered),
		attribute.Int("fixpoint_rounds", rounds),
		attribute.Int("unresolved_calls_remaining", len(state.unresolvedCalls)),
	)
}

// buildOverriddenByEdges implements spec §4.1 Pass 3.1: for every method m
// contained in type T, for each transitive child type T' of T, find the
// same-named method in T' and link m -> m'. See SPEC_FULL.md §13(a) for
// the decision not to deduplicate by nearest ancestor on diamonds.
func (b *Builder) buildOverriddenByEdges(state *buildState) int {
	count := 0
	for idx := 0; idx < state.graph.NodeCount(); idx++ {
		node := state.graph.Node(graphmodel.NodeIndex(idx))
		if node.Kind != graphmodel.NodeKindFunction {
			continue
		}
		m := node.Function
		parentType := m.Core.Scope
		if parentType == "" {
			continue
		}
		for _, childType := range state.registry.TransitiveImplementors(parentType) {
			byName, ok := state.functionsByScopeAndName[childType]
			if !ok {
				continue
			}
			childIdx, ok := byName[m.Core.Name]
			if !ok {
				continue
			}
			if state.graph.AddEdge(graphmodel.NodeIndex(idx), childIdx, graphmodel.EdgeOverriddenBy) {
				count++
				state.result.Stats.EdgesCreated++
			}
		}
	}
	return count
}

// recoverCallsToFixpoint repeatedly retries unresolvedCalls until a round
// adds zero edges or the defensive iteration cap is hit; remaining
// entries are dropped as non-recoverable (spec §3.5 invariant 5).
func (b *Builder) recoverCallsToFixpoint(state *buildState) (rounds int, recovered int) {
	remaining := state.unresolvedCalls
	for round := 0; round < b.options.MaxFixpointIterations; round++ {
		rounds = round + 1
		var stillUnresolved []unresolvedCall
		addedThisRound := 0

		for _, call := range remaining {
			targetIdx, ok := b.resolveReceiverCall(state, call)
			if !ok {
				stillUnresolved = append(stillUnresolved, call)
				continue
			}
			if state.graph.AddEdge(call.callerIndex, targetIdx, graphmodel.EdgeCall) {
				state.result.Stats.EdgesCreated++
				addedThisRound++
				recovered++
			}
		}

		remaining = stillUnresolved
		if addedThisRound == 0 {
			break
		}
	}
	if len(remaining) > 0 {
		slog.Debug("call-edge recovery left entries unresolved at fixpoint", "count", len(remaining))
	}
	state.unresolvedCalls = remaining
	return rounds, recovered
}

// resolveReceiverCall implements the body of Pass 3.2: find the receiver
// variable visible in the caller's scope, follow its declared type into
// the Type Registry, and search that type and its ancestors for a
// same-named method.
func (b *Builder) resolveReceiverCall(state *buildState, call unresolvedCall) (graphmodel.NodeIndex, bool) {
	recvIdx, ok := b.findVisibleVariable(state, call.callerScope, call.receiver)
	if !ok {
		return graphmodel.NoIndex, false
	}
	recvNode := state.graph.Node(recvIdx)
	if recvNode.Kind != graphmodel.NodeKindVariable || recvNode.Variable.VarType == "" {
		return graphmodel.NoIndex, false
	}

	varType := recvNode.Variable.VarType
	if idx, ok := b.findMethod(state, varType, call.methodName); ok {
		return idx, true
	}
	for _, ancestor := range state.registry.TransitiveParents(varType) {
		if idx, ok := b.findMethod(state, ancestor, call.methodName); ok {
			return idx, true
		}
	}
	return graphmodel.NoIndex, false
}

func (b *Builder) findMethod(state *buildState, typeID, methodName string) (graphmodel.NodeIndex, bool) {
	byName, ok := state.functionsByScopeAndName[typeID]
	if !ok {
		return graphmodel.NoIndex, false
	}
	idx, ok := byName[methodName]
	return idx, ok
}

// findVisibleVariable looks for a variable named name first as a local
// scoped directly to callerScope, then as a field of callerScope's
// enclosing type, approximating spec §4.1's "visible in the caller's
// scope (resolved via the enclosing map)".
func (b *Builder) findVisibleVariable(state *buildState, callerScope, name string) (graphmodel.NodeIndex, bool) {
	if byName, ok := state.variablesByScopeAndName[callerScope]; ok {
		if idx, ok := byName[name]; ok {
			return idx, true
		}
	}
	ownerType := state.enclosingOf[callerScope]
	if ownerType == "" {
		return graphmodel.NoIndex, false
	}
	if byName, ok := state.variablesByScopeAndName[ownerType]; ok {
		if idx, ok := byName[name]; ok {
			return idx, true
		}
	}
	return graphmodel.NoIndex, false
}
