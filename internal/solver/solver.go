// Package solver implements the CF Solver: the conditional breadth-first
// traversal that produces a node's reachable set and total context size
// (spec §4.4).
package solver

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/contextfp/cf/internal/graphmodel"
	"github.com/contextfp/cf/internal/pruning"
)

var (
	tracer = otel.Tracer("github.com/contextfp/cf/internal/solver")
	meter  = otel.Meter("github.com/contextfp/cf/internal/solver")

	nodesVisited, _ = meter.Int64Counter(
		"cf_solver_nodes_visited_total",
		metric.WithDescription("Total nodes visited across all CF Solver queries"),
	)
)

// UnknownSymbolError is returned when ComputeCF is asked to start from a
// NodeIndex the graph does not recognize.
type UnknownSymbolError struct {
	Index graphmodel.NodeIndex
}

func (e *UnknownSymbolError) Error() string {
	return fmt.Sprintf("solver: unknown start node index %d", e.Index)
}

func (e *UnknownSymbolError) Kind() string { return "UnknownSymbol" }

// Result is the CF Solver's output: the reachable set and its total
// context size, per spec §4.4's CfResult.
type Result struct {
	ReachableSet      []graphmodel.NodeIndex
	TotalContextSize  uint64
	Truncated         bool // true when max_tokens stopped traversal early
}

type queueEntry struct {
	node     graphmodel.NodeIndex
	depth    int
	incoming pruning.IncomingKind
}

// ComputeCF performs the conditional BFS from start. A nil maxTokens means
// no early-termination budget. The solver never mutates graph or
// registry; it only allocates per-query temporaries, per spec §3.6/§5.
func ComputeCF(ctx context.Context, g *graphmodel.Graph, registry pruning.Registry, start graphmodel.NodeIndex, params pruning.Params, maxTokens *uint32) (Result, error) {
	ctx, span := tracer.Start(ctx, "Solver.ComputeCF", trace.WithAttributes(
		attribute.Bool("academic_mode", params.AcademicMode),
	))
	defer span.End()

	if g.Node(start) == nil {
		return Result{}, &UnknownSymbolError{Index: start}
	}

	queue := []queueEntry{{node: start, depth: 0, incoming: pruning.IncomingNone}}
	visited := make(map[graphmodel.NodeIndex]struct{})
	var reachable []graphmodel.NodeIndex
	var total uint64
	truncated := false

	budget := func() bool {
		return maxTokens != nil && total >= uint64(*maxTokens)
	}

	for len(queue) > 0 {
		entry := queue[0]
		queue = queue[1:]

		if _, seen := visited[entry.node]; seen {
			continue
		}
		visited[entry.node] = struct{}{}
		reachable = append(reachable, entry.node)

		node := g.Node(entry.node)
		total = saturatingAdd(total, uint64(node.Core().ContextSize))

		if budget() {
			truncated = true
			break
		}

		for _, edge := range g.OutgoingEdges(entry.node) {
			decision := pruning.EvaluateForward(g, registry, entry.node, edge.Neighbor, edge.Kind, params)
			if decision == pruning.Transparent {
				if _, seen := visited[edge.Neighbor]; !seen {
					queue = append(queue, queueEntry{node: edge.Neighbor, depth: entry.depth + 1, incoming: pruning.FromEdgeKind(edge.Kind)})
				}
				continue
			}
			// Boundary: include once, without enqueuing for expansion.
			if _, seen := visited[edge.Neighbor]; !seen {
				visited[edge.Neighbor] = struct{}{}
				reachable = append(reachable, edge.Neighbor)
				total = saturatingAdd(total, uint64(g.Node(edge.Neighbor).Core().ContextSize))
				if budget() {
					truncated = true
					break
				}
			}
		}
		if truncated {
			break
		}

		if node.Kind == graphmodel.NodeKindFunction {
			if pruning.ShouldExploreCallers(node.Function, entry.incoming, registry, params) {
				for _, edge := range g.IncomingEdges(entry.node, graphmodel.EdgeCall) {
					if _, seen := visited[edge.Neighbor]; !seen {
						queue = append(queue, queueEntry{node: edge.Neighbor, depth: entry.depth + 1, incoming: pruning.IncomingCallIn})
					}
				}
			}
		}

		if node.Kind == graphmodel.NodeKindVariable &&
			node.Variable.Mutability == graphmodel.MutabilityMutable &&
			entry.incoming == pruning.IncomingRead {
			for _, edge := range g.IncomingEdges(entry.node, graphmodel.EdgeWrite) {
				if _, seen := visited[edge.Neighbor]; !seen {
					queue = append(queue, queueEntry{node: edge.Neighbor, depth: entry.depth + 1, incoming: pruning.IncomingSharedStateWrite})
				}
			}
		}
	}

	nodesVisited.Add(ctx, int64(len(reachable)))

	span.SetAttributes(
		attribute.Int("reachable_count", len(reachable)),
		attribute.Int64("total_context_size", int64(total)),
		attribute.Bool("truncated", truncated),
	)

	return Result{ReachableSet: reachable, TotalContextSize: total, Truncated: truncated}, nil
}

// saturatingAdd adds b to a without wrapping past the uint64 ceiling,
// per spec §7's "every arithmetic on sizes uses saturating addition".
func saturatingAdd(a, b uint64) uint64 {
	sum := a + b
	if sum < a {
		return ^uint64(0)
	}
	return sum
}
