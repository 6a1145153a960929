package graphmodel

import "sync"

// Option configures a Graph at construction time, following the
// functional-options pattern used throughout this codebase's builders.
type Option func(*Graph)

// WithNodeCapacity pre-sizes the node slice, avoiding reallocation for
// large inputs. Purely an optimization; has no observable effect.
func WithNodeCapacity(n int) Option {
	return func(g *Graph) {
		if n > 0 {
			g.nodes = make([]Node, 0, n)
		}
	}
}

// Graph is the Context Graph: a dense array of nodes plus per-node forward
// adjacency lists. Edges are purely forward; incoming views are recovered
// on demand from the forward lists rather than stored.
//
// A Graph is built by a single writer (the Graph Builder) and then frozen;
// after Freeze it is safe for concurrent read-only use by multiple CF
// Solver queries.
type Graph struct {
	ProjectRoot string

	nodes       []Node
	symbolIndex map[SymbolId]NodeIndex
	outgoing    [][]Edge
	edgeSeen    []map[edgeKey]struct{}

	frozen bool

	incomingOnce  sync.Once
	incomingIndex map[NodeIndex][]Edge
}

type edgeKey struct {
	dst  NodeIndex
	kind EdgeKind
}

// New creates an empty Graph rooted at projectRoot.
func New(projectRoot string, opts ...Option) *Graph {
	g := &Graph{
		ProjectRoot: projectRoot,
		symbolIndex: make(map[SymbolId]NodeIndex),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// AddNode inserts node keyed by its symbol. Idempotent on symbol: a
// duplicate insertion leaves the graph unchanged and returns the existing
// index with existed=true so the caller can accumulate a diagnostic.
func (g *Graph) AddNode(node Node) (idx NodeIndex, existed bool) {
	symbol := node.Symbol()
	if existing, ok := g.symbolIndex[symbol]; ok {
		return existing, true
	}
	idx = NodeIndex(len(g.nodes))
	g.nodes = append(g.nodes, node)
	g.outgoing = append(g.outgoing, nil)
	g.edgeSeen = append(g.edgeSeen, nil)
	g.symbolIndex[symbol] = idx
	return idx, false
}

// AddEdge inserts a forward edge src -> dst of the given kind. Idempotent
// per (src, dst, kind) triple: a repeated call is a no-op and reports
// added=false. Out-of-range indices are a builder programming error and
// panic rather than corrupt adjacency state silently.
func (g *Graph) AddEdge(src, dst NodeIndex, kind EdgeKind) (added bool) {
	g.mustValidIndex(src)
	g.mustValidIndex(dst)

	if g.edgeSeen[src] == nil {
		g.edgeSeen[src] = make(map[edgeKey]struct{})
	}
	key := edgeKey{dst: dst, kind: kind}
	if _, ok := g.edgeSeen[src][key]; ok {
		return false
	}
	g.edgeSeen[src][key] = struct{}{}
	g.outgoing[src] = append(g.outgoing[src], Edge{Neighbor: dst, Kind: kind})
	return true
}

func (g *Graph) mustValidIndex(idx NodeIndex) {
	if idx < 0 || int(idx) >= len(g.nodes) {
		panic("graphmodel: node index out of range")
	}
}

// NodeCount reports the number of nodes in the graph.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// Node returns a pointer to the node at index, or nil if out of range.
func (g *Graph) Node(index NodeIndex) *Node {
	if index < 0 || int(index) >= len(g.nodes) {
		return nil
	}
	return &g.nodes[index]
}

// NodeBySymbol resolves a symbol to its node, if present.
func (g *Graph) NodeBySymbol(symbol SymbolId) (*Node, NodeIndex, bool) {
	idx, ok := g.symbolIndex[symbol]
	if !ok {
		return nil, NoIndex, false
	}
	return &g.nodes[idx], idx, true
}

// IndexOf resolves a symbol to its NodeIndex only.
func (g *Graph) IndexOf(symbol SymbolId) (NodeIndex, bool) {
	idx, ok := g.symbolIndex[symbol]
	return idx, ok
}

// OutgoingEdges returns the forward adjacency list for index, in insertion
// order. The returned slice must not be mutated by the caller.
func (g *Graph) OutgoingEdges(index NodeIndex) []Edge {
	if index < 0 || int(index) >= len(g.outgoing) {
		return nil
	}
	return g.outgoing[index]
}

// IncomingEdges returns every edge of the given kind (or all kinds, when
// kind is negative) pointing into index. The full reverse index is built
// once, lazily, on first call — it is never materialised during the build
// passes themselves, matching the "runtime view, not stored edge" design.
func (g *Graph) IncomingEdges(index NodeIndex, kind EdgeKind) []Edge {
	g.buildIncomingIndex()
	all := g.incomingIndex[index]
	if kind < 0 {
		return all
	}
	var out []Edge
	for _, e := range all {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// EdgeKindAny selects every incoming edge kind in IncomingEdges.
const EdgeKindAny EdgeKind = -1

func (g *Graph) buildIncomingIndex() {
	g.incomingOnce.Do(func() {
		idx := make(map[NodeIndex][]Edge, len(g.nodes))
		for src := 0; src < len(g.outgoing); src++ {
			for _, e := range g.outgoing[src] {
				idx[e.Neighbor] = append(idx[e.Neighbor], Edge{Neighbor: NodeIndex(src), Kind: e.Kind})
			}
		}
		g.incomingIndex = idx
	})
}

// Freeze marks the graph as built. After Freeze no further AddNode/AddEdge
// calls are expected; it exists for callers (and tests) to assert
// lifecycle intent, matching spec §3.6 ("built once, then immutable").
func (g *Graph) Freeze() {
	g.frozen = true
}

// Frozen reports whether Freeze has been called.
func (g *Graph) Frozen() bool { return g.frozen }
