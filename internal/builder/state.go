package builder

import (
	"time"

	"github.com/contextfp/cf/internal/graphmodel"
	"github.com/contextfp/cf/internal/typeregistry"
)

// Stats carries build counters surfaced to metrics and the CLI.
type Stats struct {
	NodesCreated     int
	EdgesCreated     int
	TypesRegistered  int
	UnresolvedCalls  int
	FixpointRounds   int
	DurationMicro    int64
}

// Result is the Graph Builder's output: a built graph and registry,
// accumulated diagnostics, and Incomplete, which is set when diagnostics
// were recorded and no node was created. Per spec
// §7 the builder itself is best-effort and returns a non-nil error only
// when the input JSON could not be parsed upstream (see semantic.Parse) —
// everything else lands in Diagnostics.
type Result struct {
	Graph       *graphmodel.Graph
	Registry    *typeregistry.Registry
	Diagnostics []Diagnostic
	Incomplete  bool
	Stats       Stats
}

// callAssignment records call_assignments[assigned_to] = (caller, target)
// from Pass 2, consumed by Pass 2.5's external-call-return propagation.
type callAssignment struct {
	callerIndex  graphmodel.NodeIndex
	targetSymbol string // "" when the reference carried no target_symbol
}

// unresolvedCall is one entry of Pass 2's unresolved_calls list, retried
// to fixpoint in Pass 3.
type unresolvedCall struct {
	callerIndex graphmodel.NodeIndex
	callerScope string // symbol id of the function containing the call
	receiver    string
	methodName  string
}

// buildState holds all mutable scratch state for a single Build call,
// mirroring the teacher's buildState: maps populated during Pass 1 are
// read by every later pass, and nothing here outlives one Build.
type buildState struct {
	graph    *graphmodel.Graph
	registry *typeregistry.Registry
	result   *Result

	startTime time.Time

	// symbolToNode mirrors symbol_to_node from spec §4.1: every Function
	// or Variable definition's SymbolId resolved to its NodeIndex.
	symbolToNode map[string]graphmodel.NodeIndex

	// enclosingOf is the enclosing_map: every definition's SymbolId mapped
	// to its Definition.EnclosingSymbol (possibly "" for top-level).
	enclosingOf map[string]string

	// fileSource caches each document's source bytes so Pass 1 reads a
	// file at most once regardless of how many definitions it contains.
	fileSource map[string][]byte

	// initMap is TypeId -> NodeIndex(constructor), per Pass 1.
	initMap map[string]graphmodel.NodeIndex

	// functionsByScopeAndName indexes Function nodes by (scope, name) for
	// Pass 3's OverriddenBy search and ancestor method lookup.
	functionsByScopeAndName map[string]map[string]graphmodel.NodeIndex

	// variablesByScopeAndName indexes Variable nodes the same way, for
	// Pass 3's receiver-visibility lookup.
	variablesByScopeAndName map[string]map[string]graphmodel.NodeIndex

	callAssignments map[string]callAssignment
	unresolvedCalls []unresolvedCall
}

func newBuildState(projectRoot string) *buildState {
	return &buildState{
		graph:                   graphmodel.New(projectRoot),
		registry:                typeregistry.New(),
		result:                  &Result{},
		startTime:               time.Now(),
		symbolToNode:            make(map[string]graphmodel.NodeIndex),
		enclosingOf:             make(map[string]string),
		fileSource:              make(map[string][]byte),
		initMap:                 make(map[string]graphmodel.NodeIndex),
		functionsByScopeAndName: make(map[string]map[string]graphmodel.NodeIndex),
		variablesByScopeAndName: make(map[string]map[string]graphmodel.NodeIndex),
		callAssignments:         make(map[string]callAssignment),
	}
}

func (s *buildState) addDiagnostic(d Diagnostic) {
	s.result.Diagnostics = append(s.result.Diagnostics, d)
}

func (s *buildState) indexFunctionNode(scope, name string, idx graphmodel.NodeIndex) {
	byName, ok := s.functionsByScopeAndName[scope]
	if !ok {
		byName = make(map[string]graphmodel.NodeIndex)
		s.functionsByScopeAndName[scope] = byName
	}
	byName[name] = idx
}

func (s *buildState) indexVariableNode(scope, name string, idx graphmodel.NodeIndex) {
	byName, ok := s.variablesByScopeAndName[scope]
	if !ok {
		byName = make(map[string]graphmodel.NodeIndex)
		s.variablesByScopeAndName[scope] = byName
	}
	byName[name] = idx
}

// resolveNearestNode walks enclosingOf from symbol upward until it finds a
// key present in symbolToNode, implementing spec §4.1's "nearest
// enclosing node symbol" resolution for both References' enclosing_symbol
// and target_symbol.
func (s *buildState) resolveNearestNode(symbol string) (graphmodel.NodeIndex, bool) {
	seen := make(map[string]struct{})
	current := symbol
	for current != "" {
		if idx, ok := s.symbolToNode[current]; ok {
			return idx, true
		}
		if _, looped := seen[current]; looped {
			return graphmodel.NoIndex, false
		}
		seen[current] = struct{}{}
		parent, ok := s.enclosingOf[current]
		if !ok {
			return graphmodel.NoIndex, false
		}
		current = parent
	}
	return graphmodel.NoIndex, false
}
