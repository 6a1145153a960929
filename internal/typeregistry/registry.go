// Package typeregistry implements the Type Registry: the store of type
// definitions (which are never graph vertices) plus the implementors
// reverse index used by OverriddenBy construction and method resolution.
package typeregistry

import (
	"sort"
	"sync"

	"github.com/contextfp/cf/internal/graphmodel"
)

// TypeId aliases the graph model's TypeId for callers that only import
// this package.
type TypeId = graphmodel.TypeId

// TypeKind enumerates the kinds a type definition can carry.
type TypeKind string

const (
	TypeKindClass     TypeKind = "Class"
	TypeKindInterface TypeKind = "Interface"
	TypeKindStruct    TypeKind = "Struct"
	TypeKindEnum      TypeKind = "Enum"
	TypeKindTypeAlias TypeKind = "TypeAlias"
	TypeKindTypeVar   TypeKind = "TypeVar"
)

// TypeParamBound describes a TypeVar's optional bound and constraint list.
type TypeParamBound struct {
	Bound       TypeId // "" when unbounded
	Constraints []TypeId
}

// TypeDefAttribute carries the kind-specific metadata spec §3.4 requires
// for a type definition.
type TypeDefAttribute struct {
	TypeKind       TypeKind
	IsAbstract     bool
	TypeParamCount int

	// Bound is only meaningful when TypeKind == TypeKindTypeVar.
	Bound TypeParamBound
}

// Definition is the minimal view of a type definition the registry keeps:
// enough to compute context_size and doc_score and to answer the
// invariants in spec §3.5, without re-importing the semantic contract
// package (which would invert the dependency direction).
type Definition struct {
	ID         TypeId
	Name       string
	FilePath   string
	Span       graphmodel.Span
	IsExternal bool
}

// TypeInfo is the registry's value type, keyed by TypeId (spec §3.4).
type TypeInfo struct {
	Definition  Definition
	ContextSize uint32
	DocScore    float32
	Attribute   TypeDefAttribute
}

// Registry stores type definitions and the implementors reverse index. It
// is built once by the Graph Builder's Pass 1 and read thereafter by Pass
// 3 (OverriddenBy, call-edge recovery) and the pruning predicate (abstract
// factory rule). The RWMutex guard mirrors the teacher's symbol index: the
// registry is written single-threaded during build but may be queried from
// multiple goroutines afterward if a host runs concurrent CF queries.
type Registry struct {
	mu sync.RWMutex

	byID         map[TypeId]TypeInfo
	implementors map[TypeId]map[TypeId]struct{}
	parents      map[TypeId]map[TypeId]struct{}
}

// Option configures a Registry at construction, matching the
// functional-options idiom used across this codebase.
type Option func(*Registry)

// WithCapacity pre-sizes the type-definition map for n expected type
// definitions; the implementor and parent maps are not pre-sized.
func WithCapacity(n int) Option {
	return func(r *Registry) {
		if n > 0 {
			r.byID = make(map[TypeId]TypeInfo, n)
		}
	}
}

// New creates an empty Registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		byID:         make(map[TypeId]TypeInfo),
		implementors: make(map[TypeId]map[TypeId]struct{}),
		parents:      make(map[TypeId]map[TypeId]struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Put inserts or overwrites the TypeInfo for id. The Graph Builder calls
// this once per Type definition during Pass 1; a second call for the same
// id (which should not occur for well-formed input) simply replaces the
// entry, matching the builder's best-effort philosophy.
func (r *Registry) Put(id TypeId, info TypeInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[id] = info
}

// Get looks up a type definition by id.
func (r *Registry) Get(id TypeId) (TypeInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.byID[id]
	return info, ok
}

// AddImplementor records that child is a direct subtype of parent, via
// either an inherits or an implements declaration. Called once per
// (parent, child) edge found while walking TypeDetails.Inherits and
// TypeDetails.Implements in Pass 1; duplicate calls are idempotent because
// the backing set dedupes.
func (r *Registry) AddImplementor(parent, child TypeId) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.implementors[parent]
	if !ok {
		set = make(map[TypeId]struct{})
		r.implementors[parent] = set
	}
	set[child] = struct{}{}

	pset, ok := r.parents[child]
	if !ok {
		pset = make(map[TypeId]struct{})
		r.parents[child] = pset
	}
	pset[parent] = struct{}{}
}

// DirectParents returns the direct ancestor types of child (the reverse of
// DirectImplementors), sorted by TypeId so that Pass 3's first-match
// ancestor method search is reproducible across builds of identical input.
func (r *Registry) DirectParents(child TypeId) []TypeId {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set := r.parents[child]
	if len(set) == 0 {
		return nil
	}
	out := make([]TypeId, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// TransitiveParents returns every ancestor reachable from child by
// following DirectParents transitively, in breadth-first order so nearer
// ancestors are searched before farther ones.
func (r *Registry) TransitiveParents(child TypeId) []TypeId {
	visited := make(map[TypeId]struct{})
	queue := r.DirectParents(child)
	var out []TypeId
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if _, seen := visited[next]; seen {
			continue
		}
		visited[next] = struct{}{}
		out = append(out, next)
		queue = append(queue, r.DirectParents(next)...)
	}
	return out
}

// DirectImplementors returns the direct subtypes of parent, sorted by
// TypeId so that callers needing determinism (OverriddenBy construction,
// ancestor method resolution) get a reproducible order without having to
// sort the result themselves.
func (r *Registry) DirectImplementors(parent TypeId) []TypeId {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set := r.implementors[parent]
	if len(set) == 0 {
		return nil
	}
	out := make([]TypeId, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// TransitiveImplementors returns every type reachable from parent by
// following the implementors edge transitively (Pass 3's "implementors[T],
// transitive closure"). A visited set guards against inheritance cycles in
// malformed input, since the builder's philosophy is best-effort, never a
// panic or infinite loop.
func (r *Registry) TransitiveImplementors(parent TypeId) []TypeId {
	visited := make(map[TypeId]struct{})
	var out []TypeId
	var walk func(TypeId)
	walk = func(t TypeId) {
		for _, child := range r.DirectImplementors(t) {
			if _, seen := visited[child]; seen {
				continue
			}
			visited[child] = struct{}{}
			out = append(out, child)
			walk(child)
		}
	}
	walk(parent)
	return out
}

// IsUnboundedTypeVar implements graphmodel.TypeVarChecker: a TypeVar with
// no bound is never effectively typed (treated as Any), per spec §3.2's
// derived is_signature_complete rule.
func (r *Registry) IsUnboundedTypeVar(id TypeId) bool {
	info, ok := r.Get(id)
	if !ok {
		return false
	}
	return info.Attribute.TypeKind == TypeKindTypeVar && info.Attribute.Bound.Bound == ""
}

// IsAbstract reports whether id names a type with IsAbstract set, used by
// the pruning predicate's abstract-factory rule.
func (r *Registry) IsAbstract(id TypeId) bool {
	info, ok := r.Get(id)
	return ok && info.Attribute.IsAbstract
}

// TypeDocScore returns the doc score recorded for id, used alongside
// IsAbstract by the pruning predicate's abstract-factory rule.
func (r *Registry) TypeDocScore(id TypeId) (float32, bool) {
	info, ok := r.Get(id)
	if !ok {
		return 0, false
	}
	return info.DocScore, true
}

// IDs returns every registered TypeId, in no guaranteed order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.byID))
	for id := range r.byID {
		out = append(out, id)
	}
	return out
}

// Count returns the number of registered type definitions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}
