// Package snapshot persists a built (Context Graph, Type Registry) pair
// to BadgerDB, keyed by a content hash of the canonicalized SemanticData
// that produced it, adapted from the teacher's graph.SnapshotManager.
package snapshot

import (
	"github.com/contextfp/cf/internal/graphmodel"
	"github.com/contextfp/cf/internal/typeregistry"
)

// SchemaVersion guards against decoding a snapshot written by an
// incompatible build of this package.
const SchemaVersion = "1.0"

// serializableNode is the JSON-friendly mirror of graphmodel.Node. Fields
// not relevant to the other variant are simply left zero.
type serializableNode struct {
	Kind string `json:"kind"`

	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Scope       string            `json:"scope"`
	ContextSize uint32            `json:"context_size"`
	Span        graphmodel.Span   `json:"span"`
	DocScore    float32           `json:"doc_score"`
	IsExternal  bool              `json:"is_external"`
	FilePath    string            `json:"file_path"`

	Parameters        []graphmodel.Parameter `json:"parameters,omitempty"`
	ReturnTypes       []string               `json:"return_types,omitempty"`
	IsAsync           bool                   `json:"is_async,omitempty"`
	IsGenerator       bool                   `json:"is_generator,omitempty"`
	IsInterfaceMethod bool                   `json:"is_interface_method,omitempty"`
	FunctionVisibility string                `json:"function_visibility,omitempty"`

	VarType      string `json:"var_type,omitempty"`
	Mutability   string `json:"mutability,omitempty"`
	VariableKind string `json:"variable_kind,omitempty"`
	TypeSource   string `json:"type_source,omitempty"`
}

type serializableEdge struct {
	Src  int    `json:"src"`
	Dst  int    `json:"dst"`
	Kind string `json:"kind"`
}

type serializableTypeInfo struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	FilePath       string   `json:"file_path"`
	IsExternal     bool     `json:"is_external"`
	ContextSize    uint32   `json:"context_size"`
	DocScore       float32  `json:"doc_score"`
	TypeKind       string   `json:"type_kind"`
	IsAbstract     bool     `json:"is_abstract"`
	TypeParamCount int      `json:"type_param_count"`
	Bound          string   `json:"bound,omitempty"`
	Constraints    []string `json:"constraints,omitempty"`
	Implementors   []string `json:"implementors,omitempty"`
}

// SerializableGraph is the on-disk shape of a snapshot: a flat node array
// plus an edge list, deterministic by construction order, following the
// teacher's SerializableGraph. Nodes and edges keep construction order;
// only the type entries are sorted by ID.
type SerializableGraph struct {
	SchemaVersion string                 `json:"schema_version"`
	ProjectRoot   string                 `json:"project_root"`
	Nodes         []serializableNode     `json:"nodes"`
	Edges         []serializableEdge     `json:"edges"`
	Types         []serializableTypeInfo `json:"types"`
}

func toSerializable(g *graphmodel.Graph, reg *typeregistry.Registry, typeIDs []string) SerializableGraph {
	sg := SerializableGraph{
		SchemaVersion: SchemaVersion,
		ProjectRoot:   g.ProjectRoot,
	}

	for i := 0; i < g.NodeCount(); i++ {
		idx := graphmodel.NodeIndex(i)
		node := g.Node(idx)
		sg.Nodes = append(sg.Nodes, toSerializableNode(node))
		for _, edge := range g.OutgoingEdges(idx) {
			sg.Edges = append(sg.Edges, serializableEdge{Src: i, Dst: int(edge.Neighbor), Kind: edge.Kind.String()})
		}
	}

	for _, id := range typeIDs {
		info, ok := reg.Get(id)
		if !ok {
			continue
		}
		sg.Types = append(sg.Types, serializableTypeInfo{
			ID:             id,
			Name:           info.Definition.Name,
			FilePath:       info.Definition.FilePath,
			IsExternal:     info.Definition.IsExternal,
			ContextSize:    info.ContextSize,
			DocScore:       info.DocScore,
			TypeKind:       string(info.Attribute.TypeKind),
			IsAbstract:     info.Attribute.IsAbstract,
			TypeParamCount: info.Attribute.TypeParamCount,
			Bound:          info.Attribute.Bound.Bound,
			Constraints:    info.Attribute.Bound.Constraints,
			Implementors:   reg.DirectImplementors(id),
		})
	}

	return sg
}

func toSerializableNode(n *graphmodel.Node) serializableNode {
	core := n.Core()
	sn := serializableNode{
		ID:          core.ID,
		Name:        core.Name,
		Scope:       core.Scope,
		ContextSize: core.ContextSize,
		Span:        core.Span,
		DocScore:    core.DocScore,
		IsExternal:  core.IsExternal,
		FilePath:    core.FilePath,
	}
	switch n.Kind {
	case graphmodel.NodeKindFunction:
		sn.Kind = "Function"
		f := n.Function
		sn.Parameters = f.Parameters
		sn.ReturnTypes = f.ReturnTypes
		sn.IsAsync = f.IsAsync
		sn.IsGenerator = f.IsGenerator
		sn.IsInterfaceMethod = f.IsInterfaceMethod
		sn.FunctionVisibility = string(f.Visibility)
	case graphmodel.NodeKindVariable:
		sn.Kind = "Variable"
		v := n.Variable
		sn.VarType = v.VarType
		sn.Mutability = string(v.Mutability)
		sn.VariableKind = string(v.VariableKind)
		sn.TypeSource = string(v.TypeSource)
	}
	return sn
}

// fromSerializable reconstructs a Graph and Registry from a
// SerializableGraph, restoring node indices by insertion order (the same
// order they were serialized in, which is construction order — this is
// what makes rebuilt adjacency deterministic).
func fromSerializable(sg SerializableGraph) (*graphmodel.Graph, *typeregistry.Registry) {
	g := graphmodel.New(sg.ProjectRoot, graphmodel.WithNodeCapacity(len(sg.Nodes)))
	reg := typeregistry.New(typeregistry.WithCapacity(len(sg.Types)))

	for _, sn := range sg.Nodes {
		g.AddNode(fromSerializableNode(sn))
	}
	for _, se := range sg.Edges {
		g.AddEdge(graphmodel.NodeIndex(se.Src), graphmodel.NodeIndex(se.Dst), edgeKindFromString(se.Kind))
	}
	for _, st := range sg.Types {
		reg.Put(st.ID, typeregistry.TypeInfo{
			Definition: typeregistry.Definition{
				ID:         st.ID,
				Name:       st.Name,
				FilePath:   st.FilePath,
				IsExternal: st.IsExternal,
			},
			ContextSize: st.ContextSize,
			DocScore:    st.DocScore,
			Attribute: typeregistry.TypeDefAttribute{
				TypeKind:       typeregistry.TypeKind(st.TypeKind),
				IsAbstract:     st.IsAbstract,
				TypeParamCount: st.TypeParamCount,
				Bound: typeregistry.TypeParamBound{
					Bound:       st.Bound,
					Constraints: st.Constraints,
				},
			},
		})
		for _, child := range st.Implementors {
			reg.AddImplementor(st.ID, child)
		}
	}

	g.Freeze()
	return g, reg
}

func fromSerializableNode(sn serializableNode) graphmodel.Node {
	core := graphmodel.NodeCore{
		ID:          sn.ID,
		Name:        sn.Name,
		Scope:       sn.Scope,
		ContextSize: sn.ContextSize,
		Span:        sn.Span,
		DocScore:    sn.DocScore,
		IsExternal:  sn.IsExternal,
		FilePath:    sn.FilePath,
	}
	if sn.Kind == "Function" {
		return graphmodel.Node{
			Kind: graphmodel.NodeKindFunction,
			Function: &graphmodel.FunctionNode{
				Core:              core,
				Parameters:        sn.Parameters,
				ReturnTypes:       sn.ReturnTypes,
				IsAsync:           sn.IsAsync,
				IsGenerator:       sn.IsGenerator,
				Visibility:        graphmodel.Visibility(sn.FunctionVisibility),
				IsInterfaceMethod: sn.IsInterfaceMethod,
			},
		}
	}
	return graphmodel.Node{
		Kind: graphmodel.NodeKindVariable,
		Variable: &graphmodel.VariableNode{
			Core:         core,
			VarType:      sn.VarType,
			Mutability:   graphmodel.Mutability(sn.Mutability),
			VariableKind: graphmodel.VariableKind(sn.VariableKind),
			TypeSource:   graphmodel.TypeSource(sn.TypeSource),
		},
	}
}

func edgeKindFromString(s string) graphmodel.EdgeKind {
	switch s {
	case "Call":
		return graphmodel.EdgeCall
	case "Read":
		return graphmodel.EdgeRead
	case "Write":
		return graphmodel.EdgeWrite
	case "OverriddenBy":
		return graphmodel.EdgeOverriddenBy
	case "Annotates":
		return graphmodel.EdgeAnnotates
	default:
		return graphmodel.EdgeCall
	}
}
