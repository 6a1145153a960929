package builder

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/contextfp/cf/internal/graphmodel"
	"github.com/contextfp/cf/internal/semantic"
	"github.com/contextfp/cf/internal/typeregistry"
)

// pass1 allocates every Function/Variable definition as a graph node,
// registers every Type definition (plus its implementors edges), and
// builds init_map for Pass 2's constructor-call resolution. Also records
// enclosing_map entries for every definition regardless of kind, since
// Pass 2/3's nearest-enclosing-node walk must be able to step through
// Type symbols on its way up to an enclosing Function.
func (b *Builder) pass1(ctx context.Context, state *buildState, data *semantic.SemanticData) {
	ctx, span := tracer.Start(ctx, "Builder.pass1", trace.WithAttributes(
		attribute.Int("documents", len(data.Documents)),
	))
	defer span.End()

	for _, doc := range data.Documents {
		source := b.sourceFor(state, doc.RelativePath)
		for _, def := range doc.Definitions {
			state.enclosingOf[def.SymbolID] = dereferenceOr(def.EnclosingSymbol, "")
			b.allocateDefinition(state, doc.RelativePath, source, def)
		}
	}

	for _, def := range data.ExternalSymbols {
		def.IsExternal = true
		state.enclosingOf[def.SymbolID] = dereferenceOr(def.EnclosingSymbol, "")
		b.allocateDefinition(state, def.Location.FilePath, nil, def)
	}

	_ = ctx
	span.SetAttributes(
		attribute.Int("nodes_created", state.result.Stats.NodesCreated),
		attribute.Int("types_registered", state.result.Stats.TypesRegistered),
	)
}

// sourceFor reads and caches a document's source bytes. A read failure is
// non-fatal: affected spans measure as size 0 and an IoFailure diagnostic
// is recorded once per file.
func (b *Builder) sourceFor(state *buildState, relativePath string) []byte {
	if cached, ok := state.fileSource[relativePath]; ok {
		return cached
	}
	data, err := b.reader.Read(relativePath)
	if err != nil {
		state.addDiagnostic(&IoFailure{Path: relativePath, Err: err})
		state.fileSource[relativePath] = nil
		return nil
	}
	state.fileSource[relativePath] = data
	return data
}

func (b *Builder) allocateDefinition(state *buildState, filePath string, source []byte, def semantic.Definition) {
	switch def.Kind {
	case semantic.DefinitionKindType:
		b.registerType(state, filePath, source, def)
	case semantic.DefinitionKindFunction:
		b.allocateFunctionNode(state, filePath, source, def)
	case semantic.DefinitionKindVariable:
		b.allocateVariableNode(state, filePath, source, def)
	default:
		state.addDiagnostic(&SemanticParseError{
			Location: def.SymbolID,
			Message:  "unknown definition kind: " + string(def.Kind),
		})
	}
}

func (b *Builder) registerType(state *buildState, filePath string, source []byte, def semantic.Definition) {
	contextSize := b.measure(state, filePath, source, def.Span)
	docScore := b.docScorer.Score(def.Documentation)

	attr := typeregistry.TypeDefAttribute{}
	var inherits, implements []string
	if def.Details.Type != nil {
		t := def.Details.Type
		attr.TypeKind = convertTypeKind(t.Kind)
		attr.IsAbstract = t.IsAbstract
		attr.TypeParamCount = len(t.TypeParams)
		if attr.TypeKind == typeregistry.TypeKindTypeVar && len(t.TypeParams) > 0 {
			tp := t.TypeParams[0]
			attr.Bound = typeregistry.TypeParamBound{
				Bound:       dereferenceTypeID(tp.Bound),
				Constraints: append([]string(nil), tp.Constraints...),
			}
		}
		inherits = t.Inherits
		implements = t.Implements
	}

	state.registry.Put(def.SymbolID, typeregistry.TypeInfo{
		Definition: typeregistry.Definition{
			ID:         def.SymbolID,
			Name:       def.Name,
			FilePath:   filePath,
			Span:       convertSpan(filePath, def.Span),
			IsExternal: def.IsExternal,
		},
		ContextSize: contextSize,
		DocScore:    docScore,
		Attribute:   attr,
	})
	state.result.Stats.TypesRegistered++

	for _, parent := range inherits {
		state.registry.AddImplementor(parent, def.SymbolID)
	}
	for _, parent := range implements {
		state.registry.AddImplementor(parent, def.SymbolID)
	}
}

func (b *Builder) allocateFunctionNode(state *buildState, filePath string, source []byte, def semantic.Definition) {
	contextSize := b.measure(state, filePath, source, def.Span)
	docScore := b.docScorer.Score(def.Documentation)

	fn := &graphmodel.FunctionNode{
		Core: graphmodel.NodeCore{
			ID:          def.SymbolID,
			Name:        def.Name,
			Scope:       dereferenceOr(def.EnclosingSymbol, ""),
			ContextSize: contextSize,
			Span:        convertSpan(filePath, def.Span),
			DocScore:    docScore,
			IsExternal:  def.IsExternal,
			FilePath:    filePath,
		},
	}

	isConstructor := false
	if d := def.Details.Function; d != nil {
		for _, p := range d.Parameters {
			fn.Parameters = append(fn.Parameters, graphmodel.Parameter{
				Name:      p.Name,
				ParamType: dereferenceTypeID(p.ParamType),
			})
		}
		fn.ReturnTypes = append(fn.ReturnTypes, d.ReturnTypes...)
		fn.IsAsync = d.Modifiers.IsAsync
		fn.IsGenerator = d.Modifiers.IsGenerator
		fn.Visibility = convertVisibility(d.Modifiers.Visibility)
		fn.IsInterfaceMethod = d.IsInterfaceMethod
		isConstructor = d.Modifiers.IsConstructor
	}

	idx, existed := state.graph.AddNode(graphmodel.Node{Kind: graphmodel.NodeKindFunction, Function: fn})
	if existed {
		state.addDiagnostic(&InconsistentReference{Symbol: def.SymbolID, Reason: "duplicate definition"})
		return
	}
	state.symbolToNode[def.SymbolID] = idx
	state.indexFunctionNode(fn.Core.Scope, fn.Core.Name, idx)
	state.result.Stats.NodesCreated++

	if isConstructor && fn.Core.Scope != "" {
		state.initMap[fn.Core.Scope] = idx
	}
}

func (b *Builder) allocateVariableNode(state *buildState, filePath string, source []byte, def semantic.Definition) {
	contextSize := b.measure(state, filePath, source, def.Span)
	docScore := b.docScorer.Score(def.Documentation)

	v := &graphmodel.VariableNode{
		Core: graphmodel.NodeCore{
			ID:          def.SymbolID,
			Name:        def.Name,
			Scope:       dereferenceOr(def.EnclosingSymbol, ""),
			ContextSize: contextSize,
			Span:        convertSpan(filePath, def.Span),
			DocScore:    docScore,
			IsExternal:  def.IsExternal,
			FilePath:    filePath,
		},
		Mutability: graphmodel.MutabilityMutable,
	}

	if d := def.Details.Variable; d != nil {
		v.VarType = dereferenceTypeID(d.VarType)
		v.Mutability = convertMutability(d.Mutability)
		v.VariableKind = convertVariableKind(d.Kind)
		v.TypeSource = convertTypeSource(d.TypeSource)
		v.Visibility = convertVisibility(d.Visibility)
	}

	idx, existed := state.graph.AddNode(graphmodel.Node{Kind: graphmodel.NodeKindVariable, Variable: v})
	if existed {
		state.addDiagnostic(&InconsistentReference{Symbol: def.SymbolID, Reason: "duplicate definition"})
		return
	}
	state.symbolToNode[def.SymbolID] = idx
	state.indexVariableNode(v.Core.Scope, v.Core.Name, idx)
	state.result.Stats.NodesCreated++
}

func (b *Builder) measure(state *buildState, filePath string, source []byte, span semantic.Span) uint32 {
	if source == nil {
		return 0
	}
	size, err := b.sizeFn.Measure(convertSpan(filePath, span), source)
	if err != nil {
		state.addDiagnostic(&IoFailure{Path: filePath, Err: err})
		return 0
	}
	return size
}
