package builder

import (
	"github.com/contextfp/cf/internal/graphmodel"
	"github.com/contextfp/cf/internal/semantic"
	"github.com/contextfp/cf/internal/typeregistry"
)

// These conversions exist because the contract package and the graph
// model deliberately use distinct named types for the same enumerations
// (semantic.Visibility vs graphmodel.Visibility) so that neither package
// depends on the other's vocabulary — only the builder, which already
// depends on both, needs to bridge them.

func convertVisibility(v semantic.Visibility) graphmodel.Visibility {
	return graphmodel.Visibility(v)
}

func convertMutability(m semantic.Mutability) graphmodel.Mutability {
	if m == "" {
		return graphmodel.MutabilityMutable
	}
	return graphmodel.Mutability(m)
}

func convertVariableKind(k semantic.VariableKind) graphmodel.VariableKind {
	return graphmodel.VariableKind(k)
}

func convertTypeSource(t semantic.TypeSource) graphmodel.TypeSource {
	if t == "" {
		return graphmodel.TypeSourceUnknown
	}
	return graphmodel.TypeSource(t)
}

func convertTypeKind(k semantic.TypeKind) typeregistry.TypeKind {
	return typeregistry.TypeKind(k)
}

func convertSpan(filePath string, s semantic.Span) graphmodel.Span {
	return graphmodel.Span{
		FilePath:    filePath,
		StartLine:   s.StartLine,
		StartColumn: s.StartColumn,
		EndLine:     s.EndLine,
		EndColumn:   s.EndColumn,
	}
}

func dereferenceOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}

func dereferenceTypeID(s *string) string {
	return dereferenceOr(s, "")
}
