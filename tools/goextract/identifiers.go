package main

import (
	"go/ast"
	"strconv"
	"strings"
)

// symbolID builds the flat SymbolId the core contract expects: an import
// path plus a dotted local name, so two packages' same-named Foo never
// collide.
func symbolID(importPath, name string) string {
	return importPath + "." + name
}

// methodSymbolID builds a method's SymbolId as Receiver.Method, following
// the teacher's own dotted-path convention for nested symbols
// (package.Type.Method) rather than inventing a separate delimiter.
func methodSymbolID(importPath, receiverType, method string) string {
	return importPath + "." + receiverType + "." + method
}

// exprString renders the Go type expressions this extractor needs to turn
// into a TypeId: identifiers, pointers, qualified identifiers, arrays and
// slices, maps, ellipses, channels, func types, generic instantiations and
// a few more. Any other expression renders as the empty string, which the
// parameter collectors record as an undeclared type.
func exprString(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		return "*" + exprString(t.X)
	case *ast.SelectorExpr:
		return exprString(t.X) + "." + t.Sel.Name
	case *ast.ArrayType:
		if t.Len == nil {
			return "[]" + exprString(t.Elt)
		}
		return "[" + exprString(t.Len) + "]" + exprString(t.Elt)
	case *ast.MapType:
		return "map[" + exprString(t.Key) + "]" + exprString(t.Value)
	case *ast.Ellipsis:
		return "..." + exprString(t.Elt)
	case *ast.InterfaceType:
		return "interface{}"
	case *ast.StructType:
		return "struct{}"
	case *ast.FuncType:
		return "func" + funcTypeString(t)
	case *ast.ChanType:
		return "chan " + exprString(t.Value)
	case *ast.BasicLit:
		return t.Value
	case *ast.IndexExpr:
		return exprString(t.X) + "[" + exprString(t.Index) + "]"
	case *ast.IndexListExpr:
		parts := make([]string, len(t.Indices))
		for i, idx := range t.Indices {
			parts[i] = exprString(idx)
		}
		return exprString(t.X) + "[" + strings.Join(parts, ",") + "]"
	case *ast.ParenExpr:
		return "(" + exprString(t.X) + ")"
	default:
		return ""
	}
}

func funcTypeString(ft *ast.FuncType) string {
	var params []string
	if ft.Params != nil {
		for _, f := range ft.Params.List {
			params = append(params, exprString(f.Type))
		}
	}
	return "(" + strings.Join(params, ",") + ")"
}

// identName returns the plain identifier name of an rvalue/lvalue
// expression when it is simple enough to treat as a Read/Write target:
// bare identifiers and field selections off any plain identifier (x.f).
func identName(expr ast.Expr) (string, bool) {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name, true
	case *ast.SelectorExpr:
		if ident, ok := t.X.(*ast.Ident); ok {
			return ident.Name + "." + t.Sel.Name, true
		}
	}
	return "", false
}

// receiverTypeName extracts the bare type name from a method's receiver
// field list, stripping the pointer star so value and pointer receivers
// for the same type land on the same symbol.
func receiverTypeName(recv *ast.FieldList) (string, bool) {
	if recv == nil || len(recv.List) == 0 {
		return "", false
	}
	expr := recv.List[0].Type
	if star, ok := expr.(*ast.StarExpr); ok {
		expr = star.X
	}
	if ident, ok := expr.(*ast.Ident); ok {
		return ident.Name, true
	}
	return "", false
}

// stringLit unquotes a raw import-path string literal.
func stringLit(lit *ast.BasicLit) string {
	s, err := strconv.Unquote(lit.Value)
	if err != nil {
		return lit.Value
	}
	return s
}
