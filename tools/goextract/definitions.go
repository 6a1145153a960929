package main

import (
	"go/ast"
	"go/token"
	"strings"

	"github.com/contextfp/cf/internal/semantic"
)

// collectDefinitions walks a single file's top-level declarations,
// appending a Definition for each function, method, package-level
// variable/constant, and named type, and registering each in pkg's name
// tables so the reference pass can resolve unqualified and receiver-
// qualified identifiers against them.
func collectDefinitions(pkg *packageInfo, fs *fileState) {
	for _, decl := range fs.astFile.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			collectFunc(pkg, fs, d)
		case *ast.GenDecl:
			switch d.Tok {
			case token.VAR, token.CONST:
				collectVars(pkg, fs, d)
			case token.TYPE:
				collectTypes(pkg, fs, d)
			}
		}
	}
}

func collectFunc(pkg *packageInfo, fs *fileState, d *ast.FuncDecl) {
	name := d.Name.Name
	var sym string
	var enclosing *string

	if recvType, ok := receiverTypeName(d.Recv); ok {
		sym = methodSymbolID(pkg.importPath, recvType, name)
		if typeSym, ok := pkg.types[recvType]; ok {
			enclosing = &typeSym
		}
	} else {
		sym = symbolID(pkg.importPath, name)
		pkg.funcs[name] = sym
	}

	var params []semantic.Parameter
	if d.Type.Params != nil {
		for _, field := range d.Type.Params.List {
			typ := exprString(field.Type)
			var typPtr *string
			if typ != "" {
				typPtr = &typ
			}
			if len(field.Names) == 0 {
				params = append(params, semantic.Parameter{Name: "", ParamType: typPtr})
				continue
			}
			for _, n := range field.Names {
				params = append(params, semantic.Parameter{Name: n.Name, ParamType: typPtr})
			}
		}
	}

	var returns []string
	if d.Type.Results != nil {
		for _, field := range d.Type.Results.List {
			typ := exprString(field.Type)
			count := len(field.Names)
			if count == 0 {
				count = 1
			}
			for i := 0; i < count; i++ {
				returns = append(returns, typ)
			}
		}
	}

	fs.defs = append(fs.defs, semantic.Definition{
		SymbolID:        sym,
		Kind:            semantic.DefinitionKindFunction,
		Name:            name,
		DisplayName:     name,
		Location:        locationOf(fs, d.Pos()),
		Span:            spanOf(fs, d.Pos(), d.End()),
		EnclosingSymbol: enclosing,
		IsExternal:      false,
		Documentation:   docLines(d.Doc),
		Details: semantic.Details{
			Function: &semantic.FunctionDetails{
				Parameters:  params,
				ReturnTypes: returns,
				Modifiers: semantic.FunctionModifiers{
					IsConstructor: strings.HasPrefix(name, "New"),
					Visibility:    visibilityOf(name),
				},
				IsInterfaceMethod: false,
			},
		},
	})
}

func collectVars(pkg *packageInfo, fs *fileState, d *ast.GenDecl) {
	mutability := semantic.MutabilityMutable
	if d.Tok == token.CONST {
		mutability = semantic.MutabilityConst
	}

	for _, spec := range d.Specs {
		vs, ok := spec.(*ast.ValueSpec)
		if !ok {
			continue
		}
		var declaredType *string
		if vs.Type != nil {
			typ := exprString(vs.Type)
			declaredType = &typ
		}
		typeSource := semantic.TypeSourceUnknown
		if declaredType != nil {
			typeSource = semantic.TypeSourceAnnotation
		} else if len(vs.Values) > 0 {
			typeSource = semantic.TypeSourceInferred
		}

		for _, n := range vs.Names {
			if n.Name == "_" {
				continue
			}
			sym := symbolID(pkg.importPath, n.Name)
			pkg.globalVars[n.Name] = sym
			fs.defs = append(fs.defs, semantic.Definition{
				SymbolID:      sym,
				Kind:          semantic.DefinitionKindVariable,
				Name:          n.Name,
				DisplayName:   n.Name,
				Location:      locationOf(fs, n.Pos()),
				Span:          spanOf(fs, d.Pos(), d.End()),
				Documentation: docLines(d.Doc),
				Details: semantic.Details{
					Variable: &semantic.VariableDetails{
						VarType:    declaredType,
						Mutability: mutability,
						Scope:      pkg.importPath,
						Visibility: visibilityOf(n.Name),
						Kind:       semantic.VariableKindGlobal,
						TypeSource: typeSource,
					},
				},
			})
		}
	}
}

func collectTypes(pkg *packageInfo, fs *fileState, d *ast.GenDecl) {
	for _, spec := range d.Specs {
		ts, ok := spec.(*ast.TypeSpec)
		if !ok {
			continue
		}
		name := ts.Name.Name
		sym := symbolID(pkg.importPath, name)
		pkg.types[name] = sym

		kind := semantic.TypeKindStruct
		var inherits []string
		fieldNames := map[string]string{}

		switch node := ts.Type.(type) {
		case *ast.StructType:
			if node.Fields != nil {
				for _, field := range node.Fields.List {
					typeName := exprString(field.Type)
					if len(field.Names) == 0 {
						// Embedded field: recorded only as the type's
						// inheritance edge; it gets no entry in the
						// field list.
						inherits = append(inherits, typeName)
						continue
					}
					for _, n := range field.Names {
						fieldSym := symbolID(pkg.importPath, name+"."+n.Name)
						fieldNames[n.Name] = fieldSym
					}
				}
			}
		case *ast.InterfaceType:
			kind = semantic.TypeKindInterface
			collectInterfaceMethods(pkg, fs, name, sym, node)
		default:
			kind = semantic.TypeKindTypeAlias
		}
		pkg.fields[name] = fieldNames

		var fieldList []string
		for _, sym := range fieldNames {
			fieldList = append(fieldList, sym)
		}

		fs.defs = append(fs.defs, semantic.Definition{
			SymbolID:      sym,
			Kind:          semantic.DefinitionKindType,
			Name:          name,
			DisplayName:   name,
			Location:      locationOf(fs, ts.Pos()),
			Span:          spanOf(fs, d.Pos(), d.End()),
			Documentation: docLines(d.Doc),
			Details: semantic.Details{
				Type: &semantic.TypeDetails{
					Kind:       kind,
					Visibility: visibilityOf(name),
					Fields:     fieldList,
					Inherits:   inherits,
					// Go has no explicit "implements" declaration;
					// interface satisfaction is structural and would
					// require full type-checking to recover, which this
					// syntactic extractor deliberately does not attempt.
					Implements: nil,
				},
			},
		})

		ownerType := sym
		for _, fieldSym := range fieldNames {
			fs.defs = append(fs.defs, semantic.Definition{
				SymbolID:        fieldSym,
				Kind:            semantic.DefinitionKindVariable,
				Name:            fieldNameFromSymbol(fieldSym),
				DisplayName:     fieldNameFromSymbol(fieldSym),
				Location:        locationOf(fs, ts.Pos()),
				Span:            spanOf(fs, ts.Pos(), ts.End()),
				EnclosingSymbol: &ownerType,
				Details: semantic.Details{
					Variable: &semantic.VariableDetails{
						Mutability: semantic.MutabilityMutable,
						Scope:      sym,
						Visibility: visibilityOf(fieldNameFromSymbol(fieldSym)),
						Kind:       semantic.VariableKindClassField,
						TypeSource: semantic.TypeSourceAnnotation,
					},
				},
			})
		}
	}
}

// collectInterfaceMethods emits a Function Definition for each method an
// interface declares directly (embedded interfaces contribute no Names and
// are skipped here; their own methods are collected when that embedded
// interface's own TypeSpec is visited), mirroring how collectFunc emits one
// Definition per *ast.FuncDecl for concrete methods.
func collectInterfaceMethods(pkg *packageInfo, fs *fileState, ifaceName, ifaceSym string, iface *ast.InterfaceType) {
	if iface.Methods == nil {
		return
	}
	for _, field := range iface.Methods.List {
		ft, ok := field.Type.(*ast.FuncType)
		if !ok || len(field.Names) == 0 {
			// Embedded interface (no Names) or a type constraint element
			// (union/approximation) in a generic interface: neither is a
			// method declaration.
			continue
		}

		var params []semantic.Parameter
		if ft.Params != nil {
			for _, p := range ft.Params.List {
				typ := exprString(p.Type)
				var typPtr *string
				if typ != "" {
					typPtr = &typ
				}
				if len(p.Names) == 0 {
					params = append(params, semantic.Parameter{Name: "", ParamType: typPtr})
					continue
				}
				for _, n := range p.Names {
					params = append(params, semantic.Parameter{Name: n.Name, ParamType: typPtr})
				}
			}
		}

		var returns []string
		if ft.Results != nil {
			for _, r := range ft.Results.List {
				typ := exprString(r.Type)
				count := len(r.Names)
				if count == 0 {
					count = 1
				}
				for i := 0; i < count; i++ {
					returns = append(returns, typ)
				}
			}
		}

		for _, methodName := range field.Names {
			enclosing := ifaceSym
			fs.defs = append(fs.defs, semantic.Definition{
				SymbolID:        methodSymbolID(pkg.importPath, ifaceName, methodName.Name),
				Kind:            semantic.DefinitionKindFunction,
				Name:            methodName.Name,
				DisplayName:     methodName.Name,
				Location:        locationOf(fs, methodName.Pos()),
				Span:            spanOf(fs, field.Pos(), field.End()),
				EnclosingSymbol: &enclosing,
				IsExternal:      false,
				Documentation:   docLines(field.Doc),
				Details: semantic.Details{
					Function: &semantic.FunctionDetails{
						Parameters:  params,
						ReturnTypes: returns,
						Modifiers: semantic.FunctionModifiers{
							Visibility: visibilityOf(methodName.Name),
						},
						IsInterfaceMethod: true,
					},
				},
			})
		}
	}
}

func fieldNameFromSymbol(sym string) string {
	idx := strings.LastIndex(sym, ".")
	if idx < 0 {
		return sym
	}
	return sym[idx+1:]
}

func visibilityOf(name string) semantic.Visibility {
	if name == "" {
		return semantic.VisibilityPrivate
	}
	if ast.IsExported(name) {
		return semantic.VisibilityPublic
	}
	return semantic.VisibilityPrivate
}

func docLines(g *ast.CommentGroup) []string {
	if g == nil {
		return nil
	}
	var lines []string
	for _, c := range g.List {
		lines = append(lines, strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(c.Text, "//"), "/*")))
	}
	return lines
}

func locationOf(fs *fileState, pos token.Pos) semantic.Location {
	p := fs.fset.Position(pos)
	return semantic.Location{FilePath: fs.relativePath, Line: p.Line - 1, Column: p.Column - 1}
}

func spanOf(fs *fileState, start, end token.Pos) semantic.Span {
	s := fs.fset.Position(start)
	e := fs.fset.Position(end)
	return semantic.Span{
		StartLine:   s.Line - 1,
		StartColumn: s.Column - 1,
		EndLine:     e.Line - 1,
		EndColumn:   e.Column - 1,
	}
}
