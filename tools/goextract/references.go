package main

import (
	"go/ast"
	"go/token"

	"github.com/contextfp/cf/internal/semantic"
)

// bodyWalker accumulates references found inside one function body. A
// fresh walker is used per function so receiver/parameter names never
// leak across functions sharing a file.
type bodyWalker struct {
	pkg          *packageInfo
	fs           *fileState
	enclosing    string // symbol id of the function/method this body belongs to
	receiverName string // "" if the function has no receiver
	receiverType string // "" if the function has no receiver
	refs         []semantic.Reference

	// skip holds AST nodes already accounted for by a more specific
	// handler (an assignment target, a call's callee) so the generic
	// Ident/SelectorExpr cases below don't also report them as reads.
	skip map[ast.Node]bool
}

// collectReferences walks every function and method body in fs, returning
// every Call/Read/Write reference found. Must run after every file in the
// package has gone through collectDefinitions, since resolving a bare
// identifier or a receiver-qualified selector depends on pkg's fully
// populated name tables.
func collectReferences(pkg *packageInfo, fs *fileState) []semantic.Reference {
	var out []semantic.Reference
	for _, decl := range fs.astFile.Decls {
		fd, ok := decl.(*ast.FuncDecl)
		if !ok || fd.Body == nil {
			continue
		}

		var sym string
		recvName, recvType := "", ""
		if rt, ok := receiverTypeName(fd.Recv); ok {
			recvType = rt
			sym = methodSymbolID(pkg.importPath, rt, fd.Name.Name)
			if len(fd.Recv.List[0].Names) > 0 {
				recvName = fd.Recv.List[0].Names[0].Name
			}
		} else {
			sym = symbolID(pkg.importPath, fd.Name.Name)
		}

		w := &bodyWalker{
			pkg: pkg, fs: fs, enclosing: sym,
			receiverName: recvName, receiverType: recvType,
			skip: map[ast.Node]bool{},
		}
		ast.Inspect(fd.Body, w.visit)
		out = append(out, w.refs...)
	}
	return out
}

// visit implements ast.Inspect's visitor signature. Call expressions,
// assignment targets, and identifier reads are the only shapes this
// extractor maps onto the contract's Call/Read/Write reference roles;
// everything else (control flow, literals, type switches) is of no
// interest to the Context Graph and is left to the default AST walk.
func (w *bodyWalker) visit(n ast.Node) bool {
	if n == nil || w.skip[n] {
		return true
	}
	switch node := n.(type) {
	case *ast.AssignStmt:
		w.visitAssign(node)
	case *ast.CallExpr:
		w.visitCall(node, "")
	case *ast.Ident:
		w.visitRead(node)
	case *ast.SelectorExpr:
		w.visitSelectorRead(node)
	}
	return true
}

// visitAssign handles both "x = expr" writes and "x := f()" call-assignment
// tracking, matching the contract's assigned_to field. Lhs targets are
// marked skip so the generic Ident/SelectorExpr walk doesn't also log them
// as reads.
func (w *bodyWalker) visitAssign(a *ast.AssignStmt) {
	assignedNames := make([]string, len(a.Lhs))
	for i, lhs := range a.Lhs {
		w.skip[lhs] = true
		name, ok := identName(lhs)
		if !ok {
			continue
		}
		assignedNames[i] = name
		w.emitWrite(lhs, name)
	}

	for i, rhs := range a.Rhs {
		if call, ok := rhs.(*ast.CallExpr); ok {
			assignedTo := ""
			if i < len(assignedNames) {
				assignedTo = assignedNames[i]
			} else if len(assignedNames) == 1 {
				assignedTo = assignedNames[0]
			}
			w.visitCall(call, assignedTo)
		}
	}
}

// visitCall emits a Call reference for a CallExpr. assignedTo, when
// non-empty, is the identifier text (a bare name or x.f) the call's result
// was assigned to, emitted as the reference's assigned_to.
func (w *bodyWalker) visitCall(call *ast.CallExpr, assignedTo string) {
	w.skip[call.Fun] = true

	switch fn := call.Fun.(type) {
	case *ast.Ident:
		if target, ok := w.pkg.funcs[fn.Name]; ok {
			w.emitCall(&target, nil, nil, assignedTo, fn.Pos())
		}
		// Built-ins and unresolved bare calls (closures, function
		// values) are not modeled; there is no definition to point at.

	case *ast.SelectorExpr:
		w.skip[fn.Sel] = true
		recv, ok := identName(fn.X)
		if !ok {
			return
		}
		method := fn.Sel.Name

		// A receiver-style call: the selector's base is the function's
		// own receiver or a local variable, not an imported package
		// alias. Distinguishing the two without type information is
		// inherently heuristic; a base identifier matching a known
		// package-level function name is assumed not to be a receiver
		// and left unresolved rather than misreported as a method call.
		if recv == w.receiverName && w.receiverType != "" {
			receiver, mname := recv, method
			w.emitCall(nil, &receiver, &mname, assignedTo, fn.Pos())
			return
		}
		if _, isPkgFunc := w.pkg.funcs[recv]; !isPkgFunc {
			receiver, mname := recv, method
			w.emitCall(nil, &receiver, &mname, assignedTo, fn.Pos())
		}
	}
}

func (w *bodyWalker) visitRead(ident *ast.Ident) {
	if sym, ok := w.pkg.globalVars[ident.Name]; ok {
		w.refs = append(w.refs, semantic.Reference{
			TargetSymbol:    &sym,
			EnclosingSymbol: w.enclosing,
			Role:            semantic.ReferenceRoleRead,
			Location:        locationOf(w.fs, ident.Pos()),
		})
	}
}

func (w *bodyWalker) visitSelectorRead(sel *ast.SelectorExpr) {
	ident, ok := sel.X.(*ast.Ident)
	if !ok || ident.Name != w.receiverName || w.receiverType == "" {
		return
	}
	fields := w.pkg.fields[w.receiverType]
	if fields == nil {
		return
	}
	if sym, ok := fields[sel.Sel.Name]; ok {
		w.skip[sel.Sel] = true
		target := sym
		w.refs = append(w.refs, semantic.Reference{
			TargetSymbol:    &target,
			EnclosingSymbol: w.enclosing,
			Role:            semantic.ReferenceRoleRead,
			Location:        locationOf(w.fs, sel.Pos()),
		})
	}
}

func (w *bodyWalker) emitWrite(lhs ast.Expr, name string) {
	if sym, ok := w.pkg.globalVars[name]; ok {
		target := sym
		w.refs = append(w.refs, semantic.Reference{
			TargetSymbol:    &target,
			EnclosingSymbol: w.enclosing,
			Role:            semantic.ReferenceRoleWrite,
			Location:        locationOf(w.fs, lhs.Pos()),
		})
		return
	}
	sel, ok := lhs.(*ast.SelectorExpr)
	if !ok {
		return
	}
	ident, ok := sel.X.(*ast.Ident)
	if !ok || ident.Name != w.receiverName || w.receiverType == "" {
		return
	}
	fields := w.pkg.fields[w.receiverType]
	if fields == nil {
		return
	}
	if sym, ok := fields[sel.Sel.Name]; ok {
		target := sym
		w.refs = append(w.refs, semantic.Reference{
			TargetSymbol:    &target,
			EnclosingSymbol: w.enclosing,
			Role:            semantic.ReferenceRoleWrite,
			Location:        locationOf(w.fs, lhs.Pos()),
		})
	}
}

func (w *bodyWalker) emitCall(target, receiver, method *string, assignedTo string, pos token.Pos) {
	ref := semantic.Reference{
		TargetSymbol:    target,
		EnclosingSymbol: w.enclosing,
		Role:            semantic.ReferenceRoleCall,
		Receiver:        receiver,
		MethodName:      method,
		Location:        locationOf(w.fs, pos),
	}
	if assignedTo != "" {
		name := assignedTo
		ref.AssignedTo = &name
	}
	w.refs = append(w.refs, ref)
}
