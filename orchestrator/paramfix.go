package orchestrator

import "github.com/cnext-lang/cnextc/ast"

// computeModifiedParams resolves spec.md §9's open question on
// auto-const inference: "a parameter is considered modified iff it is
// written locally OR passed to a callee parameter that is modified."
// It returns a set keyed by "<function>.<param>", fed into
// codegen.Generator.ModifiedParams so genFunctionDecl's by-ref
// parameters get `const` exactly when the function (transitively)
// never writes through them.
func computeModifiedParams(order []string, units map[string]*ast.Unit) map[string]bool {
	modified := make(map[string]bool)

	// byCallName resolves a CallExpr.Callee (which may be the bare name
	// or the scope-mangled "Scope_member" form -- see ast.CallExpr's doc
	// comment) to its FunctionDecl; byRef's own ModifiedParams key, to
	// match codegen's genFunctionDecl/writeFunctionPrototype lookup, is
	// always the bare fn.Name.
	byCallName := make(map[string]*ast.FunctionDecl)
	var all []*ast.FunctionDecl
	collectFuncs(order, units, byCallName, &all)

	for _, fn := range all {
		markDirectWrites(fn, modified, fn.Name)
	}

	type edge struct{ callerParamKey, calleeParamKey string }
	var edges []edge
	for _, fn := range all {
		collectCallEdges(fn, fn.Name, byCallName, &edges)
	}

	for changed := true; changed; {
		changed = false
		for _, e := range edges {
			if modified[e.calleeParamKey] && !modified[e.callerParamKey] {
				modified[e.callerParamKey] = true
				changed = true
			}
		}
	}
	return modified
}

func collectFuncs(order []string, units map[string]*ast.Unit, byCallName map[string]*ast.FunctionDecl, all *[]*ast.FunctionDecl) {
	register := func(fn *ast.FunctionDecl) {
		byCallName[fn.Name] = fn
		if fn.Scope != "" {
			byCallName[fn.Scope+"_"+fn.Name] = fn
			byCallName[fn.Scope+"."+fn.Name] = fn
		}
		*all = append(*all, fn)
	}
	var walk func(decls []ast.Decl)
	walk = func(decls []ast.Decl) {
		for _, d := range decls {
			switch n := d.(type) {
			case *ast.FunctionDecl:
				register(n)
			case *ast.ScopeDecl:
				for _, m := range n.Members {
					if m.Func != nil {
						register(m.Func)
					}
				}
			}
		}
	}
	for _, p := range order {
		if u, ok := units[p]; ok {
			walk(u.Decls)
		}
	}
}

// markDirectWrites records every "<funcKey>.<param>" an assignment
// target's root identifier names, within fn's own body.
func markDirectWrites(fn *ast.FunctionDecl, modified map[string]bool, key string) {
	params := make(map[string]bool, len(fn.Params))
	for _, p := range fn.Params {
		params[p.Name] = true
	}
	ast.Inspect(fn.Body, func(n ast.Node) bool {
		assign, ok := n.(*ast.AssignStmt)
		if !ok {
			return true
		}
		root := rootIdentifier(assign.Target)
		if root != "" && params[root] {
			modified[key+"."+root] = true
		}
		return true
	})
}

// rootIdentifier walks down a (possibly nested member/index/slice)
// L-value expression to the identifier it is rooted at.
func rootIdentifier(e ast.Expr) string {
	for {
		switch n := e.(type) {
		case *ast.Identifier:
			return n.Name
		case *ast.MemberExpr:
			e = n.Target
		case *ast.IndexExpr:
			e = n.Target
		case *ast.SliceExpr:
			e = n.Target
		default:
			return ""
		}
	}
}

// collectCallEdges records, for every call fn makes where an argument
// is a bare identifier naming one of fn's own parameters, an edge from
// that (fn, param) to the callee's corresponding parameter.
func collectCallEdges(fn *ast.FunctionDecl, key string, byCallName map[string]*ast.FunctionDecl,
	edges *[]struct{ callerParamKey, calleeParamKey string }) {
	params := make(map[string]bool, len(fn.Params))
	for _, p := range fn.Params {
		params[p.Name] = true
	}
	ast.Inspect(fn.Body, func(n ast.Node) bool {
		call, ok := n.(*ast.CallExpr)
		if !ok {
			return true
		}
		callee, ok := byCallName[call.Callee]
		if !ok {
			return true
		}
		for i, arg := range call.Args {
			id, ok := arg.(*ast.Identifier)
			if !ok || !params[id.Name] || i >= len(callee.Params) {
				continue
			}
			*edges = append(*edges, struct{ callerParamKey, calleeParamKey string }{
				callerParamKey: key + "." + id.Name,
				calleeParamKey: callee.Name + "." + callee.Params[i].Name,
			})
		}
		return true
	})
}
