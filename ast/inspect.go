package ast

// Inspect traverses a statement tree in depth-first order, calling f
// for every statement and every expression reachable from it. If f
// returns false the children of that node are skipped. This mirrors
// the teacher's Inspect helper (grammar_ast_visitor.go): a single type
// switch instead of a full visitor, for callers that only care about
// a handful of node kinds (the function-call, division-by-zero,
// float-modulo, naming and null-check analyzers, the collector's
// scope-variable usage scan, the orchestrator's modified-parameter pass).
func Inspect(stmts []Stmt, f func(Node) bool) {
	for _, s := range stmts {
		inspectStmt(s, f)
	}
}

func inspectStmt(s Stmt, f func(Node) bool) {
	if s == nil || !f(s) {
		return
	}
	switch n := s.(type) {
	case *VarDeclStmt:
		if n.Decl.Init != nil {
			inspectExpr(n.Decl.Init, f)
		}
	case *AssignStmt:
		inspectExpr(n.Target, f)
		inspectExpr(n.Value, f)
	case *ExprStmt:
		inspectExpr(n.Expr, f)
	case *ReturnStmt:
		if n.Value != nil {
			inspectExpr(n.Value, f)
		}
	case *IfStmt:
		inspectExpr(n.Cond, f)
		Inspect(n.Then, f)
		Inspect(n.Else, f)
	case *WhileStmt:
		inspectExpr(n.Cond, f)
		Inspect(n.Body, f)
	case *DoWhileStmt:
		Inspect(n.Body, f)
		inspectExpr(n.Cond, f)
	case *ForStmt:
		inspectStmt(n.Init, f)
		if n.Cond != nil {
			inspectExpr(n.Cond, f)
		}
		inspectStmt(n.Update, f)
		Inspect(n.Body, f)
	case *CriticalStmt:
		Inspect(n.Body, f)
	case *SwitchStmt:
		inspectExpr(n.Scrutinee, f)
		for _, c := range n.Cases {
			Inspect(c.Body, f)
		}
		Inspect(n.Default, f)
	}
}

func inspectExpr(e Expr, f func(Node) bool) {
	if e == nil || !f(e) {
		return
	}
	switch n := e.(type) {
	case *BinaryExpr:
		inspectExpr(n.Left, f)
		inspectExpr(n.Right, f)
	case *UnaryExpr:
		inspectExpr(n.Operand, f)
	case *CallExpr:
		for _, a := range n.Args {
			inspectExpr(a, f)
		}
	case *MemberExpr:
		inspectExpr(n.Target, f)
	case *IndexExpr:
		inspectExpr(n.Target, f)
		inspectExpr(n.Index, f)
	case *SliceExpr:
		inspectExpr(n.Target, f)
		inspectExpr(n.Start, f)
		inspectExpr(n.Width, f)
	}
}

// Identifiers returns every Identifier name referenced by e, in
// left-to-right order, including duplicates.
func Identifiers(e Expr) []string {
	var names []string
	inspectExpr(e, func(n Node) bool {
		if id, ok := n.(*Identifier); ok {
			names = append(names, id.Name)
		}
		return true
	})
	return names
}
