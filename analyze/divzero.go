package analyze

import (
	"github.com/cnext-lang/cnextc/ast"
	"github.com/cnext-lang/cnextc/diag"
	"github.com/cnext-lang/cnextc/symtab"
	"github.com/cnext-lang/cnextc/types"
)

// DivisionByZero is the compile-time `/ 0` and `% 0` detector of
// spec.md §4.4 #6, including when the right operand is a const
// identifier bound to a literal zero. Two passes: first collect every
// const whose initializer is literal zero, then walk every `/`/`%`.
func DivisionByZero(unit *ast.Unit, tab *symtab.Table, src string) *diag.Bag {
	bag := &diag.Bag{}

	zeroConsts := make(map[string]bool)
	ast.Inspect(allStmts(unit), func(n ast.Node) bool {
		vd, ok := n.(*ast.VarDeclStmt)
		if !ok || !vd.Decl.Type.IsConst || vd.Decl.Init == nil {
			return true
		}
		if lit, ok := vd.Decl.Init.(*ast.Literal); ok && lit.LitKind == ast.LiteralInt {
			if types.IsLiteralZero(lit.Text) {
				zeroConsts[vd.Decl.Name] = true
			}
		}
		return true
	})
	for _, d := range unit.Decls {
		switch n := d.(type) {
		case *ast.ScopeDecl:
			for _, m := range n.Members {
				if m.Var != nil && m.Var.Type.IsConst && m.Var.Init != nil {
					if lit, ok := m.Var.Init.(*ast.Literal); ok && lit.LitKind == ast.LiteralInt && types.IsLiteralZero(lit.Text) {
						zeroConsts[m.Var.Name] = true
					}
				}
			}
		case *ast.VarDecl:
			if n.Type.IsConst && n.Init != nil {
				if lit, ok := n.Init.(*ast.Literal); ok && lit.LitKind == ast.LiteralInt && types.IsLiteralZero(lit.Text) {
					zeroConsts[n.Name] = true
				}
			}
		}
	}

	isZero := func(e ast.Expr) bool {
		switch n := e.(type) {
		case *ast.Literal:
			return n.LitKind == ast.LiteralInt && types.IsLiteralZero(n.Text)
		case *ast.Identifier:
			return zeroConsts[n.Name]
		}
		return false
	}

	ast.Inspect(allStmts(unit), func(n ast.Node) bool {
		be, ok := n.(*ast.BinaryExpr)
		if !ok {
			return true
		}
		if (be.Op == "/" || be.Op == "%") && isZero(be.Right) {
			code := diag.CodeDivisionByZero
			verb := "division"
			if be.Op == "%" {
				code = diag.CodeModuloByZero
				verb = "modulo"
			}
			bag.Addf(code, "%s by zero", be.Sp, verb)
		}
		return true
	})
	return bag
}

// allStmts gathers every function body in unit (top-level and
// scope-member) into one slice for analyzers that only need a flat
// Inspect walk and don't care about function boundaries.
func allStmts(unit *ast.Unit) []ast.Stmt {
	var out []ast.Stmt
	for _, d := range unit.Decls {
		switch n := d.(type) {
		case *ast.FunctionDecl:
			out = append(out, n.Body...)
		case *ast.ScopeDecl:
			for _, m := range n.Members {
				if m.Func != nil {
					out = append(out, m.Func.Body...)
				}
			}
		}
	}
	return out
}
