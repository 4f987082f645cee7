package analyze

import (
	"github.com/cnext-lang/cnextc/ast"
	"github.com/cnext-lang/cnextc/diag"
	"github.com/cnext-lang/cnextc/symtab"
)

// pointerReturningStdlib is the documented subset of the stdlib
// allow-list whose return value is a pointer that may be NULL (spec.md
// §4.4 #5).
var pointerReturningStdlib = map[string]bool{
	"malloc": true, "calloc": true, "realloc": true,
}

// NullCheck requires an explicit null-guard on any pointer returned by
// a documented C stdlib function, before that pointer's value is used
// for anything besides the guard itself.
func NullCheck(unit *ast.Unit, tab *symtab.Table, src string) *diag.Bag {
	bag := &diag.Bag{}

	var scanBlock func(stmts []ast.Stmt)
	scanBlock = func(stmts []ast.Stmt) {
		guarded := make(map[string]bool)
		pending := make(map[string]diag.Span)

		isGuardOf := func(e ast.Expr, name string) bool {
			found := false
			ast.Inspect([]ast.Stmt{&ast.ExprStmt{Expr: e}}, func(n ast.Node) bool {
				if id, ok := n.(*ast.Identifier); ok && id.Name == name {
					found = true
				}
				return true
			})
			return found
		}

		for _, stmt := range stmts {
			switch n := stmt.(type) {
			case *ast.VarDeclStmt:
				if n.Decl.Init != nil {
					if ce, ok := n.Decl.Init.(*ast.CallExpr); ok && pointerReturningStdlib[ce.Callee] {
						pending[n.Decl.Name] = n.Decl.Sp
					}
				}
			case *ast.IfStmt:
				for name := range pending {
					if !guarded[name] && isGuardOf(n.Cond, name) {
						guarded[name] = true
					}
				}
				scanBlock(n.Then)
				scanBlock(n.Else)
			case *ast.ExprStmt:
				for name, sp := range pending {
					if !guarded[name] && isGuardOf(n.Expr, name) {
						bag.Addf(diag.CodeMissingNullGuard,
							"pointer `%s` returned by an allocator must be null-checked before use", sp, name)
						delete(pending, name)
					}
				}
			default:
				ast.Inspect([]ast.Stmt{stmt}, func(nd ast.Node) bool {
					if id, ok := nd.(*ast.Identifier); ok {
						if sp, isPending := pending[id.Name]; isPending && !guarded[id.Name] {
							bag.Addf(diag.CodeMissingNullGuard,
								"pointer `%s` returned by an allocator must be null-checked before use", sp, id.Name)
							delete(pending, id.Name)
						}
					}
					return true
				})
			}
		}
	}

	var walkFn func(f *ast.FunctionDecl)
	walkFn = func(f *ast.FunctionDecl) { scanBlock(f.Body) }

	for _, d := range unit.Decls {
		switch n := d.(type) {
		case *ast.FunctionDecl:
			walkFn(n)
		case *ast.ScopeDecl:
			for _, m := range n.Members {
				if m.Func != nil {
					walkFn(m.Func)
				}
			}
		}
	}
	return bag
}
