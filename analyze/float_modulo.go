package analyze

import (
	"github.com/cnext-lang/cnextc/ast"
	"github.com/cnext-lang/cnextc/diag"
	"github.com/cnext-lang/cnextc/symtab"
)

// FloatModulo rejects `%` when either operand is an f32/f64 variable,
// parameter, or literal (spec.md §4.4 #7, E0804).
func FloatModulo(unit *ast.Unit, tab *symtab.Table, src string) *diag.Bag {
	bag := &diag.Bag{}

	var walkFn func(f *ast.FunctionDecl)
	walkFn = func(f *ast.FunctionDecl) {
		floatNames := make(map[string]bool)
		for _, p := range f.Params {
			if isFloatTypeName(p.Type.Name) {
				floatNames[p.Name] = true
			}
		}
		ast.Inspect(f.Body, func(n ast.Node) bool {
			if vd, ok := n.(*ast.VarDeclStmt); ok && isFloatTypeName(vd.Decl.Type.Name) {
				floatNames[vd.Decl.Name] = true
			}
			return true
		})

		isFloatOperand := func(e ast.Expr) bool {
			switch n := e.(type) {
			case *ast.Literal:
				return n.LitKind == ast.LiteralFloat
			case *ast.Identifier:
				return floatNames[n.Name]
			}
			return false
		}

		ast.Inspect(f.Body, func(n ast.Node) bool {
			be, ok := n.(*ast.BinaryExpr)
			if !ok || be.Op != "%" {
				return true
			}
			if isFloatOperand(be.Left) || isFloatOperand(be.Right) {
				bag.Addf(diag.CodeFloatModulo, "floating-point modulo is forbidden", be.Sp)
			}
			return true
		})
	}

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

func isFloatTypeName(n string) bool { return n == "f32" || n == "f64" }
