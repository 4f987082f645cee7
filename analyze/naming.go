package analyze

import (
	"strings"

	"github.com/cnext-lang/cnextc/ast"
	"github.com/cnext-lang/cnextc/diag"
	"github.com/cnext-lang/cnextc/symtab"
)

// reservedPrefixes are patterns matching compiler-private identifiers
// the emitted C relies on (temp variables, helper functions); user
// source must not shadow them (spec.md §4.4 #1).
var reservedPrefixes = []string{"cnx_", "__cnx", "_tmp", "__"}

// ParameterNaming rejects identifiers matching reserved or
// compiler-private patterns, in parameter lists and local
// declarations.
func ParameterNaming(unit *ast.Unit, tab *symtab.Table, src string) *diag.Bag {
	bag := &diag.Bag{}
	check := func(name string, sp diag.Span) {
		for _, p := range reservedPrefixes {
			if strings.HasPrefix(name, p) {
				bag.Addf(diag.CodeReservedIdentifier,
					"identifier `%s` uses a reserved compiler prefix `%s`", sp, name, p)
				return
			}
		}
	}
	var walkFn func(f *ast.FunctionDecl)
	walkFn = func(f *ast.FunctionDecl) {
		for _, p := range f.Params {
			check(p.Name, p.Sp)
		}
		ast.Inspect(f.Body, func(n ast.Node) bool {
			if vd, ok := n.(*ast.VarDeclStmt); ok {
				check(vd.Decl.Name, vd.Decl.Sp)
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
