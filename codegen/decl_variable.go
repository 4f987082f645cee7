package codegen

import (
	"fmt"

	"github.com/cnext-lang/cnextc/ast"
)

// genVariableDecl emits a top-level (non-scope) variable as a file-scope
// C global, `static` unless it is declared public; single-use promotion
// to a function's static local applies only to scope members (spec.md §3).
func genVariableDecl(g *Generator, d ast.Decl) {
	n := d.(*ast.VarDecl)
	g.Globals[n.Name] = true
	g.Types.Declare(n.Name, typeInfoForParam(g, n.Type, false))
	qualifier := ""
	if n.Visibility == ast.Private {
		qualifier = "static "
	}
	decl := g.cDeclare(n.Name, n.Type)
	if n.Init != nil {
		init, fx := g.EmitExpr(n.Init)
		g.recordEffects(fx)
		g.out.writeil(fmt.Sprintf("%s%s = %s;", qualifier, decl, init))
		return
	}
	g.out.writeil(fmt.Sprintf("%s%s;", qualifier, decl))
}

func registerDeclGenerators(r *Registry) {
	r.RegisterDecl("struct", genStructDecl)
	r.RegisterDecl("enum", genEnumDecl)
	r.RegisterDecl("bitmap", genBitmapDecl)
	r.RegisterDecl("register", genRegisterDecl)
	r.RegisterDecl("function", genFunctionDecl)
	r.RegisterDecl("scope", genScopeDecl)
	r.RegisterDecl("variable", genVariableDecl)
}
