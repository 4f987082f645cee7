package codegen

import (
	"fmt"
	"strings"

	"github.com/cnext-lang/cnextc/ast"
	"github.com/cnext-lang/cnextc/types"
)

// typeInfoForParam builds the TypeInfo a parameter is declared with
// inside the function body's type registry; byRef only affects how
// the parameter is rendered at the declaration site, not how it reads
// as a value in expressions.
func typeInfoForParam(g *Generator, t ast.TypeRef, byRef bool) types.TypeInfo {
	return types.FromTypeRef(t, g.isEnumTypeName(t.Name), g.Bitmaps[t.Name] != nil, g.Table.StructFields[t.Name] != nil)
}

// paramIsByRef mirrors genCall's call-site rule: every parameter except
// floats, enums, and the small integer primitives is passed by
// pointer, so struct/bitmap/array arguments are never copied.
func paramIsByRef(g *Generator, t ast.TypeRef) bool {
	if t.Name == "f32" || t.Name == "f64" {
		return false
	}
	if g.isEnumTypeName(t.Name) {
		return false
	}
	if smallPrimitive(t.Name) {
		return false
	}
	return true
}

func mangledFuncName(scope, name string) string {
	if scope == "" {
		return name
	}
	return scope + "_" + name
}

func genFunctionDecl(g *Generator, d ast.Decl) {
	n := d.(*ast.FunctionDecl)
	prevScope, prevFunc := g.CurrentScope, g.CurrentFunc
	g.CurrentScope, g.CurrentFunc = n.Scope, n.Name
	defer func() { g.CurrentScope, g.CurrentFunc = prevScope, prevFunc }()

	retType, retFx := cBaseType(g, n.ReturnType.Name)
	g.recordEffects(retFx)

	params := make([]string, len(n.Params))
	for i, p := range n.Params {
		byRef := paramIsByRef(g, p.Type)
		decl := g.cDeclare(p.Name, p.Type)
		if byRef {
			// auto-const: a by-ref param this function never writes
			// through gets `const` (spec.md open question, resolved in
			// DESIGN.md: fixpoint computed by the orchestrator before
			// codegen runs, recorded in g.ModifiedParams).
			if !g.ModifiedParams[n.Name+"."+p.Name] {
				decl = "const " + decl
			}
			params[i] = strings.Replace(decl, p.Name, "*"+p.Name, 1)
		} else {
			params[i] = decl
		}
	}
	if len(params) == 0 {
		params = []string{"void"}
	}

	name := mangledFuncName(n.Scope, n.Name)
	g.out.writeil(fmt.Sprintf("%s %s(%s) {", retType, name, strings.Join(params, ", ")))
	for _, p := range n.Params {
		g.Types.Declare(p.Name, typeInfoForParam(g, p.Type, paramIsByRef(g, p.Type)))
	}

	g.out.indent()
	for _, v := range g.PendingStatics[n.Scope+"."+n.Name] {
		g.Types.Declare(v.Name, typeInfoForParam(g, v.Type, false))
		decl := g.cDeclare(v.Name, v.Type)
		if v.Init != nil {
			init, fx := g.EmitExpr(v.Init)
			g.recordEffects(fx)
			g.out.writeil(fmt.Sprintf("static %s = %s;", decl, init))
			continue
		}
		g.out.writeil(fmt.Sprintf("static %s;", decl))
	}
	g.out.unindent()

	emitBlock(g, n.Body)
	g.out.writeil("}")
}
