package codegen

import (
	"fmt"

	"github.com/cnext-lang/cnextc/ast"
)

// genScopeDecl flattens one scope's members into file-scope C
// declarations. Private-const members already got inlined at use
// sites during expression generation (package collect's InlineConsts)
// so they are skipped here entirely; single-use private vars are
// queued as a future function's static local instead of a global
// (spec.md §3).
func genScopeDecl(g *Generator, d ast.Decl) {
	n := d.(*ast.ScopeDecl)
	info := g.Scopes[n.Name]

	for _, m := range n.Members {
		switch {
		case m.Struct != nil:
			genStructDecl(g, m.Struct)
		case m.Enum != nil:
			genEnumDecl(g, m.Enum)
		case m.Bitmap != nil:
			genBitmapDecl(g, m.Bitmap)
		case m.Register != nil:
			genRegisterDecl(g, m.Register)
		}
	}

	for _, m := range n.Members {
		if m.Var == nil {
			continue
		}
		v := m.Var
		if info != nil {
			if m.Visibility == ast.Private && v.Type.IsConst && v.Init != nil {
				if _, inlined := info.InlineConsts[v.Name]; inlined {
					continue
				}
			}
			if m.Visibility == ast.Private {
				if fn := info.SingleUseFunction(v.Name); fn != "" {
					key := n.Name + "." + fn
					g.PendingStatics[key] = append(g.PendingStatics[key], v)
					continue
				}
			}
		}
		g.Globals[v.Name] = true
		g.Types.Declare(scopedMangledName(n.Name, v.Name), typeInfoForParam(g, v.Type, false))
		qualifier := "static "
		if m.Visibility == ast.Public {
			qualifier = ""
		}
		name := mangledFuncName(n.Name, v.Name)
		decl := g.cDeclare(name, v.Type)
		if v.Init != nil {
			init, fx := g.EmitExpr(v.Init)
			g.recordEffects(fx)
			g.out.writeil(fmt.Sprintf("%s%s = %s;", qualifier, decl, init))
		} else {
			g.out.writeil(fmt.Sprintf("%s%s;", qualifier, decl))
		}
	}

	for _, m := range n.Members {
		if m.Func == nil {
			continue
		}
		genFunctionDecl(g, m.Func)
	}
}

func scopedMangledName(scope, name string) string { return mangledFuncName(scope, name) }
