package codegen

import (
	"fmt"

	"github.com/cnext-lang/cnextc/ast"
)

func genEnumDecl(g *Generator, d ast.Decl) {
	n := d.(*ast.EnumDecl)
	width := n.BitWidth
	if width == 0 {
		width = 32
	}
	backing, fx := cBaseType(g, fmt.Sprintf("u%d", width))
	g.recordEffects(fx)
	g.out.writeil(fmt.Sprintf("typedef %s %s;", backing, n.Name))
	g.out.writeil("enum {")
	g.out.indent()
	prev := int64(-1)
	first := true
	for _, m := range n.Members {
		var v int64
		switch {
		case m.Value != nil:
			v = *m.Value
		case !first:
			v = prev + 1
		}
		g.out.writeil(fmt.Sprintf("%s_%s = %d,", n.Name, m.Name, v))
		prev = v
		first = false
	}
	g.out.unindent()
	g.out.writeil("};")
}
