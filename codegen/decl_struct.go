package codegen

import (
	"fmt"

	"github.com/cnext-lang/cnextc/ast"
)

func genStructDecl(g *Generator, d ast.Decl) {
	n := d.(*ast.StructDecl)
	g.out.writeil(fmt.Sprintf("typedef struct %s {", n.Name))
	g.out.indent()
	for _, f := range n.Fields {
		t := f.Type
		t.ArrayDims = f.ArrayDims
		g.out.writeil(g.cDeclare(f.Name, t) + ";")
	}
	g.out.unindent()
	g.out.writeil(fmt.Sprintf("} %s;", n.Name))
}
