package codegen

import (
	"fmt"

	"github.com/cnext-lang/cnextc/ast"
)

// genBitmapDecl emits the backing typedef plus two macros per field,
// `<Name>_<field>_OFFSET` and `<Name>_<field>_WIDTH`, so handlers (package assign) and hand-written helper code can
// refer to field positions symbolically.
func genBitmapDecl(g *Generator, d ast.Decl) {
	n := d.(*ast.BitmapDecl)
	backing, fx := cBaseType(g, fmt.Sprintf("u%d", n.BackingWidth))
	g.recordEffects(fx)
	g.out.writeil(fmt.Sprintf("typedef %s %s;", backing, n.Name))
	offset := 0
	for _, f := range n.Fields {
		g.out.writeil(fmt.Sprintf("#define %s_%s_OFFSET %d", n.Name, f.Name, offset))
		g.out.writeil(fmt.Sprintf("#define %s_%s_WIDTH %d", n.Name, f.Name, f.Width))
		offset += f.Width
	}
}
