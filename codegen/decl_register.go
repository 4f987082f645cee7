package codegen

import (
	"fmt"

	"github.com/cnext-lang/cnextc/ast"
	"github.com/cnext-lang/cnextc/effect"
)

// genRegisterDecl emits one `#define` per register member, each
// casting the member's own base+offset address to a volatile pointer
// of the member's declared width (spec.md §3/§4: member access must
// not go through a shared struct overlay, since ro/wo/w1c/w1s members
// each own a distinct hardware address and width). `REG.MEMBER` (the
// Assignment Classifier's member-chain form) expands to the
// `REG_MEMBER` macro defined here.
func genRegisterDecl(g *Generator, d ast.Decl) {
	n := d.(*ast.RegisterDecl)
	for _, m := range n.Members {
		cType, fx := cBaseType(g, m.Type.Name)
		g.recordEffects(fx)
		addr := n.Address + uint64(m.Offset)
		macro := fmt.Sprintf("%s_%s", n.Name, m.Name)
		g.out.writeil(fmt.Sprintf("// %s access", m.Access))
		g.out.writeil(fmt.Sprintf("#define %s (*(volatile %s *)(0x%XUL))", macro, cType, addr))
	}
	g.recordEffect(effect.Include("stdint.h"))
}
