package analyze

import (
	"github.com/cnext-lang/cnextc/ast"
	"github.com/cnext-lang/cnextc/diag"
	"github.com/cnext-lang/cnextc/symtab"
)

// StructField rejects fields named `length`, reserved for the
// bounded-container length accessor the code generator synthesizes
// (spec.md §3 "Struct"; §4.4 #2).
func StructField(unit *ast.Unit, tab *symtab.Table, src string) *diag.Bag {
	bag := &diag.Bag{}
	check := func(s *ast.StructDecl) {
		for _, f := range s.Fields {
			if f.Name == "length" {
				bag.Addf(diag.CodeReservedField, "field name `length` is reserved for bounded containers", f.Sp)
			}
		}
	}
	for _, d := range unit.Decls {
		switch n := d.(type) {
		case *ast.StructDecl:
			check(n)
		case *ast.ScopeDecl:
			for _, m := range n.Members {
				if m.Struct != nil {
					check(m.Struct)
				}
			}
		}
	}
	return bag
}
