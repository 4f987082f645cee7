package codegen

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cnext-lang/cnextc/ast"
)

// includeGuardName derives a `#ifndef` guard from the emitted header's
// path (spec.md §6: "include guards are derived from the unit's
// path"), uppercased and sanitized to a valid C identifier.
func includeGuardName(headerPath string) string {
	base := filepath.Base(headerPath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	var b strings.Builder
	for _, r := range strings.ToUpper(base) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	b.WriteString("_H")
	return b.String()
}

// EmitExportedHeader renders the optional companion `.h` file spec.md
// §6 describes: exported declarations only, under an include guard
// derived from headerPath, reusing g's type-name rendering so struct
// keyword / width choices match the `.c`/`.cpp` body exactly.
func EmitExportedHeader(unit *ast.Unit, g *Generator, headerPath string) string {
	guard := includeGuardName(headerPath)
	out := newOutputWriter("  ")
	out.writeil(bannerSentinel)
	out.writeil(fmt.Sprintf("#ifndef %s", guard))
	out.writeil(fmt.Sprintf("#define %s", guard))
	out.writel("")
	out.writeil("#include <stdint.h>")
	out.writeil("#include <stdbool.h>")
	out.writel("")

	for _, d := range unit.Decls {
		switch n := d.(type) {
		case *ast.FunctionDecl:
			if n.Visibility == ast.Public {
				writeFunctionPrototype(g, out, n)
			}
		case *ast.StructDecl:
			if n.Visibility == ast.Public {
				writeStructForward(g, out, n)
			}
		case *ast.EnumDecl:
			if n.Visibility == ast.Public {
				writeEnumForward(g, out, n)
			}
		case *ast.ScopeDecl:
			for _, m := range n.Members {
				if m.Visibility != ast.Public {
					continue
				}
				if m.Func != nil {
					writeFunctionPrototype(g, out, m.Func)
				}
				if m.Struct != nil {
					writeStructForward(g, out, m.Struct)
				}
				if m.Enum != nil {
					writeEnumForward(g, out, m.Enum)
				}
			}
		}
	}

	out.writel("")
	out.writeil(fmt.Sprintf("#endif /* %s */", guard))
	return out.String()
}

func writeFunctionPrototype(g *Generator, out *outputWriter, n *ast.FunctionDecl) {
	retType, _ := cBaseType(g, n.ReturnType.Name)
	params := make([]string, len(n.Params))
	if len(n.Params) == 0 {
		params = []string{"void"}
	}
	for i, p := range n.Params {
		byRef := paramIsByRef(g, p.Type)
		decl := g.cDeclare(p.Name, p.Type)
		if byRef {
			if !g.ModifiedParams[n.Name+"."+p.Name] {
				decl = "const " + decl
			}
			decl = strings.Replace(decl, p.Name, "*"+p.Name, 1)
		}
		params[i] = decl
	}
	out.writeil(fmt.Sprintf("%s %s(%s);", retType, mangledFuncName(n.Scope, n.Name), strings.Join(params, ", ")))
}

func writeStructForward(g *Generator, out *outputWriter, n *ast.StructDecl) {
	out.writeil(fmt.Sprintf("struct %s;", n.Name))
}

func writeEnumForward(g *Generator, out *outputWriter, n *ast.EnumDecl) {
	width := n.BitWidth
	if width == 0 {
		width = 32
	}
	backing, _ := cBaseType(g, fmt.Sprintf("u%d", width))
	out.writeil(fmt.Sprintf("typedef %s %s;", backing, n.Name))
}
