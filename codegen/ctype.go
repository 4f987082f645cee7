package codegen

import (
	"fmt"
	"strings"

	"github.com/cnext-lang/cnextc/ast"
	"github.com/cnext-lang/cnextc/effect"
)

// cBaseType maps a fixed-width primitive name to its <stdint.h> spelling.
// Declared struct/enum/bitmap names pass through unchanged, except that
// names the symbol table marks NeedsStructKeyword get a `struct ` prefix.
func cBaseType(g *Generator, name string) (string, *effect.Bag) {
	fx := &effect.Bag{}
	switch name {
	case "u8":
		fx.Add(effect.Include("stdint.h"))
		return "uint8_t", fx
	case "u16":
		fx.Add(effect.Include("stdint.h"))
		return "uint16_t", fx
	case "u32":
		fx.Add(effect.Include("stdint.h"))
		return "uint32_t", fx
	case "u64":
		fx.Add(effect.Include("stdint.h"))
		return "uint64_t", fx
	case "i8":
		fx.Add(effect.Include("stdint.h"))
		return "int8_t", fx
	case "i16":
		fx.Add(effect.Include("stdint.h"))
		return "int16_t", fx
	case "i32":
		fx.Add(effect.Include("stdint.h"))
		return "int32_t", fx
	case "i64":
		fx.Add(effect.Include("stdint.h"))
		return "int64_t", fx
	case "f32":
		return "float", fx
	case "f64":
		return "double", fx
	case "bool":
		fx.Add(effect.Include("stdbool.h"))
		return "bool", fx
	case "string":
		fx.Add(effect.NeedsString())
		return "char", fx
	default:
		if g.Table.NeedsStructKeyword[name] {
			return "struct " + name, fx
		}
		return name, fx
	}
}

// cTypeAndSuffix renders a TypeRef's base type and the declarator
// suffix (array dimensions, bounded-string capacity) separately, since
// C declares arrays as `type name[dim]` rather than `type[dim] name`.
func cTypeAndSuffix(g *Generator, t ast.TypeRef) (base, suffix string, fx *effect.Bag) {
	base, fx = cBaseType(g, t.Name)
	if t.IsAtomic {
		fx.Add(effect.Include("stdatomic.h"))
		base = "_Atomic " + base
	}
	if t.IsConst {
		base = "const " + base
	}
	if t.Name == "string" {
		cap := t.StringCap
		if cap == 0 {
			cap = 1
		}
		suffix = fmt.Sprintf("[%d]", cap+1) // +1 reserves the NUL terminator
		return base, suffix, fx
	}
	if len(t.ArrayDims) > 0 {
		dims := make([]string, len(t.ArrayDims))
		for i, d := range t.ArrayDims {
			dims[i] = fmt.Sprintf("[%d]", d)
		}
		suffix = strings.Join(dims, "")
	}
	return base, suffix, fx
}

// cDeclare renders a complete `type name[suffix]` declarator for one
// typed name, merging the effects into g.
func (g *Generator) cDeclare(name string, t ast.TypeRef) string {
	base, suffix, fx := cTypeAndSuffix(g, t)
	g.recordEffects(fx)
	return fmt.Sprintf("%s %s%s", base, name, suffix)
}
