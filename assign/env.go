package assign

import (
	"github.com/cnext-lang/cnextc/ast"
	"github.com/cnext-lang/cnextc/types"
)

// Env is the narrow capability a handler needs from the rest of the
// compiler: type lookup, bitmap/register shape lookup, and an
// expression emitter. Passing this instead of a wide orchestrator
// interface follows the capability-trait split spec.md §9 calls for.
type Env struct {
	Types     *types.Registry
	Bitmaps   map[string]*ast.BitmapDecl
	Registers map[string]*ast.RegisterDecl

	// EmitExpr renders an expression as C source. Supplied by package
	// codegen (which owns expression generation) to avoid an import
	// cycle between assign and codegen.
	EmitExpr func(ast.Expr) string
}

func (e *Env) bitmapFieldOffsetWidth(bitmapName, field string) (offset, width int, ok bool) {
	b, present := e.Bitmaps[bitmapName]
	if !present {
		return 0, 0, false
	}
	off := 0
	for _, f := range b.Fields {
		if f.Name == field {
			return off, f.Width, true
		}
		off += f.Width
	}
	return 0, 0, false
}

func (e *Env) registerMember(regName, member string) (*ast.RegisterMember, bool) {
	r, present := e.Registers[regName]
	if !present {
		return nil, false
	}
	for i := range r.Members {
		if r.Members[i].Name == member {
			return &r.Members[i], true
		}
	}
	return nil, false
}
