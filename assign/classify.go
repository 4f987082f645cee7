package assign

import (
	"github.com/cnext-lang/cnextc/ast"
	"github.com/cnext-lang/cnextc/types"
)

// Classify selects one Kind for ctx, trying the eight priority
// families of spec.md §4.6 in order; the first matching rule wins.
func Classify(ctx *Context, env *Env) Kind {
	if k, ok := classifyBitmapFamily(ctx, env); ok {
		return k
	}
	if k, ok := classifySubscriptFamily(ctx, env); ok {
		return k
	}
	if k, ok := classifyPrefixFamily(ctx, env); ok {
		return k
	}
	if k, ok := classifySimpleSubscriptFamily(ctx, env); ok {
		return k
	}
	if k, ok := classifyAtomicOverflowFamily(ctx, env); ok {
		return k
	}
	if isStringTarget(ctx, env) {
		return KindStringAssign
	}
	if len(ctx.Path) > 1 {
		return KindMemberChainFallback
	}
	return KindSimpleIdentifier
}

// bitmapOf, when path's last-but-one segment names a bitmap
// (either directly, or as a register member bound to one), returns
// the bitmap's name and the field width for the final path segment.
func bitmapOf(path []string, env *Env) (bitmapName string, width int, ok bool) {
	if len(path) < 2 {
		return "", 0, false
	}
	holder := path[len(path)-2]
	field := path[len(path)-1]

	if info, present := env.Types.Lookup(holder); present && info.IsBitmap {
		if _, w, has := env.bitmapFieldOffsetWidth(info.BaseName, field); has {
			return info.BaseName, w, true
		}
	}
	// REG.MEMBER.field or Scope.REG.MEMBER.field: holder is a register
	// member name bound to a bitmap.
	if len(path) >= 3 {
		regName := path[len(path)-3]
		if m, present := env.registerMember(regName, holder); present && m.BitmapName != "" {
			if _, w, has := env.bitmapFieldOffsetWidth(m.BitmapName, field); has {
				return m.BitmapName, w, true
			}
		}
	}
	return "", 0, false
}

func classifyBitmapFamily(ctx *Context, env *Env) (Kind, bool) {
	bitmapName, width, ok := bitmapOf(ctx.Path, env)
	if !ok {
		return 0, false
	}
	isRegister := false
	if len(ctx.Path) >= 3 {
		holder := ctx.Path[len(ctx.Path)-2]
		regName := ctx.Path[len(ctx.Path)-3]
		if _, present := env.registerMember(regName, holder); present {
			isRegister = true
		}
	}
	isStruct := false
	if info, present := env.Types.Lookup(ctx.Path[0]); present && info.IsStruct {
		isStruct = true
	}
	_ = bitmapName
	switch {
	case len(ctx.Path) >= 4 && isRegister:
		return KindScopeRegisterBitmapFieldWrite, true
	case isRegister:
		if width == 1 {
			return KindRegisterBitmapFieldWrite1, true
		}
		return KindRegisterBitmapFieldWriteN, true
	case isStruct && len(ctx.Path) >= 3:
		if width == 1 {
			return KindStructBitmapFieldWrite1, true
		}
		return KindStructBitmapFieldWriteN, true
	default:
		if width == 1 {
			return KindBitmapFieldWrite1, true
		}
		return KindBitmapFieldWriteN, true
	}
}

func classifySubscriptFamily(ctx *Context, env *Env) (Kind, bool) {
	if len(ctx.Subscripts) == 0 {
		return 0, false
	}
	if len(ctx.Path) >= 3 {
		regName := ctx.Path[len(ctx.Path)-2]
		if root, present := env.registerMember(ctx.Path[len(ctx.Path)-3], regName); present {
			_ = root
		}
	}
	if len(ctx.Path) >= 2 {
		if _, present := env.registerMember(ctx.Path[0], ctx.Path[1]); present {
			if len(ctx.Subscripts) == 2 {
				return KindRegisterBitRangeWrite, true
			}
			return KindRegisterBitIndexWrite, true
		}
	}
	if len(ctx.Subscripts) >= 2 && len(ctx.Path) == 1 {
		// arr[i][j] is modeled as two chained IndexExprs collapsed into
		// Subscripts by walkTarget; disambiguate from a single bit-range
		// slice by checking the target's array-ness.
		if info, present := env.Types.Lookup(ctx.Path[0]); present && info.IsArray && len(info.ArrayDims) > 1 {
			return KindNestedArrayWrite, true
		}
	}
	if info, present := env.Types.Lookup(ctx.Path[0]); present && info.IsBitmap && info.IsArray {
		return KindBitmapArrayElementWrite, true
	}
	return 0, false
}

func classifyPrefixFamily(ctx *Context, env *Env) (Kind, bool) {
	if !ctx.HasThis && !ctx.HasGlobal {
		return 0, false
	}
	if len(ctx.Subscripts) == 2 {
		if ctx.HasThis {
			return KindThisRegisterBitRangeWrite, true
		}
		return KindGlobalRegisterBitRangeWrite, true
	}
	if len(ctx.Path) > 1 {
		if ctx.HasThis {
			return KindThisPrefixWrite, true
		}
		return KindGlobalPrefixWrite, true
	}
	return 0, false
}

func classifySimpleSubscriptFamily(ctx *Context, env *Env) (Kind, bool) {
	if len(ctx.Subscripts) == 0 {
		return 0, false
	}
	info, present := env.Types.Lookup(ctx.Path[0])
	if present && info.IsArray {
		if len(ctx.Subscripts) == 2 {
			return KindArraySliceWrite, true
		}
		return KindArrayElementWrite, true
	}
	if len(ctx.Subscripts) == 2 {
		return KindScalarBitRangeWrite, true
	}
	return KindScalarBitWrite, true
}

func classifyAtomicOverflowFamily(ctx *Context, env *Env) (Kind, bool) {
	if !ctx.IsCompound || !ctx.IsSimpleIdent {
		return 0, false
	}
	info, present := env.Types.Lookup(ctx.Path[0])
	if !present {
		return 0, false
	}
	if info.IsAtomic {
		return KindAtomicCompound, true
	}
	if info.Overflow == ast.OverflowClamp && types.IsInteger(info) {
		return KindClampCompound, true
	}
	return 0, false
}

func isStringTarget(ctx *Context, env *Env) bool {
	info, present := env.Types.Lookup(ctx.Path[0])
	return present && types.IsString(info)
}
