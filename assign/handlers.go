package assign

import (
	"fmt"
	"strings"

	"github.com/cnext-lang/cnextc/ast"
	"github.com/cnext-lang/cnextc/diag"
	"github.com/cnext-lang/cnextc/effect"
	"github.com/cnext-lang/cnextc/types"
)

// Handle dispatches ctx (already classified as kind) to the handler
// for that kind's family, returning a complete C statement and the
// side effects the caller (codegen) must drain (spec.md §4.6:
// "return a complete C statement as a string").
func Handle(ctx *Context, kind Kind, env *Env) (string, *effect.Bag, error) {
	fx := &effect.Bag{}
	switch kind {
	case KindBitmapFieldWrite1, KindBitmapFieldWriteN,
		KindStructBitmapFieldWrite1, KindStructBitmapFieldWriteN,
		KindRegisterBitmapFieldWrite1, KindRegisterBitmapFieldWriteN,
		KindScopeRegisterBitmapFieldWrite:
		return handleBitmapField(ctx, kind, env, fx)

	case KindNestedArrayWrite, KindRegisterBitIndexWrite, KindRegisterBitRangeWrite, KindBitmapArrayElementWrite:
		return handleMemberSubscript(ctx, kind, env, fx)

	case KindGlobalPrefixWrite, KindThisPrefixWrite, KindGlobalRegisterBitRangeWrite, KindThisRegisterBitRangeWrite:
		return handlePrefixed(ctx, kind, env, fx)

	case KindArrayElementWrite, KindArraySliceWrite, KindScalarBitWrite, KindScalarBitRangeWrite:
		return handleSimpleSubscript(ctx, kind, env, fx)

	case KindAtomicCompound, KindClampCompound:
		return handleAtomicOverflow(ctx, kind, env, fx)

	case KindStringAssign:
		return handleString(ctx, env, fx)

	case KindMemberChainFallback:
		return handleMemberChain(ctx, env, fx)

	default:
		return handleSimpleIdentifier(ctx, env, fx)
	}
}

func cTarget(path []string) string { return strings.Join(path, ".") }

// rmwTemplate is the shared read-modify-write template for bitmap field
// writes of width > 1, except writes to wo/w1s/w1c register members,
// which use writeOnlyTemplate (spec.md §4.6): `t = (t & ~(mask <<
// off)) | ((v & mask) << off);`
func rmwTemplate(target string, offset, width int, value string) string {
	mask := (1 << uint(width)) - 1
	return fmt.Sprintf("%s = (%s & ~(0x%X << %d)) | ((%s & 0x%X) << %d);",
		target, target, mask, offset, value, mask, offset)
}

// rmwBitTemplate is the width==1 specialization: a plain bit set/clear
// using the boolean value of the RHS.
func rmwBitTemplate(target string, offset int, value string) string {
	return fmt.Sprintf("%s = (%s & ~(1u << %d)) | (((%s) ? 1u : 0u) << %d);", target, target, offset, value, offset)
}

// writeOnlyTemplate omits the read-back, for wo/w1s/w1c register
// members: it writes the new field's bits shifted into place, and every
// other bit of the written word is 0 (the hardware, not this word, owns
// the rest).
func writeOnlyTemplate(target string, offset, width int, value string) string {
	if width == 1 {
		return fmt.Sprintf("%s = ((%s) ? 1u : 0u) << %d;", target, value, offset)
	}
	mask := (1 << uint(width)) - 1
	return fmt.Sprintf("%s = ((%s) & 0x%X) << %d;", target, value, mask, offset)
}

// registerMemberAccess resolves ctx.Path's register-member access mode
// when the bitmap field being written is bound to a register member
// (REG.MEMBER.field, optionally Scope-prefixed); ok is false for plain
// or struct-held bitmaps, which carry no hardware access mode.
func registerMemberAccess(ctx *Context, env *Env) (ast.AccessMode, bool) {
	if len(ctx.Path) < 3 {
		return 0, false
	}
	holder := ctx.Path[len(ctx.Path)-2]
	regName := ctx.Path[len(ctx.Path)-3]
	m, present := env.registerMember(regName, holder)
	if !present {
		return 0, false
	}
	return m.Access, true
}

func handleBitmapField(ctx *Context, kind Kind, env *Env, fx *effect.Bag) (string, *effect.Bag, error) {
	field := ctx.Path[len(ctx.Path)-1]
	bitmapName, width, _ := bitmapOf(ctx.Path, env)
	offset, _, _ := env.bitmapFieldOffsetWidth(bitmapName, field)
	value := env.EmitExpr(ctx.Stmt.Value)

	access, isReg := registerMemberAccess(ctx, env)
	target := strings.Join(ctx.Path[:len(ctx.Path)-1], ".")
	if isReg {
		regName := ctx.Path[len(ctx.Path)-3]
		member := ctx.Path[len(ctx.Path)-2]
		target = regName + "_" + member
	}

	if isReg && access != ast.AccessRO && access != ast.AccessRW {
		if lit, isLit := ctx.Stmt.Value.(*ast.Literal); isLit && types.IsLiteralZero(lit.Text) {
			return "", fx, diag.New(diag.CodeWriteOnlyZero,
				fmt.Sprintf("cannot assign 0 to write-only bitmap field %q (%s access)", field, access),
				ctx.Stmt.Span())
		}
		return writeOnlyTemplate(target, offset, width, value), fx, nil
	}

	switch kind {
	case KindBitmapFieldWrite1, KindStructBitmapFieldWrite1, KindRegisterBitmapFieldWrite1:
		return rmwBitTemplate(target, offset, value), fx, nil
	default:
		return rmwTemplate(target, offset, width, value), fx, nil
	}
}

func handleMemberSubscript(ctx *Context, kind Kind, env *Env, fx *effect.Bag) (string, *effect.Bag, error) {
	value := env.EmitExpr(ctx.Stmt.Value)
	switch kind {
	case KindRegisterBitIndexWrite:
		target := ctx.Path[0] + "_" + ctx.Path[1]
		offsetExpr := env.EmitExpr(ctx.Subscripts[0])
		return fmt.Sprintf("%s = (%s & ~(1u << (%s))) | (((%s) ? 1u : 0u) << (%s));",
			target, target, offsetExpr, value, offsetExpr), fx, nil
	case KindRegisterBitRangeWrite:
		target := ctx.Path[0] + "_" + ctx.Path[1]
		start := env.EmitExpr(ctx.Subscripts[0])
		width := env.EmitExpr(ctx.Subscripts[1])
		return fmt.Sprintf("%s = (%s & ~((((1u << (%s)) - 1u)) << (%s))) | (((%s) & (((1u << (%s)) - 1u))) << (%s));",
			target, target, width, start, value, width, start), fx, nil
	default:
		idxExprs := make([]string, len(ctx.Subscripts))
		for i, s := range ctx.Subscripts {
			idxExprs[i] = fmt.Sprintf("[%s]", env.EmitExpr(s))
		}
		return fmt.Sprintf("%s%s = %s;", cTarget(ctx.Path), strings.Join(idxExprs, ""), value), fx, nil
	}
}

func handlePrefixed(ctx *Context, kind Kind, env *Env, fx *effect.Bag) (string, *effect.Bag, error) {
	value := env.EmitExpr(ctx.Stmt.Value)
	path := ctx.Path
	if ctx.HasThis {
		path = path[1:] // `this` drops from the C name; codegen has already put the scope-mangled (or static-local) name after it
	}
	target := strings.Join(path, "_")
	if kind == KindGlobalRegisterBitRangeWrite || kind == KindThisRegisterBitRangeWrite {
		start := env.EmitExpr(ctx.Subscripts[0])
		width := env.EmitExpr(ctx.Subscripts[1])
		return fmt.Sprintf("%s = (%s & ~((((1u << (%s)) - 1u)) << (%s))) | (((%s) & (((1u << (%s)) - 1u))) << (%s));",
			target, target, width, start, value, width, start), fx, nil
	}
	return fmt.Sprintf("%s %s %s;", target, ctx.COp, value), fx, nil
}

func handleSimpleSubscript(ctx *Context, kind Kind, env *Env, fx *effect.Bag) (string, *effect.Bag, error) {
	value := env.EmitExpr(ctx.Stmt.Value)
	target := ctx.Path[0]
	switch kind {
	case KindArrayElementWrite:
		return fmt.Sprintf("%s[%s] %s %s;", target, env.EmitExpr(ctx.Subscripts[0]), ctx.COp, value), fx, nil
	case KindArraySliceWrite:
		fx.Add(effect.Include("string.h"))
		fx.Add(effect.NeedsString())
		off := env.EmitExpr(ctx.Subscripts[0])
		width := env.EmitExpr(ctx.Subscripts[1])
		return fmt.Sprintf("memcpy(&%s[%s], %s, %s);", target, off, value, width), fx, nil
	case KindScalarBitRangeWrite:
		start := env.EmitExpr(ctx.Subscripts[0])
		width := env.EmitExpr(ctx.Subscripts[1])
		return fmt.Sprintf("%s = (%s & ~((((1u << (%s)) - 1u)) << (%s))) | (((%s) & (((1u << (%s)) - 1u))) << (%s));",
			target, target, width, start, value, width, start), fx, nil
	default: // KindScalarBitWrite
		bit := env.EmitExpr(ctx.Subscripts[0])
		return fmt.Sprintf("%s = (%s & ~(1u << (%s))) | (((%s) ? 1u : 0u) << (%s));", target, target, bit, value, bit), fx, nil
	}
}

// clampOpName maps a source compound operator to the arithmetic verb
// used in the emitted `cnx_clamp_<op>_<type>` helper name.
var clampOpName = map[string]string{
	"+<-": "add", "-<-": "sub", "*<-": "mul", "/<-": "div",
}

func handleAtomicOverflow(ctx *Context, kind Kind, env *Env, fx *effect.Bag) (string, *effect.Bag, error) {
	target := ctx.Path[0]
	value := env.EmitExpr(ctx.Stmt.Value)
	if kind == KindAtomicCompound {
		return fmt.Sprintf("atomic_fetch_%s(&%s, %s);", atomicVerb(ctx.SourceOp), target, value), fx, nil
	}
	op := clampOpName[ctx.SourceOp]
	info, _ := env.Types.Lookup(target)
	fx.Add(effect.Helper(op, info.BaseName))
	return fmt.Sprintf("%s = cnx_clamp_%s_%s(%s, %s);", target, op, info.BaseName, target, value), fx, nil
}

func atomicVerb(op string) string {
	switch op {
	case "+<-":
		return "add"
	case "-<-":
		return "sub"
	case "&<-":
		return "and"
	case "|<-":
		return "or"
	case "^<-":
		return "xor"
	default:
		return "add"
	}
}

func handleString(ctx *Context, env *Env, fx *effect.Bag) (string, *effect.Bag, error) {
	fx.Add(effect.Include("string.h"))
	fx.Add(effect.NeedsString())
	target := ctx.Path[0]
	info, _ := env.Types.Lookup(target)
	value := env.EmitExpr(ctx.Stmt.Value)
	return fmt.Sprintf("strncpy(%s, %s, %d); %s[%d] = '\\0';", target, value, info.StringCap, target, info.StringCap), fx, nil
}

func handleMemberChain(ctx *Context, env *Env, fx *effect.Bag) (string, *effect.Bag, error) {
	return fmt.Sprintf("%s %s %s;", cTarget(ctx.Path), ctx.COp, env.EmitExpr(ctx.Stmt.Value)), fx, nil
}

func handleSimpleIdentifier(ctx *Context, env *Env, fx *effect.Bag) (string, *effect.Bag, error) {
	return fmt.Sprintf("%s %s %s;", ctx.Path[0], ctx.COp, env.EmitExpr(ctx.Stmt.Value)), fx, nil
}
