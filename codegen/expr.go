package codegen

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/cnext-lang/cnextc/ast"
	"github.com/cnext-lang/cnextc/effect"
	"github.com/cnext-lang/cnextc/symtab"
	"github.com/cnext-lang/cnextc/types"
)

func registerExprGenerators(r *Registry) {
	r.RegisterExpr("literal", genLiteral)
	r.RegisterExpr("identifier", genIdentifier)
	r.RegisterExpr("binary", genBinary)
	r.RegisterExpr("unary", genUnary)
	r.RegisterExpr("call", genCall)
	r.RegisterExpr("member", genMember)
	r.RegisterExpr("index", genIndex)
	r.RegisterExpr("slice", genSlice)
}

// literalSuffixTransform implements spec.md §4.7's table: `<n>u64 ->
// <n>ULL`, `<n>i64 -> <n>LL`, u8/u16/u32/i8/i16/i32 suffixes stripped,
// f32 -> f, f64 -> no suffix. `true`/`false` trigger a stdbool.h
// include.
func literalSuffixTransform(text string) (string, *effect.Bag) {
	fx := &effect.Bag{}
	lit := types.GetLiteralType(text)
	switch lit.TypeName {
	case "bool":
		fx.Add(effect.Include("stdbool.h"))
		return lit.Base, fx
	case "u64":
		return lit.Base + "ULL", fx
	case "i64":
		return lit.Base + "LL", fx
	case "u8", "u16", "u32", "i8", "i16", "i32":
		return lit.Base, fx
	case "f32":
		return lit.Base + "f", fx
	case "f64":
		return lit.Base, fx
	default:
		return lit.Base, fx
	}
}

func genLiteral(g *Generator, e ast.Expr) (string, *effect.Bag) {
	lit := e.(*ast.Literal)
	code, fx := literalSuffixTransform(lit.Text)
	return code, fx
}

func genIdentifier(g *Generator, e ast.Expr) (string, *effect.Bag) {
	id := e.(*ast.Identifier)
	if id.Name == "this" {
		return "this", &effect.Bag{}
	}
	if text, ok := g.inlineConst(id.Name); ok {
		code, fx := literalSuffixTransform(text)
		return code, fx
	}
	return id.Name, &effect.Bag{}
}

// foldableOp reports whether op participates in compile-time constant
// folding (additive/multiplicative chains, spec.md §4.7).
func foldableOp(op string) bool {
	switch op {
	case "+", "-", "*", "/", "%":
		return true
	default:
		return false
	}
}

// foldConstInt attempts to fold e into an arbitrary-precision integer
// constant. Division by zero aborts folding (the caller falls back to
// emitted code, deferring the diagnostic to the division-by-zero
// analyzer which already ran before codegen).
func foldConstInt(e ast.Expr) (*big.Int, bool) {
	switch n := e.(type) {
	case *ast.Literal:
		if n.LitKind != ast.LiteralInt {
			return nil, false
		}
		lit := types.GetLiteralType(n.Text)
		if lit.IntValue == nil {
			return nil, false
		}
		v := lit.IntValue
		if lit.Negative {
			v = new(big.Int).Neg(v)
		}
		return v, true
	case *ast.UnaryExpr:
		if n.Op != "-" {
			return nil, false
		}
		v, ok := foldConstInt(n.Operand)
		if !ok {
			return nil, false
		}
		return new(big.Int).Neg(v), true
	case *ast.BinaryExpr:
		if !foldableOp(n.Op) {
			return nil, false
		}
		l, ok := foldConstInt(n.Left)
		if !ok {
			return nil, false
		}
		r, ok := foldConstInt(n.Right)
		if !ok {
			return nil, false
		}
		switch n.Op {
		case "+":
			return new(big.Int).Add(l, r), true
		case "-":
			return new(big.Int).Sub(l, r), true
		case "*":
			return new(big.Int).Mul(l, r), true
		case "/":
			if r.Sign() == 0 {
				return nil, false
			}
			return new(big.Int).Quo(l, r), true
		case "%":
			if r.Sign() == 0 {
				return nil, false
			}
			return new(big.Int).Rem(l, r), true
		}
	}
	return nil, false
}

func genBinary(g *Generator, e ast.Expr) (string, *effect.Bag) {
	n := e.(*ast.BinaryExpr)
	fx := &effect.Bag{}

	if foldableOp(n.Op) {
		if v, ok := foldConstInt(e); ok {
			return v.String(), fx
		}
	}

	// Equality lowering: source `=` becomes C `==`; a bounded-string
	// identifier on either side lowers to strcmp. Enum operands are
	// compared with plain `==`/`!=`; no check is made here that both
	// sides are of the same enum type.
	if n.Op == "=" || n.Op == "!=" {
		return genEquality(g, n)
	}

	left, lfx := g.EmitExpr(n.Left)
	fx.Merge(lfx)
	right, rfx := g.EmitExpr(n.Right)
	fx.Merge(rfx)

	if (n.Op == "<<" || n.Op == ">>") && shiftOutOfWidth(g, n) {
		return fmt.Sprintf("(%s %s %s) /* shift exceeds operand width */", left, n.Op, right), fx
	}

	return fmt.Sprintf("(%s %s %s)", left, n.Op, right), fx
}

func genEquality(g *Generator, n *ast.BinaryExpr) (string, *effect.Bag) {
	fx := &effect.Bag{}
	leftStr := isStringExpr(g, n.Left)
	rightStr := isStringExpr(g, n.Right)
	if leftStr || rightStr {
		fx.Add(effect.Include("string.h"))
		left, lfx := g.EmitExpr(n.Left)
		fx.Merge(lfx)
		right, rfx := g.EmitExpr(n.Right)
		fx.Merge(rfx)
		cmp := "== 0"
		if n.Op == "!=" {
			cmp = "!= 0"
		}
		return fmt.Sprintf("(strcmp(%s, %s) %s)", left, right, cmp), fx
	}
	left, lfx := g.EmitExpr(n.Left)
	fx.Merge(lfx)
	right, rfx := g.EmitExpr(n.Right)
	fx.Merge(rfx)
	op := "=="
	if n.Op == "!=" {
		op = "!="
	}
	return fmt.Sprintf("(%s %s %s)", left, op, right), fx
}

func isStringExpr(g *Generator, e ast.Expr) bool {
	id, ok := e.(*ast.Identifier)
	if !ok {
		return false
	}
	info, present := g.Types.Lookup(id.Name)
	return present && types.IsString(info)
}

// shiftOutOfWidth checks a literal right operand against the left
// operand's declared width, when known (spec.md §4.7: "Shift
// validation"). The analyzer suite already ran by the time codegen
// executes, so this only annotates the emitted line; it never aborts.
func shiftOutOfWidth(g *Generator, n *ast.BinaryExpr) bool {
	idLeft, ok := n.Left.(*ast.Identifier)
	if !ok {
		return false
	}
	info, present := g.Types.Lookup(idLeft.Name)
	if !present || info.BitWidth == 0 {
		return false
	}
	litRight, ok := n.Right.(*ast.Literal)
	if !ok || litRight.LitKind != ast.LiteralInt {
		return false
	}
	lit := types.GetLiteralType(litRight.Text)
	if lit.IntValue == nil {
		return false
	}
	return lit.IntValue.Int64() >= int64(info.BitWidth)
}

func genUnary(g *Generator, e ast.Expr) (string, *effect.Bag) {
	n := e.(*ast.UnaryExpr)
	operand, fx := g.EmitExpr(n.Operand)
	return fmt.Sprintf("(%s%s)", n.Op, operand), fx
}

// smallPrimitive is true for types spec.md §4.7 says never need
// pass-by-reference: u8/u16/i8/i16/bool.
func smallPrimitive(name string) bool {
	switch name {
	case "u8", "u16", "i8", "i16", "bool":
		return true
	default:
		return false
	}
}

func genCall(g *Generator, e ast.Expr) (string, *effect.Bag) {
	n := e.(*ast.CallExpr)
	fx := &effect.Bag{}

	if n.Callee == "safe_div" || n.Callee == "safe_mod" {
		return genSafeDivCall(g, n, fx)
	}

	overloads := g.Table.GetOverloads(n.Callee)
	var params []struct {
		Name, Type string
	}
	for _, s := range overloads {
		for _, p := range s.Params {
			params = append(params, struct{ Name, Type string }{p.Name, p.TypeName})
		}
		break
	}

	args := make([]string, len(n.Args))
	for i, a := range n.Args {
		code, afx := g.EmitExpr(a)
		fx.Merge(afx)

		if i < len(params) {
			pType := params[i].Type
			isFloat := pType == "f32" || pType == "f64"
			isEnum := g.isEnumTypeName(pType)
			passByRef := !isFloat && !isEnum && !smallPrimitive(pType)
			if passByRef {
				if _, isIdent := a.(*ast.Identifier); !isIdent {
					// rvalue argument: materialize into a temp (C++) or a
					// compound literal (C), per spec.md §4.7.
					if g.CppMode {
						tmp := g.newTemp()
						g.hoistTemp(fmt.Sprintf("%s %s = %s;", pType, tmp, code))
						code = "&" + tmp
					} else {
						code = fmt.Sprintf("&(%s){%s}", pType, code)
					}
				} else {
					code = "&" + code
				}
			}
		}
		args[i] = code
	}
	return fmt.Sprintf("%s(%s)", n.Callee, strings.Join(args, ", ")), fx
}

func (g *Generator) isEnumTypeName(name string) bool {
	for _, s := range g.Table.GetByKind(symtab.KindEnum) {
		if s.Name == name {
			return true
		}
	}
	return false
}

func genSafeDivCall(g *Generator, n *ast.CallExpr, fx *effect.Bag) (string, *effect.Bag) {
	if len(n.Args) < 2 {
		return "/* malformed safe_div/safe_mod call */", fx
	}
	num, nfx := g.EmitExpr(n.Args[0])
	fx.Merge(nfx)
	div, dfx := g.EmitExpr(n.Args[1])
	fx.Merge(dfx)
	dflt := "0"
	if len(n.Args) > 2 {
		var ddfx *effect.Bag
		dflt, ddfx = g.EmitExpr(n.Args[2])
		fx.Merge(ddfx)
	}
	op := "div"
	if n.Callee == "safe_mod" {
		op = "mod"
	}
	typ := "i32"
	if idNum, ok := n.Args[0].(*ast.Identifier); ok {
		if info, present := g.Types.Lookup(idNum.Name); present {
			typ = info.BaseName
		}
	}
	fx.Add(effect.SafeDiv(op, typ))
	tmp := g.newTemp()
	g.hoistTemp(fmt.Sprintf("%s %s;", typ, tmp))
	g.hoistTemp(fmt.Sprintf("cnx_safe_%s_%s(&%s, %s, %s, %s);", op, typ, tmp, num, div, dflt))
	return tmp, fx
}

func genMember(g *Generator, e ast.Expr) (string, *effect.Bag) {
	n := e.(*ast.MemberExpr)
	if id, ok := n.Target.(*ast.Identifier); ok && id.Name == "this" {
		fx := &effect.Bag{}
		if text, ok := g.inlineConst(n.Field); ok {
			return literalSuffixTransform(text)
		}
		if isStaticLocal(g, n.Field) {
			return n.Field, fx
		}
		return mangledFuncName(g.CurrentScope, n.Field), fx
	}
	target, fx := g.EmitExpr(n.Target)
	return fmt.Sprintf("%s.%s", target, n.Field), fx
}

// isStaticLocal reports whether scope field belongs to the current
// function's promoted static-local set (spec.md §3: single-use scope
// vars become a `static` local instead of a file-scope global).
func isStaticLocal(g *Generator, field string) bool {
	for _, v := range g.PendingStatics[g.CurrentScope+"."+g.CurrentFunc] {
		if v.Name == field {
			return true
		}
	}
	return false
}

func genIndex(g *Generator, e ast.Expr) (string, *effect.Bag) {
	n := e.(*ast.IndexExpr)
	target, fx := g.EmitExpr(n.Target)
	idx, ifx := g.EmitExpr(n.Index)
	fx.Merge(ifx)
	return fmt.Sprintf("%s[%s]", target, idx), fx
}

func genSlice(g *Generator, e ast.Expr) (string, *effect.Bag) {
	n := e.(*ast.SliceExpr)
	target, fx := g.EmitExpr(n.Target)
	start, sfx := g.EmitExpr(n.Start)
	fx.Merge(sfx)
	width, wfx := g.EmitExpr(n.Width)
	fx.Merge(wfx)
	// Bit-range read: `(target >> start) & ((1 << width) - 1)`.
	return fmt.Sprintf("((%s >> (%s)) & ((1u << (%s)) - 1u))", target, start, width), fx
}
