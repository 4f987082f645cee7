package codegen

import (
	"fmt"
	"sort"

	"github.com/cnext-lang/cnextc/effect"
)

// helperKey identifies one generated helper function by its arithmetic
// verb and operand type, e.g. ("add", "u8").
type helperKey struct{ op, typ string }

func (k helperKey) String() string { return k.op + "_" + k.typ }

// SortIncludes returns headers deduplicated and sorted, so the same
// unit always emits the same `#include` block regardless of visit
// order (spec.md §4.8: "deterministic sorted output").
func SortIncludes(headers []string) []string {
	seen := make(map[string]bool, len(headers))
	var out []string
	for _, h := range headers {
		if h == "" || seen[h] {
			continue
		}
		seen[h] = true
		out = append(out, h)
	}
	sort.Strings(out)
	return out
}

// SortHelperKeys returns a deterministic, sorted "op_type" key list
// from a set of (op, type) pairs.
func SortHelperKeys(pairs [][2]string) []string {
	seen := make(map[string]bool, len(pairs))
	var out []string
	for _, p := range pairs {
		k := helperKey{p[0], p[1]}.String()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// typeBounds gives the clamp helper's saturation bounds as C literal
// expressions, for the fixed-width integer types.
func typeBounds(typ string) (min, max string) {
	switch typ {
	case "u8":
		return "0", "UINT8_MAX"
	case "u16":
		return "0", "UINT16_MAX"
	case "u32":
		return "0", "UINT32_MAX"
	case "u64":
		return "0", "UINT64_MAX"
	case "i8":
		return "INT8_MIN", "INT8_MAX"
	case "i16":
		return "INT16_MIN", "INT16_MAX"
	case "i32":
		return "INT32_MIN", "INT32_MAX"
	case "i64":
		return "INT64_MIN", "INT64_MAX"
	default:
		return "0", "0"
	}
}

var clampSymbol = map[string]string{"add": "+", "sub": "-", "mul": "*", "div": "/"}

var builtinOverflowName = map[string]string{"add": "add", "sub": "sub", "mul": "mul"}

func isUnsignedType(typ string) bool {
	switch typ {
	case "u8", "u16", "u32", "u64":
		return true
	default:
		return false
	}
}

// unsignedSaturationBound reports which bound a saturating unsigned
// op clamps to on overflow: add/mul overshoot toward max, sub
// underflows toward the zero minimum.
func unsignedSaturationBound(op string) string {
	if op == "sub" {
		return "min"
	}
	return "max"
}

// emitClampHelper writes one `cnx_clamp_<op>_<type>` function: in
// release build mode it saturates at the type's bounds; in debug mode
// it aborts instead (spec.md §4.8). The overflow-detection strategy is
// picked per type class, per spec.md §4.8: unsigned add/sub/mul uses
// `__builtin_{add,sub,mul}_overflow` directly (the builtin already
// computes the exact result at the operand's own width, so no wider
// type is needed to avoid UB); signed types narrower than 64 bits
// promote to `int64_t` and compare against the narrow type's limits
// (safe because the widest product/sum of a 32-bit or smaller signed
// operand pair always fits in 64 bits); 64-bit signed has no portable
// wider type available and instead uses pre-division range-checking
// expressions that never evaluate the operator where it could
// overflow.
func emitClampHelper(out *outputWriter, op, typ, buildMode string) {
	cType, _ := cBaseTypeName(typ)
	min, max := typeBounds(typ)
	sym := clampSymbol[op]
	out.writeil(fmt.Sprintf("static inline %s cnx_clamp_%s_%s(%s a, %s b) {", cType, op, typ, cType, cType))
	out.indent()
	switch {
	case op == "div":
		emitClampDiv(out, typ, cType, min, max, buildMode)
	case isUnsignedType(typ):
		emitClampUnsigned(out, op, cType, min, max, buildMode)
	case typ == "i64":
		emitClampSigned64(out, op, cType, min, max, buildMode)
	default:
		emitClampSignedPromoted(out, op, cType, min, max, sym, buildMode)
	}
	out.unindent()
	out.writeil("}")
}

// emitClampUnsigned handles u8/u16/u32/u64 add/sub/mul: the builtin
// computes the exact result at the operand's own width and reports
// overflow, so `cnx_clamp_add_u64(UINT64_MAX, 1)` correctly saturates
// instead of the `(long long)` cast wrapping to -1 and passing the
// old bounds check.
func emitClampUnsigned(out *outputWriter, op, cType, min, max, buildMode string) {
	builtin := builtinOverflowName[op]
	bound := max
	if unsignedSaturationBound(op) == "min" {
		bound = min
	}
	out.writeil(fmt.Sprintf("%s r;", cType))
	out.writeil(fmt.Sprintf("if (__builtin_%s_overflow(a, b, &r)) {", builtin))
	out.indent()
	if buildMode == "debug" {
		out.writeil(fmt.Sprintf("fprintf(stderr, \"cnx: %s overflow\\n\");", op))
		out.writeil("abort();")
	} else {
		out.writeil(fmt.Sprintf("return %s;", bound))
	}
	out.unindent()
	out.writeil("}")
	out.writeil("return r;")
}

// emitClampSignedPromoted handles i8/i16/i32 add/sub/mul by promoting
// both operands to int64_t: the widest possible product or sum of two
// 32-bit (or narrower) signed values always fits in 64 bits, so the
// promoted arithmetic itself can never overflow and the bounds check
// against the narrow type's limits is exact.
func emitClampSignedPromoted(out *outputWriter, op, cType, min, max, sym, buildMode string) {
	out.writeil(fmt.Sprintf("int64_t wide = (int64_t)a %s (int64_t)b;", sym))
	if buildMode == "debug" {
		out.writeil(fmt.Sprintf("if (wide < (int64_t)%s || wide > (int64_t)%s) {", min, max))
		out.indent()
		out.writeil(fmt.Sprintf("fprintf(stderr, \"cnx: %s overflow\\n\");", op))
		out.writeil("abort();")
		out.unindent()
		out.writeil("}")
	} else {
		out.writeil(fmt.Sprintf("if (wide < (int64_t)%s) return %s;", min, min))
		out.writeil(fmt.Sprintf("if (wide > (int64_t)%s) return %s;", max, max))
	}
	out.writeil(fmt.Sprintf("return (%s)wide;", cType))
}

// emitClampSigned64 handles i64 add/sub/mul. There is no portable
// wider signed type to promote into, so each operator is guarded by a
// range-checking expression that decides the outcome before
// evaluating the operator anywhere it could overflow (spec.md §4.8:
// "for 64-bit signed it uses range-checking expressions").
func emitClampSigned64(out *outputWriter, op, cType, min, max, buildMode string) {
	overflowAction := func(label string) {
		if buildMode == "debug" {
			out.writeil(fmt.Sprintf("fprintf(stderr, \"cnx: %s overflow\\n\");", op))
			out.writeil("abort();")
		} else {
			out.writeil(fmt.Sprintf("return %s;", label))
		}
	}
	switch op {
	case "add":
		out.writeil(fmt.Sprintf("if (b > 0 && a > %s - b) {", max))
		out.indent()
		overflowAction(max)
		out.unindent()
		out.writeil("}")
		out.writeil(fmt.Sprintf("if (b < 0 && a < %s - b) {", min))
		out.indent()
		overflowAction(min)
		out.unindent()
		out.writeil("}")
		out.writeil("return a + b;")
	case "sub":
		out.writeil(fmt.Sprintf("if (b < 0 && a > %s + b) {", max))
		out.indent()
		overflowAction(max)
		out.unindent()
		out.writeil("}")
		out.writeil(fmt.Sprintf("if (b > 0 && a < %s + b) {", min))
		out.indent()
		overflowAction(min)
		out.unindent()
		out.writeil("}")
		out.writeil("return a - b;")
	case "mul":
		out.writeil("if (a > 0) {")
		out.indent()
		out.writeil("if (b > 0) {")
		out.indent()
		out.writeil(fmt.Sprintf("if (a > %s / b) {", max))
		out.indent()
		overflowAction(max)
		out.unindent()
		out.writeil("}")
		out.unindent()
		out.writeil("} else {")
		out.indent()
		out.writeil(fmt.Sprintf("if (b < %s / a) {", min))
		out.indent()
		overflowAction(min)
		out.unindent()
		out.writeil("}")
		out.unindent()
		out.writeil("}")
		out.unindent()
		out.writeil("} else if (a < 0) {")
		out.indent()
		out.writeil("if (b > 0) {")
		out.indent()
		out.writeil(fmt.Sprintf("if (a < %s / b) {", min))
		out.indent()
		overflowAction(min)
		out.unindent()
		out.writeil("}")
		out.unindent()
		out.writeil("} else {")
		out.indent()
		out.writeil(fmt.Sprintf("if (b != 0 && b < %s / a) {", max))
		out.indent()
		overflowAction(max)
		out.unindent()
		out.writeil("}")
		out.unindent()
		out.writeil("}")
		out.unindent()
		out.writeil("}")
		out.writeil("return a * b;")
	}
}

// emitClampDiv handles the `/<-` compound assignment's clamp path.
// Integer division cannot overflow except the single signed
// INT_MIN/-1 case, and must never execute with a zero divisor, so
// both are guarded explicitly rather than promoted to a wider type.
func emitClampDiv(out *outputWriter, typ, cType, min, max, buildMode string) {
	if isUnsignedType(typ) {
		out.writeil("if (b == 0) {")
		out.indent()
		if buildMode == "debug" {
			out.writeil("fprintf(stderr, \"cnx: div by zero\\n\");")
			out.writeil("abort();")
		} else {
			out.writeil(fmt.Sprintf("return %s;", max))
		}
		out.unindent()
		out.writeil("}")
		out.writeil("return a / b;")
		return
	}
	out.writeil("if (b == 0) {")
	out.indent()
	if buildMode == "debug" {
		out.writeil("fprintf(stderr, \"cnx: div by zero\\n\");")
		out.writeil("abort();")
	} else {
		out.writeil(fmt.Sprintf("return %s;", max))
	}
	out.unindent()
	out.writeil("}")
	out.writeil(fmt.Sprintf("if (a == %s && b == -1) {", min))
	out.indent()
	if buildMode == "debug" {
		out.writeil("fprintf(stderr, \"cnx: div overflow\\n\");")
		out.writeil("abort();")
	} else {
		out.writeil(fmt.Sprintf("return %s;", max))
	}
	out.unindent()
	out.writeil("}")
	out.writeil(fmt.Sprintf("return (%s)a / b;", cType))
}

// cBaseTypeName is cBaseType without the Generator dependency, used by
// the helper emitter which runs after per-unit generation completes
// and only needs the fixed-width primitive names.
func cBaseTypeName(typ string) (string, bool) {
	switch typ {
	case "u8":
		return "uint8_t", true
	case "u16":
		return "uint16_t", true
	case "u32":
		return "uint32_t", true
	case "u64":
		return "uint64_t", true
	case "i8":
		return "int8_t", true
	case "i16":
		return "int16_t", true
	case "i32":
		return "int32_t", true
	case "i64":
		return "int64_t", true
	default:
		return typ, false
	}
}

// emitSafeDivHelper writes the `cnx_safe_div_<type>`/`cnx_safe_mod_<type>`
// pair: each writes the quotient/remainder through an out-param, or
// stores the caller-supplied default there instead of dividing by zero (spec.md
// §4.8, grounded on the division-by-zero analyzer's guarantee that
// every `safe_div`/`safe_mod` call site in source has already been
// validated to need this helper).
func emitSafeDivHelper(out *outputWriter, op, typ string) {
	cType, _ := cBaseTypeName(typ)
	verb := "/"
	if op == "mod" {
		verb = "%"
	}
	out.writeil(fmt.Sprintf("static inline void cnx_safe_%s_%s(%s *out, %s a, %s b, %s dflt) {",
		op, typ, cType, cType, cType, cType))
	out.indent()
	out.writeil("if (b == 0) { *out = dflt; return; }")
	out.writeil(fmt.Sprintf("*out = (%s)(a %s b);", cType, verb))
	out.unindent()
	out.writeil("}")
}

// EmitHelpers renders every helper function requested in fx, in
// deterministic order, plus the `#include` block the helpers and the
// rest of the unit need.
func EmitHelpers(fx *effect.Bag, buildMode string) string {
	out := newOutputWriter("  ")

	var includes []string
	var clampPairs, divPairs [][2]string
	needsString := false
	for _, e := range fx.Items() {
		switch e.Kind {
		case effect.KindInclude:
			includes = append(includes, e.Header)
		case effect.KindHelper:
			clampPairs = append(clampPairs, [2]string{e.Op, e.Type})
			includes = append(includes, "stdint.h", "stdlib.h")
			if buildMode == "debug" {
				includes = append(includes, "stdio.h")
			}
		case effect.KindSafeDiv:
			divPairs = append(divPairs, [2]string{e.Op, e.Type})
			includes = append(includes, "stdint.h")
		case effect.KindNeedsString:
			needsString = true
			includes = append(includes, "string.h")
		}
	}

	for _, h := range SortIncludes(includes) {
		out.writeil(fmt.Sprintf("#include <%s>", h))
	}
	out.writel("")

	for _, key := range SortHelperKeys(clampPairs) {
		op, typ := splitHelperKey(key)
		emitClampHelper(out, op, typ, buildMode)
	}
	for _, key := range SortHelperKeys(divPairs) {
		op, typ := splitHelperKey(key)
		emitSafeDivHelper(out, op, typ)
	}
	_ = needsString

	return out.String()
}

func splitHelperKey(key string) (op, typ string) {
	for i := 0; i < len(key); i++ {
		if key[i] == '_' {
			return key[:i], key[i+1:]
		}
	}
	return key, ""
}
