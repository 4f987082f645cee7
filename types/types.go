// Package types answers the pure, side-effect-free type queries
// spec.md §4.5 describes: classification (integer/float/signed/...),
// narrowing/sign-change legality, literal parsing, and literal range
// validation. Every function here is a query over a TypeInfo value;
// none of them touch the symbol table or mutate anything, mirroring
// the teacher's own preference for small pure helpers (sanitizeCIdent
// in genc.go, cleanGoModule in gen_go.go) over stateful visitors.
package types

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/cnext-lang/cnextc/ast"
	"github.com/cnext-lang/cnextc/diag"
)

// TypeInfo is the per-identifier record the Type Registry (§3) holds.
type TypeInfo struct {
	BaseName  string // "u8".."u64", "i8".."i64", "f32", "f64", "bool", "string", or a declared struct/enum/bitmap name
	BitWidth  int
	IsArray   bool
	ArrayDims []int
	IsConst   bool
	IsEnum    bool
	IsBitmap  bool
	IsStruct  bool
	Overflow  ast.OverflowBehavior
	StringCap int
	IsAtomic  bool
}

// FromTypeRef builds a TypeInfo from a parsed ast.TypeRef, resolving
// BitWidth for the fixed-width primitives.
func FromTypeRef(t ast.TypeRef, isEnum, isBitmap, isStruct bool) TypeInfo {
	return TypeInfo{
		BaseName:  t.Name,
		BitWidth:  widthOf(t.Name, t.BitWidth),
		IsArray:   t.IsArray(),
		ArrayDims: t.ArrayDims,
		IsConst:   t.IsConst,
		IsEnum:    isEnum,
		IsBitmap:  isBitmap,
		IsStruct:  isStruct,
		Overflow:  t.Overflow,
		StringCap: t.StringCap,
		IsAtomic:  t.IsAtomic,
	}
}

func widthOf(name string, explicit int) int {
	if explicit > 0 {
		return explicit
	}
	switch name {
	case "u8", "i8":
		return 8
	case "u16", "i16":
		return 16
	case "u32", "i32", "f32":
		return 32
	case "u64", "i64", "f64":
		return 64
	case "bool":
		return 1
	default:
		return 0
	}
}

// Registry maps in-scope identifiers to their TypeInfo for one
// function/file, per spec.md §3. Snapshot/Restore support the
// branch-merge bookkeeping the initialization analyzer needs.
type Registry struct {
	vars map[string]TypeInfo
}

func NewRegistry() *Registry {
	return &Registry{vars: make(map[string]TypeInfo)}
}

func (r *Registry) Declare(name string, info TypeInfo) { r.vars[name] = info }

func (r *Registry) Lookup(name string) (TypeInfo, bool) {
	info, ok := r.vars[name]
	return info, ok
}

// Snapshot returns a shallow copy of the current bindings, safe to
// mutate independently of r.
func (r *Registry) Snapshot() map[string]TypeInfo {
	out := make(map[string]TypeInfo, len(r.vars))
	for k, v := range r.vars {
		out[k] = v
	}
	return out
}

func (r *Registry) Restore(snapshot map[string]TypeInfo) {
	r.vars = make(map[string]TypeInfo, len(snapshot))
	for k, v := range snapshot {
		r.vars[k] = v
	}
}

func IsInteger(t TypeInfo) bool {
	switch t.BaseName {
	case "u8", "u16", "u32", "u64", "i8", "i16", "i32", "i64":
		return true
	default:
		return t.IsEnum
	}
}

func IsFloat(t TypeInfo) bool { return t.BaseName == "f32" || t.BaseName == "f64" }

func IsSigned(t TypeInfo) bool {
	switch t.BaseName {
	case "i8", "i16", "i32", "i64":
		return true
	default:
		return false
	}
}

func IsUnsigned(t TypeInfo) bool { return IsInteger(t) && !IsSigned(t) }

func IsStruct(t TypeInfo) bool { return t.IsStruct }
func IsBitmap(t TypeInfo) bool { return t.IsBitmap }
func IsEnum(t TypeInfo) bool   { return t.IsEnum }
func IsString(t TypeInfo) bool { return t.BaseName == "string" }
func IsBool(t TypeInfo) bool   { return t.BaseName == "bool" }

// IsNarrowing reports whether assigning a value of type src into dst
// loses bits: crossing to a smaller bit width within the same
// signedness family, or crossing an integer/float boundary. Structs,
// enums and bitmaps never narrow into each other (a distinct
// EnumMismatch/conversion check governs those).
func IsNarrowing(src, dst TypeInfo) bool {
	if IsInteger(src) && IsInteger(dst) {
		return dst.BitWidth < src.BitWidth
	}
	if IsFloat(src) && IsFloat(dst) {
		return dst.BitWidth < src.BitWidth
	}
	if (IsInteger(src) && IsFloat(dst)) || (IsFloat(src) && IsInteger(dst)) {
		return true
	}
	return false
}

// IsSignConversion reports whether src and dst are both integers of
// the same width but differing signedness (spec.md §4.5: narrowing
// and sign-change conversions are both errors, independently).
func IsSignConversion(src, dst TypeInfo) bool {
	return IsInteger(src) && IsInteger(dst) &&
		src.BitWidth == dst.BitWidth && IsSigned(src) != IsSigned(dst)
}

// ValidateTypeConversion returns a non-nil error when assigning src
// into dst is illegal per spec.md: narrowing and sign changes must be
// done via the explicit bit-slicing escape hatch `v[0, <width>]`.
func ValidateTypeConversion(src, dst TypeInfo, at diag.Span) *diag.Diagnostic {
	if IsNarrowing(src, dst) {
		d := diag.New(diag.CodeNarrowingConversion,
			fmt.Sprintf("implicit narrowing conversion from `%s` to `%s`; use explicit bit-slicing v[0, %d]",
				src.BaseName, dst.BaseName, dst.BitWidth), at)
		return &d
	}
	if IsSignConversion(src, dst) {
		d := diag.New(diag.CodeSignConversion,
			fmt.Sprintf("implicit sign-changing conversion from `%s` to `%s`", src.BaseName, dst.BaseName), at)
		return &d
	}
	return nil
}

// Literal is the parsed shape of a source literal: base text with its
// type suffix stripped, the resolved base type, and (for integers)
// the arbitrary-precision value so range validation is exact.
type Literal struct {
	Base     string // "10", "0x1F", "0b101", "1.5"
	TypeName string // resolved base type, "" if unsuffixed (defaults applied by caller)
	IsHex    bool
	IsBin    bool
	IntValue *big.Int // nil for float/bool/string literals
	Negative bool
}

var intSuffixes = []string{"u64", "u32", "u16", "u8", "i64", "i32", "i16", "i8"}
var floatSuffixes = []string{"f32", "f64"}

// GetLiteralType parses a literal's type suffix (spec.md §4.5). Text
// is the literal exactly as written, e.g. "10u64", "1.5f32", "0x1F",
// "true".
func GetLiteralType(text string) Literal {
	t := text
	neg := false
	if strings.HasPrefix(t, "-") {
		neg = true
		t = t[1:]
	}
	if t == "true" || t == "false" {
		return Literal{Base: t, TypeName: "bool"}
	}
	for _, suf := range intSuffixes {
		if strings.HasSuffix(t, suf) {
			base := strings.TrimSuffix(t, suf)
			return Literal{
				Base:     base,
				TypeName: suf,
				IsHex:    strings.HasPrefix(base, "0x") || strings.HasPrefix(base, "0X"),
				IsBin:    strings.HasPrefix(base, "0b") || strings.HasPrefix(base, "0B"),
				IntValue: parseBigInt(base),
				Negative: neg,
			}
		}
	}
	for _, suf := range floatSuffixes {
		if strings.HasSuffix(t, suf) {
			return Literal{Base: strings.TrimSuffix(t, suf), TypeName: suf, Negative: neg}
		}
	}
	if strings.Contains(t, ".") {
		return Literal{Base: t, TypeName: "", Negative: neg}
	}
	return Literal{
		Base:     t,
		TypeName: "",
		IsHex:    strings.HasPrefix(t, "0x") || strings.HasPrefix(t, "0X"),
		IsBin:    strings.HasPrefix(t, "0b") || strings.HasPrefix(t, "0B"),
		IntValue: parseBigInt(t),
		Negative: neg,
	}
}

func parseBigInt(base string) *big.Int {
	n := new(big.Int)
	var ok bool
	switch {
	case strings.HasPrefix(base, "0x") || strings.HasPrefix(base, "0X"):
		n, ok = n.SetString(base[2:], 16)
	case strings.HasPrefix(base, "0b") || strings.HasPrefix(base, "0B"):
		n, ok = n.SetString(base[2:], 2)
	default:
		n, ok = n.SetString(base, 10)
	}
	if !ok {
		return nil
	}
	return n
}

// IsLiteralZero reports whether text denotes the literal value zero in
// any of its accepted forms ("0", "0x0", "0b0", and suffixed
// variants), used by the division-by-zero analyzer (spec.md §4.4).
func IsLiteralZero(text string) bool {
	lit := GetLiteralType(text)
	if lit.IntValue == nil {
		return false
	}
	return lit.IntValue.Sign() == 0
}

// bounds for signed/unsigned integer types, used by range validation.
func bounds(typeName string) (min, max *big.Int, ok bool) {
	widths := map[string]int{"u8": 8, "u16": 16, "u32": 32, "u64": 64, "i8": 8, "i16": 16, "i32": 32, "i64": 64}
	w, known := widths[typeName]
	if !known {
		return nil, nil, false
	}
	signed := strings.HasPrefix(typeName, "i")
	if !signed {
		max = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(w)), big.NewInt(1))
		return big.NewInt(0), max, true
	}
	max = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(w-1)), big.NewInt(1))
	min = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), uint(w-1)))
	return min, max, true
}

// ValidateLiteralFitsType reports whether the arbitrary-precision
// value of an integer literal fits within target's declared range.
// Uses big.Int so arbitrarily large literal text is handled exactly
// (spec.md §4.5: "Literal range validation uses arbitrary-precision
// integers").
func ValidateLiteralFitsType(text, target string) (bool, *big.Int) {
	lit := GetLiteralType(text)
	if lit.IntValue == nil {
		return true, nil
	}
	val := lit.IntValue
	if lit.Negative {
		val = new(big.Int).Neg(val)
	}
	min, max, ok := bounds(target)
	if !ok {
		return true, val
	}
	if val.Cmp(min) < 0 || val.Cmp(max) > 0 {
		return false, val
	}
	return true, val
}
