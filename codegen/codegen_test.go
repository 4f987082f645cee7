package codegen

import (
	"testing"

	"github.com/cnext-lang/cnextc/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGenerator() *Generator {
	return NewGenerator(NewRegistry(), nil, nil, nil, nil, false, "release")
}

func TestLiteralSuffixTransform(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"10u64", "10ULL"},
		{"1i64", "1LL"},
		{"10u32", "10"},
		{"5i8", "5"},
		{"1.5f32", "1.5f"},
		{"1.5f64", "1.5"},
		{"true", "true"},
	}
	for _, tc := range tests {
		t.Run(tc.text, func(t *testing.T) {
			code, _ := literalSuffixTransform(tc.text)
			assert.Equal(t, tc.want, code)
		})
	}
}

func TestGenLiteralEmitsStdboolOnBool(t *testing.T) {
	g := newTestGenerator()
	code, fx := g.EmitExpr(&ast.Literal{Text: "true", LitKind: ast.LiteralBool})
	assert.Equal(t, "true", code)
	require.Len(t, fx.Items(), 1)
	assert.Equal(t, "stdbool.h", fx.Items()[0].Header)
}

func TestGenIdentifierPassesThroughPlainNames(t *testing.T) {
	g := newTestGenerator()
	code, fx := g.EmitExpr(&ast.Identifier{Name: "counter"})
	assert.Equal(t, "counter", code)
	assert.Empty(t, fx.Items())
}

func TestGenBinaryFoldsConstantIntegerArithmetic(t *testing.T) {
	g := newTestGenerator()
	expr := &ast.BinaryExpr{
		Op:    "+",
		Left:  &ast.Literal{Text: "2", LitKind: ast.LiteralInt},
		Right: &ast.Literal{Text: "3", LitKind: ast.LiteralInt},
	}
	code, _ := g.EmitExpr(expr)
	assert.Equal(t, "5", code)
}

func TestGenBinaryDoesNotFoldAcrossDivisionByZero(t *testing.T) {
	g := newTestGenerator()
	expr := &ast.BinaryExpr{
		Op:    "/",
		Left:  &ast.Literal{Text: "4", LitKind: ast.LiteralInt},
		Right: &ast.Literal{Text: "0", LitKind: ast.LiteralInt},
	}
	code, _ := g.EmitExpr(expr)
	// Folding aborts on division by zero; falls back to emitted code
	// rather than a folded constant (the diagnostic is the division-
	// by-zero analyzer's job, which runs before codegen).
	assert.Equal(t, "(4 / 0)", code)
}

func TestCBaseTypeMapsFixedWidthPrimitives(t *testing.T) {
	g := newTestGenerator()
	tests := []struct {
		src     string
		want    string
		include string
	}{
		{"u8", "uint8_t", "stdint.h"},
		{"u32", "uint32_t", "stdint.h"},
		{"i64", "int64_t", "stdint.h"},
		{"f32", "float", ""},
		{"f64", "double", ""},
		{"bool", "bool", "stdbool.h"},
	}
	for _, tc := range tests {
		t.Run(tc.src, func(t *testing.T) {
			c, fx := cBaseType(g, tc.src)
			assert.Equal(t, tc.want, c)
			if tc.include == "" {
				assert.Empty(t, fx.Items())
			} else {
				require.Len(t, fx.Items(), 1)
				assert.Equal(t, tc.include, fx.Items()[0].Header)
			}
		})
	}
}

func TestCTypeAndSuffixRendersBoundedStringCapacityPlusOne(t *testing.T) {
	g := newTestGenerator()
	base, suffix, _ := cTypeAndSuffix(g, ast.TypeRef{Name: "string", StringCap: 8})
	assert.Equal(t, "char", base)
	assert.Equal(t, "[9]", suffix)
}

func TestCTypeAndSuffixRendersArrayDims(t *testing.T) {
	g := newTestGenerator()
	base, suffix, _ := cTypeAndSuffix(g, ast.TypeRef{Name: "u8", ArrayDims: []int{4, 2}})
	assert.Equal(t, "uint8_t", base)
	assert.Equal(t, "[4][2]", suffix)
}

func TestCDeclareRendersConstQualifier(t *testing.T) {
	g := newTestGenerator()
	decl := g.cDeclare("x", ast.TypeRef{Name: "u32", IsConst: true})
	assert.Equal(t, "const uint32_t x", decl)
}
