package assign

import (
	"testing"

	"github.com/cnext-lang/cnextc/ast"
	"github.com/cnext-lang/cnextc/diag"
	"github.com/cnext-lang/cnextc/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func emitExpr(e ast.Expr) string {
	switch n := e.(type) {
	case *ast.Literal:
		return n.Text
	case *ast.Identifier:
		return n.Name
	}
	return "<expr>"
}

func TestClassifySimpleIdentifier(t *testing.T) {
	reg := types.NewRegistry()
	reg.Declare("x", types.TypeInfo{BaseName: "u32"})
	env := &Env{Types: reg, EmitExpr: emitExpr}

	stmt := &ast.AssignStmt{
		Target: &ast.Identifier{Name: "x"},
		Op:     "<-",
		Value:  &ast.Literal{Text: "1", LitKind: ast.LiteralInt},
	}
	ctx := Build(stmt, nil)
	kind := Classify(ctx, env)
	require.Equal(t, KindSimpleIdentifier, kind)

	code, _, err := Handle(ctx, kind, env)
	require.NoError(t, err)
	assert.Equal(t, "x = 1;", code)
}

func TestClassifyClampCompound(t *testing.T) {
	reg := types.NewRegistry()
	reg.Declare("y", types.TypeInfo{BaseName: "u8", BitWidth: 8, Overflow: ast.OverflowClamp})
	env := &Env{Types: reg, EmitExpr: emitExpr}

	stmt := &ast.AssignStmt{
		Target: &ast.Identifier{Name: "y"},
		Op:     "+<-",
		Value:  &ast.Literal{Text: "1", LitKind: ast.LiteralInt},
	}
	ctx := Build(stmt, nil)
	kind := Classify(ctx, env)
	require.Equal(t, KindClampCompound, kind)

	code, fx, err := Handle(ctx, kind, env)
	require.NoError(t, err)
	assert.Equal(t, "y = cnx_clamp_add_u8(y, 1);", code)
	require.Len(t, fx.Items(), 1)
	assert.Equal(t, "add", fx.Items()[0].Op)
	assert.Equal(t, "u8", fx.Items()[0].Type)
}

func TestClassifyBitmapFieldWrite(t *testing.T) {
	reg := types.NewRegistry()
	reg.Declare("f", types.TypeInfo{BaseName: "F", IsBitmap: true})
	env := &Env{
		Types: reg,
		Bitmaps: map[string]*ast.BitmapDecl{
			"F": {Name: "F", BackingWidth: 8, Fields: []ast.BitmapField{
				{Name: "a", Width: 1},
				{Name: "b", Width: 3},
				{Name: "c", Width: 4},
			}},
		},
		EmitExpr: emitExpr,
	}

	stmt := &ast.AssignStmt{
		Target: &ast.MemberExpr{Target: &ast.Identifier{Name: "f"}, Field: "b"},
		Op:     "<-",
		Value:  &ast.Literal{Text: "5", LitKind: ast.LiteralInt},
	}
	ctx := Build(stmt, nil)
	kind := Classify(ctx, env)
	require.Equal(t, KindBitmapFieldWriteN, kind)

	code, _, err := Handle(ctx, kind, env)
	require.NoError(t, err)
	assert.Equal(t, "f = (f & ~(0x7 << 1)) | ((5 & 0x7) << 1);", code)
}

func TestClassifyBitWidth1(t *testing.T) {
	reg := types.NewRegistry()
	reg.Declare("f", types.TypeInfo{BaseName: "F", IsBitmap: true})
	env := &Env{
		Types: reg,
		Bitmaps: map[string]*ast.BitmapDecl{
			"F": {Name: "F", BackingWidth: 8, Fields: []ast.BitmapField{{Name: "a", Width: 1}}},
		},
		EmitExpr: emitExpr,
	}
	stmt := &ast.AssignStmt{
		Target: &ast.MemberExpr{Target: &ast.Identifier{Name: "f"}, Field: "a"},
		Op:     "<-",
		Value:  &ast.Literal{Text: "true", LitKind: ast.LiteralBool},
	}
	ctx := Build(stmt, nil)
	kind := Classify(ctx, env)
	require.Equal(t, KindBitmapFieldWrite1, kind)
	code, _, err := Handle(ctx, kind, env)
	require.NoError(t, err)
	assert.Equal(t, "f = (f & ~(1u << 0)) | (((true) ? 1u : 0u) << 0);", code)
}

func TestClassifyThisPrefix(t *testing.T) {
	reg := types.NewRegistry()
	env := &Env{Types: reg, EmitExpr: emitExpr}
	stmt := &ast.AssignStmt{
		Target: &ast.MemberExpr{Target: &ast.Identifier{Name: "this"}, Field: "counter"},
		Op:     "<-",
		Value:  &ast.Literal{Text: "1", LitKind: ast.LiteralInt},
	}
	ctx := Build(stmt, nil)
	require.True(t, ctx.HasThis)
	kind := Classify(ctx, env)
	require.Equal(t, KindThisPrefixWrite, kind)
	code, _, err := Handle(ctx, kind, env)
	require.NoError(t, err)
	assert.Equal(t, "counter = 1;", code)
}

func TestRegisterWriteOnlyFieldSkipsReadback(t *testing.T) {
	reg := types.NewRegistry()
	env := &Env{
		Types: reg,
		Bitmaps: map[string]*ast.BitmapDecl{
			"CTRL": {Name: "CTRL", BackingWidth: 8, Fields: []ast.BitmapField{
				{Name: "enable", Width: 1},
				{Name: "mode", Width: 3},
			}},
		},
		Registers: map[string]*ast.RegisterDecl{
			"UART0": {Name: "UART0", Members: []ast.RegisterMember{
				{Name: "CTRL", Access: ast.AccessWO, BitmapName: "CTRL"},
			}},
		},
		EmitExpr: emitExpr,
	}
	stmt := &ast.AssignStmt{
		Target: &ast.MemberExpr{
			Target: &ast.MemberExpr{Target: &ast.Identifier{Name: "UART0"}, Field: "CTRL"},
			Field:  "mode",
		},
		Op:    "<-",
		Value: &ast.Literal{Text: "5", LitKind: ast.LiteralInt},
	}
	ctx := Build(stmt, nil)
	kind := Classify(ctx, env)
	require.Equal(t, KindRegisterBitmapFieldWriteN, kind)

	code, _, err := Handle(ctx, kind, env)
	require.NoError(t, err)
	assert.Equal(t, "UART0_CTRL = ((5) & 0x7) << 1;", code)
}

func TestRegisterWriteOnlyFieldForbidsLiteralZero(t *testing.T) {
	reg := types.NewRegistry()
	env := &Env{
		Types: reg,
		Bitmaps: map[string]*ast.BitmapDecl{
			"CTRL": {Name: "CTRL", BackingWidth: 8, Fields: []ast.BitmapField{
				{Name: "enable", Width: 1},
			}},
		},
		Registers: map[string]*ast.RegisterDecl{
			"UART0": {Name: "UART0", Members: []ast.RegisterMember{
				{Name: "CTRL", Access: ast.AccessW1C, BitmapName: "CTRL"},
			}},
		},
		EmitExpr: emitExpr,
	}
	stmt := &ast.AssignStmt{
		Target: &ast.MemberExpr{
			Target: &ast.MemberExpr{Target: &ast.Identifier{Name: "UART0"}, Field: "CTRL"},
			Field:  "enable",
		},
		Op:    "<-",
		Value: &ast.Literal{Text: "0", LitKind: ast.LiteralInt},
	}
	ctx := Build(stmt, nil)
	kind := Classify(ctx, env)
	require.Equal(t, KindRegisterBitmapFieldWrite1, kind)

	_, _, err := Handle(ctx, kind, env)
	require.Error(t, err)
	diagErr, ok := err.(diag.Diagnostic)
	require.True(t, ok)
	assert.Equal(t, diag.CodeWriteOnlyZero, diagErr.Code)
}

func TestDivByZeroSpanFormatting(t *testing.T) {
	sp := diag.Span{File: "a.cnx", Line: 3, Column: 4}
	d := diag.New(diag.CodeDivisionByZero, "division by zero", sp)
	assert.Equal(t, "error[E0800]: division by zero at 3:4", d.Error())
}
