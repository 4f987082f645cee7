package analyze

import (
	"testing"

	"github.com/cnext-lang/cnextc/ast"
	"github.com/cnext-lang/cnextc/diag"
	"github.com/cnext-lang/cnextc/symtab"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func divExpr(op string, left, right ast.Expr) *ast.BinaryExpr {
	return &ast.BinaryExpr{Op: op, Left: left, Right: right}
}

func unitWithBody(body []ast.Stmt) *ast.Unit {
	return &ast.Unit{
		Path: "t.cnx",
		Decls: []ast.Decl{
			&ast.FunctionDecl{Name: "main", ReturnType: ast.TypeRef{Name: "i32"}, Body: body},
		},
	}
}

func TestDivisionByZeroLiteral(t *testing.T) {
	body := []ast.Stmt{
		&ast.ExprStmt{Expr: divExpr("/", &ast.Identifier{Name: "a"}, &ast.Literal{Text: "0", LitKind: ast.LiteralInt})},
	}
	bag := DivisionByZero(unitWithBody(body), symtab.New(), "")
	require.Len(t, bag.Items(), 1)
	assert.Equal(t, diag.CodeDivisionByZero, bag.Items()[0].Code)
}

func TestModuloByZeroLiteral(t *testing.T) {
	body := []ast.Stmt{
		&ast.ExprStmt{Expr: divExpr("%", &ast.Identifier{Name: "a"}, &ast.Literal{Text: "0x0", LitKind: ast.LiteralInt})},
	}
	bag := DivisionByZero(unitWithBody(body), symtab.New(), "")
	require.Len(t, bag.Items(), 1)
	assert.Equal(t, diag.CodeModuloByZero, bag.Items()[0].Code)
}

func TestDivisionByZeroConstIdentifier(t *testing.T) {
	body := []ast.Stmt{
		&ast.VarDeclStmt{Decl: &ast.VarDecl{
			Name: "Z",
			Type: ast.TypeRef{Name: "u32", IsConst: true},
			Init: &ast.Literal{Text: "0", LitKind: ast.LiteralInt},
		}},
		&ast.ExprStmt{Expr: divExpr("/", &ast.Identifier{Name: "a"}, &ast.Identifier{Name: "Z"})},
	}
	bag := DivisionByZero(unitWithBody(body), symtab.New(), "")
	require.Len(t, bag.Items(), 1)
	assert.Equal(t, diag.CodeDivisionByZero, bag.Items()[0].Code)
}

func TestDivisionByNonZeroIsAccepted(t *testing.T) {
	body := []ast.Stmt{
		&ast.ExprStmt{Expr: divExpr("/", &ast.Identifier{Name: "a"}, &ast.Literal{Text: "2", LitKind: ast.LiteralInt})},
	}
	bag := DivisionByZero(unitWithBody(body), symtab.New(), "")
	assert.Empty(t, bag.Items())
}

func TestDivisionByNonConstZeroLocalIsNotTracked(t *testing.T) {
	// Spec.md §4.4: only const-qualified identifiers bound to a
	// literal zero are tracked here; a plain mutable local is the
	// Initialization/flow analyzer's concern, not this one's.
	body := []ast.Stmt{
		&ast.VarDeclStmt{Decl: &ast.VarDecl{
			Name: "b",
			Type: ast.TypeRef{Name: "u32"},
			Init: &ast.Literal{Text: "0", LitKind: ast.LiteralInt},
		}},
		&ast.ExprStmt{Expr: divExpr("/", &ast.Identifier{Name: "a"}, &ast.Identifier{Name: "b"})},
	}
	bag := DivisionByZero(unitWithBody(body), symtab.New(), "")
	assert.Empty(t, bag.Items())
}

func TestFloatModuloRejectsFloatLiteral(t *testing.T) {
	body := []ast.Stmt{
		&ast.ExprStmt{Expr: divExpr("%", &ast.Identifier{Name: "x"}, &ast.Literal{Text: "2.0", LitKind: ast.LiteralFloat})},
	}
	bag := FloatModulo(unitWithBody(body), symtab.New(), "")
	require.Len(t, bag.Items(), 1)
	assert.Equal(t, diag.CodeFloatModulo, bag.Items()[0].Code)
}

func TestFloatModuloRejectsFloatVariable(t *testing.T) {
	unit := &ast.Unit{
		Path: "t.cnx",
		Decls: []ast.Decl{
			&ast.FunctionDecl{
				Name: "f",
				Params: []ast.Param{
					{Name: "x", Type: ast.TypeRef{Name: "f32"}},
				},
				Body: []ast.Stmt{
					&ast.ExprStmt{Expr: divExpr("%", &ast.Identifier{Name: "x"}, &ast.Literal{Text: "2", LitKind: ast.LiteralInt})},
				},
			},
		},
	}
	bag := FloatModulo(unit, symtab.New(), "")
	require.Len(t, bag.Items(), 1)
}

func TestFloatModuloAcceptsIntegerModulo(t *testing.T) {
	body := []ast.Stmt{
		&ast.ExprStmt{Expr: divExpr("%", &ast.Identifier{Name: "x"}, &ast.Literal{Text: "2", LitKind: ast.LiteralInt})},
	}
	bag := FloatModulo(unitWithBody(body), symtab.New(), "")
	assert.Empty(t, bag.Items())
}

func TestStructFieldRejectsReservedLengthName(t *testing.T) {
	unit := &ast.Unit{
		Path: "t.cnx",
		Decls: []ast.Decl{
			&ast.StructDecl{Name: "Buf", Fields: []ast.StructField{
				{Name: "data", Type: ast.TypeRef{Name: "u8", ArrayDims: []int{16}}},
				{Name: "length", Type: ast.TypeRef{Name: "u32"}},
			}},
		},
	}
	bag := StructField(unit, symtab.New(), "")
	require.Len(t, bag.Items(), 1)
	assert.Equal(t, diag.CodeReservedField, bag.Items()[0].Code)
}

func TestStructFieldAcceptsOrdinaryFields(t *testing.T) {
	unit := &ast.Unit{
		Path: "t.cnx",
		Decls: []ast.Decl{
			&ast.StructDecl{Name: "Point", Fields: []ast.StructField{
				{Name: "x", Type: ast.TypeRef{Name: "i32"}},
				{Name: "y", Type: ast.TypeRef{Name: "i32"}},
			}},
		},
	}
	bag := StructField(unit, symtab.New(), "")
	assert.Empty(t, bag.Items())
}

func TestParameterNamingRejectsReservedPrefix(t *testing.T) {
	unit := &ast.Unit{
		Path: "t.cnx",
		Decls: []ast.Decl{
			&ast.FunctionDecl{Name: "f", Params: []ast.Param{
				{Name: "__cnx_tmp", Type: ast.TypeRef{Name: "u32"}},
			}},
		},
	}
	bag := ParameterNaming(unit, symtab.New(), "")
	require.Len(t, bag.Items(), 1)
	assert.Equal(t, diag.CodeReservedIdentifier, bag.Items()[0].Code)
}

func TestParameterNamingAcceptsOrdinaryNames(t *testing.T) {
	unit := &ast.Unit{
		Path: "t.cnx",
		Decls: []ast.Decl{
			&ast.FunctionDecl{Name: "f", Params: []ast.Param{
				{Name: "count", Type: ast.TypeRef{Name: "u32"}},
			}},
		},
	}
	bag := ParameterNaming(unit, symtab.New(), "")
	assert.Empty(t, bag.Items())
}
