package collect

import (
	"testing"

	"github.com/cnext-lang/cnextc/ast"
	"github.com/cnext-lang/cnextc/diag"
	"github.com/cnext-lang/cnextc/symtab"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectTopLevelFunctionAndVariable(t *testing.T) {
	unit := &ast.Unit{
		Path: "a.cnx",
		Decls: []ast.Decl{
			&ast.FunctionDecl{Name: "main", ReturnType: ast.TypeRef{Name: "i32"}, Visibility: ast.Public},
			&ast.VarDecl{Name: "counter", Type: ast.TypeRef{Name: "u32"}},
		},
	}
	r := Collect(unit, symtab.LangCnx)
	require.Empty(t, r.Errors)
	require.Len(t, r.Symbols, 2)
	assert.Equal(t, "main", r.Symbols[0].Name)
	assert.Equal(t, symtab.KindFunction, r.Symbols[0].Kind)
	assert.True(t, r.Symbols[0].IsExported)
	assert.Equal(t, "counter", r.Symbols[1].Name)
	assert.Equal(t, symtab.KindVariable, r.Symbols[1].Kind)
}

func TestCollectBitmapWidthMismatchIsAnError(t *testing.T) {
	unit := &ast.Unit{
		Decls: []ast.Decl{
			&ast.BitmapDecl{Name: "Flags", BackingWidth: 8, Fields: []ast.BitmapField{
				{Name: "a", Width: 1},
				{Name: "b", Width: 3},
			}},
		},
	}
	r := Collect(unit, symtab.LangCnx)
	require.Len(t, r.Errors, 1)
	assert.Equal(t, diag.CodeBitmapWidthMismatch, r.Errors[0].Code)
}

func TestCollectBitmapExactWidthIsAccepted(t *testing.T) {
	unit := &ast.Unit{
		Decls: []ast.Decl{
			&ast.BitmapDecl{Name: "Flags", BackingWidth: 8, Fields: []ast.BitmapField{
				{Name: "a", Width: 1},
				{Name: "b", Width: 3},
				{Name: "c", Width: 4},
			}},
		},
	}
	r := Collect(unit, symtab.LangCnx)
	assert.Empty(t, r.Errors)
}

func TestCollectStructRejectsLengthField(t *testing.T) {
	unit := &ast.Unit{
		Decls: []ast.Decl{
			&ast.StructDecl{Name: "Buf", Fields: []ast.StructField{
				{Name: "length", Type: ast.TypeRef{Name: "u32"}},
			}},
		},
	}
	r := Collect(unit, symtab.LangCnx)
	require.Len(t, r.Errors, 1)
	assert.Equal(t, diag.CodeReservedField, r.Errors[0].Code)
}

func TestCollectEnumRejectsNegativeValue(t *testing.T) {
	neg := int64(-1)
	unit := &ast.Unit{
		Decls: []ast.Decl{
			&ast.EnumDecl{Name: "Mode", Members: []ast.EnumMember{
				{Name: "Off", Value: &neg},
			}},
		},
	}
	r := Collect(unit, symtab.LangCnx)
	require.Len(t, r.Errors, 1)
	assert.Equal(t, diag.CodeNegativeEnumValue, r.Errors[0].Code)
}

func TestCollectEnumAutoIncrementsFromPrevious(t *testing.T) {
	zero := int64(0)
	unit := &ast.Unit{
		Decls: []ast.Decl{
			&ast.EnumDecl{Name: "Mode", Members: []ast.EnumMember{
				{Name: "Off", Value: &zero},
				{Name: "On", Value: nil},
			}},
		},
	}
	r := Collect(unit, symtab.LangCnx)
	assert.Empty(t, r.Errors)
}

func TestCollectScopeDetectsDuplicateMember(t *testing.T) {
	unit := &ast.Unit{
		Path: "a.cnx",
		Decls: []ast.Decl{
			&ast.ScopeDecl{Name: "M", Members: []ast.ScopeMember{
				{Visibility: ast.Private, Var: &ast.VarDecl{Name: "x", Type: ast.TypeRef{Name: "u32"}}},
				{Visibility: ast.Public, Func: &ast.FunctionDecl{Name: "x"}},
			}},
		},
	}
	r := Collect(unit, symtab.LangCnx)
	require.Len(t, r.Errors, 1)
	assert.Equal(t, diag.CodeDuplicateMember, r.Errors[0].Code)
}

func TestCollectScopeRecordsPrivateConstInlining(t *testing.T) {
	unit := &ast.Unit{
		Path: "a.cnx",
		Decls: []ast.Decl{
			&ast.ScopeDecl{Name: "M", Members: []ast.ScopeMember{
				{Visibility: ast.Private, Var: &ast.VarDecl{
					Name: "Limit",
					Type: ast.TypeRef{Name: "u32", IsConst: true},
					Init: &ast.Literal{Text: "10u32", LitKind: ast.LiteralInt},
				}},
			}},
		},
	}
	r := Collect(unit, symtab.LangCnx)
	require.Empty(t, r.Errors)
	info := r.Scopes["M"]
	require.NotNil(t, info)
	assert.Equal(t, "10u32", info.InlineConsts["Limit"])
}

func TestCollectScopeRecordsSingleUseVariable(t *testing.T) {
	unit := &ast.Unit{
		Path: "a.cnx",
		Decls: []ast.Decl{
			&ast.ScopeDecl{Name: "M", Members: []ast.ScopeMember{
				{Visibility: ast.Private, Var: &ast.VarDecl{Name: "counter", Type: ast.TypeRef{Name: "u32"}}},
				{Visibility: ast.Public, Func: &ast.FunctionDecl{
					Name: "inc",
					Body: []ast.Stmt{
						&ast.AssignStmt{
							Target: &ast.MemberExpr{Target: &ast.Identifier{Name: "this"}, Field: "counter"},
							Op:     "<-",
							Value:  &ast.Literal{Text: "1", LitKind: ast.LiteralInt},
						},
					},
				}},
			}},
		},
	}
	r := Collect(unit, symtab.LangCnx)
	info := r.Scopes["M"]
	require.NotNil(t, info)
	assert.Equal(t, "inc", info.SingleUseFunction("counter"))
}

func TestSingleUseFunctionReturnsEmptyForMultipleUsers(t *testing.T) {
	info := &ScopeInfo{VarUsage: map[string]map[string]bool{
		"x": {"f": true, "g": true},
	}}
	assert.Equal(t, "", info.SingleUseFunction("x"))
}
