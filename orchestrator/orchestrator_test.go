package orchestrator

import (
	"os"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cnext-lang/cnextc/ast"
	"github.com/cnext-lang/cnextc/config"
	"github.com/cnext-lang/cnextc/diag"
)

// memFS is a minimal in-memory cache.FileSystem, mirroring the
// teacher-grounded fake used in package cache's own tests.
type memFS struct {
	files map[string][]byte
	stats map[string]os.FileInfo
}

func newMemFS() *memFS { return &memFS{files: make(map[string][]byte), stats: make(map[string]os.FileInfo)} }

func (m *memFS) ReadFile(path string) ([]byte, error) {
	data, ok := m.files[path]
	if !ok {
		return nil, os.ErrNotExist
	}
	return data, nil
}
func (m *memFS) WriteFile(path string, data []byte, perm os.FileMode) error {
	m.files[path] = data
	m.stats[path] = fakeInfo{}
	return nil
}
func (m *memFS) Rename(oldpath, newpath string) error {
	data, ok := m.files[oldpath]
	if !ok {
		return os.ErrNotExist
	}
	m.files[newpath] = data
	delete(m.files, oldpath)
	return nil
}
func (m *memFS) MkdirAll(path string, perm os.FileMode) error { return nil }
func (m *memFS) Stat(path string) (os.FileInfo, error) {
	if info, ok := m.stats[path]; ok {
		return info, nil
	}
	return nil, os.ErrNotExist
}

type fakeInfo struct{}

func (fakeInfo) Name() string       { return "" }
func (fakeInfo) Size() int64        { return 0 }
func (fakeInfo) Mode() os.FileMode  { return 0 }
func (fakeInfo) ModTime() time.Time { return time.UnixMilli(1) }
func (fakeInfo) IsDir() bool        { return false }
func (fakeInfo) Sys() any           { return nil }

func sp(line int) diag.Span { return diag.Span{File: "m.cnx", Line: line, Column: 1} }

// scopeCounterUnit builds the AST for spec.md §8 end-to-end scenario 4:
//
//	scope M { private u32 counter; public fn inc() -> void { this.counter <- this.counter + 1; } }
func scopeCounterUnit() *ast.Unit {
	counterType := ast.TypeRef{Name: "u32"}
	incBody := []ast.Stmt{
		&ast.AssignStmt{
			Sp: sp(3),
			Target: &ast.MemberExpr{Target: &ast.Identifier{Name: "this"}, Field: "counter"},
			Op:     "<-",
			Value: &ast.BinaryExpr{
				Op:   "+",
				Left: &ast.MemberExpr{Target: &ast.Identifier{Name: "this"}, Field: "counter"},
				Right: &ast.Literal{Text: "1", LitKind: ast.LiteralInt},
			},
		},
	}
	scope := &ast.ScopeDecl{
		Sp:   sp(1),
		Name: "M",
		Members: []ast.ScopeMember{
			{Visibility: ast.Private, Var: &ast.VarDecl{
				Sp: sp(1), Name: "counter", Type: counterType,
				Init: &ast.Literal{Text: "0", LitKind: ast.LiteralInt},
			}},
			{Visibility: ast.Public, Func: &ast.FunctionDecl{
				Sp: sp(2), Name: "inc", Scope: "M", Visibility: ast.Public,
				ReturnType: ast.TypeRef{Name: "void"}, Body: incBody,
			}},
		},
	}
	return &ast.Unit{Path: "/proj/m.cnx", Decls: []ast.Decl{scope}}
}

func TestRunEmitsScopeCounter(t *testing.T) {
	fs := newMemFS()
	fs.files["/proj/m.cnx"] = []byte("scope M { ... }")

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	parse := func(path, src string) (*ast.Unit, error) {
		return scopeCounterUnit(), nil
	}

	orc, err := New("/proj", config.New(), fs, log, parse, "test-version")
	require.NoError(t, err)

	result, err := orc.Run("/proj", nil, []string{"/proj/m.cnx"}, "/proj/build")
	require.NoError(t, err)
	require.True(t, result.Succeeded())
	require.Len(t, result.Units, 1)

	u := result.Units[0]
	assert.False(t, u.Aborted)
	assert.Contains(t, u.Code, "M_inc")
	assert.Contains(t, u.Code, "counter = (counter + 1);")
	assert.Contains(t, u.Code, "Generated by C-Next Transpiler")

	written, ok := fs.files[u.OutputPath]
	require.True(t, ok)
	assert.Equal(t, u.Code, string(written))
}

// divByZeroUnit builds a variant of spec.md §8 end-to-end scenario 1
// (`fn main() -> i32 { u32 a <- 10; return a / 0; }`) using a literal
// zero divisor, the unambiguous half of the division-by-zero
// analyzer's contract (the const-identifier half is covered directly
// in package analyze's own tests).
func divByZeroUnit() *ast.Unit {
	u32 := ast.TypeRef{Name: "u32"}
	body := []ast.Stmt{
		&ast.VarDeclStmt{Decl: &ast.VarDecl{Name: "a", Type: u32, Init: &ast.Literal{Text: "10", LitKind: ast.LiteralInt}}},
		&ast.ReturnStmt{Value: &ast.BinaryExpr{
			Sp: sp(1), Op: "/",
			Left:  &ast.Identifier{Name: "a"},
			Right: &ast.Literal{Text: "0", LitKind: ast.LiteralInt},
		}},
	}
	fn := &ast.FunctionDecl{Name: "main", ReturnType: ast.TypeRef{Name: "i32"}, Body: body}
	return &ast.Unit{Path: "/proj/d.cnx", Decls: []ast.Decl{fn}}
}

func TestRunRejectsDivisionByZero(t *testing.T) {
	fs := newMemFS()
	fs.files["/proj/d.cnx"] = []byte("fn main() -> i32 { ... }")
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	parse := func(path, src string) (*ast.Unit, error) { return divByZeroUnit(), nil }
	orc, err := New("/proj", config.New(), fs, log, parse, "test-version")
	require.NoError(t, err)

	result, err := orc.Run("/proj", nil, []string{"/proj/d.cnx"}, "/proj/build")
	require.NoError(t, err)
	require.False(t, result.Succeeded())
	require.Len(t, result.Units, 1)

	u := result.Units[0]
	assert.True(t, u.Aborted)
	require.NotEmpty(t, u.Diagnostics)
	found := false
	for _, d := range u.Diagnostics {
		if d.Code == diag.CodeDivisionByZero {
			found = true
		}
	}
	assert.True(t, found, "expected E0800 among diagnostics, got %+v", u.Diagnostics)
	assert.Empty(t, fs.files["/proj/build/d.c"])
}

// TestRunReportsConflictsAndSuppressesAllOutputs covers spec.md §8
// end-to-end scenario 5: two units both declaring `helper` at file
// scope conflict and suppress both outputs.
func TestRunReportsConflictsAndSuppressesAllOutputs(t *testing.T) {
	fs := newMemFS()
	fs.files["/proj/a.cnx"] = []byte("fn helper() -> void {}")
	fs.files["/proj/b.cnx"] = []byte("fn helper() -> void {}")
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	makeFn := func(path string) *ast.Unit {
		return &ast.Unit{Path: path, Decls: []ast.Decl{
			&ast.FunctionDecl{Name: "helper", Visibility: ast.Public, ReturnType: ast.TypeRef{Name: "void"}},
		}}
	}
	parse := func(path, src string) (*ast.Unit, error) { return makeFn(path), nil }

	orc, err := New("/proj", config.New(), fs, log, parse, "test-version")
	require.NoError(t, err)

	result, err := orc.Run("/proj", nil, []string{"/proj/a.cnx", "/proj/b.cnx"}, "/proj/build")
	require.NoError(t, err)
	require.False(t, result.Succeeded())
	assert.NotEmpty(t, result.Conflicts)
	assert.Empty(t, result.Units, "no unit should be emitted once a whole-build conflict is found")
}

func TestRunSkipsPreviouslyEmittedHeader(t *testing.T) {
	fs := newMemFS()
	fs.files["/proj/gen.h"] = []byte("/* Generated by C-Next Transpiler. Do not edit by hand. */\nvoid foo(void);\n")
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	orc, err := New("/proj", config.New(), fs, log, func(p, s string) (*ast.Unit, error) {
		return &ast.Unit{Path: p}, nil
	}, "test-version")
	require.NoError(t, err)

	_, err = orc.Run("/proj", []string{"/proj/gen.h"}, nil, "/proj/build")
	require.NoError(t, err)
	assert.Empty(t, orc.Table.GetByFile("/proj/gen.h"), "symbols from a re-ingested emitted header must not appear")
}
