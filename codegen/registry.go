package codegen

import (
	"github.com/cnext-lang/cnextc/ast"
	"github.com/cnext-lang/cnextc/effect"
)

// Category is one of the three node families the registry dispatches
// over (spec.md §4.7: "Registry maps {declaration, statement,
// expression} × kind -> generator function").
type Category int

const (
	CategoryDecl Category = iota
	CategoryStmt
	CategoryExpr
)

// ExprFn renders one expression node into C source plus its effects.
type ExprFn func(g *Generator, e ast.Expr) (string, *effect.Bag)

// StmtFn renders one statement node, writing directly to g.out (most
// statements need multi-line control structures, so they write rather
// than return a string).
type StmtFn func(g *Generator, s ast.Stmt)

// DeclFn renders one top-level or scope-member declaration.
type DeclFn func(g *Generator, d ast.Decl)

// Registry is the static dispatch table spec.md §9's design note asks
// for: "the registry structure of the original translates to a static
// dispatch table keyed by the discriminant" (ast.Node.Kind()).
type Registry struct {
	exprFns map[string]ExprFn
	stmtFns map[string]StmtFn
	declFns map[string]DeclFn
}

func NewRegistry() *Registry {
	r := &Registry{
		exprFns: make(map[string]ExprFn),
		stmtFns: make(map[string]StmtFn),
		declFns: make(map[string]DeclFn),
	}
	registerExprGenerators(r)
	registerStmtGenerators(r)
	registerDeclGenerators(r)
	return r
}

func (r *Registry) RegisterExpr(kind string, fn ExprFn) { r.exprFns[kind] = fn }
func (r *Registry) RegisterStmt(kind string, fn StmtFn)  { r.stmtFns[kind] = fn }
func (r *Registry) RegisterDecl(kind string, fn DeclFn)  { r.declFns[kind] = fn }
