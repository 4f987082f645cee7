package codegen

import (
	"fmt"

	"github.com/cnext-lang/cnextc/assign"
	"github.com/cnext-lang/cnextc/ast"
	"github.com/cnext-lang/cnextc/collect"
	"github.com/cnext-lang/cnextc/effect"
	"github.com/cnext-lang/cnextc/symtab"
	"github.com/cnext-lang/cnextc/types"
)

// Generator owns all mutable per-unit state (spec.md §5: "owned by the
// code generator for one unit and discarded afterward"): the type
// registry, the pending-temp list the for/while hoisting needs, the
// modified-parameter set the auto-const inference consumes, and the
// drained effects.
type Generator struct {
	reg *Registry

	Table   *symtab.Table
	Scopes  map[string]*collect.ScopeInfo
	Bitmaps map[string]*ast.BitmapDecl
	Regs    map[string]*ast.RegisterDecl

	Types *types.Registry

	// CppMode is true once cppDetected has latched; it changes how
	// rvalue-to-pointer materialization is lowered (spec.md §4.7:
	// "temp variable (C++ mode) or a compound literal (C mode)").
	CppMode bool

	// BuildMode selects which overflow helper family the Helper and
	// Include Emitter generates: "release" (clamp) or "debug" (panic).
	BuildMode string

	out *outputWriter

	pendingTemps []string // hoisted statements preceding a for/while
	tempCounter  int

	ModifiedParams map[string]bool // "<function>.<param>" -> true for params written to, fixpoint computed by caller

	// Globals is the set of scope-member variable names visible as
	// globals to assign.Build's HasGlobal classification.
	Globals map[string]bool

	// PendingStatics holds, per "scope.function" key, the scope vars
	// that single-use promotion (spec.md §3) turns into that function's
	// own `static` locals instead of file-scope globals.
	PendingStatics map[string][]*ast.VarDecl

	// CurrentScope/CurrentFunc track which scope/function body is being
	// emitted, so identifier lookup can apply private-const inlining and
	// the single-use static-local promotion (spec.md §3/§4.3).
	CurrentScope string
	CurrentFunc  string

	effects *effect.Bag
}

// NewGenerator builds a Generator for one source unit.
func NewGenerator(reg *Registry, tab *symtab.Table, scopes map[string]*collect.ScopeInfo,
	bitmaps map[string]*ast.BitmapDecl, regs map[string]*ast.RegisterDecl, cppMode bool, buildMode string) *Generator {
	return &Generator{
		reg: reg, Table: tab, Scopes: scopes, Bitmaps: bitmaps, Regs: regs,
		Types: types.NewRegistry(), CppMode: cppMode, BuildMode: buildMode,
		out: newOutputWriter("  "), effects: &effect.Bag{}, ModifiedParams: make(map[string]bool),
		Globals: make(map[string]bool), PendingStatics: make(map[string][]*ast.VarDecl),
	}
}

// inlineConst returns the literal text of a private const scope member
// named name in the current scope, and whether one exists.
func (g *Generator) inlineConst(name string) (string, bool) {
	info, ok := g.Scopes[g.CurrentScope]
	if !ok {
		return "", false
	}
	text, ok := info.InlineConsts[name]
	return text, ok
}

func (g *Generator) Effects() *effect.Bag { return g.effects }
func (g *Generator) recordEffect(e effect.Effect) { g.effects.Add(e) }
func (g *Generator) recordEffects(fx *effect.Bag) { g.effects.Merge(fx) }

// newTemp allocates a fresh compiler-private temp name; per spec.md
// §4.4 #1 these use a reserved prefix so ParameterNaming can reject
// any user code that collides with them.
func (g *Generator) newTemp() string {
	g.tempCounter++
	return fmt.Sprintf("__cnx_tmp%d", g.tempCounter)
}

func (g *Generator) hoistTemp(stmt string) { g.pendingTemps = append(g.pendingTemps, stmt) }

func (g *Generator) drainHoistedTemps() []string {
	temps := g.pendingTemps
	g.pendingTemps = nil
	return temps
}

// assignEnv adapts the Generator's state to assign.Env, the narrow
// capability interface package assign needs (spec.md §9: capability
// traits instead of one wide orchestrator interface).
func (g *Generator) assignEnv() *assign.Env {
	return &assign.Env{
		Types:     g.Types,
		Bitmaps:   g.Bitmaps,
		Registers: g.Regs,
		EmitExpr: func(e ast.Expr) string {
			code, fx := g.EmitExpr(e)
			g.recordEffects(fx)
			return code
		},
	}
}

// EmitExpr dispatches e to its registered generator by Kind().
func (g *Generator) EmitExpr(e ast.Expr) (string, *effect.Bag) {
	if e == nil {
		return "", &effect.Bag{}
	}
	fn, ok := g.reg.exprFns[e.Kind()]
	if !ok {
		return fmt.Sprintf("/* unsupported expr kind %q */", e.Kind()), &effect.Bag{}
	}
	return fn(g, e)
}

// EmitStmt dispatches s to its registered generator, writing directly
// to g.out.
func (g *Generator) EmitStmt(s ast.Stmt) {
	if s == nil {
		return
	}
	fn, ok := g.reg.stmtFns[s.Kind()]
	if !ok {
		g.out.writeil(fmt.Sprintf("/* unsupported stmt kind %q */", s.Kind()))
		return
	}
	fn(g, s)
}

// EmitDecl dispatches d to its registered generator.
func (g *Generator) EmitDecl(d ast.Decl) {
	if d == nil {
		return
	}
	fn, ok := g.reg.declFns[d.Kind()]
	if !ok {
		g.out.writeil(fmt.Sprintf("/* unsupported decl kind %q */", d.Kind()))
		return
	}
	fn(g, d)
}

func (g *Generator) Output() string { return g.out.String() }
