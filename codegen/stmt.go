package codegen

import (
	"fmt"

	"github.com/cnext-lang/cnextc/assign"
	"github.com/cnext-lang/cnextc/ast"
	"github.com/cnext-lang/cnextc/types"
)

func registerStmtGenerators(r *Registry) {
	r.RegisterStmt("var_decl", genVarDeclStmt)
	r.RegisterStmt("assign", genAssignStmt)
	r.RegisterStmt("expr_stmt", genExprStmt)
	r.RegisterStmt("return", genReturnStmt)
	r.RegisterStmt("if", genIfStmt)
	r.RegisterStmt("while", genWhileStmt)
	r.RegisterStmt("do_while", genDoWhileStmt)
	r.RegisterStmt("for", genForStmt)
	r.RegisterStmt("critical", genCriticalStmt)
	r.RegisterStmt("switch", genSwitchStmt)
}

func genVarDeclStmt(g *Generator, s ast.Stmt) {
	n := s.(*ast.VarDeclStmt).Decl
	g.Types.Declare(n.Name, types.FromTypeRef(n.Type, g.isEnumTypeName(n.Type.Name),
		g.Bitmaps[n.Type.Name] != nil, g.Table.StructFields[n.Type.Name] != nil))
	decl := g.cDeclare(n.Name, n.Type)
	if n.Init == nil {
		g.out.writeil(decl + ";")
		return
	}
	init, fx := g.EmitExpr(n.Init)
	g.recordEffects(fx)
	g.out.writeil(fmt.Sprintf("%s = %s;", decl, init))
}

func genAssignStmt(g *Generator, s ast.Stmt) {
	n := s.(*ast.AssignStmt)
	ctx := assign.Build(n, g.Globals)
	if ctx.HasThis && len(ctx.Path) == 2 && g.CurrentScope != "" && !isStaticLocal(g, ctx.Path[1]) {
		// `this.x` writes the same scope-mangled name genMember reads; a
		// promoted static local keeps its bare name.
		scoped := *ctx
		scoped.Path = []string{"this", mangledFuncName(g.CurrentScope, ctx.Path[1])}
		ctx = &scoped
	}
	kind := assign.Classify(ctx, g.assignEnv())
	code, fx, err := assign.Handle(ctx, kind, g.assignEnv())
	for _, hoisted := range g.drainHoistedTemps() {
		g.out.writeil(hoisted)
	}
	if err != nil {
		g.out.writeil(fmt.Sprintf("/* assignment error: %s */", err))
		return
	}
	g.recordEffects(fx)
	g.out.writeil(code)
}

func genExprStmt(g *Generator, s ast.Stmt) {
	n := s.(*ast.ExprStmt)
	code, fx := g.EmitExpr(n.Expr)
	for _, hoisted := range g.drainHoistedTemps() {
		g.out.writeil(hoisted)
	}
	g.recordEffects(fx)
	g.out.writeil(code + ";")
}

func genReturnStmt(g *Generator, s ast.Stmt) {
	n := s.(*ast.ReturnStmt)
	if n.Value == nil {
		g.out.writeil("return;")
		return
	}
	code, fx := g.EmitExpr(n.Value)
	for _, hoisted := range g.drainHoistedTemps() {
		g.out.writeil(hoisted)
	}
	g.recordEffects(fx)
	g.out.writeil(fmt.Sprintf("return %s;", code))
}

func emitBlock(g *Generator, body []ast.Stmt) {
	g.out.indent()
	for _, st := range body {
		g.EmitStmt(st)
	}
	g.out.unindent()
}

func genIfStmt(g *Generator, s ast.Stmt) {
	n := s.(*ast.IfStmt)
	cond, fx := g.EmitExpr(n.Cond)
	for _, hoisted := range g.drainHoistedTemps() {
		g.out.writeil(hoisted)
	}
	g.recordEffects(fx)
	g.out.writeil(fmt.Sprintf("if (%s) {", cond))
	emitBlock(g, n.Then)
	if n.Else != nil {
		g.out.writeil("} else {")
		emitBlock(g, n.Else)
	}
	g.out.writeil("}")
}

// genWhileStmt: a condition expression that needs a hoisted helper
// temp (e.g. a safe_div call) can't be evaluated inline in the C
// `while (...)` head, so the loop becomes `while (1) { ... hoisted
// ...; if (!cond) break; body }`, which re-runs the hoisted statements
// and re-evaluates the condition on every iteration.
func genWhileStmt(g *Generator, s ast.Stmt) {
	n := s.(*ast.WhileStmt)
	cond, fx := g.EmitExpr(n.Cond)
	hoisted := g.drainHoistedTemps()
	if len(hoisted) == 0 {
		g.recordEffects(fx)
		g.out.writeil(fmt.Sprintf("while (%s) {", cond))
		emitBlock(g, n.Body)
		g.out.writeil("}")
		return
	}
	g.recordEffects(fx)
	g.out.writeil("while (1) {")
	g.out.indent()
	for _, h := range hoisted {
		g.out.writeil(h)
	}
	g.out.writeil(fmt.Sprintf("if (!(%s)) break;", cond))
	g.out.unindent()
	emitBlock(g, n.Body)
	g.out.writeil("}")
}

func genDoWhileStmt(g *Generator, s ast.Stmt) {
	n := s.(*ast.DoWhileStmt)
	g.out.writeil("do {")
	emitBlock(g, n.Body)
	cond, fx := g.EmitExpr(n.Cond)
	hoisted := g.drainHoistedTemps()
	g.recordEffects(fx)
	if len(hoisted) > 0 {
		// The hoisted temps must run before the condition is tested
		// again; a do-while's condition sits outside any block we
		// control, so they are emitted as the last statements of the
		// body instead.
		g.out.indent()
		for _, h := range hoisted {
			g.out.writeil(h)
		}
		g.out.unindent()
	}
	g.out.writeil(fmt.Sprintf("} while (%s);", cond))
}

// genForStmt hoists init/update temps the same way genWhileStmt hoists
// condition temps: when the condition itself needs a hoisted helper,
// the loop degrades to `while(1)` form with an explicit update at the
// bottom of the body.
func genForStmt(g *Generator, s ast.Stmt) {
	n := s.(*ast.ForStmt)

	initCode := ""
	if n.Init != nil {
		initCode = captureStmt(g, n.Init)
	}
	cond, cfx := g.EmitExpr(n.Cond)
	condHoisted := g.drainHoistedTemps()
	updateCode := ""
	if n.Update != nil {
		updateCode = captureStmt(g, n.Update)
	}

	if len(condHoisted) == 0 {
		g.recordEffects(cfx)
		g.out.writeil(fmt.Sprintf("for (%s %s; %s) {", initCode, cond, updateCode))
		emitBlock(g, n.Body)
		g.out.writeil("}")
		return
	}

	g.recordEffects(cfx)
	if initCode != "" {
		g.out.writeil(initCode)
	}
	g.out.writeil("while (1) {")
	g.out.indent()
	for _, h := range condHoisted {
		g.out.writeil(h)
	}
	g.out.writeil(fmt.Sprintf("if (!(%s)) break;", cond))
	g.out.unindent()
	emitBlock(g, n.Body)
	if updateCode != "" {
		g.out.indent()
		g.out.writeil(updateCode)
		g.out.unindent()
	}
	g.out.writeil("}")
}

// captureStmt renders a single statement (typically a VarDeclStmt or
// AssignStmt used as a for-loop init/update clause) as a bare,
// unterminated fragment by running it through a scratch writer.
func captureStmt(g *Generator, s ast.Stmt) string {
	saved := g.out
	g.out = newOutputWriter(g.out.space)
	g.EmitStmt(s)
	rendered := g.out.String()
	g.out = saved
	// Strip the trailing newline and semicolon genAssignStmt/genVarDeclStmt add.
	for len(rendered) > 0 && (rendered[len(rendered)-1] == '\n' || rendered[len(rendered)-1] == ' ') {
		rendered = rendered[:len(rendered)-1]
	}
	if len(rendered) > 0 && rendered[len(rendered)-1] == ';' {
		rendered = rendered[:len(rendered)-1]
	}
	return rendered
}

func genCriticalStmt(g *Generator, s ast.Stmt) {
	n := s.(*ast.CriticalStmt)
	g.out.writeil("{")
	g.out.indent()
	g.out.writeil("cnx_isr_disable();")
	g.out.unindent()
	emitBlock(g, n.Body)
	g.out.indent()
	g.out.writeil("cnx_isr_enable();")
	g.out.unindent()
	g.out.writeil("}")
}

func genSwitchStmt(g *Generator, s ast.Stmt) {
	n := s.(*ast.SwitchStmt)
	scrutinee, fx := g.EmitExpr(n.Scrutinee)
	for _, hoisted := range g.drainHoistedTemps() {
		g.out.writeil(hoisted)
	}
	g.recordEffects(fx)
	g.out.writeil(fmt.Sprintf("switch (%s) {", scrutinee))
	for _, c := range n.Cases {
		g.out.writeil(fmt.Sprintf("case %s: {", c.Label))
		emitBlock(g, c.Body)
		g.out.indent()
		g.out.writeil("break;")
		g.out.unindent()
		g.out.writeil("}")
	}
	if n.Default != nil {
		g.out.writeil("default: {")
		emitBlock(g, n.Default)
		g.out.indent()
		g.out.writeil("break;")
		g.out.unindent()
		g.out.writeil("}")
	}
	g.out.writeil("}")
}
