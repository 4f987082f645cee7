package analyze

import (
	"github.com/cnext-lang/cnextc/ast"
	"github.com/cnext-lang/cnextc/diag"
	"github.com/cnext-lang/cnextc/symtab"
)

// initScope is one block's declared-variable map: name -> initialized.
type initScope map[string]bool

// initState is the stack of nested block scopes the Initialization
// analyzer maintains while walking one function body (spec.md §4.4,
// "Initialization analyzer").
type initState struct {
	stack []initScope
}

func newInitState() *initState { return &initState{stack: []initScope{{}}} }

func (s *initState) push() { s.stack = append(s.stack, initScope{}) }
func (s *initState) pop()  { s.stack = s.stack[:len(s.stack)-1] }

func (s *initState) declare(name string, initialized bool) {
	s.stack[len(s.stack)-1][name] = initialized
}

// markInitialized flips the innermost scope binding name was declared
// in; if name was never declared in this function (e.g. a parameter
// or external symbol) it is a no-op here -- callers seed those
// separately.
func (s *initState) markInitialized(name string) {
	for i := len(s.stack) - 1; i >= 0; i-- {
		if _, ok := s.stack[i][name]; ok {
			s.stack[i][name] = true
			return
		}
	}
}

// isInitialized walks outward through the scope stack.
func (s *initState) isInitialized(name string) (initialized, declared bool) {
	for i := len(s.stack) - 1; i >= 0; i-- {
		if v, ok := s.stack[i][name]; ok {
			return v, true
		}
	}
	return false, false
}

// snapshot captures the full stack's init flags, keyed by name (the
// innermost binding wins, matching isInitialized's outward walk).
func (s *initState) snapshot() map[string]bool {
	out := make(map[string]bool)
	for _, scope := range s.stack {
		for name, v := range scope {
			out[name] = v
		}
	}
	return out
}

// intersect merges two post-branch snapshots: a name is initialized
// after the merge only if both report it initialized (spec.md §4.4:
// "a variable is initialized after a branch only if all branches
// initialize it"). Names absent from one side (out of that branch's
// visible scope) are treated as not-initialized-there.
func intersect(a, b map[string]bool) map[string]bool {
	out := make(map[string]bool)
	for name, va := range a {
		out[name] = va && b[name]
	}
	return out
}

func (s *initState) applySnapshot(snap map[string]bool) {
	for i := len(s.stack) - 1; i >= 0; i-- {
		for name := range s.stack[i] {
			if v, ok := snap[name]; ok {
				s.stack[i][name] = v
			}
		}
	}
}

// Initialization is the flow-sensitive use-before-init checker
// (spec.md §4.4 #3, the hardest analyzer).
func Initialization(unit *ast.Unit, tab *symtab.Table, src string) *diag.Bag {
	bag := &diag.Bag{}
	var walkFn func(f *ast.FunctionDecl)
	walkFn = func(f *ast.FunctionDecl) {
		st := newInitState()
		for _, p := range f.Params {
			// Known C-function external parameters and this function's
			// own parameters are considered initialized on entry.
			st.declare(p.Name, true)
		}
		walkBlock(f.Body, st, bag)
	}
	for _, d := range unit.Decls {
		switch n := d.(type) {
		case *ast.FunctionDecl:
			walkFn(n)
		case *ast.ScopeDecl:
			for _, m := range n.Members {
				if m.Func != nil {
					walkFn(m.Func)
				}
			}
		}
	}
	return bag
}

func walkBlock(stmts []ast.Stmt, st *initState, bag *diag.Bag) {
	for _, stmt := range stmts {
		walkStmt(stmt, st, bag)
	}
}

func walkStmt(stmt ast.Stmt, st *initState, bag *diag.Bag) {
	switch n := stmt.(type) {
	case *ast.VarDeclStmt:
		initialized := n.Decl.Init != nil
		if n.Decl.Init != nil {
			checkExpr(n.Decl.Init, st, bag)
		}
		st.declare(n.Decl.Name, initialized)

	case *ast.AssignStmt:
		checkExpr(n.Value, st, bag)
		if id, ok := n.Target.(*ast.Identifier); ok {
			st.markInitialized(id.Name)
		} else {
			checkExpr(n.Target, st, bag)
		}

	case *ast.ExprStmt:
		checkExpr(n.Expr, st, bag)

	case *ast.ReturnStmt:
		if n.Value != nil {
			checkExpr(n.Value, st, bag)
		}

	case *ast.IfStmt:
		checkExpr(n.Cond, st, bag)
		before := st.snapshot()
		st.push()
		walkBlock(n.Then, st, bag)
		thenSnap := st.snapshot()
		st.pop()

		st.push()
		st.applySnapshot(before)
		walkBlock(n.Else, st, bag)
		elseSnap := st.snapshot()
		st.pop()

		if n.Else == nil {
			// No else branch: nothing can be guaranteed initialized that
			// wasn't already, before the if.
			st.applySnapshot(intersect(thenSnap, before))
		} else {
			st.applySnapshot(intersect(thenSnap, elseSnap))
		}

	case *ast.WhileStmt:
		checkExpr(n.Cond, st, bag)
		before := st.snapshot()
		st.push()
		walkBlock(n.Body, st, bag)
		st.pop()
		// A while body may run zero times; nothing new is guaranteed.
		st.applySnapshot(before)

	case *ast.DoWhileStmt:
		st.push()
		walkBlock(n.Body, st, bag)
		bodySnap := st.snapshot()
		st.pop()
		st.applySnapshot(bodySnap)
		checkExpr(n.Cond, st, bag)

	case *ast.ForStmt:
		before := st.snapshot()
		st.push()
		if n.Init != nil {
			walkStmt(n.Init, st, bag)
		}
		if n.Cond != nil {
			checkExpr(n.Cond, st, bag)
		}
		walkBlock(n.Body, st, bag)
		if n.Update != nil {
			walkStmt(n.Update, st, bag)
		}
		st.pop()
		st.applySnapshot(before)

	case *ast.CriticalStmt:
		walkBlock(n.Body, st, bag)

	case *ast.SwitchStmt:
		checkExpr(n.Scrutinee, st, bag)
		before := st.snapshot()
		var branchSnaps []map[string]bool
		for _, c := range n.Cases {
			st.push()
			st.applySnapshot(before)
			walkBlock(c.Body, st, bag)
			branchSnaps = append(branchSnaps, st.snapshot())
			st.pop()
		}
		if n.Default != nil {
			st.push()
			st.applySnapshot(before)
			walkBlock(n.Default, st, bag)
			branchSnaps = append(branchSnaps, st.snapshot())
			st.pop()
		} else {
			branchSnaps = append(branchSnaps, before)
		}
		merged := branchSnaps[0]
		for _, snap := range branchSnaps[1:] {
			merged = intersect(merged, snap)
		}
		st.applySnapshot(merged)
	}
}

// checkExpr reports a use-before-init error for every bare identifier
// read in e that is declared-but-not-yet-initialized in the current
// scope stack. Identifiers not declared at all (globals, this/scope
// members, external symbols) are not this analyzer's concern.
func checkExpr(e ast.Expr, st *initState, bag *diag.Bag) {
	if e == nil {
		return
	}
	if id, ok := e.(*ast.Identifier); ok {
		if initialized, declared := st.isInitialized(id.Name); declared && !initialized {
			bag.Addf(diag.CodeUseBeforeInit, "use of possibly-uninitialized variable `%s`", id.Span(), id.Name)
		}
		return
	}
	switch n := e.(type) {
	case *ast.BinaryExpr:
		checkExpr(n.Left, st, bag)
		checkExpr(n.Right, st, bag)
	case *ast.UnaryExpr:
		checkExpr(n.Operand, st, bag)
	case *ast.CallExpr:
		for _, a := range n.Args {
			checkExpr(a, st, bag)
		}
	case *ast.MemberExpr:
		checkExpr(n.Target, st, bag)
	case *ast.IndexExpr:
		checkExpr(n.Target, st, bag)
		checkExpr(n.Index, st, bag)
	case *ast.SliceExpr:
		checkExpr(n.Target, st, bag)
		checkExpr(n.Start, st, bag)
		checkExpr(n.Width, st, bag)
	}
}
