// Package assign implements the Assignment Classifier and Handlers
// (spec.md §4.6): building an AssignmentContext from one `<-`-family
// statement, classifying it into one of ~30 AssignmentKinds by a
// priority-ordered rule list, and dispatching to the handler that
// emits the C statement for that kind.
package assign

import (
	"github.com/cnext-lang/cnextc/ast"
)

// Context is built once per assignment statement and is immutable
// once constructed (spec.md §3 "Assignment Context").
type Context struct {
	Stmt *ast.AssignStmt

	// Path is the chain of identifiers/fields on the target, left to
	// right: `this.counter` -> ["this", "counter"]; `REG.MEMBER.field`
	// -> ["REG", "MEMBER", "field"].
	Path []string

	// Subscripts holds every IndexExpr/SliceExpr encountered while
	// walking the target, in left-to-right order.
	Subscripts []ast.Expr

	SourceOp string // as written: "<-", "+<-", "-<-", ...
	COp      string // the matching C operator: "=", "+=", "-=", ...

	HasThis         bool
	HasGlobal       bool
	HasMemberAccess bool
	HasArrayAccess  bool
	IsCompound      bool
	IsSimpleIdent   bool
}

// cOpOf maps a source assignment operator to its C equivalent.
// Compound atomic/overflow operators (`+<-`, `-<-`, ...) keep their
// arithmetic verb; the handler decides whether to emit the compound
// C operator directly or route through a clamp helper.
var cOpOf = map[string]string{
	"<-":  "=",
	"+<-": "+=",
	"-<-": "-=",
	"*<-": "*=",
	"/<-": "/=",
	"%<-": "%=",
	"&<-": "&=",
	"|<-": "|=",
	"^<-": "^=",
}

// Build constructs an immutable Context from stmt. globals is the set
// of scope/global variable names visible at this point (used to set
// HasGlobal when the target's root identifier resolves to one).
func Build(stmt *ast.AssignStmt, globals map[string]bool) *Context {
	c := &Context{Stmt: stmt, SourceOp: stmt.Op, COp: cOpOf[stmt.Op]}
	c.IsCompound = stmt.Op != "<-"

	walkTarget(stmt.Target, c)

	if len(c.Path) > 0 {
		root := c.Path[0]
		if root == "this" {
			c.HasThis = true
		} else if globals[root] {
			c.HasGlobal = true
		}
	}
	c.IsSimpleIdent = len(c.Path) == 1 && len(c.Subscripts) == 0
	if len(c.Path) > 1 {
		c.HasMemberAccess = true
	}
	if len(c.Subscripts) > 0 {
		c.HasArrayAccess = true
	}
	return c
}

func walkTarget(e ast.Expr, c *Context) {
	switch n := e.(type) {
	case *ast.Identifier:
		c.Path = append(c.Path, n.Name)
	case *ast.MemberExpr:
		walkTarget(n.Target, c)
		c.Path = append(c.Path, n.Field)
	case *ast.IndexExpr:
		walkTarget(n.Target, c)
		c.Subscripts = append(c.Subscripts, n.Index)
	case *ast.SliceExpr:
		walkTarget(n.Target, c)
		c.Subscripts = append(c.Subscripts, n.Start, n.Width)
	}
}
