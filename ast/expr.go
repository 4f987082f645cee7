package ast

import "github.com/cnext-lang/cnextc/diag"

// Expr is any expression node.
type Expr interface {
	Node
	exprNode()
}

type LiteralKind int

const (
	LiteralInt LiteralKind = iota
	LiteralFloat
	LiteralBool
	LiteralString
)

// Literal carries the literal exactly as written, suffix included
// (e.g. "10u64", "1.5f32", "0x1F"), so the type resolver and the
// literal-suffix transform in codegen can parse it once each.
type Literal struct {
	Sp      diag.Span
	Text    string
	LitKind LiteralKind
}

func (n *Literal) Span() diag.Span { return n.Sp }
func (n *Literal) Kind() string    { return "literal" }
func (*Literal) exprNode()         {}

type Identifier struct {
	Sp   diag.Span
	Name string
}

func (n *Identifier) Span() diag.Span { return n.Sp }
func (n *Identifier) Kind() string    { return "identifier" }
func (*Identifier) exprNode()         {}

type BinaryExpr struct {
	Sp    diag.Span
	Op    string
	Left  Expr
	Right Expr
}

func (n *BinaryExpr) Span() diag.Span { return n.Sp }
func (n *BinaryExpr) Kind() string    { return "binary" }
func (*BinaryExpr) exprNode()         {}

type UnaryExpr struct {
	Sp      diag.Span
	Op      string
	Operand Expr
}

func (n *UnaryExpr) Span() diag.Span { return n.Sp }
func (n *UnaryExpr) Kind() string    { return "unary" }
func (*UnaryExpr) exprNode()         {}

// CallExpr is a function call. Callee is the name as written, possibly
// scope-qualified ("Scope.member"). The field is never rewritten;
// analyze.FunctionCall maps "Scope.member" to "Scope_member" itself
// when checking that the callee is defined.
type CallExpr struct {
	Sp     diag.Span
	Callee string
	Args   []Expr
}

func (n *CallExpr) Span() diag.Span { return n.Sp }
func (n *CallExpr) Kind() string    { return "call" }
func (*CallExpr) exprNode()         {}

// MemberExpr is `target.field`, including `this.field` and
// `Scope.field` (Target is an Identifier named "this"/the scope name
// in those cases).
type MemberExpr struct {
	Sp     diag.Span
	Target Expr
	Field  string
}

func (n *MemberExpr) Span() diag.Span { return n.Sp }
func (n *MemberExpr) Kind() string    { return "member" }
func (*MemberExpr) exprNode()         {}

// IndexExpr is `target[index]`: an array element or a single-bit
// access on a scalar/bitmap, disambiguated later by the type resolver.
type IndexExpr struct {
	Sp     diag.Span
	Target Expr
	Index  Expr
}

func (n *IndexExpr) Span() diag.Span { return n.Sp }
func (n *IndexExpr) Kind() string    { return "index" }
func (*IndexExpr) exprNode()         {}

// SliceExpr is `target[start, width]`: a bit-range access on a scalar
// or register member, or a bounded substring/slice operation.
type SliceExpr struct {
	Sp     diag.Span
	Target Expr
	Start  Expr
	Width  Expr
}

func (n *SliceExpr) Span() diag.Span { return n.Sp }
func (n *SliceExpr) Kind() string    { return "slice" }
func (*SliceExpr) exprNode()         {}
