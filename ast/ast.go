// Package ast defines the node types produced by the (out-of-scope)
// .cnx parser. The grammar itself is an external collaborator; this
// package only specifies the shape of the tree every other package in
// cnextc consumes. Nodes are plain structs exposing Span and Kind;
// there is no Accept/Visitor method, and consumers walk the tree with
// Inspect or their own type switches.
package ast

import "github.com/cnext-lang/cnextc/diag"

// Node is implemented by every AST node. Kind returns a stable,
// lower-case tag used as the registry key by codegen and as the
// discriminant in diagnostics; it intentionally does not use Go's
// reflection so the registry keys are independent of type renames.
type Node interface {
	Span() diag.Span
	Kind() string
}

// Unit is one parsed source file.
type Unit struct {
	Path  string
	Decls []Decl
}

// Decl is any top-level or scope-member declaration.
type Decl interface {
	Node
	declNode()
}

// Visibility is the access modifier of a scope member.
type Visibility int

const (
	Private Visibility = iota
	Public
)

func (v Visibility) String() string {
	if v == Public {
		return "public"
	}
	return "private"
}

// OverflowBehavior selects clamp vs wrap semantics for an integer
// declaration (spec.md §3, Type Registry).
type OverflowBehavior int

const (
	OverflowWrap OverflowBehavior = iota
	OverflowClamp
)

// AccessMode is a register member's hardware access qualifier.
type AccessMode int

const (
	AccessRO AccessMode = iota
	AccessWO
	AccessRW
	AccessW1C
	AccessW1S
)

func (a AccessMode) String() string {
	switch a {
	case AccessRO:
		return "ro"
	case AccessWO:
		return "wo"
	case AccessW1C:
		return "w1c"
	case AccessW1S:
		return "w1s"
	default:
		return "rw"
	}
}

// TypeRef is a reference to a type as written in source: either one of
// the fixed-width primitives, bool, a bounded string, or a named
// struct/enum/bitmap.
type TypeRef struct {
	Sp           diag.Span
	Name         string // "u8".."u64", "i8".."i64", "f32", "f64", "bool", "string", or a declared name
	BitWidth     int    // 0 when not applicable (structs, bool)
	StringCap    int    // capacity for bounded strings, 0 otherwise
	ArrayDims    []int  // empty for scalars
	IsConst      bool
	IsAtomic     bool
	Overflow     OverflowBehavior
}

func (t TypeRef) IsArray() bool { return len(t.ArrayDims) > 0 }

// Param is one function parameter.
type Param struct {
	Sp   diag.Span
	Name string
	Type TypeRef
}

// ---- Declarations ----

type FunctionDecl struct {
	Sp         diag.Span
	Name       string
	Scope      string // enclosing scope name, "" for a top-level function
	Visibility Visibility
	Params     []Param
	ReturnType TypeRef
	Body       []Stmt
}

func (n *FunctionDecl) Span() diag.Span { return n.Sp }
func (n *FunctionDecl) Kind() string    { return "function" }
func (*FunctionDecl) declNode()         {}

type VarDecl struct {
	Sp         diag.Span
	Name       string
	Type       TypeRef
	Init       Expr // nil when uninitialized
	Visibility Visibility
	Scope      string // enclosing scope name, "" for a top-level/local variable
}

func (n *VarDecl) Span() diag.Span { return n.Sp }
func (n *VarDecl) Kind() string    { return "variable" }
func (*VarDecl) declNode()         {}

type StructField struct {
	Sp        diag.Span
	Name      string
	Type      TypeRef
	ArrayDims []int
}

type StructDecl struct {
	Sp         diag.Span
	Name       string
	Scope      string
	Visibility Visibility
	Fields     []StructField
}

func (n *StructDecl) Span() diag.Span { return n.Sp }
func (n *StructDecl) Kind() string    { return "struct" }
func (*StructDecl) declNode()         {}

type EnumMember struct {
	Sp    diag.Span
	Name  string
	Value *int64 // nil means auto-increment from the previous member
}

type EnumDecl struct {
	Sp         diag.Span
	Name       string
	Scope      string
	Visibility Visibility
	BitWidth   int // 0 when untyped (defaults to 32 at codegen time)
	Members    []EnumMember
}

func (n *EnumDecl) Span() diag.Span { return n.Sp }
func (n *EnumDecl) Kind() string    { return "enum" }
func (*EnumDecl) declNode()         {}

type BitmapField struct {
	Sp    diag.Span
	Name  string
	Width int
}

type BitmapDecl struct {
	Sp           diag.Span
	Name         string
	Scope        string
	Visibility   Visibility
	BackingWidth int // 8, 16, 24, 32 or 64
	Fields       []BitmapField
}

func (n *BitmapDecl) Span() diag.Span { return n.Sp }
func (n *BitmapDecl) Kind() string    { return "bitmap" }
func (*BitmapDecl) declNode()         {}

type RegisterMember struct {
	Sp         diag.Span
	Name       string
	Offset     int
	Access     AccessMode
	Type       TypeRef
	BitmapName string // optional bitmap binding, "" if none
}

type RegisterDecl struct {
	Sp         diag.Span
	Name       string
	Scope      string
	Visibility Visibility
	Address    uint64
	Members    []RegisterMember
}

func (n *RegisterDecl) Span() diag.Span { return n.Sp }
func (n *RegisterDecl) Kind() string    { return "register" }
func (*RegisterDecl) declNode()         {}

// ScopeMember wraps exactly one of the declaration kinds a scope can
// contain, along with the visibility it was declared with.
type ScopeMember struct {
	Visibility Visibility
	Var        *VarDecl
	Func       *FunctionDecl
	Struct     *StructDecl
	Enum       *EnumDecl
	Bitmap     *BitmapDecl
	Register   *RegisterDecl
}

// Decl returns the wrapped declaration as a Decl.
func (m ScopeMember) Decl() Decl {
	switch {
	case m.Var != nil:
		return m.Var
	case m.Func != nil:
		return m.Func
	case m.Struct != nil:
		return m.Struct
	case m.Enum != nil:
		return m.Enum
	case m.Bitmap != nil:
		return m.Bitmap
	case m.Register != nil:
		return m.Register
	default:
		return nil
	}
}

type ScopeDecl struct {
	Sp      diag.Span
	Name    string
	Members []ScopeMember
}

func (n *ScopeDecl) Span() diag.Span { return n.Sp }
func (n *ScopeDecl) Kind() string    { return "scope" }
func (*ScopeDecl) declNode()         {}
