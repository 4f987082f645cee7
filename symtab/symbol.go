// Package symtab is the in-memory index of every symbol collected
// from every source unit and every C/C++ header reachable from them
// (spec.md §3, §4.1). It is populated once per run by the orchestrator
// and is read-only during analysis and code generation.
package symtab

import "github.com/cnext-lang/cnextc/diag"

// SourceLanguage distinguishes the three kinds of unit a Symbol can
// originate from. Symbols may share a name across languages (an
// overload set); within one language a name collision is a hard
// error (spec.md §3).
type SourceLanguage int

const (
	LangCnx SourceLanguage = iota
	LangC
	LangCpp
)

func (l SourceLanguage) String() string {
	switch l {
	case LangC:
		return "c"
	case LangCpp:
		return "c++"
	default:
		return "cnx"
	}
}

type Kind int

const (
	KindFunction Kind = iota
	KindVariable
	KindStruct
	KindEnum
	KindBitmap
	KindRegister
	KindScope
	KindScopeMember
	KindTypedef
)

func (k Kind) String() string {
	return [...]string{
		"function", "variable", "struct", "enum", "bitmap",
		"register", "scope", "scope_member", "typedef",
	}[k]
}

// AccessModifier mirrors ast.Visibility for scope members collected
// into the table (symtab does not import ast to avoid a dependency
// cycle with packages that build symtab entries from headers).
type AccessModifier int

const (
	AccessPrivate AccessModifier = iota
	AccessPublic
)

// Param is a function parameter as recorded in the symbol table.
type Param struct {
	Name     string
	TypeName string
}

// Symbol is uniquely identified by (Name, Language, File). Multiple
// Symbols may share a Name across languages.
type Symbol struct {
	Name       string
	Language   SourceLanguage
	File       string
	Kind       Kind
	TypeName   string
	Span       diag.Span
	IsExported bool
	Params     []Param        // set only for KindFunction
	Access     AccessModifier // set only for KindScopeMember
}

// StructFieldInfo records one field of a collected struct, keyed by
// struct name then field name in Table.StructFields.
type StructFieldInfo struct {
	Type          string
	ArrayDims     []int
	CapacityPlus1 bool // true when the rightmost dimension reserves a NUL byte
}

// Conflict is a pair of same-(name,language) Symbols declared in
// different files.
type Conflict struct {
	Name     string
	Language SourceLanguage
	Symbols  []Symbol
}
