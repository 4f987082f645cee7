// Package collect implements the Source Symbol Collector (spec.md
// §4.3): a two-pass walk of one source unit's AST that produces
// symtab.Symbol entries for its declarations, and two auxiliary analyses the
// code generator later consumes (scope variable usage, private-const
// inlining).
package collect

import (
	"fmt"

	"github.com/cnext-lang/cnextc/ast"
	"github.com/cnext-lang/cnextc/diag"
	"github.com/cnext-lang/cnextc/symtab"
)

// ScopeInfo is everything the collector learns about one scope beyond
// the plain symbol entries: which variables are referenced from which
// functions, and which private consts can be inlined at use sites.
type ScopeInfo struct {
	Name string

	// VarUsage maps a scope variable name to the set of function names
	// (within the same scope) that reference it via `this.<name>`.
	// A variable referenced by exactly one function is a candidate for
	// promotion to that function's `static` local (spec.md §3).
	VarUsage map[string]map[string]bool

	// InlineConsts maps a private const scope member's name to the
	// literal text of its initializer, when that initializer is a bare
	// literal (spec.md §4.3: "private-const inlining list").
	InlineConsts map[string]string
}

// Result is everything the collector produced for one unit.
type Result struct {
	Symbols []symtab.Symbol
	Scopes  map[string]*ScopeInfo
	Errors  []diag.Diagnostic
}

// Collect runs both passes over unit and returns the collected
// symbols plus per-scope auxiliary analysis. It never consults the
// symtab.Table directly (symbol conflicts are reported later once all
// units have contributed) -- it only produces the Symbol slice and
// lets the caller (orchestrator) decide how to fold it in.
func Collect(unit *ast.Unit, lang symtab.SourceLanguage) Result {
	r := Result{Scopes: make(map[string]*ScopeInfo)}
	seen := make(map[string]bool) // "scope\x00name" -> declared, for duplicate-member detection within one scope

	// Pass 1: bitmaps first (registers reference them), then structs
	// inside scopes (later declarations reference them).
	for _, d := range unit.Decls {
		if sc, ok := d.(*ast.ScopeDecl); ok {
			for _, m := range sc.Members {
				if m.Bitmap != nil {
					r.collectBitmap(m.Bitmap, sc.Name, lang, seen)
				}
			}
		} else if bm, ok := d.(*ast.BitmapDecl); ok {
			r.collectBitmap(bm, "", lang, seen)
		}
	}
	for _, d := range unit.Decls {
		if sc, ok := d.(*ast.ScopeDecl); ok {
			for _, m := range sc.Members {
				if m.Struct != nil {
					r.collectStruct(m.Struct, sc.Name, lang, seen)
				}
			}
		} else if st, ok := d.(*ast.StructDecl); ok {
			r.collectStruct(st, "", lang, seen)
		}
	}

	// Pass 2: scopes, top-level structs (already done above but
	// harmless to re-check dupes), enums, registers, functions.
	for _, d := range unit.Decls {
		switch n := d.(type) {
		case *ast.ScopeDecl:
			r.collectScope(n, unit.Path, lang, seen)
		case *ast.StructDecl:
			// already collected in pass 1 for top-level structs; skip
		case *ast.EnumDecl:
			r.collectEnum(n, "", lang, seen)
		case *ast.RegisterDecl:
			r.collectRegister(n, "", lang, seen)
		case *ast.FunctionDecl:
			r.collectFunction(n, "", lang, seen, unit.Path)
		case *ast.VarDecl:
			r.Symbols = append(r.Symbols, symtab.Symbol{
				Name: n.Name, Language: lang, File: unit.Path, Kind: symtab.KindVariable,
				TypeName: n.Type.Name, Span: n.Sp, IsExported: n.Visibility == ast.Public,
			})
		}
	}
	return r
}

func dupKey(scope, name string) string { return scope + "\x00" + name }

func (r *Result) collectBitmap(b *ast.BitmapDecl, scope string, lang symtab.SourceLanguage, seen map[string]bool) {
	total := 0
	for _, f := range b.Fields {
		total += f.Width
	}
	if total != b.BackingWidth {
		r.Errors = append(r.Errors, diag.New(diag.CodeBitmapWidthMismatch,
			fmt.Sprintf("bitmap `%s` field widths sum to %d bits, expected %d", b.Name, total, b.BackingWidth), b.Sp))
	}
	r.Symbols = append(r.Symbols, symtab.Symbol{
		Name: b.Name, Language: lang, File: scope, Kind: symtab.KindBitmap,
		TypeName: fmt.Sprintf("u%d", b.BackingWidth), Span: b.Sp, IsExported: b.Visibility == ast.Public,
	})
}

func (r *Result) collectStruct(s *ast.StructDecl, scope string, lang symtab.SourceLanguage, seen map[string]bool) {
	for _, f := range s.Fields {
		if f.Name == "length" {
			r.Errors = append(r.Errors, diag.New(diag.CodeReservedField,
				"field name `length` is reserved for bounded containers", f.Sp))
		}
	}
	r.Symbols = append(r.Symbols, symtab.Symbol{
		Name: s.Name, Language: lang, File: scope, Kind: symtab.KindStruct,
		Span: s.Sp, IsExported: s.Visibility == ast.Public,
	})
}

func (r *Result) collectEnum(e *ast.EnumDecl, scope string, lang symtab.SourceLanguage, seen map[string]bool) {
	prev := int64(-1)
	first := true
	for _, m := range e.Members {
		var v int64
		if m.Value != nil {
			v = *m.Value
		} else if !first {
			v = prev + 1
		}
		if v < 0 {
			r.Errors = append(r.Errors, diag.New(diag.CodeNegativeEnumValue,
				fmt.Sprintf("enum `%s` member `%s` has negative value %d", e.Name, m.Name, v), m.Sp))
		}
		prev = v
		first = false
	}
	width := e.BitWidth
	if width == 0 {
		width = 32
	}
	r.Symbols = append(r.Symbols, symtab.Symbol{
		Name: e.Name, Language: lang, File: scope, Kind: symtab.KindEnum,
		TypeName: fmt.Sprintf("u%d", width), Span: e.Sp, IsExported: e.Visibility == ast.Public,
	})
}

func (r *Result) collectRegister(rg *ast.RegisterDecl, scope string, lang symtab.SourceLanguage, seen map[string]bool) {
	r.Symbols = append(r.Symbols, symtab.Symbol{
		Name: rg.Name, Language: lang, File: scope, Kind: symtab.KindRegister,
		Span: rg.Sp, IsExported: rg.Visibility == ast.Public,
	})
}

func (r *Result) collectFunction(f *ast.FunctionDecl, scope string, lang symtab.SourceLanguage, seen map[string]bool, file string) {
	params := make([]symtab.Param, len(f.Params))
	for i, p := range f.Params {
		params[i] = symtab.Param{Name: p.Name, TypeName: p.Type.Name}
	}
	r.Symbols = append(r.Symbols, symtab.Symbol{
		Name: f.Name, Language: lang, File: file, Kind: symtab.KindFunction,
		TypeName: f.ReturnType.Name, Span: f.Sp, IsExported: f.Visibility == ast.Public, Params: params,
	})
}

func (r *Result) collectScope(sc *ast.ScopeDecl, file string, lang symtab.SourceLanguage, seen map[string]bool) {
	info := &ScopeInfo{Name: sc.Name, VarUsage: make(map[string]map[string]bool), InlineConsts: make(map[string]string)}
	r.Scopes[sc.Name] = info

	memberNames := make(map[string]bool)
	for _, m := range sc.Members {
		d := m.Decl()
		if d == nil {
			continue
		}
		var name string
		switch n := d.(type) {
		case *ast.VarDecl:
			name = n.Name
			r.Symbols = append(r.Symbols, symtab.Symbol{
				Name: scopedName(sc.Name, n.Name), Language: lang, File: file, Kind: symtab.KindScopeMember,
				TypeName: n.Type.Name, Span: n.Sp, IsExported: m.Visibility == ast.Public,
				Access: accessOf(m.Visibility),
			})
			if m.Visibility == ast.Private && n.Type.IsConst && n.Init != nil {
				if lit, ok := n.Init.(*ast.Literal); ok {
					info.InlineConsts[n.Name] = lit.Text
				}
			}
		case *ast.FunctionDecl:
			name = n.Name
			r.collectFunction(n, sc.Name, lang, seen, file)
			recordScopeVarUsage(info, n)
		case *ast.StructDecl:
			name = n.Name
		case *ast.EnumDecl:
			name = n.Name
			r.collectEnum(n, sc.Name, lang, seen)
		case *ast.BitmapDecl:
			name = n.Name
			r.collectBitmap(n, sc.Name, lang, seen)
		case *ast.RegisterDecl:
			name = n.Name
			r.collectRegister(n, sc.Name, lang, seen)
		}
		if name == "" {
			continue
		}
		key := dupKey(sc.Name, name)
		if memberNames[name] {
			r.Errors = append(r.Errors, diag.New(diag.CodeDuplicateMember,
				fmt.Sprintf("duplicate member `%s` in scope `%s`", name, sc.Name), d.Span()))
		}
		memberNames[name] = true
		seen[key] = true
	}
	r.Symbols = append(r.Symbols, symtab.Symbol{
		Name: sc.Name, Language: lang, File: file, Kind: symtab.KindScope, Span: sc.Sp, IsExported: true,
	})
}

func accessOf(v ast.Visibility) symtab.AccessModifier {
	if v == ast.Public {
		return symtab.AccessPublic
	}
	return symtab.AccessPrivate
}

func scopedName(scope, name string) string { return scope + "." + name }

// recordScopeVarUsage walks fn's body recording every `this.<name>`
// member reference into info.VarUsage[name][fn.Name].
func recordScopeVarUsage(info *ScopeInfo, fn *ast.FunctionDecl) {
	ast.Inspect(fn.Body, func(n ast.Node) bool {
		me, ok := n.(*ast.MemberExpr)
		if !ok {
			return true
		}
		id, ok := me.Target.(*ast.Identifier)
		if !ok || id.Name != "this" {
			return true
		}
		if info.VarUsage[me.Field] == nil {
			info.VarUsage[me.Field] = make(map[string]bool)
		}
		info.VarUsage[me.Field][fn.Name] = true
		return true
	})
}

// SingleUseFunction returns the function name that exclusively
// references scope variable name, or "" if it is used by zero or
// more-than-one function (spec.md §3: "variables used in exactly one
// function are emitted as that function's static local").
func (s *ScopeInfo) SingleUseFunction(varName string) string {
	users := s.VarUsage[varName]
	if len(users) != 1 {
		return ""
	}
	for fn := range users {
		return fn
	}
	return ""
}
