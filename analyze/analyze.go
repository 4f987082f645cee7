// Package analyze implements the eight independent tree walkers of
// spec.md §4.4, run in a fixed order by RunAll. Each analyzer is a
// pure function over (ast.Unit, *symtab.Table, source text) returning
// a diag.Bag; later analyzers may assume invariants established by
// earlier ones, so RunAll stops at the first analyzer that reports
// any error (spec.md §9: "Error aggregation vs. first-error-wins").
package analyze

import (
	"github.com/cnext-lang/cnextc/ast"
	"github.com/cnext-lang/cnextc/diag"
	"github.com/cnext-lang/cnextc/symtab"
)

// Analyzer is one of the eight fixed-order walkers. src is the raw
// unit source text; only the comment-validation analyzer needs it
// (comments are not part of the ast package's tree), but every
// analyzer shares the signature so Order stays a uniform table.
type Analyzer func(unit *ast.Unit, tab *symtab.Table, src string) *diag.Bag

// Order is the fixed analyzer sequence spec.md §4.4 names, table rows
// 1 through 8.
var Order = []struct {
	Name string
	Run  Analyzer
}{
	{"parameter_naming", ParameterNaming},
	{"struct_field", StructField},
	{"initialization", Initialization},
	{"function_call", FunctionCall},
	{"null_check", NullCheck},
	{"division_by_zero", DivisionByZero},
	{"float_modulo", FloatModulo},
	{"comment_validation", CommentValidation},
}

// RunAll runs every analyzer in fixed order, stopping at (and
// including) the first one that reports any error. It returns every
// bag produced so far, keyed by analyzer name, and whether the unit
// was aborted.
func RunAll(unit *ast.Unit, tab *symtab.Table, src string) (bags map[string]*diag.Bag, aborted bool) {
	bags = make(map[string]*diag.Bag)
	for _, a := range Order {
		bag := a.Run(unit, tab, src)
		bags[a.Name] = bag
		if bag.HasErrors() {
			return bags, true
		}
	}
	return bags, false
}
