package analyze

import (
	"github.com/cnext-lang/cnextc/ast"
	"github.com/cnext-lang/cnextc/comments"
	"github.com/cnext-lang/cnextc/diag"
	"github.com/cnext-lang/cnextc/symtab"
)

// CommentValidation extracts the unit's comments from its raw source
// text and validates the nesting/continuation rules (spec.md §4.4 #8,
// delegated to package comments).
func CommentValidation(unit *ast.Unit, tab *symtab.Table, src string) *diag.Bag {
	bag := &diag.Bag{}
	for _, d := range comments.Validate(comments.Extract(unit.Path, src)) {
		bag.Add(d)
	}
	return bag
}
