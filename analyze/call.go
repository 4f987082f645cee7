package analyze

import (
	"strings"

	"github.com/cnext-lang/cnextc/ast"
	"github.com/cnext-lang/cnextc/diag"
	"github.com/cnext-lang/cnextc/symtab"
)

// builtinIntrinsics are compiler-built-in functions always considered
// defined (spec.md §4.4: "compiler built-ins (the safe-division
// intrinsics)").
var builtinIntrinsics = map[string]bool{
	"safe_div": true,
	"safe_mod": true,
}

// stdlibAllowList is the curated per-standard-library allow-list
// spec.md §4.4 names: stdio.h, stdlib.h, string.h, math.h, ctype.h,
// time.h, assert.h. There is no per-target framework allow-list; a
// framework function counts as defined only through a symbol already
// in the table.
var stdlibAllowList = map[string]bool{
	// stdio.h
	"printf": true, "fprintf": true, "sprintf": true, "snprintf": true,
	"puts": true, "fputs": true, "getchar": true, "putchar": true,
	// stdlib.h
	"malloc": true, "free": true, "calloc": true, "realloc": true,
	"abs": true, "atoi": true, "atof": true, "exit": true, "abort": true,
	// string.h
	"strlen": true, "strcmp": true, "strncmp": true, "strcpy": true,
	"strncpy": true, "memcpy": true, "memset": true, "memcmp": true, "strcat": true,
	// math.h
	"sqrt": true, "pow": true, "sin": true, "cos": true, "tan": true,
	"floor": true, "ceil": true, "fabs": true, "fmod": true,
	// ctype.h
	"isalpha": true, "isdigit": true, "isspace": true, "toupper": true, "tolower": true,
	// time.h
	"time": true, "clock": true,
	// assert.h
	"assert": true,
}

// FunctionCall enforces define-before-use and forbids direct
// self-recursion (spec.md §4.4 #4). It collects scope names in a
// first pass so `Scope.member` call syntax resolves to `Scope_member`
// the same way the code generator's name mangling does.
func FunctionCall(unit *ast.Unit, tab *symtab.Table, src string) *diag.Bag {
	bag := &diag.Bag{}

	scopeNames := make(map[string]bool)
	for _, d := range unit.Decls {
		if sc, ok := d.(*ast.ScopeDecl); ok {
			scopeNames[sc.Name] = true
		}
	}

	defined := make(map[string]bool)
	registerFuncSig := func(scope, name string) string {
		if scope != "" {
			return scope + "_" + name
		}
		return name
	}

	// Symbols from C headers / other units already in the table count
	// as defined regardless of textual order.
	for _, s := range tab.GetByKind(symtab.KindFunction) {
		defined[s.Name] = true
	}

	var currentlyDefining string

	checkCallExpr := func(ce *ast.CallExpr) {
		callee := ce.Callee
		if i := strings.Index(callee, "."); i > 0 && scopeNames[callee[:i]] {
			callee = callee[:i] + "_" + callee[i+1:]
		}
		if builtinIntrinsics[callee] || stdlibAllowList[callee] {
			return
		}
		if callee == currentlyDefining {
			bag.Addf(diag.CodeDirectRecursion,
				"recursive call to '%s' is forbidden (MISRA C:2012 Rule 17.2)", ce.Sp, callee)
			return
		}
		if !defined[callee] {
			bag.Addf(diag.CodeCallBeforeDefinition, "call to '%s' before its definition", ce.Sp, callee)
		}
	}

	scanBody := func(fnSig string, body []ast.Stmt) {
		prev := currentlyDefining
		currentlyDefining = fnSig
		ast.Inspect(body, func(n ast.Node) bool {
			if ce, ok := n.(*ast.CallExpr); ok {
				checkCallExpr(ce)
			}
			return true
		})
		currentlyDefining = prev
	}

	for _, d := range unit.Decls {
		switch n := d.(type) {
		case *ast.FunctionDecl:
			scanBody(registerFuncSig("", n.Name), n.Body)
			defined[n.Name] = true
		case *ast.ScopeDecl:
			for _, m := range n.Members {
				if m.Func != nil {
					sig := registerFuncSig(n.Name, m.Func.Name)
					scanBody(sig, m.Func.Body)
					defined[m.Func.Name] = true
					defined[sig] = true
				}
			}
		}
	}
	return bag
}
