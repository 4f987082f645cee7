package diag_test

import (
	"testing"

	"github.com/cnext-lang/cnextc/diag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnosticErrorFormat(t *testing.T) {
	d := diag.New(diag.CodeDivisionByZero, "division by zero", diag.Span{File: "a.cnx", Line: 3, Column: 12})
	assert.Equal(t, "error[E0800]: division by zero at 3:12", d.Error())
}

func TestWarningSeverityDoesNotReadAsError(t *testing.T) {
	d := diag.NewWarning(diag.CodeCommentNesting, "nested comment", diag.Span{Line: 1, Column: 1})
	assert.Equal(t, diag.SeverityWarning, d.Severity)
	assert.Contains(t, d.Error(), "warning[MISRA-3.1]")
}

func TestBagHasErrorsOnlyCountsErrors(t *testing.T) {
	var b diag.Bag
	b.Warnf(diag.CodeCommentSplice, "trailing backslash", diag.Span{Line: 1, Column: 1})
	require.False(t, b.HasErrors())

	b.Addf(diag.CodeUnknownIdentifier, "unknown identifier %q", diag.Span{Line: 2, Column: 4}, "foo")
	require.True(t, b.HasErrors())
	require.Len(t, b.Items(), 2)
}

func TestBagMerge(t *testing.T) {
	var a, b diag.Bag
	a.Addf(diag.CodeDirectRecursion, "recursive call", diag.Span{})
	b.Addf(diag.CodeFloatModulo, "float modulo", diag.Span{})
	a.Merge(&b)
	assert.Len(t, a.Items(), 2)
}
