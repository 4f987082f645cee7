package comments

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractLineAndBlockComments(t *testing.T) {
	src := "u32 x <- 1; // hello\n/* block\n   spans lines */\nu32 y <- 2;\n"
	cs := Extract("t.cnx", src)
	require.Len(t, cs, 2)

	assert.Equal(t, KindLine, cs[0].Kind)
	assert.Equal(t, "// hello", cs[0].Text)
	assert.Equal(t, 1, cs[0].Span.Line)

	assert.Equal(t, KindBlock, cs[1].Kind)
	assert.Equal(t, 2, cs[1].Span.Line)
	assert.Equal(t, 3, cs[1].Span.EndLine)
}

func TestExtractSkipsMarkersInsideStringLiterals(t *testing.T) {
	src := `bounded_string<8> s <- "http://x"; // not a comment marker inside the string above`
	cs := Extract("t.cnx", src)
	require.Len(t, cs, 1)
	assert.Equal(t, KindLine, cs[0].Kind)
}

func TestValidateRejectsLineSpliceBackslash(t *testing.T) {
	cs := []Comment{{Kind: KindLine, Text: "// continues \\"}}
	diags := Validate(cs)
	require.Len(t, diags, 1)
	assert.Equal(t, "MISRA-3.2", diags[0].Code)
}

func TestValidateRejectsNestedBlockMarker(t *testing.T) {
	cs := []Comment{{Kind: KindBlock, Text: "/* outer /* inner */"}}
	diags := Validate(cs)
	require.Len(t, diags, 1)
	assert.Equal(t, "MISRA-3.1", diags[0].Code)
}

func TestValidateAllowsURISchemeInComment(t *testing.T) {
	cs := []Comment{{Kind: KindLine, Text: "// see https://example.com/docs"}}
	assert.Empty(t, Validate(cs))
}

func TestValidateAcceptsCleanComments(t *testing.T) {
	cs := []Comment{
		{Kind: KindLine, Text: "// a plain comment"},
		{Kind: KindBlock, Text: "/* a plain block */"},
	}
	assert.Empty(t, Validate(cs))
}
