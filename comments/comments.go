// Package comments implements the Comment Engine (spec.md §4.3's
// "Comment Engine" row, rule #8 of the Analyzer Suite): it extracts
// comments from raw source text (comments are a hidden channel the
// out-of-scope grammar discards before producing the ast package's
// tree, so this package works directly over the source string) and
// validates the nesting/continuation rules.
package comments

import (
	"strings"

	"github.com/cnext-lang/cnextc/diag"
)

// Kind distinguishes the two comment forms the source language
// allows.
type Kind int

const (
	KindLine  Kind = iota // `// ...`
	KindBlock             // `/* ... */`
)

// Comment is one extracted comment, with its exact text (delimiters
// included) and source span.
type Comment struct {
	Kind Kind
	Text string
	Span diag.Span
}

// Extract scans src line-by-line (spans only need line/column
// granularity here) and returns every `//` and `/* ... */` comment,
// skipping occurrences inside string literals.
func Extract(file, src string) []Comment {
	var out []Comment
	lines := strings.Split(src, "\n")
	inBlock := false
	blockStartLine, blockStartCol := 0, 0
	var blockText strings.Builder

	for lineIdx, line := range lines {
		lineNo := lineIdx + 1
		inString := false
		col := 0
		for col < len(line) {
			ch := line[col]
			if inBlock {
				if strings.HasPrefix(line[col:], "*/") {
					blockText.WriteString(line[col : col+2])
					out = append(out, Comment{
						Kind: KindBlock,
						Text: blockText.String(),
						Span: diag.Span{File: file, Line: blockStartLine, Column: blockStartCol, EndLine: lineNo, EndColumn: col + 2},
					})
					inBlock = false
					blockText.Reset()
					col += 2
					continue
				}
				blockText.WriteByte(ch)
				col++
				continue
			}
			if ch == '"' {
				inString = !inString
				col++
				continue
			}
			if inString {
				col++
				continue
			}
			if strings.HasPrefix(line[col:], "//") {
				text := line[col:]
				out = append(out, Comment{
					Kind: KindLine,
					Text: text,
					Span: diag.Span{File: file, Line: lineNo, Column: col + 1, EndLine: lineNo, EndColumn: len(line) + 1},
				})
				col = len(line)
				continue
			}
			if strings.HasPrefix(line[col:], "/*") {
				inBlock = true
				blockStartLine, blockStartCol = lineNo, col+1
				blockText.Reset()
				blockText.WriteString("/*")
				col += 2
				continue
			}
			col++
		}
	}
	return out
}

// Validate enforces the two source-comment rules spec.md §4.4 #8
// names: no nested `/*` or `//` inside a comment (the `://` substring
// of a URI is the documented exception), and no line-splice backslash
// at the end of a line comment.
func Validate(cs []Comment) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, c := range cs {
		switch c.Kind {
		case KindBlock:
			inner := strings.TrimSuffix(strings.TrimPrefix(c.Text, "/*"), "*/")
			if containsNestedOpen(inner) {
				out = append(out, diag.New(diag.CodeCommentNesting,
					"nested comment marker inside block comment (MISRA C:2012 Rule 3.1)", c.Span))
			}
		case KindLine:
			if strings.HasSuffix(strings.TrimRight(c.Text, " \t"), "\\") {
				out = append(out, diag.New(diag.CodeCommentSplice,
					"line comment ends with a line-splicing backslash (MISRA C:2012 Rule 3.2)", c.Span))
			}
			if containsNestedOpen(c.Text[2:]) {
				out = append(out, diag.New(diag.CodeCommentNesting,
					"nested comment marker inside line comment (MISRA C:2012 Rule 3.1)", c.Span))
			}
		}
	}
	return out
}

// containsNestedOpen reports whether s contains a `/*` or `//` marker
// that is not part of a `://` URI scheme delimiter.
func containsNestedOpen(s string) bool {
	for i := 0; i < len(s)-1; i++ {
		if s[i] == '/' && (s[i+1] == '*' || s[i+1] == '/') {
			if i > 0 && s[i-1] == ':' {
				continue // URI scheme, e.g. "https://example.com"
			}
			return true
		}
	}
	return false
}
