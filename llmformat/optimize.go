package llmformat

import (
	"regexp"
	"strings"
)

// Optimize runs the fixed-order text-level compaction passes over an
// already-rendered artifact. Context consolidation and text-block dedup
// happen earlier, at render time, since they need structured access to
// facts the plain-text form has already discarded; the passes here operate
// purely on the rendered string and are each independently idempotent, so
// running Optimize again on already-optimized output is a no-op.
func Optimize(content string) string {
	content = shortenTags(content)
	content = compactWhitespace(content)
	return content
}

// tagRewrites are verbose->compact section-tag rewrites applied after the
// structured sections are written, so every later pass only has to deal
// with the short forms.
var tagRewrites = []struct{ from, to string }{
	{"@FINANCIAL_STATEMENTS_MAPPING", "@FS_MAP"},
	{"@NORMALIZED_FINANCIAL_STATEMENTS", "@NORM_STMTS"},
	{"@DOCUMENT_METADATA", "@META"},
}

func shortenTags(content string) string {
	for _, r := range tagRewrites {
		content = strings.ReplaceAll(content, r.from, r.to)
	}
	return content
}

var blankLineRun = regexp.MustCompile(`\n{3,}`)
var trailingSpace = regexp.MustCompile(`[ \t]+\n`)

// compactWhitespace collapses every run of three or more newlines (two or
// more blank lines) down to a single blank line, strips trailing horizontal
// whitespace, and ends the content with exactly one newline.
func compactWhitespace(content string) string {
	content = trailingSpace.ReplaceAllString(content, "\n")
	content = blankLineRun.ReplaceAllString(content, "\n\n")
	return strings.TrimRight(content, "\n") + "\n"
}
