// Package textclean reduces source text to a compact, lowercase-only form.
//
// Clean is not used by the process pipeline. Its character filter keeps only
// [a-z0-9 ;], so uppercase letters are deleted rather than lowered even though
// the comment rules target mixed-case source. That interaction is kept as is.
package textclean

import (
	"regexp"
	"strings"
)

var (
	// Line comments consume their trailing newline; block comments may span lines.
	commentPattern   = regexp.MustCompile(`(?s)//.*?\n|/\*.*?\*/`)
	directivePattern = regexp.MustCompile(`#.*?\n`)
	disallowedChars  = regexp.MustCompile(`[^a-z0-9 ;]`)
)

// Clean strips C-style comments, drops text from any '#' through the end of
// its line, turns newlines into semicolons and removes every character
// outside [a-z0-9 ;].
func Clean(text string) string {
	text = commentPattern.ReplaceAllString(text, "")
	text = directivePattern.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "\n", ";")
	return disallowedChars.ReplaceAllString(text, "")
}
