package analytics

import (
	"strings"
	"unicode"
)

type Analytics struct{}

// commonWords holds keywords and filler that dominate source files and say
// nothing about what a repository is about.
var commonWords = map[string]struct{}{
	// English filler
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {}, "by": {},
	"for": {}, "from": {}, "has": {}, "have": {}, "in": {}, "into": {}, "is": {},
	"it": {}, "its": {}, "of": {}, "on": {}, "or": {}, "that": {}, "the": {},
	"this": {}, "to": {}, "was": {}, "we": {}, "will": {}, "with": {}, "you": {},

	// Control flow and declarations shared by most languages
	"if": {}, "else": {}, "elif": {}, "while": {}, "do": {}, "switch": {},
	"case": {}, "default": {}, "break": {}, "continue": {}, "return": {}, "goto": {},
	"try": {}, "catch": {}, "finally": {}, "throw": {}, "throws": {}, "raise": {},
	"except": {}, "yield": {}, "await": {}, "async": {},
	"func": {}, "function": {}, "def": {}, "fn": {}, "lambda": {}, "var": {},
	"let": {}, "const": {}, "val": {}, "type": {}, "struct": {}, "class": {},
	"interface": {}, "enum": {}, "impl": {}, "trait": {}, "package": {},
	"import": {}, "include": {}, "using": {}, "namespace": {}, "module": {},
	"public": {}, "private": {}, "protected": {}, "static": {}, "final": {},
	"void": {}, "new": {}, "delete": {}, "self": {}, "nil": {}, "null": {},
	"none": {}, "true": {}, "false": {}, "not": {}, "pass": {},

	// Common primitive type names
	"int": {}, "string": {}, "bool": {}, "char": {}, "float": {}, "double": {},
	"byte": {}, "error": {}, "err": {}, "i": {}, "j": {}, "x": {},
}

// isWordSpace matches the whitespace set str.split() uses in text-mode
// tooling: unicode spaces plus the ASCII file/group/record/unit separators.
func isWordSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}

// WordCount returns the number of whitespace-separated substrings in text.
func WordCount(text string) int {
	return len(strings.FieldsFunc(text, isWordSpace))
}

func (a *Analytics) WordFrequency(text string) map[string]int {
	words := strings.FieldsFunc(strings.ToLower(text), isWordSpace)
	frequencies := make(map[string]int)

	for _, word := range words {
		// Keep only lowercase letters, digits and underscores at the edges
		word = strings.TrimFunc(word, func(r rune) bool {
			return ('a' > r || r > 'z') && ('0' > r || r > '9') && r != '_'
		})

		// Skip stopwords, empties and bare numbers
		if _, exists := commonWords[word]; exists || word == "" || isNumber(word) {
			continue
		}

		frequencies[word]++
	}

	return frequencies
}

func isNumber(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
