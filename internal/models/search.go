package models

import (
	"strings"

	"golang.org/x/text/cases"
)

// searchSeparator joins the folded fields of a search column so a term never
// matches across two fields.
const searchSeparator = "\x1f"

// Fold returns the Unicode case-folded form of s used by catalog search.
func Fold(s string) string {
	return strings.ReplaceAll(cases.Fold().String(s), searchSeparator, "")
}

func searchText(fields ...string) string {
	folded := make([]string, len(fields))
	for i, f := range fields {
		folded[i] = Fold(f)
	}
	return strings.Join(folded, searchSeparator)
}
