package textutil

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.Und, cases.NoLower)

// DisplayName turns an identifier such as "jane_doe" into "Jane Doe". Only the
// first letter of each word is changed; the rest keeps its original case.
func DisplayName(value string) string {
	spaced := strings.ReplaceAll(value, "_", " ")
	return titleCaser.String(spaced)
}
