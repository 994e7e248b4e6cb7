package tools

import (
	"strconv"
	"unicode/utf8"
)

// truncSuffixRunes is kept free for the truncation notice.
const truncSuffixRunes = 64

// TruncateToolOutput caps s at maxRunes runes, keeping the head and appending a
// notice with the original size. maxRunes <= 0 disables the cap. The cut may
// leave JSON unbalanced; the model is told so and can narrow the query.
func TruncateToolOutput(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return s
	}
	total := utf8.RuneCountInString(s)
	if total <= maxRunes {
		return s
	}
	keep := max(maxRunes-truncSuffixRunes, 1)
	cut := 0
	for i := range s {
		if keep == 0 {
			cut = i
			break
		}
		keep--
	}
	return s[:cut] + "\n...[saída truncada, total de " + strconv.Itoa(total) + " caracteres; refine a consulta]"
}
