package chapters

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Chapter is one entry of a title's chapter list. Its position in the list
// is its identity everywhere else.
type Chapter struct {
	URL   string
	Label string
}

var (
	separators = strings.NewReplacer(
		"•", "_",
		"-", "_",
		"—", "_",
		"–", "_",
		"/", "_",
		"\\", "_",
		".", "_",
		":", "_",
		" ", "_",
		"\t", "_",
		"(", "",
		")", "",
		"'", "",
	)

	reUnderscore = regexp.MustCompile(`_+`)
)

// Sanitize turns a display name into a lowercase token that is safe as a
// file name and as a URL slug. Accents are folded, separators become
// underscores and everything else that is not a letter or digit is dropped.
func Sanitize(s string) string {
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(fold, s); err == nil {
		s = folded
	}

	s = separators.Replace(strings.ToLower(strings.TrimSpace(s)))

	clean := make([]rune, 0, len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			clean = append(clean, r)
		}
	}

	return strings.Trim(reUnderscore.ReplaceAllString(string(clean), "_"), "_")
}

// Prefix names every file produced for a chapter of title.
func Prefix(title string, ch Chapter) string {
	return Sanitize(title) + "_" + Sanitize(ch.Label)
}
