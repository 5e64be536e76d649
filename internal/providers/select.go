package providers

import (
	"fmt"
	"strings"
)

// Entry is one search result: where the title lives and its display name.
type Entry struct {
	Locator string
	Name    string
}

// SelectFromResults picks the entry matching query. An exact
// case-insensitive match wins without asking. Otherwise, and only when
// interactive, each entry containing query is offered in turn until one is
// confirmed.
func (s *Session) SelectFromResults(entries []Entry, query string, auto bool) (Entry, error) {
	q := strings.ToLower(strings.TrimSpace(query))

	for _, e := range entries {
		if strings.ToLower(strings.TrimSpace(e.Name)) == q {
			return e, nil
		}
	}

	if !auto && q != "" {
		for _, e := range entries {
			if !strings.Contains(strings.ToLower(e.Name), q) {
				continue
			}
			if s.Prompt != nil && s.Prompt.Confirm(fmt.Sprintf("Did you mean: %s?", strings.TrimSpace(e.Name))) {
				return e, nil
			}
		}
	}

	return Entry{}, fmt.Errorf("%w: no strict match found for %q; please retype your query", ErrTitleNotFound, query)
}
