package sites

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/brogergvhs/mangadl/internal/providers"
)

var ErrUnsupported = errors.New("site not supported")

var registry = map[string]func() Rules{
	"mangafox":    mangaFox,
	"mangareader": mangaReader,
	"otakuworks":  otakuWorks,
}

// New builds the adapter for the named site, matched case-insensitively.
// A non-empty mirror replaces the site's base URL.
func New(name, mirror string, sess *providers.Session) (providers.Adapter, error) {
	rules, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnsupported, name, strings.Join(Names(), ", "))
	}

	return newAdapter(rules(), mirror, sess), nil
}

// Names lists the supported sites by display name.
func Names() []string {
	out := make([]string, 0, len(registry))
	for _, rules := range registry {
		out = append(out, rules().Name)
	}
	sort.Strings(out)

	return out
}

// BaseURL reports the default address of the named site.
func BaseURL(name string) string {
	if rules, ok := registry[strings.ToLower(name)]; ok {
		return rules().BaseURL
	}
	return ""
}
