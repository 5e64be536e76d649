package chapters

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrInvalidSelection is returned for selection input that cannot be parsed.
	ErrInvalidSelection = errors.New("invalid chapter selection")

	// ErrNoUpdates means automatic mode found nothing past the last
	// downloaded chapter. It is not a failure.
	ErrNoUpdates = errors.New("no new chapters")
)

// ParseSelection turns user input such as "1,3-4" or "all" into 0-based
// chapter indices. Numbers are 1-based and ranges inclusive; whitespace is
// ignored and the input order is kept.
func ParseSelection(input string, count int) ([]int, error) {
	s := strings.Join(strings.Fields(input), "")
	if s == "" {
		return nil, fmt.Errorf("%w: empty input", ErrInvalidSelection)
	}

	if strings.EqualFold(s, "all") {
		out := make([]int, count)
		for i := range out {
			out[i] = i
		}
		return out, nil
	}

	var out []int
	for tok := range strings.SplitSeq(s, ",") {
		if tok == "" {
			return nil, fmt.Errorf("%w: empty entry in %q", ErrInvalidSelection, input)
		}

		start, end, err := parseToken(tok)
		if err != nil {
			return nil, err
		}
		if start < 1 || end > count {
			return nil, fmt.Errorf("%w: %q is outside 1-%d", ErrInvalidSelection, tok, count)
		}

		for n := start; n <= end; n++ {
			out = append(out, n-1)
		}
	}

	return out, nil
}

func parseToken(tok string) (int, int, error) {
	lo, hi, isRange := strings.Cut(tok, "-")
	start, err := strconv.Atoi(lo)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q is not a chapter number", ErrInvalidSelection, tok)
	}
	if !isRange {
		return start, start, nil
	}

	end, err := strconv.Atoi(hi)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q is not a chapter range", ErrInvalidSelection, tok)
	}
	if end < start {
		return 0, 0, fmt.Errorf("%w: range %q runs backwards", ErrInvalidSelection, tok)
	}

	return start, end, nil
}

// UpdateSet returns the indices of every chapter after the last one labelled
// lastLabel. An unknown or empty label selects the whole list, so a title
// whose recorded chapter was relabelled is fetched again; chapters already
// archived are skipped later on.
func UpdateSet(all []Chapter, lastLabel string) ([]int, error) {
	lower := 0
	for i, ch := range all {
		if lastLabel != "" && ch.Label == lastLabel {
			lower = i + 1
		}
	}

	if lower >= len(all) {
		return nil, ErrNoUpdates
	}

	out := make([]int, 0, len(all)-lower)
	for i := lower; i < len(all); i++ {
		out = append(out, i)
	}

	return out, nil
}

// Contains reports whether label appears in the list.
func Contains(all []Chapter, label string) bool {
	for _, ch := range all {
		if ch.Label == label {
			return true
		}
	}

	return false
}
