// Package extract applies site-specific extraction rules to fetched
// documents. A rule is either a regular expression, whose capture groups form
// the result fields, or a CSS selector whose matched elements are read
// attribute by attribute.
package extract

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Pattern pulls ordered tuples of strings out of a document.
type Pattern interface {
	// Find returns the fields of the first match, or nil.
	Find(doc string) []string
	// FindAll returns the fields of every match in document order.
	FindAll(doc string) [][]string
}

// First returns the first field of the first match.
func First(p Pattern, doc string) (string, bool) {
	m := p.Find(doc)
	if len(m) == 0 {
		return "", false
	}

	return m[0], true
}

type regexPattern struct {
	re *regexp.Regexp
}

// Regex compiles expr; every capture group becomes a field.
func Regex(expr string) Pattern {
	return regexPattern{re: regexp.MustCompile(expr)}
}

func (p regexPattern) Find(doc string) []string {
	m := p.re.FindStringSubmatch(doc)
	if m == nil {
		return nil
	}

	return m[1:]
}

func (p regexPattern) FindAll(doc string) [][]string {
	all := p.re.FindAllStringSubmatch(doc, -1)
	out := make([][]string, 0, len(all))
	for _, m := range all {
		out = append(out, m[1:])
	}

	return out
}

func (p regexPattern) String() string {
	return p.re.String()
}

// Text is the pseudo attribute that selects an element's trimmed text.
const Text = "#text"

type cssPattern struct {
	selector string
	fields   []string
}

// CSS matches elements by selector and reads fields from each one. A field is
// an attribute name or Text. Elements missing an attribute are skipped.
func CSS(selector string, fields ...string) Pattern {
	if len(fields) == 0 {
		fields = []string{Text}
	}

	return cssPattern{selector: selector, fields: fields}
}

func (p cssPattern) Find(doc string) []string {
	all := p.scan(doc, 1)
	if len(all) == 0 {
		return nil
	}

	return all[0]
}

func (p cssPattern) FindAll(doc string) [][]string {
	return p.scan(doc, -1)
}

func (p cssPattern) scan(doc string, limit int) [][]string {
	d, err := goquery.NewDocumentFromReader(strings.NewReader(doc))
	if err != nil {
		return nil
	}

	var out [][]string
	d.Find(p.selector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		row := make([]string, 0, len(p.fields))
		for _, f := range p.fields {
			if f == Text {
				row = append(row, strings.TrimSpace(sel.Text()))
				continue
			}

			v, ok := sel.Attr(f)
			if !ok {
				return true
			}
			row = append(row, strings.TrimSpace(v))
		}

		out = append(out, row)
		return limit < 0 || len(out) < limit
	})

	return out
}

func (p cssPattern) String() string {
	return p.selector
}

// Resolve makes raw absolute against base. Unparseable input is returned
// unchanged.
func Resolve(base, raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u == nil {
		return raw
	}

	if u.IsAbs() {
		return u.String()
	}

	b, err := url.Parse(base)
	if err != nil || b == nil {
		return raw
	}

	return b.ResolveReference(u).String()
}
