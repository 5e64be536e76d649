package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const listing = `<div class="series_col">
<ul>
  <li><a href="/naruto">Naruto</a></li>
  <li><a href="/bleach"> Bleach </a></li>
  <li><a>No link</a></li>
</ul>
</div>`

func TestRegexFieldsAreCaptureGroups(t *testing.T) {
	p := Regex(`<a href="([^"]*)">([^<]*)</a>`)

	assert.Equal(t, []string{"/naruto", "Naruto"}, p.Find(listing))
	assert.Equal(t, [][]string{
		{"/naruto", "Naruto"},
		{"/bleach", " Bleach "},
	}, p.FindAll(listing))
}

func TestRegexNoMatch(t *testing.T) {
	p := Regex(`var total_pages=([^;]*?);`)

	assert.Nil(t, p.Find("<html></html>"))
	assert.Empty(t, p.FindAll("<html></html>"))

	_, ok := First(p, "<html></html>")
	assert.False(t, ok)

	v, ok := First(p, "<script>var total_pages=12;</script>")
	assert.True(t, ok)
	assert.Equal(t, "12", v)
}

func TestCSSReadsAttributesAndText(t *testing.T) {
	p := CSS(".series_col li a", "href", Text)

	assert.Equal(t, [][]string{
		{"/naruto", "Naruto"},
		{"/bleach", "Bleach"},
	}, p.FindAll(listing))
	assert.Equal(t, []string{"/naruto", "Naruto"}, p.Find(listing))
}

func TestCSSDefaultsToText(t *testing.T) {
	p := CSS("li a")

	assert.Equal(t, [][]string{{"Naruto"}, {"Bleach"}, {"No link"}}, p.FindAll(listing))
}

func TestResolve(t *testing.T) {
	assert.Equal(t, "http://example.com/naruto/1", Resolve("http://example.com/alphabetical", "/naruto/1"))
	assert.Equal(t, "http://cdn.example.com/a.jpg", Resolve("http://example.com/", "http://cdn.example.com/a.jpg"))
	assert.Equal(t, "http://example.com/manga/x/2.html", Resolve("http://example.com/manga/x/1.html", "2.html"))
}
