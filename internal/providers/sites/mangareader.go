package sites

import (
	"strings"

	"github.com/brogergvhs/mangadl/internal/chapters"
	"github.com/brogergvhs/mangadl/internal/extract"
)

func mangaReader() Rules {
	return Rules{
		Name:    "MangaReader",
		BaseURL: "http://www.mangareader.net",

		// the whole catalog is one page
		Search: func(base, _ string) string {
			return base + "/alphabetical"
		},
		Results: extract.CSS(".series_col li a", "href", extract.Text),
		TitleURL: func(base, href string) string {
			return extract.Resolve(base+"/", href)
		},
		Removed: "is not available in MangaReader",

		Chapters: func(string) extract.Pattern {
			return extract.Regex(`<tr><td><a href="([^"]*)" class="chico">([^<]*)</a>([^<]*)</td>`)
		},
		Chapter: func(base, _ string, m []string) chapters.Chapter {
			return chapters.Chapter{
				URL:   extract.Resolve(base+"/", m[0]),
				Label: strings.TrimSpace(m[1] + m[2]),
			}
		},

		PageCount: extract.Regex(`</select> of (\d+)`),
		Pages:     listed(extract.CSS("select#pageMenu option", "value")),
		Image:     extract.Regex(`img id="img" src="([^"]*)"`),
	}
}
