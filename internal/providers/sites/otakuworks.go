package sites

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/brogergvhs/mangadl/internal/chapters"
	"github.com/brogergvhs/mangadl/internal/extract"
)

func otakuWorks() Rules {
	return Rules{
		Name:    "OtakuWorks",
		BaseURL: "http://www.otakuworks.com",

		Search: func(base, title string) string {
			return base + "/search/" + plusJoined(title)
		},
		Results: extract.Regex(`a href="([^"]*?)"[^>]*?>([^<]*?) \(Manga\)`),
		Direct:  true,
		TitleURL: func(base, href string) string {
			return extract.Resolve(base+"/", href)
		},
		Removed: "has been licensed and as per request all releases under it have been removed.",

		// chapter links carry the dash-joined title
		Chapters: func(title string) extract.Pattern {
			slug := strings.Join(strings.Fields(strings.ReplaceAll(chapters.Sanitize(title), "_", " ")), "-")
			return extract.Regex(fmt.Sprintf(`a href="([^>]*%s[^>]*)">([^<]*#[^<]*)</a>`, regexp.QuoteMeta(slug)))
		},
		Chapter: func(base, _ string, m []string) chapters.Chapter {
			return chapters.Chapter{
				URL:   extract.Resolve(base+"/", m[0]) + "/read",
				Label: m[1],
			}
		},
		Reverse: true,

		PageCount: extract.Regex(`<strong>(\d+)</strong>`),
		Pages:     numbered("%s/%d"),
		Image:     extract.Regex(`img src="(https?://[^"]*/viewer/[^"]*)"`),
	}
}
