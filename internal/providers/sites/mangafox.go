package sites

import (
	"fmt"

	"github.com/brogergvhs/mangadl/internal/chapters"
	"github.com/brogergvhs/mangadl/internal/extract"
)

func mangaFox() Rules {
	return Rules{
		Name:    "MangaFox",
		BaseURL: "http://www.mangafox.com",

		Probe: func(base, title string) string {
			return fmt.Sprintf("%s/manga/%s/", base, chapters.Sanitize(title))
		},
		Search: func(base, title string) string {
			return base + "/search.php?name=" + plusJoined(title)
		},
		Results: extract.Regex(`a href="/manga/([^/]*)/[^"]*?" class=[^>]*>([^<]*)</a>`),
		TitleURL: func(base, keyword string) string {
			return fmt.Sprintf("%s/manga/%s/", base, keyword)
		},
		Removed: "it is not available in Manga Fox.",

		ChapterList: func(base, keyword string) string {
			return fmt.Sprintf("%s/cache/manga/%s/chapters.js", base, keyword)
		},
		Chapters: func(string) extract.Pattern {
			return extract.Regex(`"(.*?Ch.[\d.]*)[^"]*","([^"]*)"`)
		},
		Chapter: func(base, keyword string, m []string) chapters.Chapter {
			return chapters.Chapter{
				URL:   fmt.Sprintf("%s/manga/%s/%s", base, keyword, m[1]),
				Label: m[0],
			}
		},

		PageCount: extract.Regex(`var total_pages=([^;]*?);`),
		Pages:     numbered("%s/%d.html"),
		Image:     extract.Regex(`;"><img src="([^"]*)"`),
	}
}
