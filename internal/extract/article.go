package extract

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// contentSelectors are tried in order when pulling article text.
// Research sites wrap the body in one of these containers far more
// often than in semantic markup alone.
var contentSelectors = []string{
	"article",
	".post-content",
	".entry-content",
	".article-body",
	".content",
	"main",
	".paper-abstract",
	".abstract",
}

const (
	maxArticleRunes = 3000
	minArticleRunes = 200
)

// Article extracts the readable body text of an article or paper
// page. The first selector yielding a substantial block of text wins;
// short hits are skipped because they tend to be navigation or teaser
// fragments. Falls back to the whole page body.
func Article(htmlContent string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return ""
	}

	// Page chrome never belongs in an excerpt, least of all in the
	// body fallback.
	doc.Find("script, style, noscript, nav, header, footer, aside").Remove()

	for _, selector := range contentSelectors {
		node := doc.Find(selector).First()
		if node.Length() == 0 {
			continue
		}

		text := strings.Join(strings.Fields(node.Text()), " ")
		if utf8.RuneCountInString(text) > minArticleRunes {
			return Truncate(text, maxArticleRunes)
		}
	}

	body := strings.Join(strings.Fields(doc.Find("body").Text()), " ")
	return Truncate(body, maxArticleRunes)
}
