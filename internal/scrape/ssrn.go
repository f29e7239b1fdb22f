package scrape

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ppiankov/econdigest/internal/extract"
	"github.com/ppiankov/econdigest/internal/model"
)

const (
	ssrnBase         = "https://papers.ssrn.com"
	maxSSRNResults   = 20
	maxAbstractRunes = 500
)

// SSRN parses papers out of an SSRN journal listing page. SSRN ships
// no usable feed and its markup varies, so this is a best-effort
// parse over the known result containers. Listing pages carry no
// reliable per-paper dates; papers come back undated.
func SSRN(body []byte, sourceName string) ([]model.Paper, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse listing: %w", err)
	}

	results := doc.Find(".paper-result, .result-item")
	if results.Length() > maxSSRNResults {
		results = results.Slice(0, maxSSRNResults)
	}

	var papers []model.Paper
	results.Each(func(_ int, item *goquery.Selection) {
		titleElem := item.Find(".title a, h3 a").First()
		if titleElem.Length() == 0 {
			return
		}

		title := cleanText(titleElem.Text())
		if title == "" {
			return
		}

		link, _ := titleElem.Attr("href")
		if link != "" && !strings.HasPrefix(link, "http") {
			link = ssrnBase + link
		}

		abstract := cleanText(item.Find(".abstract, .description").First().Text())

		papers = append(papers, model.Paper{
			Title:    title,
			Authors:  cleanText(item.Find(".authors, .author").First().Text()),
			Source:   sourceName,
			URL:      link,
			Abstract: extract.Truncate(abstract, maxAbstractRunes),
		})
	})

	return papers, nil
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
