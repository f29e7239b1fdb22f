package feed

import (
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/ppiankov/econdigest/internal/extract"
	"github.com/ppiankov/econdigest/internal/model"
)

// maxAbstractRunes bounds abstracts taken from feed descriptions
const maxAbstractRunes = 500

// Parse converts RSS/Atom bytes into papers attributed to sourceName.
// Entries keep their published date when the feed provides one;
// undated entries carry a nil date rather than a fabricated one.
func Parse(body []byte, sourceName string) ([]model.Paper, error) {
	parsed, err := gofeed.NewParser().ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	papers := make([]model.Paper, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		title := strings.TrimSpace(item.Title)
		if title == "" || item.Link == "" {
			continue
		}

		papers = append(papers, model.Paper{
			Title:    title,
			Authors:  itemAuthors(item),
			Source:   sourceName,
			URL:      item.Link,
			Abstract: itemAbstract(item),
			Date:     itemDate(item),
		})
	}

	return papers, nil
}

// itemDate prefers the published date, falling back to updated
func itemDate(item *gofeed.Item) *time.Time {
	if item.PublishedParsed != nil {
		return item.PublishedParsed
	}
	if item.UpdatedParsed != nil {
		return item.UpdatedParsed
	}
	return nil
}

func itemAuthors(item *gofeed.Item) string {
	var names []string
	for _, a := range item.Authors {
		if a != nil && a.Name != "" {
			names = append(names, a.Name)
		}
	}
	if len(names) == 0 && item.Author != nil && item.Author.Name != "" {
		return item.Author.Name
	}
	return strings.Join(names, ", ")
}

// itemAbstract flattens the HTML description to plain text. Feeds
// that only ship full content get that instead.
func itemAbstract(item *gofeed.Item) string {
	raw := item.Description
	if raw == "" {
		raw = item.Content
	}
	if raw == "" {
		return ""
	}

	return strings.TrimSpace(extract.Truncate(extract.Text(raw), maxAbstractRunes))
}
