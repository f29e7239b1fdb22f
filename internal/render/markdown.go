package render

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ppiankov/econdigest/internal/model"
	"github.com/ppiankov/econdigest/internal/rank"
)

const (
	maxPapersPerTier    = 10
	maxKeywordsListed   = 15
	maxKeywordsPerPaper = 5
	maxAbstractRunes    = 300
	maxAuthorRunes      = 60
)

// Renderer produces digest output documents
type Renderer struct{}

// NewRenderer creates a new renderer
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Markdown renders the digest as a markdown document: header, papers
// grouped into priority tiers, then summary stats and keyword counts.
func (r *Renderer) Markdown(d *model.Digest) string {
	var b strings.Builder

	b.WriteString("# Economics Research Digest\n")
	fmt.Fprintf(&b, "**Week of %s** | Papers from last %d days\n\n",
		d.GeneratedAt.Format("January 02, 2006"), d.LookbackDays)
	b.WriteString("---\n\n## Top Papers by Relevance\n\n")

	if len(d.Papers) == 0 {
		b.WriteString("*No highly relevant papers found this period. Consider expanding keywords or timeframe.*\n")
		return b.String()
	}

	tiers := rank.Partition(d.Papers)

	if len(tiers.High) > 0 {
		b.WriteString("### 🔴 High Priority\n\n")
		for _, p := range capTier(tiers.High) {
			writePaper(&b, p)
		}
	}

	if len(tiers.Medium) > 0 {
		b.WriteString("\n### 🟡 Worth Reading\n\n")
		for _, p := range capTier(tiers.Medium) {
			writePaper(&b, p)
		}
	}

	if len(tiers.Other) > 0 {
		b.WriteString("\n### 🟢 Also Relevant\n\n")
		for _, p := range capTier(tiers.Other) {
			writePaper(&b, p)
		}
	}

	b.WriteString("\n---\n\n## Summary\n\n")
	fmt.Fprintf(&b, "- **Total papers scanned:** %d\n", d.Stats.TotalScanned)
	fmt.Fprintf(&b, "- **Relevant papers found:** %d\n", d.Stats.Relevant)
	fmt.Fprintf(&b, "- **High priority:** %d\n", d.Stats.HighPriority)
	fmt.Fprintf(&b, "- **Sources checked:** %d\n\n", d.Stats.SourcesChecked)
	b.WriteString("### Keywords Matched This Week\n")

	keywords := d.Keywords
	if len(keywords) > maxKeywordsListed {
		keywords = keywords[:maxKeywordsListed]
	}
	for _, kc := range keywords {
		fmt.Fprintf(&b, "- %s: %d papers\n", kc.Keyword, kc.Count)
	}

	return b.String()
}

// WriteMarkdown renders the digest and writes it to path
func (r *Renderer) WriteMarkdown(d *model.Digest, path string) error {
	if err := os.WriteFile(path, []byte(r.Markdown(d)), 0644); err != nil {
		return fmt.Errorf("write markdown: %w", err)
	}
	return nil
}

// WriteJSON writes the digest as indented JSON to path
func (r *Renderer) WriteJSON(d *model.Digest, path string) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal digest: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}

func capTier(papers []model.Paper) []model.Paper {
	if len(papers) > maxPapersPerTier {
		return papers[:maxPapersPerTier]
	}
	return papers
}

// writePaper emits one paper block. A key finding replaces the
// abstract quote; the abstract only shows when no finding exists.
func writePaper(b *strings.Builder, p model.Paper) {
	fmt.Fprintf(b, "**[%s](%s)**\n", p.Title, p.URL)
	fmt.Fprintf(b, "*%s* | %s | %s\n", p.Source, truncateAuthors(p.Authors), formatDate(p.Date))

	if p.KeyFinding != "" {
		fmt.Fprintf(b, "**📌 Key finding:** %s\n", p.KeyFinding)
	}

	if p.Abstract != "" && p.KeyFinding == "" {
		fmt.Fprintf(b, "> %s\n", truncateAbstract(p.Abstract))
	}

	if len(p.MatchedKeywords) > 0 {
		kws := p.MatchedKeywords
		if len(kws) > maxKeywordsPerPaper {
			kws = kws[:maxKeywordsPerPaper]
		}
		fmt.Fprintf(b, "**Keywords:** %s\n", strings.Join(kws, ", "))
	}

	b.WriteString("\n")
}

// formatDate renders a short date, or "Recent" for undated papers
func formatDate(t *time.Time) string {
	if t == nil {
		return "Recent"
	}
	return t.Format("Jan 02")
}

func truncateAuthors(authors string) string {
	runes := []rune(authors)
	if len(runes) <= maxAuthorRunes {
		return authors
	}
	return string(runes[:maxAuthorRunes]) + "..."
}

// truncateAbstract cuts long abstracts at a word boundary near the
// cap and marks the cut with an ellipsis
func truncateAbstract(abstract string) string {
	runes := []rune(abstract)
	if len(runes) <= maxAbstractRunes {
		return abstract
	}

	cut := string(runes[:maxAbstractRunes])
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}
	return cut + "..."
}
