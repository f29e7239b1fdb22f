package score

import (
	"strings"

	"github.com/ppiankov/econdigest/internal/model"
)

const (
	titleWeight    = 3
	abstractWeight = 1
)

// Scorer assigns relevance scores from a configured keyword list
type Scorer struct {
	keywords []string
}

// NewScorer creates a scorer over the given keywords. Keywords are
// lowercased and deduplicated up front, first occurrence keeping its
// place, so a duplicated config entry cannot double-count.
func NewScorer(keywords []string) *Scorer {
	seen := make(map[string]bool, len(keywords))
	deduped := make([]string, 0, len(keywords))

	for _, kw := range keywords {
		lower := strings.ToLower(strings.TrimSpace(kw))
		if lower == "" || seen[lower] {
			continue
		}
		seen[lower] = true
		deduped = append(deduped, lower)
	}

	return &Scorer{keywords: deduped}
}

// Score computes a paper's relevance from keyword matches. A keyword
// found in the title scores 3, one found only in the abstract scores
// 1. Matching is plain substring containment, so "tax" also hits
// "taxation"; that over-counting is deliberate and keeps scoring
// deterministic. The score is recomputed from scratch, so scoring is
// idempotent.
func (s *Scorer) Score(p model.Paper) model.Paper {
	title := strings.ToLower(p.Title)
	text := title + " " + strings.ToLower(p.Abstract)

	total := 0
	var matched []string

	for _, kw := range s.keywords {
		if !strings.Contains(text, kw) {
			continue
		}

		matched = append(matched, kw)
		if strings.Contains(title, kw) {
			total += titleWeight
		} else {
			total += abstractWeight
		}
	}

	p.RelevanceScore = total
	p.MatchedKeywords = matched
	return p
}

// ScoreAll scores every paper, preserving order
func (s *Scorer) ScoreAll(papers []model.Paper) []model.Paper {
	scored := make([]model.Paper, len(papers))
	for i, p := range papers {
		scored[i] = s.Score(p)
	}
	return scored
}
