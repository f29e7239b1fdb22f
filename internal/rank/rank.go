package rank

import (
	"sort"

	"github.com/ppiankov/econdigest/internal/model"
)

// Tier score boundaries. A paper below OtherMin appears in no tier.
const (
	HighMin   = 5
	MediumMin = 2
	OtherMin  = 1
)

// FilterAndRank returns the papers scoring at least minScore, ordered
// by score descending. The sort is stable: equal scores keep their
// collection order, so reruns over the same inputs produce the same
// digest.
func FilterAndRank(papers []model.Paper, minScore int) []model.Paper {
	relevant := make([]model.Paper, 0, len(papers))
	for _, p := range papers {
		if p.RelevanceScore >= minScore {
			relevant = append(relevant, p)
		}
	}

	sort.SliceStable(relevant, func(i, j int) bool {
		return relevant[i].RelevanceScore > relevant[j].RelevanceScore
	})

	return relevant
}

// Tiers groups ranked papers into priority bands
type Tiers struct {
	High   []model.Paper
	Medium []model.Paper
	Other  []model.Paper
}

// Partition splits papers into tiers by score, preserving order
// within each tier
func Partition(papers []model.Paper) Tiers {
	var t Tiers
	for _, p := range papers {
		switch {
		case p.RelevanceScore >= HighMin:
			t.High = append(t.High, p)
		case p.RelevanceScore >= MediumMin:
			t.Medium = append(t.Medium, p)
		case p.RelevanceScore >= OtherMin:
			t.Other = append(t.Other, p)
		}
	}
	return t
}

// KeywordFrequency counts matched keywords across papers. Most
// frequent first; ties order alphabetically so output is stable.
func KeywordFrequency(papers []model.Paper) []model.KeywordCount {
	counts := make(map[string]int)
	for _, p := range papers {
		for _, kw := range p.MatchedKeywords {
			counts[kw]++
		}
	}

	freq := make([]model.KeywordCount, 0, len(counts))
	for kw, n := range counts {
		freq = append(freq, model.KeywordCount{Keyword: kw, Count: n})
	}

	sort.Slice(freq, func(i, j int) bool {
		if freq[i].Count != freq[j].Count {
			return freq[i].Count > freq[j].Count
		}
		return freq[i].Keyword < freq[j].Keyword
	})

	return freq
}
