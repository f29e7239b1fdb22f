package model

import "time"

// Paper is one candidate research document flowing through the digest
// pipeline. A source constructs it, scoring fills RelevanceScore and
// MatchedKeywords, enrichment fills KeyFinding. After ranking it is
// display-only.
type Paper struct {
	Title    string     `json:"title"`
	Authors  string     `json:"authors,omitempty"` // may be empty
	Source   string     `json:"source"`            // name of the origin feed/site
	URL      string     `json:"url"`
	Abstract string     `json:"abstract,omitempty"` // capped at 500 chars by the source
	Date     *time.Time `json:"date,omitempty"`     // nil when the source has no reliable date

	RelevanceScore  int      `json:"relevance_score"`
	MatchedKeywords []string `json:"matched_keywords,omitempty"` // subset of configured keywords, deduplicated
	KeyFinding      string   `json:"key_finding,omitempty"`      // one-sentence LLM summary, optional
}
