package model

import "time"

// Digest is the complete result of one digest run: the filtered, ranked
// papers plus the statistics the report renders below them.
type Digest struct {
	GeneratedAt  time.Time `json:"generated_at"`
	LookbackDays int       `json:"lookback_days"`

	// Papers holds the min-score-filtered records ordered by relevance
	// score descending, ties in source order.
	Papers []Paper `json:"papers"`

	Stats    Stats          `json:"stats"`
	Keywords []KeywordCount `json:"keywords,omitempty"` // frequency table, count descending
}

// Stats summarizes the run. TotalScanned counts every record that
// entered scoring, before the min-score filter. It is threaded through
// from the collection step, never recomputed from the filtered list.
type Stats struct {
	TotalScanned   int `json:"total_scanned"`
	Relevant       int `json:"relevant"`
	HighPriority   int `json:"high_priority"`
	SourcesChecked int `json:"sources_checked"`
}

// KeywordCount is one row of the keyword frequency table: how many
// relevant papers matched the keyword.
type KeywordCount struct {
	Keyword string `json:"keyword"`
	Count   int    `json:"count"`
}
