package source

import (
	"context"
	"fmt"
	"time"

	"github.com/ppiankov/econdigest/internal/feed"
	"github.com/ppiankov/econdigest/internal/fetch"
	"github.com/ppiankov/econdigest/internal/model"
	"github.com/ppiankov/econdigest/internal/scrape"
)

// Source produces papers from one upstream location
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]model.Paper, error)
}

// New builds a Source from its configuration
func New(cfg model.SourceConfig, fetcher *fetch.Fetcher) (Source, error) {
	switch cfg.Kind {
	case model.SourceKindRSS:
		return NewRSS(cfg.Name, cfg.URL, fetcher), nil
	case model.SourceKindSSRN:
		return NewSSRNListing(cfg.Name, cfg.URL, fetcher), nil
	default:
		return nil, fmt.Errorf("unknown source kind: %q", cfg.Kind)
	}
}

// RSS reads a standard RSS or Atom feed
type RSS struct {
	name    string
	url     string
	fetcher *fetch.Fetcher
}

// NewRSS creates an RSS source
func NewRSS(name, url string, fetcher *fetch.Fetcher) *RSS {
	return &RSS{name: name, url: url, fetcher: fetcher}
}

// Name returns the configured source name
func (s *RSS) Name() string { return s.name }

// Fetch retrieves and parses the feed
func (s *RSS) Fetch(ctx context.Context) ([]model.Paper, error) {
	result, err := s.fetcher.FetchWithRetry(ctx, s.url)
	if err != nil {
		return nil, err
	}
	return feed.Parse(result.Body, s.name)
}

// SSRNListing scrapes an SSRN journal listing page
type SSRNListing struct {
	name    string
	url     string
	fetcher *fetch.Fetcher
}

// NewSSRNListing creates an SSRN listing source
func NewSSRNListing(name, url string, fetcher *fetch.Fetcher) *SSRNListing {
	return &SSRNListing{name: name, url: url, fetcher: fetcher}
}

// Name returns the configured source name
func (s *SSRNListing) Name() string { return s.name }

// Fetch retrieves and scrapes the listing page
func (s *SSRNListing) Fetch(ctx context.Context) ([]model.Paper, error) {
	result, err := s.fetcher.FetchWithRetry(ctx, s.url)
	if err != nil {
		return nil, err
	}
	return scrape.SSRN(result.Body, s.name)
}

// CutoffFilter keeps papers published on or after cutoff. Undated
// papers pass: a source that cannot date its papers should not lose
// them to the lookback window.
func CutoffFilter(papers []model.Paper, cutoff time.Time) []model.Paper {
	kept := make([]model.Paper, 0, len(papers))
	for _, p := range papers {
		if p.Date == nil || !p.Date.Before(cutoff) {
			kept = append(kept, p)
		}
	}
	return kept
}
