package llm

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ppiankov/econdigest/internal/extract"
	"github.com/ppiankov/econdigest/internal/fetch"
	"github.com/ppiankov/econdigest/internal/model"
)

// summarizeDelay paces provider calls between papers
const summarizeDelay = 500 * time.Millisecond

// enrichSleepFunc allows tests to replace the pacing sleep
var enrichSleepFunc = time.Sleep

// Summarizer enriches top-ranked papers with one-sentence key findings.
// A nil provider (empty Config.Provider) turns every call into a no-op.
type Summarizer struct {
	provider Provider
	fetcher  *fetch.Fetcher
	config   Config
	log      io.Writer
}

// NewSummarizer creates a summarizer from config. fetcher may be nil;
// findings then rely on titles and abstracts alone. Progress goes to
// log, or stderr when nil.
func NewSummarizer(config Config, fetcher *fetch.Fetcher, log io.Writer) (*Summarizer, error) {
	provider, err := NewProvider(config)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = os.Stderr
	}
	return &Summarizer{
		provider: provider,
		fetcher:  fetcher,
		config:   config,
		log:      log,
	}, nil
}

// IsEnabled reports whether a provider is configured
func (s *Summarizer) IsEnabled() bool {
	return s.provider != nil
}

// ProviderName returns the active provider's name, or "" when disabled
func (s *Summarizer) ProviderName() string {
	if s.provider == nil {
		return ""
	}
	return s.provider.Name()
}

// EnrichTop generates key findings for the first n papers in place and
// returns the slice. A failing fetch or provider call logs a warning
// and moves on; enrichment never sinks the digest.
func (s *Summarizer) EnrichTop(ctx context.Context, papers []model.Paper, n int) []model.Paper {
	if s.provider == nil || n <= 0 {
		return papers
	}
	if n > len(papers) {
		n = len(papers)
	}

	for i := 0; i < n; i++ {
		if ctx.Err() != nil {
			return papers
		}
		if i > 0 {
			enrichSleepFunc(summarizeDelay)
		}

		fmt.Fprintf(s.log, "    Summarizing: %.50s...\n", papers[i].Title)

		resp, err := s.provider.KeyFinding(ctx, KeyFindingRequest{
			Title:    papers[i].Title,
			Abstract: papers[i].Abstract,
			Content:  s.fetchContent(ctx, papers[i].URL),
		})
		if err != nil {
			fmt.Fprintf(s.log, "    Summarization error: %v\n", err)
			continue
		}
		papers[i].KeyFinding = resp.Finding
	}

	return papers
}

// fetchContent pulls the full article text behind a paper's URL. Any
// failure degrades to an empty excerpt rather than an error.
func (s *Summarizer) fetchContent(ctx context.Context, url string) string {
	if s.fetcher == nil || url == "" {
		return ""
	}

	res, err := s.fetcher.FetchWithRetry(ctx, url)
	if err != nil {
		fmt.Fprintf(s.log, "    Warning: Could not fetch %s: %v\n", url, err)
		return ""
	}

	return extract.Article(string(res.Body))
}
