package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/ppiankov/econdigest/internal/cache"
	"github.com/ppiankov/econdigest/internal/fetch"
	"github.com/ppiankov/econdigest/internal/llm"
	"github.com/ppiankov/econdigest/internal/model"
	"github.com/ppiankov/econdigest/internal/rank"
	"github.com/ppiankov/econdigest/internal/score"
	"github.com/ppiankov/econdigest/internal/source"
	"github.com/ppiankov/econdigest/internal/worker"
)

// Pipeline orchestrates one digest run: collect from all sources,
// filter by date, score, rank, optionally enrich with key findings.
type Pipeline struct {
	fetcher    *fetch.Fetcher
	collector  *source.Collector
	scorer     *score.Scorer
	summarizer *llm.Summarizer // nil when no provider is configured
	config     *model.Config
	log        io.Writer
}

// New assembles a pipeline from the configuration. Progress goes to
// log, or stderr when nil. A misconfigured source is an error; a
// misconfigured LLM provider downgrades to a digest without summaries.
func New(cfg *model.Config, log io.Writer) (*Pipeline, error) {
	if log == nil {
		log = os.Stderr
	}

	fetcher := fetch.New(fetchOptions(cfg))

	sources := make([]source.Source, 0, len(cfg.Sources))
	for _, sc := range cfg.Sources {
		src, err := source.New(sc, fetcher)
		if err != nil {
			return nil, fmt.Errorf("source %q: %w", sc.Name, err)
		}
		sources = append(sources, src)
	}

	var summarizer *llm.Summarizer
	if cfg.LLM.Provider != "" {
		s, err := llm.NewSummarizer(llm.ConfigFromModel(cfg.LLM, cfg.HTTP), fetcher, log)
		if err != nil {
			fmt.Fprintf(log, "Warning: failed to initialize LLM provider: %v\n", err)
		} else {
			summarizer = s
		}
	}

	return &Pipeline{
		fetcher:    fetcher,
		collector:  source.NewCollector(sources, cfg.Concurrency.SourceWorkers, log),
		scorer:     score.NewScorer(cfg.Keywords),
		summarizer: summarizer,
		config:     cfg,
		log:        log,
	}, nil
}

// fetchOptions maps the config tree onto fetcher options, resolving the
// cache directory when caching is enabled.
func fetchOptions(cfg *model.Config) fetch.Options {
	opts := fetch.Options{
		Timeout:      cfg.HTTP.Timeout(),
		UserAgent:    cfg.HTTP.UserAgent,
		MaxBodyBytes: cfg.HTTP.MaxBodyBytes,
		InsecureTLS:  cfg.HTTP.InsecureTLS,
		HTTPProxy:    cfg.HTTP.HTTPProxy,
		HTTPSProxy:   cfg.HTTP.HTTPSProxy,
		NoProxy:      cfg.HTTP.NoProxy,
		Limiter:      worker.NewLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst),
		CheckRobots:  true,
	}

	if cfg.Cache.Enabled {
		dir := cfg.Cache.Dir
		if dir == "" {
			if home, err := os.UserHomeDir(); err == nil {
				dir = filepath.Join(home, ".econdigest", "cache")
			}
		}
		if dir != "" {
			opts.Cache = cache.NewLayeredCache(cfg.Cache.MemoryTTL(), dir, cfg.Cache.DiskTTL())
		}
	}

	return opts
}

// Run executes one digest pass. Source and enrichment failures degrade
// to fewer papers or missing summaries; the only error out of a started
// run is context cancellation.
func (p *Pipeline) Run(ctx context.Context, days, minScore, summarizeTop int) (*model.Digest, error) {
	fmt.Fprintf(p.log, "Fetching papers from last %d days...\n\n", days)

	collected := p.collector.Collect(ctx)

	cutoff := time.Now().AddDate(0, 0, -days)
	scanned := source.CutoffFilter(collected, cutoff)

	scored := p.scorer.ScoreAll(scanned)
	ranked := rank.FilterAndRank(scored, minScore)

	fmt.Fprintf(p.log, "\nFound %d relevant papers out of %d total\n", len(ranked), len(scanned))

	if p.summarizer != nil && p.summarizer.IsEnabled() && summarizeTop > 0 {
		n := summarizeTop
		if n > len(ranked) {
			n = len(ranked)
		}
		if n > 0 {
			fmt.Fprintf(p.log, "\nGenerating summaries for top %d papers...\n", n)
			ranked = p.summarizer.EnrichTop(ctx, ranked, n)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tiers := rank.Partition(ranked)

	return &model.Digest{
		GeneratedAt:  time.Now(),
		LookbackDays: days,
		Papers:       ranked,
		Stats: model.Stats{
			TotalScanned:   len(scanned),
			Relevant:       len(ranked),
			HighPriority:   len(tiers.High),
			SourcesChecked: len(p.config.Sources),
		},
		Keywords: rank.KeywordFrequency(ranked),
	}, nil
}

// Summarizing reports whether enrichment will run for this pipeline.
func (p *Pipeline) Summarizing() bool {
	return p.summarizer != nil && p.summarizer.IsEnabled()
}
