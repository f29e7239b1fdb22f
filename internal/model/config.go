package model

import "time"

// SourceKind selects the fetch strategy for a configured source.
type SourceKind string

const (
	// SourceKindRSS fetches and parses a standard RSS/Atom feed.
	SourceKindRSS SourceKind = "rss"
	// SourceKindSSRN scrapes an SSRN journal listing page, which has no
	// usable feed.
	SourceKindSSRN SourceKind = "ssrn"
)

// Config holds the complete run configuration. It is built once at
// process start (defaults, then config file, then flags) and passed
// into the pipeline; nothing mutates it after that.
type Config struct {
	Keywords    []string          `yaml:"keywords"`
	Sources     []SourceConfig    `yaml:"sources"`
	HTTP        HTTPConfig        `yaml:"http"`
	Cache       CacheConfig       `yaml:"cache"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	LLM         LLMConfig         `yaml:"llm"`
	Output      OutputConfig      `yaml:"output"`
}

// SourceConfig describes one upstream source. Order matters: it fixes
// the tie-break order of equal-score papers in the digest.
type SourceConfig struct {
	Name string     `yaml:"name"`
	URL  string     `yaml:"url"`
	Kind SourceKind `yaml:"kind"`
}

// HTTPConfig holds settings for all outbound requests.
type HTTPConfig struct {
	TimeoutSec   int    `yaml:"timeout_sec"`
	UserAgent    string `yaml:"user_agent"`
	MaxBodyBytes int64  `yaml:"max_body_bytes"`
	InsecureTLS  bool   `yaml:"insecure_tls"`
	HTTPProxy    string `yaml:"http_proxy,omitempty"`
	HTTPSProxy   string `yaml:"https_proxy,omitempty"`
	NoProxy      string `yaml:"no_proxy,omitempty"`
}

// Timeout returns the request timeout as a duration.
func (c HTTPConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// CacheConfig controls the layered fetch cache. The cache only spares
// upstream servers on repeated runs; disabling it changes no output.
type CacheConfig struct {
	Enabled      bool   `yaml:"enabled"`
	Dir          string `yaml:"dir"`
	MemoryTTLSec int    `yaml:"memory_ttl_sec"`
	DiskTTLSec   int    `yaml:"disk_ttl_sec"`
}

// MemoryTTL returns the in-memory entry lifetime.
func (c CacheConfig) MemoryTTL() time.Duration {
	return time.Duration(c.MemoryTTLSec) * time.Second
}

// DiskTTL returns the on-disk entry lifetime.
func (c CacheConfig) DiskTTL() time.Duration {
	return time.Duration(c.DiskTTLSec) * time.Second
}

// RateLimitConfig bounds the request rate per upstream domain.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// ConcurrencyConfig sizes the source-fetch worker pool.
type ConcurrencyConfig struct {
	SourceWorkers int `yaml:"source_workers"`
}

// LLMConfig configures the optional key-finding summarizer. An empty
// Provider disables summarization entirely.
type LLMConfig struct {
	Provider   string `yaml:"provider"` // anthropic, openai, ollama, ""
	Model      string `yaml:"model"`
	APIKey     string `yaml:"-"` // environment only, never written to disk
	BaseURL    string `yaml:"base_url,omitempty"`
	TimeoutSec int    `yaml:"timeout_sec"`
	MaxTokens  int    `yaml:"max_tokens"`
}

// OutputConfig holds presentation settings.
type OutputConfig struct {
	Verbose bool `yaml:"verbose"`
}

// DefaultConfig returns the built-in configuration: the priority
// keyword list and the eight standing economics sources. The keyword
// list is kept verbatim, duplicates included ("antitrust" appears under
// two themes); the scorer deduplicates at construction.
func DefaultConfig() *Config {
	return &Config{
		Keywords: []string{
			// Corporate power & pricing
			"price", "pricing", "markup", "profit", "corporate", "concentration",
			"monopoly", "antitrust", "market power", "oligopoly", "merger",
			"gouging", "inflation",

			// Housing
			"housing", "rent", "mortgage", "landlord", "eviction", "tenant",
			"homeowner", "affordability", "real estate", "financialization",

			// Labor & wages
			"wage", "labor", "worker", "employment", "unemployment", "union",
			"minimum wage", "gig economy", "collective bargaining", "strike",

			// Inequality & distribution
			"inequality", "wealth", "income distribution", "poverty", "mobility",
			"racial", "gender gap", "disparity", "progressive",

			// Consumer & household
			"consumer", "household", "debt", "credit", "family", "childcare",
			"healthcare cost", "food price", "grocery",

			// Policy
			"tax", "fiscal", "subsidy", "regulation", "enforcement", "antitrust",
			"competition policy", "industrial policy",
		},
		Sources: []SourceConfig{
			{Name: "VoxEU/CEPR", URL: "https://cepr.org/rss/voxeu/columns.xml", Kind: SourceKindRSS},
			{Name: "Equitable Growth", URL: "https://equitablegrowth.org/feed/", Kind: SourceKindRSS},
			{Name: "EPI", URL: "https://www.epi.org/feed/", Kind: SourceKindRSS},
			{Name: "Fed Board Working Papers", URL: "https://www.federalreserve.gov/feeds/feds.xml", Kind: SourceKindRSS},
			{Name: "NY Fed Research", URL: "https://libertystreeteconomics.newyorkfed.org/feed/", Kind: SourceKindRSS},
			{Name: "SF Fed Economic Letters", URL: "https://www.frbsf.org/research-and-insights/publications/economic-letter/rss-feed/", Kind: SourceKindRSS},
			{Name: "Brookings Economics", URL: "https://www.brookings.edu/feed/?topic=economy", Kind: SourceKindRSS},
			{Name: "SSRN Economics", URL: "https://papers.ssrn.com/sol3/Jeljour_results.cfm?form_name=journalBrowse&journal_id=918&Network=no&lim=false&npage=1", Kind: SourceKindSSRN},
		},
		HTTP: HTTPConfig{
			TimeoutSec:   20,
			UserAgent:    "econdigest/0.1 (+https://github.com/ppiankov/econdigest)",
			MaxBodyBytes: 2_000_000,
		},
		Cache: CacheConfig{
			Enabled:      true,
			Dir:          "", // resolved to ~/.econdigest/cache at wiring time
			MemoryTTLSec: 600,
			DiskTTLSec:   3600,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 2,
			Burst:             1,
		},
		Concurrency: ConcurrencyConfig{
			SourceWorkers: 4,
		},
		LLM: LLMConfig{
			Provider:   "", // disabled until the digest command opts in
			TimeoutSec: 30,
			MaxTokens:  100,
		},
		Output: OutputConfig{},
	}
}
