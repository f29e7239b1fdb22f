package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ppiankov/econdigest/internal/model"
	"github.com/ppiankov/econdigest/internal/pipeline"
	"github.com/ppiankov/econdigest/internal/render"
	"github.com/spf13/cobra"
)

// previewRunes is how much of the rendered digest is echoed to stdout.
const previewRunes = 2000

var (
	days        int
	minScore    int
	outPath     string
	outJSON     string
	summarize   int
	llmProvider string
	llmModel    string
	httpTimeout time.Duration
	userAgent   string
	maxBytes    int64
	noCache     bool
	insecureTLS bool
	httpProxy   string
	httpsProxy  string
	concurrency int
)

// digestCmd represents the digest command
var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Fetch, rank and render the research digest",
	Long: `Digest fetches recent papers from every configured source, scores them
against the keyword list, and writes a markdown digest of the relevant
ones, ranked and tiered by relevance.

When an API key is available the top papers get a one-sentence key
finding from the configured LLM provider. A missing key skips
summarization with a notice; it never fails the run.

Example:
  econdigest digest
  econdigest digest --days 14 --min-score 2
  econdigest digest --summarize 0 --output digest.md
  econdigest digest --llm-provider ollama --llm-model llama3.1:8b`,
	Args: cobra.NoArgs,
	RunE: runDigest,
}

func init() {
	rootCmd.AddCommand(digestCmd)

	// Selection flags
	digestCmd.Flags().IntVar(&days, "days", 7, "days to look back")
	digestCmd.Flags().IntVar(&minScore, "min-score", 1, "minimum relevance score to include")

	// Output flags
	digestCmd.Flags().StringVar(&outPath, "output", "", "output markdown path (default econ_digest_YYYYMMDD.md)")
	digestCmd.Flags().StringVar(&outJSON, "json", "", "also write the digest as JSON to this path")

	// LLM flags
	digestCmd.Flags().IntVar(&summarize, "summarize", 15, "number of top papers to summarize (0 disables)")
	digestCmd.Flags().StringVar(&llmProvider, "llm-provider", "anthropic", "LLM provider (anthropic, openai, ollama)")
	digestCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name (provider default when empty)")

	// HTTP flags
	digestCmd.Flags().DurationVar(&httpTimeout, "timeout", 20*time.Second, "per-request HTTP timeout")
	digestCmd.Flags().StringVar(&userAgent, "ua", "econdigest/0.1 (+https://github.com/ppiankov/econdigest)", "HTTP User-Agent")
	digestCmd.Flags().Int64Var(&maxBytes, "max-bytes", 2_000_000, "max response bytes to read")
	digestCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable cache (force fresh fetch)")
	digestCmd.Flags().BoolVar(&insecureTLS, "insecure", false, "skip TLS certificate verification (use for self-signed certs)")
	digestCmd.Flags().StringVar(&httpProxy, "http-proxy", "", "HTTP proxy URL (overrides HTTP_PROXY env var)")
	digestCmd.Flags().StringVar(&httpsProxy, "https-proxy", "", "HTTPS proxy URL (overrides HTTPS_PROXY env var)")

	// Concurrency flags
	digestCmd.Flags().IntVar(&concurrency, "concurrency", 4, "number of concurrent source fetches")
}

func runDigest(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	applyFlags(cfg, cmd)
	configureLLM(cfg, cmd)

	if verbose {
		fmt.Fprintf(os.Stderr, "Sources: %d\n", len(cfg.Sources))
		fmt.Fprintf(os.Stderr, "Cache: %v\n", cfg.Cache.Enabled)
		if cfg.LLM.Provider != "" {
			modelName := cfg.LLM.Model
			if modelName == "" {
				modelName = "provider default"
			}
			fmt.Fprintf(os.Stderr, "LLM: %s (%s)\n", cfg.LLM.Provider, modelName)
		}
		fmt.Fprintln(os.Stderr)
	}

	p, err := pipeline.New(cfg, os.Stderr)
	if err != nil {
		return err
	}

	digest, err := p.Run(context.Background(), days, minScore, summarize)
	if err != nil {
		return err
	}

	r := render.NewRenderer()
	markdown := r.Markdown(digest)

	path := outPath
	if path == "" {
		path = fmt.Sprintf("econ_digest_%s.md", time.Now().Format("20060102"))
	}
	if err := os.WriteFile(path, []byte(markdown), 0644); err != nil {
		return fmt.Errorf("write digest: %w", err)
	}
	fmt.Fprintf(os.Stderr, "\nDigest saved to: %s\n", path)

	if outJSON != "" {
		if err := r.WriteJSON(digest, outJSON); err != nil {
			return fmt.Errorf("write JSON digest: %w", err)
		}
		fmt.Fprintf(os.Stderr, "JSON saved to: %s\n", outJSON)
	}

	printPreview(markdown)
	return nil
}

// applyFlags overlays command-line flags on the loaded configuration.
// Unchanged flags leave config-file values alone.
func applyFlags(cfg *model.Config, cmd *cobra.Command) {
	flags := cmd.Flags()

	if flags.Changed("timeout") {
		cfg.HTTP.TimeoutSec = int(httpTimeout / time.Second)
	}
	if flags.Changed("ua") {
		cfg.HTTP.UserAgent = userAgent
	}
	if flags.Changed("max-bytes") {
		cfg.HTTP.MaxBodyBytes = maxBytes
	}
	if insecureTLS {
		cfg.HTTP.InsecureTLS = true
	}
	if httpProxy != "" {
		cfg.HTTP.HTTPProxy = httpProxy
	}
	if httpsProxy != "" {
		cfg.HTTP.HTTPSProxy = httpsProxy
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	if flags.Changed("concurrency") {
		cfg.Concurrency.SourceWorkers = concurrency
	}
	cfg.Output.Verbose = verbose
}

// configureLLM resolves the summarization provider and its API key.
// A missing key disables summarization with a notice; the digest run
// itself proceeds either way.
func configureLLM(cfg *model.Config, cmd *cobra.Command) {
	if summarize <= 0 {
		cfg.LLM.Provider = ""
		return
	}

	if cmd.Flags().Changed("llm-provider") || cfg.LLM.Provider == "" {
		cfg.LLM.Provider = llmProvider
	}
	if llmModel != "" {
		cfg.LLM.Model = llmModel
	}

	switch cfg.LLM.Provider {
	case "anthropic", "claude":
		cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		if cfg.LLM.APIKey == "" {
			fmt.Fprintln(os.Stderr, "No ANTHROPIC_API_KEY found, skipping summaries")
			cfg.LLM.Provider = ""
		}
	case "openai":
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.LLM.APIKey == "" {
			fmt.Fprintln(os.Stderr, "No OPENAI_API_KEY found, skipping summaries")
			cfg.LLM.Provider = ""
		}
	case "ollama":
		// Local provider, no API key
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
			cfg.LLM.BaseURL = baseURL
		}
	}
}

// printPreview echoes the head of the rendered digest to stdout so a
// terminal run shows the result without opening the file.
func printPreview(markdown string) {
	banner := strings.Repeat("=", 60)
	fmt.Println("\n" + banner)
	fmt.Println("PREVIEW (first 2000 chars):")
	fmt.Println(banner + "\n")

	runes := []rune(markdown)
	if len(runes) <= previewRunes {
		fmt.Println(markdown)
		return
	}
	fmt.Println(string(runes[:previewRunes]))
	fmt.Println("\n... [truncated] ...")
}
