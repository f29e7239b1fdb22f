package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/econdigest/internal/model"
)

func testConfig(sources ...model.SourceConfig) *model.Config {
	return &model.Config{
		Keywords: []string{"inflation", "grocery"},
		Sources:  sources,
		HTTP: model.HTTPConfig{
			TimeoutSec:   5,
			UserAgent:    "test-agent",
			MaxBodyBytes: 1 << 20,
		},
		Cache:       model.CacheConfig{Enabled: false},
		RateLimit:   model.RateLimitConfig{RequestsPerSecond: 100, Burst: 10},
		Concurrency: model.ConcurrencyConfig{SourceWorkers: 2},
	}
}

func feedHandler(t *testing.T, feed string) http.Handler {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	mux.HandleFunc("/feed", func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, feed)
	})
	return mux
}

func TestNew_UnknownSourceKind(t *testing.T) {
	cfg := testConfig(model.SourceConfig{Name: "X", URL: "http://example.org", Kind: "gopher"})

	_, err := New(cfg, &bytes.Buffer{})
	if err == nil {
		t.Fatal("Expected error for unknown source kind")
	}
	if !strings.Contains(err.Error(), `source "X"`) {
		t.Errorf("Expected error to name the source, got %v", err)
	}
}

func TestNew_BadLLMProviderDowngrades(t *testing.T) {
	cfg := testConfig()
	cfg.LLM = model.LLMConfig{Provider: "bard"}

	var log bytes.Buffer
	p, err := New(cfg, &log)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if p.Summarizing() {
		t.Error("Expected summarization disabled after provider init failure")
	}
	if !strings.Contains(log.String(), "Warning: failed to initialize LLM provider") {
		t.Errorf("Expected warning in log, got %q", log.String())
	}
}

func TestPipeline_Run(t *testing.T) {
	now := time.Now()
	recent := now.Add(-24 * time.Hour).Format(time.RFC1123Z)
	old := now.AddDate(0, 0, -30).Format(time.RFC1123Z)

	feed := `<?xml version="1.0"?>
<rss version="2.0"><channel><title>t</title>
	<item>
		<title>Inflation Expectations and Groceries</title>
		<link>https://example.org/inflation</link>
		<description>Price growth in food categories.</description>
		<pubDate>` + recent + `</pubDate>
	</item>
	<item>
		<title>Conference Announcement</title>
		<link>https://example.org/conf</link>
		<description>Schedule for the annual meeting.</description>
		<pubDate>` + recent + `</pubDate>
	</item>
	<item>
		<title>Old Macro Paper</title>
		<link>https://example.org/old</link>
		<pubDate>` + old + `</pubDate>
	</item>
</channel></rss>`

	goodServer := httptest.NewServer(feedHandler(t, feed))
	defer goodServer.Close()

	brokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer brokenServer.Close()

	cfg := testConfig(
		model.SourceConfig{Name: "Good Feed", URL: goodServer.URL + "/feed", Kind: model.SourceKindRSS},
		model.SourceConfig{Name: "Broken Feed", URL: brokenServer.URL + "/feed", Kind: model.SourceKindRSS},
	)

	var log bytes.Buffer
	p, err := New(cfg, &log)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	digest, err := p.Run(context.Background(), 7, 1, 0)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if digest.LookbackDays != 7 {
		t.Errorf("Expected lookback 7, got %d", digest.LookbackDays)
	}

	// Old paper drops at the cutoff, unscored paper drops at the filter
	if digest.Stats.TotalScanned != 2 {
		t.Errorf("Expected 2 papers scanned, got %d", digest.Stats.TotalScanned)
	}
	if digest.Stats.Relevant != 1 {
		t.Errorf("Expected 1 relevant paper, got %d", digest.Stats.Relevant)
	}
	if digest.Stats.HighPriority != 0 {
		t.Errorf("Expected 0 high priority, got %d", digest.Stats.HighPriority)
	}
	if digest.Stats.SourcesChecked != 2 {
		t.Errorf("Expected 2 sources checked, got %d", digest.Stats.SourcesChecked)
	}

	if len(digest.Papers) != 1 {
		t.Fatalf("Expected 1 ranked paper, got %d", len(digest.Papers))
	}
	if digest.Papers[0].Title != "Inflation Expectations and Groceries" {
		t.Errorf("Unexpected top paper: %q", digest.Papers[0].Title)
	}
	if digest.Papers[0].RelevanceScore != 3 {
		t.Errorf("Expected title-match score 3, got %d", digest.Papers[0].RelevanceScore)
	}

	if len(digest.Keywords) != 1 || digest.Keywords[0].Keyword != "inflation" || digest.Keywords[0].Count != 1 {
		t.Errorf("Unexpected keyword table: %+v", digest.Keywords)
	}

	if !strings.Contains(log.String(), "Found 1 relevant papers out of 2 total") {
		t.Errorf("Expected summary line in log, got %q", log.String())
	}

	// Collector logs the pre-cutoff count; the broken source degrades
	if !strings.Contains(log.String(), "✓ Good Feed: 3 papers") {
		t.Errorf("Expected good feed log line, got %q", log.String())
	}
	if !strings.Contains(log.String(), "✗ Broken Feed") {
		t.Errorf("Expected broken feed log line, got %q", log.String())
	}
}

func TestPipeline_Run_WithOllamaEnrichment(t *testing.T) {
	llmServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"model":    "llama3.1",
			"response": "Grocery inflation hit 4% driven by concentrated retailers.",
			"done":     true,
		})
	}))
	defer llmServer.Close()

	now := time.Now()
	recent := now.Add(-24 * time.Hour).Format(time.RFC1123Z)

	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	mux.HandleFunc("/paper", func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `<html><body><article>`+
			strings.Repeat("Retail grocery margins widened during the inflation surge. ", 10)+
			`</article></body></html>`)
	})
	feedServer := httptest.NewServer(mux)
	defer feedServer.Close()

	feed := `<?xml version="1.0"?>
<rss version="2.0"><channel><title>t</title>
	<item>
		<title>Inflation and Retail Margins</title>
		<link>` + feedServer.URL + `/paper</link>
		<description>Margins and prices.</description>
		<pubDate>` + recent + `</pubDate>
	</item>
</channel></rss>`
	mux.HandleFunc("/feed", func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, feed)
	})

	cfg := testConfig(
		model.SourceConfig{Name: "Feed", URL: feedServer.URL + "/feed", Kind: model.SourceKindRSS},
	)
	cfg.LLM = model.LLMConfig{
		Provider:   "ollama",
		Model:      "llama3.1",
		BaseURL:    llmServer.URL,
		TimeoutSec: 5,
	}

	var log bytes.Buffer
	p, err := New(cfg, &log)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !p.Summarizing() {
		t.Fatal("Expected summarization enabled")
	}

	digest, err := p.Run(context.Background(), 7, 1, 5)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(digest.Papers) != 1 {
		t.Fatalf("Expected 1 ranked paper, got %d", len(digest.Papers))
	}
	if digest.Papers[0].KeyFinding != "Grocery inflation hit 4% driven by concentrated retailers." {
		t.Errorf("Unexpected key finding: %q", digest.Papers[0].KeyFinding)
	}

	if !strings.Contains(log.String(), "Generating summaries for top 1 papers") {
		t.Errorf("Expected summary banner in log, got %q", log.String())
	}
	if !strings.Contains(log.String(), "Summarizing: Inflation and Retail Margins") {
		t.Errorf("Expected per-paper progress in log, got %q", log.String())
	}
}

func TestPipeline_Run_Cancelled(t *testing.T) {
	cfg := testConfig(
		model.SourceConfig{Name: "Feed", URL: "http://127.0.0.1:0/feed", Kind: model.SourceKindRSS},
	)

	p, err := New(cfg, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = p.Run(ctx, 7, 1, 0)
	if err == nil {
		t.Fatal("Expected error from cancelled context")
	}
}
