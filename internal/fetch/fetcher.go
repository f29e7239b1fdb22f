package fetch

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ppiankov/econdigest/internal/cache"
	"github.com/ppiankov/econdigest/internal/worker"
)

// ErrRobotsDisallowed is returned when robots.txt forbids fetching a URL.
var ErrRobotsDisallowed = errors.New("blocked by robots.txt")

// fetchSleepFunc is the sleep used between retries, replaceable in tests
var fetchSleepFunc = time.Sleep

const maxFetchAttempts = 3

// Options configures a Fetcher.
type Options struct {
	Timeout      time.Duration
	UserAgent    string
	MaxBodyBytes int64
	InsecureTLS  bool
	HTTPProxy    string
	HTTPSProxy   string
	NoProxy      string

	// Cache is optional; nil disables response caching.
	Cache cache.Cache

	// Limiter is optional; nil disables rate limiting.
	Limiter *worker.Limiter

	// CheckRobots enables robots.txt checks before each fetch.
	CheckRobots bool
}

// Fetcher retrieves bodies over HTTP with caching, per-domain rate
// limiting, robots.txt checks, and retry on transient failures. All
// outbound requests in the digest go through one Fetcher.
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	cache      cache.Cache
	limiter    *worker.Limiter
	robots     *RobotsChecker
}

// New creates a Fetcher from the given options
func New(opts Options) *Fetcher {
	transport := &http.Transport{
		Proxy: newProxyFunc(opts.HTTPProxy, opts.HTTPSProxy, opts.NoProxy),
	}
	if opts.InsecureTLS {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	f := &Fetcher{
		httpClient: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		userAgent: opts.UserAgent,
		maxBytes:  opts.MaxBodyBytes,
		cache:     opts.Cache,
		limiter:   opts.Limiter,
	}

	if opts.CheckRobots {
		f.robots = NewRobotsChecker(opts.UserAgent, opts.Timeout)
	}

	return f
}

// Result contains a fetched body and metadata
type Result struct {
	Body     []byte
	FinalURL string
	Cached   bool
}

// FetchWithRetry retrieves a URL, consulting the cache first and
// retrying transient failures with linear backoff. Non-retryable
// errors (4xx other than 429, robots denial) fail immediately.
func (f *Fetcher) FetchWithRetry(ctx context.Context, rawURL string) (*Result, error) {
	key := cache.Key(rawURL)
	if f.cache != nil {
		if body, found := f.cache.Get(key); found {
			return &Result{Body: body, FinalURL: rawURL, Cached: true}, nil
		}
	}

	if f.robots != nil && !f.robots.Allowed(ctx, rawURL) {
		return nil, ErrRobotsDisallowed
	}

	var lastErr error
	for attempt := 1; attempt <= maxFetchAttempts; attempt++ {
		if f.limiter != nil {
			if err := f.limiter.Wait(ctx, rawURL); err != nil {
				return nil, err
			}
		}

		result, err := f.fetch(ctx, rawURL)
		if err == nil {
			if f.cache != nil {
				f.cache.Set(key, result.Body)
			}
			return result, nil
		}

		lastErr = err
		if !isRetryableFetchError(err) {
			return nil, err
		}
		if attempt < maxFetchAttempts {
			fetchSleepFunc(time.Duration(attempt) * time.Second)
		}
	}

	return nil, fmt.Errorf("after %d attempts: %w", maxFetchAttempts, lastErr)
}

// fetch performs a single HTTP GET
func (f *Fetcher) fetch(ctx context.Context, rawURL string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/rss+xml,application/atom+xml,application/xml;q=0.9,text/html;q=0.8,*/*;q=0.7")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	limitedReader := io.LimitReader(resp.Body, f.maxBytes)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return &Result{
		Body:     body,
		FinalURL: resp.Request.URL.String(),
	}, nil
}

// isRetryableFetchError reports whether a fetch error is worth
// retrying. Server errors and 429 are transient; other 4xx and
// request construction or body read failures are not.
func isRetryableFetchError(err error) bool {
	if err == nil {
		return false
	}

	msg := err.Error()
	if strings.Contains(msg, "unexpected status: ") {
		for _, code := range []string{"429", "500", "502", "503", "504"} {
			if strings.Contains(msg, "unexpected status: "+code) {
				return true
			}
		}
		return false
	}

	// Network-level failures surface with the "fetch:" prefix
	return strings.HasPrefix(msg, "fetch: ")
}
