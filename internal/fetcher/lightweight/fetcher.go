// Package lightweight implements the structured-data fetch stage: one
// plain GET with browser-like headers, no script execution, and
// extraction of whatever product data the raw HTML already carries.
package lightweight

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/fairwaylabs/linkresolver/internal/resolve"
)

// Config holds the fetcher's transport knobs.
type Config struct {
	UserAgents   []string
	MaxRedirects int
	MaxAttempts  int
	Timeout      time.Duration
}

// DefaultConfig returns transport defaults matching a desktop browser.
func DefaultConfig() Config {
	return Config{
		UserAgents: []string{
			"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
			"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
		},
		MaxRedirects: 5,
		MaxAttempts:  2,
		Timeout:      5 * time.Second,
	}
}

// Fetcher is a colly-backed resolve.Fetcher.
type Fetcher struct {
	base    *colly.Collector
	cfg     Config
	log     *zap.Logger
	uaIndex atomic.Uint64
}

// New constructs the fetcher with a shared transport.
func New(cfg Config, log *zap.Logger) (*Fetcher, error) {
	if len(cfg.UserAgents) == 0 {
		cfg.UserAgents = DefaultConfig().UserAgents
	}
	if cfg.MaxRedirects <= 0 {
		cfg.MaxRedirects = 5
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 2
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}

	base := colly.NewCollector(colly.Async(true))
	base.AllowURLRevisit = true
	// The caller pasted this URL; it is one page view, not a crawl.
	base.IgnoreRobotsTxt = true
	base.WithTransport(&http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          64,
		MaxIdleConnsPerHost:   16,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: cfg.Timeout,
		ForceAttemptHTTP2:     true,
	})
	base.SetRequestTimeout(cfg.Timeout)
	maxRedirects := cfg.MaxRedirects
	base.SetRedirectHandler(func(req *http.Request, via []*http.Request) error {
		if len(via) >= maxRedirects {
			return fmt.Errorf("stopped after %d redirects", maxRedirects)
		}
		return nil
	})

	return &Fetcher{base: base, cfg: cfg, log: log}, nil
}

type fetchResult struct {
	status int
	body   []byte
	err    error
}

// Fetch issues the GET and extracts product data from the response.
// A served bot challenge is reported through Outcome.Blocked; transport
// failures are retried once before being returned as errors.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (resolve.FetchOutcome, error) {
	var lastErr error
	for attempt := 0; attempt < f.cfg.MaxAttempts; attempt++ {
		res := f.fetchOnce(ctx, rawURL)
		if err := ctx.Err(); err != nil {
			return resolve.FetchOutcome{}, err
		}
		if res.err != nil {
			lastErr = res.err
			f.log.Debug("fetch attempt failed",
				zap.String("url", rawURL), zap.Int("attempt", attempt+1), zap.Error(res.err))
			continue
		}
		return f.classify(rawURL, res), nil
	}
	return resolve.FetchOutcome{}, lastErr
}

func (f *Fetcher) fetchOnce(ctx context.Context, rawURL string) fetchResult {
	collector := f.base.Clone()
	collector.UserAgent = f.nextUserAgent()
	collector.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,*/*;q=0.8")
		r.Headers.Set("Accept-Language", "en-US,en;q=0.9")
		r.Headers.Set("Upgrade-Insecure-Requests", "1")
	})

	resultCh := make(chan fetchResult, 1)
	var once sync.Once
	send := func(res fetchResult) {
		once.Do(func() { resultCh <- res })
	}

	collector.OnResponse(func(r *colly.Response) {
		send(fetchResult{status: r.StatusCode, body: append([]byte{}, r.Body...)})
	})
	collector.OnError(func(r *colly.Response, err error) {
		// Challenge pages usually arrive as 403/429 "errors" with a
		// body worth inspecting.
		if r != nil && r.StatusCode > 0 {
			send(fetchResult{status: r.StatusCode, body: append([]byte{}, r.Body...)})
			return
		}
		if err == nil {
			err = errors.New("fetch failed")
		}
		send(fetchResult{err: err})
	})

	if err := collector.Visit(rawURL); err != nil {
		return fetchResult{err: err}
	}

	done := make(chan struct{})
	go func() {
		collector.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return fetchResult{err: ctx.Err()}
	}

	select {
	case res := <-resultCh:
		return res
	default:
		return fetchResult{err: errors.New("fetch produced no result")}
	}
}

func (f *Fetcher) classify(rawURL string, res fetchResult) resolve.FetchOutcome {
	if IsBlocked(res.status, res.body) {
		f.log.Info("request blocked by target", zap.String("url", rawURL), zap.Int("status", res.status))
		return resolve.FetchOutcome{Blocked: true, StatusCode: res.status}
	}
	if res.status < 200 || res.status >= 300 {
		return resolve.FetchOutcome{StatusCode: res.status}
	}

	data, confidence, found := Extract(res.body, rawURL)
	return resolve.FetchOutcome{
		Found:      found,
		StatusCode: res.status,
		Data:       data,
		Confidence: confidence,
	}
}

func (f *Fetcher) nextUserAgent() string {
	n := f.uaIndex.Add(1)
	return f.cfg.UserAgents[int(n)%len(f.cfg.UserAgents)]
}
