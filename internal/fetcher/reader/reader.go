// Package reader is the secondary rendering fallback: a hosted
// reader service that returns a page as markdown, reachable when the
// local browser cannot get through.
package reader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fairwaylabs/linkresolver/internal/resolve"
)

// Name identifies this renderer in results and metrics.
const Name = "reader"

// Config points at the reader service.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client calls a r.jina.ai-shaped reader endpoint: GET <base>/<url>
// returns the page rendered to markdown with a small header block.
type Client struct {
	cfg  Config
	http *http.Client
	log  *zap.Logger
}

// New builds the reader client.
func New(cfg Config, log *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://r.jina.ai"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  log,
	}
}

// Render fetches the page through the reader service and extracts
// product data from the returned markdown.
func (c *Client) Render(ctx context.Context, rawURL string) (resolve.RenderOutcome, error) {
	endpoint := strings.TrimSuffix(c.cfg.BaseURL, "/") + "/" + rawURL
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return resolve.RenderOutcome{}, fmt.Errorf("build reader request: %w", err)
	}
	req.Header.Set("Accept", "text/plain")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return resolve.RenderOutcome{}, fmt.Errorf("reader fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusPaymentRequired {
		return resolve.RenderOutcome{}, resolve.ErrQuotaExceeded
	}
	if resp.StatusCode != http.StatusOK {
		return resolve.RenderOutcome{}, fmt.Errorf("reader status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return resolve.RenderOutcome{}, fmt.Errorf("read reader body: %w", err)
	}

	data, found := ParseMarkdown(string(body))
	if !found {
		return resolve.RenderOutcome{Renderer: Name}, nil
	}
	return resolve.RenderOutcome{
		Found:      true,
		Renderer:   Name,
		Data:       data,
		Confidence: confidence(data),
	}, nil
}

var (
	titleLine    = regexp.MustCompile(`(?m)^Title:\s*(.+)$`)
	pricePattern = regexp.MustCompile(`[$£€]\s?(\d{1,5}(?:[.,]\d{2})?)`)
	brandStore   = regexp.MustCompile(`(?i)Visit the ([A-Za-z][\w&' .-]{1,40}?) Store`)
	brandLine    = regexp.MustCompile(`(?im)^\|?\s*Brand(?: Name)?\s*[|:]\s*([A-Za-z][\w&' .-]{1,40}?)\s*\|?$`)
	imageLink    = regexp.MustCompile(`!\[[^\]]*\]\((https?://[^)\s]+)\)`)
)

// ParseMarkdown pulls product signals out of reader output. The header
// carries the page title; marketplace pages additionally surface brand
// and price lines the extractor knows how to read.
func ParseMarkdown(md string) (resolve.PageData, bool) {
	data := resolve.PageData{}

	if m := titleLine.FindStringSubmatch(md); m != nil {
		data.Title = cleanTitle(m[1])
		data.Name = data.Title
	}
	if data.Title == "" {
		return resolve.PageData{}, false
	}

	if m := brandStore.FindStringSubmatch(md); m != nil {
		data.Brand = strings.TrimSpace(m[1])
	} else if m := brandLine.FindStringSubmatch(md); m != nil {
		data.Brand = strings.TrimSpace(m[1])
	}

	if m := pricePattern.FindStringSubmatch(md); m != nil {
		data.Price = strings.ReplaceAll(m[1], ",", ".")
	}

	for _, m := range imageLink.FindAllStringSubmatch(md, 8) {
		if plausibleProductImage(m[1]) {
			data.ImageURL = m[1]
			break
		}
	}

	if body := markdownContent(md); body != "" {
		if len(body) > 2000 {
			body = body[:2000]
		}
		data.RawText = body
	}
	return data, true
}

func markdownContent(md string) string {
	const marker = "Markdown Content:"
	if i := strings.Index(md, marker); i >= 0 {
		return strings.TrimSpace(md[i+len(marker):])
	}
	return strings.TrimSpace(md)
}

func cleanTitle(title string) string {
	title = strings.Join(strings.Fields(title), " ")
	for _, sep := range []string{" | ", " - ", " : "} {
		if i := strings.Index(title, sep); i > 0 {
			title = title[:i]
		}
	}
	// Marketplace titles lead with the site name.
	title = strings.TrimPrefix(title, "Amazon.com:")
	return strings.TrimSpace(title)
}

func plausibleProductImage(u string) bool {
	lower := strings.ToLower(u)
	for _, bad := range []string{"sprite", "logo", "icon", "pixel", "badge", "nav-"} {
		if strings.Contains(lower, bad) {
			return false
		}
	}
	return true
}

func confidence(data resolve.PageData) float64 {
	hasPrice := data.Price != ""
	hasImage := data.ImageURL != ""
	switch {
	case hasPrice && hasImage:
		return 0.85
	case hasPrice || hasImage:
		return 0.8
	default:
		return 0.75
	}
}
