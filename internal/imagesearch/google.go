// Package imagesearch finds a representative product photo when every
// other stage identified the product but came back without one.
package imagesearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fairwaylabs/linkresolver/internal/resolve"
)

const defaultEndpoint = "https://www.googleapis.com/customsearch/v1"

// Config carries the Custom Search credentials.
type Config struct {
	APIKey   string
	EngineID string
	Endpoint string
	Timeout  time.Duration
}

// Client implements resolve.ImageSearcher over the Google Custom
// Search image API.
type Client struct {
	cfg  Config
	http *http.Client
	log  *zap.Logger
}

// New builds the client.
func New(cfg Config, log *zap.Logger) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = defaultEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  log,
	}
}

type searchResponse struct {
	Items []struct {
		Link  string `json:"link"`
		Mime  string `json:"mime"`
		Image struct {
			Width  int `json:"width"`
			Height int `json:"height"`
		} `json:"image"`
	} `json:"items"`
}

// FindImage runs one image query for brand + name and returns the
// first plausible hit, or "" when nothing usable came back.
func (c *Client) FindImage(ctx context.Context, brand, name string) (string, error) {
	query := strings.TrimSpace(brand + " " + name + " product")

	params := url.Values{}
	params.Set("key", c.cfg.APIKey)
	params.Set("cx", c.cfg.EngineID)
	params.Set("q", query)
	params.Set("searchType", "image")
	params.Set("num", "3")
	params.Set("safe", "active")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.Endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("build image search request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("image search: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusForbidden:
		return "", resolve.ErrQuotaExceeded
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("image search status %d", resp.StatusCode)
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("%w: %v", resolve.ErrMalformedResponse, err)
	}

	for _, item := range body.Items {
		if plausible(item.Link, item.Image.Width, item.Image.Height) {
			c.log.Debug("image found", zap.String("query", query), zap.String("url", item.Link))
			return item.Link, nil
		}
	}
	return "", nil
}

// plausible rejects thumbnails, icons, and non-image links.
func plausible(link string, width, height int) bool {
	if link == "" {
		return false
	}
	lower := strings.ToLower(link)
	for _, bad := range []string{"logo", "icon", "sprite", "favicon", ".svg"} {
		if strings.Contains(lower, bad) {
			return false
		}
	}
	if width > 0 && width < 200 {
		return false
	}
	if height > 0 && height < 200 {
		return false
	}
	return true
}
