package marketplace

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/fairwaylabs/linkresolver/internal/resolve"
)

// Config points at the catalog API.
type Config struct {
	Endpoint string
	APIKey   string
	Timeout  time.Duration
}

// Client implements resolve.MarketplaceClient against a JSON catalog
// API keyed by ASIN.
type Client struct {
	cfg  Config
	http *http.Client
	log  *zap.Logger
}

// New builds the catalog client.
func New(cfg Config, log *zap.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 8 * time.Second
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  log,
	}
}

// ExtractID satisfies resolve.MarketplaceClient.
func (c *Client) ExtractID(rawURL string) (string, bool) {
	return ExtractASIN(rawURL)
}

type catalogResponse struct {
	Found   bool     `json:"found"`
	Title   string   `json:"title"`
	Brand   string   `json:"brand"`
	Price   string   `json:"price"`
	Images  []string `json:"images"`
	Message string   `json:"message"`
}

// Lookup queries the catalog for one ASIN.
func (c *Client) Lookup(ctx context.Context, asin string) (resolve.CatalogProduct, error) {
	if !asinShape.MatchString(asin) {
		return resolve.CatalogProduct{}, resolve.ErrNoIdentifier
	}

	endpoint := fmt.Sprintf("%s/products/%s", c.cfg.Endpoint, url.PathEscape(asin))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return resolve.CatalogProduct{}, fmt.Errorf("build catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("X-Api-Key", c.cfg.APIKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return resolve.CatalogProduct{}, fmt.Errorf("catalog lookup: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return resolve.CatalogProduct{}, nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return resolve.CatalogProduct{}, resolve.ErrQuotaExceeded
	case resp.StatusCode != http.StatusOK:
		return resolve.CatalogProduct{}, fmt.Errorf("catalog status %d", resp.StatusCode)
	}

	var body catalogResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return resolve.CatalogProduct{}, fmt.Errorf("%w: %v", resolve.ErrMalformedResponse, err)
	}
	if !body.Found || body.Title == "" {
		return resolve.CatalogProduct{}, nil
	}

	product := resolve.CatalogProduct{
		Found: true,
		Title: body.Title,
		Brand: body.Brand,
		Price: body.Price,
	}
	for _, img := range body.Images {
		if UsableImage(img) {
			product.Images = append(product.Images, img)
		}
	}
	c.log.Debug("catalog hit", zap.String("asin", asin), zap.String("title", body.Title))
	return product, nil
}
