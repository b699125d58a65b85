// Package resolve defines the core types and interfaces of the product
// identification pipeline, plus the orchestrator that sequences its stages.
package resolve

import (
	"time"
)

// Stage identifies which pipeline stage produced a result.
type Stage string

// Stage values recorded as a result's primary source.
const (
	StageCache       Stage = "cache"
	StageStructural  Stage = "url_structure"
	StageStructured  Stage = "structured_data"
	StageMarketplace Stage = "marketplace"
	StageRendering   Stage = "rendering"
	StageImage       Stage = "image_search"
	StageSemantic    Stage = "semantic"
	StageNone        Stage = "none"
)

// Options carries per-request knobs. Zero values fall back to the
// pipeline's configured defaults.
type Options struct {
	URLOnly             bool          `json:"url_only"`
	SkipAI              bool          `json:"skip_ai"`
	FetchTimeout        time.Duration `json:"-"`
	FetchTimeoutMs      int           `json:"fetch_timeout_ms"`
	EarlyExitConfidence float64       `json:"early_exit_confidence"`
}

// Result is the pipeline's answer for one URL. Fields are filled
// incrementally by stages; Confidence always belongs to exactly one
// stage, recorded in PrimarySource.
type Result struct {
	URL            string   `json:"url"`
	Brand          string   `json:"brand,omitempty"`
	ProductName    string   `json:"product_name"`
	FullName       string   `json:"full_name"`
	Category       string   `json:"category,omitempty"`
	Price          string   `json:"price,omitempty"`
	Currency       string   `json:"currency,omitempty"`
	ImageURL       string   `json:"image_url,omitempty"`
	SKU            string   `json:"sku,omitempty"`
	Color          string   `json:"color,omitempty"`
	Size           string   `json:"size,omitempty"`
	Specifications []string `json:"specifications,omitempty"`
	Confidence     float64  `json:"confidence"`
	PrimarySource  Stage    `json:"primary_source"`
	Sources        []Stage  `json:"sources,omitempty"`
	ProcessingMs   int64    `json:"processing_time_ms"`
}

// CacheEntry is the persisted form of a Result.
type CacheEntry struct {
	Key         string    `json:"key"`
	URL         string    `json:"url"`
	Result      Result    `json:"result"`
	SourceStage Stage     `json:"source_stage"`
	ResolvedAt  time.Time `json:"resolved_at"`
	Hits        int       `json:"hits"`
}

// PageData is product information extracted from a fetched or rendered
// page. RawText carries whatever free text was collected, for the
// semantic stage's prompt.
type PageData struct {
	Title          string
	Brand          string
	Name           string
	Category       string
	Price          string
	Currency       string
	ImageURL       string
	Description    string
	Specifications []string
	RawText        string
}

// FetchOutcome is the structured-data fetcher's verdict on one URL.
// Blocked means a bot challenge was served; it is distinct from a page
// that simply carried no product data.
type FetchOutcome struct {
	Found      bool
	Blocked    bool
	StatusCode int
	Data       PageData
	Confidence float64
}

// RenderOutcome is a rendering-fallback result, recording which
// renderer produced it.
type RenderOutcome struct {
	Found      bool
	Renderer   string
	Data       PageData
	Confidence float64
}

// CatalogProduct is a marketplace catalog lookup result.
type CatalogProduct struct {
	Found  bool
	Title  string
	Brand  string
	Price  string
	Images []string
}

// Query is the semantic resolver's input: the URL plus every signal
// the earlier stages collected.
type Query struct {
	URL          string
	Domain       string
	KnownDomain  bool
	Retailer     bool
	Brand        string
	ParsedName   string
	Category     string
	ScrapedText  string
	ScrapedTitle string
}

// SemanticAnswer is the language model's identification, with its
// self-reported certainty already bucketed into a confidence value.
type SemanticAnswer struct {
	Brand      string
	Name       string
	Category   string
	Confidence float64
	Suggestion *BrandSuggestion
}

// BrandSuggestion proposes a new domain-brand mapping for an
// unrecognized domain. It is logged for review, never applied.
type BrandSuggestion struct {
	Domain   string
	Brand    string
	Category string
}
