package resolve

import "context"

// CacheStore persists resolved results keyed by normalized-URL hash.
// Get returns ErrCacheMiss when no live entry exists. Put must be an
// atomic upsert so concurrent resolutions of the same URL race safely.
type CacheStore interface {
	Get(ctx context.Context, key string) (CacheEntry, error)
	Put(ctx context.Context, entry CacheEntry) error
}

// Fetcher performs the single lightweight GET of the structured-data
// stage. Transport failures are reported through the error; a served
// bot challenge comes back as Blocked in the outcome, not an error.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (FetchOutcome, error)
}

// Renderer runs a page through a rendering service and extracts
// product data from the rendered output.
type Renderer interface {
	Render(ctx context.Context, url string) (RenderOutcome, error)
}

// MarketplaceClient resolves catalog identifiers against the supported
// marketplace. ExtractID reports whether the URL carries a well-formed
// identifier; a false return short-circuits the stage.
type MarketplaceClient interface {
	ExtractID(url string) (string, bool)
	Lookup(ctx context.Context, productID string) (CatalogProduct, error)
}

// ImageSearcher finds a representative product photo for brand + name.
// Enrichment only: its result never affects confidence.
type ImageSearcher interface {
	FindImage(ctx context.Context, brand, name string) (string, error)
}

// SemanticResolver asks a language model to identify the product from
// the URL and any partial content earlier stages collected. Polish is
// the cheap cleanup pass applied to high-confidence structural names.
type SemanticResolver interface {
	Resolve(ctx context.Context, q Query) (SemanticAnswer, error)
	Polish(ctx context.Context, q Query) (SemanticAnswer, error)
}
