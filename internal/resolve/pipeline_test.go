package resolve

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fairwaylabs/linkresolver/internal/brandindex"
	"github.com/fairwaylabs/linkresolver/internal/urlparse"
)

type fakeCache struct {
	mu      sync.Mutex
	entries map[string]CacheEntry
	puts    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string]CacheEntry{}}
}

func (c *fakeCache) Get(_ context.Context, key string) (CacheEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return CacheEntry{}, ErrCacheMiss
	}
	return entry, nil
}

func (c *fakeCache) Put(_ context.Context, entry CacheEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[entry.Key] = entry
	c.puts++
	return nil
}

type fakeFetcher struct {
	mu      sync.Mutex
	outcome FetchOutcome
	err     error
	calls   int
}

func (f *fakeFetcher) Fetch(context.Context, string) (FetchOutcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.outcome, f.err
}

type fakeRenderer struct {
	outcome RenderOutcome
	err     error
	calls   int
}

func (r *fakeRenderer) Render(context.Context, string) (RenderOutcome, error) {
	r.calls++
	return r.outcome, r.err
}

type fakeMarketplace struct {
	id      string
	ok      bool
	product CatalogProduct
	lookups int
}

func (m *fakeMarketplace) ExtractID(string) (string, bool) { return m.id, m.ok }

func (m *fakeMarketplace) Lookup(context.Context, string) (CatalogProduct, error) {
	m.lookups++
	return m.product, nil
}

type fakeImages struct {
	url   string
	calls int
}

func (i *fakeImages) FindImage(context.Context, string, string) (string, error) {
	i.calls++
	return i.url, nil
}

type fakeSemantic struct {
	answer   SemanticAnswer
	err      error
	resolves int
	polishes int
}

func (s *fakeSemantic) Resolve(context.Context, Query) (SemanticAnswer, error) {
	s.resolves++
	return s.answer, s.err
}

func (s *fakeSemantic) Polish(context.Context, Query) (SemanticAnswer, error) {
	s.polishes++
	return s.answer, s.err
}

func newPipeline(t *testing.T, deps Deps) *Pipeline {
	t.Helper()
	index := brandindex.New(zap.NewNop())
	analyzer := urlparse.NewAnalyzer(index, urlparse.Weights{})
	return New(zap.NewNop(), index, analyzer, deps, Settings{})
}

func TestResolve_StructuralEarlyExit(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{}
	cache := newFakeCache()
	p := newPipeline(t, Deps{Cache: cache, Fetcher: fetcher})

	out := p.Resolve(context.Background(), "https://www.nike.com/t/air-max-90-shoe/DX1234-100", Options{})

	require.Equal(t, StageStructural, out.PrimarySource)
	require.GreaterOrEqual(t, out.Confidence, 0.85)
	require.Equal(t, "Nike", out.Brand)
	require.Equal(t, "Air Max 90 Shoe", out.ProductName)
	require.Equal(t, "Nike Air Max 90 Shoe", out.FullName)
	require.Zero(t, fetcher.calls, "early exit must skip the fetch stage")
	require.Equal(t, 1, cache.puts, "confident result must be persisted")
}

func TestResolve_CacheHitSkipsAllStages(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{}
	cache := newFakeCache()
	p := newPipeline(t, Deps{Cache: cache, Fetcher: fetcher})

	url := "https://www.nike.com/t/air-max-90-shoe/DX1234-100"
	first := p.Resolve(context.Background(), url, Options{})
	second := p.Resolve(context.Background(), url, Options{})

	require.Equal(t, first.PrimarySource, second.PrimarySource)
	require.Equal(t, first.Confidence, second.Confidence)
	require.Equal(t, first.FullName, second.FullName)
	require.Zero(t, fetcher.calls)
	require.Equal(t, 1, cache.puts, "cache hit must not rewrite")
}

func TestResolve_URLOnlyNeverTouchesTheNetwork(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{outcome: FetchOutcome{Found: true, Confidence: 0.95}}
	renderer := &fakeRenderer{}
	semantic := &fakeSemantic{}
	images := &fakeImages{url: "https://img.example/x.jpg"}
	p := newPipeline(t, Deps{Fetcher: fetcher, Renderer: renderer, Semantic: semantic, Images: images})

	// An unknown domain parses weakly, which would normally escalate.
	out := p.Resolve(context.Background(), "https://obscure-boutique.example/p/linen-shirt", Options{URLOnly: true})

	require.Equal(t, StageStructural, out.PrimarySource)
	require.Zero(t, fetcher.calls)
	require.Zero(t, renderer.calls)
	require.Zero(t, semantic.resolves)
	require.Zero(t, semantic.polishes)
	require.Zero(t, images.calls)
}

func TestResolve_StructuredDataWins(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{outcome: FetchOutcome{
		Found:      true,
		Confidence: 0.95,
		Data: PageData{
			Title: "Ghost 16 Running Shoe", Brand: "Brooks",
			Price: "139.95", Currency: "USD",
			ImageURL: "https://img.example/ghost16.jpg",
		},
	}}
	renderer := &fakeRenderer{}
	p := newPipeline(t, Deps{Fetcher: fetcher, Renderer: renderer})

	out := p.Resolve(context.Background(), "https://some-shop.example/products/ghost-16", Options{})

	require.Equal(t, StageStructured, out.PrimarySource)
	require.InDelta(t, 0.95, out.Confidence, 0.001)
	require.Equal(t, "Brooks", out.Brand)
	require.Equal(t, "139.95", out.Price)
	require.Zero(t, renderer.calls, "successful fetch must not render")
}

func TestResolve_BlockedTriggersRendering(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{outcome: FetchOutcome{Blocked: true}}
	renderer := &fakeRenderer{outcome: RenderOutcome{
		Found:      true,
		Renderer:   "headless",
		Confidence: 0.85,
		Data:       PageData{Title: "Stealth 2 Driver", Brand: "TaylorMade"},
	}}
	p := newPipeline(t, Deps{Fetcher: fetcher, Renderer: renderer})

	out := p.Resolve(context.Background(), "https://some-shop.example/products/stealth-2-driver", Options{})

	require.Equal(t, 1, renderer.calls)
	require.Equal(t, StageRendering, out.PrimarySource)
	require.InDelta(t, 0.85, out.Confidence, 0.001)
}

func TestResolve_FetchTimeoutTriggersRendering(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{err: context.DeadlineExceeded}
	renderer := &fakeRenderer{outcome: RenderOutcome{
		Found:      true,
		Renderer:   "headless",
		Confidence: 0.85,
		Data:       PageData{Title: "Stealth 2 Driver", Brand: "TaylorMade"},
	}}
	p := newPipeline(t, Deps{Fetcher: fetcher, Renderer: renderer})

	out := p.Resolve(context.Background(), "https://some-shop.example/products/stealth-2-driver", Options{})

	require.Equal(t, 1, fetcher.calls)
	require.Equal(t, 1, renderer.calls)
	require.Equal(t, StageRendering, out.PrimarySource)
	require.InDelta(t, 0.85, out.Confidence, 0.001)
}

func TestResolve_RequiresRenderDomainTriggersRendering(t *testing.T) {
	t.Parallel()

	// lululemon serves a shell page to plain fetches; an empty fetch
	// there escalates to the renderer even though nothing was blocked.
	// A category path keeps the structural stage weak enough to reach it.
	fetcher := &fakeFetcher{outcome: FetchOutcome{Found: false, StatusCode: 200}}
	renderer := &fakeRenderer{outcome: RenderOutcome{
		Found:      true,
		Renderer:   "headless",
		Confidence: 0.85,
		Data:       PageData{Title: "Align High-Rise Pant", Brand: "lululemon"},
	}}
	p := newPipeline(t, Deps{Fetcher: fetcher, Renderer: renderer})

	out := p.Resolve(context.Background(), "https://shop.lululemon.com/c/jackets", Options{})

	require.Equal(t, 1, fetcher.calls)
	require.Equal(t, 1, renderer.calls)
	require.Equal(t, StageRendering, out.PrimarySource)
	require.InDelta(t, 0.85, out.Confidence, 0.001)
}

func TestResolve_LowConfidenceFetchDoesNotRender(t *testing.T) {
	t.Parallel()

	// A found-but-weak page is a success, not a scrape failure.
	fetcher := &fakeFetcher{outcome: FetchOutcome{
		Found:      true,
		Confidence: 0.7,
		Data:       PageData{Title: "Some Shirt"},
	}}
	renderer := &fakeRenderer{}
	p := newPipeline(t, Deps{Fetcher: fetcher, Renderer: renderer})

	out := p.Resolve(context.Background(), "https://some-shop.example/products/linen-shirt-relaxed", Options{SkipAI: true})

	require.Zero(t, renderer.calls)
	require.Equal(t, StageStructured, out.PrimarySource)
	require.InDelta(t, 0.7, out.Confidence, 0.001)
}

func TestResolve_MarketplaceLookup(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{outcome: FetchOutcome{Blocked: true}}
	mp := &fakeMarketplace{
		id: "B0B5HQKFGL", ok: true,
		product: CatalogProduct{
			Found: true, Title: "Stealth 2 Driver", Brand: "TaylorMade",
			Price: "599.99", Images: []string{"https://img.example/stealth.jpg"},
		},
	}
	renderer := &fakeRenderer{}
	p := newPipeline(t, Deps{Fetcher: fetcher, Marketplace: mp, Renderer: renderer})

	out := p.Resolve(context.Background(), "https://www.amazon.com/TaylorMade-Stealth/dp/B0B5HQKFGL", Options{})

	require.Equal(t, 1, mp.lookups)
	require.Equal(t, StageMarketplace, out.PrimarySource)
	require.InDelta(t, 0.9, out.Confidence, 0.001)
	require.Equal(t, "https://img.example/stealth.jpg", out.ImageURL)
	require.Zero(t, renderer.calls, "marketplace success must exit before rendering")
}

func TestResolve_MalformedIdentifierSkipsMarketplace(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{outcome: FetchOutcome{Blocked: true}}
	mp := &fakeMarketplace{ok: false}
	renderer := &fakeRenderer{outcome: RenderOutcome{Found: true, Confidence: 0.8,
		Data: PageData{Title: "Mystery Product"}}}
	p := newPipeline(t, Deps{Fetcher: fetcher, Marketplace: mp, Renderer: renderer})

	out := p.Resolve(context.Background(), "https://www.amazon.com/gp/product/NOTANASIN", Options{})

	require.Zero(t, mp.lookups, "malformed identifier must short-circuit the stage")
	require.Equal(t, 1, renderer.calls)
	require.Equal(t, StageRendering, out.PrimarySource)
}

func TestResolve_SkipAINeverFabricatesConfidence(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{outcome: FetchOutcome{}} // nothing found
	semantic := &fakeSemantic{answer: SemanticAnswer{Brand: "Acme", Confidence: 0.9}}
	cache := newFakeCache()
	p := newPipeline(t, Deps{Cache: cache, Fetcher: fetcher, Semantic: semantic})

	out := p.Resolve(context.Background(), "https://www.nike.com/men/shoes", Options{SkipAI: true})

	require.Zero(t, semantic.resolves)
	require.Equal(t, StageStructural, out.PrimarySource)
	require.LessOrEqual(t, out.Confidence, 0.3)
	require.Zero(t, cache.puts, "weak guesses must not be persisted")
}

func TestResolve_SemanticSuggestionRecordedForUnknownDomain(t *testing.T) {
	t.Parallel()

	index := brandindex.New(zap.NewNop())
	analyzer := urlparse.NewAnalyzer(index, urlparse.Weights{})
	semantic := &fakeSemantic{answer: SemanticAnswer{
		Brand: "Vuori", Name: "Kore Short", Category: "apparel",
		Confidence: 0.8,
		Suggestion: &BrandSuggestion{Domain: "vuoriclothing.example", Brand: "Vuori", Category: "apparel"},
	}}
	p := New(zap.NewNop(), index, analyzer, Deps{Fetcher: &fakeFetcher{}, Semantic: semantic}, Settings{})

	out := p.Resolve(context.Background(), "https://vuoriclothing.example/products/kore", Options{})

	require.Equal(t, StageSemantic, out.PrimarySource)
	require.Equal(t, 1, semantic.resolves)
	require.Len(t, index.Suggestions(), 1)
	require.Equal(t, "Vuori", index.Suggestions()[0].Brand)
}

func TestResolve_ImageEnrichmentFillsPhotoWithoutConfidence(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{outcome: FetchOutcome{
		Found: true, Confidence: 0.7,
		Data: PageData{Title: "Metcon 9", Brand: "Nike"},
	}}
	images := &fakeImages{url: "https://img.example/metcon9.jpg"}
	p := newPipeline(t, Deps{Fetcher: fetcher, Images: images})

	out := p.Resolve(context.Background(), "https://some-shop.example/products/metcon-9-training", Options{SkipAI: true})

	require.Equal(t, 1, images.calls)
	require.Equal(t, "https://img.example/metcon9.jpg", out.ImageURL)
	require.Equal(t, StageStructured, out.PrimarySource)
	require.InDelta(t, 0.7, out.Confidence, 0.001, "enrichment must not move confidence")
}

func TestResolve_NeverReturnsAnError(t *testing.T) {
	t.Parallel()

	p := newPipeline(t, Deps{})
	out := p.Resolve(context.Background(), ":::not a url", Options{})

	require.NotNil(t, out)
	require.Zero(t, out.Confidence)
	require.Equal(t, StageNone, out.PrimarySource)
}

func TestResolveAll_PreservesOrder(t *testing.T) {
	t.Parallel()

	p := newPipeline(t, Deps{})
	urls := []string{
		"https://www.nike.com/t/air-max-90-shoe/DX1234-100",
		"https://titleist.com/shop/pro-v1-golf-balls",
		"https://www.nike.com/t/dri-fit-tee/AB1234",
	}
	results := p.ResolveAll(context.Background(), urls, Options{URLOnly: true})

	require.Len(t, results, 3)
	require.Equal(t, "Nike Air Max 90 Shoe", results[0].FullName)
	require.Contains(t, results[1].FullName, "Titleist")
	require.Contains(t, results[2].FullName, "Dri Fit")
}

func TestResolve_CallerCancellationPropagates(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{err: context.Canceled}
	p := newPipeline(t, Deps{Fetcher: fetcher})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan Result, 1)
	go func() {
		done <- p.Resolve(ctx, "https://some-shop.example/products/anything-at-all", Options{SkipAI: true})
	}()

	select {
	case out := <-done:
		require.LessOrEqual(t, out.Confidence, 0.7)
	case <-time.After(2 * time.Second):
		t.Fatal("resolution did not return promptly after cancellation")
	}
}
