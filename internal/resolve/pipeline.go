package resolve

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fairwaylabs/linkresolver/internal/brandindex"
	"github.com/fairwaylabs/linkresolver/internal/metrics"
	"github.com/fairwaylabs/linkresolver/internal/urlparse"
)

// Settings are the pipeline-wide defaults, overridable per request
// through Options.
type Settings struct {
	EarlyExitConfidence  float64
	PersistenceThreshold float64
	FetchTimeout         time.Duration
	BatchConcurrency     int
}

// DefaultSettings returns the tuned pipeline defaults.
func DefaultSettings() Settings {
	return Settings{
		EarlyExitConfidence:  0.85,
		PersistenceThreshold: 0.7,
		FetchTimeout:         5 * time.Second,
		BatchConcurrency:     5,
	}
}

// Deps are the external collaborators. Any nil dependency disables the
// corresponding stage, which keeps tests and the urlOnly CLI mode
// honest about what can run.
type Deps struct {
	Cache       CacheStore
	Fetcher     Fetcher
	Renderer    Renderer
	Marketplace MarketplaceClient
	Images      ImageSearcher
	Semantic    SemanticResolver
}

// Pipeline sequences the resolution stages for one URL under the
// early-exit confidence contract. It is the sole cache writer.
type Pipeline struct {
	log      *zap.Logger
	index    *brandindex.Index
	analyzer *urlparse.Analyzer
	deps     Deps
	settings Settings
}

// New builds a Pipeline. Settings zero values are replaced with the
// defaults.
func New(log *zap.Logger, index *brandindex.Index, analyzer *urlparse.Analyzer, deps Deps, settings Settings) *Pipeline {
	def := DefaultSettings()
	if settings.EarlyExitConfidence <= 0 {
		settings.EarlyExitConfidence = def.EarlyExitConfidence
	}
	if settings.PersistenceThreshold <= 0 {
		settings.PersistenceThreshold = def.PersistenceThreshold
	}
	if settings.FetchTimeout <= 0 {
		settings.FetchTimeout = def.FetchTimeout
	}
	if settings.BatchConcurrency <= 0 {
		settings.BatchConcurrency = def.BatchConcurrency
	}
	return &Pipeline{
		log:      log,
		index:    index,
		analyzer: analyzer,
		deps:     deps,
		settings: settings,
	}
}

// Resolve identifies the product behind one URL. It always returns a
// usable Result, at worst a zero-confidence shell; stage failures are
// recovered by falling through, never surfaced to the caller.
func (p *Pipeline) Resolve(ctx context.Context, rawURL string, opts Options) Result {
	start := time.Now()
	opts = p.applyDefaults(opts)

	normalized, key, cacheable := p.normalize(rawURL)

	// CacheCheck
	if cacheable && p.deps.Cache != nil {
		if entry, err := p.deps.Cache.Get(ctx, key); err == nil {
			metrics.ObserveCacheLookup(true)
			out := entry.Result
			out.ProcessingMs = time.Since(start).Milliseconds()
			return out
		}
		metrics.ObserveCacheLookup(false)
	}

	b := NewBuilder(normalized)

	// StructuralAnalysis
	stageStart := time.Now()
	analysis := p.analyzer.Analyze(normalized)
	b.Visited(StageStructural)
	b.Upgrade(StageStructural, analysis.Confidence, Result{
		Brand:       analysis.Brand,
		ProductName: analysis.HumanizedName,
		Category:    analysis.Category,
		SKU:         analysis.SKU,
		Color:       analysis.Color,
		Size:        analysis.Size,
	})
	metrics.ObserveStage(string(StageStructural), time.Since(stageStart))
	if !analysis.Known && analysis.Domain != "" {
		metrics.ObserveUnrecognizedDomain(analysis.Domain)
	}

	if opts.URLOnly {
		return p.finish(ctx, b, start, key, cacheable, opts)
	}
	if b.Confidence() >= opts.EarlyExitConfidence {
		p.polish(ctx, b, analysis, opts)
		return p.finish(ctx, b, start, key, cacheable, opts)
	}

	// StructuredFetch
	var page PageData
	var blocked, timedOut, fetched bool
	if p.deps.Fetcher != nil {
		stageStart = time.Now()
		b.Visited(StageStructured)
		fctx, cancel := context.WithTimeout(ctx, opts.FetchTimeout)
		outcome, err := p.deps.Fetcher.Fetch(fctx, normalized)
		cancel()
		metrics.ObserveStage(string(StageStructured), time.Since(stageStart))
		switch {
		case err != nil:
			timedOut = errors.Is(err, context.DeadlineExceeded)
			blocked = errors.Is(err, ErrBlocked)
			p.log.Debug("structured fetch failed",
				zap.String("url", normalized), zap.Error(err))
		case outcome.Blocked:
			blocked = true
		case outcome.Found:
			fetched = true
			page = outcome.Data
			b.Upgrade(StageStructured, outcome.Confidence, pageResult(outcome.Data))
		}
		if b.Confidence() >= opts.EarlyExitConfidence {
			return p.finish(ctx, b, start, key, cacheable, opts)
		}
	}

	// MarketplaceLookup, gated on a recognized marketplace identifier.
	if p.deps.Marketplace != nil {
		if id, ok := p.deps.Marketplace.ExtractID(normalized); ok {
			stageStart = time.Now()
			b.Visited(StageMarketplace)
			mctx, cancel := context.WithTimeout(ctx, opts.FetchTimeout)
			product, err := p.deps.Marketplace.Lookup(mctx, id)
			cancel()
			metrics.ObserveStage(string(StageMarketplace), time.Since(stageStart))
			if err != nil {
				p.log.Debug("marketplace lookup failed",
					zap.String("id", id), zap.Error(err))
			} else if product.Found {
				b.Upgrade(StageMarketplace, marketplaceConfidence, catalogResult(product))
			}
			if b.Confidence() >= opts.EarlyExitConfidence {
				return p.finish(ctx, b, start, key, cacheable, opts)
			}
		}
	}

	// RenderingFallback, only on a block, a timeout, or a fetch that
	// came back empty from a domain known to need script execution.
	needRender := blocked || timedOut || (!fetched && analysis.Entry.RequiresRender)
	if p.deps.Renderer != nil && needRender {
		stageStart = time.Now()
		b.Visited(StageRendering)
		rctx, cancel := context.WithTimeout(ctx, opts.FetchTimeout)
		outcome, err := p.deps.Renderer.Render(rctx, normalized)
		cancel()
		metrics.ObserveStage(string(StageRendering), time.Since(stageStart))
		if err != nil {
			p.log.Debug("rendering fallback failed",
				zap.String("url", normalized), zap.Error(err))
		} else if outcome.Found {
			page = outcome.Data
			fetched = true
			b.Upgrade(StageRendering, outcome.Confidence, pageResult(outcome.Data))
		}
		if b.Confidence() >= opts.EarlyExitConfidence {
			return p.finish(ctx, b, start, key, cacheable, opts)
		}
	}

	// ImageEnrichment fills a missing photo and nothing else.
	p.enrichImage(ctx, b, opts)

	// SemanticResolve
	if p.deps.Semantic != nil && !opts.SkipAI && b.Confidence() < opts.EarlyExitConfidence {
		stageStart = time.Now()
		b.Visited(StageSemantic)
		sctx, cancel := context.WithTimeout(ctx, opts.FetchTimeout)
		answer, err := p.deps.Semantic.Resolve(sctx, p.query(analysis, page))
		cancel()
		metrics.ObserveStage(string(StageSemantic), time.Since(stageStart))
		if err != nil {
			p.log.Debug("semantic resolve failed",
				zap.String("url", normalized), zap.Error(err))
		} else {
			b.Upgrade(StageSemantic, answer.Confidence, Result{
				Brand:       answer.Brand,
				ProductName: answer.Name,
				Category:    answer.Category,
			})
			if answer.Suggestion != nil && !analysis.Known {
				p.index.RecordSuggestion(brandindex.Suggestion{
					Domain:    answer.Suggestion.Domain,
					Brand:     answer.Suggestion.Brand,
					Category:  answer.Suggestion.Category,
					SourceURL: normalized,
				})
			}
		}
	}

	return p.finish(ctx, b, start, key, cacheable, opts)
}

// ResolveAll resolves a batch of URLs with bounded concurrency,
// preserving input order in the output.
func (p *Pipeline) ResolveAll(ctx context.Context, urls []string, opts Options) []Result {
	results := make([]Result, len(urls))
	sem := make(chan struct{}, p.settings.BatchConcurrency)
	var wg sync.WaitGroup

	for i, u := range urls {
		wg.Add(1)
		go func(i int, u string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = p.Resolve(ctx, u, opts)
		}(i, u)
	}
	wg.Wait()
	return results
}

const marketplaceConfidence = 0.9

func (p *Pipeline) applyDefaults(opts Options) Options {
	if opts.FetchTimeout <= 0 {
		if opts.FetchTimeoutMs > 0 {
			opts.FetchTimeout = time.Duration(opts.FetchTimeoutMs) * time.Millisecond
		} else {
			opts.FetchTimeout = p.settings.FetchTimeout
		}
	}
	if opts.EarlyExitConfidence <= 0 {
		opts.EarlyExitConfidence = p.settings.EarlyExitConfidence
	}
	return opts
}

func (p *Pipeline) normalize(rawURL string) (normalized, key string, cacheable bool) {
	normalized, err := NormalizeURL(rawURL)
	if err != nil {
		// The analyzer copes with malformed URLs; caching cannot.
		return rawURL, "", false
	}
	return normalized, CacheKey(normalized), true
}

// polish runs the cheap model over a high-confidence structural name
// to fix wording the humanizer got mechanically wrong. Best effort,
// never touches confidence.
func (p *Pipeline) polish(ctx context.Context, b *Builder, analysis urlparse.Analysis, opts Options) {
	if p.deps.Semantic == nil || opts.SkipAI {
		return
	}
	sctx, cancel := context.WithTimeout(ctx, opts.FetchTimeout)
	defer cancel()
	answer, err := p.deps.Semantic.Polish(sctx, p.query(analysis, PageData{}))
	if err != nil {
		p.log.Debug("polish failed", zap.String("url", analysis.URL), zap.Error(err))
		return
	}
	b.SetProductName(answer.Name)
}

func (p *Pipeline) enrichImage(ctx context.Context, b *Builder, opts Options) {
	if p.deps.Images == nil || b.HasImage() {
		return
	}
	r := b.result
	if r.Brand == "" || r.ProductName == "" {
		return
	}
	stageStart := time.Now()
	b.Visited(StageImage)
	ictx, cancel := context.WithTimeout(ctx, opts.FetchTimeout)
	defer cancel()
	imageURL, err := p.deps.Images.FindImage(ictx, r.Brand, r.ProductName)
	metrics.ObserveStage(string(StageImage), time.Since(stageStart))
	if err != nil {
		p.log.Debug("image search failed",
			zap.String("brand", r.Brand), zap.Error(err))
		return
	}
	b.SetImage(imageURL)
}

func (p *Pipeline) query(analysis urlparse.Analysis, page PageData) Query {
	return Query{
		URL:          analysis.URL,
		Domain:       analysis.Domain,
		KnownDomain:  analysis.Known,
		Retailer:     analysis.Retailer,
		Brand:        analysis.Brand,
		ParsedName:   analysis.HumanizedName,
		Category:     analysis.Category,
		ScrapedText:  page.RawText,
		ScrapedTitle: page.Title,
	}
}

func (p *Pipeline) finish(ctx context.Context, b *Builder, start time.Time, key string, cacheable bool, opts Options) Result {
	out := b.Build(time.Since(start).Milliseconds())

	if cacheable && p.deps.Cache != nil && out.Confidence >= p.settings.PersistenceThreshold {
		entry := CacheEntry{
			Key:         key,
			URL:         out.URL,
			Result:      out,
			SourceStage: out.PrimarySource,
			ResolvedAt:  time.Now().UTC(),
		}
		if err := p.deps.Cache.Put(ctx, entry); err != nil {
			p.log.Warn("cache write failed", zap.String("url", out.URL), zap.Error(err))
		}
	}

	metrics.ObserveResolution(string(out.PrimarySource), out.URL)
	p.log.Info("resolved",
		zap.String("url", out.URL),
		zap.String("source", string(out.PrimarySource)),
		zap.Float64("confidence", out.Confidence),
		zap.Int64("ms", out.ProcessingMs),
	)
	return out
}

func pageResult(d PageData) Result {
	name := d.Name
	if name == "" {
		name = d.Title
	}
	return Result{
		Brand:          d.Brand,
		ProductName:    name,
		Category:       d.Category,
		Price:          d.Price,
		Currency:       d.Currency,
		ImageURL:       d.ImageURL,
		Specifications: d.Specifications,
	}
}

func catalogResult(p CatalogProduct) Result {
	out := Result{
		Brand:       p.Brand,
		ProductName: p.Title,
		Price:       p.Price,
	}
	if len(p.Images) > 0 {
		out.ImageURL = p.Images[0]
	}
	return out
}
