package resolve

import "github.com/fairwaylabs/linkresolver/internal/urlparse"

// Builder assembles a Result across stages. Stages may only upgrade:
// fill empty fields, or replace the identification wholesale when they
// bring strictly higher confidence. Nothing a later stage does can
// lower the confidence an earlier stage established.
type Builder struct {
	result Result
}

// NewBuilder starts an empty result for one URL.
func NewBuilder(url string) *Builder {
	return &Builder{result: Result{URL: url, PrimarySource: StageNone}}
}

// Visited appends a stage to the attempt trail.
func (b *Builder) Visited(stage Stage) {
	b.result.Sources = append(b.result.Sources, stage)
}

// Confidence reports the best confidence established so far.
func (b *Builder) Confidence() float64 {
	return b.result.Confidence
}

// HasImage reports whether an image has been filled in.
func (b *Builder) HasImage() bool {
	return b.result.ImageURL != ""
}

// Upgrade merges a stage's identification into the result if it beats
// the current confidence. Lower-confidence candidates still contribute
// fields the result is missing, but never the confidence or source.
func (b *Builder) Upgrade(stage Stage, confidence float64, candidate Result) {
	if confidence > b.result.Confidence {
		b.promote(stage, confidence, candidate)
		return
	}
	b.fillMissing(candidate)
}

func (b *Builder) promote(stage Stage, confidence float64, c Result) {
	prev := b.result
	b.result.Confidence = confidence
	b.result.PrimarySource = stage
	if c.Brand != "" {
		b.result.Brand = c.Brand
	}
	if c.ProductName != "" {
		b.result.ProductName = c.ProductName
	}
	if c.Category != "" {
		b.result.Category = c.Category
	}
	b.fillFrom(c)
	// Fields the new stage did not produce survive from before.
	b.fillMissing(prev)
}

func (b *Builder) fillMissing(c Result) {
	if b.result.Brand == "" {
		b.result.Brand = c.Brand
	}
	if b.result.ProductName == "" {
		b.result.ProductName = c.ProductName
	}
	if b.result.Category == "" {
		b.result.Category = c.Category
	}
	b.fillFrom(c)
}

// fillFrom copies the enrichment fields that are never contested
// between stages, first writer wins.
func (b *Builder) fillFrom(c Result) {
	if b.result.Price == "" {
		b.result.Price = c.Price
	}
	if b.result.Currency == "" {
		b.result.Currency = c.Currency
	}
	if b.result.ImageURL == "" {
		b.result.ImageURL = c.ImageURL
	}
	if b.result.SKU == "" {
		b.result.SKU = c.SKU
	}
	if b.result.Color == "" {
		b.result.Color = c.Color
	}
	if b.result.Size == "" {
		b.result.Size = c.Size
	}
	if len(b.result.Specifications) == 0 {
		b.result.Specifications = c.Specifications
	}
}

// SetImage fills a missing image without touching confidence.
func (b *Builder) SetImage(imageURL string) {
	if b.result.ImageURL == "" {
		b.result.ImageURL = imageURL
	}
}

// SetProductName replaces the display name in place. Used by the
// polish pass, which cleans wording without claiming new confidence.
func (b *Builder) SetProductName(name string) {
	if name != "" {
		b.result.ProductName = name
	}
}

// Build finalizes the result, deriving FullName from brand and name.
func (b *Builder) Build(processingMs int64) Result {
	out := b.result
	out.ProcessingMs = processingMs
	out.FullName = urlparse.FullName(out.Brand, out.ProductName)
	return out
}
