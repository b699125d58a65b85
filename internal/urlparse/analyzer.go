// Package urlparse extracts product identity from URL structure alone.
//
// Most product URLs carry enough signal to name the product without any
// network round trip: the domain names the brand, and one path segment
// encodes the product name as a slug. The analyzer scores candidate
// segments, humanizes the winner, and reports a confidence for the
// pipeline's early-exit decision.
package urlparse

import (
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/fairwaylabs/linkresolver/internal/brandindex"
)

// Weights holds the slug-scoring knobs. The defaults are empirically tuned
// against a fixture corpus of real product URLs; treat them as config.
type Weights struct {
	HyphenBonus     int // segment contains at least one hyphen
	PerHyphen       int // per additional hyphen
	PerHyphenCap    int
	PerCharCap      int // length bonus cap, one point per character
	MixedCaseBonus  int
	CategoryPenalty int // pure category words
	SKUPenalty      int // letter-digit-hyphen SKU shapes
	IDPenalty       int // prefix+digits identifiers
}

// DefaultWeights returns the tuned scoring weights.
func DefaultWeights() Weights {
	return Weights{
		HyphenBonus:     20,
		PerHyphen:       5,
		PerHyphenCap:    25,
		PerCharCap:      50,
		MixedCaseBonus:  10,
		CategoryPenalty: 50,
		SKUPenalty:      30,
		IDPenalty:       20,
	}
}

// Analysis is the structural read of one product URL.
type Analysis struct {
	URL      string
	Domain   string
	Path     string
	Params   url.Values
	Known    bool // domain present in the brand index
	Entry    brandindex.Entry
	Retailer bool

	Brand         string
	Category      string
	Slug          string
	HumanizedName string
	HintUsed      bool

	ModelNumber string
	SKU         string
	Color       string
	Size        string

	Confidence float64
}

// SlugCandidate is a scored path segment, kept exported for tests and
// debugging endpoints.
type SlugCandidate struct {
	Text  string
	Score int
}

// Analyzer scores URL paths against the domain-brand index.
type Analyzer struct {
	index   *brandindex.Index
	weights Weights
}

// NewAnalyzer builds an Analyzer. A zero Weights value selects the defaults.
func NewAnalyzer(index *brandindex.Index, weights Weights) *Analyzer {
	if weights == (Weights{}) {
		weights = DefaultWeights()
	}
	return &Analyzer{index: index, weights: weights}
}

// productPathIndicators typically precede the product slug segment.
var productPathIndicators = map[string]bool{
	"p": true, "product": true, "products": true, "pd": true, "dp": true,
	"item": true, "items": true, "detail": true, "details": true,
	"view": true, "gp": true, "t": true,
}

// nonProductSegments never contain a product name.
var nonProductSegments = map[string]bool{
	"shop": true, "buy": true, "store": true, "category": true,
	"categories": true, "collection": true, "collections": true,
	"sale": true, "new": true, "featured": true, "search": true,
	"cart": true, "checkout": true, "account": true, "help": true,
	"about": true,
}

// pureCategoryWords attract the category penalty during scoring.
var pureCategoryWords = map[string]bool{
	"men": true, "women": true, "mens": true, "womens": true, "unisex": true,
	"boys": true, "girls": true, "kids": true, "children": true,
	"tops": true, "bottoms": true, "pants": true, "shorts": true,
	"joggers": true, "jackets": true, "hoodies": true, "shirts": true,
	"shoes": true, "sneakers": true, "boots": true, "sandals": true,
	"running": true, "training": true, "accessories": true, "bags": true,
	"hats": true, "socks": true, "clearance": true, "outlet": true,
	"golf": true, "tennis": true, "yoga": true, "hiking": true,
	"outdoor": true, "gym": true, "fitness": true,
}

var localeSegment = regexp.MustCompile(`^(?:[a-z]{2})(?:[-_][a-zA-Z]{2})?$`)

var (
	skuShaped     = regexp.MustCompile(`(?i)^[A-Z]{2,3}-[A-Z0-9]{4,7}$`)
	idShaped      = regexp.MustCompile(`(?i)^(?:prod|sku[-_]?|ref=)[0-9A-Z]*\d+$|^[A-Z]{2,4}\d{5,}$`)
	fileExtension = regexp.MustCompile(`(?i)\.(?:html?|aspx?|php|jsp)$`)
	hasLetter     = regexp.MustCompile(`[a-zA-Z]`)
)

// Analyze parses a URL and extracts every structural signal it can.
// It never fails: invalid URLs produce a zero-confidence Analysis.
func (a *Analyzer) Analyze(rawURL string) Analysis {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		u, err = url.Parse("https://" + rawURL)
		if err != nil || u.Host == "" {
			return Analysis{URL: rawURL}
		}
	}

	host := strings.ToLower(strings.TrimPrefix(u.Hostname(), "www."))
	out := Analysis{
		URL:    rawURL,
		Domain: host,
		Path:   u.Path,
		Params: u.Query(),
	}

	entry, known := a.index.Lookup(host)
	out.Known = known
	out.Entry = entry
	out.Retailer = entry.Retailer
	out.Brand = entry.Brand
	out.Category = entry.Category

	segments := splitPath(u.Path)
	out.Slug, out.HintUsed = a.selectSlug(segments, entry)

	// Retailer slugs often lead with the brand name.
	if out.Retailer && out.Slug != "" {
		if b := brandindex.BrandFromSlug(out.Slug); b != "" {
			out.Brand = b
		}
	}

	out.HumanizedName = Humanize(out.Slug, out.Brand)
	out.ModelNumber, out.SKU = extractModelAndSKU(rawURL, out.Params)
	out.Color = extractColor(rawURL, out.Params)
	out.Size = extractSize(rawURL, out.Params)
	out.Confidence = a.confidence(out, len(segments))

	return out
}

func splitPath(path string) []string {
	raw := strings.Split(path, "/")
	segments := make([]string, 0, len(raw))
	for _, s := range raw {
		if s == "" || s == "_" {
			continue
		}
		if decoded, err := url.PathUnescape(s); err == nil {
			s = decoded
		}
		segments = append(segments, s)
	}
	return segments
}

// selectSlug picks the path segment most likely to encode the product name.
// A configured per-domain hint wins outright; otherwise every plausible
// segment is scored and the best one taken.
func (a *Analyzer) selectSlug(segments []string, entry brandindex.Entry) (string, bool) {
	if len(segments) == 0 {
		return "", false
	}

	// Deepest indicator wins when a URL nests several.
	if slug := a.slugFromHints(segments, entry.PathHints); slug != "" {
		return slug, true
	}

	candidates := a.scoreCandidates(segments)
	if len(candidates) == 0 || candidates[0].Score <= 0 {
		return "", false
	}
	return cleanSlug(candidates[0].Text), false
}

func (a *Analyzer) slugFromHints(segments []string, hints []brandindex.PathHint) string {
	for _, hint := range hints {
		last := -1
		for i, seg := range segments {
			if strings.EqualFold(seg, hint.Indicator) {
				last = i
			}
		}
		if last < 0 {
			continue
		}
		target := last + 1 + hint.SlugIndex
		if target < len(segments) && !strings.HasPrefix(segments[target], "_") {
			return cleanSlug(segments[target])
		}
	}
	return ""
}

func (a *Analyzer) scoreCandidates(segments []string) []SlugCandidate {
	candidates := make([]SlugCandidate, 0, len(segments))
	for _, seg := range segments {
		lower := strings.ToLower(seg)
		if nonProductSegments[lower] || productPathIndicators[lower] || localeSegment.MatchString(seg) {
			continue
		}
		if len(seg) <= 3 || !hasLetter.MatchString(seg) {
			continue
		}
		candidates = append(candidates, SlugCandidate{Text: seg, Score: a.Score(seg)})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		// Ties break toward the longer, more specific segment.
		return len(candidates[i].Text) > len(candidates[j].Text)
	})
	return candidates
}

// Score rates one path segment as a potential product slug.
func (a *Analyzer) Score(segment string) int {
	w := a.weights
	cleaned := fileExtension.ReplaceAllString(segment, "")
	lower := strings.ToLower(cleaned)

	score := 0
	if pureCategoryWords[lower] {
		score -= w.CategoryPenalty
	}
	if skuShaped.MatchString(cleaned) {
		score -= w.SKUPenalty
	}
	if idShaped.MatchString(cleaned) {
		score -= w.IDPenalty
	}

	if strings.Contains(cleaned, "-") {
		score += w.HyphenBonus
		hyphens := strings.Count(cleaned, "-")
		bonus := hyphens * w.PerHyphen
		if bonus > w.PerHyphenCap {
			bonus = w.PerHyphenCap
		}
		score += bonus
	}

	length := len(cleaned)
	if length > w.PerCharCap {
		length = w.PerCharCap
	}
	score += length

	if lower != cleaned && strings.ToUpper(cleaned) != cleaned {
		score += w.MixedCaseBonus
	}

	return score
}

// confidence applies the documented per-outcome ranges.
func (a *Analyzer) confidence(out Analysis, segmentCount int) float64 {
	if segmentCount == 0 {
		return 0
	}
	trivialName := len(out.HumanizedName) <= 5

	switch {
	case out.HintUsed && out.Brand != "" && !trivialName:
		return 0.85
	case out.Slug != "" && !trivialName:
		c := 0.5
		if out.Brand != "" {
			c += 0.15
		}
		if out.ModelNumber != "" {
			c += 0.05
		}
		if c > 0.7 {
			c = 0.7
		}
		return c
	case out.Brand != "":
		return 0.3
	default:
		return 0
	}
}
