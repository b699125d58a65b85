// Package brandindex maps registrable domains to canonical brand metadata.
//
// The index is the foundation of URL intelligence: it answers "whose site is
// this" without any network I/O. Entries are seeded at deploy time; the
// semantic resolver may record suggestions for unknown domains, but a
// suggestion is never trusted until promoted out of band.
package brandindex

import (
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"
)

// Tier is a rough price positioning for an indexed brand.
type Tier string

// Brand tiers as recorded in the seed data.
const (
	TierLuxury  Tier = "luxury"
	TierPremium Tier = "premium"
	TierMid     Tier = "mid"
	TierValue   Tier = "value"
)

// PathHint describes where a product slug sits relative to a known
// product-path indicator segment for one domain.
type PathHint struct {
	Indicator string
	SlugIndex int
}

// Entry holds everything the index knows about one domain.
type Entry struct {
	Domain         string
	Brand          string // empty for retailers; the brand lives in the slug
	Category       string
	Tier           Tier
	Aliases        []string
	Retailer       bool
	PathHints      []PathHint
	RequiresRender bool // plain fetches are known to fail on this domain
}

// Suggestion is a candidate domain-to-brand mapping proposed by the
// semantic resolver. Suggestions are append-only and never auto-applied:
// one wrong promotion would corrupt structural analysis for the domain.
type Suggestion struct {
	Domain    string
	Brand     string
	Category  string
	SourceURL string
	SeenAt    time.Time
}

// Index is a read-mostly domain lookup table, safe for concurrent use.
type Index struct {
	mu          sync.RWMutex
	entries     map[string]Entry
	suggestions []Suggestion
	log         *zap.Logger
}

// New builds an Index seeded with the built-in domain data.
func New(log *zap.Logger) *Index {
	if log == nil {
		log = zap.NewNop()
	}
	entries := make(map[string]Entry, len(seedEntries))
	for _, e := range seedEntries {
		entries[e.Domain] = e
	}
	return &Index{
		entries: entries,
		log:     log,
	}
}

// Lookup resolves a hostname to its index entry. It tries the exact host
// (minus any www prefix) first, then the registrable domain.
func (ix *Index) Lookup(host string) (Entry, bool) {
	host = strings.ToLower(strings.TrimPrefix(host, "www."))
	if host == "" {
		return Entry{}, false
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if e, ok := ix.entries[host]; ok {
		return e, true
	}
	if reg, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil && reg != host {
		if e, ok := ix.entries[reg]; ok {
			return e, true
		}
	}
	return Entry{}, false
}

// RecordSuggestion appends a proposed mapping for an unrecognized domain.
// The suggestion is logged for human review, never applied to lookups.
func (ix *Index) RecordSuggestion(s Suggestion) {
	s.Domain = strings.ToLower(strings.TrimPrefix(s.Domain, "www."))
	if s.Domain == "" {
		return
	}
	if s.SeenAt.IsZero() {
		s.SeenAt = time.Now().UTC()
	}

	ix.mu.Lock()
	ix.suggestions = append(ix.suggestions, s)
	ix.mu.Unlock()

	ix.log.Info("brand mapping suggested for unrecognized domain",
		zap.String("domain", s.Domain),
		zap.String("brand", s.Brand),
		zap.String("category", s.Category),
	)
}

// Suggestions returns a copy of all recorded suggestions.
func (ix *Index) Suggestions() []Suggestion {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	out := make([]Suggestion, len(ix.suggestions))
	copy(out, ix.suggestions)
	return out
}

// Len reports the number of seeded entries.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.entries)
}
