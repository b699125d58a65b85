// Package marketplace resolves Amazon catalog identifiers against a
// product catalog API.
package marketplace

import (
	"net/url"
	"regexp"
	"strings"
)

// amazonDomains covers the storefronts the catalog API can answer for.
var amazonDomains = map[string]bool{
	"amazon.com":    true,
	"amazon.co.uk":  true,
	"amazon.ca":     true,
	"amazon.de":     true,
	"amazon.fr":     true,
	"amazon.it":     true,
	"amazon.es":     true,
	"amazon.co.jp":  true,
	"amazon.com.au": true,
	"amzn.to":       true,
	"amzn.eu":       true,
	"a.co":          true,
}

var asinShape = regexp.MustCompile(`^[A-Z0-9]{10}$`)

// asinPathPatterns locate the identifier segment in the URL path.
var asinPathPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/dp/([A-Z0-9]{10})(?:[/?]|$)`),
	regexp.MustCompile(`/gp/product/([A-Z0-9]{10})(?:[/?]|$)`),
	regexp.MustCompile(`/gp/aw/d/([A-Z0-9]{10})(?:[/?]|$)`),
	regexp.MustCompile(`/p/([A-Z0-9]{10})(?:[/?]|$)`),
}

// ExtractASIN pulls a well-formed ASIN from an Amazon URL. It reports
// false for non-Amazon domains and for malformed identifiers, which
// short-circuits the marketplace stage.
func ExtractASIN(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "", false
	}
	host := strings.ToLower(strings.TrimPrefix(u.Hostname(), "www."))
	if !amazonDomains[host] {
		return "", false
	}

	for _, p := range asinPathPatterns {
		if m := p.FindStringSubmatch(u.Path); m != nil {
			return m[1], true
		}
	}
	if id := u.Query().Get("asin"); asinShape.MatchString(id) {
		return id, true
	}
	return "", false
}

// IsAmazonDomain reports whether a host belongs to a supported
// storefront.
func IsAmazonDomain(host string) bool {
	return amazonDomains[strings.ToLower(strings.TrimPrefix(host, "www."))]
}

// placeholderImagePatterns identify the template and sprite images the
// catalog returns for listings without real photography.
var placeholderImagePatterns = []string{
	"no-img",
	"no_image",
	"noimage",
	"grey-pixel",
	"gray-pixel",
	"transparent-pixel",
	"sprite",
	"placeholder",
	"spacer",
	"blank.gif",
	"1x1",
}

// UsableImage filters out placeholder catalog imagery.
func UsableImage(imageURL string) bool {
	if imageURL == "" {
		return false
	}
	lower := strings.ToLower(imageURL)
	for _, p := range placeholderImagePatterns {
		if strings.Contains(lower, p) {
			return false
		}
	}
	return true
}
