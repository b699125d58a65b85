package urlparse

import (
	"net/url"
	"regexp"
	"strings"
)

// skuPatterns match model numbers and SKUs embedded in product URLs,
// ordered most to least specific.
var skuPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(B0[A-Z0-9]{8})\b`),                // Amazon ASIN
	regexp.MustCompile(`(?i)\b([A-Z]{2,4}\d{4,8})\b`),        // GMF000027
	regexp.MustCompile(`(?i)\b([A-Z]+-[A-Z0-9]+-\d+)\b`),     // XYZ-ABC-123
	regexp.MustCompile(`(?i)\b([A-Z]{2,3}-\d{3,6})\b`),       // AB-12345
	regexp.MustCompile(`(?i)\b([A-Z]{1,2}\d{2,4}[A-Z]{1,3})\b`), // DX1234-100 style prefix
}

var colorWords = regexp.MustCompile(`(?i)\b(black|white|red|blue|green|navy|grey|gray|brown|tan|beige|cream|olive|pink|purple|orange|yellow|silver|gold|bronze|charcoal|midnight|onyx|ivory|slate|graphite|heather)\b`)

var colorCodes = map[string]string{
	"blk": "Black", "wht": "White", "nvy": "Navy", "gry": "Gray",
	"blu": "Blue", "grn": "Green", "brn": "Brown", "pnk": "Pink",
	"prp": "Purple", "org": "Orange", "ylw": "Yellow", "slv": "Silver",
	"gld": "Gold",
}

var (
	sizeParamPattern = regexp.MustCompile(`(?i)\bsize[=_]?([\d.]+|xs|s|m|l|xl|xxl|2xl|3xl)\b`)
	colorParam       = regexp.MustCompile(`(?i)color[=_]([^&_/]+)`)
	alphaOnly        = regexp.MustCompile(`^[a-zA-Z]+$`)
)

func extractModelAndSKU(rawURL string, params url.Values) (model, sku string) {
	for _, key := range []string{"sku", "productId", "id", "pid", "skuId"} {
		if v := params.Get(key); v != "" {
			sku = v
			break
		}
	}
	for _, p := range skuPatterns {
		if m := p.FindStringSubmatch(rawURL); m != nil {
			model = m[1]
			break
		}
	}
	return model, sku
}

func extractColor(rawURL string, params url.Values) string {
	if c := params.Get("color"); c != "" {
		return humanizeColor(c)
	}
	if m := colorParam.FindStringSubmatch(rawURL); m != nil {
		return humanizeColor(m[1])
	}
	if m := colorWords.FindStringSubmatch(rawURL); m != nil {
		return titleCase(m[1])
	}
	return ""
}

func extractSize(rawURL string, params url.Values) string {
	if s := params.Get("size"); s != "" {
		return strings.ToUpper(s)
	}
	if m := sizeParamPattern.FindStringSubmatch(rawURL); m != nil {
		return strings.ToUpper(m[1])
	}
	return ""
}

func humanizeColor(code string) string {
	if mapped, ok := colorCodes[strings.ToLower(code)]; ok {
		return mapped
	}
	if len(code) > 3 && alphaOnly.MatchString(code) {
		return titleCase(code)
	}
	return code
}
