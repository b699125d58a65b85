package urlparse

import (
	"regexp"
	"strings"
)

// modelCorrections restores the casing of model codes that title-casing
// mangles. The table is small on purpose: it covers the codes the
// resolver actually sees, mostly golf equipment lines.
var modelCorrections = []struct {
	pattern     *regexp.Regexp
	replacement string
}{
	{regexp.MustCompile(`(?i)\bqi(10|35)\b`), "Qi$1"},
	{regexp.MustCompile(`(?i)\btsr([1-4])\b`), "TSR$1"},
	{regexp.MustCompile(`(?i)\btsi([1-4])\b`), "TSi$1"},
	{regexp.MustCompile(`(?i)\bgt([1-4])\b`), "GT$1"},
	{regexp.MustCompile(`(?i)\bpro v1x\b`), "Pro V1x"},
	{regexp.MustCompile(`(?i)\bpro v1\b`), "Pro V1"},
	{regexp.MustCompile(`(?i)\bavx\b`), "AVX"},
	{regexp.MustCompile(`(?i)\bsm(7|8|9|10)\b`), "SM$1"},
	{regexp.MustCompile(`(?i)\btp5x\b`), "TP5x"},
	{regexp.MustCompile(`(?i)\btp5\b`), "TP5"},
	{regexp.MustCompile(`(?i)\bg4(10|25|30)\b`), "G4$1"},
	{regexp.MustCompile(`(?i)\bltdx\b`), "LTDx"},
	{regexp.MustCompile(`(?i)\bjpx(\d+)\b`), "JPX$1"},
	{regexp.MustCompile(`(?i)\bzx([457])\b`), "ZX$1"},
	{regexp.MustCompile(`(?i)\bz star\b`), "Z-Star"},
	{regexp.MustCompile(`(?i)\brtx\b`), "RTX"},
	{regexp.MustCompile(`(?i)\bcbx\b`), "CBX"},
	{regexp.MustCompile(`(?i)\bhd\b`), "HD"},
	{regexp.MustCompile(`(?i)\bls\b`), "LS"},
}

var (
	multiSeparator  = regexp.MustCompile(`[-_]{2,}`)
	separators      = regexp.MustCompile(`[-_+]`)
	camelBoundary   = regexp.MustCompile(`([a-z])([A-Z])`)
	digitLetter     = regexp.MustCompile(`(\d)([a-zA-Z]{2,})`)
	urlArtifacts    = regexp.MustCompile(`(?i)\b(html?|aspx?|php|jsp)\b`)
	multiSpace      = regexp.MustCompile(`\s+`)
	trailingSKU     = regexp.MustCompile(`(?i)\s+[A-Z]{2,3}\d{3,}$`)
	trailingSize    = regexp.MustCompile(`(?i)\s+(xs|s|m|l|xl|xxl|2xl|3xl)\s*$`)
	leadingDividers = regexp.MustCompile(`^[-–—|:\s]+`)
)

// Humanize turns a URL slug into a display-ready product name. A known
// brand at the front of the slug is stripped so it is not repeated in
// the full name. Returns "" when the slug cannot produce a viable name.
func Humanize(slug, brand string) string {
	if len(slug) < 3 {
		return ""
	}

	s := fileExtension.ReplaceAllString(slug, "")
	s = multiSeparator.ReplaceAllString(s, " - ")
	s = separators.ReplaceAllString(s, " ")
	s = camelBoundary.ReplaceAllString(s, "$1 $2")
	s = digitLetter.ReplaceAllString(s, "$1 $2")
	s = urlArtifacts.ReplaceAllString(s, "")
	s = multiSpace.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)

	words := strings.Fields(s)
	for i, word := range words {
		// Short all-caps tokens are acronyms or model codes; keep them.
		if word == strings.ToUpper(word) && len(word) <= 5 && word != strings.ToLower(word) {
			continue
		}
		words[i] = titleCase(word)
	}
	s = strings.Join(words, " ")

	for _, mc := range modelCorrections {
		s = mc.pattern.ReplaceAllString(s, mc.replacement)
	}

	s = trailingSKU.ReplaceAllString(s, "")
	s = trailingSize.ReplaceAllString(s, "")

	if brand != "" {
		lower := strings.ToLower(s)
		brandLower := strings.ToLower(brand)
		if strings.HasPrefix(lower, brandLower) {
			s = strings.TrimSpace(s[len(brand):])
			s = leadingDividers.ReplaceAllString(s, "")
		}
	}

	s = strings.TrimSpace(s)
	if len(s) < 3 {
		return ""
	}
	return s
}

// FullName combines brand and product name, avoiding a doubled brand.
func FullName(brand, name string) string {
	if name == "" {
		return brand
	}
	if brand == "" {
		return name
	}
	if strings.HasPrefix(strings.ToLower(name), strings.ToLower(brand)) {
		return name
	}
	return brand + " " + name
}

func titleCase(word string) string {
	if word == "" {
		return word
	}
	return strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
}

func cleanSlug(slug string) string {
	slug = fileExtension.ReplaceAllString(slug, "")
	if i := strings.IndexByte(slug, '?'); i >= 0 {
		slug = slug[:i]
	}
	return strings.TrimSpace(slug)
}
