package brandindex

import "strings"

// slugBrand pairs a normalized slug prefix with its canonical brand name.
// Multi-word brands come first so "scotty cameron" wins over "cameron".
type slugBrand struct {
	prefix string
	brand  string
}

var slugBrands = []slugBrand{
	// Golf, multi-word first
	{"scotty cameron", "Scotty Cameron"},
	{"voice caddie", "Voice Caddie"},
	{"shot scope", "Shot Scope"},
	{"super stroke", "SuperStroke"},
	{"superstroke", "SuperStroke"},
	{"golf pride", "Golf Pride"},
	{"travis mathew", "TravisMathew"},
	{"travismathew", "TravisMathew"},
	{"peter millar", "Peter Millar"},
	{"bad birdie", "Bad Birdie"},

	// Golf, single word
	{"taylormade", "TaylorMade"},
	{"callaway", "Callaway"},
	{"titleist", "Titleist"},
	{"bridgestone", "Bridgestone"},
	{"cleveland", "Cleveland"},
	{"odyssey", "Odyssey"},
	{"mizuno", "Mizuno"},
	{"srixon", "Srixon"},
	{"cobra", "Cobra"},
	{"ping", "PING"},
	{"vokey", "Vokey"},
	{"wilson", "Wilson"},
	{"xxio", "XXIO"},
	{"pxg", "PXG"},
	{"honma", "Honma"},
	{"miura", "Miura"},
	{"bettinardi", "Bettinardi"},
	{"bushnell", "Bushnell"},
	{"garmin", "Garmin"},
	{"arccos", "Arccos"},
	{"footjoy", "FootJoy"},
	{"greyson", "Greyson"},
	{"linksoul", "Linksoul"},
	{"malbon", "Malbon Golf"},

	// General sports and fashion
	{"under armour", "Under Armour"},
	{"new balance", "New Balance"},
	{"nike", "Nike"},
	{"adidas", "adidas"},
	{"puma", "Puma"},

	// Tech
	{"apple", "Apple"},
	{"samsung", "Samsung"},
	{"sony", "Sony"},
	{"bose", "Bose"},
	{"logitech", "Logitech"},
	{"anker", "Anker"},
}

// BrandFromSlug extracts a known brand from the front of a product slug.
// Retailer URLs bury the brand in the slug ("taylormade-qi10-driver"), so
// the match is a prefix test over the hyphen-normalized slug.
func BrandFromSlug(slug string) string {
	normalized := strings.ToLower(strings.ReplaceAll(slug, "-", " "))
	for _, sb := range slugBrands {
		if strings.HasPrefix(normalized, sb.prefix) {
			// Require a word boundary after the prefix.
			rest := normalized[len(sb.prefix):]
			if rest == "" || strings.HasPrefix(rest, " ") {
				return sb.brand
			}
		}
	}
	return ""
}
