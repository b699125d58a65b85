package lightweight

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dyatlov/go-opengraph/opengraph"

	"github.com/fairwaylabs/linkresolver/internal/resolve"
)

// Extraction confidence by source, best first.
const (
	confidenceSchema      = 0.95
	confidencePreviewFull = 0.8
	confidencePreviewThin = 0.7
)

// Extract pulls product data out of raw HTML. Priority order: schema.org
// Product markup, then Open Graph product tags, then title and meta
// description. The returned confidence reflects which source won.
func Extract(body []byte, pageURL string) (resolve.PageData, float64, bool) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return resolve.PageData{}, 0, false
	}

	if data, ok := extractSchemaProduct(doc); ok {
		data.RawText = visibleText(doc)
		data.ImageURL = absoluteImageURL(data.ImageURL, pageURL)
		return data, confidenceSchema, true
	}

	if data, full, ok := extractPreviewTags(doc, body); ok {
		data.RawText = visibleText(doc)
		data.ImageURL = absoluteImageURL(data.ImageURL, pageURL)
		if full {
			return data, confidencePreviewFull, true
		}
		return data, confidencePreviewThin, true
	}

	if data, ok := extractTitleFallback(doc); ok {
		data.RawText = visibleText(doc)
		return data, confidencePreviewThin, true
	}

	return resolve.PageData{}, 0, false
}

// absoluteImageURL resolves protocol-relative and path-relative image
// references against the page URL.
func absoluteImageURL(imageURL, pageURL string) string {
	if imageURL == "" || strings.HasPrefix(imageURL, "http") {
		return imageURL
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return imageURL
	}
	rel, err := url.Parse(imageURL)
	if err != nil {
		return imageURL
	}
	return base.ResolveReference(rel).String()
}

// extractSchemaProduct walks every JSON-LD block looking for a
// schema.org Product node, including @graph containers and arrays.
func extractSchemaProduct(doc *goquery.Document) (resolve.PageData, bool) {
	var found resolve.PageData
	var ok bool

	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var node any
		if err := json.Unmarshal([]byte(s.Text()), &node); err != nil {
			return true
		}
		if product, located := findProductNode(node); located {
			found = productFromSchema(product)
			ok = found.Name != "" || found.Title != ""
			return !ok
		}
		return true
	})
	return found, ok
}

func findProductNode(node any) (map[string]any, bool) {
	switch v := node.(type) {
	case map[string]any:
		if isProductType(v["@type"]) {
			return v, true
		}
		if graph, exists := v["@graph"]; exists {
			return findProductNode(graph)
		}
	case []any:
		for _, item := range v {
			if product, ok := findProductNode(item); ok {
				return product, true
			}
		}
	}
	return nil, false
}

func isProductType(t any) bool {
	switch v := t.(type) {
	case string:
		return strings.EqualFold(v, "Product")
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && strings.EqualFold(s, "Product") {
				return true
			}
		}
	}
	return false
}

func productFromSchema(node map[string]any) resolve.PageData {
	data := resolve.PageData{
		Name:        stringField(node["name"]),
		Description: stringField(node["description"]),
		Category:    stringField(node["category"]),
		ImageURL:    imageField(node["image"]),
	}
	data.Title = data.Name

	switch brand := node["brand"].(type) {
	case string:
		data.Brand = brand
	case map[string]any:
		data.Brand = stringField(brand["name"])
	}

	if offers := firstObject(node["offers"]); offers != nil {
		data.Price = stringField(offers["price"])
		data.Currency = stringField(offers["priceCurrency"])
		if data.Price == "" {
			if spec := firstObject(offers["priceSpecification"]); spec != nil {
				data.Price = stringField(spec["price"])
				data.Currency = stringField(spec["priceCurrency"])
			}
		}
	}

	if props, isList := node["additionalProperty"].([]any); isList {
		for _, p := range props {
			if prop, isObj := p.(map[string]any); isObj {
				name := stringField(prop["name"])
				value := stringField(prop["value"])
				if name != "" && value != "" {
					data.Specifications = append(data.Specifications, name+": "+value)
				}
			}
		}
	}
	return data
}

func stringField(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	}
	return ""
}

func imageField(v any) string {
	switch img := v.(type) {
	case string:
		return img
	case []any:
		if len(img) > 0 {
			return imageField(img[0])
		}
	case map[string]any:
		return stringField(img["url"])
	}
	return ""
}

func firstObject(v any) map[string]any {
	switch o := v.(type) {
	case map[string]any:
		return o
	case []any:
		if len(o) > 0 {
			return firstObject(o[0])
		}
	}
	return nil
}

// extractPreviewTags reads Open Graph and product meta tags. full is
// true when a price or image came along, not just a title.
func extractPreviewTags(doc *goquery.Document, body []byte) (resolve.PageData, bool, bool) {
	og := opengraph.NewOpenGraph()
	if err := og.ProcessHTML(bytes.NewReader(body)); err != nil {
		return resolve.PageData{}, false, false
	}

	title := CleanTitle(og.Title, og.SiteName)
	if title == "" || isGarbageTitle(title) {
		return resolve.PageData{}, false, false
	}

	data := resolve.PageData{
		Title:       title,
		Name:        title,
		Description: og.Description,
	}
	if len(og.Images) > 0 {
		data.ImageURL = og.Images[0].URL
	}

	// Price lives in product: meta tags that the OG parser skips.
	for _, sel := range []string{
		`meta[property="product:price:amount"]`,
		`meta[property="og:price:amount"]`,
	} {
		if v, exists := doc.Find(sel).First().Attr("content"); exists && v != "" {
			data.Price = v
			break
		}
	}
	for _, sel := range []string{
		`meta[property="product:price:currency"]`,
		`meta[property="og:price:currency"]`,
	} {
		if v, exists := doc.Find(sel).First().Attr("content"); exists && v != "" {
			data.Currency = v
			break
		}
	}
	if v, exists := doc.Find(`meta[property="product:brand"]`).First().Attr("content"); exists {
		data.Brand = v
	}

	isProduct := og.Type == "product" || strings.HasPrefix(og.Type, "product.")
	full := isProduct && (data.Price != "" || data.ImageURL != "")
	return data, full, true
}

func extractTitleFallback(doc *goquery.Document) (resolve.PageData, bool) {
	title := CleanTitle(doc.Find("title").First().Text(), "")
	if title == "" || isGarbageTitle(title) {
		return resolve.PageData{}, false
	}
	data := resolve.PageData{Title: title, Name: title}
	if desc, exists := doc.Find(`meta[name="description"]`).First().Attr("content"); exists {
		data.Description = strings.TrimSpace(desc)
	}
	if h1 := strings.TrimSpace(doc.Find("h1").First().Text()); h1 != "" && !isGarbageTitle(h1) {
		// An h1 is usually the product name without site chrome.
		data.Name = h1
	}
	return data, true
}

// CleanTitle strips site-name suffixes ("Air Max 90 | Nike.com") and
// collapses whitespace.
func CleanTitle(title, siteName string) string {
	title = strings.Join(strings.Fields(title), " ")
	for _, sep := range []string{" | ", " — ", " – ", " - ", " :: "} {
		if i := strings.Index(title, sep); i > 0 {
			title = title[:i]
		}
	}
	title = strings.TrimSpace(title)
	if siteName != "" && strings.EqualFold(title, siteName) {
		return ""
	}
	return title
}

// visibleText collects a capped amount of page text for the semantic
// stage's prompt.
func visibleText(doc *goquery.Document) string {
	const maxChars = 2000
	var b strings.Builder

	doc.Find("h1, h2, .product-title, .product-price, [itemprop=name], [itemprop=price]").Each(func(_ int, s *goquery.Selection) {
		if b.Len() >= maxChars {
			return
		}
		text := strings.TrimSpace(s.Text())
		if text != "" {
			b.WriteString(text)
			b.WriteString("\n")
		}
	})
	if b.Len() < maxChars/4 {
		body := strings.Join(strings.Fields(doc.Find("body").Text()), " ")
		if len(body) > maxChars-b.Len() {
			body = body[:maxChars-b.Len()]
		}
		b.WriteString(body)
	}
	return strings.TrimSpace(b.String())
}
