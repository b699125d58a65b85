package lightweight

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const schemaProductPage = `<!DOCTYPE html>
<html><head><title>Ghost 16 | Brooks Running</title>
<script type="application/ld+json">
{
  "@context": "https://schema.org",
  "@type": "Product",
  "name": "Ghost 16 Running Shoe",
  "brand": {"@type": "Brand", "name": "Brooks"},
  "category": "Running Shoes",
  "image": ["https://img.example/ghost16.jpg"],
  "description": "Soft neutral road shoe.",
  "offers": {"@type": "Offer", "price": "139.95", "priceCurrency": "USD"}
}
</script></head><body><h1>Ghost 16</h1></body></html>`

func TestExtract_SchemaProduct(t *testing.T) {
	t.Parallel()

	data, confidence, found := Extract([]byte(schemaProductPage), "https://example.com/p/ghost-16")
	require.True(t, found)
	require.InDelta(t, 0.95, confidence, 0.001)
	require.Equal(t, "Ghost 16 Running Shoe", data.Name)
	require.Equal(t, "Brooks", data.Brand)
	require.Equal(t, "139.95", data.Price)
	require.Equal(t, "USD", data.Currency)
	require.Equal(t, "https://img.example/ghost16.jpg", data.ImageURL)
	require.NotEmpty(t, data.RawText)
}

const graphProductPage = `<html><head><title>x</title>
<script type="application/ld+json">
{
  "@context": "https://schema.org",
  "@graph": [
    {"@type": "BreadcrumbList"},
    {"@type": "Product", "name": "Stealth 2 Driver",
     "brand": "TaylorMade",
     "offers": [{"price": 599.99, "priceCurrency": "USD"}]}
  ]
}
</script></head><body></body></html>`

func TestExtract_SchemaProductInsideGraph(t *testing.T) {
	t.Parallel()

	data, confidence, found := Extract([]byte(graphProductPage), "https://example.com/p/stealth")
	require.True(t, found)
	require.InDelta(t, 0.95, confidence, 0.001)
	require.Equal(t, "Stealth 2 Driver", data.Name)
	require.Equal(t, "TaylorMade", data.Brand)
	require.Equal(t, "599.99", data.Price)
}

const ogProductPage = `<html><head>
<title>Metcon 9 | Shop</title>
<meta property="og:type" content="product">
<meta property="og:title" content="Metcon 9 Training Shoe">
<meta property="og:image" content="/images/metcon9.jpg">
<meta property="product:price:amount" content="150.00">
<meta property="product:price:currency" content="USD">
</head><body></body></html>`

func TestExtract_OpenGraphProductTags(t *testing.T) {
	t.Parallel()

	data, confidence, found := Extract([]byte(ogProductPage), "https://shop.example.com/p/metcon-9")
	require.True(t, found)
	require.InDelta(t, 0.8, confidence, 0.001)
	require.Equal(t, "Metcon 9 Training Shoe", data.Name)
	require.Equal(t, "150.00", data.Price)
	require.Equal(t, "https://shop.example.com/images/metcon9.jpg", data.ImageURL)
}

const titleOnlyPage = `<html><head>
<title>Linen Camp Shirt | Everlane</title>
<meta name="description" content="A relaxed camp collar shirt.">
</head><body><h1>Linen Camp Shirt</h1></body></html>`

func TestExtract_TitleFallback(t *testing.T) {
	t.Parallel()

	data, confidence, found := Extract([]byte(titleOnlyPage), "https://example.com/p/shirt")
	require.True(t, found)
	require.InDelta(t, 0.7, confidence, 0.001)
	require.Equal(t, "Linen Camp Shirt", data.Name)
	require.Equal(t, "A relaxed camp collar shirt.", data.Description)
}

func TestExtract_GarbageTitleNotFound(t *testing.T) {
	t.Parallel()

	page := `<html><head><title>Access Denied</title></head><body></body></html>`
	_, _, found := Extract([]byte(page), "https://example.com")
	require.False(t, found)
}

func TestCleanTitle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in       string
		siteName string
		want     string
	}{
		{"Air Max 90 | Nike.com", "", "Air Max 90"},
		{"Pro V1 Golf Balls - Titleist", "", "Pro V1 Golf Balls"},
		{"  Stealth   2  Driver  ", "", "Stealth 2 Driver"},
		{"Nike.com", "Nike.com", ""},
		{"Qi10 Driver :: TaylorMade", "", "Qi10 Driver"},
	}
	for _, tc := range tests {
		require.Equal(t, tc.want, CleanTitle(tc.in, tc.siteName), tc.in)
	}
}

func TestIsBlocked(t *testing.T) {
	t.Parallel()

	require.True(t, IsBlocked(403, nil))
	require.True(t, IsBlocked(429, nil))
	require.True(t, IsBlocked(200, []byte(`<html>Just a moment...</html>`)))
	require.True(t, IsBlocked(503, []byte(`<div id="px-captcha"></div>`)))
	require.True(t, IsBlocked(200, []byte(`<meta http-equiv="refresh" content="0">`)))
	require.False(t, IsBlocked(200, []byte(schemaProductPage)))
	require.False(t, IsBlocked(404, []byte(`<html>not found</html>`)))
}
