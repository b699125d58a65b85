package marketplace

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractASIN(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		url  string
		want string
		ok   bool
	}{
		{"dp path", "https://www.amazon.com/TaylorMade-Stealth/dp/B0B5HQKFGL", "B0B5HQKFGL", true},
		{"dp with trailing query", "https://www.amazon.com/dp/B0B5HQKFGL?th=1", "B0B5HQKFGL", true},
		{"gp product", "https://www.amazon.co.uk/gp/product/B0B5HQKFGL/", "B0B5HQKFGL", true},
		{"mobile path", "https://www.amazon.com/gp/aw/d/B0B5HQKFGL", "B0B5HQKFGL", true},
		{"asin query param", "https://www.amazon.de/s?asin=B0B5HQKFGL", "B0B5HQKFGL", true},
		{"short link domain", "https://a.co/dp/B0B5HQKFGL", "B0B5HQKFGL", true},
		{"malformed identifier", "https://www.amazon.com/gp/product/NOTANID", "", false},
		{"lowercase identifier", "https://www.amazon.com/dp/b0b5hqkfgl", "", false},
		{"non-amazon domain", "https://www.nike.com/dp/B0B5HQKFGL", "", false},
		{"no identifier", "https://www.amazon.com/deals", "", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, ok := ExtractASIN(tc.url)
			require.Equal(t, tc.ok, ok)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestIsAmazonDomain(t *testing.T) {
	t.Parallel()

	require.True(t, IsAmazonDomain("www.amazon.com"))
	require.True(t, IsAmazonDomain("amazon.co.jp"))
	require.False(t, IsAmazonDomain("amazon.fake.example"))
}

func TestUsableImage(t *testing.T) {
	t.Parallel()

	require.True(t, UsableImage("https://m.media.example/images/I/71x.jpg"))
	require.False(t, UsableImage(""))
	require.False(t, UsableImage("https://m.media.example/images/G/no-img-lg.gif"))
	require.False(t, UsableImage("https://m.media.example/images/grey-pixel.gif"))
	require.False(t, UsableImage("https://m.media.example/sprites/nav-sprite.png"))
	require.False(t, UsableImage("https://m.media.example/transparent-pixel.png"))
}
