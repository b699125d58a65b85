package resolve

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"lowercases scheme and host",
			"HTTPS://WWW.Nike.COM/t/air-max-90",
			"https://www.nike.com/t/air-max-90",
		},
		{
			"strips default port",
			"https://nike.com:443/t/air-max-90",
			"https://nike.com/t/air-max-90",
		},
		{
			"drops fragment and trailing slash",
			"https://nike.com/t/air-max-90/#reviews",
			"https://nike.com/t/air-max-90",
		},
		{
			"strips tracking params, keeps the rest",
			"https://nike.com/t/tee?utm_source=mail&utm_campaign=x&color=blk&fbclid=abc",
			"https://nike.com/t/tee?color=blk",
		},
		{
			"adds scheme to bare domains",
			"nike.com/t/air-max-90",
			"https://nike.com/t/air-max-90",
		},
		{
			"sorts query params",
			"https://nike.com/t/tee?size=xl&color=blk",
			"https://nike.com/t/tee?color=blk&size=xl",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := NormalizeURL(tc.in)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestNormalizeURL_EquivalentLinksShareAKey(t *testing.T) {
	t.Parallel()

	a, err := NormalizeURL("https://www.nike.com/t/air-max-90?utm_source=email")
	require.NoError(t, err)
	b, err := NormalizeURL("HTTPS://www.nike.com/t/air-max-90/")
	require.NoError(t, err)

	require.Equal(t, CacheKey(a), CacheKey(b))
}

func TestCacheKey_IsStableHex(t *testing.T) {
	t.Parallel()

	key := CacheKey("https://nike.com/t/air-max-90")
	require.Len(t, key, 64)
	require.Equal(t, key, CacheKey("https://nike.com/t/air-max-90"))
	require.NotEqual(t, key, CacheKey("https://nike.com/t/air-max-91"))
}
