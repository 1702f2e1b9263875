package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGalaxusProductID(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{url: "https://www.galaxus.ch/de/s1/product/hp-omen-x-25f-1920-x-1080-pixel-2450-monitor-12201676", want: "12201676"},
		{url: "https://www.galaxus.ch/de/s10/product/pampers-premium-protection-gr-5-monatsbox-152-stueck-windeln-23688428?supplier=406802&utm_source=google", want: "23688428"},
		{url: "https://www.galaxus.de/de/s5/product/lego-millennium-falcon-75192-lego-star-wars-lego-seltene-sets-lego-7238420?utm_campaign=preisvergleich&utm_content=2705624", want: "7238420"},
		{url: "https://www.galaxus.ch/de/s1/product/apple-iphone", want: ""},
		{url: "https://www.galaxus.ch/de/s1/category/smartphones-49221234", want: ""},
		{url: "https://example.com/product/49221234", want: ""},
		{url: "", want: ""},
	}

	for _, testCase := range tests {
		if got := ParseGalaxusProductID(testCase.url); got != testCase.want {
			t.Fatalf("ParseGalaxusProductID(%q) = %q, want %q", testCase.url, got, testCase.want)
		}
	}
}

func TestNormalizeProductURL(t *testing.T) {
	for _, raw := range []string{"", "galaxus.ch/product/x", "ftp://example.com/file", "https://"} {
		_, err := NormalizeProductURL(raw)
		assert.ErrorIs(t, err, ErrProductInvalidURL, raw)
	}

	got, err := NormalizeProductURL("  https://www.galaxus.ch/de/product/x-1234567 ")
	require.NoError(t, err)
	assert.Equal(t, "https://www.galaxus.ch/de/product/x-1234567", got)
}

func TestProductServiceAddDerivesNameAndRetailerID(t *testing.T) {
	repo := &stubProductRepo{}
	service := NewProductService(repo)
	now := time.Date(2024, time.June, 10, 9, 0, 0, 0, time.UTC)

	product, err := service.Add(1, ProductInput{
		URL:   "https://www.galaxus.ch/de/s1/product/hp-omen-x-25f-monitor-12201676",
		Price: " 249.00 ",
	}, now)
	require.NoError(t, err)

	assert.Equal(t, "Hp Omen X 25f Monitor", product.Name)
	assert.Equal(t, "12201676", product.RetailerProductID)
	assert.Equal(t, "249.00", product.Price)
	assert.True(t, product.IsActive)
	assert.True(t, product.AddedAt.Equal(now))
	assert.Len(t, repo.rows, 1)
}

func TestProductServiceAddRejectsBadInput(t *testing.T) {
	service := NewProductService(&stubProductRepo{})

	_, err := service.Add(1, ProductInput{URL: "not a url", Name: "Kaffee"}, time.Now())
	assert.ErrorIs(t, err, ErrProductInvalidURL)

	_, err = service.Add(1, ProductInput{URL: "https://example.com/"}, time.Now())
	assert.ErrorIs(t, err, ErrProductInvalidName)
}

func TestProductServiceSetActiveAndDelete(t *testing.T) {
	repo := &stubProductRepo{}
	service := NewProductService(repo)
	product, err := service.Add(1, ProductInput{URL: "https://example.com/kaffee", Name: "Kaffee"}, time.Now())
	require.NoError(t, err)

	paused, err := service.SetActive(1, product.ID, false)
	require.NoError(t, err)
	assert.False(t, paused.IsActive)

	_, err = service.SetActive(2, product.ID, true)
	assert.ErrorIs(t, err, ErrProductNotFound)

	assert.ErrorIs(t, service.Delete(2, product.ID), ErrProductNotFound)
	require.NoError(t, service.Delete(1, product.ID))

	products, err := service.List(1)
	require.NoError(t, err)
	assert.Empty(t, products)
}
