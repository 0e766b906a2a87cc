package product

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFormatPrice(t *testing.T) {
	require.Equal(t, "¥1,234", FormatPrice("JPY", 1234))
	require.Equal(t, "¥12,345,678", FormatPrice("jpy", 12345678))
	require.Equal(t, "$12.34", FormatPrice("USD", 12.34))
	require.Equal(t, "£9.99", FormatPrice("GBP", 9.99))
	require.Equal(t, "€20.00", FormatPrice("EUR", 20))
	require.Equal(t, "55.00 TWD", FormatPrice("TWD", 55))
}

func TestPriceLabel(t *testing.T) {
	p := Product{Currency: "JPY"}
	require.Equal(t, "price unknown", p.PriceLabel())

	p.Price = NormalizePrice(2980)
	require.Equal(t, "¥2,980", p.PriceLabel())
}

func TestNormalizePrice(t *testing.T) {
	require.Nil(t, NormalizePrice(0))
	require.Nil(t, NormalizePrice(-3))

	v := NormalizePrice(49.9)
	require.NotNil(t, v)
	require.Equal(t, 49.9, *v)
}

func TestObservation(t *testing.T) {
	now := time.Date(2024, 5, 2, 9, 30, 0, 0, time.UTC)
	p := Product{
		ID:           "B000TEST01",
		Title:        "Mechanical Keyboard",
		Price:        NormalizePrice(128.5),
		Currency:     "USD",
		Availability: InStock,
		URL:          "https://www.amazon.co.jp/dp/B000TEST01",
		FetchedAt:    now,
	}

	o := p.Observation()
	require.Equal(t, "B000TEST01", o.ID)
	require.Equal(t, now, o.Timestamp)
	require.Equal(t, InStock, o.Availability)
	require.Equal(t, 128.5, *o.Price)
}

func TestPurchasable(t *testing.T) {
	require.True(t, InStock.Purchasable())
	require.False(t, OutOfStock.Purchasable())
	require.False(t, Unknown.Purchasable())
}
