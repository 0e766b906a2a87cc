// Package product holds the product snapshot and observation types shared by
// the scrapers, the monitor and the history stores.
package product

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Availability states whether a listing can be purchased right now.
type Availability string

const (
	InStock    Availability = "In Stock"
	OutOfStock Availability = "Out of Stock"
	Unknown    Availability = "Unknown"
)

// Purchasable reports whether the availability allows checkout.
func (a Availability) Purchasable() bool {
	return a == InStock
}

// Product is one scraped snapshot of a listing. Price is nil when the page
// carried no parseable price.
type Product struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	Price        *float64     `json:"price"`
	Currency     string       `json:"currency"`
	Availability Availability `json:"availability"`
	ImageURL     string       `json:"image_url,omitempty"`
	URL          string       `json:"url"`
	FetchedAt    time.Time    `json:"fetched_at"`
}

// Observation is the subset of a snapshot kept in history. Records are
// append-only; price stays nil (serialized as JSON null) when unknown.
type Observation struct {
	ID           string       `json:"id"`
	Timestamp    time.Time    `json:"timestamp"`
	Price        *float64     `json:"price"`
	Availability Availability `json:"availability"`
}

// Observation reduces the snapshot to its history record.
func (p Product) Observation() Observation {
	return Observation{
		ID:           p.ID,
		Timestamp:    p.FetchedAt,
		Price:        p.Price,
		Availability: p.Availability,
	}
}

// PriceLabel renders the snapshot's price for humans, currency-aware.
func (p Product) PriceLabel() string {
	if p.Price == nil {
		return "price unknown"
	}
	return FormatPrice(p.Currency, *p.Price)
}

// NormalizePrice converts a parsed value into the stored representation.
// Zero and negative values come from placeholder markup and count as unknown.
func NormalizePrice(v float64) *float64 {
	if v <= 0 {
		return nil
	}
	return &v
}

// FormatPrice renders v the way the storefront for the currency displays it.
// JPY has no minor unit and groups thousands; the fallback appends the
// currency code.
func FormatPrice(currency string, v float64) string {
	switch strings.ToUpper(currency) {
	case "JPY":
		return "¥" + groupThousands(int64(v+0.5))
	case "USD":
		return fmt.Sprintf("$%.2f", v)
	case "GBP":
		return fmt.Sprintf("£%.2f", v)
	case "EUR":
		return fmt.Sprintf("€%.2f", v)
	default:
		return fmt.Sprintf("%.2f %s", v, currency)
	}
}

func groupThousands(v int64) string {
	s := strconv.FormatInt(v, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
