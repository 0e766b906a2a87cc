package monitor

import (
	"time"

	"shelfwatch/lib/product"
)

// Stats summarizes one item's observations over a trailing window. Price
// aggregates cover only observations that carried a price and are nil when
// none did.
type Stats struct {
	ID         string
	PeriodDays int
	Checks     int
	FirstCheck time.Time
	LastCheck  time.Time

	MinPrice     *float64
	MaxPrice     *float64
	AvgPrice     *float64
	CurrentPrice *float64

	// percentage of observations that found the item in stock
	AvailabilityRate float64
}

func computeStats(id string, days int, window []product.Observation) Stats {
	stats := Stats{
		ID:         id,
		PeriodDays: days,
		Checks:     len(window),
		FirstCheck: window[0].Timestamp,
		LastCheck:  window[len(window)-1].Timestamp,
	}

	inStock := 0
	var prices []float64
	for _, o := range window {
		if o.Availability == product.InStock {
			inStock++
		}
		if o.Price != nil {
			prices = append(prices, *o.Price)
		}
	}
	stats.AvailabilityRate = float64(inStock) / float64(len(window)) * 100

	if len(prices) > 0 {
		minPrice := prices[0]
		maxPrice := prices[0]
		sum := 0.0
		for _, v := range prices {
			if v < minPrice {
				minPrice = v
			}
			if v > maxPrice {
				maxPrice = v
			}
			sum += v
		}
		avg := sum / float64(len(prices))
		current := prices[len(prices)-1]

		stats.MinPrice = &minPrice
		stats.MaxPrice = &maxPrice
		stats.AvgPrice = &avg
		stats.CurrentPrice = &current
	}

	return stats
}
