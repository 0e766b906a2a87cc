package monitor

import "shelfwatch/lib/product"

// ChangePolicy decides whether the step between two consecutive observations
// of an item is worth alerting on.
type ChangePolicy struct {
	// smallest absolute price move that counts, in the listing's currency
	MinPriceDelta float64
	// smallest price move that counts, as a percentage of the previous price
	MinPricePct float64
}

var DefaultChangePolicy = ChangePolicy{
	MinPriceDelta: 1.0,
	MinPricePct:   5.0,
}

// Significant reports whether cur changed enough from prev to notify on.
// A nil prev marks the first ever observation of an item, which always
// notifies. Either threshold being reached is sufficient.
func (p ChangePolicy) Significant(prev *product.Observation, cur product.Observation) bool {
	if prev == nil {
		return true
	}
	if prev.Availability != cur.Availability {
		return true
	}
	if prev.Price == nil || cur.Price == nil {
		// a price appearing or vanishing is not a price move
		return false
	}

	delta := *cur.Price - *prev.Price
	if delta < 0 {
		delta = -delta
	}
	if delta >= p.MinPriceDelta {
		return true
	}
	if *prev.Price <= 0 {
		// no baseline to take a percentage of
		return false
	}
	pct := delta / *prev.Price * 100
	return pct >= p.MinPricePct
}
