package monitor

import (
	"fmt"
	"strings"

	"shelfwatch/lib/product"
	"shelfwatch/lib/timezone"
)

type ReportOptions struct {
	// trailing window, defaults to 7 days
	Days int
	// currency used to render prices, defaults to JPY
	Currency string
}

// Report renders a markdown summary of every watched item over the trailing
// window. Items without observations in the window are left out.
func (s *Service) Report(opts ReportOptions) string {
	days := opts.Days
	if days <= 0 {
		days = 7
	}
	currency := opts.Currency
	if currency == "" {
		currency = "JPY"
	}

	var b strings.Builder
	b.WriteString("# Product Monitoring Report\n")
	fmt.Fprintf(&b, "Generated: %s\n", timezone.Now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Window: last %d days\n\n", days)

	for _, id := range s.WatchedItems() {
		stats, ok := s.Statistics(id, days)
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "## Item: %s\n", id)
		fmt.Fprintf(&b, "- Checks: %d\n", stats.Checks)
		fmt.Fprintf(&b, "- Availability rate: %.1f%%\n", stats.AvailabilityRate)
		if stats.CurrentPrice != nil {
			fmt.Fprintf(&b, "- Current price: %s\n", product.FormatPrice(currency, *stats.CurrentPrice))
			fmt.Fprintf(&b, "- Lowest price: %s\n", product.FormatPrice(currency, *stats.MinPrice))
			fmt.Fprintf(&b, "- Highest price: %s\n", product.FormatPrice(currency, *stats.MaxPrice))
			fmt.Fprintf(&b, "- Average price: %s\n", product.FormatPrice(currency, *stats.AvgPrice))
		}
		b.WriteString("\n")
	}
	return b.String()
}
