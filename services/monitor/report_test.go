package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"shelfwatch/lib/product"

	"github.com/stretchr/testify/require"
)

func TestReport(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	store := &memoryStore{history: map[string][]product.Observation{
		"B000RPT001": {
			{ID: "B000RPT001", Timestamp: now.Add(-2 * time.Hour), Price: price(5980), Availability: product.InStock},
			{ID: "B000RPT001", Timestamp: now.Add(-1 * time.Hour), Price: price(5480), Availability: product.InStock},
		},
		"B000RPT002": {
			{ID: "B000RPT002", Timestamp: now.Add(-1 * time.Hour), Price: nil, Availability: product.OutOfStock},
		},
		"B000RPT999": {
			{ID: "B000RPT999", Timestamp: now.Add(-1 * time.Hour), Price: price(100), Availability: product.InStock},
		},
	}}
	fetcher := fetcherFunc(func(ctx context.Context, id string) (*product.Product, error) {
		return nil, errors.New("unused")
	})
	service := NewService(ctx, fetcher, store, Options{})
	service.AddItem("B000RPT001")
	service.AddItem("B000RPT002")

	report := service.Report(ReportOptions{Days: 7, Currency: "JPY"})

	require.Contains(t, report, "# Product Monitoring Report")
	require.Contains(t, report, "Window: last 7 days")

	require.Contains(t, report, "## Item: B000RPT001")
	require.Contains(t, report, "- Checks: 2")
	require.Contains(t, report, "- Availability rate: 100.0%")
	require.Contains(t, report, "- Current price: ¥5,480")
	require.Contains(t, report, "- Lowest price: ¥5,480")
	require.Contains(t, report, "- Highest price: ¥5,980")
	require.Contains(t, report, "- Average price: ¥5,730")

	// priceless items keep their availability line but no price block
	require.Contains(t, report, "## Item: B000RPT002")
	require.Contains(t, report, "- Availability rate: 0.0%")

	// persisted history for items no longer watched stays out of the report
	require.NotContains(t, report, "B000RPT999")
}
