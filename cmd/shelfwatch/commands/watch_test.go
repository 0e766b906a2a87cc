package commands

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"shelfwatch/lib/historystore"
	"shelfwatch/lib/notify"
	"shelfwatch/lib/product"
	"shelfwatch/services/monitor"

	"github.com/stretchr/testify/require"
)

type fetcherFunc func(ctx context.Context, id string) (*product.Product, error)

func (f fetcherFunc) Fetch(ctx context.Context, id string) (*product.Product, error) {
	return f(ctx, id)
}

func testService(t *testing.T) *monitor.Service {
	store := historystore.NewFileStore(filepath.Join(t.TempDir(), "history.json"))
	fetcher := fetcherFunc(func(ctx context.Context, id string) (*product.Product, error) {
		availability := product.InStock
		if id == "B0CCC00000" {
			availability = product.OutOfStock
		}
		return &product.Product{
			ID:           id,
			Title:        "Listing " + id,
			Availability: availability,
		}, nil
	})
	return monitor.NewService(context.Background(), fetcher, store, monitor.Options{})
}

type captureNotifier struct {
	summaries []notify.Summary
}

func (n *captureNotifier) Name() string {
	return "capture"
}

func (n *captureNotifier) SendAlert(ctx context.Context, alert notify.Alert) error {
	return nil
}

func (n *captureNotifier) SendSummary(ctx context.Context, summary notify.Summary) error {
	n.summaries = append(n.summaries, summary)
	return nil
}

func TestSendSummary(t *testing.T) {
	ctx := context.Background()

	service := testService(t)
	service.AddItem("B0AAA00000")
	service.AddItem("B0BBB00000")
	service.AddItem("B0CCC00000")
	service.CheckAll(ctx)

	capture := &captureNotifier{}
	manager := notify.NewManager(capture)
	sendSummary(ctx, service, manager)

	require.Len(t, capture.summaries, 1)
	require.Equal(t, notify.Summary{
		Total:       3,
		Available:   2,
		Unavailable: 1,
	}, capture.summaries[0])
}

func TestWriteDailyReport(t *testing.T) {
	ctx := context.Background()

	service := testService(t)
	service.AddItem("B0AAA00000")
	service.CheckAll(ctx)

	var cfg Config
	cfg.Report.OutputDir = filepath.Join(t.TempDir(), "reports")
	cfg.Scraper.Currency = "JPY"
	writeDailyReport(ctx, service, cfg)

	entries, err := os.ReadDir(cfg.Report.OutputDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	contents, err := os.ReadFile(filepath.Join(cfg.Report.OutputDir, entries[0].Name()))
	require.NoError(t, err)
	require.Contains(t, string(contents), "## Item: B0AAA00000")
}
