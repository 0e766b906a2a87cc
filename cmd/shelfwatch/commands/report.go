package commands

import (
	"fmt"
	"os"

	"shelfwatch/services/monitor"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var reportDays *int
var reportTable *bool

func init() {
	reportDays = reportCmd.Flags().Int("days", 7, "The trailing window of history to cover.")
	reportTable = reportCmd.Flags().Bool("table", false, "Print a summary table instead of markdown.")
	rootCmd.AddCommand(reportCmd)
}

var reportCmd = &cobra.Command{
	Use:   "report [--days <n>] [--table]",
	Short: "Summarizes price and availability history for the watched products.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		cfg := readConfig()
		service, cleanup := buildMonitor(ctx, cfg)
		defer cleanup()

		if !*reportTable {
			fmt.Println(service.Report(monitor.ReportOptions{
				Days:     *reportDays,
				Currency: cfg.Scraper.Currency,
			}))
			return
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"ID", "Checks", "Current", "Lowest", "Highest", "Average", "Availability"})

		for _, id := range service.WatchedItems() {
			stats, ok := service.Statistics(id, *reportDays)
			if !ok {
				continue
			}
			t.AppendRow(table.Row{
				stats.ID,
				stats.Checks,
				formatPrice(cfg.Scraper.Currency, stats.CurrentPrice),
				formatPrice(cfg.Scraper.Currency, stats.MinPrice),
				formatPrice(cfg.Scraper.Currency, stats.MaxPrice),
				formatPrice(cfg.Scraper.Currency, stats.AvgPrice),
				fmt.Sprintf("%.1f%%", stats.AvailabilityRate),
			})
		}

		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
