package commands

import (
	"os"

	"shelfwatch/lib/timezone"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(itemsCmd)
}

var itemsCmd = &cobra.Command{
	Use:   "items",
	Short: "Lists the watched products and their latest recorded observation.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		cfg := readConfig()
		service, cleanup := buildMonitor(ctx, cfg)
		defer cleanup()

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"ID", "Checks", "Last Check", "Price", "Availability"})

		for _, id := range service.WatchedItems() {
			history := service.History(id)
			if len(history) == 0 {
				t.AppendRow(table.Row{id, 0, "never", "-", "-"})
				continue
			}
			last := history[len(history)-1]
			t.AppendRow(table.Row{
				id,
				len(history),
				last.Timestamp.In(timezone.Location).Format("2006-01-02 15:04"),
				formatPrice(cfg.Scraper.Currency, last.Price),
				last.Availability,
			})
		}

		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
