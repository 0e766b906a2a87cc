package commands

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check [product ids...]",
	Short: "Checks every watched product once and prints the results.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		cfg := readConfig()
		service, cleanup := buildMonitor(ctx, cfg)
		defer cleanup()

		// ids given on the command line are checked alongside the
		// configured watch list
		for _, id := range args {
			service.AddItem(id)
		}

		results := service.CheckAll(ctx)

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"ID", "Title", "Price", "Availability"})

		for _, id := range service.WatchedItems() {
			p := results[id]
			if p == nil {
				t.AppendRow(table.Row{id, "(fetch failed)", "-", "-"})
				continue
			}
			t.AppendRow(table.Row{p.ID, p.Title, p.PriceLabel(), p.Availability})
		}

		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
