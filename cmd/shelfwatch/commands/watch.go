package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"shelfwatch/lib/configutil"
	"shelfwatch/lib/cronutil"
	"shelfwatch/lib/notify"
	"shelfwatch/lib/product"
	"shelfwatch/lib/telemetry"
	"shelfwatch/lib/timezone"
	"shelfwatch/lib/util/serviceutil"
	"shelfwatch/services/monitor"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Monitors watched products continuously and sends alerts on changes.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		telemetry.InstrumentPerfStats(ctx)

		cfg := readConfig()
		service, cleanup := buildMonitor(ctx, cfg)
		defer cleanup()

		manager := buildNotifiers(cfg.Notify)
		service.RegisterCallback(func(ctx context.Context, p product.Product) error {
			history := service.History(p.ID)
			var prev *product.Observation
			if len(history) >= 2 {
				prev = &history[len(history)-2]
			}
			manager.SendAlert(ctx, notify.Alert{
				Type:    notify.Classify(prev, p),
				Product: p,
			})
			return nil
		})

		if cfg.Report.DailySummaryCron != "" {
			cronner := cronutil.NewStandard()
			err := cronner.Cron(cfg.Report.DailySummaryCron, func() {
				sendSummary(ctx, service, manager)
				writeDailyReport(ctx, service, cfg)
			})
			if err != nil {
				serviceutil.Fatal("failed to schedule daily summary", err)
			}
		}

		go watchConfig(ctx, *configPath, service)

		runner := monitor.Runner{
			Service:  service,
			Interval: time.Duration(cfg.Monitor.IntervalMinutes) * time.Minute,
			OnRound:  logRound,
		}
		runner.Run(ctx)
	},
}

func logRound(ctx context.Context, results map[string]*product.Product) {
	available := 0
	for _, p := range results {
		if p != nil && p.Availability == product.InStock {
			available++
		}
	}
	slog.InfoContext(ctx, "round complete", "available", available, "total", len(results))
}

func sendSummary(ctx context.Context, service *monitor.Service, manager *notify.Manager) {
	ids := service.WatchedItems()
	summary := notify.Summary{Total: len(ids)}
	for _, id := range ids {
		history := service.History(id)
		if len(history) > 0 && history[len(history)-1].Availability == product.InStock {
			summary.Available++
		}
	}
	summary.Unavailable = summary.Total - summary.Available
	manager.SendSummary(ctx, summary)
}

func writeDailyReport(ctx context.Context, service *monitor.Service, cfg Config) {
	if cfg.Report.OutputDir == "" {
		return
	}
	err := os.MkdirAll(cfg.Report.OutputDir, 0755)
	if err != nil {
		slog.ErrorContext(ctx, "create report directory", "err", err)
		return
	}

	report := service.Report(monitor.ReportOptions{
		Days:     1,
		Currency: cfg.Scraper.Currency,
	})
	name := fmt.Sprintf("report_%s.md", timezone.Now().Format("20060102"))
	path := filepath.Join(cfg.Report.OutputDir, name)
	err = os.WriteFile(path, []byte(report), 0644)
	if err != nil {
		slog.ErrorContext(ctx, "write daily report", "err", err)
		return
	}
	slog.InfoContext(ctx, "daily report written", "path", path)
}

// watchConfig reloads the watch list whenever the config file changes. The
// watch is on the directory since editors and atomic writers replace the
// file instead of writing it in place.
func watchConfig(ctx context.Context, path string, service *monitor.Service) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		slog.ErrorContext(ctx, "init config watcher", "err", err)
		return
	}
	defer watcher.Close()

	err = watcher.Add(filepath.Dir(path))
	if err != nil {
		slog.ErrorContext(ctx, "watch config directory", "err", err)
		return
	}
	filename := filepath.Base(path)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filename {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			cfg, err := configutil.ReadConfigWithEnv[Config](path)
			if err != nil {
				slog.WarnContext(ctx, "reload config", "err", err)
				continue
			}
			slog.InfoContext(ctx, "config changed, updating watch list", "items", len(cfg.Monitor.Items))
			service.SetTargets(cfg.Monitor.Items)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			slog.WarnContext(ctx, "config watcher", "err", err)
		case <-ctx.Done():
			return
		}
	}
}
