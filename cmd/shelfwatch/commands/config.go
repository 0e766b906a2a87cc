package commands

import (
	"context"
	"fmt"
	"time"

	"shelfwatch/lib/configutil"
	"shelfwatch/lib/historystore"
	"shelfwatch/lib/notify"
	"shelfwatch/lib/product"
	"shelfwatch/lib/restyutil"
	"shelfwatch/lib/scrapers/amazon"
	"shelfwatch/lib/util/serviceutil"
	"shelfwatch/services/monitor"
)

type StorageConfig struct {
	// "sqlite" (default) or "file"
	Backend string `json:"backend"`
	Path    string `json:"path"`
}

type ScraperConfig struct {
	BaseUrl        string `json:"base_url"`
	Currency       string `json:"currency"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

type MonitorConfig struct {
	Items           []string `json:"items"`
	IntervalMinutes int      `json:"interval_minutes"`
	MinItemDelayMs  int      `json:"min_item_delay_ms"`
	MaxItemDelayMs  int      `json:"max_item_delay_ms"`
	MinPriceDelta   float64  `json:"min_price_delta"`
	MinPricePct     float64  `json:"min_price_pct"`
}

type EmailConfig struct {
	Server       string   `json:"server"`
	Port         int      `json:"port"`
	EmailAddress string   `json:"email_address"`
	Password     string   `json:"password" env:"SHELFWATCH_SMTP_PASSWORD"`
	Recipients   []string `json:"recipients"`
}

type NotifyConfig struct {
	Email      EmailConfig `json:"email"`
	WebhookUrl string      `json:"webhook_url"`
	SlackUrl   string      `json:"slack_url"`
}

type ReportConfig struct {
	// cron spec for the daily summary, e.g. "0 9 * * *", empty disables it
	DailySummaryCron string `json:"daily_summary_cron"`
	// directory daily reports are written into, empty disables the file
	OutputDir string `json:"output_dir"`
}

type Config struct {
	Storage StorageConfig `json:"storage"`
	Scraper ScraperConfig `json:"scraper"`
	Monitor MonitorConfig `json:"monitor"`
	Notify  NotifyConfig  `json:"notify"`
	Report  ReportConfig  `json:"report"`
}

// readConfig loads the config file named by --config. A missing file is
// fine, running purely off flags and environment variables is supported.
func readConfig() Config {
	cfg, err := configutil.ReadConfigWithEnv[Config](*configPath)
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = "shelfwatch.db"
	}
	if cfg.Scraper.BaseUrl == "" {
		cfg.Scraper.BaseUrl = "https://www.amazon.co.jp"
	}
	if cfg.Scraper.Currency == "" {
		cfg.Scraper.Currency = "JPY"
	}
	return cfg
}

func openStore(cfg StorageConfig) (historystore.Store, func(), error) {
	switch cfg.Backend {
	case "", "sqlite":
		database, err := historystore.OpenSQLite(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return historystore.NewSQLiteStore(database), func() { database.Close() }, nil
	case "file":
		return historystore.NewFileStore(cfg.Path), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

func buildMonitor(ctx context.Context, cfg Config) (*monitor.Service, func()) {
	scraper, err := amazon.NewClient(amazon.Options{
		BaseUrl:  cfg.Scraper.BaseUrl,
		Currency: cfg.Scraper.Currency,
		Timeout:  time.Duration(cfg.Scraper.TimeoutSeconds) * time.Second,
	})
	if err != nil {
		serviceutil.Fatal("failed to initialize scraper", err)
	}
	if *verbose {
		scraper.SetRestyInstrumentOutput(restyutil.NewFilesystemOutput(".dev/resty/amazon"))
	}

	store, closeStore, err := openStore(cfg.Storage)
	if err != nil {
		serviceutil.Fatal("failed to open history store", err)
	}

	service := monitor.NewService(ctx, scraper, store, monitor.Options{
		Policy: monitor.ChangePolicy{
			MinPriceDelta: cfg.Monitor.MinPriceDelta,
			MinPricePct:   cfg.Monitor.MinPricePct,
		},
		MinItemDelay: time.Duration(cfg.Monitor.MinItemDelayMs) * time.Millisecond,
		MaxItemDelay: time.Duration(cfg.Monitor.MaxItemDelayMs) * time.Millisecond,
		Targets:      cfg.Monitor.Items,
	})

	return service, closeStore
}

func buildNotifiers(cfg NotifyConfig) *notify.Manager {
	manager := notify.NewManager()
	if cfg.Email.Server != "" {
		manager.Add(notify.NewEmailNotifier(notify.SmtpConfig{
			Server:       cfg.Email.Server,
			Port:         cfg.Email.Port,
			EmailAddress: cfg.Email.EmailAddress,
			Password:     cfg.Email.Password,
		}, cfg.Email.Recipients))
	}
	if cfg.WebhookUrl != "" {
		manager.Add(notify.NewWebhookNotifier(cfg.WebhookUrl, nil))
	}
	if cfg.SlackUrl != "" {
		manager.Add(notify.NewSlackNotifier(cfg.SlackUrl))
	}
	return manager
}

func formatPrice(currency string, v *float64) string {
	if v == nil {
		return "-"
	}
	return product.FormatPrice(currency, *v)
}
