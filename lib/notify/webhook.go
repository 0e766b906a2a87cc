package notify

import (
	"context"
	"fmt"
	"time"

	"shelfwatch/lib/product"
	"shelfwatch/lib/telemetry"
	"shelfwatch/lib/timezone"

	"github.com/go-resty/resty/v2"
)

// WebhookNotifier posts alert payloads as JSON to an arbitrary endpoint.
type WebhookNotifier struct {
	client *resty.Client
	url    string
}

func NewWebhookNotifier(url string, headers map[string]string) WebhookNotifier {
	client := resty.New()
	client.SetTimeout(time.Second * 10)
	client.SetHeader("content-type", "application/json")
	client.SetHeaders(headers)
	telemetry.InstrumentResty(client, "notify/webhook/http")

	return WebhookNotifier{
		client: client,
		url:    url,
	}
}

func (n WebhookNotifier) Name() string {
	return "webhook"
}

type webhookAlert struct {
	Type      string          `json:"type"`
	AlertType AlertType       `json:"alert_type"`
	Timestamp string          `json:"timestamp"`
	Product   product.Product `json:"product"`
}

type webhookSummary struct {
	Type      string  `json:"type"`
	Timestamp string  `json:"timestamp"`
	Summary   Summary `json:"summary"`
}

func (n WebhookNotifier) post(ctx context.Context, payload any) error {
	res, err := n.client.R().
		SetContext(ctx).
		SetBody(payload).
		Post(n.url)
	if err != nil {
		return err
	}
	if res.StatusCode() != 200 {
		return fmt.Errorf("webhook returned status %d", res.StatusCode())
	}
	return nil
}

func (n WebhookNotifier) SendAlert(ctx context.Context, alert Alert) error {
	return n.post(ctx, webhookAlert{
		Type:      "product_alert",
		AlertType: alert.Type,
		Timestamp: timezone.Now().Format(time.RFC3339),
		Product:   alert.Product,
	})
}

func (n WebhookNotifier) SendSummary(ctx context.Context, summary Summary) error {
	return n.post(ctx, webhookSummary{
		Type:      "daily_summary",
		Timestamp: timezone.Now().Format(time.RFC3339),
		Summary:   summary,
	})
}
