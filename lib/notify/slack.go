package notify

import (
	"context"
	"fmt"
	"time"

	"shelfwatch/lib/telemetry"
	"shelfwatch/lib/timezone"

	"github.com/go-resty/resty/v2"
)

// SlackNotifier posts mrkdwn messages to a Slack incoming webhook.
type SlackNotifier struct {
	client *resty.Client
	url    string
}

func NewSlackNotifier(webhookUrl string) SlackNotifier {
	client := resty.New()
	client.SetTimeout(time.Second * 10)
	telemetry.InstrumentResty(client, "notify/slack/http")

	return SlackNotifier{
		client: client,
		url:    webhookUrl,
	}
}

func (n SlackNotifier) Name() string {
	return "slack"
}

type slackMessage struct {
	Text     string `json:"text"`
	Username string `json:"username,omitempty"`
}

func (n SlackNotifier) post(ctx context.Context, message slackMessage) error {
	res, err := n.client.R().
		SetContext(ctx).
		SetBody(message).
		Post(n.url)
	if err != nil {
		return err
	}
	if res.StatusCode() != 200 {
		return fmt.Errorf("slack webhook returned status %d", res.StatusCode())
	}
	return nil
}

var slackEmoji = map[AlertType]string{
	AlertAvailable:   "🛒",
	AlertPriceDrop:   "💰",
	AlertBackInStock: "📦",
}

func (n SlackNotifier) SendAlert(ctx context.Context, alert Alert) error {
	emoji, ok := slackEmoji[alert.Type]
	if !ok {
		emoji = "📢"
	}

	p := alert.Product
	text := fmt.Sprintf(`%s *Product alert*

*Product:* %s
*ID:* `+"`%s`"+`
*Price:* %s
*Availability:* %s
*Link:* <%s|view listing>

*Alert type:* %s
*Time:* %s`,
		emoji,
		p.Title,
		p.ID,
		p.PriceLabel(),
		p.Availability,
		p.URL,
		alert.Type,
		timezone.Now().Format("2006-01-02 15:04:05"))

	return n.post(ctx, slackMessage{
		Text:     text,
		Username: "shelfwatch",
	})
}

func (n SlackNotifier) SendSummary(ctx context.Context, summary Summary) error {
	return n.post(ctx, slackMessage{
		Text:     summary.textBody(),
		Username: "shelfwatch",
	})
}
