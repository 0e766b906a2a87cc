// Package notify fans product alerts out to the configured channels.
// Delivery failures are contained per channel, a dead webhook cannot
// silence email and vice versa.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"shelfwatch/lib/product"
	"shelfwatch/lib/timezone"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("notify")

type AlertType string

const (
	// the product can be purchased right now
	AlertAvailable AlertType = "available"
	// the price moved down between the last two checks
	AlertPriceDrop AlertType = "price_drop"
	// the product went from out of stock back to in stock
	AlertBackInStock AlertType = "back_in_stock"
)

// Classify names the change between the previous observation of a product
// and the snapshot just fetched. Restocks outrank price moves.
func Classify(prev *product.Observation, current product.Product) AlertType {
	if prev != nil &&
		prev.Availability == product.OutOfStock &&
		current.Availability == product.InStock {
		return AlertBackInStock
	}
	if prev != nil && prev.Price != nil && current.Price != nil &&
		*current.Price < *prev.Price {
		return AlertPriceDrop
	}
	return AlertAvailable
}

type Alert struct {
	Type    AlertType
	Product product.Product
}

func (a Alert) headline() string {
	switch a.Type {
	case AlertPriceDrop:
		return fmt.Sprintf("Price dropped for %s!", a.Product.Title)
	case AlertBackInStock:
		return fmt.Sprintf("%s is back in stock!", a.Product.Title)
	default:
		return fmt.Sprintf("%s is available now!", a.Product.Title)
	}
}

func (a Alert) textBody() string {
	return fmt.Sprintf(`Product alert

Product: %s
ID: %s
Price: %s
Availability: %s
Link: %s

Alert type: %s
Time: %s

This is an automated notification, do not reply.`,
		a.Product.Title,
		a.Product.ID,
		a.Product.PriceLabel(),
		a.Product.Availability,
		a.Product.URL,
		a.Type,
		timezone.Now().Format("2006-01-02 15:04:05"))
}

type Summary struct {
	Total       int `json:"total_products"`
	Available   int `json:"available_products"`
	Unavailable int `json:"unavailable_products"`
}

func (s Summary) textBody() string {
	return fmt.Sprintf(`📊 Daily monitoring summary

Products monitored: %d
In stock: %d
Out of stock: %d

Time: %s`,
		s.Total,
		s.Available,
		s.Unavailable,
		timezone.Now().Format("2006-01-02 15:04:05"))
}

type Notifier interface {
	Name() string
	SendAlert(ctx context.Context, alert Alert) error
	SendSummary(ctx context.Context, summary Summary) error
}

type Manager struct {
	notifiers []Notifier
}

func NewManager(notifiers ...Notifier) *Manager {
	return &Manager{notifiers: notifiers}
}

func (m *Manager) Add(n Notifier) {
	m.notifiers = append(m.notifiers, n)
}

// SendAlert delivers the alert on every channel. A failing channel is
// logged and skipped, it never aborts the rest.
func (m *Manager) SendAlert(ctx context.Context, alert Alert) {
	ctx, span := tracer.Start(ctx, "SendAlert")
	defer span.End()

	for _, n := range m.notifiers {
		err := n.SendAlert(ctx, alert)
		if err != nil {
			slog.ErrorContext(
				ctx, "send alert",
				"notifier", n.Name(),
				"product", alert.Product.ID,
				"err", err,
			)
		}
	}
}

func (m *Manager) SendSummary(ctx context.Context, summary Summary) {
	ctx, span := tracer.Start(ctx, "SendSummary")
	defer span.End()

	for _, n := range m.notifiers {
		err := n.SendSummary(ctx, summary)
		if err != nil {
			slog.ErrorContext(ctx, "send summary", "notifier", n.Name(), "err", err)
		}
	}
}
