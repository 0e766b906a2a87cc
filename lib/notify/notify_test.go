package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"shelfwatch/lib/product"

	"github.com/stretchr/testify/require"
)

func price(v float64) *float64 {
	return &v
}

func observation(availability product.Availability, p *float64) *product.Observation {
	return &product.Observation{
		ID:           "B0TEST00001",
		Availability: availability,
		Price:        p,
	}
}

func sampleProduct() product.Product {
	return product.Product{
		ID:           "B0TEST00001",
		Title:        "Anker PowerCore 10000",
		Price:        price(4980),
		Currency:     "JPY",
		Availability: product.InStock,
		URL:          "https://www.amazon.co.jp/dp/B0TEST00001",
	}
}

func TestClassify(t *testing.T) {
	current := sampleProduct()

	testCases := []struct {
		prev     *product.Observation
		expected AlertType
	}{
		{nil, AlertAvailable},
		{observation(product.OutOfStock, nil), AlertBackInStock},
		{observation(product.OutOfStock, price(5980)), AlertBackInStock},
		{observation(product.InStock, price(5980)), AlertPriceDrop},
		{observation(product.InStock, price(4980)), AlertAvailable},
		{observation(product.InStock, price(3980)), AlertAvailable},
		{observation(product.InStock, nil), AlertAvailable},
		{observation(product.Unknown, price(5980)), AlertPriceDrop},
	}

	for _, test := range testCases {
		require.Equal(t, test.expected, Classify(test.prev, current))
	}
}

func TestAlertText(t *testing.T) {
	alert := Alert{
		Type:    AlertPriceDrop,
		Product: sampleProduct(),
	}

	require.Equal(t, "Price dropped for Anker PowerCore 10000!", alert.headline())

	body := alert.textBody()
	require.Contains(t, body, "Product: Anker PowerCore 10000")
	require.Contains(t, body, "ID: B0TEST00001")
	require.Contains(t, body, "Price: ¥4,980")
	require.Contains(t, body, "Availability: In Stock")
	require.Contains(t, body, "Alert type: price_drop")
	require.Contains(t, body, "do not reply")
}

func TestWebhookNotifier(t *testing.T) {
	var alertGot webhookAlert
	var summaryGot webhookSummary
	status := http.StatusOK

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Error(err)
		}

		var payload struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			t.Error(err)
		}
		switch payload.Type {
		case "product_alert":
			if err := json.Unmarshal(body, &alertGot); err != nil {
				t.Error(err)
			}
		case "daily_summary":
			if err := json.Unmarshal(body, &summaryGot); err != nil {
				t.Error(err)
			}
		}
		w.WriteHeader(status)
	}))
	defer server.Close()

	notifier := NewWebhookNotifier(server.URL, map[string]string{"x-api-key": "secret"})
	ctx := context.Background()

	t.Run("Alert", func(t *testing.T) {
		err := notifier.SendAlert(ctx, Alert{
			Type:    AlertBackInStock,
			Product: sampleProduct(),
		})
		if err != nil {
			t.Fatal(err)
		}

		require.Equal(t, "product_alert", alertGot.Type)
		require.Equal(t, AlertBackInStock, alertGot.AlertType)
		require.NotEmpty(t, alertGot.Timestamp)
		require.Equal(t, "B0TEST00001", alertGot.Product.ID)
		require.NotNil(t, alertGot.Product.Price)
		require.Equal(t, float64(4980), *alertGot.Product.Price)
	})

	t.Run("Summary", func(t *testing.T) {
		err := notifier.SendSummary(ctx, Summary{
			Total:       3,
			Available:   2,
			Unavailable: 1,
		})
		if err != nil {
			t.Fatal(err)
		}

		require.Equal(t, "daily_summary", summaryGot.Type)
		require.Equal(t, 3, summaryGot.Summary.Total)
		require.Equal(t, 2, summaryGot.Summary.Available)
		require.Equal(t, 1, summaryGot.Summary.Unavailable)
	})

	t.Run("ErrorStatus", func(t *testing.T) {
		status = http.StatusBadGateway
		err := notifier.SendAlert(ctx, Alert{
			Type:    AlertAvailable,
			Product: sampleProduct(),
		})
		require.Error(t, err)
	})
}

func TestSlackNotifier(t *testing.T) {
	var got slackMessage

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Error(err)
		}
	}))
	defer server.Close()

	notifier := NewSlackNotifier(server.URL)
	err := notifier.SendAlert(context.Background(), Alert{
		Type:    AlertAvailable,
		Product: sampleProduct(),
	})
	if err != nil {
		t.Fatal(err)
	}

	require.Equal(t, "shelfwatch", got.Username)
	require.Contains(t, got.Text, "🛒")
	require.Contains(t, got.Text, "*Product:* Anker PowerCore 10000")
	require.Contains(t, got.Text, "`B0TEST00001`")
	require.Contains(t, got.Text, "¥4,980")
	require.Contains(t, got.Text, "<https://www.amazon.co.jp/dp/B0TEST00001|view listing>")
}

type stubNotifier struct {
	name   string
	fail   bool
	alerts []Alert
}

func (n *stubNotifier) Name() string {
	return n.name
}

func (n *stubNotifier) SendAlert(ctx context.Context, alert Alert) error {
	if n.fail {
		return errors.New("stub failure")
	}
	n.alerts = append(n.alerts, alert)
	return nil
}

func (n *stubNotifier) SendSummary(ctx context.Context, summary Summary) error {
	if n.fail {
		return errors.New("stub failure")
	}
	return nil
}

func TestManagerContainsFailures(t *testing.T) {
	broken := &stubNotifier{name: "broken", fail: true}
	working := &stubNotifier{name: "working"}

	manager := NewManager(broken, working)
	manager.SendAlert(context.Background(), Alert{
		Type:    AlertAvailable,
		Product: sampleProduct(),
	})

	require.Len(t, working.alerts, 1)
	require.Equal(t, AlertAvailable, working.alerts[0].Type)
}
