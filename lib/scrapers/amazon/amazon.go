// Package amazon scrapes product listing pages off an Amazon storefront
// without a browser engine. It understands the desktop markup of
// amazon.co.jp and amazon.com well enough to pull title, price,
// availability and the primary image.
package amazon

import (
	"bytes"
	"context"
	"fmt"
	"net/http/cookiejar"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"shelfwatch/lib/htmlutil"
	"shelfwatch/lib/product"
	"shelfwatch/lib/telemetry"
	"shelfwatch/lib/textutil"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type Options struct {
	// storefront root, e.g. https://www.amazon.co.jp
	BaseUrl string
	// currency tagged onto scraped prices, e.g. JPY
	Currency string
	// per-request timeout, defaults to 30s
	Timeout time.Duration
}

type Client struct {
	baseUrl  *url.URL
	currency string
	Http     *resty.Client
}

func NewClient(opts Options) (*Client, error) {
	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = time.Second * 30
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)

	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	client.SetHeader("accept-language", "ja,en-US;q=0.9,en;q=0.8")
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(baseUrl.Hostname()))
	client.SetTimeout(timeout)

	telemetry.InstrumentResty(client, "scrapers/amazon/http")

	return &Client{
		baseUrl:  baseUrl,
		currency: opts.Currency,
		Http:     client,
	}, nil
}

// Fetch scrapes the listing page for id. Every failure mode (transport,
// status, unrecognizable markup) comes back as an error; the caller cannot
// and should not tell them apart.
func (c *Client) Fetch(ctx context.Context, id string) (*product.Product, error) {
	ctx, span := tracer.Start(ctx, "Fetch")
	defer span.End()
	span.SetAttributes(attribute.String("id", id))

	link := fmt.Sprintf("%s/dp/%s", strings.TrimSuffix(c.baseUrl.String(), "/"), id)
	res, err := c.Http.R().
		SetContext(ctx).
		Get(link)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if res.StatusCode() != 200 {
		err := fmt.Errorf("fetch %s: status %d", id, res.StatusCode())
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	p, err := parseListing(doc, id, c.currency, link)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return p, nil
}

var titleSelectors = []string{
	"#productTitle",
	"h1.a-size-large",
	"h1#title",
}

var priceSelectors = []string{
	"span.a-price-whole",
	"span#price_inside_buybox",
	"span.a-price.a-text-price.a-size-medium.apexPriceToPay",
	"span.a-price.a-text-price.a-size-base",
}

var availabilitySelectors = []string{
	"#availability span",
	"#merchant-info",
	"#buybox-availability-message",
}

var imageSelectors = []string{
	"#landingImage",
	"#imgTagWrapperId img",
}

// parseListing extracts a snapshot from listing markup. A page without a
// recognizable title is treated as an error since bot walls and captcha
// interstitials render without one.
func parseListing(doc *goquery.Document, id, currency, link string) (*product.Product, error) {
	title := ""
	for _, selector := range titleSelectors {
		title = htmlutil.CleanText(doc.Find(selector).First().Text())
		if title != "" {
			break
		}
	}
	if title == "" {
		return nil, fmt.Errorf("parse %s: no product title in markup", id)
	}

	p := &product.Product{
		ID:           id,
		Title:        title,
		Currency:     currency,
		Availability: extractAvailability(doc),
		ImageURL:     extractImage(doc),
		URL:          link,
		FetchedAt:    time.Now(),
	}
	if v, ok := extractPrice(doc); ok {
		p.Price = product.NormalizePrice(v)
	}
	return p, nil
}

var priceCleanRe = regexp.MustCompile(`[^\d.]`)

// parsePriceText strips currency symbols and grouping from storefront price
// text, e.g. "￥1,234" or "1,234円" into 1234.
func parsePriceText(text string) (float64, bool) {
	clean := priceCleanRe.ReplaceAllString(text, "")
	if clean == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// extractPrice takes the first price element present in the page, matching
// the storefront's habit of rendering exactly one buybox price block.
func extractPrice(doc *goquery.Document) (float64, bool) {
	for _, selector := range priceSelectors {
		elem := doc.Find(selector).First()
		if elem.Length() == 0 {
			continue
		}
		return parsePriceText(strings.TrimSpace(elem.Text()))
	}
	return 0, false
}

var jpInStock = []string{"在庫あり", "すぐに発送", "即日発送", "通常配送無料", "あと", "個の在庫"}
var jpOutOfStock = []string{"在庫切れ", "一時的に在庫切れ", "入荷時期未定", "現在在庫切れ"}

// already in textutil normalized form, MatchName does not normalize matchers
var enInStock = []string{"instock", "available", "有庫存"}
var enOutOfStock = []string{"outofstock", "unavailable", "缺貨"}

func parseAvailabilityText(text string) product.Availability {
	if textutil.MatchName(text, jpInStock) {
		return product.InStock
	}
	if textutil.MatchName(text, jpOutOfStock) {
		return product.OutOfStock
	}

	// "unavailable" contains "available", so the out of stock phrases have
	// to be ruled out before the in stock ones.
	if textutil.MatchName(text, enOutOfStock) {
		return product.OutOfStock
	}
	if textutil.MatchName(text, enInStock) {
		return product.InStock
	}
	return product.Unknown
}

// extractAvailability scans the availability blocks until one of them
// contains a recognizable phrase.
func extractAvailability(doc *goquery.Document) product.Availability {
	for _, selector := range availabilitySelectors {
		text := htmlutil.CleanText(doc.Find(selector).First().Text())
		if text == "" {
			continue
		}
		if a := parseAvailabilityText(text); a != product.Unknown {
			return a
		}
	}
	return product.Unknown
}

func extractImage(doc *goquery.Document) string {
	for _, selector := range imageSelectors {
		src := doc.Find(selector).First().AttrOr("src", "")
		if src != "" {
			return src
		}
	}
	return ""
}
