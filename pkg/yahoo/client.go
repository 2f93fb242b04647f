// Package yahoo wraps the public Yahoo Finance v7 quote endpoint used for
// US-listed symbols.
package yahoo

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/gjson"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// Quote is one realtime quote from the v7/finance/quote endpoint.
type Quote struct {
	Symbol    string
	Price     float64
	PrevClose float64
	Open      float64
	High      float64
	Low       float64
	Volume    int64
	ShortName string
	LongName  string
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Quote fetches the realtime quote for a symbol. Price and previous close
// are required; the session fields default to the price when absent.
func (c *Client) Quote(ctx context.Context, symbol string) (*Quote, error) {
	info, err := c.quoteResult(ctx, symbol)
	if err != nil {
		return nil, err
	}

	price := info.Get("regularMarketPrice")
	prevClose := info.Get("regularMarketPreviousClose")
	if !price.Exists() || !prevClose.Exists() {
		return nil, fmt.Errorf("yahoo: quote for %s missing price fields", symbol)
	}

	q := &Quote{
		Symbol:    symbol,
		Price:     price.Float(),
		PrevClose: prevClose.Float(),
		Open:      numberOr(info.Get("regularMarketOpen"), price.Float()),
		High:      numberOr(info.Get("regularMarketDayHigh"), price.Float()),
		Low:       numberOr(info.Get("regularMarketDayLow"), price.Float()),
		Volume:    info.Get("regularMarketVolume").Int(),
		ShortName: info.Get("shortName").String(),
		LongName:  info.Get("longName").String(),
	}
	return q, nil
}

// StockName resolves the display name for a symbol, preferring the short name.
func (c *Client) StockName(ctx context.Context, symbol string) (string, error) {
	info, err := c.quoteResult(ctx, symbol)
	if err != nil {
		return "", err
	}
	name := info.Get("shortName").String()
	if name == "" {
		name = info.Get("longName").String()
	}
	if name == "" {
		return "", fmt.Errorf("yahoo: no name for %s", symbol)
	}
	return name, nil
}

func (c *Client) quoteResult(ctx context.Context, symbol string) (gjson.Result, error) {
	endpoint := fmt.Sprintf("%s/v7/finance/quote?symbols=%s", c.baseURL, url.QueryEscape(symbol))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return gjson.Result{}, fmt.Errorf("yahoo error: status %d: %s", resp.StatusCode, body)
	}

	results := gjson.GetBytes(body, "quoteResponse.result")
	if !results.IsArray() || len(results.Array()) == 0 {
		return gjson.Result{}, fmt.Errorf("yahoo: empty result for %s", symbol)
	}
	return results.Array()[0], nil
}

func numberOr(r gjson.Result, fallback float64) float64 {
	if !r.Exists() {
		return fallback
	}
	return r.Float()
}
