// Package twse wraps the two public TWSE market-data endpoints: the
// exchangeReport daily aggregate and the MIS realtime snapshot.
package twse

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// TWSE rejects requests without a browser-like agent.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

const dateFormat = "20060102"

// DailyQuote is the latest row of the exchangeReport STOCK_DAY table.
type DailyQuote struct {
	Date   string
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

// Client calls the TWSE exchangeReport API (end-of-day aggregates).
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

// DailyQuote fetches the day-by-day trading table for a stock in the month of
// day and returns the most recent row.
func (c *Client) DailyQuote(ctx context.Context, stockNo string, day time.Time) (*DailyQuote, error) {
	endpoint := fmt.Sprintf("%s/exchangeReport/STOCK_DAY?response=json&date=%s&stockNo=%s",
		c.baseURL, day.Format(dateFormat), url.QueryEscape(stockNo))

	body, err := get(ctx, c.httpClient, endpoint)
	if err != nil {
		return nil, err
	}

	if stat := gjson.GetBytes(body, "stat").String(); stat != "OK" {
		return nil, fmt.Errorf("twse: stat %q for %s", stat, stockNo)
	}
	rows := gjson.GetBytes(body, "data")
	if !rows.IsArray() || len(rows.Array()) == 0 {
		return nil, fmt.Errorf("twse: no data rows for %s", stockNo)
	}

	// Row layout: date, volume, turnover, open, high, low, close, change, count
	latest := rows.Array()[len(rows.Array())-1].Array()
	if len(latest) < 7 {
		return nil, fmt.Errorf("twse: short data row for %s", stockNo)
	}

	open, err := parseGrouped(latest[3].String())
	if err != nil {
		return nil, fmt.Errorf("twse: bad open for %s: %w", stockNo, err)
	}
	high, err := parseGrouped(latest[4].String())
	if err != nil {
		return nil, fmt.Errorf("twse: bad high for %s: %w", stockNo, err)
	}
	low, err := parseGrouped(latest[5].String())
	if err != nil {
		return nil, fmt.Errorf("twse: bad low for %s: %w", stockNo, err)
	}
	closePrice, err := parseGrouped(latest[6].String())
	if err != nil {
		return nil, fmt.Errorf("twse: bad close for %s: %w", stockNo, err)
	}
	volume, err := parseGroupedInt(latest[1].String())
	if err != nil {
		return nil, fmt.Errorf("twse: bad volume for %s: %w", stockNo, err)
	}

	return &DailyQuote{
		Date:   latest[0].String(),
		Open:   open,
		High:   high,
		Low:    low,
		Close:  closePrice,
		Volume: volume,
	}, nil
}

func get(ctx context.Context, client *http.Client, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("twse error: status %d: %s", resp.StatusCode, body)
	}
	return body, nil
}

// parseGrouped parses a comma-grouped exchange number such as "1,085.00".
// The exchange flags some change values with a trailing X; that marker means
// "no comparable value" and is read as zero.
func parseGrouped(s string) (float64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	s = strings.TrimSuffix(s, "X")
	if s == "" || s == "--" {
		return 0, fmt.Errorf("empty number")
	}
	return strconv.ParseFloat(s, 64)
}

func parseGroupedInt(s string) (int64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return 0, fmt.Errorf("empty number")
	}
	return strconv.ParseInt(s, 10, 64)
}
