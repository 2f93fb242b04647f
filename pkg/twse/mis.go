package twse

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tidwall/gjson"
)

// Snapshot is one realtime tick from the MIS getStockInfo endpoint.
type Snapshot struct {
	Name      string
	Price     float64
	Open      float64
	High      float64
	Low       float64
	PrevClose float64
	Volume    int64
}

// MISClient calls the MIS realtime quote API (mis.twse.com.tw).
type MISClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewMISClient(baseURL string, timeout time.Duration) *MISClient {
	return &MISClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Snapshot fetches the current intraday tick for a listed stock.
// MIS reports unavailable fields as "-"; a missing last price is an error,
// missing open/high/low fall back to the price and a missing previous close
// falls back to the price as well, which yields a zero change.
func (c *MISClient) Snapshot(ctx context.Context, stockNo string) (*Snapshot, error) {
	info, err := c.stockInfo(ctx, stockNo)
	if err != nil {
		return nil, err
	}

	price, ok := misNumber(info.Get("z"))
	if !ok {
		return nil, fmt.Errorf("mis: no last price for %s", stockNo)
	}

	snap := &Snapshot{
		Name:      info.Get("n").String(),
		Price:     price,
		Open:      misNumberOr(info.Get("o"), price),
		High:      misNumberOr(info.Get("h"), price),
		Low:       misNumberOr(info.Get("l"), price),
		PrevClose: misNumberOr(info.Get("y"), price),
	}
	if v, ok := misNumber(info.Get("v")); ok {
		snap.Volume = int64(v)
	}
	return snap, nil
}

// StockName resolves the display name for a stock, e.g. "2330" -> "台積電".
func (c *MISClient) StockName(ctx context.Context, stockNo string) (string, error) {
	info, err := c.stockInfo(ctx, stockNo)
	if err != nil {
		return "", err
	}
	name := info.Get("n").String()
	if name == "" {
		return "", fmt.Errorf("mis: no name for %s", stockNo)
	}
	return name, nil
}

func (c *MISClient) stockInfo(ctx context.Context, stockNo string) (gjson.Result, error) {
	endpoint := fmt.Sprintf("%s/stock/api/getStockInfo.jsp?ex_ch=%s&json=1&delay=0",
		c.baseURL, url.QueryEscape("tse_"+stockNo+".tw"))

	body, err := get(ctx, c.httpClient, endpoint)
	if err != nil {
		return gjson.Result{}, err
	}

	msgs := gjson.GetBytes(body, "msgArray")
	if !msgs.IsArray() || len(msgs.Array()) == 0 {
		return gjson.Result{}, fmt.Errorf("mis: empty msgArray for %s", stockNo)
	}
	return msgs.Array()[0], nil
}

func misNumber(r gjson.Result) (float64, bool) {
	s := r.String()
	if s == "" || s == "-" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func misNumberOr(r gjson.Result, fallback float64) float64 {
	if v, ok := misNumber(r); ok {
		return v
	}
	return fallback
}
