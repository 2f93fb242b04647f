package yahoo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const quotePayload = `{
  "quoteResponse": {
    "result": [
      {
        "symbol": "AAPL",
        "shortName": "Apple Inc.",
        "longName": "Apple Inc. (Cupertino)",
        "regularMarketPrice": 190.5,
        "regularMarketPreviousClose": 188.0,
        "regularMarketOpen": 189.0,
        "regularMarketDayHigh": 191.2,
        "regularMarketDayLow": 188.4,
        "regularMarketVolume": 52000000
      }
    ],
    "error": null
  }
}`

func newServer(t *testing.T, payload string, status int) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v7/finance/quote" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("symbols") == "" {
			t.Error("missing symbols query parameter")
		}
		w.WriteHeader(status)
		w.Write([]byte(payload))
	}))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 2*time.Second)
}

// go test -v --run TestQuote
func TestQuote(t *testing.T) {
	client := newServer(t, quotePayload, http.StatusOK)

	q, err := client.Quote(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("Quote returned error: %v", err)
	}
	if q.Price != 190.5 || q.PrevClose != 188.0 {
		t.Errorf("price fields wrong: %+v", q)
	}
	if q.Open != 189.0 || q.High != 191.2 || q.Low != 188.4 {
		t.Errorf("session fields wrong: %+v", q)
	}
	if q.Volume != 52000000 {
		t.Errorf("Volume = %d", q.Volume)
	}
}

// go test -v --run TestQuoteMissingSessionFields
func TestQuoteMissingSessionFields(t *testing.T) {
	payload := `{"quoteResponse": {"result": [{"regularMarketPrice": 100.0, "regularMarketPreviousClose": 99.0}]}}`
	client := newServer(t, payload, http.StatusOK)

	q, err := client.Quote(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("Quote returned error: %v", err)
	}
	if q.Open != 100 || q.High != 100 || q.Low != 100 {
		t.Errorf("missing session fields must default to price: %+v", q)
	}
	if q.Volume != 0 {
		t.Errorf("Volume = %d, want 0", q.Volume)
	}
}

// go test -v --run TestQuoteErrors
func TestQuoteErrors(t *testing.T) {
	cases := []struct {
		name    string
		payload string
		status  int
	}{
		{"missing price", `{"quoteResponse": {"result": [{"regularMarketPreviousClose": 99.0}]}}`, http.StatusOK},
		{"missing previous close", `{"quoteResponse": {"result": [{"regularMarketPrice": 100.0}]}}`, http.StatusOK},
		{"empty result", `{"quoteResponse": {"result": []}}`, http.StatusOK},
		{"not json", `<html></html>`, http.StatusOK},
		{"http error", `{}`, http.StatusTooManyRequests},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := newServer(t, tc.payload, tc.status)
			if _, err := client.Quote(context.Background(), "AAPL"); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}

// go test -v --run TestStockName
func TestStockName(t *testing.T) {
	client := newServer(t, quotePayload, http.StatusOK)
	name, err := client.StockName(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("StockName returned error: %v", err)
	}
	if name != "Apple Inc." {
		t.Errorf("name = %q, want short name", name)
	}

	// falls back to longName when shortName is absent
	payload := `{"quoteResponse": {"result": [{"longName": "Apple Inc. (Cupertino)"}]}}`
	client = newServer(t, payload, http.StatusOK)
	name, err = client.StockName(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("StockName returned error: %v", err)
	}
	if name != "Apple Inc. (Cupertino)" {
		t.Errorf("name = %q, want long name", name)
	}
}
