package twse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const stockDayPayload = `{
  "stat": "OK",
  "date": "20240115",
  "data": [
    ["113/01/12", "20,000,000", "11,500,000,000", "570.00", "575.00", "568.00", "572.00", "+3.00", "25,000"],
    ["113/01/15", "25,331,059", "14,723,089,420", "578.00", "585.00", "576.00", "1,085.00", "X0.00", "30,142"]
  ]
}`

func newStockDayServer(t *testing.T, payload string, status int) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/exchangeReport/STOCK_DAY" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("stockNo") == "" {
			t.Error("missing stockNo query parameter")
		}
		w.WriteHeader(status)
		w.Write([]byte(payload))
	}))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 2*time.Second)
}

// go test -v --run TestDailyQuote
func TestDailyQuote(t *testing.T) {
	client := newStockDayServer(t, stockDayPayload, http.StatusOK)

	got, err := client.DailyQuote(context.Background(), "2330", time.Now())
	if err != nil {
		t.Fatalf("DailyQuote returned error: %v", err)
	}

	// the latest (last) row wins; comma grouping must be stripped
	if got.Close != 1085.00 {
		t.Errorf("Close = %v, want 1085.00", got.Close)
	}
	if got.Open != 578.00 || got.High != 585.00 || got.Low != 576.00 {
		t.Errorf("session fields wrong: %+v", got)
	}
	if got.Volume != 25331059 {
		t.Errorf("Volume = %d, want 25331059", got.Volume)
	}
	if got.Date != "113/01/15" {
		t.Errorf("Date = %q", got.Date)
	}
}

// go test -v --run TestDailyQuoteErrors
func TestDailyQuoteErrors(t *testing.T) {
	cases := []struct {
		name    string
		payload string
		status  int
	}{
		{"stat not ok", `{"stat": "很抱歉，沒有符合條件的資料!"}`, http.StatusOK},
		{"empty data", `{"stat": "OK", "data": []}`, http.StatusOK},
		{"data not array", `{"stat": "OK", "data": "oops"}`, http.StatusOK},
		{"short row", `{"stat": "OK", "data": [["113/01/15", "1"]]}`, http.StatusOK},
		{"non numeric close", `{"stat": "OK", "data": [["d", "1", "2", "3", "4", "5", "--", "0", "1"]]}`, http.StatusOK},
		{"not json", `<html>maintenance</html>`, http.StatusOK},
		{"http error", `{}`, http.StatusServiceUnavailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := newStockDayServer(t, tc.payload, tc.status)
			if _, err := client.DailyQuote(context.Background(), "2330", time.Now()); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}

const misPayload = `{
  "msgArray": [
    {"c": "2330", "n": "台積電", "z": "580.00", "o": "578.00", "h": "585.00", "l": "576.00", "v": "25331", "y": "575.00"}
  ]
}`

func newMISServer(t *testing.T, payload string) *MISClient {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/stock/api/getStockInfo.jsp" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(payload))
	}))
	t.Cleanup(srv.Close)
	return NewMISClient(srv.URL, 2*time.Second)
}

// go test -v --run TestMISSnapshot
func TestMISSnapshot(t *testing.T) {
	client := newMISServer(t, misPayload)

	snap, err := client.Snapshot(context.Background(), "2330")
	if err != nil {
		t.Fatalf("Snapshot returned error: %v", err)
	}
	if snap.Price != 580 || snap.PrevClose != 575 {
		t.Errorf("price fields wrong: %+v", snap)
	}
	if snap.Name != "台積電" {
		t.Errorf("Name = %q", snap.Name)
	}
	if snap.Volume != 25331 {
		t.Errorf("Volume = %d", snap.Volume)
	}
}

// go test -v --run TestMISSnapshotDashFields
func TestMISSnapshotDashFields(t *testing.T) {
	// MIS reports "-" outside trading hours; everything but z degrades softly
	payload := `{"msgArray": [{"n": "台積電", "z": "580.00", "o": "-", "h": "-", "l": "-", "v": "-", "y": "-"}]}`
	client := newMISServer(t, payload)

	snap, err := client.Snapshot(context.Background(), "2330")
	if err != nil {
		t.Fatalf("Snapshot returned error: %v", err)
	}
	if snap.Open != 580 || snap.High != 580 || snap.Low != 580 || snap.PrevClose != 580 {
		t.Errorf("dash fields must fall back to the price: %+v", snap)
	}
	if snap.Volume != 0 {
		t.Errorf("Volume = %d, want 0", snap.Volume)
	}
}

// go test -v --run TestMISSnapshotNoPrice
func TestMISSnapshotNoPrice(t *testing.T) {
	for _, payload := range []string{
		`{"msgArray": [{"n": "台積電", "z": "-"}]}`,
		`{"msgArray": []}`,
		`{"rtmessage": "error"}`,
	} {
		client := newMISServer(t, payload)
		if _, err := client.Snapshot(context.Background(), "2330"); err == nil {
			t.Fatalf("payload %s: expected error, got nil", payload)
		}
	}
}

// go test -v --run TestMISStockName
func TestMISStockName(t *testing.T) {
	client := newMISServer(t, misPayload)
	name, err := client.StockName(context.Background(), "2330")
	if err != nil {
		t.Fatalf("StockName returned error: %v", err)
	}
	if name != "台積電" {
		t.Errorf("name = %q", name)
	}
}
