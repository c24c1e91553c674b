package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const sseListFixture = `jsonpCallback31050241({"date":20250102,"time":150000,` +
	`"list":[["600000","浦发银行",7.1,7.3,7.0,7.2,900000,6480000.0],` +
	`["600519","贵州茅台",1450.0,1468.8,1443.0,1460.1,30000,43800000.0]]})`

const sseKlineFixture = `jQuery111_123({"code":"600000","total":2,` +
	`"kline":[[20250102,7.1,7.3,7.0,7.2,900000,6480000.0],` +
	`[20250103,7.2,7.4,7.1,7.3,950000,6935000.0]]})`

func testSSE(srv *httptest.Server) *SSE {
	s := NewSSE()
	s.baseURL = srv.URL
	return s
}

func TestSSEFetchList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/sh1/list/exchange/equity" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("select"); got != "code,name,open,high,low,last,volume,amount" {
			t.Errorf("select = %q", got)
		}
		w.Write([]byte(sseListFixture))
	}))
	defer srv.Close()

	listings, err := testSSE(srv).FetchList(context.Background(), time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("FetchList: %v", err)
	}
	if len(listings) != 2 {
		t.Fatalf("len = %d, want 2", len(listings))
	}
	got := listings[0]
	if got.Symbol != "600000" || got.Name != "浦发银行" {
		t.Errorf("listing = %+v", got)
	}
	if got.Bar.Date != 20250102 || got.Bar.Close != 7.2 || got.Bar.Volume != 900000 || got.Bar.Amount != 6480000 {
		t.Errorf("bar = %+v", got.Bar)
	}
}

func TestSSEFetchListDateMismatchIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sseListFixture))
	}))
	defer srv.Close()

	// Gateway serves 20250102; asking for another day yields no listings.
	listings, err := testSSE(srv).FetchList(context.Background(), time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("FetchList: %v", err)
	}
	if len(listings) != 0 {
		t.Errorf("len = %d, want 0 on date mismatch", len(listings))
	}
}

func TestSSEFetchHistory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/sh1/dayk/600000" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(sseKlineFixture))
	}))
	defer srv.Close()

	bars, err := testSSE(srv).FetchHistory(context.Background(), "600000")
	if err != nil {
		t.Fatalf("FetchHistory: %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("len = %d, want 2", len(bars))
	}
	if bars[1].Date != 20250103 || bars[1].High != 7.4 || bars[1].Volume != 950000 {
		t.Errorf("bar = %+v", bars[1])
	}
}

func TestSSEFetchHistoryServerError(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s := testSSE(srv)
	s.client.SetRetryWaitTime(time.Millisecond).SetRetryMaxWaitTime(5 * time.Millisecond)
	if _, err := s.FetchHistory(context.Background(), "600000"); err == nil {
		t.Fatal("expected error on 503")
	}
	// Bounded attempts: initial request plus the configured retries.
	if calls != 4 {
		t.Errorf("calls = %d, want 4", calls)
	}
}

func TestStripJSONP(t *testing.T) {
	got := string(stripJSONP([]byte(`cb({"a":1})`)))
	if got != `{"a":1}` {
		t.Errorf("stripJSONP = %q", got)
	}
	plain := `{"a":1}`
	if got := string(stripJSONP([]byte(plain))); got != plain {
		t.Errorf("plain JSON altered: %q", got)
	}
}
