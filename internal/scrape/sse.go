package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"cn-data/internal/model"
)

const (
	sseBaseURL = "https://yunhq.sse.com.cn:32042"
	sseReferer = "https://www.sse.com.cn/"

	// The quote gateway throttles aggressively; 500ms between requests
	// keeps a full list+history run under its limit.
	sseMinInterval = 500 * time.Millisecond
)

// SSE scrapes the Shanghai Stock Exchange quote gateway.
type SSE struct {
	client  *resty.Client
	limiter *rate.Limiter
	baseURL string
}

// NewSSE creates the SSE scraper with bounded retries and a request throttle.
func NewSSE() *SSE {
	client := resty.New().
		SetTimeout(30 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(2 * time.Second).
		SetRetryMaxWaitTime(15 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= 500
		}).
		SetHeader("Referer", sseReferer)
	return &SSE{
		client:  client,
		limiter: rate.NewLimiter(rate.Every(sseMinInterval), 1),
		baseURL: sseBaseURL,
	}
}

func (s *SSE) Exchange() string { return "SSE" }

// sseListResponse is the jsonp-unwrapped equity list payload. Each list row is
// [code, name, open, high, low, last, volume, amount].
type sseListResponse struct {
	Date int64   `json:"date"`
	List [][]any `json:"list"`
}

// FetchList returns the day's snapshot for every listed equity. The gateway
// only serves the current session; when its date differs from the requested
// one (weekend, holiday, stale cache) the listing is empty.
func (s *SSE) FetchList(ctx context.Context, date time.Time) ([]Listing, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"select": "code,name,open,high,low,last,volume,amount",
			"begin":  "0",
			"end":    "5000",
		}).
		Get(s.baseURL + "/v1/sh1/list/exchange/equity")
	if err != nil {
		return nil, fmt.Errorf("sse equity list: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("sse equity list: status %d", resp.StatusCode())
	}

	var payload sseListResponse
	if err := json.Unmarshal(stripJSONP(resp.Body()), &payload); err != nil {
		return nil, fmt.Errorf("sse equity list: %w", err)
	}

	dateInt := model.DateToInt(date)
	if int32(payload.Date) != dateInt {
		return nil, nil
	}

	listings := make([]Listing, 0, len(payload.List))
	for _, row := range payload.List {
		if len(row) < 8 {
			continue
		}
		listings = append(listings, Listing{
			Symbol: asString(row[0]),
			Name:   asString(row[1]),
			Bar: model.Bar{
				Date:   dateInt,
				Open:   asFloat(row[2]),
				High:   asFloat(row[3]),
				Low:    asFloat(row[4]),
				Close:  asFloat(row[5]),
				Volume: asInt64(row[6]),
				Amount: asFloat(row[7]),
			},
		})
	}
	return listings, nil
}

// sseKlineResponse is the jsonp-unwrapped dayk payload. Each kline row is
// [date, open, high, low, close, volume, amount].
type sseKlineResponse struct {
	Kline [][]any `json:"kline"`
}

// FetchHistory returns up to the last 1000 daily bars for one symbol.
func (s *SSE) FetchHistory(ctx context.Context, symbol string) ([]model.Bar, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"begin":  "-1000",
			"end":    "-1",
			"period": "day",
		}).
		Get(s.baseURL + "/v1/sh1/dayk/" + symbol)
	if err != nil {
		return nil, fmt.Errorf("sse dayk %s: %w", symbol, err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("sse dayk %s: status %d", symbol, resp.StatusCode())
	}

	var payload sseKlineResponse
	if err := json.Unmarshal(stripJSONP(resp.Body()), &payload); err != nil {
		return nil, fmt.Errorf("sse dayk %s: %w", symbol, err)
	}

	bars := make([]model.Bar, 0, len(payload.Kline))
	for _, row := range payload.Kline {
		if len(row) < 7 {
			continue
		}
		bars = append(bars, model.Bar{
			Date:   int32(asInt64(row[0])),
			Open:   asFloat(row[1]),
			High:   asFloat(row[2]),
			Low:    asFloat(row[3]),
			Close:  asFloat(row[4]),
			Volume: asInt64(row[5]),
			Amount: asFloat(row[6]),
		})
	}
	return bars, nil
}
