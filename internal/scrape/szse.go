package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"cn-data/internal/model"
)

const (
	szseBaseURL     = "https://www.szse.cn"
	szseMinInterval = 500 * time.Millisecond
)

// SZSE scrapes the Shenzhen Stock Exchange report and market APIs.
type SZSE struct {
	client  *resty.Client
	limiter *rate.Limiter
	baseURL string
}

// NewSZSE creates the SZSE scraper with bounded retries and a request throttle.
func NewSZSE() *SZSE {
	client := resty.New().
		SetTimeout(30 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(2 * time.Second).
		SetRetryMaxWaitTime(15 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= 500
		})
	return &SZSE{
		client:  client,
		limiter: rate.NewLimiter(rate.Every(szseMinInterval), 1),
		baseURL: szseBaseURL,
	}
}

func (s *SZSE) Exchange() string { return "SZSE" }

// szseSnapshotRow is one row of the 1815_stock_snapshot report. Numeric cells
// arrive as strings with thousands separators; volume and amount are in units
// of 10 thousand (shares and CNY).
type szseSnapshotRow struct {
	Code   string `json:"zqdm"`
	Name   string `json:"zqjc"`
	Open   string `json:"ks"`
	High   string `json:"zg"`
	Low    string `json:"zd"`
	Close  string `json:"ss"`
	Volume string `json:"cjgs"`
	Amount string `json:"cjje"`
}

type szseReportPage struct {
	Data []szseSnapshotRow `json:"data"`
}

// FetchList returns the daily stock snapshot report for the given date.
// An empty report (non-trading day) yields an empty listing, not an error.
func (s *SZSE) FetchList(ctx context.Context, date time.Time) ([]Listing, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	day := date.Format("2006-01-02")
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"SHOWTYPE":     "JSON",
			"CATALOGID":    "1815_stock_snapshot",
			"txtBeginDate": day,
			"txtEndDate":   day,
		}).
		Get(s.baseURL + "/api/report/ShowReport")
	if err != nil {
		return nil, fmt.Errorf("szse snapshot report: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("szse snapshot report: status %d", resp.StatusCode())
	}

	var pages []szseReportPage
	if err := json.Unmarshal(resp.Body(), &pages); err != nil {
		return nil, fmt.Errorf("szse snapshot report: %w", err)
	}
	if len(pages) == 0 {
		return nil, nil
	}

	dateInt := model.DateToInt(date)
	listings := make([]Listing, 0, len(pages[0].Data))
	for _, row := range pages[0].Data {
		if row.Code == "" {
			continue
		}
		listings = append(listings, Listing{
			Symbol: row.Code,
			Name:   row.Name,
			Bar: model.Bar{
				Date:   dateInt,
				Open:   parseDecimal(row.Open),
				High:   parseDecimal(row.High),
				Low:    parseDecimal(row.Low),
				Close:  parseDecimal(row.Close),
				Volume: int64(parseDecimal(row.Volume) * 10000),
				Amount: parseDecimal(row.Amount) * 10000,
			},
		})
	}
	return listings, nil
}

// szseHistoryResponse wraps the kline rows. Each picupdata row is
// [date, open, close, low, high, _, _, volume, amount] where volume is in
// board lots of 100 shares.
type szseHistoryResponse struct {
	Data struct {
		Picupdata [][]any `json:"picupdata"`
	} `json:"data"`
}

// FetchHistory returns the daily kline series for one symbol.
func (s *SZSE) FetchHistory(ctx context.Context, symbol string) ([]model.Bar, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"cycleType": "32",
			"marketId":  "1",
			"code":      symbol,
		}).
		Get(s.baseURL + "/api/market/ssjjhq/getHistoryData")
	if err != nil {
		return nil, fmt.Errorf("szse history %s: %w", symbol, err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("szse history %s: status %d", symbol, resp.StatusCode())
	}

	var payload szseHistoryResponse
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return nil, fmt.Errorf("szse history %s: %w", symbol, err)
	}

	bars := make([]model.Bar, 0, len(payload.Data.Picupdata))
	for _, row := range payload.Data.Picupdata {
		if len(row) < 9 {
			continue
		}
		dateInt, err := strconv.ParseInt(strings.ReplaceAll(asString(row[0]), "-", ""), 10, 32)
		if err != nil {
			continue
		}
		bars = append(bars, model.Bar{
			Date:   int32(dateInt),
			Open:   asFloat(row[1]),
			Close:  asFloat(row[2]),
			Low:    asFloat(row[3]),
			High:   asFloat(row[4]),
			Volume: asInt64(row[7]) * 100,
			Amount: asFloat(row[8]),
		})
	}
	return bars, nil
}

// parseDecimal reads a report cell like "1,234.56". Empty or dashed cells
// (suspended symbols) read as zero.
func parseDecimal(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" || s == "-" {
		return 0
	}
	f, _ := strconv.ParseFloat(s, 64)
	return f
}
