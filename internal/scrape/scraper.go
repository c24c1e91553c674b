// Package scrape fetches daily bars from the exchange endpoints. Scrapers are
// a closed set of variants behind one interface, dispatched by exchange
// identifier. Network failures are translated at this boundary into "no batch
// for this key"; they never reach the merge engine as corrupt input.
package scrape

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"cn-data/internal/model"
)

// Listing is one row of an exchange's daily snapshot: the symbol's identity
// plus its bar for the listing date.
type Listing struct {
	Symbol string
	Name   string
	Bar    model.Bar
}

// Scraper fetches data for one exchange. FetchList returns the day's snapshot
// across all symbols; FetchHistory returns the recent daily series for one
// symbol. Returned bars are raw (unsorted, possibly duplicated); the merge
// engine normalizes them.
type Scraper interface {
	Exchange() string
	FetchList(ctx context.Context, date time.Time) ([]Listing, error)
	FetchHistory(ctx context.Context, symbol string) ([]model.Bar, error)
}

// New returns the scraper for the given exchange identifier.
func New(exchange string) (Scraper, error) {
	switch strings.ToLower(strings.TrimSpace(exchange)) {
	case "sse":
		return NewSSE(), nil
	case "szse":
		return NewSZSE(), nil
	default:
		return nil, fmt.Errorf("unknown exchange %q (use: sse, szse, all)", exchange)
	}
}

// ForExchanges expands an exchange argument ("sse", "szse" or "all") into
// the scrapers to run.
func ForExchanges(arg string) ([]Scraper, error) {
	if strings.EqualFold(strings.TrimSpace(arg), "all") {
		sse, _ := New("sse")
		szse, _ := New("szse")
		return []Scraper{sse, szse}, nil
	}
	s, err := New(arg)
	if err != nil {
		return nil, err
	}
	return []Scraper{s}, nil
}

// stripJSONP extracts the JSON payload from a jsonp-wrapped body. The body is
// returned unchanged when no wrapping callback is found.
func stripJSONP(body []byte) []byte {
	s := string(body)
	start := strings.Index(s, "(")
	end := strings.LastIndex(s, ")")
	if start < 0 || end <= start {
		return body
	}
	return []byte(s[start+1 : end])
}

// asFloat reads a decoded JSON cell that may be a number or a numeric string.
func asFloat(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case string:
		f, _ := strconv.ParseFloat(strings.ReplaceAll(x, ",", ""), 64)
		return f
	default:
		return 0
	}
}

// asInt64 reads a decoded JSON cell as an integer, truncating floats.
func asInt64(v any) int64 {
	return int64(asFloat(v))
}

// asString reads a decoded JSON cell as a string.
func asString(v any) string {
	s, _ := v.(string)
	return s
}
