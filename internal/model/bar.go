package model

import (
	"fmt"
	"time"
)

// Bar is one trading day of OHLCV data for a symbol.
// Dates are YYYYMMDD integers (20250515). Used for serialization (json, parquet).
type Bar struct {
	Date   int32   `json:"date" parquet:"date"`
	Open   float64 `json:"open" parquet:"open"`
	High   float64 `json:"high" parquet:"high"`
	Low    float64 `json:"low" parquet:"low"`
	Close  float64 `json:"close" parquet:"close"`
	Volume int64   `json:"volume" parquet:"volume"`
	Amount float64 `json:"amount" parquet:"amount"`
}

// SymbolRecord is one symbol's identity plus its full daily series.
// Identity is the (exchange, symbol) pair; the same symbol may exist on
// more than one exchange. Daily is kept strictly ascending by date.
type SymbolRecord struct {
	Exchange string `json:"exchange" parquet:"exchange"`
	Symbol   string `json:"symbol" parquet:"symbol"`
	Name     string `json:"name" parquet:"name"`
	Daily    []Bar  `json:"daily" parquet:"daily,list"`
}

// Key identifies a SymbolRecord within a snapshot.
type Key struct {
	Exchange string
	Symbol   string
}

func (k Key) String() string { return k.Exchange + ":" + k.Symbol }

// Key returns the record's identity.
func (r SymbolRecord) Key() Key {
	return Key{Exchange: r.Exchange, Symbol: r.Symbol}
}

// ParseDate validates a YYYYMMDD integer and returns the calendar day in UTC.
// Only the date is validated; price fields are passed through as received.
func ParseDate(date int32) (time.Time, error) {
	if date < 10000101 || date > 99991231 {
		return time.Time{}, fmt.Errorf("date %d is not an 8-digit YYYYMMDD value", date)
	}
	y := int(date / 10000)
	m := int(date / 100 % 100)
	d := int(date % 100)
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Year() != y || t.Month() != time.Month(m) || t.Day() != d {
		return time.Time{}, fmt.Errorf("date %d is not a valid calendar date", date)
	}
	return t, nil
}

// DateToInt converts a time to its YYYYMMDD integer form.
func DateToInt(t time.Time) int32 {
	return int32(t.Year()*10000 + int(t.Month())*100 + t.Day())
}
