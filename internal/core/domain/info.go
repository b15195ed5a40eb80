package domain

import "time"

// CompanySummary is an encyclopedia extract about a company.
type CompanySummary struct {
	Company string `json:"company"`
	Title   string `json:"title"`
	Extract string `json:"extract"`
	URL     string `json:"url,omitempty"`
}

// PricePoint is one daily close in a quote history.
type PricePoint struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// StockQuote is a snapshot of a ticker's trading data.
// Zero values mean the provider did not report the field.
type StockQuote struct {
	Ticker        string       `json:"ticker"`
	Currency      string       `json:"currency,omitempty"`
	CurrentPrice  float64      `json:"current_price"`
	PreviousClose float64      `json:"previous_close"`
	Open          float64      `json:"open"`
	DayHigh       float64      `json:"day_high"`
	DayLow        float64      `json:"day_low"`
	Volume        int64        `json:"volume"`
	MarketCap     int64        `json:"market_cap,omitempty"`
	History       []PricePoint `json:"history,omitempty"`
}

// Change returns the difference between the current price and previous close.
// It is zero when either value is missing.
func (q StockQuote) Change() float64 {
	if q.CurrentPrice == 0 || q.PreviousClose == 0 {
		return 0
	}
	return q.CurrentPrice - q.PreviousClose
}
