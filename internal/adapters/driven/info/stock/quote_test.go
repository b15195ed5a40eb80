package stock

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/dossier/internal/core/domain"
)

const chartBody = `{
  "chart": {
    "result": [{
      "meta": {
        "currency": "USD",
        "symbol": "TSLA",
        "regularMarketPrice": 251.5,
        "chartPreviousClose": 240.0,
        "regularMarketDayHigh": 255.0,
        "regularMarketDayLow": 248.25,
        "regularMarketVolume": 1200000
      },
      "timestamp": [1714521600, 1714608000, 1714694400],
      "indicators": {
        "quote": [{
          "open": [238.0, null, 249.0],
          "close": [241.0, null, 251.5],
          "high": [242.0, null, 255.0],
          "low": [236.0, null, 248.25],
          "volume": [1000, null, 1200000]
        }]
      }
    }],
    "error": null
  }
}`

func TestQuote_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/TSLA", r.URL.Path)
		assert.Equal(t, "3mo", r.URL.Query().Get("range"))
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		_, _ = w.Write([]byte(chartBody))
	}))
	defer srv.Close()

	quote, err := NewClient(Config{BaseURL: srv.URL}).Quote(context.Background(), " tsla ")
	require.NoError(t, err)

	assert.Equal(t, "TSLA", quote.Ticker)
	assert.Equal(t, "USD", quote.Currency)
	assert.InDelta(t, 251.5, quote.CurrentPrice, 1e-9)
	assert.InDelta(t, 240.0, quote.PreviousClose, 1e-9)
	assert.InDelta(t, 249.0, quote.Open, 1e-9)
	assert.InDelta(t, 255.0, quote.DayHigh, 1e-9)
	assert.InDelta(t, 248.25, quote.DayLow, 1e-9)
	assert.Equal(t, int64(1200000), quote.Volume)

	require.Len(t, quote.History, 2, "null closes are skipped")
	assert.Equal(t, time.Unix(1714521600, 0).UTC(), quote.History[0].Date)
	assert.InDelta(t, 241.0, quote.History[0].Close, 1e-9)
	assert.InDelta(t, 11.5, quote.Change(), 1e-9)
}

func TestQuote_FallsBackToLastClose(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"chart": {"result": [{
			"meta": {"currency": "EUR"},
			"timestamp": [1714521600],
			"indicators": {"quote": [{"close": [12.5]}]}
		}]}}`))
	}))
	defer srv.Close()

	quote, err := NewClient(Config{BaseURL: srv.URL}).Quote(context.Background(), "SAP")
	require.NoError(t, err)
	assert.InDelta(t, 12.5, quote.CurrentPrice, 1e-9)
	assert.Zero(t, quote.Open)
	assert.Zero(t, quote.Change())
}

func TestQuote_NotFound(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "404", status: http.StatusNotFound, body: `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`},
		{name: "error object", status: http.StatusOK, body: `{"chart":{"result":null,"error":{"code":"Not Found","description":"delisted"}}}`},
		{name: "empty result", status: http.StatusOK, body: `{"chart":{"result":[]}}`},
		{name: "no prices", status: http.StatusOK, body: `{"chart":{"result":[{"meta":{},"timestamp":[]}]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewClient(Config{BaseURL: srv.URL}).Quote(context.Background(), "ZZZZ")
			assert.ErrorIs(t, err, domain.ErrNotFound)
		})
	}
}

func TestQuote_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte("slow down"))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})

	_, err := c.Quote(context.Background(), "TSLA")
	var apiErr *domain.ExternalAPIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.ErrorIs(t, err, domain.ErrExternalAPI)

	_, err = c.Quote(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}
