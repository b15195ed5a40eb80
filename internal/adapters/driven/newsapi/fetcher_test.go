package newsapi

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/dossier/internal/core/domain"
	"github.com/custodia-labs/dossier/internal/logger"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	t.Cleanup(func() { logger.SetOutput(os.Stderr) })
	return &buf
}

const sampleResponse = `{
  "status": "ok",
  "totalResults": 3,
  "articles": [
    {"title": "Tesla opens plant", "url": "https://a.example/1", "publishedAt": "2024-05-02T10:00:00Z", "source": {"name": "Wire A"}},
    {"title": "Tesla recalls", "url": "https://b.example/2", "publishedAt": "2024-05-01T09:00:00Z", "source": null},
    {"title": "Tesla earnings", "url": "https://c.example/3", "publishedAt": ""}
  ]
}`

func TestFetch_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/everything", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "Tesla", q.Get("q"))
		assert.Equal(t, "en", q.Get("language"))
		assert.Equal(t, "publishedAt", q.Get("sortBy"))
		assert.Equal(t, "8", q.Get("pageSize"))
		assert.Equal(t, "key", q.Get("apiKey"))
		_, _ = w.Write([]byte(sampleResponse))
	}))
	defer srv.Close()

	f := NewFetcher(Config{APIKey: "key", BaseURL: srv.URL})

	articles, err := f.Fetch(context.Background(), " Tesla ", 8)
	require.NoError(t, err)
	require.Len(t, articles, 3)
	assert.Equal(t, domain.Article{
		Title:       "Tesla opens plant",
		URL:         "https://a.example/1",
		PublishedAt: "2024-05-02T10:00:00Z",
		SourceName:  "Wire A",
	}, articles[0])
	assert.Empty(t, articles[1].SourceName)
	assert.Empty(t, articles[2].PublishedAt)
}

func TestFetch_CapsAtMax(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(sampleResponse))
	}))
	defer srv.Close()

	articles, err := NewFetcher(Config{BaseURL: srv.URL}).Fetch(context.Background(), "tesla", 2)
	require.NoError(t, err)
	assert.Len(t, articles, 2)
}

func TestFetch_SoftFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"http error", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"status":"error","message":"apiKeyInvalid"}`))
		}},
		{"bad json", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`<html>`))
		}},
		{"api error status", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"status":"error","message":"rateLimited"}`))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs := captureLogs(t)
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			articles, err := NewFetcher(Config{BaseURL: srv.URL}).Fetch(context.Background(), "tesla", 5)
			require.NoError(t, err)
			assert.NotNil(t, articles)
			assert.Empty(t, articles)
			assert.Contains(t, logs.String(), "[WARN] newsapi: "+domain.ErrFetchFailure.Error())
		})
	}
}

func TestFetch_NetworkFailureRedactsKey(t *testing.T) {
	logs := captureLogs(t)
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	articles, err := NewFetcher(Config{APIKey: "secret-key", BaseURL: srv.URL}).Fetch(context.Background(), "tesla", 5)
	require.NoError(t, err)
	assert.Empty(t, articles)
	assert.NotContains(t, logs.String(), "secret-key")
	assert.Contains(t, logs.String(), "REDACTED")
}

func TestFetch_EmptyCompany(t *testing.T) {
	_, err := NewFetcher(Config{}).Fetch(context.Background(), "  ", 5)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestFetch_DefaultMax(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, fmt.Sprint(domain.DefaultMaxArticles), r.URL.Query().Get("pageSize"))
		_, _ = w.Write([]byte(`{"status":"ok","articles":[]}`))
	}))
	defer srv.Close()

	articles, err := NewFetcher(Config{BaseURL: srv.URL}).Fetch(context.Background(), "tesla", 0)
	require.NoError(t, err)
	assert.Empty(t, articles)
}

func TestFetch_CancelledContext(t *testing.T) {
	captureLogs(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	articles, err := NewFetcher(Config{BaseURL: "http://127.0.0.1:1"}).Fetch(ctx, "tesla", 5)
	require.NoError(t, err)
	assert.Empty(t, articles)
}
