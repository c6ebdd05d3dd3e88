package scrape_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/linkward/internal/scrape"
)

const testTimeout = 2 * time.Second

func newTestScraper(t *testing.T) *scrape.Scraper {
	t.Helper()

	return scrape.NewScraper(&http.Client{}, testTimeout)
}

func serveHTML(t *testing.T, body string) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	return server
}

func TestFetchPage_OpenGraphMetadataWins(t *testing.T) {
	t.Parallel()

	server := serveHTML(t, `<!DOCTYPE html>
<html><head>
<title>Plain Title</title>
<meta property="og:title" content="OG Title">
<meta name="description" content="Plain description">
<meta property="og:description" content="OG description">
<meta property="og:image" content="https://cdn.example.com/banner.png">
</head><body></body></html>`)

	meta, err := newTestScraper(t).FetchPage(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Equal(t, "OG Title", meta.Title)
	assert.Equal(t, "OG description", meta.Description)
	assert.Equal(t, "https://cdn.example.com/banner.png", meta.Logo)
}

func TestFetchPage_FallsBackToPlainTags(t *testing.T) {
	t.Parallel()

	server := serveHTML(t, `<!DOCTYPE html>
<html><head>
<title>  Plain Title  </title>
<meta name="description" content="Plain description">
</head><body></body></html>`)

	meta, err := newTestScraper(t).FetchPage(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Equal(t, "Plain Title", meta.Title)
	assert.Equal(t, "Plain description", meta.Description)
	assert.Empty(t, meta.Logo)
}

func TestFetchPage_ResolvesRelativeIconURL(t *testing.T) {
	t.Parallel()

	server := serveHTML(t, `<!DOCTYPE html>
<html><head>
<title>Icons</title>
<link rel="icon" href="/favicon.ico">
</head><body></body></html>`)

	meta, err := newTestScraper(t).FetchPage(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Equal(t, server.URL+"/favicon.ico", meta.Logo)
}

func TestFetchPage_IconPreferenceOrder(t *testing.T) {
	t.Parallel()

	server := serveHTML(t, `<!DOCTYPE html>
<html><head>
<link rel="shortcut icon" href="/legacy.ico">
<link rel="apple-touch-icon" href="/touch.png">
</head><body></body></html>`)

	meta, err := newTestScraper(t).FetchPage(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Equal(t, server.URL+"/touch.png", meta.Logo)
}

func TestFetchPage_MissingMetadataYieldsEmptyFields(t *testing.T) {
	t.Parallel()

	server := serveHTML(t, `<!DOCTYPE html><html><head></head><body><p>bare page</p></body></html>`)

	meta, err := newTestScraper(t).FetchPage(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Empty(t, meta.Title)
	assert.Empty(t, meta.Description)
	assert.Empty(t, meta.Logo)
}

func TestFetchPage_StatusClassification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		statusCode int
		wantKind   scrape.ErrorKind
	}{
		{"404 is not_found", http.StatusNotFound, scrape.KindNotFound},
		{"410 is not_found", http.StatusGone, scrape.KindNotFound},
		{"500 is server_error", http.StatusInternalServerError, scrape.KindServerError},
		{"503 is server_error", http.StatusServiceUnavailable, scrape.KindServerError},
		{"403 is other", http.StatusForbidden, scrape.KindOther},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.statusCode)
			}))
			t.Cleanup(server.Close)

			_, err := newTestScraper(t).FetchPage(context.Background(), server.URL)
			require.Error(t, err)

			var scrapeErr *scrape.Error
			require.ErrorAs(t, err, &scrapeErr)
			assert.Equal(t, tt.wantKind, scrapeErr.Kind)
			assert.Equal(t, tt.statusCode, scrapeErr.StatusCode)
		})
	}
}

func TestFetchPage_SlowServerIsTimeout(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	t.Cleanup(server.Close)

	scraper := scrape.NewScraper(&http.Client{}, 50*time.Millisecond)

	_, err := scraper.FetchPage(context.Background(), server.URL)
	require.Error(t, err)

	var scrapeErr *scrape.Error
	require.ErrorAs(t, err, &scrapeErr)
	assert.Equal(t, scrape.KindTimeout, scrapeErr.Kind)
}

func TestFetchPage_UnreachableHostIsClassified(t *testing.T) {
	t.Parallel()

	// Reserved TEST-NET address; nothing listens there.
	scraper := scrape.NewScraper(&http.Client{Timeout: 200 * time.Millisecond}, testTimeout)

	_, err := scraper.FetchPage(context.Background(), "http://192.0.2.1/page")
	require.Error(t, err)

	var scrapeErr *scrape.Error
	require.ErrorAs(t, err, &scrapeErr)
	assert.Contains(t, []scrape.ErrorKind{scrape.KindTimeout, scrape.KindOther}, scrapeErr.Kind)
}

func TestFetchPage_SendsUserAgent(t *testing.T) {
	t.Parallel()

	var gotUserAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(`<html><head><title>ok</title></head></html>`))
	}))
	t.Cleanup(server.Close)

	_, err := newTestScraper(t).FetchPage(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Equal(t, scrape.DefaultUserAgent, gotUserAgent)
}
