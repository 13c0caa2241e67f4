package scraper

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domerrors "github.com/garyellow/xoso-linebot-go/internal/errors"
	"github.com/garyellow/xoso-linebot-go/internal/metrics"
)

func newTestClient(maxRetries int, opts ...Option) *Client {
	opts = append([]Option{WithRetryDelay(time.Millisecond), WithRequestRate(1000)}, opts...)
	return NewClient(5*time.Second, maxRetries, opts...)
}

func TestClient_GetDocument(t *testing.T) {
	t.Parallel()

	var ua atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua.Store(r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<html><body><h1>Kết quả XSMB</h1></body></html>`))
	}))
	defer srv.Close()

	doc, err := newTestClient(0).GetDocument(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Kết quả XSMB", doc.Find("h1").Text())
	assert.NotEmpty(t, ua.Load())
}

func TestClient_GetDocument_Gzip(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, _ = gz.Write([]byte(`<p class="db">01234</p>`))
	require.NoError(t, gz.Close())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		_, _ = w.Write(buf.Bytes())
	}))
	defer srv.Close()

	doc, err := newTestClient(0).GetDocument(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "01234", doc.Find(".db").Text())
}

func TestClient_RetriesServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	m := metrics.New(prometheus.NewRegistry())
	resp, err := newTestClient(5, WithMetrics(m)).Get(context.Background(), srv.URL)
	require.NoError(t, err)
	_ = resp.Body.Close()

	assert.Equal(t, int32(3), calls.Load())
	assert.InDelta(t, 2, testutil.ToFloat64(m.ScraperRequestsTotal.WithLabelValues("server_error")), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(m.ScraperRequestsTotal.WithLabelValues("success")), 1e-9)
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestClient(5).Get(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())

	var scraperErr *domerrors.ScraperError
	require.ErrorAs(t, err, &scraperErr)
	assert.Equal(t, http.StatusNotFound, scraperErr.StatusCode)
}

func TestClient_GivesUpAfterMaxRetries(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestClient(2).Get(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Equal(t, int32(3), calls.Load())
	assert.True(t, IsNetworkError(err))
}
