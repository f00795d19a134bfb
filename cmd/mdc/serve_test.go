package main

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcorbin/mdc/scandown"
)

func Test_renderService(t *testing.T) {
	svc := newRenderService(scandown.DefaultOptions())

	do := func(method, target, body string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		svc.ServeHTTP(rec, httptest.NewRequest(method, target, strings.NewReader(body)))
		return rec
	}

	t.Run("html", func(t *testing.T) {
		rec := do(http.MethodPost, "/render", "# Hi")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
		assert.Equal(t, "<h1 id=\"hi\">Hi</h1>\n", rec.Body.String())
	})

	t.Run("text", func(t *testing.T) {
		rec := do(http.MethodPost, "/render?format=text", "*a*")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
		assert.Equal(t, "a\n\n", rec.Body.String())
	})

	t.Run("dialect", func(t *testing.T) {
		rec := do(http.MethodPost, "/render?dialect=normal", "~~a~~")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "<p>~~a~~</p>\n", rec.Body.String())
	})

	t.Run("bad dialect", func(t *testing.T) {
		rec := do(http.MethodPost, "/render?dialect=bogus", "a")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("wrong method", func(t *testing.T) {
		rec := do(http.MethodGet, "/render", "")
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
		assert.Equal(t, http.MethodPost, rec.Header().Get("Allow"))
	})

	t.Run("metrics", func(t *testing.T) {
		assert.Equal(t, 3.0, testutil.ToFloat64(svc.requests.WithLabelValues("200")))
		assert.Equal(t, 1.0, testutil.ToFloat64(svc.requests.WithLabelValues("400")))
		assert.Equal(t, 1.0, testutil.ToFloat64(svc.requests.WithLabelValues("405")))

		rec := do(http.MethodGet, "/metrics", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "mdc_render_requests_total")
		assert.Contains(t, rec.Body.String(), "mdc_render_duration_seconds")
	})
}

func Test_runServer(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runServer(ctx, ln, newRenderService(scandown.DefaultOptions())) }()

	resp, err := http.Post("http://"+ln.Addr().String()+"/render", "text/markdown", strings.NewReader("*hi*"))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, "<p><em>hi</em></p>\n", string(body))

	cancel()
	assert.NoError(t, <-done, "expected clean shutdown")
}
