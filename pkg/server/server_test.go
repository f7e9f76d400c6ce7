package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/justin-oleary/simwatch/pkg/metrics" // register collectors
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestFileHandler(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "experiment_status.html"), []byte("<html>ok</html>"), 0o644))
	h := FileHandler(dir)

	cases := []struct {
		method   string
		wantCode int
		wantBody string
	}{
		{method: http.MethodGet, wantCode: http.StatusOK, wantBody: "<html>ok</html>"},
		{method: http.MethodHead, wantCode: http.StatusOK},
		{method: http.MethodPost, wantCode: http.StatusMethodNotAllowed},
		{method: http.MethodPut, wantCode: http.StatusMethodNotAllowed},
		{method: http.MethodDelete, wantCode: http.StatusMethodNotAllowed},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.method, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(tc.method, "/experiment_status.html", nil))

			assert.Equal(t, tc.wantCode, rec.Code)
			if tc.wantBody != "" {
				assert.Equal(t, tc.wantBody, rec.Body.String())
			}
			if tc.wantCode == http.StatusMethodNotAllowed {
				assert.Equal(t, "GET, HEAD", rec.Header().Get("Allow"))
			}
		})
	}

	// the document is untouched by the rejected writes
	b, err := os.ReadFile(filepath.Join(dir, "experiment_status.html"))
	require.NoError(t, err)
	assert.Equal(t, "<html>ok</html>", string(b))
}

func TestMetricsHandler(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	MetricsHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "simwatch_cycles_total")
}

func TestStartServesUntilCancel(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("hello"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	s, err := Start(ctx, "127.0.0.1:0", FileHandler(dir), quietLogger())
	require.NoError(t, err)

	resp, err := http.Get("http://" + s.Addr() + "/index.html")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, "hello", string(body))

	cancel()
	done := make(chan error, 1)
	go func() { done <- s.Wait() }()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after cancel")
	}
}

func TestStartAddrInUse(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first, err := Start(ctx, "127.0.0.1:0", http.NotFoundHandler(), quietLogger())
	require.NoError(t, err)

	_, err = Start(ctx, first.Addr(), http.NotFoundHandler(), quietLogger())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAddrInUse)
	assert.True(t, strings.Contains(err.Error(), first.Addr()))
}
