package service

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var quiet = log.NewLogger(log.DiscardHandler())

func TestHealthzHandler(t *testing.T) {
	h := NewHealthzServer(func() string { return "running" }, quiet)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "http://example.com")
	rec := httptest.NewRecorder()
	h.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK running", rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestHealthzWithoutStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHealthzServer(nil, quiet).Handle(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, "OK", rec.Body.String())
}

func TestMetricsHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	(&MetricsServer{}).Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func TestServiceLifecycle(t *testing.T) {
	addr := freeAddr(t)
	svc := New(Config{
		HealthzEnabled: true,
		HealthzAddr:    addr,
		Status:         func() string { return "flushed" },
		Log:            quiet,
	})
	svc.Start(context.Background())

	var body string
	require.Eventually(t, func() bool {
		resp, err := http.Get(fmt.Sprintf("http://%s/healthz", addr))
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return false
		}
		body = string(data)
		return true
	}, 5*time.Second, 20*time.Millisecond)
	assert.Equal(t, "OK flushed", body)

	svc.Shutdown()
	_, err := http.Get(fmt.Sprintf("http://%s/healthz", addr))
	assert.Error(t, err)
}

func TestServiceDisabled(t *testing.T) {
	svc := New(Config{Log: quiet})
	svc.Start(context.Background())
	svc.Shutdown()
	assert.Nil(t, svc.Metrics.server)
	assert.Nil(t, svc.Healthz.server)
}
