package middleware

import (
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/datadash/internal/metrics"
)

func TestParseProxies(t *testing.T) {
	list := ParseProxies([]string{"10.0.0.0/8", " 192.168.1.5 ", "", "not-an-ip", "::1"})

	require.Len(t, list, 3)
	assert.True(t, list.Contains(net.ParseIP("10.1.2.3")))
	assert.True(t, list.Contains(net.ParseIP("192.168.1.5")))
	assert.False(t, list.Contains(net.ParseIP("192.168.1.6")))
	assert.True(t, list.Contains(net.ParseIP("::1")))
	assert.False(t, list.Contains(nil))
}

func TestClientIP(t *testing.T) {
	proxies := ParseProxies([]string{"10.0.0.0/8"})

	tests := []struct {
		name    string
		remote  string
		realIP  string
		forward string
		want    string
	}{
		{"direct client", "203.0.113.7:5000", "", "", "203.0.113.7"},
		{"untrusted client cannot spoof", "203.0.113.7:5000", "1.2.3.4", "5.6.7.8", "203.0.113.7"},
		{"trusted proxy with X-Real-IP", "10.0.0.2:443", "198.51.100.1", "5.6.7.8", "198.51.100.1"},
		{"trusted proxy with X-Forwarded-For", "10.0.0.2:443", "", "198.51.100.2, 10.0.0.9", "198.51.100.2"},
		{"trusted proxy with garbage headers", "10.0.0.2:443", "nope", "also-nope", "10.0.0.2"},
		{"remote without port", "203.0.113.7", "", "", "203.0.113.7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			if tt.realIP != "" {
				r.Header.Set("X-Real-IP", tt.realIP)
			}
			if tt.forward != "" {
				r.Header.Set("X-Forwarded-For", tt.forward)
			}
			assert.Equal(t, tt.want, proxies.ClientIP(r))
		})
	}
}

func TestTrustedRealIP_RewritesRemoteAddr(t *testing.T) {
	var seen string
	h := TrustedRealIP([]string{"10.0.0.0/8"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.RemoteAddr
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.2:443"
	r.Header.Set("X-Forwarded-For", "198.51.100.2")
	h.ServeHTTP(httptest.NewRecorder(), r)

	assert.Equal(t, "198.51.100.2", seen)
}

func TestAccessLog_RecordsRoutePattern(t *testing.T) {
	m := metrics.New()
	r := chi.NewRouter()
	r.Use(AccessLog(m))
	r.Get("/s/{sessionID}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/s/abc123", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)

	count, err := testutil.GatherAndCount(m.Registry(), "datadash_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	out, err := m.Registry().Gather()
	require.NoError(t, err)
	var route string
	for _, mf := range out {
		if mf.GetName() != "datadash_http_requests_total" {
			continue
		}
		for _, lp := range mf.GetMetric()[0].GetLabel() {
			if lp.GetName() == "route" {
				route = lp.GetValue()
			}
		}
	}
	assert.Equal(t, "/s/{sessionID}", route)
}

func TestAccessLog_NilMetrics(t *testing.T) {
	h := AccessLog(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestResponseWriter_FirstStatusWins(t *testing.T) {
	rec := httptest.NewRecorder()
	w := &responseWriter{ResponseWriter: rec, status: http.StatusOK}

	w.WriteHeader(http.StatusNotFound)
	w.WriteHeader(http.StatusInternalServerError)

	assert.Equal(t, http.StatusNotFound, w.status)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, rec, w.Unwrap())
}
