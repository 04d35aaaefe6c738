package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

func TestHealthz(t *testing.T) {
	srv := NewServer(zerolog.Nop(), prometheus.NewRegistry())
	rec := httptest.NewRecorder()
	srv.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("ожидали 200, получили %d", rec.Code)
	}
	if rec.Body.String() != "ok" {
		t.Fatalf("неожиданное тело: %q", rec.Body.String())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_relay_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Inc()

	srv := NewServer(zerolog.Nop(), reg)
	rec := httptest.NewRecorder()
	srv.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("ожидали 200, получили %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "test_relay_total 1") {
		t.Fatalf("метрика не найдена в ответе: %s", rec.Body.String())
	}
}
