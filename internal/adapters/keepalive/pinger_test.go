package keepalive

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestPingHitsURL(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("ожидали GET, получили %s", r.Method)
		}
		hits.Add(1)
	}))
	defer srv.Close()

	p := NewPinger(srv.URL, time.Minute, zerolog.Nop())
	if err := p.Ping(context.Background()); err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if hits.Load() != 1 {
		t.Fatalf("ожидали 1 запрос, получили %d", hits.Load())
	}
}

func TestPingReportsBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	p := NewPinger(srv.URL, time.Minute, zerolog.Nop())
	if err := p.Ping(context.Background()); err == nil {
		t.Fatal("ожидали ошибку для статуса 502")
	}
}

func TestStartPingsUntilCancelled(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := NewPinger(srv.URL, 10*time.Millisecond, zerolog.Nop()).Start(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for hits.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("пингер не остановился после отмены контекста")
	}
	if hits.Load() < 2 {
		t.Fatalf("ожидали минимум 2 пинга, получили %d", hits.Load())
	}
}

func TestFailuresDoNotStopPinger(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	NewPinger(srv.URL, 10*time.Millisecond, zerolog.Nop()).Start(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for hits.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if hits.Load() < 3 {
		t.Fatalf("пинги должны продолжаться после ошибок, получили %d", hits.Load())
	}
}

func TestStartPingsImmediately(t *testing.T) {
	hit := make(chan struct{}, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case hit <- struct{}{}:
		default:
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := NewPinger(srv.URL, time.Hour, zerolog.Nop()).Start(ctx)
	defer func() {
		cancel()
		<-done
	}()

	select {
	case <-hit:
	case <-time.After(2 * time.Second):
		t.Fatal("первый пинг должен уйти сразу, не дожидаясь интервала")
	}
}
