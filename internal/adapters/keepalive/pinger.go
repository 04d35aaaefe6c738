package keepalive

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"tg-relay-bot/internal/infra/metrics"
)

const (
	DefaultInterval = 5 * time.Minute
	requestTimeout  = 30 * time.Second
)

// Pinger периодически обращается к URL, чтобы хостинг не усыплял процесс.
type Pinger struct {
	url      string
	interval time.Duration
	client   *http.Client
	log      zerolog.Logger
}

// NewPinger создаёт Pinger. Нулевой interval заменяется на DefaultInterval.
func NewPinger(url string, interval time.Duration, log zerolog.Logger) *Pinger {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Pinger{
		url:      url,
		interval: interval,
		client:   &http.Client{Timeout: requestTimeout},
		log:      log,
	}
}

// Start пингует сразу и далее раз в интервал. Канал закрывается после остановки по ctx.
func (p *Pinger) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		p.log.Info().Str("url", p.url).Dur("interval", p.interval).Msg("keep-alive запущен")
		p.tick(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.tick(ctx)
			}
		}
	}()
	return done
}

func (p *Pinger) tick(ctx context.Context) {
	if err := p.Ping(ctx); err != nil && ctx.Err() == nil {
		p.log.Warn().Err(err).Str("url", p.url).Msg("keep-alive пинг не прошёл")
	}
}

// Ping выполняет один GET-запрос.
func (p *Pinger) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveNetworkRequest("keepalive", "ping", start, err) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= 300 {
		return fmt.Errorf("keep-alive status %d", resp.StatusCode)
	}
	p.log.Debug().Str("url", p.url).Msg("keep-alive пинг")
	return nil
}
