package poller

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"tg-relay-bot/internal/domain"
	"tg-relay-bot/internal/infra/metrics"
)

const (
	DefaultMaxConsecutive = 5
	DefaultBackoff        = 10 * time.Second
	DefaultRetryDelay     = time.Second
)

// Handler обрабатывает один апдейт.
type Handler interface {
	Handle(ctx context.Context, upd domain.Update) error
}

// Loop опрашивает источник апдейтов и передаёт их обработчику по одному.
type Loop struct {
	source  domain.UpdateSource
	handler Handler
	healer  *Healer
	log     zerolog.Logger

	maxConsecutive int
	backoff        time.Duration
	retryDelay     time.Duration

	offset      int
	consecutive int

	sleep func(ctx context.Context, d time.Duration)
}

// NewLoop создаёт цикл опроса. Нулевые параметры заменяются значениями по умолчанию.
func NewLoop(source domain.UpdateSource, handler Handler, healer *Healer, maxConsecutive int, backoff time.Duration, log zerolog.Logger) *Loop {
	if maxConsecutive <= 0 {
		maxConsecutive = DefaultMaxConsecutive
	}
	if backoff <= 0 {
		backoff = DefaultBackoff
	}
	return &Loop{
		source:         source,
		handler:        handler,
		healer:         healer,
		log:            log,
		maxConsecutive: maxConsecutive,
		backoff:        backoff,
		retryDelay:     DefaultRetryDelay,
		sleep:          sleepCtx,
	}
}

// Offset возвращает текущий offset опроса.
func (l *Loop) Offset() int { return l.offset }

// ConsecutiveFailures возвращает число ошибок опроса подряд.
func (l *Loop) ConsecutiveFailures() int { return l.consecutive }

// Run крутит цикл до отмены ctx. Текущий запрос и пачка апдейтов
// дорабатывают до конца.
func (l *Loop) Run(ctx context.Context) {
	l.log.Info().Msg("цикл опроса запущен")
	for ctx.Err() == nil {
		l.poll(ctx)
	}
	l.log.Info().Int("offset", l.offset).Msg("цикл опроса остановлен")
}

func (l *Loop) poll(ctx context.Context) {
	if l.healer.Pending() {
		l.restart(ctx)
		return
	}
	updates, err := l.source.GetUpdates(ctx, l.offset)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		l.consecutive++
		metrics.PollFailures.Inc()
		l.healer.RecordError(ctx, err)
		if l.healer.Pending() {
			l.restart(ctx)
			return
		}
		if l.consecutive >= l.maxConsecutive {
			metrics.PollBackoffs.Inc()
			l.log.Warn().Int("consecutive", l.consecutive).Dur("pause", l.backoff).Msg("много ошибок подряд, короткая пауза")
			l.sleep(ctx, l.backoff)
			l.consecutive = 0
			return
		}
		l.sleep(ctx, l.retryDelay)
		return
	}
	l.consecutive = 0

	// обработка апдейта не прерывается сигналом остановки
	dispatchCtx := context.WithoutCancel(ctx)
	for _, upd := range updates {
		l.dispatch(dispatchCtx, upd)
		if next := upd.UpdateID + 1; next > l.offset {
			l.offset = next
		}
		if l.healer.Pending() {
			// остаток пачки не подтверждается и придёт новому процессу
			l.restart(dispatchCtx)
			return
		}
	}
}

// restart подтверждает обработанные апдейты и передаёт управление Healer.
func (l *Loop) restart(ctx context.Context) {
	if acker, ok := l.source.(domain.UpdateAcker); ok && l.offset > 0 {
		if err := acker.AckUpdates(ctx, l.offset); err != nil {
			l.log.Warn().Err(err).Int("offset", l.offset).Msg("не удалось подтвердить апдейты перед перезапуском")
		}
	}
	l.healer.Execute(ctx)
}

func (l *Loop) dispatch(ctx context.Context, upd domain.Update) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Error().Int("update", upd.UpdateID).Str("panic", fmt.Sprint(r)).Msg("паника при обработке апдейта")
		}
	}()
	if err := l.handler.Handle(ctx, upd); err != nil {
		l.log.Error().Err(err).Int("update", upd.UpdateID).Msg("ошибка обработки апдейта")
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
