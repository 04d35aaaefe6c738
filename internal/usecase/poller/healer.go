package poller

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"tg-relay-bot/internal/domain"
	"tg-relay-bot/internal/infra/metrics"
)

// ExitRestart задаёт код выхода при самоперезапуске. Чистая остановка завершается с 0.
const ExitRestart = 1

// DefaultMaxErrors задаёт порог накопленных ошибок для перезапуска.
const DefaultMaxErrors = 50

// AdminLister возвращает текущих админов.
type AdminLister interface {
	Admins() []int64
}

// Supervisor получает сигнал о предстоящем перезапуске.
type Supervisor interface {
	NotifyRestart(ctx context.Context, reason string, restart int) error
}

// Healer считает ошибки API и перезапускает процесс при превышении порога.
type Healer struct {
	messenger  domain.Messenger
	admins     AdminLister
	supervisor Supervisor
	log        zerolog.Logger

	maxErrors    int
	errorCount   int
	restartCount int
	pending      bool
	reason       string
	restarting   bool

	exit func(code int)
}

// NewHealer создаёт Healer. supervisor может быть nil.
func NewHealer(messenger domain.Messenger, admins AdminLister, supervisor Supervisor, maxErrors int, log zerolog.Logger) *Healer {
	if maxErrors <= 0 {
		maxErrors = DefaultMaxErrors
	}
	return &Healer{
		messenger:  messenger,
		admins:     admins,
		supervisor: supervisor,
		log:        log,
		maxErrors:  maxErrors,
		exit:       os.Exit,
	}
}

// RecordError учитывает ошибку и запускает перезапуск при достижении порога.
func (h *Healer) RecordError(ctx context.Context, err error) {
	h.errorCount++
	metrics.APIErrors.Inc()
	h.log.Error().Err(err).Int("count", h.errorCount).Msg("ошибка API")
	if h.errorCount >= h.maxErrors {
		h.log.Error().Int("count", h.errorCount).Msg("критический уровень ошибок, самоперезапуск")
		h.Restart(ctx, fmt.Sprintf("накоплено %d ошибок", h.errorCount))
	}
}

// ErrorCount возвращает число накопленных ошибок.
func (h *Healer) ErrorCount() int { return h.errorCount }

// RestartCount возвращает число перезапусков текущего процесса.
func (h *Healer) RestartCount() int { return h.restartCount }

// Restart запрашивает перезапуск. Выполняет его цикл опроса через Execute,
// когда текущий апдейт уже подтверждён.
func (h *Healer) Restart(_ context.Context, reason string) {
	if h.restarting || h.pending {
		return
	}
	h.pending = true
	h.reason = reason
	h.log.Warn().Str("reason", reason).Msg("запрошен перезапуск")
}

// Pending сообщает, что перезапуск запрошен и ещё не выполнен.
func (h *Healer) Pending() bool { return h.pending }

// Execute уведомляет админов и супервизор, затем завершает процесс с ExitRestart.
// Уведомления best-effort: их ошибки только логируются.
func (h *Healer) Execute(ctx context.Context) {
	if h.restarting {
		return
	}
	h.restarting = true
	h.pending = false
	h.restartCount++
	h.log.Warn().Int("restart", h.restartCount).Str("reason", h.reason).Msg("самоперезапуск")

	ctx = context.WithoutCancel(ctx)
	text := fmt.Sprintf("🔄 Бот автоматически перезапущен #%d", h.restartCount)
	for _, adminID := range h.admins.Admins() {
		if _, err := h.messenger.SendText(ctx, adminID, text, 0); err != nil {
			h.log.Warn().Err(err).Int64("admin", adminID).Msg("не удалось уведомить админа о перезапуске")
		}
	}
	if h.supervisor != nil {
		if err := h.supervisor.NotifyRestart(ctx, h.reason, h.restartCount); err != nil {
			h.log.Warn().Err(err).Msg("не удалось уведомить супервизор")
		}
	}
	h.exit(ExitRestart)
}

// Track оборачивает messenger так, что каждая его ошибка учитывается Healer.
func (h *Healer) Track(m domain.Messenger) domain.Messenger {
	return &trackedMessenger{next: m, healer: h}
}

type trackedMessenger struct {
	next   domain.Messenger
	healer *Healer
}

func (t *trackedMessenger) SendText(ctx context.Context, chatID int64, text string, replyTo int) (int, error) {
	id, err := t.next.SendText(ctx, chatID, text, replyTo)
	if err != nil {
		t.healer.RecordError(ctx, err)
	}
	return id, err
}

func (t *trackedMessenger) Forward(ctx context.Context, fromChatID int64, messageID int, toChatID int64) (int, error) {
	id, err := t.next.Forward(ctx, fromChatID, messageID, toChatID)
	if err != nil {
		t.healer.RecordError(ctx, err)
	}
	return id, err
}
