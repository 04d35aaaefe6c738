package relay

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"tg-relay-bot/internal/domain"
	"tg-relay-bot/internal/infra/metrics"
	"tg-relay-bot/internal/usecase/access"
	"tg-relay-bot/internal/usecase/mapping"
)

// DefaultBroadcastDelay задаёт паузу между отправками рассылки.
const DefaultBroadcastDelay = 100 * time.Millisecond

// Broadcaster рассылает текст всем известным пользователям.
type Broadcaster struct {
	messenger domain.Messenger
	store     *mapping.Store
	access    *access.Control
	delay     time.Duration
	log       zerolog.Logger
}

// NewBroadcaster создаёт рассыльщика.
func NewBroadcaster(messenger domain.Messenger, store *mapping.Store, acl *access.Control, delay time.Duration, log zerolog.Logger) *Broadcaster {
	return &Broadcaster{
		messenger: messenger,
		store:     store,
		access:    acl,
		delay:     delay,
		log:       log,
	}
}

// Recipients возвращает авторов живых маппингов без админов и заблокированных.
func (b *Broadcaster) Recipients() []int64 {
	users := b.store.Users()
	out := make([]int64, 0, len(users))
	for _, id := range users {
		if b.access.IsAdmin(id) || b.access.IsBlocked(id) {
			continue
		}
		out = append(out, id)
	}
	return out
}

// Broadcast отправляет text каждому получателю по одному разу и сообщает итог инициатору.
// Ошибки отдельных отправок не прерывают рассылку и не повторяются.
func (b *Broadcaster) Broadcast(ctx context.Context, text string, initiator int64) int {
	sent := 0
	for i, userID := range b.Recipients() {
		if i > 0 && b.delay > 0 {
			time.Sleep(b.delay)
		}
		if _, err := b.messenger.SendText(ctx, userID, text, 0); err != nil {
			metrics.BroadcastRecipients.WithLabelValues("error").Inc()
			b.log.Error().Err(err).Int64("user", userID).Msg("рассылка: не удалось отправить сообщение")
			continue
		}
		metrics.BroadcastRecipients.WithLabelValues("sent").Inc()
		sent++
	}
	reply(ctx, b.messenger, b.log, initiator, fmt.Sprintf("📢 Рассылка завершена: отправлено %d пользователям", sent))
	b.log.Info().Int64("admin", initiator).Int("sent", sent).Msg("массовая рассылка завершена")
	return sent
}
