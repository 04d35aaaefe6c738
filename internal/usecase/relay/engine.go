package relay

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"tg-relay-bot/internal/domain"
	"tg-relay-bot/internal/infra/metrics"
	"tg-relay-bot/internal/usecase/access"
	"tg-relay-bot/internal/usecase/mapping"
)

var (
	// ErrUndelivered возвращается, если ни один админ не принял пересылку.
	ErrUndelivered = errors.New("message was not delivered to any admin")
	// ErrReplyFailed возвращается, если ответ админа не дошёл до пользователя.
	ErrReplyFailed = errors.New("admin reply was not delivered")
)

const commandPrefix = "/"

// Engine классифицирует входящие сообщения и выполняет маршрутизацию.
type Engine struct {
	messenger   domain.Messenger
	store       *mapping.Store
	access      *access.Control
	commands    *Interpreter
	broadcaster *Broadcaster
	log         zerolog.Logger
}

// NewEngine создаёт движок релея.
func NewEngine(messenger domain.Messenger, store *mapping.Store, acl *access.Control, commands *Interpreter, broadcaster *Broadcaster, log zerolog.Logger) *Engine {
	return &Engine{
		messenger:   messenger,
		store:       store,
		access:      acl,
		commands:    commands,
		broadcaster: broadcaster,
		log:         log,
	}
}

// Handle обрабатывает один апдейт.
func (e *Engine) Handle(ctx context.Context, upd domain.Update) error {
	msg := upd.Message
	if msg == nil || msg.FromID == 0 {
		return nil
	}
	if !msg.HasMedia && msg.Text == "" {
		metrics.IncRelayEvent(metrics.EventDiscarded)
		return nil
	}
	if e.access.IsBlocked(msg.FromID) {
		metrics.IncRelayEvent(metrics.EventBlocked)
		e.log.Debug().Int64("user", msg.FromID).Msg("сообщение заблокированного пользователя отброшено")
		return nil
	}

	if msg.Text != "" {
		e.log.Info().Int64("user", msg.FromID).Str("text", Truncate(msg.Text, 50)).Msg("входящее сообщение")
	} else {
		e.log.Info().Int64("user", msg.FromID).Msg("входящее медиа")
	}

	isAdmin := e.access.IsAdmin(msg.FromID)
	isCommand := strings.HasPrefix(msg.Text, commandPrefix)

	if isAdmin && msg.ReplyToID != 0 {
		if target, ok := e.store.Get(msg.SourceChat(), msg.ReplyToID); ok {
			return e.replyToUser(ctx, msg, target)
		}
		if !isCommand {
			metrics.IncRelayEvent(metrics.EventStaleReply)
			e.log.Warn().Int64("admin", msg.FromID).Int("reply_to", msg.ReplyToID).Msg("получатель ответа не найден")
			reply(ctx, e.messenger, e.log, msg.FromID, textStaleReply)
			return nil
		}
	}

	if isCommand {
		metrics.IncRelayEvent(metrics.EventCommand)
		e.commands.Execute(ctx, msg.FromID, isAdmin, msg.Text)
		return nil
	}

	if isAdmin {
		if msg.Text == "" {
			reply(ctx, e.messenger, e.log, msg.FromID, textMediaBroadcast)
			return nil
		}
		metrics.IncRelayEvent(metrics.EventBroadcast)
		e.broadcaster.Broadcast(ctx, msg.Text, msg.FromID)
		return nil
	}

	return e.forwardToAdmins(ctx, msg)
}

func (e *Engine) replyToUser(ctx context.Context, msg *domain.Message, target int64) error {
	var err error
	if msg.HasMedia {
		_, err = e.messenger.Forward(ctx, msg.SourceChat(), msg.MessageID, target)
	} else {
		_, err = e.messenger.SendText(ctx, target, msg.Text, 0)
	}
	if err != nil {
		reply(ctx, e.messenger, e.log, msg.FromID, fmt.Sprintf("❌ Не удалось доставить ответ пользователю %d", target))
		return fmt.Errorf("%w: user %d: %w", ErrReplyFailed, target, err)
	}
	metrics.IncRelayEvent(metrics.EventReply)
	e.log.Info().Int64("admin", msg.FromID).Int64("user", target).Msg("ответ админа отправлен пользователю")
	return nil
}

// forwardToAdmins пересылает сообщение админам по очереди до первой удачной пересылки.
func (e *Engine) forwardToAdmins(ctx context.Context, msg *domain.Message) error {
	for _, adminID := range e.access.Admins() {
		outboundID, err := e.messenger.Forward(ctx, msg.SourceChat(), msg.MessageID, adminID)
		if err != nil {
			e.log.Warn().Err(err).Int64("admin", adminID).Int64("user", msg.FromID).Msg("не удалось переслать админу")
			continue
		}
		e.store.Put(adminID, outboundID, msg.FromID)
		metrics.IncRelayEvent(metrics.EventForwarded)
		e.log.Info().Int64("user", msg.FromID).Int64("admin", adminID).Int("outbound", outboundID).Msg("сообщение переслано админу")
		return nil
	}
	metrics.IncRelayEvent(metrics.EventUndelivered)
	return fmt.Errorf("%w: user %d", ErrUndelivered, msg.FromID)
}

// reply отправляет служебное сообщение; ошибка только логируется.
func reply(ctx context.Context, m domain.Messenger, log zerolog.Logger, chatID int64, text string) {
	if _, err := m.SendText(ctx, chatID, text, 0); err != nil {
		log.Error().Err(err).Int64("chat", chatID).Msg("не удалось отправить сообщение")
	}
}
