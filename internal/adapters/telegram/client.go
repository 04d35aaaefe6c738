package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"tg-relay-bot/internal/domain"
	"tg-relay-bot/internal/infra/metrics"
)

const (
	// SendTimeout ограничивает отправку и пересылку.
	SendTimeout = 30 * time.Second
	// pollSlack добавляется к серверному ожиданию getUpdates.
	pollSlack = 5 * time.Second
)

// Client реализует domain.Messenger и domain.UpdateSource поверх Bot API.
type Client struct {
	bot         *tgbotapi.BotAPI
	pollTimeout int
	log         zerolog.Logger
}

// ErrInvalidToken возвращается, если Bot API отверг токен бота.
var ErrInvalidToken = errors.New("bot token rejected")

// NewClient создаёт клиента Bot API. pollTimeout задаётся в секундах.
func NewClient(token string, pollTimeout int, logger zerolog.Logger) *Client {
	return NewClientWithEndpoint(token, tgbotapi.APIEndpoint, pollTimeout, logger)
}

// NewClientWithEndpoint позволяет указать свой адрес Bot API.
// Сеть не используется: токен проверяет Authorize.
func NewClientWithEndpoint(token, endpoint string, pollTimeout int, logger zerolog.Logger) *Client {
	bot := &tgbotapi.BotAPI{
		Token:  token,
		Buffer: 100,
		Client: &timeoutClient{
			send: &http.Client{Timeout: SendTimeout},
			poll: &http.Client{Timeout: time.Duration(pollTimeout)*time.Second + pollSlack},
		},
	}
	bot.SetAPIEndpoint(endpoint)
	return &Client{bot: bot, pollTimeout: pollTimeout, log: logger}
}

// Authorize вызывает getMe. Отказ в токене (401, 404) возвращается как ErrInvalidToken,
// остальные ошибки как domain.ErrTransientAPI.
func (c *Client) Authorize(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()
	self, err := c.bot.GetMe()
	metrics.ObserveNetworkRequest("telegram_bot", "get_me", start, err)
	if err != nil {
		var apiErr *tgbotapi.Error
		if errors.As(err, &apiErr) && (apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusNotFound) {
			return fmt.Errorf("get me: %w: %s", ErrInvalidToken, apiErr.Message)
		}
		return fmt.Errorf("get me: %w: %w", domain.ErrTransientAPI, err)
	}
	c.bot.Self = self
	c.log.Info().Str("username", self.UserName).Msg("бот авторизован")
	return nil
}

// SendText отправляет текст. Длинный текст уходит несколькими сообщениями,
// возвращается идентификатор первого.
func (c *Client) SendText(ctx context.Context, chatID int64, text string, replyTo int) (int, error) {
	firstID := 0
	for i, chunk := range SplitText(text, messageLimit) {
		if err := ctx.Err(); err != nil {
			return firstID, err
		}
		msg := tgbotapi.NewMessage(chatID, chunk)
		if i == 0 && replyTo != 0 {
			msg.ReplyToMessageID = replyTo
		}
		start := time.Now()
		sent, err := c.bot.Send(msg)
		metrics.ObserveNetworkRequest("telegram_bot", "send_message", start, err)
		if err != nil {
			return firstID, fmt.Errorf("send message to %d: %w: %w", chatID, domain.ErrTransientAPI, err)
		}
		if i == 0 {
			firstID = sent.MessageID
		}
	}
	return firstID, nil
}

// Forward пересылает сообщение из fromChatID в toChatID.
func (c *Client) Forward(ctx context.Context, fromChatID int64, messageID int, toChatID int64) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	start := time.Now()
	sent, err := c.bot.Send(tgbotapi.NewForward(toChatID, fromChatID, messageID))
	metrics.ObserveNetworkRequest("telegram_bot", "forward_message", start, err)
	if err != nil {
		return 0, fmt.Errorf("forward message %d to %d: %w: %w", messageID, toChatID, domain.ErrTransientAPI, err)
	}
	return sent.MessageID, nil
}

// GetUpdates выполняет long-poll запрос getUpdates.
func (c *Client) GetUpdates(ctx context.Context, offset int) ([]domain.Update, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cfg := tgbotapi.NewUpdate(offset)
	cfg.Timeout = c.pollTimeout
	cfg.AllowedUpdates = []string{"message"}

	start := time.Now()
	raw, err := c.bot.GetUpdates(cfg)
	metrics.ObserveNetworkRequest("telegram_bot", "get_updates", start, err)
	if err != nil {
		return nil, fmt.Errorf("get updates: %w: %w", domain.ErrTransientAPI, err)
	}
	updates := make([]domain.Update, 0, len(raw))
	for _, upd := range raw {
		updates = append(updates, ToDomainUpdate(upd))
	}
	return updates, nil
}

// AckUpdates подтверждает все апдейты до offset коротким запросом getUpdates без ожидания.
func (c *Client) AckUpdates(ctx context.Context, offset int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cfg := tgbotapi.NewUpdate(offset)
	cfg.Limit = 1
	cfg.AllowedUpdates = []string{"message"}

	start := time.Now()
	_, err := c.bot.GetUpdates(cfg)
	metrics.ObserveNetworkRequest("telegram_bot", "ack_updates", start, err)
	if err != nil {
		return fmt.Errorf("ack updates: %w: %w", domain.ErrTransientAPI, err)
	}
	return nil
}

// ToDomainUpdate переводит апдейт Bot API в доменную модель.
func ToDomainUpdate(upd tgbotapi.Update) domain.Update {
	out := domain.Update{UpdateID: upd.UpdateID}
	m := upd.Message
	if m == nil {
		return out
	}
	msg := &domain.Message{
		MessageID: m.MessageID,
		Text:      m.Text,
		HasMedia:  hasMedia(m),
	}
	if m.From != nil {
		msg.FromID = m.From.ID
	}
	if m.Chat != nil {
		msg.ChatID = m.Chat.ID
	}
	if m.ReplyToMessage != nil {
		msg.ReplyToID = m.ReplyToMessage.MessageID
	}
	out.Message = msg
	return out
}

func hasMedia(m *tgbotapi.Message) bool {
	return len(m.Photo) > 0 ||
		m.Document != nil ||
		m.Video != nil ||
		m.Audio != nil ||
		m.Voice != nil ||
		m.Sticker != nil ||
		m.Animation != nil ||
		m.VideoNote != nil
}

// timeoutClient выбирает таймаут по методу: long-poll ждёт дольше отправки.
type timeoutClient struct {
	send *http.Client
	poll *http.Client
}

func (c *timeoutClient) Do(req *http.Request) (*http.Response, error) {
	if strings.HasSuffix(req.URL.Path, "/getUpdates") {
		return c.poll.Do(req)
	}
	return c.send.Do(req)
}
