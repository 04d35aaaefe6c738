package domain

import (
	"errors"
	"time"
)

// ErrTransientAPI оборачивает сетевые ошибки и ответы Bot API с ошибочным статусом.
var ErrTransientAPI = errors.New("transient api error")

// Message описывает входящее сообщение в нужном релею объёме.
type Message struct {
	MessageID int
	ChatID    int64
	FromID    int64
	Text      string
	HasMedia  bool
	// ReplyToID равен 0, если сообщение не является ответом.
	ReplyToID int
}

// SourceChat возвращает чат, из которого пересылается сообщение.
func (m Message) SourceChat() int64 {
	if m.ChatID != 0 {
		return m.ChatID
	}
	return m.FromID
}

// Update представляет апдейт long-poll.
type Update struct {
	UpdateID int
	Message  *Message
}

// MappingEntry связывает пересланное админу сообщение с автором.
// Идентификаторы сообщений уникальны только внутри чата, поэтому запись
// помнит и чат админа.
type MappingEntry struct {
	AdminChatID       int64
	OutboundMessageID int
	UserID            int64
	CreatedAt         time.Time
}
