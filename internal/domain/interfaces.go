package domain

import "context"

// Messenger отправляет сообщения через платформу.
type Messenger interface {
	SendText(ctx context.Context, chatID int64, text string, replyTo int) (int, error)
	Forward(ctx context.Context, fromChatID int64, messageID int, toChatID int64) (int, error)
}

// UpdateSource выдаёт новые апдейты начиная с offset.
type UpdateSource interface {
	GetUpdates(ctx context.Context, offset int) ([]Update, error)
}

// UpdateAcker подтверждает платформе апдейты до offset без ожидания новых.
type UpdateAcker interface {
	AckUpdates(ctx context.Context, offset int) error
}

// Restarter переводит процесс в состояние перезапуска.
type Restarter interface {
	Restart(ctx context.Context, reason string)
	RestartCount() int
}

// LogSource возвращает последние строки журнала процесса.
type LogSource interface {
	Tail(lines int) (string, error)
}
