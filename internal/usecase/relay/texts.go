package relay

import (
	"fmt"
	"strings"
)

// DefaultWelcome показывается на /start и в справке для пользователей.
const DefaultWelcome = `👋 Добро пожаловать!

Напишите сообщение, и оно будет передано администраторам.
Ответ придёт в этот чат.`

const adminHelp = `📋 Админские команды:

👥 Управление: /addadmin, /removeadmin, /admins
🚫 Блокировки: /block, /unblock, /blocked
📊 Информация: /status, /panel, /logs
📢 Рассылка: /broadcast или просто напишите текст
💾 Управление: /restart`

const panelText = `🔧 АДМИН ПАНЕЛЬ

👥 Управление админами:
/addadmin [ID] - добавить админа
/removeadmin [ID] - удалить админа
/admins - список админов

🚫 Управление блокировками:
/block [ID] - заблокировать пользователя
/unblock [ID] - разблокировать пользователя
/blocked - список заблокированных

📊 Статистика:
/status - статус бота
/panel - эта панель

📢 Рассылка:
/broadcast [текст] - отправить всем пользователям
Или просто напишите сообщение без reply для рассылки

💾 Управление:
/restart - перезапустить бота
/logs - показать последние логи`

const (
	textInvalidID        = "❌ Неверный ID пользователя"
	textProtectedAdmin   = "❌ Нельзя удалить главного админа"
	textNotAdmin         = "❌ Пользователь не является админом"
	textCannotBlockAdmin = "❌ Нельзя заблокировать админа"
	textNotBlocked       = "❌ Пользователь не заблокирован"
	textAdminBlocked     = "❌ Пользователь заблокирован, сначала разблокируйте его"
	textNoBlocked        = "✅ Нет заблокированных пользователей"
	textMediaBroadcast   = "📢 Медиа-рассылка пока не поддерживается"
	textStaleReply       = "⚠️ Получатель не найден: сообщение устарело или не было переслано ботом"
	textRestarting       = "🔄 Перезапуск бота..."
	textLogsMissing      = "📋 Файл логов не найден"
	textLogsHeader       = "📋 Последние логи:\n\n"
)

// logsBudget ограничивает длину ответа на /logs.
const (
	logsLines  = 10
	logsBudget = 4000
)

func usage(command, args string) string {
	return fmt.Sprintf("❌ Использование: %s %s", command, args)
}

func formatIDList(title string, ids []int64) string {
	var b strings.Builder
	b.WriteString(title)
	for _, id := range ids {
		fmt.Fprintf(&b, "\n• %d", id)
	}
	return b.String()
}

// Truncate обрезает текст до limit символов и добавляет многоточие.
func Truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}

// Stats содержит данные для /status.
type Stats struct {
	Admins   int
	Users    int
	Mappings int
	Blocked  int
	Restarts int
}

func (s Stats) String() string {
	return fmt.Sprintf(`📊 Статус бота:

👥 Админов: %d
💬 Активных диалогов: %d
📨 Активных маппингов: %d
🚫 Заблокированных: %d
🔄 Перезапусков: %d

Используйте /panel для управления`, s.Admins, s.Users, s.Mappings, s.Blocked, s.Restarts)
}
