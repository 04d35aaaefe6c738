package relay

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"tg-relay-bot/internal/domain"
	"tg-relay-bot/internal/usecase/access"
	"tg-relay-bot/internal/usecase/mapping"
)

// ErrInvalidArgument возвращается для некорректного аргумента команды.
var ErrInvalidArgument = errors.New("invalid argument")

// Command описывает разобранную команду.
type Command struct {
	Name string
	Args []string
	// Rest хранит текст после команды с сохранёнными переносами строк.
	Rest string
}

// ParseCommand разбирает текст, начинающийся с "/". Имя команды приводится
// к нижнему регистру, суффикс @botname отбрасывается.
func ParseCommand(text string) (Command, bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return Command{}, false
	}
	name, rest := text, ""
	if idx := strings.IndexAny(text, " \t\n\r"); idx >= 0 {
		name, rest = text[:idx], strings.TrimSpace(text[idx:])
	}
	if at := strings.Index(name, "@"); at > 0 {
		name = name[:at]
	}
	return Command{
		Name: strings.ToLower(name),
		Args: strings.Fields(rest),
		Rest: rest,
	}, true
}

// Interpreter выполняет команды /start, /help и админские команды.
type Interpreter struct {
	messenger   domain.Messenger
	store       *mapping.Store
	access      *access.Control
	broadcaster *Broadcaster
	restarter   domain.Restarter
	logs        domain.LogSource
	welcome     string
	log         zerolog.Logger
}

// NewInterpreter создаёт интерпретатор. restarter и logs могут быть nil.
func NewInterpreter(messenger domain.Messenger, store *mapping.Store, acl *access.Control, broadcaster *Broadcaster, restarter domain.Restarter, logs domain.LogSource, welcome string, log zerolog.Logger) *Interpreter {
	if strings.TrimSpace(welcome) == "" {
		welcome = DefaultWelcome
	}
	return &Interpreter{
		messenger:   messenger,
		store:       store,
		access:      acl,
		broadcaster: broadcaster,
		restarter:   restarter,
		logs:        logs,
		welcome:     welcome,
		log:         log,
	}
}

// Execute выполняет команду от пользователя from. Неизвестные команды и
// админские команды от обычных пользователей молча игнорируются.
func (i *Interpreter) Execute(ctx context.Context, from int64, isAdmin bool, text string) {
	cmd, ok := ParseCommand(text)
	if !ok {
		return
	}
	switch cmd.Name {
	case "/start":
		i.reply(ctx, from, i.welcome)
		return
	case "/help":
		if isAdmin {
			i.reply(ctx, from, adminHelp)
		} else {
			i.reply(ctx, from, i.welcome)
		}
		return
	}
	if !isAdmin {
		i.log.Debug().Int64("user", from).Str("command", cmd.Name).Msg("команда от пользователя проигнорирована")
		return
	}

	switch cmd.Name {
	case "/status":
		i.reply(ctx, from, i.Stats().String())
	case "/addadmin":
		i.withID(ctx, from, cmd, "[ID]", func(id int64) (string, error) {
			if err := i.access.AddAdmin(id); err != nil {
				return "", err
			}
			i.log.Info().Int64("admin", from).Int64("target", id).Msg("добавлен админ")
			return fmt.Sprintf("✅ Пользователь %d добавлен в админы", id), nil
		})
	case "/removeadmin":
		i.withID(ctx, from, cmd, "[ID]", func(id int64) (string, error) {
			if err := i.access.RemoveAdmin(id); err != nil {
				return "", err
			}
			i.log.Info().Int64("admin", from).Int64("target", id).Msg("удалён админ")
			return fmt.Sprintf("✅ Пользователь %d удален из админов", id), nil
		})
	case "/block":
		i.withID(ctx, from, cmd, "[ID]", func(id int64) (string, error) {
			if err := i.access.Block(id); err != nil {
				return "", err
			}
			i.log.Info().Int64("admin", from).Int64("target", id).Msg("пользователь заблокирован")
			return fmt.Sprintf("✅ Пользователь %d заблокирован", id), nil
		})
	case "/unblock":
		i.withID(ctx, from, cmd, "[ID]", func(id int64) (string, error) {
			if err := i.access.Unblock(id); err != nil {
				return "", err
			}
			i.log.Info().Int64("admin", from).Int64("target", id).Msg("пользователь разблокирован")
			return fmt.Sprintf("✅ Пользователь %d разблокирован", id), nil
		})
	case "/admins":
		i.reply(ctx, from, formatIDList("👥 Список админов:", i.access.Admins()))
	case "/blocked":
		blocked := i.access.Blocked()
		if len(blocked) == 0 {
			i.reply(ctx, from, textNoBlocked)
			return
		}
		i.reply(ctx, from, formatIDList("🚫 Заблокированные пользователи:", blocked))
	case "/panel":
		i.reply(ctx, from, panelText)
	case "/broadcast":
		if cmd.Rest == "" {
			i.reply(ctx, from, usage("/broadcast", "[текст]"))
			return
		}
		i.broadcaster.Broadcast(ctx, cmd.Rest, from)
	case "/restart":
		i.reply(ctx, from, textRestarting)
		i.log.Info().Int64("admin", from).Msg("перезапуск инициирован админом")
		if i.restarter != nil {
			i.restarter.Restart(ctx, fmt.Sprintf("команда /restart от админа %d", from))
		}
	case "/logs":
		i.reply(ctx, from, i.logsText())
	}
}

// Stats собирает данные для /status.
func (i *Interpreter) Stats() Stats {
	s := Stats{
		Admins:   len(i.access.Admins()),
		Users:    len(i.store.Users()),
		Mappings: i.store.Len(),
		Blocked:  len(i.access.Blocked()),
	}
	if i.restarter != nil {
		s.Restarts = i.restarter.RestartCount()
	}
	return s
}

func (i *Interpreter) withID(ctx context.Context, from int64, cmd Command, argHint string, fn func(id int64) (string, error)) {
	if len(cmd.Args) == 0 {
		i.reply(ctx, from, usage(cmd.Name, argHint))
		return
	}
	id, err := parseID(cmd.Args[0])
	if err == nil {
		var text string
		if text, err = fn(id); err == nil {
			i.reply(ctx, from, text)
			return
		}
	}
	i.reply(ctx, from, describeError(err))
}

func (i *Interpreter) logsText() string {
	if i.logs == nil {
		return textLogsMissing
	}
	tail, err := i.logs.Tail(logsLines)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return textLogsMissing
		}
		i.log.Error().Err(err).Msg("не удалось прочитать логи")
		return fmt.Sprintf("❌ Ошибка чтения логов: %v", err)
	}
	return Truncate(textLogsHeader+tail, logsBudget)
}

func (i *Interpreter) reply(ctx context.Context, chatID int64, text string) {
	reply(ctx, i.messenger, i.log, chatID, text)
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidArgument, raw)
	}
	return id, nil
}

func describeError(err error) string {
	switch {
	case errors.Is(err, ErrInvalidArgument):
		return textInvalidID
	case errors.Is(err, access.ErrProtectedAdmin):
		return textProtectedAdmin
	case errors.Is(err, access.ErrNotAdmin):
		return textNotAdmin
	case errors.Is(err, access.ErrCannotBlockAdmin):
		return textCannotBlockAdmin
	case errors.Is(err, access.ErrNotBlocked):
		return textNotBlocked
	case errors.Is(err, access.ErrAdminBlocked):
		return textAdminBlocked
	default:
		return fmt.Sprintf("❌ Ошибка выполнения команды: %v", err)
	}
}
