package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"tg-relay-bot/internal/adapters/keepalive"
	"tg-relay-bot/internal/adapters/telegram"
	"tg-relay-bot/internal/adapters/webhook"
	"tg-relay-bot/internal/domain"
	"tg-relay-bot/internal/infra/config"
	apphttp "tg-relay-bot/internal/infra/http"
	"tg-relay-bot/internal/infra/log"
	"tg-relay-bot/internal/infra/metrics"
	"tg-relay-bot/internal/usecase/access"
	"tg-relay-bot/internal/usecase/mapping"
	"tg-relay-bot/internal/usecase/poller"
	"tg-relay-bot/internal/usecase/relay"
)

const (
	textStarted = "🚀 Бот запущен и готов к работе"
	textStopped = "⏹️ Бот завершил работу"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := log.NewLogger(os.Getenv("APP_ENV"), nil)
		boot.Fatal().Err(err).Msg("некорректная конфигурация")
	}

	runID := uuid.NewString()
	var fileOut io.Writer
	logFile, err := log.OpenFile(cfg.LogFile)
	if err != nil {
		boot := log.NewLogger(cfg.AppEnv, nil)
		boot.Warn().Err(err).Str("path", cfg.LogFile).Msg("не удалось открыть файл логов, пишем только в stdout")
	} else {
		defer logFile.Close()
		fileOut = logFile
	}
	logger := log.NewLogger(cfg.AppEnv, fileOut).With().Str("run_id", runID).Logger()

	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	var serverDone <-chan struct{}
	if cfg.HTTPAddr != "" {
		serverDone = apphttp.NewServer(logger, prometheus.DefaultGatherer).Start(ctx, cfg.HTTPAddr)
	}

	client := telegram.NewClient(cfg.Telegram.Token, cfg.Telegram.PollTimeout, component(logger, "telegram"))

	acl := access.NewControl(cfg.Telegram.AdminID)
	store := mapping.NewStore()

	var supervisor poller.Supervisor
	if cfg.WebhookURL != "" {
		notifier, err := webhook.New(cfg.WebhookURL, runID)
		if err != nil {
			logger.Fatal().Err(err).Msg("некорректный WEBHOOK_URL")
		}
		supervisor = notifier
	}
	pollLog := component(logger, "poller")
	healer := poller.NewHealer(client, acl, supervisor, cfg.Limits.MaxErrors, pollLog)
	messenger := healer.Track(client)

	if err := client.Authorize(ctx); err != nil {
		if errors.Is(err, telegram.ErrInvalidToken) {
			logger.Fatal().Err(err).Msg("Bot API отверг токен")
		}
		healer.RecordError(ctx, err)
	}

	welcome := cfg.WelcomeText
	if welcome == "" {
		welcome = relay.DefaultWelcome
	}
	relayLog := component(logger, "relay")
	broadcaster := relay.NewBroadcaster(messenger, store, acl, cfg.Limits.BroadcastDelay, relayLog)
	interpreter := relay.NewInterpreter(messenger, store, acl, broadcaster, healer, log.NewFileTail(cfg.LogFile), welcome, relayLog)
	engine := relay.NewEngine(messenger, store, acl, interpreter, broadcaster, relayLog)
	loop := poller.NewLoop(client, engine, healer, cfg.Limits.MaxConsecutiveFailures, cfg.Limits.FailureBackoff, pollLog)

	var keepAliveDone <-chan struct{}
	if cfg.KeepAliveURL != "" {
		keepAliveDone = keepalive.NewPinger(cfg.KeepAliveURL, cfg.KeepAliveInterval, component(logger, "keepalive")).Start(ctx)
	}

	notifyAdmins(ctx, client, acl.Admins(), textStarted, logger)
	logger.Info().Int64("admin", acl.Primary()).Msg("релей-бот запущен")

	loop.Run(ctx)

	logger.Info().Msg("остановка бота")
	if keepAliveDone != nil {
		<-keepAliveDone
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	notifyAdmins(shutdownCtx, client, acl.Admins(), textStopped, logger)
	if serverDone != nil {
		<-serverDone
	}
}

func notifyAdmins(ctx context.Context, m domain.Messenger, admins []int64, text string, logger zerolog.Logger) {
	for _, adminID := range admins {
		if _, err := m.SendText(ctx, adminID, text, 0); err != nil {
			logger.Warn().Err(err).Int64("admin", adminID).Msg("не удалось уведомить админа")
		}
	}
}

func component(logger zerolog.Logger, name string) zerolog.Logger {
	return logger.With().Str("component", name).Logger()
}
