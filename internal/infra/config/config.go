package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var (
	// ErrMissingToken возвращается, если не задан токен бота.
	ErrMissingToken = errors.New("TG_BOT_TOKEN is not set")
	// ErrMissingAdmin возвращается, если не задан главный админ.
	ErrMissingAdmin = errors.New("ADMIN_USER_ID is not set")
)

// AppConfig описывает конфигурацию релей-бота.
type AppConfig struct {
	AppEnv string `envconfig:"APP_ENV" default:"prod"`

	Telegram struct {
		Token       string `envconfig:"TG_BOT_TOKEN"`
		AdminID     int64  `envconfig:"ADMIN_USER_ID"`
		PollTimeout int    `envconfig:"TG_POLL_TIMEOUT" default:"30"`
	} `envconfig:""`

	WebhookURL        string        `envconfig:"WEBHOOK_URL"`
	KeepAliveURL      string        `envconfig:"KEEP_ALIVE_URL"`
	KeepAliveInterval time.Duration `envconfig:"KEEP_ALIVE_INTERVAL" default:"5m"`

	LogFile  string `envconfig:"LOG_FILE" default:"bot.log"`
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":9090"`

	WelcomeText string `envconfig:"WELCOME_TEXT"`

	Limits struct {
		BroadcastDelay         time.Duration `envconfig:"BROADCAST_DELAY" default:"100ms"`
		MaxConsecutiveFailures int           `envconfig:"MAX_CONSECUTIVE_FAILURES" default:"5"`
		FailureBackoff         time.Duration `envconfig:"FAILURE_BACKOFF" default:"10s"`
		MaxErrors              int           `envconfig:"MAX_ERRORS" default:"50"`
	} `envconfig:""`
}

// DotEnvFile подмешивается в окружение, если существует. Уже заданные
// переменные не перезаписываются.
const DotEnvFile = ".env"

// Load загружает конфиг из окружения и проверяет обязательные поля.
func Load() (AppConfig, error) {
	return LoadFrom(DotEnvFile)
}

// LoadFrom загружает конфиг, предварительно читая dotenv-файлы, если они есть.
func LoadFrom(dotenvFiles ...string) (AppConfig, error) {
	for _, path := range dotenvFiles {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return AppConfig{}, fmt.Errorf("не удалось прочитать %s: %w", path, err)
		}
	}
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, fmt.Errorf("не удалось загрузить конфиг: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate проверяет, что заданы токен и главный админ.
func (c AppConfig) Validate() error {
	if c.Telegram.Token == "" {
		return ErrMissingToken
	}
	if c.Telegram.AdminID == 0 {
		return ErrMissingAdmin
	}
	return nil
}
