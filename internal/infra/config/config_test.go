package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TG_BOT_TOKEN", "123:abc")
	t.Setenv("ADMIN_USER_ID", "999")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if cfg.Telegram.AdminID != 999 {
		t.Fatalf("ожидали админа 999, получили %d", cfg.Telegram.AdminID)
	}
	if cfg.Telegram.PollTimeout != 30 {
		t.Fatalf("ожидали таймаут 30, получили %d", cfg.Telegram.PollTimeout)
	}
	if cfg.Limits.MaxConsecutiveFailures != 5 || cfg.Limits.MaxErrors != 50 {
		t.Fatalf("неожиданные лимиты: %+v", cfg.Limits)
	}
	if cfg.Limits.FailureBackoff != 10*time.Second {
		t.Fatalf("ожидали паузу 10s, получили %s", cfg.Limits.FailureBackoff)
	}
	if cfg.KeepAliveInterval != 5*time.Minute {
		t.Fatalf("ожидали интервал 5m, получили %s", cfg.KeepAliveInterval)
	}
	if cfg.LogFile != "bot.log" {
		t.Fatalf("ожидали bot.log, получили %s", cfg.LogFile)
	}
}

func TestLoadMissingRequired(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		admin   string
		wantErr error
	}{
		{name: "no token", admin: "999", wantErr: ErrMissingToken},
		{name: "no admin", token: "123:abc", admin: "0", wantErr: ErrMissingAdmin},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TG_BOT_TOKEN", tt.token)
			t.Setenv("ADMIN_USER_ID", tt.admin)
			if _, err := Load(); !errors.Is(err, tt.wantErr) {
				t.Fatalf("ожидали %v, получили %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoadMalformedAdmin(t *testing.T) {
	t.Setenv("TG_BOT_TOKEN", "123:abc")
	t.Setenv("ADMIN_USER_ID", "not-a-number")
	if _, err := Load(); err == nil {
		t.Fatal("ожидали ошибку для некорректного ADMIN_USER_ID")
	}
}

func TestLoadFromDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "TG_BOT_TOKEN=from-file\nADMIN_USER_ID=111\nWELCOME_TEXT=привет\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("не удалось записать .env: %v", err)
	}
	t.Setenv("ADMIN_USER_ID", "999")
	// t.Setenv восстановит исходные значения после теста
	t.Setenv("TG_BOT_TOKEN", "")
	t.Setenv("WELCOME_TEXT", "")
	os.Unsetenv("TG_BOT_TOKEN")
	os.Unsetenv("WELCOME_TEXT")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if cfg.Telegram.Token != "from-file" {
		t.Fatalf("токен должен прийти из файла, получили %q", cfg.Telegram.Token)
	}
	if cfg.Telegram.AdminID != 999 {
		t.Fatalf("окружение приоритетнее файла: ожидали 999, получили %d", cfg.Telegram.AdminID)
	}
	if cfg.WelcomeText != "привет" {
		t.Fatalf("неожиданный WELCOME_TEXT: %q", cfg.WelcomeText)
	}
}

func TestLoadFromMissingDotEnv(t *testing.T) {
	t.Setenv("TG_BOT_TOKEN", "123:abc")
	t.Setenv("ADMIN_USER_ID", "999")
	if _, err := LoadFrom(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Fatalf("отсутствующий файл не ошибка: %v", err)
	}
}
