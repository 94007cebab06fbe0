//go:build !integration

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"telegram-subscription-gate/internal/domain"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		t.Setenv("BOT_TOKEN", "")
		t.Setenv("WEBHOOK_HOST", "")
		t.Setenv("DATABASE_URL", "")
		path := writeConfig(t, `
bot:
  token: "123:abc"
  channel: "@Xorazm_ish_bozor1"
  admin_ids: [7858117466]
webhook:
  host: "https://bot.example.com/"
`)
		cfg, err := LoadConfig(path, false)
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}
		if cfg.Webhook.Port != 8000 || cfg.Webhook.ListenHost != "0.0.0.0" {
			t.Errorf("unexpected listen address %s", cfg.ListenAddr())
		}
		if cfg.WebhookURL() != "https://bot.example.com/webhook/123:abc" {
			t.Errorf("unexpected webhook url %q", cfg.WebhookURL())
		}
		if cfg.Bot.ChannelURL != "https://t.me/Xorazm_ish_bozor1" {
			t.Errorf("unexpected channel url %q", cfg.Bot.ChannelURL)
		}
		if cfg.Store.Driver != "sqlite" || cfg.Store.DSN != "bot_database.db" {
			t.Errorf("unexpected store defaults %+v", cfg.Store)
		}
		if cfg.Actions.A.Label != "HDP LC" || cfg.Actions.B.Label != "Omon School" {
			t.Errorf("unexpected action labels %+v", cfg.Actions)
		}
		if cfg.Bot.MembershipTimeout != 5*time.Second {
			t.Errorf("unexpected membership timeout %v", cfg.Bot.MembershipTimeout)
		}
		if !*cfg.Webhook.DropPending {
			t.Errorf("expected drop_pending to default to true")
		}
		if !cfg.IsAdmin(7858117466) || cfg.IsAdmin(42) {
			t.Errorf("admin check mismatch")
		}
	})

	t.Run("environment overrides the file", func(t *testing.T) {
		t.Setenv("BOT_TOKEN", "env-token")
		t.Setenv("WEBHOOK_HOST", "https://env.example.com")
		path := writeConfig(t, `
bot:
  token: "file-token"
  channel: "-1001234"
webhook:
  host: "https://file.example.com"
  secret: "s3cret"
`)
		cfg, err := LoadConfig(path, true)
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}
		if cfg.Bot.Token != "env-token" {
			t.Errorf("expected env token, got %q", cfg.Bot.Token)
		}
		if cfg.WebhookURL() != "https://env.example.com/webhook/s3cret" {
			t.Errorf("unexpected webhook url %q", cfg.WebhookURL())
		}
		if !cfg.Runtime.Dev {
			t.Errorf("expected dev mode")
		}
	})

	t.Run("missing token is ErrConfigMissing", func(t *testing.T) {
		t.Setenv("BOT_TOKEN", "")
		t.Setenv("WEBHOOK_HOST", "")
		path := writeConfig(t, `
bot:
  channel: "@chan"
webhook:
  host: "https://bot.example.com"
`)
		_, err := LoadConfig(path, false)
		if !errors.Is(err, domain.ErrConfigMissing) {
			t.Fatalf("expected ErrConfigMissing, got %v", err)
		}
	})

	t.Run("missing webhook host is ErrConfigMissing", func(t *testing.T) {
		t.Setenv("BOT_TOKEN", "")
		t.Setenv("WEBHOOK_HOST", "")
		path := writeConfig(t, `
bot:
  token: "123:abc"
  channel: "@chan"
`)
		_, err := LoadConfig(path, false)
		if !errors.Is(err, domain.ErrConfigMissing) {
			t.Fatalf("expected ErrConfigMissing, got %v", err)
		}
	})

	t.Run("missing file falls back to the environment", func(t *testing.T) {
		t.Setenv("BOT_TOKEN", "env-token")
		t.Setenv("WEBHOOK_HOST", "https://env.example.com")
		_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"), false)
		// bot.channel cannot come from the environment
		if !errors.Is(err, domain.ErrConfigMissing) {
			t.Fatalf("expected ErrConfigMissing for channel, got %v", err)
		}
	})

	t.Run("postgres requires a dsn", func(t *testing.T) {
		t.Setenv("BOT_TOKEN", "")
		t.Setenv("WEBHOOK_HOST", "")
		t.Setenv("DATABASE_URL", "")
		path := writeConfig(t, `
bot:
  token: "123:abc"
  channel: "@chan"
webhook:
  host: "https://bot.example.com"
store:
  driver: postgres
`)
		_, err := LoadConfig(path, false)
		if !errors.Is(err, domain.ErrConfigMissing) {
			t.Fatalf("expected ErrConfigMissing, got %v", err)
		}
	})

	t.Run("identical action labels are rejected", func(t *testing.T) {
		t.Setenv("BOT_TOKEN", "")
		t.Setenv("WEBHOOK_HOST", "")
		path := writeConfig(t, `
bot:
  token: "123:abc"
  channel: "@chan"
webhook:
  host: "https://bot.example.com"
actions:
  a: {label: "Same"}
  b: {label: "Same"}
`)
		_, err := LoadConfig(path, false)
		if !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestWarnings(t *testing.T) {
	cfg := &Config{Bot: BotConfig{AdminIDs: []int64{1}, ChannelURL: "https://t.me/chan"}}
	if w := cfg.Warnings(); len(w) != 0 {
		t.Errorf("expected no warnings, got %v", w)
	}

	cfg = &Config{Bot: BotConfig{ChannelURL: "https://t.me/chan"}}
	w := cfg.Warnings()
	if len(w) != 1 || !strings.Contains(w[0], "admin_ids") {
		t.Errorf("expected an admin_ids warning, got %v", w)
	}

	cfg = &Config{}
	if w := cfg.Warnings(); len(w) != 2 {
		t.Errorf("expected two warnings, got %v", w)
	}
}
