// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"telegram-subscription-gate/internal/domain"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type BotConfig struct {
	Token    string  `yaml:"token"`
	AdminIDs []int64 `yaml:"admin_ids"`
	// Channel is the required group: "@username" or a numeric chat id.
	Channel           string        `yaml:"channel"`
	ChannelURL        string        `yaml:"channel_url"`
	Language          string        `yaml:"language"`
	MembershipTimeout time.Duration `yaml:"membership_timeout"`
}

type WebhookConfig struct {
	Host        string        `yaml:"host"`   // public base URL, e.g. https://bot.example.com
	Secret      string        `yaml:"secret"` // path token; defaults to the bot token
	ListenHost  string        `yaml:"listen_host"`
	Port        int           `yaml:"port"`
	Workers     int           `yaml:"workers"`
	TaskTimeout time.Duration `yaml:"task_timeout"`
	DropPending *bool         `yaml:"drop_pending"`
}

type ActionConfig struct {
	Label string `yaml:"label"`
	URL   string `yaml:"url"`
}

type ActionsConfig struct {
	A ActionConfig `yaml:"a"`
	B ActionConfig `yaml:"b"`
}

type StoreConfig struct {
	Driver   string `yaml:"driver"` // sqlite | postgres
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"max_conns"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type AdminAPIConfig struct {
	Secret   string        `yaml:"secret"`  // HMAC secret for admin JWTs; empty disables the API
	APIKey   string        `yaml:"api_key"` // exchanged for a JWT at /api/v1/login
	TokenTTL time.Duration `yaml:"token_ttl"`
}

type MetricsConfig struct {
	PoolInterval time.Duration `yaml:"pool_interval"`
}

type Config struct {
	Bot      BotConfig      `yaml:"bot"`
	Webhook  WebhookConfig  `yaml:"webhook"`
	Actions  ActionsConfig  `yaml:"actions"`
	Store    StoreConfig    `yaml:"store"`
	Log      LogConfig      `yaml:"log"`
	Redis    RedisConfig    `yaml:"redis"`
	AdminAPI AdminAPIConfig `yaml:"admin_api"`
	Metrics  MetricsConfig  `yaml:"metrics"`

	Runtime RuntimeConfig `yaml:"-"`
}

// WebhookPath is the secret-bearing path the ingress listens on.
func (c *Config) WebhookPath() string {
	return "/webhook/" + c.Webhook.Secret
}

// WebhookURL is the absolute URL registered with Telegram.
func (c *Config) WebhookURL() string {
	return strings.TrimRight(c.Webhook.Host, "/") + c.WebhookPath()
}

func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Webhook.ListenHost, c.Webhook.Port)
}

func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.Bot.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// Warnings lists settings that are valid but leave a feature unusable.
func (c *Config) Warnings() []string {
	var w []string
	if len(c.Bot.AdminIDs) == 0 {
		w = append(w, "bot.admin_ids is empty; /admin is unreachable")
	}
	if c.Bot.ChannelURL == "" {
		w = append(w, "bot.channel_url is empty; the subscribe prompt has no channel link")
	}
	return w
}

// LoadConfig reads the YAML file at path, applies environment overrides and
// defaults, and validates required fields. A missing file is tolerated so the
// service can be configured from the environment alone.
func LoadConfig(path string, dev bool) (*Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	applyEnv(&cfg, os.Getenv)
	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func applyEnv(cfg *Config, getenv func(string) string) {
	if v := getenv("BOT_TOKEN"); v != "" {
		cfg.Bot.Token = v
	}
	if v := getenv("WEBHOOK_HOST"); v != "" {
		cfg.Webhook.Host = v
	}
	if v := getenv("DATABASE_URL"); v != "" {
		cfg.Store.DSN = v
	}
	if v := getenv("REDIS_URL"); v != "" {
		cfg.Redis.URL = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Bot.Language == "" {
		cfg.Bot.Language = "uz"
	}
	if cfg.Bot.MembershipTimeout <= 0 {
		cfg.Bot.MembershipTimeout = 5 * time.Second
	}
	if cfg.Bot.ChannelURL == "" && strings.HasPrefix(cfg.Bot.Channel, "@") {
		cfg.Bot.ChannelURL = "https://t.me/" + strings.TrimPrefix(cfg.Bot.Channel, "@")
	}

	if cfg.Webhook.Secret == "" {
		cfg.Webhook.Secret = cfg.Bot.Token
	}
	if cfg.Webhook.ListenHost == "" {
		cfg.Webhook.ListenHost = "0.0.0.0"
	}
	if cfg.Webhook.Port == 0 {
		cfg.Webhook.Port = 8000
	}
	if cfg.Webhook.Workers <= 0 {
		cfg.Webhook.Workers = 8
	}
	if cfg.Webhook.TaskTimeout <= 0 {
		cfg.Webhook.TaskTimeout = 30 * time.Second
	}
	if cfg.Webhook.DropPending == nil {
		drop := true
		cfg.Webhook.DropPending = &drop
	}

	if cfg.Actions.A.Label == "" {
		cfg.Actions.A.Label = "HDP LC"
	}
	if cfg.Actions.A.URL == "" {
		cfg.Actions.A.URL = "https://forms.gle/f6ZiQtiqCAH1CLy87"
	}
	if cfg.Actions.B.Label == "" {
		cfg.Actions.B.Label = "Omon School"
	}
	if cfg.Actions.B.URL == "" {
		cfg.Actions.B.URL = "https://forms.gle/97m9hCsBFovYKKrX7"
	}

	cfg.Store.Driver = strings.ToLower(strings.TrimSpace(cfg.Store.Driver))
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = "sqlite"
	}
	if cfg.Store.DSN == "" && cfg.Store.Driver == "sqlite" {
		cfg.Store.DSN = "bot_database.db"
	}
	if cfg.Store.MaxConns <= 0 {
		cfg.Store.MaxConns = 10
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	cfg.Redis.TTL = normalizeTTL(cfg.Redis.TTL)
	if cfg.AdminAPI.TokenTTL <= 0 {
		cfg.AdminAPI.TokenTTL = 30 * time.Minute
	}
	if cfg.Metrics.PoolInterval <= 0 {
		cfg.Metrics.PoolInterval = 15 * time.Second
	}
}

func validate(cfg *Config) error {
	if cfg.Bot.Token == "" {
		return fmt.Errorf("%w: bot.token (or BOT_TOKEN)", domain.ErrConfigMissing)
	}
	if cfg.Webhook.Host == "" {
		return fmt.Errorf("%w: webhook.host (or WEBHOOK_HOST)", domain.ErrConfigMissing)
	}
	if cfg.Bot.Channel == "" {
		return fmt.Errorf("%w: bot.channel", domain.ErrConfigMissing)
	}
	switch cfg.Store.Driver {
	case "sqlite":
	case "postgres":
		if cfg.Store.DSN == "" {
			return fmt.Errorf("%w: store.dsn (or DATABASE_URL)", domain.ErrConfigMissing)
		}
	default:
		return fmt.Errorf("%w: unknown store.driver %q", domain.ErrInvalidArgument, cfg.Store.Driver)
	}
	// labels double as reply-keyboard texts and must route unambiguously
	if cfg.Actions.A.Label == cfg.Actions.B.Label {
		return fmt.Errorf("%w: actions.a.label and actions.b.label must differ", domain.ErrInvalidArgument)
	}
	if cfg.AdminAPI.Secret != "" && cfg.AdminAPI.APIKey == "" {
		return fmt.Errorf("%w: admin_api.api_key is required when admin_api.secret is set", domain.ErrConfigMissing)
	}
	return nil
}

func normalizeTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return 24 * time.Hour
	}
	return d
}
