// File: cmd/app/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"telegram-subscription-gate/internal/application"
	"telegram-subscription-gate/internal/config"
	"telegram-subscription-gate/internal/domain/ports/repository"
	tele "telegram-subscription-gate/internal/infra/adapters/telegram"
	"telegram-subscription-gate/internal/infra/db"
	"telegram-subscription-gate/internal/infra/httpapi"
	"telegram-subscription-gate/internal/infra/i18n"
	"telegram-subscription-gate/internal/infra/logging"
	"telegram-subscription-gate/internal/infra/metrics"
	red "telegram-subscription-gate/internal/infra/redis"
	"telegram-subscription-gate/internal/infra/sched"
	"telegram-subscription-gate/internal/infra/web"
	"telegram-subscription-gate/internal/infra/worker"
	"telegram-subscription-gate/internal/usecase"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// ---- CLI flags ----
	cfgPath := pflag.String("config", "config.yaml", "path to YAML config file")
	devMode := pflag.Bool("dev", false, "developer mode: debug logs, console output, insecure cookies")
	pflag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatal().Err(err).Str("path", *cfgPath).Msg("config")
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	logger.Info().Str("version", version).Str("commit", commit).Bool("dev", cfg.Runtime.Dev).Msg("starting")

	for _, w := range cfg.Warnings() {
		logger.Warn().Msg(w)
	}

	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---- Store ----
	store, err := db.Open(ctx, cfg.Store)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.Store.Driver).Msg("store")
	}
	if err := store.EnsureSchema(ctx); err != nil {
		logger.Error().Err(err).Msg("ensure schema failed; continuing")
	}

	// ---- Redis (optional redelivery guard) ----
	var dedup repository.UpdateDeduper
	var redisCli red.RedisClient
	if cfg.Redis.URL != "" {
		cli, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Warn().Err(err).Msg("redis ping failed; dedup fails open until it recovers")
		}
		redisCli = cli
		dedup = red.NewUpdateDeduper(cli, cfg.Redis.TTL)
	}

	// ---- Telegram ----
	tr, err := i18n.NewTranslator(i18n.LocalesFS, cfg.Bot.Language)
	if err != nil {
		logger.Fatal().Err(err).Str("language", cfg.Bot.Language).Msg("i18n")
	}
	bot, err := tele.NewRealTelegramBotAdapter(cfg.Bot.Token, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("token", logging.Redact(cfg.Bot.Token, cfg.Runtime.Dev)).Msg("telegram")
	}

	// ---- Use cases ----
	userUC := usecase.NewUserUseCase(store, cfg.Webhook.TaskTimeout, logger)
	statsUC := usecase.NewStatsUseCase(store, logger)
	oracle := usecase.NewMembershipOracle(bot, cfg.Bot.Channel, cfg.Bot.MembershipTimeout, logger)
	gate := usecase.NewAccessGate(oracle)

	router := application.NewRouter(bot, userUC, statsUC, gate, tr, cfg, logger)

	// ---- Workers ----
	pool := worker.NewPool(cfg.Webhook.Workers, cfg.Webhook.TaskTimeout, logger)
	pool.Start(ctx)

	statsWorker := sched.NewStatsWorker(cfg.Metrics.PoolInterval, store, statsUC, logger)
	go func() { _ = statsWorker.Run(ctx) }()

	// ---- HTTP ----
	var admin http.Handler
	if cfg.AdminAPI.Secret != "" {
		auth := web.NewAuthManager(cfg.AdminAPI.Secret, !cfg.Runtime.Dev, "", cfg.AdminAPI.TokenTTL)
		admin = web.NewServer(statsUC, userUC, cfg.AdminAPI.APIKey, auth, logger).Routes()
		logger.Info().Msg("admin api enabled at /api/v1")
	}

	srv := httpapi.NewServer(httpapi.Options{
		Addr:   cfg.ListenAddr(),
		Secret: cfg.Webhook.Secret,
		Router: router,
		Runner: pool,
		Dedup:  dedup,
		Admin:  admin,
	}, logger)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	if err := bot.SetWebhook(ctx, cfg.WebhookURL(), *cfg.Webhook.DropPending); err != nil {
		logger.Error().Err(err).Msg("setWebhook failed; updates will not arrive until it is registered")
	} else {
		logger.Info().Str("host", cfg.Webhook.Host).Bool("drop_pending", *cfg.Webhook.DropPending).Msg("webhook registered")
	}

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}

	// ---- Shutdown ----
	shCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	if err := bot.DeleteWebhook(shCtx); err != nil {
		logger.Warn().Err(err).Msg("deleteWebhook failed")
	}
	pool.Stop()
	store.Close()
	if redisCli != nil {
		if err := redisCli.Close(); err != nil {
			logger.Warn().Err(err).Msg("redis close")
		}
	}
	logger.Info().Msg("stopped")
}
