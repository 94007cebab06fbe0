package httpapi

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"telegram-subscription-gate/internal/domain"
	"telegram-subscription-gate/internal/domain/model"
	"telegram-subscription-gate/internal/domain/ports/repository"
	"telegram-subscription-gate/internal/infra/adapters/telegram"
	"telegram-subscription-gate/internal/infra/logging"
	"telegram-subscription-gate/internal/infra/metrics"
	"telegram-subscription-gate/internal/infra/worker"
)

// Telegram updates are small; anything bigger is not an update.
const maxUpdateBytes = 1 << 20

// EventHandler consumes one inbound event.
type EventHandler interface {
	Handle(ctx context.Context, ev *model.Event) error
}

// TaskRunner schedules update handling. *worker.Pool satisfies it.
type TaskRunner interface {
	Submit(task worker.Task) error
	Run(ctx context.Context, id int, task worker.Task)
}

type Options struct {
	Addr   string
	Secret string // webhook path token

	Router EventHandler
	Runner TaskRunner
	Dedup  repository.UpdateDeduper // nil disables the redelivery guard

	// Admin, when set, is mounted under /api/v1.
	Admin        http.Handler
	AdminTimeout time.Duration
}

// Server is the webhook ingress plus health and metrics endpoints.
type Server struct {
	opts Options
	log  *zerolog.Logger
	srv  *http.Server
}

func NewServer(opts Options, logger *zerolog.Logger) *Server {
	if opts.AdminTimeout <= 0 {
		opts.AdminTimeout = 10 * time.Second
	}
	s := &Server{opts: opts, log: logger}
	s.srv = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler builds the chi route tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(
		Recover(s.log),
		TraceID(),
		RequestLog(s.log),
	)

	r.Post("/webhook/{token}", s.handleWebhook)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())
	if s.opts.Admin != nil {
		r.Mount("/api/v1", Chain(s.opts.Admin, Timeout(s.opts.AdminTimeout)))
	}
	return r
}

func (s *Server) Start() error {
	s.log.Info().Str("addr", s.opts.Addr).Msg("http server listening")
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	log := logging.With(r.Context(), s.log)

	token := chi.URLParam(r, "token")
	if subtle.ConstantTimeCompare([]byte(token), []byte(s.opts.Secret)) != 1 {
		log.Warn().Msg("webhook token mismatch")
		s.reply(w, http.StatusUnauthorized)
		return
	}

	up, err := decodeUpdate(r.Body)
	if err != nil {
		log.Warn().Err(err).Msg("malformed update")
		s.reply(w, http.StatusBadRequest)
		return
	}

	ev, ok := telegram.EventFromUpdate(up)
	if !ok {
		log.Debug().Int("update_id", up.UpdateID).Msg("update without message or callback dropped")
		s.reply(w, http.StatusOK)
		return
	}

	if s.opts.Dedup != nil {
		first, err := s.opts.Dedup.FirstSeen(r.Context(), up.UpdateID)
		switch {
		case err != nil:
			metrics.IncDedupLookup("error")
			log.Warn().Err(err).Int("update_id", up.UpdateID).Msg("dedup lookup failed; processing anyway")
		case !first:
			metrics.IncDedupLookup("duplicate")
			log.Info().Int("update_id", up.UpdateID).Msg("duplicate update dropped")
			s.reply(w, http.StatusOK)
			return
		default:
			metrics.IncDedupLookup("first")
			// a panic below becomes a 500; let the redelivery through
			defer func() {
				if rec := recover(); rec != nil {
					s.forget(up.UpdateID, log)
					panic(rec)
				}
			}()
		}
	}

	traceID := logging.TraceIDFrom(r.Context())
	task := func(ctx context.Context) error {
		return s.opts.Router.Handle(logging.WithTraceID(ctx, traceID), &ev)
	}
	if err := s.opts.Runner.Submit(task); err != nil {
		metrics.IncWorkerTask("inline")
		log.Warn().Err(err).Msg("worker pool unavailable; handling inline")
		s.opts.Runner.Run(context.WithoutCancel(r.Context()), -1, task)
	}

	s.reply(w, http.StatusOK)
}

func (s *Server) forget(updateID int, log *zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.opts.Dedup.Forget(ctx, updateID); err != nil {
		log.Warn().Err(err).Int("update_id", updateID).Msg("could not release dedup marker")
	}
}

func decodeUpdate(body io.Reader) (tgbotapi.Update, error) {
	var up tgbotapi.Update
	if err := json.NewDecoder(io.LimitReader(body, maxUpdateBytes)).Decode(&up); err != nil {
		return up, fmt.Errorf("%w: %v", domain.ErrMalformedRequest, err)
	}
	return up, nil
}

func (s *Server) reply(w http.ResponseWriter, status int) {
	metrics.IncWebhookRequest(status)
	w.WriteHeader(status)
}
