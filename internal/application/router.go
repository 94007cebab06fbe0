package application

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"telegram-subscription-gate/internal/config"
	"telegram-subscription-gate/internal/domain"
	"telegram-subscription-gate/internal/domain/model"
	"telegram-subscription-gate/internal/domain/ports/adapter"
	"telegram-subscription-gate/internal/infra/i18n"
	"telegram-subscription-gate/internal/infra/logging"
	"telegram-subscription-gate/internal/infra/metrics"
	"telegram-subscription-gate/internal/usecase"
)

// Route names the handler an event was dispatched to.
type Route string

const (
	RouteStart   Route = "start"
	RouteRecheck Route = "check_sub"
	RouteActionA Route = "action_a"
	RouteActionB Route = "action_b"
	RouteAdmin   Route = "admin"
	RouteIgnored Route = "ignored"
)

// CallbackRecheck is the callback data of the "check again" button.
const CallbackRecheck = "check_sub"

type handler func(ctx context.Context, ev *model.Event) error

type route struct {
	name Route
	fn   handler
}

// Router maps inbound events to handlers through fixed dispatch tables.
type Router struct {
	bot   adapter.TelegramBotAdapter
	users usecase.UserUseCase
	stats usecase.StatsUseCase
	gate  usecase.AccessGate
	tr    *i18n.Translator
	cfg   *config.Config
	log   *zerolog.Logger

	commands  map[string]route
	labels    map[string]route
	callbacks map[string]route
}

func NewRouter(
	bot adapter.TelegramBotAdapter,
	users usecase.UserUseCase,
	stats usecase.StatsUseCase,
	gate usecase.AccessGate,
	tr *i18n.Translator,
	cfg *config.Config,
	logger *zerolog.Logger,
) *Router {
	r := &Router{
		bot:   bot,
		users: users,
		stats: stats,
		gate:  gate,
		tr:    tr,
		cfg:   cfg,
		log:   logger,
	}
	r.commands = map[string]route{
		"start": {RouteStart, r.handleStart},
		"admin": {RouteAdmin, r.adminOnly(r.handleAdmin)},
	}
	r.labels = map[string]route{
		cfg.Actions.A.Label: {RouteActionA, r.actionHandler(model.CounterA, cfg.Actions.A)},
		cfg.Actions.B.Label: {RouteActionB, r.actionHandler(model.CounterB, cfg.Actions.B)},
	}
	r.callbacks = map[string]route{
		CallbackRecheck: {RouteRecheck, r.handleRecheck},
	}
	return r
}

func (r *Router) lookup(ev *model.Event) (route, bool) {
	if ev == nil || ev.UserID == 0 {
		return route{}, false
	}
	if ev.IsCallback() {
		rt, ok := r.callbacks[ev.CallbackData]
		return rt, ok
	}
	if ev.Command != "" {
		rt, ok := r.commands[ev.Command]
		return rt, ok
	}
	rt, ok := r.labels[ev.Text]
	return rt, ok
}

// Resolve reports which route Handle would take for ev.
func (r *Router) Resolve(ev *model.Event) (Route, bool) {
	rt, ok := r.lookup(ev)
	if !ok {
		return RouteIgnored, false
	}
	return rt.name, true
}

// Handle registers the sender and runs the matching handler.
// Unknown input is ignored without a reply.
func (r *Router) Handle(ctx context.Context, ev *model.Event) error {
	defer logging.TraceDuration(r.log, "Router.Handle")()

	rt, ok := r.lookup(ev)
	if !ok {
		metrics.IncTelegramUpdate(string(RouteIgnored))
		r.log.Debug().Msg("update ignored")
		return nil
	}
	metrics.IncTelegramUpdate(string(rt.name))

	ctx = logging.WithTgID(ctx, ev.UserID)
	log := logging.With(ctx, r.log)
	log.Debug().Str("route", string(rt.name)).Msg("routing update")

	if _, err := r.users.Register(ctx, ev.UserID); err != nil {
		r.replyError(ctx, ev)
		return fmt.Errorf("route %s: register: %w", rt.name, err)
	}
	if err := rt.fn(ctx, ev); err != nil {
		return fmt.Errorf("route %s: %w", rt.name, err)
	}
	return nil
}

func (r *Router) replyError(ctx context.Context, ev *model.Event) {
	var err error
	if ev.IsCallback() {
		err = r.bot.AnswerCallback(ctx, ev.CallbackID, r.tr.T("error_generic"), true)
	} else {
		err = r.bot.SendMessage(ctx, ev.ChatID, r.tr.T("error_generic"))
	}
	if err != nil {
		logging.With(ctx, r.log).Warn().Err(err).Msg("failed to deliver error reply")
	}
}

// handleStart shows the main menu to subscribers and the subscribe prompt to everyone else.
func (r *Router) handleStart(ctx context.Context, ev *model.Event) error {
	if r.gate.Allow(ctx, ev.UserID) {
		return r.sendMenu(ctx, ev.ChatID, r.tr.T("welcome_menu"))
	}
	return r.sendSubscribePrompt(ctx, ev.ChatID)
}

func (r *Router) handleRecheck(ctx context.Context, ev *model.Event) error {
	if !r.gate.Allow(ctx, ev.UserID) {
		return r.bot.AnswerCallback(ctx, ev.CallbackID, r.tr.T("not_subscribed_alert"), true)
	}

	if err := r.bot.AnswerCallback(ctx, ev.CallbackID, r.tr.T("recheck_thanks"), false); err != nil {
		return err
	}
	if err := r.sendMenu(ctx, ev.ChatID, r.tr.T("menu_prompt")); err != nil {
		return err
	}
	if ev.MessageID != 0 {
		if err := r.bot.DeleteMessage(ctx, ev.ChatID, ev.MessageID); err != nil {
			logging.With(ctx, r.log).Warn().Err(err).Int("message_id", ev.MessageID).Msg("could not delete subscribe prompt")
		}
	}
	return nil
}

func (r *Router) actionHandler(c model.Counter, action config.ActionConfig) handler {
	return func(ctx context.Context, ev *model.Event) error {
		if !r.gate.Allow(ctx, ev.UserID) {
			if err := r.bot.RemoveKeyboard(ctx, ev.ChatID, r.tr.T("subscribe_first")); err != nil {
				return err
			}
			return r.handleStart(ctx, ev)
		}

		if _, err := r.users.RecordClick(ctx, ev.UserID, c); err != nil {
			r.replyError(ctx, ev)
			return err
		}
		return r.bot.SendMessage(ctx, ev.ChatID, r.tr.T("action_link", action.Label, action.URL))
	}
}

func (r *Router) adminOnly(next handler) handler {
	return func(ctx context.Context, ev *model.Event) error {
		if !r.cfg.IsAdmin(ev.UserID) {
			metrics.IncAdminCommand("/"+ev.Command, "unauthorized")
			logging.With(ctx, r.log).Info().Err(domain.ErrUnauthorized).Str("command", ev.Command).Msg("admin command denied")
			return r.bot.SendMessage(ctx, ev.ChatID, r.tr.T("not_admin"))
		}
		metrics.IncAdminCommand("/"+ev.Command, "authorized")
		return next(ctx, ev)
	}
}

func (r *Router) handleAdmin(ctx context.Context, ev *model.Event) error {
	snap, err := r.stats.Snapshot(ctx)
	if err != nil {
		r.replyError(ctx, ev)
		return err
	}
	text := r.tr.T("admin_report",
		snap.TotalUsers,
		tgbotapi.EscapeText(tgbotapi.ModeMarkdown, r.cfg.Actions.A.Label), snap.TotalA,
		tgbotapi.EscapeText(tgbotapi.ModeMarkdown, r.cfg.Actions.B.Label), snap.TotalB,
	)
	return r.bot.SendMarkdown(ctx, ev.ChatID, text)
}

func (r *Router) sendMenu(ctx context.Context, chatID int64, text string) error {
	rows := [][]string{{r.cfg.Actions.A.Label, r.cfg.Actions.B.Label}}
	return r.bot.SendKeyboard(ctx, chatID, text, rows)
}

func (r *Router) sendSubscribePrompt(ctx context.Context, chatID int64) error {
	var rows [][]adapter.InlineButton
	if r.cfg.Bot.ChannelURL != "" {
		rows = append(rows, []adapter.InlineButton{{Text: r.tr.T("button_subscribe"), URL: r.cfg.Bot.ChannelURL}})
	}
	rows = append(rows, []adapter.InlineButton{{Text: r.tr.T("button_recheck"), Data: CallbackRecheck}})
	return r.bot.SendButtons(ctx, chatID, r.tr.T("subscribe_prompt"), rows)
}
