package telegram

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"telegram-subscription-gate/internal/domain"
	"telegram-subscription-gate/internal/domain/ports/adapter"
)

// Compile-time checks
var (
	_ adapter.TelegramBotAdapter = (*RealTelegramBotAdapter)(nil)
	_ adapter.MembershipLookup   = (*RealTelegramBotAdapter)(nil)
	_ adapter.WebhookRegistrar   = (*RealTelegramBotAdapter)(nil)
)

const defaultHTTPTimeout = 30 * time.Second

// RealTelegramBotAdapter talks to the Bot API through tgbotapi.
// Updates arrive through the webhook ingress, so it never polls.
type RealTelegramBotAdapter struct {
	bot *tgbotapi.BotAPI
	log *zerolog.Logger
}

func NewRealTelegramBotAdapter(token string, logger *zerolog.Logger) (*RealTelegramBotAdapter, error) {
	return newRealTelegramBotAdapter(token, tgbotapi.APIEndpoint, &http.Client{Timeout: defaultHTTPTimeout}, logger)
}

func newRealTelegramBotAdapter(token, endpoint string, client tgbotapi.HTTPClient, logger *zerolog.Logger) (*RealTelegramBotAdapter, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: bot token", domain.ErrConfigMissing)
	}
	bot, err := tgbotapi.NewBotAPIWithClient(token, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("telegram getMe: %w", err)
	}
	logger.Info().Str("username", bot.Self.UserName).Msg("telegram bot authorized")
	return &RealTelegramBotAdapter{bot: bot, log: logger}, nil
}

func (r *RealTelegramBotAdapter) SendMessage(ctx context.Context, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	_, err := r.bot.Send(msg)
	return err
}

func (r *RealTelegramBotAdapter) SendMarkdown(ctx context.Context, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	_, err := r.bot.Send(msg)
	return err
}

// SendButtons sends a message with an inline keyboard. A button with a URL
// opens the link; otherwise its Data (or label) is sent back as callback data.
func (r *RealTelegramBotAdapter) SendButtons(ctx context.Context, chatID int64, text string, rows [][]adapter.InlineButton) error {
	kbRows := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		kr := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			label := strings.TrimSpace(btn.Text)
			if label == "" {
				continue
			}
			switch {
			case btn.URL != "":
				kr = append(kr, tgbotapi.NewInlineKeyboardButtonURL(label, btn.URL))
			case btn.Data != "":
				kr = append(kr, tgbotapi.NewInlineKeyboardButtonData(label, btn.Data))
			default:
				kr = append(kr, tgbotapi.NewInlineKeyboardButtonData(label, label))
			}
		}
		if len(kr) > 0 {
			kbRows = append(kbRows, kr)
		}
	}

	msg := tgbotapi.NewMessage(chatID, text)
	if len(kbRows) > 0 {
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(kbRows...)
	}
	_, err := r.bot.Send(msg)
	return err
}

func (r *RealTelegramBotAdapter) SendKeyboard(ctx context.Context, chatID int64, text string, rows [][]string) error {
	kbRows := make([][]tgbotapi.KeyboardButton, 0, len(rows))
	for _, row := range rows {
		kr := make([]tgbotapi.KeyboardButton, 0, len(row))
		for _, label := range row {
			kr = append(kr, tgbotapi.NewKeyboardButton(label))
		}
		if len(kr) > 0 {
			kbRows = append(kbRows, tgbotapi.NewKeyboardButtonRow(kr...))
		}
	}
	kb := tgbotapi.NewReplyKeyboard(kbRows...)
	kb.ResizeKeyboard = true

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = kb
	_, err := r.bot.Send(msg)
	return err
}

func (r *RealTelegramBotAdapter) RemoveKeyboard(ctx context.Context, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	_, err := r.bot.Send(msg)
	return err
}

func (r *RealTelegramBotAdapter) AnswerCallback(ctx context.Context, callbackID, text string, alert bool) error {
	cb := tgbotapi.NewCallback(callbackID, text)
	if alert {
		cb = tgbotapi.NewCallbackWithAlert(callbackID, text)
	}
	_, err := r.bot.Request(cb)
	return err
}

func (r *RealTelegramBotAdapter) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	_, err := r.bot.Request(tgbotapi.NewDeleteMessage(chatID, messageID))
	return err
}

// GetChatMemberStatus returns the raw Telegram status of userID in group.
// tgbotapi has no context support, so the call is abandoned when ctx ends.
func (r *RealTelegramBotAdapter) GetChatMemberStatus(ctx context.Context, group string, userID int64) (string, error) {
	chat, err := parseChat(group)
	if err != nil {
		return "", err
	}
	chat.UserID = userID

	type result struct {
		status string
		err    error
	}
	ch := make(chan result, 1)
	go func() {
		m, err := r.bot.GetChatMember(tgbotapi.GetChatMemberConfig{ChatConfigWithUser: chat})
		ch <- result{status: m.Status, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %w", domain.ErrOracleUnavailable, ctx.Err())
	case res := <-ch:
		if res.err != nil {
			return "", fmt.Errorf("%w: %w", domain.ErrOracleUnavailable, res.err)
		}
		return res.status, nil
	}
}

func (r *RealTelegramBotAdapter) SetWebhook(ctx context.Context, url string, dropPending bool) error {
	wh, err := tgbotapi.NewWebhook(url)
	if err != nil {
		return fmt.Errorf("%w: webhook url: %w", domain.ErrInvalidArgument, err)
	}
	wh.DropPendingUpdates = dropPending
	if _, err := r.bot.Request(wh); err != nil {
		return fmt.Errorf("setWebhook: %w", err)
	}
	return nil
}

func (r *RealTelegramBotAdapter) DeleteWebhook(ctx context.Context) error {
	if _, err := r.bot.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		return fmt.Errorf("deleteWebhook: %w", err)
	}
	return nil
}

// parseChat accepts "@username" or a numeric chat id such as "-100123".
func parseChat(group string) (tgbotapi.ChatConfigWithUser, error) {
	g := strings.TrimSpace(group)
	if g == "" {
		return tgbotapi.ChatConfigWithUser{}, fmt.Errorf("%w: empty group", domain.ErrInvalidArgument)
	}
	if strings.HasPrefix(g, "@") {
		return tgbotapi.ChatConfigWithUser{SuperGroupUsername: g}, nil
	}
	id, err := strconv.ParseInt(g, 10, 64)
	if err != nil {
		return tgbotapi.ChatConfigWithUser{SuperGroupUsername: "@" + g}, nil
	}
	return tgbotapi.ChatConfigWithUser{ChatID: id}, nil
}
