package telegram

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"telegram-subscription-gate/internal/domain/model"
)

// EventFromUpdate extracts the routing-relevant fields of an update.
// ok is false for updates carrying neither a message nor a callback query.
func EventFromUpdate(up tgbotapi.Update) (model.Event, bool) {
	switch {
	case up.CallbackQuery != nil:
		q := up.CallbackQuery
		if q.From == nil {
			return model.Event{}, false
		}
		ev := model.Event{
			UpdateID:     up.UpdateID,
			Kind:         model.EventCallback,
			UserID:       q.From.ID,
			ChatID:       q.From.ID,
			CallbackID:   q.ID,
			CallbackData: q.Data,
		}
		if q.Message != nil {
			ev.MessageID = q.Message.MessageID
			if q.Message.Chat != nil {
				ev.ChatID = q.Message.Chat.ID
			}
		}
		return ev, true

	case up.Message != nil:
		m := up.Message
		if m.From == nil || m.Chat == nil {
			return model.Event{}, false
		}
		return model.Event{
			UpdateID:  up.UpdateID,
			Kind:      model.EventMessage,
			UserID:    m.From.ID,
			ChatID:    m.Chat.ID,
			Text:      m.Text,
			Command:   commandOf(m),
			MessageID: m.MessageID,
		}, true
	}
	return model.Event{}, false
}

// commandOf prefers the bot_command entity and falls back to a leading slash
// for clients that omit entities.
func commandOf(m *tgbotapi.Message) string {
	if m.IsCommand() {
		return m.Command()
	}
	text := strings.TrimSpace(m.Text)
	if !strings.HasPrefix(text, "/") {
		return ""
	}
	cmd := strings.Fields(text)[0][1:]
	if i := strings.Index(cmd, "@"); i != -1 {
		cmd = cmd[:i]
	}
	return cmd
}
