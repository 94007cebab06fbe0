// File: internal/domain/ports/adapter/telegram.go
package adapter

import "context"

type InlineButton struct {
	Text string
	Data string
	URL  string
}

// TelegramBotAdapter is the outbound message capability used by the router.
type TelegramBotAdapter interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	SendMarkdown(ctx context.Context, chatID int64, text string) error
	SendButtons(ctx context.Context, chatID int64, text string, rows [][]InlineButton) error
	// SendKeyboard shows a persistent reply keyboard whose buttons send their label as text.
	SendKeyboard(ctx context.Context, chatID int64, text string, rows [][]string) error
	RemoveKeyboard(ctx context.Context, chatID int64, text string) error
	AnswerCallback(ctx context.Context, callbackID, text string, alert bool) error
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
}

// MembershipLookup asks the platform for a user's status inside a chat.
// group is either a numeric chat id or an @username.
type MembershipLookup interface {
	GetChatMemberStatus(ctx context.Context, group string, userID int64) (string, error)
}

type WebhookRegistrar interface {
	SetWebhook(ctx context.Context, url string, dropPending bool) error
	DeleteWebhook(ctx context.Context) error
}
