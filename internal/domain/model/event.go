package model

// EventKind distinguishes plain messages from inline button presses.
type EventKind int

const (
	EventMessage EventKind = iota + 1
	EventCallback
)

// Event is a transport-neutral view of one inbound update.
type Event struct {
	UpdateID int
	Kind     EventKind
	UserID   int64
	ChatID   int64

	// Message fields. Command is the bot command without the leading slash.
	Text    string
	Command string

	// Callback fields. MessageID is the message the pressed button belongs to.
	CallbackID   string
	CallbackData string
	MessageID    int
}

func (e *Event) IsCallback() bool { return e != nil && e.Kind == EventCallback }
