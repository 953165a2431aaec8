package transport

import "context"

// Update is one inbound event from the chat platform. Only plain text
// messages drive this bot.
type Update struct {
	Message *Message
}

type Message struct {
	ID           int
	ChatID       int64
	FromID       int64
	FromUsername string
	Text         string
}

type ChatTarget struct {
	ChatID int64
}

type MessageRef struct {
	ChatID    int64
	MessageID int
}

// SendOptions carries platform-neutral rendering hints.
//
// Choices, when non-empty, asks the adapter to offer the given one-tap
// answers (Telegram: a one-time reply keyboard). RemoveChoices clears a
// previously offered set.
type SendOptions struct {
	DisablePreview bool
	Choices        []string
	RemoveChoices  bool
}

type Adapter interface {
	Start(ctx context.Context, out chan<- Update) error
	Stop(ctx context.Context) error

	SendText(ctx context.Context, to ChatTarget, text string, opt *SendOptions) (MessageRef, error)
}
