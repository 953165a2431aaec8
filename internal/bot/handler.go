// Package bot turns inbound chat messages into store mutations and reply
// text. It owns the command surface (/add, /remove, /list, /status, ...) and
// bridges free-form messages into the wizard while a session is open.
//
// Messages from one user must be handled in arrival order; the dispatcher
// consumes the adapter's update channel sequentially, so the wizard never
// sees two messages from the same user racing each other.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"remindbot/internal/remind"
	"remindbot/internal/store"
	"remindbot/internal/wizard"
	logx "remindbot/pkg/logx"
)

// Reply is a platform-neutral answer to one inbound message.
type Reply struct {
	Text    string
	Choices []string // one-tap answers to offer, if any
	// RemoveChoices clears a previously offered choice keyboard. Set on
	// every terminal reply so a stale keyboard never lingers.
	RemoveChoices bool
}

type Handler struct {
	log   logx.Logger
	store *store.Store
	wiz   *wizard.Manager
	loc   *time.Location
}

func NewHandler(st *store.Store, wiz *wizard.Manager, loc *time.Location, log logx.Logger) *Handler {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Handler{log: log, store: st, wiz: wiz, loc: loc}
}

const welcomeText = `Hi! I'm your reminder bot.

/add - create a reminder (recurring or one-off)
/remove - delete a reminder
/list - show your reminders
/status - show a short summary
/cancel - abandon the current conversation`

// HandleMessage processes one message from one user and returns the reply.
// user is the stable chat-platform user id rendered as a string.
func (h *Handler) HandleMessage(ctx context.Context, user, text string) Reply {
	text = strings.TrimSpace(text)

	cmd := commandWord(text)

	// Cancel wins over everything, including an open session.
	if cmd == "cancel" || text == "cancel" {
		if h.wiz.Cancel(user) {
			return Reply{Text: "Okay, cancelled. Nothing was saved.", RemoveChoices: true}
		}
		return Reply{Text: "Nothing to cancel.", RemoveChoices: true}
	}

	// A slash command interrupts an open session in favor of the command.
	if cmd != "" {
		if h.wiz.Active(user) && cmd != "status" {
			h.wiz.Cancel(user)
		}
		return h.handleCommand(ctx, user, cmd)
	}

	if res, ok := h.wiz.Handle(user, text); ok {
		return h.applyWizardResult(ctx, user, res)
	}

	return Reply{Text: "I didn't catch that. Send /help to see what I can do."}
}

func (h *Handler) handleCommand(ctx context.Context, user, cmd string) Reply {
	switch cmd {
	case "start", "help":
		return Reply{Text: welcomeText, RemoveChoices: true}

	case "add":
		res := h.wiz.StartAdd(user)
		return Reply{Text: res.Reply, Choices: res.Choices, RemoveChoices: len(res.Choices) == 0}

	case "remove":
		n := h.store.Count(user)
		if n == 0 {
			return Reply{Text: "You have no reminders to remove.", RemoveChoices: true}
		}
		res := h.wiz.StartRemove(user, n)
		return Reply{Text: h.renderList(user) + "\n" + res.Reply}

	case "list":
		if h.store.Count(user) == 0 {
			return Reply{Text: "You have no reminders yet. Send /add to create one."}
		}
		return Reply{Text: h.renderList(user)}

	case "status":
		return Reply{Text: h.renderStatus(user)}
	}

	return Reply{Text: "Unknown command. Send /help to see what I can do."}
}

func (h *Handler) applyWizardResult(ctx context.Context, user string, res wizard.Result) Reply {
	if res.Commit != nil {
		if err := h.store.Append(ctx, user, *res.Commit); err != nil {
			// The reminder is live in memory; only durability is at risk.
			h.log.Error("append not persisted", logx.String("user", user), logx.Err(err))
		}
		return Reply{Text: res.Reply, RemoveChoices: true}
	}

	if res.Remove > 0 {
		removed, err := h.store.Remove(ctx, user, res.Remove)
		if errors.Is(err, store.ErrIndexOutOfRange) {
			return Reply{Text: "That one is gone already. Send /list to see what's left.", RemoveChoices: true}
		}
		if err != nil {
			// The removal is live in memory; only durability is at risk.
			h.log.Error("removal not persisted", logx.String("user", user), logx.Int("index", res.Remove), logx.Err(err))
		}
		return Reply{Text: "🗑 Removed: " + removed.Task, RemoveChoices: true}
	}

	return Reply{Text: res.Reply, Choices: res.Choices, RemoveChoices: res.Done}
}

func (h *Handler) renderList(user string) string {
	rs := h.store.List(user)
	var b strings.Builder
	b.WriteString("Your reminders:\n")
	for i, r := range rs {
		fmt.Fprintf(&b, "%d. %s (%s)\n", i+1, r.Task, r.Describe())
	}
	return strings.TrimRight(b.String(), "\n")
}

func (h *Handler) renderStatus(user string) string {
	rs := h.store.List(user)
	pending := 0
	for _, r := range rs {
		if r.Kind == remind.KindOneOff && r.Sent {
			continue
		}
		pending++
	}
	s := fmt.Sprintf("You have %d reminder(s), %d active. Times are in %s.", len(rs), pending, h.loc.String())
	if step, ok := h.wiz.StepOf(user); ok {
		s += "\nA conversation is in progress (" + step.String() + "); send /cancel to abandon it."
	}
	return s
}

// commandWord extracts the command name from "/cmd" or "/cmd@botname".
// Returns "" for non-command text.
func commandWord(text string) string {
	if !strings.HasPrefix(text, "/") {
		return ""
	}
	word := strings.TrimPrefix(strings.Fields(text)[0], "/")
	if i := strings.IndexByte(word, '@'); i >= 0 {
		word = word[:i]
	}
	return strings.ToLower(word)
}
