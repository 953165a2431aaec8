package bot

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jmhodges/clock"

	"remindbot/internal/remind"
	"remindbot/internal/store"
	"remindbot/internal/wizard"
	logx "remindbot/pkg/logx"
)

type memBackend struct {
	set     remind.UserReminderSet
	saveErr error
}

func (m *memBackend) Load(ctx context.Context) (remind.UserReminderSet, error) { return m.set, nil }
func (m *memBackend) Save(ctx context.Context, set remind.UserReminderSet) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.set = set.Clone()
	return nil
}
func (m *memBackend) Close() error { return nil }

func newHandler(t *testing.T) (*Handler, *store.Store) {
	t.Helper()
	st, err := store.Open(context.Background(), &memBackend{}, logx.Nop())
	if err != nil {
		t.Fatalf("store.Open error: %v", err)
	}
	clk := clock.NewFake()
	clk.Set(time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC))
	wiz := wizard.New(clk, time.UTC)
	return NewHandler(st, wiz, time.UTC, logx.Nop()), st
}

func say(t *testing.T, h *Handler, user, text string) Reply {
	t.Helper()
	return h.HandleMessage(context.Background(), user, text)
}

func TestWelcome(t *testing.T) {
	t.Parallel()
	h, _ := newHandler(t)
	for _, cmd := range []string{"/start", "/help", "/start@some_bot"} {
		rep := say(t, h, "1", cmd)
		if !strings.Contains(rep.Text, "/add") {
			t.Fatalf("%s reply does not list commands: %q", cmd, rep.Text)
		}
	}
}

func TestUnknownInput(t *testing.T) {
	t.Parallel()
	h, _ := newHandler(t)
	if rep := say(t, h, "1", "what"); !strings.Contains(rep.Text, "/help") {
		t.Fatalf("free text without session should point at /help, got %q", rep.Text)
	}
	if rep := say(t, h, "1", "/frobnicate"); !strings.Contains(rep.Text, "Unknown command") {
		t.Fatalf("unknown command reply: %q", rep.Text)
	}
}

func TestAddRecurringEndToEnd(t *testing.T) {
	t.Parallel()
	h, st := newHandler(t)

	say(t, h, "7", "/add")
	say(t, h, "7", "water the plants")
	rep := say(t, h, "7", "Daily")
	if !strings.Contains(rep.Text, "HH:MM") {
		t.Fatalf("expected time prompt, got %q", rep.Text)
	}
	say(t, h, "7", "09:00")
	say(t, h, "7", "Today")
	rep = say(t, h, "7", "Never")
	if !strings.Contains(rep.Text, "Saved") {
		t.Fatalf("expected commit confirmation, got %q", rep.Text)
	}
	if !rep.RemoveChoices {
		t.Fatal("terminal reply must clear the choice keyboard")
	}

	rs := st.List("7")
	if len(rs) != 1 || rs[0].Task != "water the plants" || rs[0].Frequency != remind.Daily {
		t.Fatalf("stored reminder = %+v", rs)
	}
	if rs[0].StartDate != (remind.Date{Year: 2026, Month: time.March, Day: 10}) {
		t.Fatalf("Today resolved to %v", rs[0].StartDate)
	}
}

func TestAddOneOffEndToEnd(t *testing.T) {
	t.Parallel()
	h, st := newHandler(t)

	say(t, h, "7", "/add")
	say(t, h, "7", "dentist")
	say(t, h, "7", "One-off")
	rep := say(t, h, "7", "2026-03-10 11:00")
	if !strings.Contains(rep.Text, "future") {
		t.Fatalf("past datetime should be rejected, got %q", rep.Text)
	}
	rep = say(t, h, "7", "2026-03-10 12:01")
	if !strings.Contains(rep.Text, "Saved") {
		t.Fatalf("expected commit confirmation, got %q", rep.Text)
	}
	if n := st.Count("7"); n != 1 {
		t.Fatalf("Count = %d, want 1", n)
	}
}

func TestRemoveFlow(t *testing.T) {
	t.Parallel()
	h, st := newHandler(t)
	ctx := context.Background()

	a, _ := remind.NewRecurring("a", remind.Daily, remind.TimeOfDay{Hour: 9},
		remind.Date{Year: 2026, Month: time.January, Day: 1}, nil)
	b, _ := remind.NewRecurring("b", remind.Weekly, remind.TimeOfDay{Hour: 10},
		remind.Date{Year: 2026, Month: time.January, Day: 1}, nil)
	_ = st.Append(ctx, "7", a)
	_ = st.Append(ctx, "7", b)

	rep := say(t, h, "7", "/remove")
	if !strings.Contains(rep.Text, "1. a") || !strings.Contains(rep.Text, "2. b") {
		t.Fatalf("removal prompt should list reminders, got %q", rep.Text)
	}
	if rep := say(t, h, "7", "5"); !strings.Contains(rep.Text, "between 1 and 2") {
		t.Fatalf("out-of-range reply: %q", rep.Text)
	}
	rep = say(t, h, "7", "1")
	if !strings.Contains(rep.Text, "Removed: a") {
		t.Fatalf("removal confirmation: %q", rep.Text)
	}
	if rs := st.List("7"); len(rs) != 1 || rs[0].Task != "b" {
		t.Fatalf("remaining = %+v", rs)
	}
}

func TestRemoveConfirmedWhenPersistFails(t *testing.T) {
	t.Parallel()
	mb := &memBackend{}
	st, err := store.Open(context.Background(), mb, logx.Nop())
	if err != nil {
		t.Fatalf("store.Open error: %v", err)
	}
	clk := clock.NewFake()
	clk.Set(time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC))
	h := NewHandler(st, wizard.New(clk, time.UTC), time.UTC, logx.Nop())

	a, _ := remind.NewRecurring("a", remind.Daily, remind.TimeOfDay{Hour: 9},
		remind.Date{Year: 2026, Month: time.January, Day: 1}, nil)
	_ = st.Append(context.Background(), "7", a)

	// The removal applies in memory even when the write behind it fails, so
	// the user must see it confirmed.
	mb.saveErr = errors.New("disk full")
	say(t, h, "7", "/remove")
	rep := say(t, h, "7", "1")
	if !strings.Contains(rep.Text, "Removed: a") {
		t.Fatalf("reply = %q, want removal confirmed", rep.Text)
	}
	if n := st.Count("7"); n != 0 {
		t.Fatalf("Count = %d, want 0", n)
	}
}

func TestRemoveWithNothingStored(t *testing.T) {
	t.Parallel()
	h, _ := newHandler(t)
	rep := say(t, h, "7", "/remove")
	if !strings.Contains(rep.Text, "no reminders") {
		t.Fatalf("got %q", rep.Text)
	}
}

func TestCancelMidWizard(t *testing.T) {
	t.Parallel()
	h, st := newHandler(t)

	say(t, h, "7", "/add")
	say(t, h, "7", "task")
	rep := say(t, h, "7", "/cancel")
	if !strings.Contains(rep.Text, "cancelled") {
		t.Fatalf("cancel reply: %q", rep.Text)
	}
	if st.Count("7") != 0 {
		t.Fatal("cancelled wizard must not touch the store")
	}
	// Bare word works too.
	say(t, h, "7", "/add")
	if rep := say(t, h, "7", "cancel"); !strings.Contains(rep.Text, "cancelled") {
		t.Fatalf("bare cancel reply: %q", rep.Text)
	}
	if rep := say(t, h, "7", "/cancel"); !strings.Contains(rep.Text, "Nothing to cancel") {
		t.Fatalf("idle cancel reply: %q", rep.Text)
	}
}

func TestCommandInterruptsWizard(t *testing.T) {
	t.Parallel()
	h, st := newHandler(t)

	say(t, h, "7", "/add")
	say(t, h, "7", "first task")
	// Starting over discards the stale session.
	say(t, h, "7", "/add")
	say(t, h, "7", "second task")
	say(t, h, "7", "Daily")
	say(t, h, "7", "09:00")
	say(t, h, "7", "Today")
	say(t, h, "7", "Never")

	rs := st.List("7")
	if len(rs) != 1 || rs[0].Task != "second task" {
		t.Fatalf("stored = %+v", rs)
	}
}

func TestStatus(t *testing.T) {
	t.Parallel()
	h, st := newHandler(t)
	ctx := context.Background()

	rep := say(t, h, "7", "/status")
	if !strings.Contains(rep.Text, "0 reminder(s)") {
		t.Fatalf("empty status: %q", rep.Text)
	}

	sent, _ := remind.NewOneOff("done", remind.DateTime{
		Date: remind.Date{Year: 2026, Month: time.January, Day: 1},
		Time: remind.TimeOfDay{Hour: 9},
	})
	sent.Sent = true
	live, _ := remind.NewRecurring("live", remind.Daily, remind.TimeOfDay{Hour: 9},
		remind.Date{Year: 2026, Month: time.January, Day: 1}, nil)
	_ = st.Append(ctx, "7", sent)
	_ = st.Append(ctx, "7", live)

	rep = say(t, h, "7", "/status")
	if !strings.Contains(rep.Text, "2 reminder(s), 1 active") {
		t.Fatalf("status: %q", rep.Text)
	}

	// Status must not cancel an open session, and should mention it.
	say(t, h, "7", "/add")
	rep = say(t, h, "7", "/status")
	if !strings.Contains(rep.Text, "conversation is in progress") {
		t.Fatalf("status with session: %q", rep.Text)
	}
	say(t, h, "7", "still my task")
	if step, ok := h.wiz.StepOf("7"); !ok || step != wizard.StepFrequency {
		t.Fatalf("session lost after /status, step=%v ok=%v", step, ok)
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	t.Parallel()
	h, st := newHandler(t)

	say(t, h, "1", "/add")
	say(t, h, "2", "/add")
	say(t, h, "1", "task one")
	say(t, h, "2", "task two")
	say(t, h, "1", "Daily")
	say(t, h, "1", "08:00")
	say(t, h, "1", "Today")
	say(t, h, "1", "Never")

	if st.Count("1") != 1 || st.Count("2") != 0 {
		t.Fatalf("counts = %d/%d", st.Count("1"), st.Count("2"))
	}
	if !h.wiz.Active("2") {
		t.Fatal("user 2 session dropped")
	}
}
