package wizard

import (
	"testing"
	"time"

	"github.com/jmhodges/clock"

	"remindbot/internal/remind"
)

// newFixed returns a manager pinned to 2026-01-01 12:00 UTC.
func newFixed(t *testing.T) *Manager {
	t.Helper()
	clk := clock.NewFake()
	clk.Set(time.Date(2026, time.January, 1, 12, 0, 0, 0, time.UTC))
	return New(clk, time.UTC)
}

func handle(t *testing.T, m *Manager, user, text string) Result {
	t.Helper()
	res, ok := m.Handle(user, text)
	if !ok {
		t.Fatalf("Handle(%q): no session open", text)
	}
	return res
}

func TestAddRecurringHappyPath(t *testing.T) {
	t.Parallel()
	m := newFixed(t)

	res := m.StartAdd("7")
	if res.Reply == "" || res.Done {
		t.Fatalf("unexpected start result: %+v", res)
	}

	res = handle(t, m, "7", "water the plants")
	if step, _ := m.StepOf("7"); step != StepFrequency {
		t.Fatalf("step = %v, want StepFrequency", step)
	}
	if len(res.Choices) != 4 {
		t.Fatalf("frequency choices = %v", res.Choices)
	}

	res = handle(t, m, "7", "Daily")
	if step, _ := m.StepOf("7"); step != StepTime {
		t.Fatalf("step = %v, want StepTime", step)
	}

	res = handle(t, m, "7", "09:00")
	if step, _ := m.StepOf("7"); step != StepStartDate {
		t.Fatalf("step = %v, want StepStartDate", step)
	}

	res = handle(t, m, "7", "Today")
	if step, _ := m.StepOf("7"); step != StepEndDate {
		t.Fatalf("step = %v, want StepEndDate", step)
	}

	res = handle(t, m, "7", "Never")
	if !res.Done || res.Commit == nil {
		t.Fatalf("expected commit, got %+v", res)
	}
	r := *res.Commit
	if r.Kind != remind.KindRecurring || r.Task != "water the plants" ||
		r.Frequency != remind.Daily || r.TimeOfDay != (remind.TimeOfDay{Hour: 9}) {
		t.Fatalf("unexpected reminder: %+v", r)
	}
	if r.StartDate.String() != "2026-01-01" {
		t.Fatalf("start date = %s, want 2026-01-01 (Today)", r.StartDate)
	}
	if r.EndDate != nil {
		t.Fatalf("end date = %v, want nil (Never)", r.EndDate)
	}
	if m.Active("7") {
		t.Fatal("session not cleared after commit")
	}
}

func TestAddOneOffHappyPath(t *testing.T) {
	t.Parallel()
	m := newFixed(t)
	m.StartAdd("7")
	handle(t, m, "7", "dentist")

	res := handle(t, m, "7", "One-off")
	if step, _ := m.StepOf("7"); step != StepOneOffDateTime {
		t.Fatalf("step = %v, want StepOneOffDateTime", step)
	}

	res = handle(t, m, "7", "2026-02-15 14:30")
	if !res.Done || res.Commit == nil {
		t.Fatalf("expected commit, got %+v", res)
	}
	r := *res.Commit
	if r.Kind != remind.KindOneOff || r.Sent || r.At.String() != "2026-02-15 14:30" {
		t.Fatalf("unexpected reminder: %+v", r)
	}
}

func TestOneOffMustBeFuture(t *testing.T) {
	t.Parallel()
	m := newFixed(t) // now = 2026-01-01 12:00
	m.StartAdd("7")
	handle(t, m, "7", "dentist")
	handle(t, m, "7", "One-off")

	for _, past := range []string{"2025-12-31 09:00", "2026-01-01 11:59", "2026-01-01 12:00"} {
		res := handle(t, m, "7", past)
		if res.Done || res.Commit != nil {
			t.Fatalf("%q accepted; must be strictly in the future", past)
		}
	}
	res := handle(t, m, "7", "2026-01-01 12:01")
	if res.Commit == nil {
		t.Fatal("next minute rejected; strictly-after should accept it")
	}
}

func TestFrequencyIsCaseSensitive(t *testing.T) {
	t.Parallel()
	m := newFixed(t)
	m.StartAdd("7")
	handle(t, m, "7", "task")

	for _, bad := range []string{"daily", "DAILY", "Hourly", "one-off", ""} {
		res := handle(t, m, "7", bad)
		if res.Done {
			t.Fatalf("%q terminated the session", bad)
		}
		if step, _ := m.StepOf("7"); step != StepFrequency {
			t.Fatalf("%q advanced the step to %v", bad, step)
		}
	}
}

func TestInvalidTimeStays(t *testing.T) {
	t.Parallel()
	m := newFixed(t)
	m.StartAdd("7")
	handle(t, m, "7", "task")
	handle(t, m, "7", "Weekly")

	for _, bad := range []string{"25:00", "9:60", "abc", "noon"} {
		handle(t, m, "7", bad)
		if step, _ := m.StepOf("7"); step != StepTime {
			t.Fatalf("%q advanced the step to %v", bad, step)
		}
	}
	handle(t, m, "7", "23:59")
	if step, _ := m.StepOf("7"); step != StepStartDate {
		t.Fatalf("valid time did not advance, step = %v", step)
	}
}

func TestStartDateShortcuts(t *testing.T) {
	t.Parallel()
	commit := func(startInput string) remind.Reminder {
		m := newFixed(t)
		m.StartAdd("7")
		handle(t, m, "7", "task")
		handle(t, m, "7", "Daily")
		handle(t, m, "7", "09:00")
		handle(t, m, "7", startInput)
		res := handle(t, m, "7", "Never")
		if res.Commit == nil {
			t.Fatalf("no commit for start input %q", startInput)
		}
		return *res.Commit
	}

	if got := commit("Today").StartDate.String(); got != "2026-01-01" {
		t.Fatalf("Today = %s", got)
	}
	if got := commit("Tomorrow").StartDate.String(); got != "2026-01-02" {
		t.Fatalf("Tomorrow = %s", got)
	}
	if got := commit("2026-03-15").StartDate.String(); got != "2026-03-15" {
		t.Fatalf("custom = %s", got)
	}
}

func TestEndDateShortcutOffsets(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input string
		want  string
	}{
		{"1 Week", "2026-01-08"},
		{"1 Month", "2026-01-31"}, // 30-day offset, not calendar-month arithmetic
		{"3 Months", "2026-04-01"},
		{"6 Months", "2026-06-30"},
		{"1 Year", "2027-01-01"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.input, func(t *testing.T) {
			m := newFixed(t)
			m.StartAdd("7")
			handle(t, m, "7", "task")
			handle(t, m, "7", "Daily")
			handle(t, m, "7", "09:00")
			handle(t, m, "7", "2026-01-01")
			res := handle(t, m, "7", tt.input)
			if res.Commit == nil || res.Commit.EndDate == nil {
				t.Fatalf("no end date for %q", tt.input)
			}
			if got := res.Commit.EndDate.String(); got != tt.want {
				t.Fatalf("%q end date = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestEndDateMustFollowStart(t *testing.T) {
	t.Parallel()
	m := newFixed(t)
	m.StartAdd("7")
	handle(t, m, "7", "task")
	handle(t, m, "7", "Daily")
	handle(t, m, "7", "09:00")
	handle(t, m, "7", "2026-02-01")

	for _, bad := range []string{"2026-02-01", "2026-01-31", "garbage"} {
		res := handle(t, m, "7", bad)
		if res.Done {
			t.Fatalf("%q terminated the session", bad)
		}
		if step, _ := m.StepOf("7"); step != StepEndDate {
			t.Fatalf("%q advanced the step to %v", bad, step)
		}
	}
	res := handle(t, m, "7", "2026-02-02")
	if res.Commit == nil {
		t.Fatal("day-after-start rejected")
	}
}

func TestRemovalFlow(t *testing.T) {
	t.Parallel()
	m := newFixed(t)
	m.StartRemove("7", 3)

	for _, bad := range []string{"0", "4", "-1", "two", ""} {
		res := handle(t, m, "7", bad)
		if res.Done || res.Remove != 0 {
			t.Fatalf("%q accepted as removal index", bad)
		}
	}

	res := handle(t, m, "7", "2")
	if !res.Done || res.Remove != 2 {
		t.Fatalf("expected Remove=2 Done, got %+v", res)
	}
	if m.Active("7") {
		t.Fatal("session not cleared after removal")
	}
}

func TestCancelDiscardsSession(t *testing.T) {
	t.Parallel()
	m := newFixed(t)

	// From every non-terminal state.
	steps := [][]string{
		{},
		{"task"},
		{"task", "Daily"},
		{"task", "Daily", "09:00"},
		{"task", "Daily", "09:00", "Today"},
		{"task", "One-off"},
	}
	for _, inputs := range steps {
		m.StartAdd("7")
		for _, in := range inputs {
			handle(t, m, "7", in)
		}
		if !m.Cancel("7") {
			t.Fatalf("Cancel failed after inputs %v", inputs)
		}
		if m.Active("7") {
			t.Fatalf("session survived cancel after inputs %v", inputs)
		}
	}

	if m.Cancel("7") {
		t.Fatal("Cancel reported success with no session")
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	t.Parallel()
	m := newFixed(t)
	m.StartAdd("alice")
	m.StartRemove("bob", 2)

	handle(t, m, "alice", "task a")
	if step, _ := m.StepOf("alice"); step != StepFrequency {
		t.Fatal("alice step wrong")
	}
	if step, _ := m.StepOf("bob"); step != StepRemoveIndex {
		t.Fatal("bob step leaked from alice's flow")
	}
}

func TestHandleWithoutSession(t *testing.T) {
	t.Parallel()
	m := newFixed(t)
	if _, ok := m.Handle("7", "hello"); ok {
		t.Fatal("Handle reported a session where none exists")
	}
}
