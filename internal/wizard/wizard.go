// Package wizard implements the multi-step reminder creation and removal
// conversations. Each user has at most one session; a session is a step tag
// plus the fields collected so far, and every inbound message advances it
// through an explicit per-step transition. Invalid input re-prompts without
// advancing. Sessions never expire on their own; they end on commit or cancel.
package wizard

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jmhodges/clock"

	"remindbot/internal/remind"
)

type Step int

const (
	StepTask Step = iota + 1
	StepFrequency
	StepTime
	StepStartDate
	StepEndDate
	StepOneOffDateTime
	StepRemoveIndex
)

func (s Step) String() string {
	switch s {
	case StepTask:
		return "awaiting task"
	case StepFrequency:
		return "awaiting frequency"
	case StepTime:
		return "awaiting time"
	case StepStartDate:
		return "awaiting start date"
	case StepEndDate:
		return "awaiting end date"
	case StepOneOffDateTime:
		return "awaiting date-time"
	case StepRemoveIndex:
		return "awaiting removal number"
	}
	return "unknown"
}

// Session holds the partially built reminder. It lives only in memory and is
// owned exclusively by the Manager.
type Session struct {
	Step      Step
	Task      string
	Frequency remind.Frequency
	TimeOfDay remind.TimeOfDay
	StartDate remind.Date

	removeMax int
}

// Result is the outcome of one wizard step.
//
// Exactly one of Commit/Remove is set when the flow completes successfully;
// the caller applies it to the store and the session is already cleared.
type Result struct {
	Reply   string
	Choices []string

	Commit *remind.Reminder // append this reminder
	Remove int              // 1-based index to remove (0 = none)
	Done   bool             // session ended
}

type Manager struct {
	clk clock.Clock
	loc *time.Location

	mu       sync.Mutex
	sessions map[string]*Session
}

func New(clk clock.Clock, loc *time.Location) *Manager {
	return &Manager{clk: clk, loc: loc, sessions: map[string]*Session{}}
}

// StartAdd opens a creation session, replacing any session in progress.
func (m *Manager) StartAdd(user string) Result {
	m.mu.Lock()
	m.sessions[user] = &Session{Step: StepTask}
	m.mu.Unlock()
	return Result{Reply: "What should I remind you about?"}
}

// StartRemove opens a removal session. count is the user's current reminder
// count; messages per user are handled sequentially, so it cannot go stale
// while the session is open.
func (m *Manager) StartRemove(user string, count int) Result {
	m.mu.Lock()
	m.sessions[user] = &Session{Step: StepRemoveIndex, removeMax: count}
	m.mu.Unlock()
	return Result{Reply: fmt.Sprintf("Which one should I remove? Send a number between 1 and %d.", count)}
}

// Active reports whether the user has a session in progress.
func (m *Manager) Active(user string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[user] != nil
}

// StepOf returns the current step of the user's session, if any.
func (m *Manager) StepOf(user string) (Step, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.sessions[user]
	if s == nil {
		return 0, false
	}
	return s.Step, true
}

// Cancel discards the session without committing anything.
func (m *Manager) Cancel(user string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sessions[user] == nil {
		return false
	}
	delete(m.sessions, user)
	return true
}

// Handle advances the user's session with one message. The second return is
// false when no session is open (the text is not wizard input).
func (m *Manager) Handle(user, text string) (Result, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.sessions[user]
	if s == nil {
		return Result{}, false
	}

	res := m.advance(s, strings.TrimSpace(text))
	if res.Done {
		delete(m.sessions, user)
	}
	return res, true
}

func (m *Manager) now() time.Time { return m.clk.Now().In(m.loc) }

func (m *Manager) advance(s *Session, text string) Result {
	switch s.Step {
	case StepTask:
		return stepTask(s, text)
	case StepFrequency:
		return stepFrequency(s, text)
	case StepTime:
		return stepTime(s, text)
	case StepStartDate:
		return stepStartDate(s, text, remind.DateOf(m.now()))
	case StepEndDate:
		return stepEndDate(s, text)
	case StepOneOffDateTime:
		return stepOneOffDateTime(s, text, remind.DateTimeOf(m.now()))
	case StepRemoveIndex:
		return stepRemoveIndex(s, text)
	}
	// Unknown step means the session is corrupt; drop it.
	return Result{Reply: "Something went wrong, let's start over. Send /add to try again.", Done: true}
}

func stepTask(s *Session, text string) Result {
	if text == "" {
		return Result{Reply: "The task can't be empty. What should I remind you about?"}
	}
	s.Task = text
	s.Step = StepFrequency
	return Result{
		Reply:   "How often should I remind you?",
		Choices: frequencyChoices,
	}
}

func stepFrequency(s *Session, text string) Result {
	freq, isOneOff, err := parseFrequencyChoice(text)
	if err != nil {
		return Result{
			Reply:   "Please pick one of Daily, Weekly, Monthly or One-off.",
			Choices: frequencyChoices,
		}
	}
	if isOneOff {
		s.Step = StepOneOffDateTime
		return Result{Reply: "When? Send the date and time as YYYY-MM-DD HH:MM, e.g. 2026-02-15 14:30."}
	}
	s.Frequency = freq
	s.Step = StepTime
	return Result{Reply: "At what time? Send HH:MM in 24-hour format, e.g. 09:00."}
}

func stepTime(s *Session, text string) Result {
	tod, err := remind.ParseTimeOfDay(text)
	if err != nil {
		return Result{Reply: "That doesn't look like a time. Send HH:MM in 24-hour format, e.g. 09:00."}
	}
	s.TimeOfDay = tod
	s.Step = StepStartDate
	return Result{
		Reply:   "When should the reminders start? Pick a shortcut or send a date as YYYY-MM-DD.",
		Choices: startDateChoices,
	}
}

func stepStartDate(s *Session, text string, today remind.Date) Result {
	start, err := parseStartDate(text, today)
	if err != nil {
		return Result{
			Reply:   "I couldn't read that date. Pick a shortcut or send YYYY-MM-DD.",
			Choices: startDateChoices,
		}
	}
	s.StartDate = start
	s.Step = StepEndDate
	return Result{
		Reply:   "And when should they end? Pick a shortcut, send a date as YYYY-MM-DD, or Never.",
		Choices: endDateChoices,
	}
}

func stepEndDate(s *Session, text string) Result {
	end, err := parseEndDate(text, s.StartDate)
	if err != nil {
		return Result{
			Reply:   err.Error() + " Pick a shortcut, send YYYY-MM-DD, or Never.",
			Choices: endDateChoices,
		}
	}
	r, err := remind.NewRecurring(s.Task, s.Frequency, s.TimeOfDay, s.StartDate, end)
	if err != nil {
		// End date validity was already checked; anything else is a corrupt session.
		return Result{Reply: "Something went wrong, let's start over. Send /add to try again.", Done: true}
	}
	return Result{
		Reply:  "✅ Saved: " + r.Task + " — " + r.Describe(),
		Commit: &r,
		Done:   true,
	}
}

func stepOneOffDateTime(s *Session, text string, now remind.DateTime) Result {
	at, err := remind.ParseDateTime(text)
	if err != nil {
		return Result{Reply: "I couldn't read that. Send the date and time as YYYY-MM-DD HH:MM, e.g. 2026-02-15 14:30."}
	}
	if !at.After(now) {
		return Result{Reply: "That moment isn't in the future. Send a later date and time."}
	}
	r, err := remind.NewOneOff(s.Task, at)
	if err != nil {
		return Result{Reply: "Something went wrong, let's start over. Send /add to try again.", Done: true}
	}
	return Result{
		Reply:  "✅ Saved: " + r.Task + " — " + r.Describe(),
		Commit: &r,
		Done:   true,
	}
}

func stepRemoveIndex(s *Session, text string) Result {
	n, err := strconv.Atoi(text)
	if err != nil || n < 1 || n > s.removeMax {
		return Result{Reply: fmt.Sprintf("Send a number between 1 and %d.", s.removeMax)}
	}
	return Result{Remove: n, Done: true}
}
