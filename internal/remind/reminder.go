package remind

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyTask    = errors.New("task text is empty")
	ErrBadFrequency = errors.New("unknown frequency")
	ErrEndNotAfter  = errors.New("end date must be after start date")
)

// Frequency of a recurring reminder. Values double as the user-facing
// vocabulary, matched case-sensitively.
type Frequency string

const (
	Daily   Frequency = "Daily"
	Weekly  Frequency = "Weekly"
	Monthly Frequency = "Monthly"
)

func (f Frequency) Valid() bool {
	switch f {
	case Daily, Weekly, Monthly:
		return true
	}
	return false
}

// Kind discriminates the two reminder shapes.
type Kind int

const (
	KindOneOff Kind = iota
	KindRecurring
)

// Reminder is a tagged union: a one-off delivery at a fixed civil date-time,
// or a recurring delivery at a time of day within an optional date range.
// Only the fields of the active Kind are meaningful.
type Reminder struct {
	Kind Kind
	Task string

	// One-off.
	At   DateTime
	Sent bool

	// Recurring.
	Frequency Frequency
	TimeOfDay TimeOfDay
	StartDate Date
	EndDate   *Date // nil means no end
}

// NewOneOff builds a one-off reminder. The caller is responsible for checking
// that at is in the future relative to its clock; that check needs "now" and
// belongs to the wizard.
func NewOneOff(task string, at DateTime) (Reminder, error) {
	task = strings.TrimSpace(task)
	if task == "" {
		return Reminder{}, ErrEmptyTask
	}
	return Reminder{Kind: KindOneOff, Task: task, At: at}, nil
}

func NewRecurring(task string, freq Frequency, at TimeOfDay, start Date, end *Date) (Reminder, error) {
	task = strings.TrimSpace(task)
	if task == "" {
		return Reminder{}, ErrEmptyTask
	}
	if !freq.Valid() {
		return Reminder{}, fmt.Errorf("%w: %q", ErrBadFrequency, freq)
	}
	if end != nil && !end.After(start) {
		return Reminder{}, ErrEndNotAfter
	}
	return Reminder{Kind: KindRecurring, Task: task, Frequency: freq, TimeOfDay: at, StartDate: start, EndDate: end}, nil
}

// Describe renders the schedule part of a reminder for listings,
// e.g. "Daily at 09:00 from 2026-01-01 until 2026-03-01" or
// "once at 2026-02-15 14:30".
func (r Reminder) Describe() string {
	if r.Kind == KindOneOff {
		s := "once at " + r.At.String()
		if r.Sent {
			s += " (sent)"
		}
		return s
	}
	s := string(r.Frequency) + " at " + r.TimeOfDay.String() + " from " + r.StartDate.String()
	if r.EndDate != nil {
		s += " until " + r.EndDate.String()
	}
	return s
}
