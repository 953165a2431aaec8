package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"remindbot/internal/remind"
)

var ErrDisabled = errors.New("storage disabled")

// Config configures storage.
//
// Driver values:
//   - "file": single JSON document (default)
//   - "sqlite": SQLite database file (optional build tag)
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}

// Backend reads and writes the whole reminder set.
//
// Save is called synchronously after every store mutation, so implementations
// should keep a single Save cheap (the data set is one document per user).
type Backend interface {
	Load(ctx context.Context) (remind.UserReminderSet, error)
	Save(ctx context.Context, set remind.UserReminderSet) error
	Close() error
}

// record is the persisted shape of one reminder. One-off records carry
// datetime+sent; recurring records carry frequency/time/start_date/end_date.
type record struct {
	Task      string  `json:"task"`
	Frequency string  `json:"frequency,omitempty"`
	Time      string  `json:"time,omitempty"`
	StartDate string  `json:"start_date,omitempty"`
	EndDate   *string `json:"end_date,omitempty"`
	DateTime  string  `json:"datetime,omitempty"`
	Sent      bool    `json:"sent,omitempty"`
}

func encodeRecord(r remind.Reminder) record {
	if r.Kind == remind.KindOneOff {
		return record{Task: r.Task, DateTime: r.At.String(), Sent: r.Sent}
	}
	rec := record{
		Task:      r.Task,
		Frequency: string(r.Frequency),
		Time:      r.TimeOfDay.String(),
		StartDate: r.StartDate.String(),
	}
	if r.EndDate != nil {
		s := r.EndDate.String()
		rec.EndDate = &s
	}
	return rec
}

func decodeRecord(rec record) (remind.Reminder, error) {
	if rec.DateTime != "" {
		at, err := remind.ParseDateTime(rec.DateTime)
		if err != nil {
			return remind.Reminder{}, fmt.Errorf("datetime: %w", err)
		}
		r, err := remind.NewOneOff(rec.Task, at)
		if err != nil {
			return remind.Reminder{}, err
		}
		r.Sent = rec.Sent
		return r, nil
	}

	tod, err := remind.ParseTimeOfDay(rec.Time)
	if err != nil {
		return remind.Reminder{}, fmt.Errorf("time: %w", err)
	}
	start, err := remind.ParseDate(rec.StartDate)
	if err != nil {
		return remind.Reminder{}, fmt.Errorf("start_date: %w", err)
	}
	var end *remind.Date
	if rec.EndDate != nil {
		d, err := remind.ParseDate(*rec.EndDate)
		if err != nil {
			return remind.Reminder{}, fmt.Errorf("end_date: %w", err)
		}
		end = &d
	}
	return remind.NewRecurring(rec.Task, remind.Frequency(rec.Frequency), tod, start, end)
}
