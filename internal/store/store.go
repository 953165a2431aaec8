package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"remindbot/internal/remind"
	"remindbot/internal/storage"
	logx "remindbot/pkg/logx"
)

var (
	ErrIndexOutOfRange = errors.New("reminder index out of range")
	ErrAlreadySent     = errors.New("reminder already sent")
	ErrNotOneOff       = errors.New("reminder is not one-off")
	ErrNotFound        = errors.New("reminder not found")
)

// Store owns the in-memory reminder set. Every access goes through one mutex;
// every mutation is persisted through the backend before the method returns,
// so a crash cannot silently lose an append, a removal or a sent flip. The
// mutex is never held across adapter (network) I/O — persistence is local.
//
// A persistence failure is logged and returned, but the in-memory mutation
// stands: losing durability beats blocking the user.
type Store struct {
	log     logx.Logger
	backend storage.Backend

	mu  sync.Mutex
	set remind.UserReminderSet
}

// Open loads the persisted set once. Called exactly once at startup.
func Open(ctx context.Context, backend storage.Backend, log logx.Logger) (*Store, error) {
	if log.IsZero() {
		log = logx.Nop()
	}
	set, err := backend.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load reminders: %w", err)
	}
	if set == nil {
		set = remind.UserReminderSet{}
	}
	return &Store{log: log, backend: backend, set: set}, nil
}

// List returns a copy of the user's reminders in insertion order.
func (s *Store) List(user string) []remind.Reminder {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.set[user]
	cp := make([]remind.Reminder, len(list))
	copy(cp, list)
	return cp
}

func (s *Store) Count(user string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.set[user])
}

// Snapshot deep-copies the whole set for a scan pass.
func (s *Store) Snapshot() remind.UserReminderSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set.Clone()
}

// Append adds a committed reminder to the end of the user's list.
func (s *Store) Append(ctx context.Context, user string, r remind.Reminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.set[user] = append(s.set[user], r)
	return s.persistLocked(ctx)
}

// Remove deletes the reminder with the given 1-based index and returns it.
func (s *Store) Remove(ctx context.Context, user string, index int) (remind.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.set[user]
	if index < 1 || index > len(list) {
		return remind.Reminder{}, ErrIndexOutOfRange
	}
	removed := list[index-1]
	s.set[user] = append(list[:index-1], list[index:]...)
	if len(s.set[user]) == 0 {
		delete(s.set, user)
	}
	return removed, s.persistLocked(ctx)
}

// MarkSent flips the Sent flag of the one-off matching r (by task and fire
// time) and persists before returning. The match is by value, not by index,
// so a removal racing a scan can't flip an unrelated entry. ErrAlreadySent
// means another pass got there first; callers must then skip the send, which
// is what keeps one-off delivery at-most-once. ErrNotFound means the reminder
// was removed since the caller's snapshot.
func (s *Store) MarkSent(ctx context.Context, user string, r remind.Reminder) error {
	if r.Kind != remind.KindOneOff {
		return ErrNotOneOff
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.set[user]
	sentSeen := false
	for i := range list {
		if list[i].Kind != remind.KindOneOff || list[i].Task != r.Task || list[i].At != r.At {
			continue
		}
		if list[i].Sent {
			sentSeen = true
			continue
		}
		list[i].Sent = true
		return s.persistLocked(ctx)
	}
	if sentSeen {
		return ErrAlreadySent
	}
	return ErrNotFound
}

func (s *Store) persistLocked(ctx context.Context) error {
	if err := s.backend.Save(ctx, s.set); err != nil {
		s.log.Error("persist failed; in-memory state kept", logx.Err(err))
		return fmt.Errorf("persist reminders: %w", err)
	}
	return nil
}
