// Package scheduler drives the once-per-minute delivery pass.
//
// A single cron entry pinned to the fixed zone fires on every minute
// boundary; each firing evaluates every reminder of every user against the
// current civil time and hands due ones to the notifier. The pass itself is
// re-runnable: one-offs are guarded by the persisted Sent flag (at-most-once),
// recurring reminders may re-fire within the same minute (at-least-once).
package scheduler

import (
	"context"
	"errors"
	"runtime/debug"
	"sync"
	"time"

	"github.com/jmhodges/clock"
	"github.com/robfig/cron/v3"

	"remindbot/internal/remind"
	"remindbot/internal/store"
	logx "remindbot/pkg/logx"
)

// Notifier is the delivery collaborator. Errors are non-fatal to the scan.
type Notifier interface {
	Send(ctx context.Context, userID, text string) error
}

type Service struct {
	log   logx.Logger
	store *store.Store
	notif Notifier
	clk   clock.Clock
	loc   *time.Location

	mu sync.Mutex
	c  *cron.Cron
}

func New(st *store.Store, notif Notifier, clk clock.Clock, loc *time.Location, log logx.Logger) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Service{log: log, store: st, notif: notif, clk: clk, loc: loc}
}

// Start registers the minute tick. Idempotent.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.c != nil {
		return nil
	}

	c := cron.New(cron.WithLocation(s.loc))
	_, err := c.AddFunc("* * * * *", func() {
		defer func() {
			if r := recover(); r != nil {
				s.log.Error("tick panicked", logx.Any("panic", r), logx.Stack(string(debug.Stack())))
			}
		}()
		s.RunTick(ctx, s.clk.Now().In(s.loc))
	})
	if err != nil {
		return err
	}
	c.Start()
	s.c = c
	s.log.Info("minute tick started", logx.String("tz", s.loc.String()))
	return nil
}

func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	c := s.c
	s.c = nil
	s.mu.Unlock()
	if c == nil {
		return
	}
	select {
	case <-c.Stop().Done():
	case <-ctx.Done():
		// best-effort
	}
	s.log.Info("minute tick stopped")
}

// RunTick evaluates every reminder against now and delivers the due ones.
// now must already be in the fixed zone. One failing user or reminder never
// aborts the rest of the pass.
func (s *Service) RunTick(ctx context.Context, now time.Time) {
	snap := s.store.Snapshot()

	for user, list := range snap {
		for _, r := range list {
			if ctx.Err() != nil {
				// Shutdown mid-pass; the rest of the minute is abandoned.
				return
			}
			if !remind.ShouldFire(r, now) {
				continue
			}

			if r.Kind == remind.KindOneOff {
				// Flip and persist Sent before sending, so a crash or a
				// concurrent pass can't deliver this twice.
				err := s.store.MarkSent(ctx, user, r)
				switch {
				case errors.Is(err, store.ErrAlreadySent):
					continue
				case errors.Is(err, store.ErrNotFound):
					// Removed since the snapshot.
					continue
				case err != nil:
					// Persist failure: the in-memory flip stands, so deliver
					// anyway and accept the durability gap.
					s.log.Error("sent flip not durable", logx.String("user", user), logx.Err(err))
				}
			}

			if err := s.notif.Send(ctx, user, RenderMessage(r)); err != nil {
				s.log.Error("delivery failed", logx.String("user", user),
					logx.String("task", r.Task), logx.Err(err))
				continue
			}
			s.log.Info("reminder delivered", logx.String("user", user), logx.String("task", r.Task))
		}
	}
}

// RenderMessage builds the delivery text for one due reminder.
func RenderMessage(r remind.Reminder) string {
	return "🔔 Reminder!\n\n" + r.Task
}
