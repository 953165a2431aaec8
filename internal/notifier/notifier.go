// Package notifier delivers reminder messages through the chat adapter.
//
// Delivery is best-effort: a failed or timed-out send is logged and reported
// to the caller, never retried. A token-bucket limiter keeps the bot inside
// the platform's send-rate budget.
package notifier

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	kit "remindbot/internal/transport"
	logx "remindbot/pkg/logx"
)

var ErrBadUserID = errors.New("user id is not a chat id")

type Config struct {
	RatePerSec  int           // default 3
	SendTimeout time.Duration // default 10s; expiry counts as a failed send
}

type Service struct {
	log     logx.Logger
	adapter kit.Adapter

	limiter *rate.Limiter

	mu          sync.Mutex // guards sendTimeout against config reloads
	sendTimeout time.Duration
}

func New(cfg Config, adapter kit.Adapter, log logx.Logger) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = 3
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 10 * time.Second
	}
	return &Service{
		log:         log,
		adapter:     adapter,
		limiter:     rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.RatePerSec),
		sendTimeout: cfg.SendTimeout,
	}
}

// Apply updates the limiter and timeout from reloaded config.
func (s *Service) Apply(cfg Config) {
	if cfg.RatePerSec > 0 {
		s.limiter.SetLimit(rate.Limit(cfg.RatePerSec))
		s.limiter.SetBurst(cfg.RatePerSec)
	}
	if cfg.SendTimeout > 0 {
		s.mu.Lock()
		s.sendTimeout = cfg.SendTimeout
		s.mu.Unlock()
	}
}

func (s *Service) timeout() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sendTimeout
}

// Send delivers one message to the user. The user id is the decimal chat id
// the store keys reminders by.
func (s *Service) Send(ctx context.Context, userID, text string) error {
	chatID, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrBadUserID, userID)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	sctx, cancel := context.WithTimeout(ctx, s.timeout())
	defer cancel()

	if _, err := s.adapter.SendText(sctx, kit.ChatTarget{ChatID: chatID}, text, nil); err != nil {
		s.log.Warn("send failed", logx.String("user", userID), logx.Err(err))
		return err
	}
	return nil
}
