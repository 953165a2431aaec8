package bot

import (
	"context"
	"runtime/debug"
	"strconv"

	kit "remindbot/internal/transport"
	logx "remindbot/pkg/logx"
)

// Dispatcher pulls updates off the adapter channel and feeds them to the
// Handler one at a time. Sequential consumption is deliberate: it is what
// keeps per-user wizard ordering correct without per-user queues.
type Dispatcher struct {
	log     logx.Logger
	adapter kit.Adapter
	handler *Handler
}

func NewDispatcher(adapter kit.Adapter, handler *Handler, log logx.Logger) *Dispatcher {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Dispatcher{log: log, adapter: adapter, handler: handler}
}

// Run blocks until ctx is cancelled or updates is closed.
func (d *Dispatcher) Run(ctx context.Context, updates <-chan kit.Update) error {
	d.log.Info("message dispatcher started")
	for {
		select {
		case <-ctx.Done():
			d.log.Info("message dispatcher stopped", logx.Any("err", ctx.Err()))
			return nil
		case up, ok := <-updates:
			if !ok {
				d.log.Info("message dispatcher stopped (updates channel closed)")
				return nil
			}
			d.handleUpdate(ctx, up)
		}
	}
}

func (d *Dispatcher) handleUpdate(ctx context.Context, up kit.Update) {
	msg := up.Message
	if msg == nil || msg.Text == "" {
		return
	}
	// One bad message must not take the loop down.
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("panic handling message",
				logx.Int64("chat_id", msg.ChatID),
				logx.Any("panic", r),
				logx.String("stack", string(debug.Stack())))
		}
	}()

	user := strconv.FormatInt(msg.FromID, 10)
	reply := d.handler.HandleMessage(ctx, user, msg.Text)
	if reply.Text == "" {
		return
	}

	opt := &kit.SendOptions{
		DisablePreview: true,
		Choices:        reply.Choices,
		RemoveChoices:  reply.RemoveChoices,
	}
	if _, err := d.adapter.SendText(ctx, kit.ChatTarget{ChatID: msg.ChatID}, reply.Text, opt); err != nil {
		d.log.Warn("reply send failed", logx.Int64("chat_id", msg.ChatID), logx.Err(err))
	}
}
