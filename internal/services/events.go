package services

import (
	"context"
	"log/slog"
	"time"
)

// InvoiceEvent is emitted after an action service completes a status
// mutation. Side effects (mirror re-sync, admin push, websocket feed) hang
// off this event instead of persistence hooks, so each can be observed and
// tested alone.
type InvoiceEvent struct {
	InvoiceID    int       `json:"invoice_id"`
	FreshbooksID int64     `json:"freshbooks_id"`
	Action       string    `json:"action"`
	FromStatus   string    `json:"from_status"`
	ToStatus     string    `json:"to_status"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// EventHandler consumes invoice events. Handlers are best-effort: a failing
// handler is logged and never affects the transition that emitted the event.
type EventHandler func(ctx context.Context, ev InvoiceEvent)

// EventDispatcher owns the handler fan-out on a single goroutine, the same
// single-owner-loop discipline the websocket hub uses.
type EventDispatcher struct {
	ch       chan InvoiceEvent
	handlers []EventHandler
	logger   *slog.Logger
}

func NewEventDispatcher(logger *slog.Logger, handlers ...EventHandler) *EventDispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventDispatcher{
		ch:       make(chan InvoiceEvent, 64),
		handlers: handlers,
		logger:   logger,
	}
}

// Subscribe registers a handler. Call before Run.
func (d *EventDispatcher) Subscribe(h EventHandler) {
	d.handlers = append(d.handlers, h)
}

// Publish enqueues an event without blocking the caller; a full queue drops
// the event with a warning rather than stalling an invoice action.
func (d *EventDispatcher) Publish(ev InvoiceEvent) {
	select {
	case d.ch <- ev:
	default:
		d.logger.Warn("event queue full, dropping event", "action", ev.Action, "invoice_id", ev.InvoiceID)
	}
}

// Run consumes events until ctx is canceled.
func (d *EventDispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-d.ch:
			for _, h := range d.handlers {
				func() {
					defer func() {
						if rec := recover(); rec != nil {
							d.logger.Error("event handler panicked", "action", ev.Action, "panic", rec)
						}
					}()
					h(ctx, ev)
				}()
			}
		}
	}
}
