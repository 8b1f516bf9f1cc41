package worker

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/cleantownship/cleantown-service/internal/events"
)

// ErrQueueFull is returned to the publisher when the notification queue has no room.
var ErrQueueFull = errors.New("notification queue full")

const defaultQueueSize = 256

// Notifier delivers notifications for the event types it lists.
type Notifier interface {
	EventTypes() []events.EventType
	Notify(ctx context.Context, event events.Event) error
}

// NotificationWorker moves notification delivery off the request path.
// Publishers only enqueue; Run delivers in publish order.
type NotificationWorker struct {
	notifier Notifier
	queue    chan events.Event
	logger   *zap.Logger
}

// NewNotificationWorker builds a worker with a queue of queueSize events.
func NewNotificationWorker(notifier Notifier, queueSize int, logger *zap.Logger) *NotificationWorker {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationWorker{
		notifier: notifier,
		queue:    make(chan events.Event, queueSize),
		logger:   logger,
	}
}

// Subscribe enqueues every event the notifier handles.
func (w *NotificationWorker) Subscribe(dispatcher events.Dispatcher) {
	for _, eventType := range w.notifier.EventTypes() {
		dispatcher.Subscribe(eventType, w.enqueue)
	}
}

func (w *NotificationWorker) enqueue(_ context.Context, event events.Event) error {
	select {
	case w.queue <- event:
		return nil
	default:
		return ErrQueueFull
	}
}

// Run delivers queued events until ctx is done, then flushes what is
// already queued.
func (w *NotificationWorker) Run(ctx context.Context) {
	for {
		select {
		case event := <-w.queue:
			w.deliver(ctx, event)
		case <-ctx.Done():
			w.flush()
			return
		}
	}
}

func (w *NotificationWorker) flush() {
	for {
		select {
		case event := <-w.queue:
			w.deliver(context.Background(), event)
		default:
			return
		}
	}
}

func (w *NotificationWorker) deliver(ctx context.Context, event events.Event) {
	if err := w.notifier.Notify(ctx, event); err != nil {
		w.logger.Warn("notification failed",
			zap.String("event", string(event.Type)),
			zap.String("email", event.Email),
			zap.Error(err))
	}
}
