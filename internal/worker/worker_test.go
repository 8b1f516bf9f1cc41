package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/cleantownship/cleantown-service/internal/config"
	"github.com/cleantownship/cleantown-service/internal/domain"
	"github.com/cleantownship/cleantown-service/internal/events"
	"github.com/cleantownship/cleantown-service/internal/service"
	"github.com/cleantownship/cleantown-service/internal/session"
)

type countingPurger struct {
	calls atomic.Int32
}

func (c *countingPurger) PurgeExpired(time.Time) int {
	c.calls.Add(1)
	return 1
}

func TestRunSessionSweeper_StopsOnCancel(t *testing.T) {
	t.Parallel()

	purger := &countingPurger{}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		RunSessionSweeper(ctx, purger, 5*time.Millisecond, zap.NewNop())
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for purger.calls.Load() < 2 {
		select {
		case <-deadline:
			t.Fatal("sweeper never ticked")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}
}

func TestRunSessionSweeper_PurgesMemoryStore(t *testing.T) {
	t.Parallel()

	store := session.NewMemoryStore()
	past := time.Now().Add(-time.Hour)
	if err := store.Save(context.Background(), domain.Session{ID: "old", Email: "a@example.com", ExpiresAt: past}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Save(context.Background(), domain.Session{ID: "live", Email: "b@example.com", ExpiresAt: time.Now().Add(time.Hour)}); err != nil {
		t.Fatalf("save: %v", err)
	}

	if purged := store.PurgeExpired(time.Now()); purged != 1 {
		t.Fatalf("purged %d, want 1", purged)
	}
	if _, err := store.Get(context.Background(), "live"); err != nil {
		t.Errorf("live session removed: %v", err)
	}
}

type recordingNotifier struct {
	mu        sync.Mutex
	delivered []string
}

func (r *recordingNotifier) EventTypes() []events.EventType {
	return []events.EventType{events.EventIssueSubmitted}
}

func (r *recordingNotifier) Notify(_ context.Context, event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delivered = append(r.delivered, event.Email)
	return nil
}

func (r *recordingNotifier) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.delivered...)
}

func TestNotificationWorker_DeliversInOrder(t *testing.T) {
	t.Parallel()

	notifier := &recordingNotifier{}
	w := NewNotificationWorker(notifier, 8, zap.NewNop())
	dispatcher := events.NewInMemoryDispatcher()
	w.Subscribe(dispatcher)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	for _, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		if err := dispatcher.Publish(context.Background(), events.Event{Type: events.EventIssueSubmitted, Email: email}); err != nil {
			t.Fatalf("publish: %v", err)
		}
	}
	if err := dispatcher.Publish(context.Background(), events.Event{Type: events.EventSessionEnded, Email: "ignored@x.com"}); err != nil {
		t.Fatalf("publish unsubscribed type: %v", err)
	}

	cancel()
	<-done

	got := notifier.snapshot()
	if len(got) != 3 || got[0] != "a@x.com" || got[2] != "c@x.com" {
		t.Errorf("delivered %v, want a, b, c in order", got)
	}
}

func TestNotificationWorker_FullQueueRejectsPublish(t *testing.T) {
	t.Parallel()

	w := NewNotificationWorker(&recordingNotifier{}, 1, zap.NewNop())
	dispatcher := events.NewInMemoryDispatcher()
	w.Subscribe(dispatcher)

	event := events.Event{Type: events.EventIssueSubmitted, Email: "a@x.com"}
	if err := dispatcher.Publish(context.Background(), event); err != nil {
		t.Fatalf("first publish: %v", err)
	}
	if err := dispatcher.Publish(context.Background(), event); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("second publish error = %v, want ErrQueueFull", err)
	}
}

func TestNotificationService_HandlesEveryListedType(t *testing.T) {
	t.Parallel()

	svc := service.NewNotificationService(zap.NewNop(), config.NotificationConfig{EmailFrom: "noreply@cleantownship.com", WebhookURL: "http://hooks.local"})
	for _, eventType := range svc.EventTypes() {
		if err := svc.Notify(context.Background(), events.Event{Type: eventType, Email: "a@x.com"}); err != nil {
			t.Errorf("Notify(%s): %v", eventType, err)
		}
	}
}
