package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dev-nick421/immich-swipe/internal/adapters/queue/memory"
	"github.com/dev-nick421/immich-swipe/internal/core/services"
)

func reviewedMessage(id, scope string) services.Message {
	return services.Message{
		MessageID: id,
		Topic:     services.ReviewedTopic,
		Payload:   []byte(`{"assetID":"a1","action":"kept"}`),
		Metadata:  map[string]string{services.ScopeMetadataKey: scope},
	}
}

func TestQueue_RoutesByScope(t *testing.T) {
	clock := services.NewFakeClock(time.Now())
	q := memory.NewInMemoryQueue(clock)
	ctx := context.Background()

	var aliceGot, bobGot []services.Message
	if err := q.Subscribe(ctx, "history:alice", services.ReviewedTopic, "alice", func(ctx context.Context, msg services.Message) error {
		aliceGot = append(aliceGot, msg)
		return nil
	}); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	if err := q.Subscribe(ctx, "history:bob", services.ReviewedTopic, "bob", func(ctx context.Context, msg services.Message) error {
		bobGot = append(bobGot, msg)
		return nil
	}); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	q.Publish(ctx, reviewedMessage("m-alice", "alice"))
	q.Publish(ctx, reviewedMessage("m-bob", "bob"))

	if delivered := q.Process(ctx); delivered != 2 {
		t.Errorf("expected 2 messages delivered, got %d", delivered)
	}
	if len(aliceGot) != 1 || aliceGot[0].MessageID != "m-alice" {
		t.Errorf("alice received %+v", aliceGot)
	}
	if len(bobGot) != 1 || bobGot[0].MessageID != "m-bob" {
		t.Errorf("bob received %+v", bobGot)
	}
}

func TestQueue_EmptyScopeReceivesEverything(t *testing.T) {
	clock := services.NewFakeClock(time.Now())
	q := memory.NewInMemoryQueue(clock)
	ctx := context.Background()

	count := 0
	q.Subscribe(ctx, "history", services.ReviewedTopic, "", func(ctx context.Context, msg services.Message) error {
		count++
		return nil
	})

	q.Publish(ctx, reviewedMessage("m1", "alice"))
	q.Publish(ctx, reviewedMessage("m2", "bob"))
	q.Process(ctx)

	if count != 2 {
		t.Errorf("expected 2 messages, got %d", count)
	}
}

func TestQueue_ScheduledMessageWaitsForDeliverAt(t *testing.T) {
	baseTime := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := services.NewFakeClock(baseTime)
	q := memory.NewInMemoryQueue(clock)
	ctx := context.Background()

	count := 0
	q.Subscribe(ctx, "history", services.ReviewedTopic, "", func(ctx context.Context, msg services.Message) error {
		count++
		return nil
	})

	msg := reviewedMessage("delayed", "alice")
	msg.DeliverAt = baseTime.Add(5 * time.Second)
	q.Publish(ctx, msg)

	q.Process(ctx)
	if count != 0 {
		t.Fatalf("message delivered before DeliverAt")
	}

	clock.Advance(5 * time.Second)
	q.Process(ctx)
	if count != 1 {
		t.Errorf("expected delivery at DeliverAt, got %d", count)
	}
}

func TestQueue_FailingHandlerIsRetriedThenDropped(t *testing.T) {
	clock := services.NewFakeClock(time.Now())
	q := memory.NewInMemoryQueue(clock)
	ctx := context.Background()

	calls := 0
	q.Subscribe(ctx, "history", services.ReviewedTopic, "", func(ctx context.Context, msg services.Message) error {
		calls++
		return errors.New("store unavailable")
	})

	q.Publish(ctx, reviewedMessage("m1", "alice"))
	q.Process(ctx)

	if calls != memory.MaxAttempts {
		t.Errorf("expected %d attempts, got %d", memory.MaxAttempts, calls)
	}
	if q.PendingCount() != 0 {
		t.Errorf("expected nothing pending, got %d", q.PendingCount())
	}
	if q.DroppedCount() != 1 {
		t.Errorf("expected 1 dropped message, got %d", q.DroppedCount())
	}
}

func TestQueue_UnsubscribedTopicStaysPending(t *testing.T) {
	clock := services.NewFakeClock(time.Now())
	q := memory.NewInMemoryQueue(clock)
	ctx := context.Background()

	q.Publish(ctx, reviewedMessage("m1", "alice"))
	q.Process(ctx)

	if q.PendingCount() != 1 {
		t.Fatalf("expected message to wait for a subscriber, pending=%d", q.PendingCount())
	}

	got := 0
	q.Subscribe(ctx, "history", services.ReviewedTopic, "", func(ctx context.Context, msg services.Message) error {
		got++
		return nil
	})
	q.Process(ctx)
	if got != 1 {
		t.Errorf("expected late subscriber to receive the message, got %d", got)
	}
}
