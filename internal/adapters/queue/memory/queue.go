package memory

import (
	"context"
	"sync"

	"github.com/dev-nick421/immich-swipe/internal/core/services"
)

const MaxAttempts = 3

type subscription struct {
	topic   string
	scope   string
	handler services.MessageHandler
}

type pendingMessage struct {
	msg      services.Message
	attempts int
}

// InMemoryQueue holds messages until Tick delivers them. A message that
// fails or finds no subscriber is retried up to MaxAttempts times.
type InMemoryQueue struct {
	mu            sync.RWMutex
	clock         services.Clock
	subscriptions map[string]*subscription
	pending       []pendingMessage
	dropped       int
}

func NewInMemoryQueue(clock services.Clock) *InMemoryQueue {
	return &InMemoryQueue{
		clock:         clock,
		subscriptions: make(map[string]*subscription),
		pending:       make([]pendingMessage, 0),
	}
}

func (q *InMemoryQueue) Publish(ctx context.Context, msg services.Message) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if msg.DeliverAt.IsZero() {
		msg.DeliverAt = q.clock.Now()
	}

	q.pending = append(q.pending, pendingMessage{msg: msg})
	return nil
}

func (q *InMemoryQueue) Subscribe(ctx context.Context, subscriptionID string, topic string, scope string, handler services.MessageHandler) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.subscriptions[subscriptionID] = &subscription{
		topic:   topic,
		scope:   scope,
		handler: handler,
	}
	return nil
}

func (q *InMemoryQueue) Unsubscribe(subscriptionID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	delete(q.subscriptions, subscriptionID)
	return nil
}

func (q *InMemoryQueue) match(msg services.Message) services.MessageHandler {
	q.mu.RLock()
	defer q.mu.RUnlock()

	for _, sub := range q.subscriptions {
		if sub.topic != msg.Topic {
			continue
		}
		if sub.scope != "" && sub.scope != msg.Metadata[services.ScopeMetadataKey] {
			continue
		}
		return sub.handler
	}
	return nil
}

func (q *InMemoryQueue) Tick(ctx context.Context) (delivered int, requeued int) {
	q.mu.Lock()
	now := q.clock.Now()

	var ready []pendingMessage
	var stillPending []pendingMessage
	for _, pm := range q.pending {
		if !pm.msg.DeliverAt.After(now) {
			ready = append(ready, pm)
		} else {
			stillPending = append(stillPending, pm)
		}
	}
	q.pending = stillPending
	q.mu.Unlock()

	var toRequeue []pendingMessage
	dropped := 0

	for _, pm := range ready {
		handler := q.match(pm.msg)
		if handler != nil && handler(ctx, pm.msg) == nil {
			delivered++
			continue
		}

		pm.attempts++
		if pm.attempts < MaxAttempts {
			toRequeue = append(toRequeue, pm)
			if handler != nil {
				requeued++
			}
		} else {
			dropped++
		}
	}

	if len(toRequeue) > 0 || dropped > 0 {
		q.mu.Lock()
		q.pending = append(q.pending, toRequeue...)
		q.dropped += dropped
		q.mu.Unlock()
	}

	return delivered, requeued
}

// Process ticks until a tick neither delivers nor requeues anything.
func (q *InMemoryQueue) Process(ctx context.Context) (totalDelivered int) {
	for {
		delivered, requeued := q.Tick(ctx)
		totalDelivered += delivered
		if delivered == 0 && requeued == 0 {
			break
		}
	}
	return totalDelivered
}

func (q *InMemoryQueue) PendingCount() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.pending)
}

// DroppedCount is the number of messages given up after MaxAttempts.
func (q *InMemoryQueue) DroppedCount() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.dropped
}
