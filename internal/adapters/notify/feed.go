package notify

import (
	"sync"
	"time"

	"github.com/dev-nick421/immich-swipe/internal/core/services"
)

const DefaultFeedCapacity = 32

type Notification struct {
	Message   string            `json:"message"`
	Severity  services.Severity `json:"severity"`
	CreatedAt time.Time         `json:"createdAt"`
	ExpiresAt time.Time         `json:"expiresAt"`
}

// Feed keeps the latest notifications until they expire so a polling client
// can render them as toasts.
type Feed struct {
	mu       sync.Mutex
	clock    services.Clock
	capacity int
	items    []Notification
}

func NewFeed(clock services.Clock, capacity int) *Feed {
	if capacity <= 0 {
		capacity = DefaultFeedCapacity
	}
	return &Feed{
		clock:    clock,
		capacity: capacity,
	}
}

func (f *Feed) Notify(message string, severity services.Severity, duration time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.clock.Now()
	f.items = append(f.items, Notification{
		Message:   message,
		Severity:  severity,
		CreatedAt: now,
		ExpiresAt: now.Add(duration),
	})
	if over := len(f.items) - f.capacity; over > 0 {
		f.items = append([]Notification(nil), f.items[over:]...)
	}
}

// Active returns the notifications that have not expired yet, oldest first.
func (f *Feed) Active() []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.clock.Now()
	live := f.items[:0]
	for _, n := range f.items {
		if n.ExpiresAt.After(now) {
			live = append(live, n)
		}
	}
	f.items = live
	return append([]Notification(nil), live...)
}

// Fanout delivers every notification to all of its sinks.
type Fanout []services.Notifier

func (f Fanout) Notify(message string, severity services.Severity, duration time.Duration) {
	for _, n := range f {
		n.Notify(message, severity, duration)
	}
}
