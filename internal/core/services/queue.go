package services

import (
	"context"
	"time"
)

// ScopeMetadataKey routes a message to subscribers of one server+user scope.
const ScopeMetadataKey = "scope"

type Message struct {
	MessageID string
	Topic     string
	Payload   []byte
	Metadata  map[string]string
	DeliverAt time.Time
}

type MessageHandler func(ctx context.Context, msg Message) error

type Queue interface {
	Publish(ctx context.Context, msg Message) error
	// Subscribe registers handler for topic. An empty scope receives every
	// message of the topic.
	Subscribe(ctx context.Context, subscriptionID string, topic string, scope string, handler MessageHandler) error
	Unsubscribe(subscriptionID string) error
}
