package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dev-nick421/immich-swipe/internal/core/domain"
)

const ReviewedTopic = "assetreviewed"

type ReviewRepository interface {
	Record(ctx context.Context, record *domain.ReviewRecord) error
	Exists(ctx context.Context, server, user, assetID string) (bool, error)
	ListRecent(ctx context.Context, server, user string, limit int) ([]*domain.ReviewRecord, error)
}

// ReviewRecorder is told about every confirmed keep, delete and restore.
type ReviewRecorder interface {
	Reviewed(ctx context.Context, asset domain.Asset, action domain.ReviewAction) error
}

type ReviewedPayload struct {
	Server  string              `json:"server"`
	User    string              `json:"user"`
	AssetID string              `json:"assetID"`
	Action  domain.ReviewAction `json:"action"`
}

// ReviewPublisher is a ReviewRecorder that hands decisions to the queue so
// the review path never waits on the history store.
type ReviewPublisher struct {
	queue  Queue
	server string
	user   string
}

func NewReviewPublisher(queue Queue, server, user string) *ReviewPublisher {
	return &ReviewPublisher{
		queue:  queue,
		server: server,
		user:   user,
	}
}

// Scope is the queue routing scope of this server+user.
func (p *ReviewPublisher) Scope() string {
	return ReviewScope(p.server, p.user)
}

func ReviewScope(server, user string) string {
	data, _ := json.Marshal([2]string{server, user})
	return string(data)
}

func (p *ReviewPublisher) Reviewed(ctx context.Context, asset domain.Asset, action domain.ReviewAction) error {
	payload, err := json.Marshal(ReviewedPayload{
		Server:  p.server,
		User:    p.user,
		AssetID: asset.ID,
		Action:  action,
	})
	if err != nil {
		return err
	}

	return p.queue.Publish(ctx, Message{
		MessageID: uuid.NewString(),
		Topic:     ReviewedTopic,
		Payload:   payload,
		Metadata: map[string]string{
			ScopeMetadataKey: p.Scope(),
		},
	})
}

type ReviewHistoryConsumer struct {
	repo  ReviewRepository
	clock Clock
}

func NewReviewHistoryConsumer(repo ReviewRepository, clock Clock) *ReviewHistoryConsumer {
	return &ReviewHistoryConsumer{
		repo:  repo,
		clock: clock,
	}
}

func (c *ReviewHistoryConsumer) Handle(ctx context.Context, msg Message) error {
	var payload ReviewedPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("parsing assetreviewed payload: %w", err)
	}
	if payload.AssetID == "" {
		return errors.New("assetreviewed payload without asset id")
	}

	uid := msg.MessageID
	if uid == "" {
		uid = uuid.NewString()
	}

	// the message id doubles as record uid so redelivery overwrites
	return c.repo.Record(ctx, &domain.ReviewRecord{
		UID:        uid,
		Server:     payload.Server,
		User:       payload.User,
		AssetID:    payload.AssetID,
		Action:     payload.Action,
		ReviewedAt: c.clock.Now(),
	})
}
