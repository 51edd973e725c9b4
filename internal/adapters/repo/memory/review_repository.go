package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/dev-nick421/immich-swipe/internal/core/domain"
)

type ReviewRepository struct {
	mu      sync.RWMutex
	records map[string]*domain.ReviewRecord
}

func NewReviewRepository() *ReviewRepository {
	return &ReviewRepository{
		records: make(map[string]*domain.ReviewRecord),
	}
}

func (r *ReviewRepository) Record(ctx context.Context, record *domain.ReviewRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copy := *record
	r.records[record.UID] = &copy
	return nil
}

func (r *ReviewRepository) Exists(ctx context.Context, server, user, assetID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rec := range r.records {
		if rec.Server == server && rec.User == user && rec.AssetID == assetID {
			return true, nil
		}
	}
	return false, nil
}

func (r *ReviewRepository) ListRecent(ctx context.Context, server, user string, limit int) ([]*domain.ReviewRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*domain.ReviewRecord
	for _, rec := range r.records {
		if rec.Server == server && rec.User == user {
			copy := *rec
			result = append(result, &copy)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].ReviewedAt.Equal(result[j].ReviewedAt) {
			return result[i].UID > result[j].UID
		}
		return result[i].ReviewedAt.After(result[j].ReviewedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}
