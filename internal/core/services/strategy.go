package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dev-nick421/immich-swipe/internal/core/domain"
)

const (
	RandomBatchSize   = 10
	RandomMaxAttempts = 5
)

// ErrAllVideos means skip-videos filtered out every asset of every random
// batch. It is distinct from an empty library.
var ErrAllVideos = errors.New("only videos found")

type OrderingStrategy struct {
	assets   AssetService
	settings SettingsSource
	pager    *ChronologicalPager
}

func NewOrderingStrategy(assets AssetService, settings SettingsSource, pager *ChronologicalPager) *OrderingStrategy {
	return &OrderingStrategy{
		assets:   assets,
		settings: settings,
		pager:    pager,
	}
}

// NextCandidate returns the next asset to review under the active order
// mode, or nil when there is nothing left.
func (s *OrderingStrategy) NextCandidate(ctx context.Context) (*domain.Asset, error) {
	if s.settings.OrderMode().Chronological() {
		return s.pager.Next(ctx)
	}
	return s.nextRandom(ctx)
}

func (s *OrderingStrategy) nextRandom(ctx context.Context) (*domain.Asset, error) {
	if !s.settings.SkipVideos() {
		assets, err := s.assets.FetchRandom(ctx, 1)
		if err != nil {
			return nil, fmt.Errorf("fetching random asset: %w", err)
		}
		if len(assets) == 0 {
			return nil, nil
		}
		asset := assets[0]
		return &asset, nil
	}

	sawVideo := false
	for attempt := 0; attempt < RandomMaxAttempts; attempt++ {
		assets, err := s.assets.FetchRandom(ctx, RandomBatchSize)
		if err != nil {
			return nil, fmt.Errorf("fetching random assets: %w", err)
		}
		for i := range assets {
			if assets[i].IsVideo() {
				sawVideo = true
				continue
			}
			asset := assets[i]
			return &asset, nil
		}
	}

	// Only empty batches mean an empty library, not a filtered one: the
	// caller shows the random skip-videos empty message instead of the
	// all-videos error.
	if sawVideo {
		return nil, ErrAllVideos
	}
	return nil, nil
}
