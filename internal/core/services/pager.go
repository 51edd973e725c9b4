package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dev-nick421/immich-swipe/internal/core/domain"
)

const (
	ChronologicalPageSize   = 50
	ChronologicalMaxFetches = 5
)

// ErrPagerReset is returned by Next when a Reset happened while it was
// fetching. The fetched batch belongs to the old listing and was dropped.
var ErrPagerReset = errors.New("chronological pager was reset")

// Cursor is the forward-only position in the sorted remote listing.
type Cursor struct {
	Skip    int
	Page    *int
	HasMore bool
}

// ChronologicalPager walks the chronologically sorted listing page by page and
// hands out one asset at a time from a FIFO buffer.
type ChronologicalPager struct {
	assets   AssetService
	pageSize int

	// fetchMu serializes Next so that concurrent callers never fetch the
	// same page twice.
	fetchMu sync.Mutex

	mu         sync.Mutex
	epoch      uint64
	order      string
	skipVideos bool
	cursor     Cursor
	pending    []domain.Asset
	seen       map[string]struct{}
}

func NewChronologicalPager(assets AssetService, pageSize int) *ChronologicalPager {
	if pageSize <= 0 {
		pageSize = ChronologicalPageSize
	}
	p := &ChronologicalPager{
		assets:   assets,
		pageSize: pageSize,
	}
	p.Reset(domain.OrderChronologicalAscending, false)
	return p
}

// Reset starts a new epoch: the cursor goes back to the beginning, buffered
// assets are discarded and fetches still in flight will be ignored.
func (p *ChronologicalPager) Reset(mode domain.OrderMode, skipVideos bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.epoch++
	p.order = mode.SortOrder()
	p.skipVideos = skipVideos
	p.cursor = Cursor{HasMore: true}
	p.pending = nil
	p.seen = make(map[string]struct{})
}

func (p *ChronologicalPager) Cursor() Cursor {
	p.mu.Lock()
	defer p.mu.Unlock()
	c := p.cursor
	if c.Page != nil {
		page := *c.Page
		c.Page = &page
	}
	return c
}

func (p *ChronologicalPager) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pending)
}

// Next returns the head of the buffer, fetching at most
// ChronologicalMaxFetches pages to refill it. A nil asset with a nil error
// means the listing is exhausted or every fetched page was filtered out.
func (p *ChronologicalPager) Next(ctx context.Context) (*domain.Asset, error) {
	p.fetchMu.Lock()
	defer p.fetchMu.Unlock()

	p.mu.Lock()
	epoch := p.epoch
	p.mu.Unlock()

	for attempt := 0; attempt < ChronologicalMaxFetches; attempt++ {
		asset, ok, err := p.pop(epoch)
		if err != nil || ok {
			return asset, err
		}

		req, more, err := p.nextRequest(epoch)
		if err != nil {
			return nil, err
		}
		if !more {
			return nil, nil
		}

		page, err := p.assets.SearchChronological(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("searching assets: %w", err)
		}

		if err := p.apply(epoch, req, page); err != nil {
			return nil, err
		}
	}

	asset, _, err := p.pop(epoch)
	return asset, err
}

func (p *ChronologicalPager) pop(epoch uint64) (*domain.Asset, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if epoch != p.epoch {
		return nil, false, ErrPagerReset
	}
	if len(p.pending) == 0 {
		return nil, false, nil
	}
	asset := p.pending[0]
	p.pending = p.pending[1:]
	return &asset, true, nil
}

func (p *ChronologicalPager) nextRequest(epoch uint64) (SearchRequest, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if epoch != p.epoch {
		return SearchRequest{}, false, ErrPagerReset
	}
	if !p.cursor.HasMore {
		return SearchRequest{}, false, nil
	}

	req := SearchRequest{
		Take:  p.pageSize,
		Skip:  p.cursor.Skip,
		Order: p.order,
	}
	if p.cursor.Page != nil {
		page := *p.cursor.Page
		req.Page = &page
	}
	if p.skipVideos {
		req.AssetTypes = []domain.AssetType{domain.AssetTypePhoto}
	}
	return req, true, nil
}

// apply folds a raw batch into the cursor and the buffer. HasMore only
// depends on the raw response shape, never on how many items survived the
// filter.
func (p *ChronologicalPager) apply(epoch uint64, req SearchRequest, page SearchPage) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if epoch != p.epoch {
		return ErrPagerReset
	}

	raw := len(page.Items)
	fetchedSoFar := p.cursor.Skip + raw
	p.cursor.Skip = fetchedSoFar

	switch {
	case page.NextPage != nil:
		next := *page.NextPage
		p.cursor.Page = &next
		p.cursor.HasMore = true
	case page.Total != nil && page.Count != nil:
		p.cursor.Page = nil
		// Remotes disagree on whether count is cumulative or per page.
		p.cursor.HasMore = *page.Total > max(*page.Count, fetchedSoFar)
	default:
		p.cursor.Page = nil
		p.cursor.HasMore = raw == req.Take
	}

	for _, asset := range page.Items {
		if p.skipVideos && asset.IsVideo() {
			continue
		}
		if _, dup := p.seen[asset.ID]; dup {
			continue
		}
		p.seen[asset.ID] = struct{}{}
		p.pending = append(p.pending, asset)
	}
	return nil
}
