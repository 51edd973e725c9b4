package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/dev-nick421/immich-swipe/internal/core/domain"
)

const (
	DefaultPreloadTimeout = 30 * time.Second

	// pager resets racing a foreground fetch are retried this many times
	maxResetRetries = 3
)

var (
	// ErrNoCurrentAsset is returned by Keep and Delete when nothing is shown.
	ErrNoCurrentAsset = errors.New("no asset to review")
	// ErrAdvanceFailed wraps a failed fetch after a keep or delete that was
	// already applied. The state carries the error message.
	ErrAdvanceFailed = errors.New("loading the next asset failed")
)

type Status string

const (
	StatusEmpty   Status = "empty"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusError   Status = "error"
)

type Direction string

const (
	DirectionLeft  Direction = "left"
	DirectionRight Direction = "right"
)

func ParseDirection(s string) (Direction, error) {
	switch d := Direction(s); d {
	case DirectionLeft, DirectionRight:
		return d, nil
	default:
		return "", fmt.Errorf("unknown swipe direction %q", s)
	}
}

// ReviewState is a copy of the controller slots. Only Current is shown.
type ReviewState struct {
	Current *domain.Asset `json:"current"`
	Next    *domain.Asset `json:"next"`
	Status  Status        `json:"status"`
	Message string        `json:"message,omitempty"`
	CanUndo bool          `json:"canUndo"`
}

type ReviewOptions struct {
	// KeepAlbumID turns keep into "add to album"; the album add has to
	// succeed before the queue advances.
	KeepAlbumID    string
	PreloadTimeout time.Duration
	PageSize       int
	Recorder       ReviewRecorder
}

// ReviewController owns the current and next slots. Keep, Delete and Undo
// are expected to be called one at a time; the preload into next runs in the
// background and is dropped when its generation is outdated.
type ReviewController struct {
	assets   AssetService
	settings SettingsSource
	counters Counters
	notifier Notifier
	opts     ReviewOptions

	pager    *ChronologicalPager
	strategy *OrderingStrategy
	undo     *UndoLedger

	ctx         context.Context
	cancel      context.CancelFunc
	unsubscribe func()
	wg          sync.WaitGroup

	mu         sync.Mutex
	current    *domain.Asset
	next       *domain.Asset
	status     Status
	message    string
	session     uint64
	preloadGen  uint64
	preloading  bool
	preloadDone chan struct{}
}

func NewReviewController(assets AssetService, settings SettingsSource, counters Counters, notifier Notifier, opts ReviewOptions) *ReviewController {
	if opts.PreloadTimeout <= 0 {
		opts.PreloadTimeout = DefaultPreloadTimeout
	}
	pager := NewChronologicalPager(assets, opts.PageSize)
	pager.Reset(settings.OrderMode(), settings.SkipVideos())

	ctx, cancel := context.WithCancel(context.Background())
	c := &ReviewController{
		assets:   assets,
		settings: settings,
		counters: counters,
		notifier: notifier,
		opts:     opts,
		pager:    pager,
		strategy: NewOrderingStrategy(assets, settings, pager),
		undo:     NewUndoLedger(),
		ctx:      ctx,
		cancel:   cancel,
		status:   StatusEmpty,
	}
	c.unsubscribe = settings.Subscribe(c.Reset)
	return c
}

// Close stops listening for settings changes and waits for preloads.
func (c *ReviewController) Close() {
	c.unsubscribe()
	c.cancel()
	c.wg.Wait()
}

// Wait blocks until every background preload started so far has finished.
func (c *ReviewController) Wait() {
	c.wg.Wait()
}

func (c *ReviewController) Pager() *ChronologicalPager {
	return c.pager
}

func (c *ReviewController) Ledger() *UndoLedger {
	return c.undo
}

func (c *ReviewController) State() ReviewState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ReviewState{
		Current: copyAsset(c.current),
		Next:    copyAsset(c.next),
		Status:  c.status,
		Message: c.message,
		CanUndo: c.undo.CanUndo(),
	}
}

// LoadInitial discards all review state and loads a fresh current asset.
func (c *ReviewController) LoadInitial(ctx context.Context) error {
	c.mu.Lock()
	c.session++
	c.preloadGen++
	c.preloading = false
	c.current = nil
	c.next = nil
	c.status = StatusLoading
	c.message = ""
	c.pager.Reset(c.settings.OrderMode(), c.settings.SkipVideos())
	c.mu.Unlock()

	c.undo.Clear()
	return c.loadCurrent(ctx)
}

// Reset is run on every settings change. Buffered and preloaded assets are
// discarded; the current asset stays until the user acts on it.
func (c *ReviewController) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pager.Reset(c.settings.OrderMode(), c.settings.SkipVideos())
	c.next = nil
	c.preloadGen++
	c.preloading = false
	if c.current != nil {
		c.startPreloadLocked()
	}
}

func (c *ReviewController) Keep(ctx context.Context) error {
	current := c.currentAsset()
	if current == nil {
		return ErrNoCurrentAsset
	}

	if c.opts.KeepAlbumID != "" {
		if err := c.assets.AddAssetsToAlbum(ctx, c.opts.KeepAlbumID, []string{current.ID}); err != nil {
			c.notifier.Notify(fmt.Sprintf("Could not add to album: %v", err), SeverityError, ErrorNotificationDuration)
			return fmt.Errorf("adding asset %s to album: %w", current.ID, err)
		}
	}

	c.counters.IncrementKept()
	c.notifier.Notify("Kept", SeveritySuccess, SuccessNotificationDuration)
	c.record(ctx, *current, domain.ReviewKept)
	return c.advance(ctx)
}

func (c *ReviewController) Delete(ctx context.Context) error {
	current := c.currentAsset()
	if current == nil {
		return ErrNoCurrentAsset
	}

	if err := c.assets.DeleteAssets(ctx, []string{current.ID}, false); err != nil {
		c.notifier.Notify(fmt.Sprintf("Could not delete: %v", err), SeverityError, ErrorNotificationDuration)
		return fmt.Errorf("deleting asset %s: %w", current.ID, err)
	}

	c.undo.Record(*current)
	c.counters.IncrementDeleted()
	c.notifier.Notify("Moved to trash", SeveritySuccess, SuccessNotificationDuration)
	c.record(ctx, *current, domain.ReviewDeleted)
	return c.advance(ctx)
}

// Undo restores the last deleted asset and shows it again.
func (c *ReviewController) Undo(ctx context.Context) error {
	restored := c.undo.LastDeleted()
	if restored == nil {
		c.notifier.Notify("Nothing to undo", SeverityInfo, InfoNotificationDuration)
		return nil
	}

	if err := c.assets.RestoreAssets(ctx, []string{restored.ID}); err != nil {
		c.notifier.Notify(fmt.Sprintf("Could not restore: %v", err), SeverityError, ErrorNotificationDuration)
		return fmt.Errorf("restoring asset %s: %w", restored.ID, err)
	}

	c.counters.DecrementDeleted()
	c.undo.Clear()
	c.notifier.Notify("Restored", SeveritySuccess, SuccessNotificationDuration)
	c.record(ctx, *restored, domain.ReviewRestored)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = restored
	c.status = StatusReady
	c.message = ""
	if c.next.SameAs(restored) {
		c.next = nil
	}
	// a preload still in flight fills next
	if c.next == nil && !c.preloading {
		c.startPreloadLocked()
	}
	return nil
}

// Commit applies a swipe: right keeps, left deletes.
func (c *ReviewController) Commit(ctx context.Context, dir Direction) error {
	switch dir {
	case DirectionRight:
		return c.Keep(ctx)
	case DirectionLeft:
		return c.Delete(ctx)
	default:
		return fmt.Errorf("unknown swipe direction %q", dir)
	}
}

func (c *ReviewController) currentAsset() *domain.Asset {
	c.mu.Lock()
	defer c.mu.Unlock()
	return copyAsset(c.current)
}

// advance promotes next into current. A preload still in flight is waited
// for so the listing order holds; without a preloaded next it falls back to a
// foreground fetch.
func (c *ReviewController) advance(ctx context.Context) error {
	c.mu.Lock()
	session := c.session
	if c.next == nil {
		c.current = nil
		c.status = StatusLoading
		c.message = ""
	}
	for c.next == nil && c.preloading {
		done := c.preloadDone
		c.mu.Unlock()
		select {
		case <-done:
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", ErrAdvanceFailed, ctx.Err())
		}
		c.mu.Lock()
	}
	if session != c.session {
		c.mu.Unlock()
		return nil
	}
	if c.next != nil {
		c.current = c.next
		c.next = nil
		c.status = StatusReady
		c.message = ""
		c.startPreloadLocked()
		c.mu.Unlock()
		return nil
	}
	c.current = nil
	c.mu.Unlock()

	if err := c.loadCurrent(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrAdvanceFailed, err)
	}
	return nil
}

func (c *ReviewController) loadCurrent(ctx context.Context) error {
	c.mu.Lock()
	session := c.session
	c.status = StatusLoading
	c.mu.Unlock()

	asset, err := c.strategy.NextCandidate(ctx)
	for retry := 0; errors.Is(err, ErrPagerReset) && retry < maxResetRetries; retry++ {
		asset, err = c.strategy.NextCandidate(ctx)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if session != c.session {
		// a newer LoadInitial owns the slots
		return nil
	}

	switch {
	case errors.Is(err, ErrAllVideos):
		c.status = StatusError
		c.message = allVideosMessage
		return err
	case err != nil:
		c.status = StatusError
		c.message = fmt.Sprintf("Failed to load assets: %v", err)
		return err
	case asset == nil:
		c.status = StatusEmpty
		c.message = emptyMessage(c.settings.OrderMode(), c.settings.SkipVideos())
		return nil
	}

	c.current = asset
	c.status = StatusReady
	c.message = ""
	if c.next.SameAs(asset) {
		c.next = nil
	}
	if c.next == nil && !c.preloading {
		c.startPreloadLocked()
	}
	return nil
}

// startPreloadLocked must be called with c.mu held. Any preload still in
// flight becomes stale.
func (c *ReviewController) startPreloadLocked() {
	c.preloadGen++
	c.preloading = true
	gen := c.preloadGen
	done := make(chan struct{})
	c.preloadDone = done

	c.wg.Add(1)
	go c.preload(gen, done)
}

func (c *ReviewController) preload(gen uint64, done chan struct{}) {
	defer c.wg.Done()
	defer close(done)

	ctx, cancel := context.WithTimeout(c.ctx, c.opts.PreloadTimeout)
	defer cancel()

	asset, err := c.strategy.NextCandidate(ctx)
	if err != nil && !errors.Is(err, ErrPagerReset) {
		log.Printf("preload failed: %v", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.preloadGen {
		return
	}
	c.preloading = false
	if err != nil || asset == nil || c.next != nil || asset.SameAs(c.current) {
		return
	}
	c.next = asset
}

func (c *ReviewController) record(ctx context.Context, asset domain.Asset, action domain.ReviewAction) {
	if c.opts.Recorder == nil {
		return
	}
	if err := c.opts.Recorder.Reviewed(ctx, asset, action); err != nil {
		log.Printf("recording %s for %s: %v", action, asset.ID, err)
	}
}

func copyAsset(a *domain.Asset) *domain.Asset {
	if a == nil {
		return nil
	}
	cp := *a
	return &cp
}

const allVideosMessage = `Only videos were found after several tries. Turn off "Skip videos" to review them.`

func emptyMessage(mode domain.OrderMode, skipVideos bool) string {
	switch {
	case mode.Chronological() && skipVideos:
		return `No more photos in this timeline. Videos are skipped; turn off "Skip videos" to include them.`
	case mode.Chronological():
		return "You reached the end of your library in this order."
	case skipVideos:
		return `No photos found. Your library may only contain videos; turn off "Skip videos" to review them.`
	default:
		return "No assets found in your library."
	}
}
