package services_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dev-nick421/immich-swipe/internal/adapters/kv/memory"
	"github.com/dev-nick421/immich-swipe/internal/core/domain"
	"github.com/dev-nick421/immich-swipe/internal/core/services"
)

func photo(id string) domain.Asset {
	return domain.Asset{ID: id, Type: domain.AssetTypePhoto, Filename: id + ".jpg"}
}

func video(id string) domain.Asset {
	return domain.Asset{ID: id, Type: domain.AssetTypeVideo, Filename: id + ".mp4"}
}

func photos(prefix string, n int) []domain.Asset {
	out := make([]domain.Asset, n)
	for i := range out {
		out[i] = photo(fmt.Sprintf("%s%d", prefix, i))
	}
	return out
}

func videos(prefix string, n int) []domain.Asset {
	out := make([]domain.Asset, n)
	for i := range out {
		out[i] = video(fmt.Sprintf("%s%d", prefix, i))
	}
	return out
}

func intPtr(n int) *int {
	return &n
}

// gate holds the call with the given 1-based index until released.
type gate struct {
	call    int
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGate(call int) *gate {
	return &gate{
		call:    call,
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (g *gate) hold(n int) {
	if g == nil || n != g.call {
		return
	}
	close(g.entered)
	<-g.release
}

func (g *gate) open() {
	g.once.Do(func() { close(g.release) })
}

func (g *gate) waitEntered(t *testing.T) {
	t.Helper()
	select {
	case <-g.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("gated call never started")
	}
}

// fakeAssets replays scripted random batches and search pages in order.
type fakeAssets struct {
	mu sync.Mutex

	random      [][]domain.Asset
	randomSizes []int
	pages       []services.SearchPage
	searches    []services.SearchRequest
	deleted     []string
	restored    []string
	albumAdds   []string

	randomErr  error
	deleteErr  error
	restoreErr error
	albumErr   error

	// onSearch runs while a search is "in flight".
	onSearch func()

	randomGate *gate
	searchGate *gate
}

func (f *fakeAssets) FetchRandom(ctx context.Context, count int) ([]domain.Asset, error) {
	f.mu.Lock()
	f.randomSizes = append(f.randomSizes, count)
	n := len(f.randomSizes)
	err := f.randomErr
	var batch []domain.Asset
	if err == nil && len(f.random) > 0 {
		batch = f.random[0]
		f.random = f.random[1:]
	}
	g := f.randomGate
	f.mu.Unlock()

	g.hold(n)
	return batch, err
}

func (f *fakeAssets) SearchChronological(ctx context.Context, req services.SearchRequest) (services.SearchPage, error) {
	f.mu.Lock()
	f.searches = append(f.searches, req)
	n := len(f.searches)
	var page services.SearchPage
	if len(f.pages) > 0 {
		page = f.pages[0]
		f.pages = f.pages[1:]
	}
	hook := f.onSearch
	g := f.searchGate
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	g.hold(n)
	return page, nil
}

func (f *fakeAssets) DeleteAssets(ctx context.Context, ids []string, force bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if force {
		return fmt.Errorf("unexpected permanent delete")
	}
	f.deleted = append(f.deleted, ids...)
	return nil
}

func (f *fakeAssets) RestoreAssets(ctx context.Context, ids []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.restoreErr != nil {
		return f.restoreErr
	}
	f.restored = append(f.restored, ids...)
	return nil
}

func (f *fakeAssets) AddAssetsToAlbum(ctx context.Context, albumID string, ids []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.albumErr != nil {
		return f.albumErr
	}
	for _, id := range ids {
		f.albumAdds = append(f.albumAdds, albumID+"/"+id)
	}
	return nil
}

func (f *fakeAssets) ListAlbums(ctx context.Context) ([]domain.Album, error) {
	return nil, nil
}

func (f *fakeAssets) searchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.searches)
}

func (f *fakeAssets) lastSearch() services.SearchRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.searches[len(f.searches)-1]
}

type notification struct {
	message  string
	severity services.Severity
	duration time.Duration
}

type recordingNotifier struct {
	mu    sync.Mutex
	items []notification
}

func (n *recordingNotifier) Notify(message string, severity services.Severity, duration time.Duration) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.items = append(n.items, notification{message: message, severity: severity, duration: duration})
}

func (n *recordingNotifier) last() notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.items) == 0 {
		return notification{}
	}
	return n.items[len(n.items)-1]
}

type harness struct {
	assets     *fakeAssets
	settings   *services.SettingsStore
	stats      *services.StatsService
	notifier   *recordingNotifier
	controller *services.ReviewController
}

func newHarness(t *testing.T, assets *fakeAssets, initial services.Settings, opts services.ReviewOptions) *harness {
	t.Helper()

	kv := memory.NewStore()
	settings, err := services.NewSettingsStore(kv, "https://photos.test", "alice", initial)
	if err != nil {
		t.Fatalf("settings: %v", err)
	}
	stats := services.NewStatsService(kv, "https://photos.test", "alice")
	if err := stats.Load(); err != nil {
		t.Fatalf("stats: %v", err)
	}
	notifier := &recordingNotifier{}

	controller := services.NewReviewController(assets, settings, stats, notifier, opts)
	t.Cleanup(controller.Close)

	return &harness{
		assets:     assets,
		settings:   settings,
		stats:      stats,
		notifier:   notifier,
		controller: controller,
	}
}

func currentID(s services.ReviewState) string {
	if s.Current == nil {
		return ""
	}
	return s.Current.ID
}

func nextID(s services.ReviewState) string {
	if s.Next == nil {
		return ""
	}
	return s.Next.ID
}
