package metrics

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/dev-nick421/immich-swipe/internal/core/domain"
	"github.com/dev-nick421/immich-swipe/internal/core/services"
)

type stubAssets struct {
	random    []domain.Asset
	deleteErr error
}

func (s *stubAssets) FetchRandom(ctx context.Context, count int) ([]domain.Asset, error) {
	return s.random, nil
}

func (s *stubAssets) SearchChronological(ctx context.Context, req services.SearchRequest) (services.SearchPage, error) {
	return services.SearchPage{Items: []domain.Asset{{ID: "c", Type: domain.AssetTypePhoto}}}, nil
}

func (s *stubAssets) DeleteAssets(ctx context.Context, ids []string, force bool) error {
	return s.deleteErr
}

func (s *stubAssets) RestoreAssets(ctx context.Context, ids []string) error {
	return nil
}

func (s *stubAssets) AddAssetsToAlbum(ctx context.Context, albumID string, ids []string) error {
	return nil
}

func (s *stubAssets) ListAlbums(ctx context.Context) ([]domain.Album, error) {
	return nil, nil
}

func TestInstrumentedAssetService_CountsOutcomes(t *testing.T) {
	ctx := context.Background()
	stub := &stubAssets{
		random: []domain.Asset{
			{ID: "a", Type: domain.AssetTypePhoto},
			{ID: "b", Type: domain.AssetTypeVideo},
		},
		deleteErr: errors.New("forbidden"),
	}
	reg := prometheus.NewRegistry()
	svc := NewInstrumentedAssetService(stub, reg)

	if _, err := svc.FetchRandom(ctx, 2); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if _, err := svc.SearchChronological(ctx, services.SearchRequest{Take: 1}); err != nil {
		t.Fatalf("search: %v", err)
	}
	if err := svc.DeleteAssets(ctx, []string{"a"}, false); err == nil {
		t.Fatal("expected delete error to pass through")
	}

	if got := testutil.ToFloat64(svc.requests.WithLabelValues("fetch_random", "ok")); got != 1 {
		t.Fatalf("fetch_random ok = %v", got)
	}
	if got := testutil.ToFloat64(svc.requests.WithLabelValues("delete", "error")); got != 1 {
		t.Fatalf("delete error = %v", got)
	}
	if got := testutil.ToFloat64(svc.assets.WithLabelValues(string(domain.AssetTypePhoto))); got != 2 {
		t.Fatalf("photos fetched = %v", got)
	}
	if got := testutil.ToFloat64(svc.assets.WithLabelValues(string(domain.AssetTypeVideo))); got != 1 {
		t.Fatalf("videos fetched = %v", got)
	}
	if n := testutil.CollectAndCount(svc.latency); n != 3 {
		t.Fatalf("expected 3 latency series, got %d", n)
	}
}
