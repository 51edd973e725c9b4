package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dev-nick421/immich-swipe/internal/core/domain"
	"github.com/dev-nick421/immich-swipe/internal/core/services"
)

// InstrumentedAssetService counts and times every call to the remote
// service.
type InstrumentedAssetService struct {
	next     services.AssetService
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	assets   *prometheus.CounterVec
}

func NewInstrumentedAssetService(next services.AssetService, reg prometheus.Registerer) *InstrumentedAssetService {
	s := &InstrumentedAssetService{
		next: next,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "immich_swipe",
			Name:      "remote_requests_total",
			Help:      "Requests sent to the photo library, by operation and outcome.",
		}, []string{"op", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "immich_swipe",
			Name:      "remote_request_duration_seconds",
			Help:      "Latency of requests sent to the photo library.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		assets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "immich_swipe",
			Name:      "remote_assets_fetched_total",
			Help:      "Assets returned by the photo library, by media type.",
		}, []string{"type"}),
	}
	if reg != nil {
		reg.MustRegister(s.requests, s.latency, s.assets)
	}
	return s
}

func (s *InstrumentedAssetService) observe(op string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	s.requests.WithLabelValues(op, outcome).Inc()
	s.latency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func (s *InstrumentedAssetService) countAssets(assets []domain.Asset) {
	for _, a := range assets {
		s.assets.WithLabelValues(string(a.Type)).Inc()
	}
}

func (s *InstrumentedAssetService) FetchRandom(ctx context.Context, count int) ([]domain.Asset, error) {
	start := time.Now()
	assets, err := s.next.FetchRandom(ctx, count)
	s.observe("fetch_random", start, err)
	s.countAssets(assets)
	return assets, err
}

func (s *InstrumentedAssetService) SearchChronological(ctx context.Context, req services.SearchRequest) (services.SearchPage, error) {
	start := time.Now()
	page, err := s.next.SearchChronological(ctx, req)
	s.observe("search_chronological", start, err)
	s.countAssets(page.Items)
	return page, err
}

func (s *InstrumentedAssetService) DeleteAssets(ctx context.Context, ids []string, force bool) error {
	start := time.Now()
	err := s.next.DeleteAssets(ctx, ids, force)
	s.observe("delete", start, err)
	return err
}

func (s *InstrumentedAssetService) RestoreAssets(ctx context.Context, ids []string) error {
	start := time.Now()
	err := s.next.RestoreAssets(ctx, ids)
	s.observe("restore", start, err)
	return err
}

func (s *InstrumentedAssetService) AddAssetsToAlbum(ctx context.Context, albumID string, ids []string) error {
	start := time.Now()
	err := s.next.AddAssetsToAlbum(ctx, albumID, ids)
	s.observe("add_to_album", start, err)
	return err
}

func (s *InstrumentedAssetService) ListAlbums(ctx context.Context) ([]domain.Album, error) {
	start := time.Now()
	albums, err := s.next.ListAlbums(ctx)
	s.observe("list_albums", start, err)
	return albums, err
}
