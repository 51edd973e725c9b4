package swipe

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dev-nick421/immich-swipe/internal/adapters/http/api"
	"github.com/dev-nick421/immich-swipe/internal/adapters/http/immich"
	"github.com/dev-nick421/immich-swipe/internal/adapters/kv/diskv"
	"github.com/dev-nick421/immich-swipe/internal/adapters/metrics"
	"github.com/dev-nick421/immich-swipe/internal/adapters/notify"
	"github.com/dev-nick421/immich-swipe/internal/adapters/queue/memory"
	memoryrepo "github.com/dev-nick421/immich-swipe/internal/adapters/repo/memory"
	mysqlrepo "github.com/dev-nick421/immich-swipe/internal/adapters/repo/mysql"
	"github.com/dev-nick421/immich-swipe/internal/core/services"
)

type TickableQueue interface {
	services.Queue
	Tick(ctx context.Context) (delivered int, requeued int)
	Process(ctx context.Context) int
	PendingCount() int
}

type App struct {
	Handler         http.Handler
	Queue           TickableQueue
	Clock           services.Clock
	Assets          services.AssetService
	Settings        *services.SettingsStore
	Stats           *services.StatsService
	Feed            *notify.Feed
	History         services.ReviewRepository
	HistoryConsumer *services.ReviewHistoryConsumer
	Publisher       *services.ReviewPublisher
	Controller      *services.ReviewController
	Registry        *prometheus.Registry
	Server          string
	User            string

	db *sql.DB
}

type WireOptions struct {
	Clock      services.Clock
	Queue      TickableQueue
	Assets     services.AssetService
	KV         services.KVStore
	History    services.ReviewRepository
	Notifier   services.Notifier
	HTTPClient *http.Client
}

func Wire(cfg Config, opts *WireOptions) (*App, error) {
	if opts == nil {
		opts = &WireOptions{}
	}
	if opts.Assets == nil {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	var clock services.Clock = services.RealClock{}
	if opts.Clock != nil {
		clock = opts.Clock
	}

	var queue TickableQueue
	if opts.Queue != nil {
		queue = opts.Queue
	} else {
		queue = memory.NewInMemoryQueue(clock)
	}

	registry := prometheus.NewRegistry()

	assets := opts.Assets
	if assets == nil {
		httpClient := opts.HTTPClient
		if httpClient == nil {
			httpClient = &http.Client{Timeout: cfg.RequestTimeout}
		}
		client, err := immich.NewHTTPClient(cfg.ServerURL, cfg.APIKey, httpClient)
		if err != nil {
			return nil, err
		}
		assets = client
	}
	assets = metrics.NewInstrumentedAssetService(assets, registry)

	kv := opts.KV
	if kv == nil {
		store, err := diskv.New(cfg.StorePath)
		if err != nil {
			return nil, err
		}
		kv = store
	}

	settings, err := services.NewSettingsStore(kv, cfg.ServerURL, cfg.User, services.Settings{
		Order:      cfg.Order,
		SkipVideos: cfg.SkipVideos,
	})
	if err != nil {
		return nil, err
	}

	stats := services.NewStatsService(kv, cfg.ServerURL, cfg.User)
	if err := stats.Load(); err != nil {
		return nil, err
	}

	// the database is opened last so no later error can leak it
	var db *sql.DB
	history := opts.History
	if history == nil {
		switch cfg.HistoryBackend {
		case HistoryBackendMySQL:
			db, err = openMySQL(cfg.MySQLDSN)
			if err != nil {
				return nil, err
			}
			repo := mysqlrepo.NewReviewRepository(db)
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			err = repo.EnsureSchema(ctx)
			cancel()
			if err != nil {
				db.Close()
				return nil, fmt.Errorf("creating review history schema: %w", err)
			}
			history = repo
		default:
			history = memoryrepo.NewReviewRepository()
		}
	}

	feed := notify.NewFeed(clock, notify.DefaultFeedCapacity)
	var notifier services.Notifier = feed
	if opts.Notifier != nil {
		notifier = notify.Fanout{feed, opts.Notifier}
	}

	publisher := services.NewReviewPublisher(queue, cfg.ServerURL, cfg.User)
	consumer := services.NewReviewHistoryConsumer(history, clock)

	controller := services.NewReviewController(assets, settings, stats, notifier, services.ReviewOptions{
		KeepAlbumID:    cfg.KeepAlbumID,
		PreloadTimeout: cfg.PreloadTimeout,
		Recorder:       publisher,
	})

	handler := api.NewRouter(api.Deps{
		Controller:     controller,
		Settings:       settings,
		Stats:          stats,
		Assets:         assets,
		History:        history,
		Feed:           feed,
		Server:         cfg.ServerURL,
		User:           cfg.User,
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	})

	return &App{
		Handler:         handler,
		Queue:           queue,
		Clock:           clock,
		Assets:          assets,
		Settings:        settings,
		Stats:           stats,
		Feed:            feed,
		History:         history,
		HistoryConsumer: consumer,
		Publisher:       publisher,
		Controller:      controller,
		Registry:        registry,
		Server:          cfg.ServerURL,
		User:            cfg.User,
		db:              db,
	}, nil
}

func (a *App) SubscribeHistory(ctx context.Context) error {
	scope := a.Publisher.Scope()
	return a.Queue.Subscribe(ctx, "history:"+scope, services.ReviewedTopic, scope, a.HistoryConsumer.Handle)
}

// Close waits for background preloads and releases the database.
func (a *App) Close() error {
	a.Controller.Close()
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

func openMySQL(dsn string) (*sql.DB, error) {
	mcfg, err := mysqldriver.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing mysql dsn: %w", err)
	}
	// review timestamps are scanned into time.Time
	mcfg.ParseTime = true

	db, err := sql.Open("mysql", mcfg.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("opening mysql: %w", err)
	}
	return db, nil
}
