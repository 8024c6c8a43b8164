package cmd

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub"
	"go.uber.org/zap"

	"github.com/USDepartmentofLabor/cdf-warn/internal/clock/system"
	"github.com/USDepartmentofLabor/cdf-warn/internal/config"
	"github.com/USDepartmentofLabor/cdf-warn/internal/database"
	collyfetcher "github.com/USDepartmentofLabor/cdf-warn/internal/fetcher/colly"
	"github.com/USDepartmentofLabor/cdf-warn/internal/fetcher/headless"
	"github.com/USDepartmentofLabor/cdf-warn/internal/hash/sha256"
	"github.com/USDepartmentofLabor/cdf-warn/internal/id/uuid"
	gpubsub "github.com/USDepartmentofLabor/cdf-warn/internal/publisher/pubsub"
	"github.com/USDepartmentofLabor/cdf-warn/internal/sink"
	"github.com/USDepartmentofLabor/cdf-warn/internal/storage"
	"github.com/USDepartmentofLabor/cdf-warn/internal/storage/gcs"
	"github.com/USDepartmentofLabor/cdf-warn/internal/storage/local"
	"github.com/USDepartmentofLabor/cdf-warn/internal/warn"
	"github.com/USDepartmentofLabor/cdf-warn/internal/worker"
)

func newEntrySink(cfg config.Config) (warn.EntrySink, error) {
	if cfg.Output.Format == "csv" {
		return sink.NewCSV(cfg.Output.Dir)
	}
	return sink.NewJSONL(cfg.Output.Dir)
}

// buildWorkerDeps wires the worker collaborators from configuration. The
// returned cleanup closes everything that was opened, in reverse order.
func buildWorkerDeps(ctx context.Context, cfg config.Config, logger *zap.Logger) (worker.Deps, func(), error) {
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	fetcher := collyfetcher.New(collyfetcher.Config{
		UserAgent:     cfg.Scraper.UserAgent,
		RespectRobots: cfg.Scraper.RespectRobots,
		Timeout:       time.Duration(cfg.Scraper.TimeoutSeconds) * time.Second,
	})

	var browser warn.DocumentFetcher = headless.NewNoop()
	if cfg.Headless.Enabled {
		chromedpFetcher, err := headless.NewChromedp(headless.Config{
			MaxParallel:       cfg.Headless.MaxParallel,
			UserAgent:         cfg.Scraper.UserAgent,
			NavigationTimeout: time.Duration(cfg.Headless.NavTimeoutSec) * time.Second,
		})
		if err != nil {
			cleanup()
			return worker.Deps{}, nil, fmt.Errorf("init headless fetcher: %w", err)
		}
		cleanups = append(cleanups, chromedpFetcher.Close)
		browser = chromedpFetcher
	}

	entrySink, err := newEntrySink(cfg)
	if err != nil {
		cleanup()
		return worker.Deps{}, nil, fmt.Errorf("init output sink: %w", err)
	}
	cleanups = append(cleanups, func() {
		if err := entrySink.Close(); err != nil {
			logger.Warn("close output sink", zap.Error(err))
		}
	})

	blobs, err := storage.NewBlobStore(ctx, storage.Config{
		Backend: cfg.Storage.Backend,
		Local:   local.Config{BaseDir: cfg.Storage.BaseDir},
		GCS:     gcs.Config{Bucket: cfg.Storage.GCSBucket},
	})
	if err != nil {
		cleanup()
		return worker.Deps{}, nil, fmt.Errorf("init blob store: %w", err)
	}

	var store warn.EntryStore
	if cfg.DB.DSN != "" {
		entryStore, err := database.NewEntryStore(ctx, database.Config{
			DSN:      cfg.DB.DSN,
			Table:    cfg.DB.Table,
			MaxConns: cfg.DB.MaxConns,
		})
		if err != nil {
			cleanup()
			return worker.Deps{}, nil, fmt.Errorf("init entry store: %w", err)
		}
		cleanups = append(cleanups, entryStore.Close)
		store = entryStore
	}

	var publisher warn.Publisher
	if cfg.PubSub.ProjectID != "" {
		client, err := pubsub.NewClient(ctx, cfg.PubSub.ProjectID)
		if err != nil {
			cleanup()
			return worker.Deps{}, nil, fmt.Errorf("init pubsub client: %w", err)
		}
		pub, err := gpubsub.New(client)
		if err != nil {
			cleanup()
			return worker.Deps{}, nil, fmt.Errorf("init publisher: %w", err)
		}
		cleanups = append(cleanups, pub.Close)
		cleanups = append(cleanups, func() {
			if err := client.Close(); err != nil {
				logger.Warn("close pubsub client", zap.Error(err))
			}
		})
		publisher = pub
	}

	deps := worker.Deps{
		Fetcher:   fetcher,
		Browser:   browser,
		Sink:      entrySink,
		Store:     store,
		Blobs:     blobs,
		Publisher: publisher,
		Hasher:    sha256.New(),
		Clock:     system.New(),
		IDs:       uuid.New(),
		Logger:    logger,
	}
	return deps, cleanup, nil
}
