// Package worker runs the scrape pipeline for queued sources.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/USDepartmentofLabor/cdf-warn/internal/adapter"
	"github.com/USDepartmentofLabor/cdf-warn/internal/extract"
	"github.com/USDepartmentofLabor/cdf-warn/internal/joblink"
	"github.com/USDepartmentofLabor/cdf-warn/internal/metrics"
	"github.com/USDepartmentofLabor/cdf-warn/internal/normalize"
	qmemory "github.com/USDepartmentofLabor/cdf-warn/internal/queue/memory"
	"github.com/USDepartmentofLabor/cdf-warn/internal/warn"
)

// Config controls worker behavior.
type Config struct {
	// Topic is the Pub/Sub topic run events are published to.
	Topic string `mapstructure:"topic" yaml:"topic"`
}

// Deps carries the collaborators a worker needs. Browser, Sink, Store,
// Blobs, and Publisher are optional; the pipeline skips the stages whose
// collaborator is nil.
type Deps struct {
	Fetcher   warn.DocumentFetcher
	Browser   warn.DocumentFetcher
	Queue     warn.Queue
	Sink      warn.EntrySink
	Store     warn.EntryStore
	Blobs     warn.BlobStore
	Publisher warn.Publisher
	Hasher    warn.Hasher
	Clock     warn.Clock
	IDs       warn.IDGenerator
	Logger    *zap.Logger
}

// Worker processes queued sources end to end: fetch, extract, clean,
// normalize, emit.
type Worker struct {
	cfg    Config
	deps   Deps
	logger *zap.Logger
}

// New creates a worker.
func New(cfg Config, deps Deps) (*Worker, error) {
	if deps.Fetcher == nil {
		return nil, fmt.Errorf("fetcher is required")
	}
	if deps.Hasher == nil {
		return nil, fmt.Errorf("hasher is required")
	}
	if deps.Clock == nil {
		return nil, fmt.Errorf("clock is required")
	}
	if deps.IDs == nil {
		return nil, fmt.Errorf("id generator is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{cfg: cfg, deps: deps, logger: logger}, nil
}

// Run dequeues sources until the queue closes or the context ends.
func (w *Worker) Run(ctx context.Context) error {
	if w.deps.Queue == nil {
		return fmt.Errorf("queue is required")
	}
	for {
		item, err := w.deps.Queue.Dequeue(ctx)
		if err != nil {
			if errors.Is(err, qmemory.ErrClosed) {
				return nil
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return fmt.Errorf("dequeue: %w", err)
		}

		metrics.WorkerStarted()
		if _, err := w.ProcessSource(ctx, item.Source); err != nil {
			w.logger.Error("source run failed",
				zap.String("state", item.Source.StateAbbrev),
				zap.String("url", item.Source.URL),
				zap.Error(err),
			)
		}
		metrics.WorkerStopped()
	}
}

// ProcessSource runs the full pipeline for one source and returns the
// number of entries emitted.
func (w *Worker) ProcessSource(ctx context.Context, src warn.SourceConfig) (int, error) {
	start := w.deps.Clock.Now()
	logger := w.logger.With(
		zap.String("state", src.StateAbbrev),
		zap.String("url", src.URL),
	)

	table, contentHash, err := w.acquire(ctx, src, logger)
	if err != nil {
		return 0, w.failRun(ctx, src, 0, start, err)
	}

	table = extract.Clean(table)
	if table.Len() == 0 {
		metrics.ObserveStructuralMiss(src.StateAbbrev)
		logger.Warn("no entries extracted")
	}

	emitted := 0
	for _, row := range table.Rows {
		entry, err := w.buildEntry(src, row, contentHash)
		if err != nil {
			return emitted, w.failRun(ctx, src, emitted, start, err)
		}
		if w.deps.Sink != nil {
			if err := w.deps.Sink.Write(ctx, entry); err != nil {
				return emitted, w.failRun(ctx, src, emitted, start, fmt.Errorf("write entry: %w", err))
			}
		}
		if w.deps.Store != nil {
			if err := w.deps.Store.SaveEntry(ctx, entry); err != nil {
				return emitted, w.failRun(ctx, src, emitted, start, fmt.Errorf("save entry: %w", err))
			}
		}
		emitted++
	}

	metrics.ObserveEntries(src.StateAbbrev, emitted)
	metrics.ObserveRun(src.StateAbbrev, "ok", w.deps.Clock.Now().Sub(start).Seconds())
	w.publishEvent(ctx, src, emitted, start, nil)

	logger.Info("source run finished", zap.Int("entries", emitted))
	return emitted, nil
}

// acquire fetches the source document and extracts its raw table. JobLink
// portals are scraped page by page instead of through a single document.
func (w *Worker) acquire(ctx context.Context, src warn.SourceConfig, logger *zap.Logger) (warn.RawTable, string, error) {
	if src.JobLink {
		scraper := joblink.New(w.fetcherFor(src), logger)
		table, err := scraper.Scrape(ctx, src)
		if err != nil {
			return warn.RawTable{}, "", fmt.Errorf("scrape joblink portal: %w", err)
		}
		return table, "", nil
	}

	fetchStart := w.deps.Clock.Now()
	doc, err := w.fetcherFor(src).Fetch(ctx, src.URL)
	elapsed := w.deps.Clock.Now().Sub(fetchStart).Seconds()
	if err != nil {
		metrics.ObserveFetch(src.StateAbbrev, "error", elapsed)
		return warn.RawTable{}, "", fmt.Errorf("fetch source: %w", err)
	}
	metrics.ObserveFetch(src.StateAbbrev, fmt.Sprintf("%d", doc.StatusCode), elapsed)

	hash, err := w.deps.Hasher.Hash(doc.Body)
	if err != nil {
		return warn.RawTable{}, "", fmt.Errorf("hash document: %w", err)
	}

	if w.deps.Blobs != nil {
		path := blobPath(src, doc.FetchedAt)
		uri, err := w.deps.Blobs.PutObject(ctx, path, contentTypeFor(src.Format), doc.Body)
		if err != nil {
			// Losing the raw artifact is not worth losing the run.
			logger.Warn("save raw document failed", zap.Error(err))
		} else {
			logger.Debug("saved raw document", zap.String("uri", uri))
		}
	}

	extractor, err := w.extractorFor(src, logger)
	if err != nil {
		return warn.RawTable{}, "", err
	}
	table, err := extractor.Extract(ctx, doc.Body)
	if err != nil {
		return warn.RawTable{}, "", fmt.Errorf("extract table: %w", err)
	}
	return table, hash, nil
}

func (w *Worker) fetcherFor(src warn.SourceConfig) warn.DocumentFetcher {
	if src.Dynamic && w.deps.Browser != nil {
		return w.deps.Browser
	}
	return w.deps.Fetcher
}

func (w *Worker) extractorFor(src warn.SourceConfig, logger *zap.Logger) (warn.Extractor, error) {
	opts := src.Extract
	opts.State = src.StateAbbrev
	if src.Adapter != "" {
		factory, ok := adapter.Lookup(src.Adapter)
		if !ok {
			return nil, fmt.Errorf("unknown adapter %q", src.Adapter)
		}
		return factory(opts, logger), nil
	}
	extractor, err := extract.New(src.Format, opts, logger)
	if err != nil {
		return nil, fmt.Errorf("build extractor: %w", err)
	}
	return extractor, nil
}

// failRun records a failed source run in the run metrics and the event
// stream before the error propagates.
func (w *Worker) failRun(ctx context.Context, src warn.SourceConfig, emitted int, start time.Time, err error) error {
	metrics.ObserveRun(src.StateAbbrev, "error", w.deps.Clock.Now().Sub(start).Seconds())
	w.publishEvent(ctx, src, emitted, start, err)
	return err
}

func (w *Worker) buildEntry(src warn.SourceConfig, row warn.Row, contentHash string) (warn.Entry, error) {
	id, err := w.deps.IDs.NewID()
	if err != nil {
		return warn.Entry{}, fmt.Errorf("generate entry id: %w", err)
	}
	return warn.Entry{
		ID:               id,
		StateName:        src.StateName,
		StateAbbrev:      src.StateAbbrev,
		Timestamp:        w.deps.Clock.Now(),
		URL:              src.URL,
		ContentHash:      contentHash,
		Fields:           row.Clone(),
		NormalizedFields: normalize.Record(row, src.Fields),
	}, nil
}

func (w *Worker) publishEvent(ctx context.Context, src warn.SourceConfig, entries int, start time.Time, runErr error) {
	if w.deps.Publisher == nil {
		return
	}
	event := warn.RunEvent{
		StateAbbrev: src.StateAbbrev,
		URL:         src.URL,
		Entries:     entries,
		StartedAt:   start,
		FinishedAt:  w.deps.Clock.Now(),
	}
	if runErr != nil {
		event.Error = runErr.Error()
	}
	topic := w.cfg.Topic
	if topic == "" {
		topic = "warn-runs"
	}
	if _, err := w.deps.Publisher.Publish(ctx, topic, event); err != nil {
		w.logger.Warn("publish run event failed",
			zap.String("state", src.StateAbbrev),
			zap.Error(err),
		)
	}
}

func blobPath(src warn.SourceConfig, fetchedAt time.Time) string {
	return fmt.Sprintf("%s/%s%s",
		src.StateAbbrev,
		fetchedAt.UTC().Format("20060102T150405Z"),
		extensionFor(src.Format),
	)
}

func extensionFor(format warn.Format) string {
	switch format.Canonical() {
	case warn.FormatPDF:
		return ".pdf"
	case warn.FormatSpreadsheet:
		return ".xlsx"
	case warn.FormatCSV:
		return ".csv"
	default:
		return ".html"
	}
}

func contentTypeFor(format warn.Format) string {
	switch format.Canonical() {
	case warn.FormatPDF:
		return "application/pdf"
	case warn.FormatSpreadsheet:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case warn.FormatCSV:
		return "text/csv"
	default:
		return "text/html"
	}
}
