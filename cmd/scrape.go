package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/USDepartmentofLabor/cdf-warn/internal/config"
	"github.com/USDepartmentofLabor/cdf-warn/internal/dispatcher"
	"github.com/USDepartmentofLabor/cdf-warn/internal/metrics"
	qmemory "github.com/USDepartmentofLabor/cdf-warn/internal/queue/memory"
	"github.com/USDepartmentofLabor/cdf-warn/internal/warn"
	"github.com/USDepartmentofLabor/cdf-warn/internal/worker"
)

func newScrapeCmd() *cobra.Command {
	var states []string

	cmd := &cobra.Command{
		Use:   "scrape [abbrev...]",
		Short: "Runs the scrape pipeline over the source registry",
		Long: `Fetches each configured state archive, extracts its notice table,
and writes one output file per state to the output directory.
Positional arguments or --states limit the run to specific states.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScrape(cmd, append(args, states...))
		},
	}

	cmd.Flags().StringSliceVar(&states, "states", nil, "state abbreviations to scrape (default: all)")
	return cmd
}

func runScrape(cmd *cobra.Command, states []string) error {
	cfg, logger, err := loadEnvironment()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	metrics.Init()

	sources, err := config.LoadSources(cfg.Scraper.SourcesFile)
	if err != nil {
		return fmt.Errorf("load sources: %w", err)
	}
	sources, err = filterSources(sources, states)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	deps, cleanup, err := buildWorkerDeps(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	queue := qmemory.New(cfg.Scraper.QueueDepth)
	deps.Queue = queue

	var workers []*worker.Worker
	for i := 0; i < cfg.Scraper.Concurrency; i++ {
		w, err := worker.New(worker.Config{Topic: cfg.PubSub.TopicName}, deps)
		if err != nil {
			return fmt.Errorf("build worker: %w", err)
		}
		workers = append(workers, w)
	}

	d := dispatcher.New(queue, workers, logger)
	d.Submit(sources)

	logger.Info("scrape started",
		zap.Int("sources", len(sources)),
		zap.Int("workers", len(workers)),
	)
	if err := d.Run(ctx); err != nil {
		return fmt.Errorf("run scrape: %w", err)
	}
	logger.Info("scrape finished")
	return nil
}

func filterSources(sources []warn.SourceConfig, states []string) ([]warn.SourceConfig, error) {
	if len(states) == 0 {
		return sources, nil
	}
	byAbbrev := make(map[string]warn.SourceConfig, len(sources))
	for _, src := range sources {
		byAbbrev[strings.ToUpper(src.StateAbbrev)] = src
	}
	var out []warn.SourceConfig
	for _, state := range states {
		src, ok := byAbbrev[strings.ToUpper(strings.TrimSpace(state))]
		if !ok {
			return nil, fmt.Errorf("unknown state %q", state)
		}
		out = append(out, src)
	}
	return out, nil
}
