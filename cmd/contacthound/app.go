package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aleister1102/contacthound/internal/common/errorwrapper"
	"github.com/aleister1102/contacthound/internal/config"
	"github.com/aleister1102/contacthound/internal/discovery"
	"github.com/aleister1102/contacthound/internal/fetcher"
	"github.com/aleister1102/contacthound/internal/harvester"
	"github.com/aleister1102/contacthound/internal/history"
	"github.com/aleister1102/contacthound/internal/httpclient"
	"github.com/aleister1102/contacthound/internal/models"
	"github.com/aleister1102/contacthound/internal/orchestrator"
	"github.com/aleister1102/contacthound/internal/output"
	"github.com/aleister1102/contacthound/internal/renderer"
	"github.com/aleister1102/contacthound/internal/rslimiter"
	"github.com/rs/zerolog"
)

// app holds the wired components of one CLI invocation.
type app struct {
	cfg          *config.GlobalConfig
	client       *httpclient.HTTPClient
	host         *renderer.Host
	renderer     *renderer.Renderer
	orchestrator *orchestrator.Orchestrator
	writer       *output.Writer
	history      *history.DB
	logger       zerolog.Logger

	// newHarvester is swapped in tests
	newHarvester func(cfg config.HarvesterConfig, client *httpclient.HTTPClient, host *renderer.Host, logger zerolog.Logger) (harvester.Harvester, error)
}

func newApp(cfg *config.GlobalConfig, logger zerolog.Logger) (*app, error) {
	client, err := httpclient.NewHTTPClientBuilder(logger).
		WithFetcherConfig(cfg.FetcherConfig).
		WithRetry(httpclient.DefaultRetryPolicy()).
		Build()
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to build HTTP client")
	}

	f, err := fetcher.NewFetcherBuilder(logger).
		WithConfig(cfg.FetcherConfig).
		WithHTTPClient(client.StdClient()).
		Build()
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to build fetcher")
	}

	d, err := discovery.NewDiscovererBuilder(logger).
		WithConfig(cfg.DiscoveryConfig).
		WithFetcher(f).
		Build()
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to build discoverer")
	}

	a := &app{
		cfg:          cfg,
		client:       client,
		logger:       logger,
		newHarvester: harvester.New,
	}

	ob := orchestrator.NewOrchestratorBuilder(logger).
		WithConfig(cfg.EngineConfig).
		WithFetcher(f).
		WithDiscoverer(d)

	if cfg.RendererConfig.Enabled || cfg.HarvesterConfig.Provider == "maps" {
		a.host = renderer.NewHost(cfg.RendererConfig, logger)
	}
	if cfg.RendererConfig.Enabled {
		limiter := rslimiter.NewResourceLimiter(cfg.ResourceLimiterConfig, logger)
		r, err := renderer.NewRendererBuilder(logger).
			WithConfig(cfg.RendererConfig).
			WithHost(a.host).
			WithResourceLimiter(limiter).
			Build()
		if err != nil {
			a.close()
			return nil, errorwrapper.WrapError(err, "failed to build renderer")
		}
		a.renderer = r
		ob = ob.WithRenderer(r)
	}

	if a.orchestrator, err = ob.Build(); err != nil {
		a.close()
		return nil, errorwrapper.WrapError(err, "failed to build orchestrator")
	}

	if a.writer, err = output.NewWriterBuilder(logger).WithConfig(cfg.OutputConfig).Build(); err != nil {
		a.close()
		return nil, errorwrapper.WrapError(err, "failed to build output writer")
	}

	if cfg.HistoryConfig.Enabled {
		db, err := history.NewDB(cfg.HistoryConfig.SQLiteDBPath, logger)
		if err != nil {
			// history is optional, a broken database never blocks a run
			logger.Warn().Err(err).Msg("Run history disabled")
		} else {
			a.history = db
		}
	}
	return a, nil
}

// targets resolves the roots of a run: the single --url, or the harvester's
// results for --keywords.
func (a *app) targets(ctx context.Context, opts scrapeOptions) ([]string, error) {
	if opts.URL != "" {
		return []string{opts.URL}, nil
	}

	h, err := a.newHarvester(a.cfg.HarvesterConfig, a.client, a.host, a.logger)
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to set up harvester")
	}
	urls, err := h.Harvest(ctx, opts.Keywords, opts.Number)
	if err != nil && len(urls) == 0 {
		return nil, errorwrapper.WrapError(err, "harvesting failed")
	}
	if err != nil {
		a.logger.Warn().Err(err).Int("urls", len(urls)).Msg("Harvester stopped early, using partial results")
	}
	if len(urls) == 0 {
		return nil, fmt.Errorf("%w: no websites found for %q", errorwrapper.ErrNoTargets, opts.Keywords)
	}
	return urls, nil
}

// run executes a scrape and returns the records in target order.
func (a *app) run(ctx context.Context, opts scrapeOptions) ([]models.ContactRecord, error) {
	start := time.Now()
	source := "url"
	if opts.Keywords != "" {
		source = a.cfg.HarvesterConfig.Provider
	}

	urls, err := a.targets(ctx, opts)
	if err != nil {
		return nil, err
	}
	a.logger.Info().Int("targets", len(urls)).Str("source", source).Msg("Starting discovery")

	runID := a.recordStart(ctx, source, opts.Keywords, len(urls), start)

	summaries := a.orchestrator.RunSummaries(ctx, urls)
	records := make([]models.ContactRecord, len(summaries))
	for i, sum := range summaries {
		records[i] = sum.Record
	}

	status := history.StatusCompleted
	if errors.Is(ctx.Err(), context.Canceled) {
		status = history.StatusFailed
	}

	var outPath string
	if opts.Log {
		res, err := a.writer.Write(records, opts.Keywords, start)
		if err != nil {
			a.recordCompletion(runID, status, "", summaries)
			return records, errorwrapper.WrapError(err, "failed to save records")
		}
		outPath = res.JSONPath
	}
	a.recordCompletion(runID, status, outPath, summaries)
	return records, nil
}

func (a *app) recordStart(ctx context.Context, source, query string, n int, start time.Time) int64 {
	if a.history == nil {
		return 0
	}
	id, err := a.history.RecordRunStart(ctx, source, query, n, start)
	if err != nil {
		a.logger.Warn().Err(err).Msg("Failed to record run start")
		return 0
	}
	return id
}

func (a *app) recordCompletion(runID int64, status, outPath string, summaries []models.RunSummary) {
	if a.history == nil || runID == 0 {
		return
	}
	// the run context may already be cancelled, history still gets the outcome
	if err := a.history.RecordRunCompletion(context.Background(), runID, time.Now(), status, outPath, summaries); err != nil {
		a.logger.Warn().Err(err).Int64("run_id", runID).Msg("Failed to record run completion")
	}
}

func (a *app) close() {
	if a.renderer != nil {
		a.renderer.Close()
	}
	if a.host != nil {
		a.host.Close()
	}
	if a.history != nil {
		if err := a.history.Close(); err != nil {
			a.logger.Warn().Err(err).Msg("Failed to close history database")
		}
	}
}
