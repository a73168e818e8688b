package orchestrator

import (
	"context"
	"strings"
	"time"

	"github.com/aleister1102/contacthound/internal/common/errorwrapper"
	"github.com/aleister1102/contacthound/internal/config"
	"github.com/aleister1102/contacthound/internal/discovery"
	"github.com/aleister1102/contacthound/internal/extractor"
	"github.com/aleister1102/contacthound/internal/models"
	"github.com/aleister1102/contacthound/internal/patterns"
	"github.com/aleister1102/contacthound/internal/urlhandler"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Renderer is the headless fallback for client-rendered roots.
type Renderer interface {
	Render(ctx context.Context, url string) (models.RenderResult, error)
}

// Orchestrator runs the per-root discovery state machine and fans roots out
// with bounded parallelism. Roots share no mutable state.
type Orchestrator struct {
	fetcher    discovery.PageFetcher
	discoverer *discovery.Discoverer
	renderer   Renderer
	lib        *patterns.Library
	cfg        config.EngineConfig
	logger     zerolog.Logger
}

// Run discovers every root and returns their records in input order.
func (o *Orchestrator) Run(ctx context.Context, urls []string) []models.ContactRecord {
	summaries := o.RunSummaries(ctx, urls)
	records := make([]models.ContactRecord, len(summaries))
	for i, s := range summaries {
		records[i] = s.Record
	}
	return records
}

// RunSummaries is Run with per-root run details.
func (o *Orchestrator) RunSummaries(ctx context.Context, urls []string) []models.RunSummary {
	summaries := make([]models.RunSummary, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(o.cfg.Concurrency, 1))
	for i, u := range urls {
		g.Go(func() error {
			summaries[i] = o.DiscoverWithSummary(gctx, u)
			return nil
		})
	}
	_ = g.Wait()

	o.logger.Info().Int("roots", len(urls)).Msg("All roots processed")
	return summaries
}

// Discover produces the contact record of a single root.
func (o *Orchestrator) Discover(ctx context.Context, rawURL string) models.ContactRecord {
	return o.DiscoverWithSummary(ctx, rawURL).Record
}

// DiscoverWithSummary runs INIT -> FETCHED -> {STATIC_MODE | RENDER_MODE | BLOCKED |
// UNREACHABLE} -> DISCOVERING -> EXTRACTING -> DONE for one root. Failures of any
// page only shrink the record; they never escape as errors.
func (o *Orchestrator) DiscoverWithSummary(ctx context.Context, rawURL string) models.RunSummary {
	start := time.Now()
	website := strings.TrimSpace(rawURL)
	logger := o.logger.With().Str("website", website).Logger()
	sm := newStateMachine(logger)
	store := extractor.NewStore(website, o.lib)

	summary := models.RunSummary{Website: website, RenderingMode: models.RenderingUnknown}
	finish := func() models.RunSummary {
		if sm.current < models.StateExtracting {
			sm.advance(models.StateExtracting)
		}
		summary.Record = store.Finalize()
		sm.advance(models.StateDone)
		summary.Outcome = sm.outcome
		summary.FinalState = sm.current
		summary.Duration = time.Since(start)
		logger.Info().
			Str("outcome", summary.Outcome.String()).
			Str("rendering_mode", string(summary.RenderingMode)).
			Int("pages_fetched", summary.PagesFetched).
			Int("emails", len(summary.Record.Emails)).
			Int("numbers", len(summary.Record.Numbers)).
			Dur("duration", summary.Duration).
			Msg("Root finished")
		return summary
	}

	base, err := urlhandler.NormalizeBaseURL(website)
	if err != nil {
		logger.Warn().Err(err).Msg("Invalid root URL")
		sm.advance(models.StateUnreachable)
		return finish()
	}

	target := models.NewRootTarget(base)
	res := o.fetcher.Fetch(ctx, base)
	sm.advance(models.StateFetched)

	var seed discovery.Seed
	seed.Root = target

	switch {
	case res.Hint == models.HintBlocked:
		target.Blocked = true
		sm.advance(models.StateBlocked)
		logger.Warn().Int("status_code", res.Status).Msg("Root is behind an anti-bot page, skipping discovery")
		return finish()

	case res.Unreachable():
		sm.advance(models.StateUnreachable)
		logger.Warn().Err(res.Err).Msg("Root unreachable")
		return finish()

	case res.Hint == models.HintClientRendered:
		target.SetRenderingMode(models.RenderingClientRendered)
		sm.advance(models.StateRenderMode)
		summary.PagesFetched++
		seed.Page = o.parseRoot(logger, base, res.Body)
		if rendered, ok := o.render(ctx, logger, base); ok {
			summary.Rendered = true
			store.Ingest(rendered.BodyText)
			for _, addr := range rendered.Emails {
				store.AddEmail(addr)
			}
			seed.Hrefs = rendered.Hrefs
		}

	default:
		target.SetRenderingMode(models.RenderingStatic)
		sm.advance(models.StateStaticMode)
		if res.OK() {
			summary.PagesFetched++
			store.IngestPermissive(string(res.Body))
			seed.Page = o.parseRoot(logger, base, res.Body)
			if seed.Page != nil {
				for _, addr := range seed.Page.MailtoTargets() {
					store.AddEmail(addr)
				}
			}
		} else {
			logger.Info().Int("status_code", res.Status).Msg("Root answered with an error status, probing candidates anyway")
		}
	}
	summary.RenderingMode = target.RenderingMode

	sm.advance(models.StateDiscovering)
	report := o.discoverer.Discover(ctx, seed, store)
	summary.PagesFetched += report.PagesFetched

	return finish()
}

func (o *Orchestrator) parseRoot(logger zerolog.Logger, base string, body []byte) *extractor.Page {
	page, err := extractor.ParsePage(base, body)
	if err != nil {
		logger.Debug().Err(err).Msg("Could not parse root page")
		return nil
	}
	return page
}

func (o *Orchestrator) render(ctx context.Context, logger zerolog.Logger, base string) (models.RenderResult, bool) {
	if o.renderer == nil {
		logger.Info().Msg("Root is client-rendered but no renderer is configured")
		return models.RenderResult{}, false
	}
	rendered, err := o.renderer.Render(ctx, base)
	if err != nil {
		logger.Warn().Err(err).Msg("Rendered pass contributed nothing")
		return models.RenderResult{}, false
	}
	return rendered, true
}

// OrchestratorBuilder builds an Orchestrator with a fluent interface
type OrchestratorBuilder struct {
	cfg        config.EngineConfig
	fetcher    discovery.PageFetcher
	discoverer *discovery.Discoverer
	renderer   Renderer
	lib        *patterns.Library
	logger     zerolog.Logger
}

// NewOrchestratorBuilder creates a builder with default engine configuration
func NewOrchestratorBuilder(logger zerolog.Logger) *OrchestratorBuilder {
	return &OrchestratorBuilder{
		cfg:    config.NewDefaultEngineConfig(),
		logger: logger.With().Str("component", "Orchestrator").Logger(),
	}
}

// WithConfig sets the engine configuration
func (b *OrchestratorBuilder) WithConfig(cfg config.EngineConfig) *OrchestratorBuilder {
	b.cfg = cfg
	return b
}

// WithFetcher sets the fetcher used for root pages
func (b *OrchestratorBuilder) WithFetcher(f discovery.PageFetcher) *OrchestratorBuilder {
	b.fetcher = f
	return b
}

// WithDiscoverer sets the candidate discoverer
func (b *OrchestratorBuilder) WithDiscoverer(d *discovery.Discoverer) *OrchestratorBuilder {
	b.discoverer = d
	return b
}

// WithRenderer sets the headless fallback. Without one, client-rendered roots
// only get candidate discovery.
func (b *OrchestratorBuilder) WithRenderer(r Renderer) *OrchestratorBuilder {
	b.renderer = r
	return b
}

// WithLibrary overrides the pattern library
func (b *OrchestratorBuilder) WithLibrary(lib *patterns.Library) *OrchestratorBuilder {
	b.lib = lib
	return b
}

// Build creates the Orchestrator
func (b *OrchestratorBuilder) Build() (*Orchestrator, error) {
	if b.fetcher == nil {
		return nil, errorwrapper.NewValidationError("fetcher", nil, "page fetcher is required")
	}
	if b.discoverer == nil {
		return nil, errorwrapper.NewValidationError("discoverer", nil, "discoverer is required")
	}

	lib := b.lib
	if lib == nil {
		lib = patterns.Default()
	}

	return &Orchestrator{
		fetcher:    b.fetcher,
		discoverer: b.discoverer,
		renderer:   b.renderer,
		lib:        lib,
		cfg:        b.cfg,
		logger:     b.logger,
	}, nil
}
