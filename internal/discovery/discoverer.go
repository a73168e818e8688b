package discovery

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aleister1102/contacthound/internal/common/errorwrapper"
	"github.com/aleister1102/contacthound/internal/config"
	"github.com/aleister1102/contacthound/internal/extractor"
	"github.com/aleister1102/contacthound/internal/models"
	"github.com/aleister1102/contacthound/internal/patterns"
	"github.com/aleister1102/contacthound/internal/urlhandler"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// maxScriptFetches bounds how many linked bundles of a client-rendered root are
// downloaded for route analysis.
const maxScriptFetches = 3

// PageFetcher is the static fetch contract discovery relies on.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) models.FetchResult
	FetchTimeout(ctx context.Context, url string, timeout time.Duration) models.FetchResult
}

// Seed is what is known about a root when discovery starts.
type Seed struct {
	Root *models.RootTarget
	// Page is the parsed static root body; nil when the root could not be parsed.
	Page *extractor.Page
	// Hrefs are extra anchors, such as those read from a rendered session.
	Hrefs []string
}

// Report summarizes one discovery pass.
type Report struct {
	SitemapPresent bool
	Requests       int
	PagesFetched   int
	// Halted is set when a candidate answered with an anti-bot page.
	Halted     bool
	Candidates []models.CandidatePage
}

// Discoverer expands a root into its bounded candidate set and feeds every
// usable page into the root's Store.
type Discoverer struct {
	fetcher     PageFetcher
	lib         *patterns.Library
	scripts     *extractor.ScriptRouteAnalyzer
	cfg         config.DiscoveryConfig
	commonPaths []string
	logger      zerolog.Logger
}

type run struct {
	*Discoverer
	root       *models.RootTarget
	frontier   *Frontier
	store      *extractor.Store
	limiter    *rate.Limiter
	hyperlinks atomic.Int32
	requests   atomic.Int32
	fetched    atomic.Int32
	halted     atomic.Bool
	logger     zerolog.Logger
}

// Discover runs sitemap, common-path and hyperlink discovery for seed.Root.
// The root URL itself is assumed fetched already and is never requested again.
func (d *Discoverer) Discover(ctx context.Context, seed Seed, store *extractor.Store) Report {
	r := &run{
		Discoverer: d,
		root:       seed.Root,
		frontier:   NewFrontier(),
		store:      store,
		logger:     d.logger.With().Str("root", seed.Root.BaseURL).Logger(),
	}
	if d.cfg.RequestsPerSecond > 0 {
		r.limiter = rate.NewLimiter(rate.Limit(d.cfg.RequestsPerSecond), 1)
	}

	r.frontier.Add(seed.Root.BaseURL, models.SourceRoot)
	r.frontier.MarkVisited(seed.Root.BaseURL)

	var wave []string
	wave = append(wave, r.probeSitemap(ctx)...)
	wave = append(wave, r.commonPathCandidates()...)
	if seed.Page != nil {
		wave = append(wave, r.qualify(seed.Page.Anchors())...)
		if d.cfg.ScriptRoutes && seed.Root.RenderingMode == models.RenderingClientRendered {
			wave = append(wave, r.qualify(r.scriptRoutes(ctx, seed.Page))...)
		}
	}
	wave = append(wave, r.qualify(seed.Hrefs)...)

	depth := 0
	for len(wave) > 0 && !r.halted.Load() && ctx.Err() == nil {
		r.logger.Debug().Int("depth", depth).Int("candidates", len(wave)).Msg("Fetching candidate wave")
		wave = r.fetchWave(ctx, wave)
		depth++
	}

	report := Report{
		SitemapPresent: seed.Root.SitemapPresent,
		Requests:       int(r.requests.Load()),
		PagesFetched:   int(r.fetched.Load()),
		Halted:         r.halted.Load(),
		Candidates:     r.frontier.Candidates(),
	}
	r.logger.Info().
		Bool("sitemap_present", report.SitemapPresent).
		Int("candidates", len(report.Candidates)).
		Int("requests", report.Requests).
		Int("pages_fetched", report.PagesFetched).
		Bool("halted", report.Halted).
		Msg("Discovery finished")
	return report
}

// probeSitemap returns the capped about-style URLs of the first sitemap that answers 2xx.
func (r *run) probeSitemap(ctx context.Context) []string {
	for _, path := range sitemapPaths {
		sitemapURL := r.root.BaseURL + path
		if !r.frontier.Add(sitemapURL, models.SourceSitemap) {
			continue
		}
		res, ok := r.fetch(ctx, sitemapURL, r.cfg.SitemapTimeout())
		if !ok {
			return nil
		}
		if res.Hint == models.HintBlocked {
			r.halt(sitemapURL)
			return nil
		}
		if !res.OK() {
			continue
		}

		r.root.SitemapPresent = true
		r.fetched.Add(1)
		body := string(res.Body)
		r.store.IngestPermissive(body)

		matches := r.lib.MatchAboutPaths(body)
		if r.cfg.SitemapCap > 0 && len(matches) > r.cfg.SitemapCap {
			matches = matches[:r.cfg.SitemapCap]
		}
		var out []string
		for _, m := range matches {
			if !strings.Contains(m, "://") {
				m = "https://" + m
			}
			if r.frontier.Add(m, models.SourceSitemap) {
				out = append(out, m)
			}
		}
		r.logger.Debug().Str("sitemap", sitemapURL).Int("matches", len(out)).Msg("Sitemap parsed")
		return out
	}
	return nil
}

func (r *run) commonPathCandidates() []string {
	var out []string
	for _, suffix := range r.commonPaths {
		u := r.root.BaseURL + suffix
		if r.frontier.Add(u, models.SourceCommonPath) {
			out = append(out, u)
		}
	}
	return out
}

// qualify admits keyword-matching hrefs into the frontier, at most
// HyperlinkCapPerPage new ones per call and MaxHyperlinkPages per root.
func (r *run) qualify(hrefs []string) []string {
	var out []string
	for _, href := range hrefs {
		if r.cfg.HyperlinkCapPerPage > 0 && len(out) >= r.cfg.HyperlinkCapPerPage {
			break
		}
		if !urlhandler.IsHTTPURL(href) || !r.lib.MatchesHyperlinkKeyword(href) {
			continue
		}
		if r.cfg.SameSiteOnly && !urlhandler.SameSite(href, r.root.BaseURL) {
			continue
		}
		if r.frontier.Seen(href) {
			continue
		}
		if r.cfg.MaxHyperlinkPages > 0 && int(r.hyperlinks.Add(1)) > r.cfg.MaxHyperlinkPages {
			r.hyperlinks.Add(-1)
			break
		}
		if r.frontier.Add(href, models.SourceHyperlink) {
			out = append(out, href)
		} else {
			r.hyperlinks.Add(-1)
		}
	}
	return out
}

// scriptRoutes finds routes in the inline scripts and a few same-site bundles of
// a client-rendered root.
func (r *run) scriptRoutes(ctx context.Context, page *extractor.Page) []string {
	routes := r.scripts.Routes(page.InlineScripts(), page.URL)

	fetchedScripts := 0
	for _, src := range page.ScriptSources() {
		if fetchedScripts >= maxScriptFetches {
			break
		}
		if !urlhandler.SameSite(src, r.root.BaseURL) {
			continue
		}
		fetchedScripts++
		res, ok := r.fetch(ctx, src, 0)
		if !ok {
			break
		}
		if res.Err != nil || len(res.Body) == 0 {
			continue
		}
		routes = append(routes, r.scripts.Routes(res.Body, page.URL)...)
	}
	return routes
}

// fetchWave fetches one generation of candidates concurrently and returns the
// hyperlinks they contributed.
func (r *run) fetchWave(ctx context.Context, wave []string) []string {
	var (
		mu   sync.Mutex
		next []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(r.cfg.Fanout, 1))
	for _, u := range wave {
		if gctx.Err() != nil || r.halted.Load() {
			break
		}
		g.Go(func() error {
			links := r.process(gctx, u)
			if len(links) > 0 {
				mu.Lock()
				next = append(next, links...)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return next
}

// process fetches one candidate, ingests it and returns its newly admitted links.
// Failures only mean the page contributes nothing.
func (r *run) process(ctx context.Context, candidate string) []string {
	if r.halted.Load() {
		return nil
	}
	res, ok := r.fetch(ctx, candidate, 0)
	if !ok {
		return nil
	}

	switch res.Hint {
	case models.HintBlocked:
		r.halt(candidate)
		return nil
	case models.HintError:
		return nil
	}
	r.fetched.Add(1)

	// framework markers only decide rendering for the root, a 2xx candidate is always ingested
	added := r.store.IngestPermissive(string(res.Body))
	page, err := extractor.ParsePage(candidate, res.Body)
	if err != nil {
		r.logger.Debug().Err(err).Str("url", candidate).Msg("Could not parse candidate page")
		return nil
	}
	for _, addr := range page.MailtoTargets() {
		if r.store.AddEmail(addr) {
			added++
		}
	}
	if added > 0 {
		r.logger.Debug().Str("url", candidate).Int("new_entries", added).Msg("Contacts extracted")
	}
	return r.qualify(page.Anchors())
}

// fetch applies pacing and bookkeeping around a single request. A zero timeout
// uses the fetcher default. It returns false when the context is done.
func (r *run) fetch(ctx context.Context, u string, timeout time.Duration) (models.FetchResult, bool) {
	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return models.FetchResult{}, false
		}
	}
	if ctx.Err() != nil {
		return models.FetchResult{}, false
	}

	r.requests.Add(1)
	var res models.FetchResult
	if timeout > 0 {
		res = r.fetcher.FetchTimeout(ctx, u, timeout)
	} else {
		res = r.fetcher.Fetch(ctx, u)
	}
	r.frontier.MarkVisited(u)
	return res, true
}

func (r *run) halt(u string) {
	if r.halted.CompareAndSwap(false, true) {
		r.logger.Warn().Str("url", u).Msg("Anti-bot page during discovery, no further requests for this root")
	}
}

// DiscovererBuilder builds a Discoverer with a fluent interface
type DiscovererBuilder struct {
	cfg     config.DiscoveryConfig
	fetcher PageFetcher
	lib     *patterns.Library
	logger  zerolog.Logger
}

// NewDiscovererBuilder creates a builder with default discovery configuration
func NewDiscovererBuilder(logger zerolog.Logger) *DiscovererBuilder {
	return &DiscovererBuilder{
		cfg:    config.NewDefaultDiscoveryConfig(),
		logger: logger.With().Str("component", "Discoverer").Logger(),
	}
}

// WithConfig sets the discovery configuration
func (b *DiscovererBuilder) WithConfig(cfg config.DiscoveryConfig) *DiscovererBuilder {
	b.cfg = cfg
	return b
}

// WithFetcher sets the page fetcher
func (b *DiscovererBuilder) WithFetcher(f PageFetcher) *DiscovererBuilder {
	b.fetcher = f
	return b
}

// WithLibrary overrides the pattern library
func (b *DiscovererBuilder) WithLibrary(lib *patterns.Library) *DiscovererBuilder {
	b.lib = lib
	return b
}

// Build creates the Discoverer
func (b *DiscovererBuilder) Build() (*Discoverer, error) {
	if b.fetcher == nil {
		return nil, errorwrapper.NewValidationError("fetcher", nil, "page fetcher is required")
	}

	lib := b.lib
	if lib == nil {
		lib = patterns.Default()
	}

	commonPaths := b.cfg.CommonPaths
	if len(commonPaths) == 0 {
		commonPaths = DefaultCommonPaths
	}

	return &Discoverer{
		fetcher:     b.fetcher,
		lib:         lib,
		scripts:     extractor.NewScriptRouteAnalyzer(b.logger),
		cfg:         b.cfg,
		commonPaths: commonPaths,
		logger:      b.logger,
	}, nil
}
