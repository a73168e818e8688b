package fetcher

import (
	"context"
	"net/http"
	"time"

	"github.com/aleister1102/contacthound/internal/common/errorwrapper"
	"github.com/aleister1102/contacthound/internal/config"
	"github.com/aleister1102/contacthound/internal/models"
	"github.com/aleister1102/contacthound/internal/patterns"
	"github.com/gocolly/colly/v2"
	"github.com/rs/zerolog"
)

// Fetcher performs static GETs with the header fallback strategy and classifies
// each response before anything is extracted from it.
type Fetcher struct {
	collector *colly.Collector
	lib       *patterns.Library
	timeout   time.Duration
	primary   http.Header
	alternate http.Header
	logger    zerolog.Logger
}

type attemptResult struct {
	status int
	body   []byte
	err    error
}

// Fetch fetches url with the configured per-attempt timeout.
func (f *Fetcher) Fetch(ctx context.Context, url string) models.FetchResult {
	return f.FetchTimeout(ctx, url, f.timeout)
}

// FetchTimeout fetches url with a specific per-attempt timeout.
func (f *Fetcher) FetchTimeout(ctx context.Context, url string, timeout time.Duration) models.FetchResult {
	if timeout <= 0 {
		timeout = f.timeout
	}

	res := f.attempt(ctx, url, f.primary, timeout)
	if res.err == nil && ShouldRetryWithAlternate(res.status) {
		f.logger.Debug().Str("url", url).Int("status_code", res.status).Msg("Retrying with alternate header profile")
		res = f.attempt(ctx, url, f.alternate, timeout)
	}

	result := f.classify(url, res)
	switch result.Hint {
	case models.HintError:
		f.logger.Warn().Str("url", url).Int("status_code", result.Status).Err(result.Err).Msg("Page fetch failed")
	case models.HintBlocked:
		f.logger.Warn().Str("url", url).Int("status_code", result.Status).Msg("Anti-bot page detected")
	default:
		f.logger.Debug().Str("url", url).Int("status_code", result.Status).Str("hint", result.Hint.String()).Int("size", len(result.Body)).Msg("Page fetched")
	}
	return result
}

func (f *Fetcher) attempt(ctx context.Context, url string, profile http.Header, timeout time.Duration) attemptResult {
	if err := ctx.Err(); err != nil {
		return attemptResult{err: err}
	}

	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var res attemptResult
	c := f.collector.Clone()
	c.Context = attemptCtx
	c.OnResponse(func(r *colly.Response) {
		res.status = r.StatusCode
		res.body = r.Body
	})
	c.OnError(func(r *colly.Response, err error) {
		if r != nil {
			res.status = r.StatusCode
			res.body = r.Body
		}
		res.err = err
	})

	if err := c.Request(http.MethodGet, url, nil, colly.NewContext(), profile.Clone()); err != nil && res.err == nil {
		res.err = err
	}
	return res
}

func (f *Fetcher) classify(url string, res attemptResult) models.FetchResult {
	result := models.FetchResult{URL: url, Status: res.status, Body: res.body}

	if res.err != nil && res.status == 0 {
		result.Hint = models.HintError
		result.Body = nil
		reason := "request failed"
		if errorwrapper.IsTimeout(res.err) {
			reason = "request timed out"
		}
		result.Err = errorwrapper.NewNetworkError(url, reason, res.err)
		return result
	}

	body := string(res.body)
	if f.lib.HasBlockMarker(body) {
		result.Hint = models.HintBlocked
		result.Err = errorwrapper.WrapError(errorwrapper.ErrBlocked, url)
		return result
	}

	if res.err != nil || res.status < 200 || res.status >= 300 {
		result.Hint = models.HintError
		result.Err = errorwrapper.NewHTTPErrorWithURL(res.status, http.StatusText(res.status), url)
		return result
	}

	if f.lib.HasFrameworkMarker(body) {
		result.Hint = models.HintClientRendered
		return result
	}

	result.Hint = models.HintOK
	return result
}

// FetcherBuilder builds a Fetcher with a fluent interface
type FetcherBuilder struct {
	cfg        config.FetcherConfig
	httpClient *http.Client
	lib        *patterns.Library
	logger     zerolog.Logger
}

// NewFetcherBuilder creates a builder with default fetcher configuration
func NewFetcherBuilder(logger zerolog.Logger) *FetcherBuilder {
	return &FetcherBuilder{
		cfg:    config.NewDefaultFetcherConfig(),
		logger: logger.With().Str("component", "Fetcher").Logger(),
	}
}

// WithConfig sets the fetcher configuration
func (b *FetcherBuilder) WithConfig(cfg config.FetcherConfig) *FetcherBuilder {
	b.cfg = cfg
	return b
}

// WithHTTPClient makes colly send requests through client.
func (b *FetcherBuilder) WithHTTPClient(client *http.Client) *FetcherBuilder {
	b.httpClient = client
	return b
}

// WithLibrary overrides the pattern library used for classification.
func (b *FetcherBuilder) WithLibrary(lib *patterns.Library) *FetcherBuilder {
	b.lib = lib
	return b
}

// Build creates the Fetcher
func (b *FetcherBuilder) Build() (*Fetcher, error) {
	if b.cfg.TimeoutSecs <= 0 {
		return nil, errorwrapper.NewValidationError("timeout_secs", b.cfg.TimeoutSecs, "timeout must be positive")
	}

	lib := b.lib
	if lib == nil {
		lib = patterns.Default()
	}

	c := colly.NewCollector(
		colly.AllowURLRevisit(),
		colly.ParseHTTPErrorResponse(),
	)
	if b.httpClient != nil {
		c.SetClient(b.httpClient)
	}
	c.SetRequestTimeout(b.cfg.Timeout())
	if b.cfg.MaxBodyBytes > 0 {
		c.MaxBodySize = b.cfg.MaxBodyBytes
	}

	primaryUA := b.cfg.PrimaryUserAgent
	if primaryUA == "" {
		primaryUA = config.DefaultFetcherPrimaryUserAgent
	}
	altUA := b.cfg.AltUserAgent
	if altUA == "" {
		altUA = config.DefaultFetcherAltUserAgent
	}

	return &Fetcher{
		collector: c,
		lib:       lib,
		timeout:   b.cfg.Timeout(),
		primary:   primaryProfile(primaryUA),
		alternate: alternateProfile(altUA),
		logger:    b.logger,
	}, nil
}
