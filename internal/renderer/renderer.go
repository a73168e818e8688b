package renderer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aleister1102/contacthound/internal/common/errorwrapper"
	"github.com/aleister1102/contacthound/internal/config"
	"github.com/aleister1102/contacthound/internal/extractor"
	"github.com/aleister1102/contacthound/internal/models"
	"github.com/aleister1102/contacthound/internal/patterns"
	"github.com/aleister1102/contacthound/internal/rslimiter"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"
)

// ErrRendererDisabled is returned by Render when headless rendering is turned off.
var ErrRendererDisabled = errors.New("headless renderer is disabled")

// readyJS resolves once the document finished loading and the client app put
// some text into the body.
const readyJS = `() => document.readyState === "complete" && !!document.body && document.body.innerText.trim().length > 0`

// Renderer loads client-rendered pages in a headless browser and reads what
// the page shows after it settled.
type Renderer struct {
	cfg     config.RendererConfig
	host    *Host
	ownHost bool
	lib     *patterns.Library
	limiter *rslimiter.ResourceLimiter
	sem     *semaphore.Weighted
	logger  zerolog.Logger
}

// Render opens an isolated session for url, waits for the page to settle and
// returns its body text and anchors. The session is closed on every path.
func (r *Renderer) Render(ctx context.Context, url string) (result models.RenderResult, err error) {
	result.URL = url
	if !r.cfg.Enabled {
		return result, ErrRendererDisabled
	}
	if err := r.limiter.Acquire("render"); err != nil {
		return result, err
	}
	if err := r.sem.Acquire(ctx, 1); err != nil {
		return result, errorwrapper.WrapError(err, "waiting for a render slot")
	}
	defer r.sem.Release(1)

	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("render session panicked: %v", rec)
		}
		if err != nil {
			r.logger.Warn().Err(err).Str("url", url).Msg("Render failed")
			return
		}
		r.logger.Debug().
			Str("url", url).
			Int("text_len", len(result.BodyText)).
			Int("hrefs", len(result.Hrefs)).
			Int("mailto", len(result.Emails)).
			Dur("duration", time.Since(start)).
			Msg("Page rendered")
	}()

	session, err := r.host.Incognito()
	if err != nil {
		return result, err
	}
	defer func() { _ = session.Close() }()

	navCtx, cancel := context.WithTimeout(ctx, r.navTimeout())
	defer cancel()

	page, err := session.Context(navCtx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return result, fmt.Errorf("failed to create page: %w", err)
	}
	defer func() { _ = page.Close() }()

	if r.cfg.UserAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: r.cfg.UserAgent}); err != nil {
			r.logger.Debug().Err(err).Msg("Failed to set user agent")
		}
	}

	if err := page.Navigate(url); err != nil {
		return result, fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		r.logger.Debug().Err(err).Str("url", url).Msg("Load event not observed")
	}

	if err := r.settle(navCtx, page); err != nil {
		return result, err
	}

	body, err := page.Element("body")
	if err != nil {
		return result, fmt.Errorf("body element not found: %w", err)
	}
	if result.BodyText, err = body.Text(); err != nil {
		return result, fmt.Errorf("failed to read body text: %w", err)
	}

	anchors, err := page.Elements("a[href]")
	if err != nil {
		return result, fmt.Errorf("failed to list anchors: %w", err)
	}
	hrefs := make([]string, 0, len(anchors))
	for _, a := range anchors {
		// the href property is already resolved against the document URL
		prop, err := a.Property("href")
		if err != nil {
			continue
		}
		hrefs = append(hrefs, prop.String())
	}
	result.Hrefs, result.Emails = SplitAnchors(hrefs, r.lib)
	return result, nil
}

// settle waits for readiness with a bound and falls back to the fixed delay
// when the condition never becomes true.
func (r *Renderer) settle(ctx context.Context, page *rod.Page) error {
	err := page.Timeout(r.settleTimeout()).Wait(rod.Eval(readyJS))
	if err == nil {
		return nil
	}
	r.logger.Debug().Err(err).Msg("Readiness wait failed, using settle delay")
	return sleepCtx(ctx, time.Duration(r.cfg.SettleDelayMs)*time.Millisecond)
}

func (r *Renderer) navTimeout() time.Duration {
	return time.Duration(r.cfg.NavTimeoutSecs) * time.Second
}

func (r *Renderer) settleTimeout() time.Duration {
	return time.Duration(r.cfg.SettleTimeoutSecs) * time.Second
}

// Close stops the browser process if this renderer started its own host.
func (r *Renderer) Close() {
	if r.ownHost {
		r.host.Close()
	}
}

// SplitAnchors separates mailto targets from navigable links. Mailto addresses
// are cut at the query string and kept only if they pass the strict email pattern.
// A mailto href never counts as a link, even without an address.
func SplitAnchors(hrefs []string, lib *patterns.Library) (links, emails []string) {
	for _, href := range hrefs {
		if extractor.IsMailto(href) {
			if addr, ok := extractor.MailtoAddress(href); ok && lib.IsStrictEmail(addr) {
				emails = append(emails, addr)
			}
			continue
		}
		if href != "" {
			links = append(links, href)
		}
	}
	return links, emails
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return errorwrapper.WrapError(ctx.Err(), "settle delay interrupted")
	case <-timer.C:
		return nil
	}
}

// RendererBuilder builds a Renderer with a fluent interface
type RendererBuilder struct {
	cfg     config.RendererConfig
	host    *Host
	lib     *patterns.Library
	limiter *rslimiter.ResourceLimiter
	logger  zerolog.Logger
}

// NewRendererBuilder creates a builder with default renderer configuration
func NewRendererBuilder(logger zerolog.Logger) *RendererBuilder {
	return &RendererBuilder{
		cfg:    config.NewDefaultRendererConfig(),
		logger: logger.With().Str("component", "Renderer").Logger(),
	}
}

// WithConfig sets the renderer configuration
func (b *RendererBuilder) WithConfig(cfg config.RendererConfig) *RendererBuilder {
	b.cfg = cfg
	return b
}

// WithHost shares an existing browser host. The renderer will not close it.
func (b *RendererBuilder) WithHost(host *Host) *RendererBuilder {
	b.host = host
	return b
}

// WithLibrary overrides the pattern library used to validate mailto targets
func (b *RendererBuilder) WithLibrary(lib *patterns.Library) *RendererBuilder {
	b.lib = lib
	return b
}

// WithResourceLimiter gates each session on system memory
func (b *RendererBuilder) WithResourceLimiter(limiter *rslimiter.ResourceLimiter) *RendererBuilder {
	b.limiter = limiter
	return b
}

// Build creates the Renderer
func (b *RendererBuilder) Build() (*Renderer, error) {
	if b.cfg.PoolSize <= 0 {
		return nil, errorwrapper.NewValidationError("pool_size", b.cfg.PoolSize, "pool size must be positive")
	}
	if b.cfg.NavTimeoutSecs <= 0 || b.cfg.SettleTimeoutSecs <= 0 {
		return nil, errorwrapper.NewValidationError("timeouts", b.cfg.NavTimeoutSecs, "navigation and settle timeouts must be positive")
	}

	lib := b.lib
	if lib == nil {
		lib = patterns.Default()
	}

	host, own := b.host, false
	if host == nil {
		host, own = NewHost(b.cfg, b.logger), true
	}

	return &Renderer{
		cfg:     b.cfg,
		host:    host,
		ownHost: own,
		lib:     lib,
		limiter: b.limiter,
		sem:     semaphore.NewWeighted(int64(b.cfg.PoolSize)),
		logger:  b.logger,
	}, nil
}
