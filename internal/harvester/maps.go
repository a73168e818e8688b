package harvester

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aleister1102/contacthound/internal/config"
	"github.com/aleister1102/contacthound/internal/renderer"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rs/zerolog"
)

const (
	mapsWebsiteSelector = `a[data-value='Website']`
	mapsFeedSelector    = `div[role='feed']`
	mapsScrollJS        = `() => { this.scrollTop += 600; return this.scrollTop }`
)

// MapsHarvester scrolls a Google Maps search result feed and collects the
// Website buttons of the listed places.
type MapsHarvester struct {
	cfg    config.HarvesterConfig
	host   *renderer.Host
	logger zerolog.Logger
}

// NewMapsHarvester creates a Maps harvester that opens sessions on host.
func NewMapsHarvester(cfg config.HarvesterConfig, host *renderer.Host, logger zerolog.Logger) *MapsHarvester {
	return &MapsHarvester{
		cfg:    cfg,
		host:   host,
		logger: logger.With().Str("component", "MapsHarvester").Logger(),
	}
}

// SearchURL builds the English Maps search page URL for query.
func SearchURL(baseURL, query string) string {
	if baseURL == "" {
		baseURL = config.DefaultHarvesterMapsBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return baseURL + url.QueryEscape(query) + "?hl=en"
}

// Harvest collects up to limit websites. It stops when the feed stops growing
// or after MaxScrolls scrolls.
func (h *MapsHarvester) Harvest(ctx context.Context, query string, limit int) (urls []string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("maps session panicked: %v", rec)
		}
	}()

	session, err := h.host.Incognito()
	if err != nil {
		return nil, err
	}
	defer func() { _ = session.Close() }()

	ctx, cancel := context.WithTimeout(ctx, time.Duration(h.cfg.TimeoutSecs)*time.Second)
	defer cancel()

	page, err := session.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	defer func() { _ = page.Close() }()

	searchURL := SearchURL(h.cfg.MapsBaseURL, query)
	if err := page.Navigate(searchURL); err != nil {
		return nil, fmt.Errorf("failed to open maps search: %w", err)
	}

	if _, err := page.Element(mapsWebsiteSelector); err != nil {
		h.logger.Warn().Err(err).Str("query", query).Msg("No website links found in Maps results")
		return nil, nil
	}
	feed, err := page.Element(mapsFeedSelector)
	if err != nil {
		return nil, fmt.Errorf("results feed not found: %w", err)
	}

	found := newCollector(limit)
	pause := time.Duration(h.cfg.ScrollPauseMs) * time.Millisecond
	lastTop := -1
scrolling:
	for scroll := 0; scroll < h.cfg.MaxScrolls && !found.full(); scroll++ {
		links, err := page.Elements(mapsWebsiteSelector)
		if err != nil {
			break
		}
		for _, link := range links {
			href, err := link.Attribute("href")
			if err != nil || href == nil {
				continue
			}
			found.add(*href)
		}
		if found.full() {
			break
		}

		res, err := feed.Eval(mapsScrollJS)
		if err != nil {
			break
		}
		top := res.Value.Int()
		if top == lastTop {
			h.logger.Debug().Int("scrolls", scroll).Msg("End of results feed")
			break
		}
		lastTop = top

		select {
		case <-ctx.Done():
			break scrolling
		case <-time.After(pause):
		}
	}

	h.logger.Info().Str("query", query).Int("websites", len(found.urls)).Msg("Maps harvest completed")
	return found.urls, nil
}
