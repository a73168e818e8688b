package renderer

import (
	"fmt"
	"sync"

	"github.com/aleister1102/contacthound/internal/config"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/rs/zerolog"
)

// Host owns one lazily launched browser process. Callers never share pages:
// each session gets its own incognito context from Incognito.
type Host struct {
	cfg      config.RendererConfig
	logger   zerolog.Logger
	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
}

// NewHost creates a host. No browser is started until the first session.
func NewHost(cfg config.RendererConfig, logger zerolog.Logger) *Host {
	return &Host{
		cfg:    cfg,
		logger: logger.With().Str("component", "BrowserHost").Logger(),
	}
}

// Incognito returns a fresh incognito context. The caller must Close it.
func (h *Host) Incognito() (*rod.Browser, error) {
	browser, err := h.ensureBrowser()
	if err != nil {
		return nil, err
	}
	incognito, err := browser.Incognito()
	if err != nil {
		// the process most likely died; relaunch on the next call
		h.reset()
		return nil, fmt.Errorf("failed to create incognito context: %w", err)
	}
	return incognito, nil
}

func (h *Host) ensureBrowser() (*rod.Browser, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.browser != nil {
		return h.browser, nil
	}

	l := launcher.New().
		Headless(true).
		NoSandbox(true).
		Set("disable-dev-shm-usage").
		Set("disable-gpu").
		Set("no-first-run").
		Set("disable-default-apps").
		Set("disable-sync")

	if h.cfg.BrowserPath != "" {
		l = l.Bin(h.cfg.BrowserPath)
	} else if path, found := launcher.LookPath(); found {
		l = l.Bin(path)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		l.Cleanup()
		return nil, fmt.Errorf("failed to connect browser: %w", err)
	}

	h.launcher = l
	h.browser = browser
	h.logger.Info().Str("control_url", controlURL).Msg("Headless browser started")
	return browser, nil
}

func (h *Host) reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closeLocked()
}

// Close terminates the browser process if one was started.
func (h *Host) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.browser != nil {
		h.logger.Info().Msg("Headless browser stopped")
	}
	h.closeLocked()
}

func (h *Host) closeLocked() {
	if h.browser != nil {
		_ = h.browser.Close()
		h.browser = nil
	}
	if h.launcher != nil {
		h.launcher.Kill()
		h.launcher.Cleanup()
		h.launcher = nil
	}
}
