package harvester

import (
	"context"
	"os"
	"strings"

	"github.com/aleister1102/contacthound/internal/common/errorwrapper"
	"github.com/aleister1102/contacthound/internal/config"
	"github.com/aleister1102/contacthound/internal/httpclient"
	"github.com/aleister1102/contacthound/internal/renderer"
	"github.com/aleister1102/contacthound/internal/urlhandler"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Harvester turns a free-text business query into website root URLs.
// Results are absolute http(s) URLs, deduplicated, at most limit of them.
type Harvester interface {
	Harvest(ctx context.Context, query string, limit int) ([]string, error)
}

// New returns the harvester selected by cfg.Provider. The Maps provider drives
// a browser from host.
func New(cfg config.HarvesterConfig, client *httpclient.HTTPClient, host *renderer.Host, logger zerolog.Logger) (Harvester, error) {
	switch cfg.Provider {
	case "", "places":
		apiKey, err := LoadAPIKey(cfg, logger)
		if err != nil {
			return nil, err
		}
		return NewPlacesHarvester(cfg, apiKey, client, logger), nil
	case "maps":
		if host == nil {
			return nil, errorwrapper.WrapError(errorwrapper.ErrInvalidConfiguration, "maps harvester needs a browser host")
		}
		return NewMapsHarvester(cfg, host, logger), nil
	default:
		return nil, errorwrapper.NewValidationError("provider", cfg.Provider, "unknown harvester provider")
	}
}

// LoadAPIKey reads the key named by cfg.APIKeyEnv, loading cfg.EnvFile first
// when it exists. Variables already set in the environment win.
func LoadAPIKey(cfg config.HarvesterConfig, logger zerolog.Logger) (string, error) {
	if cfg.EnvFile != "" {
		if _, err := os.Stat(cfg.EnvFile); err == nil {
			if err := godotenv.Load(cfg.EnvFile); err != nil {
				logger.Warn().Err(err).Str("env_file", cfg.EnvFile).Msg("Failed to load env file")
			}
		}
	}

	name := cfg.APIKeyEnv
	if name == "" {
		name = config.DefaultHarvesterAPIKeyEnv
	}
	key := strings.TrimSpace(os.Getenv(name))
	if key == "" {
		return "", errorwrapper.WrapError(errorwrapper.ErrInvalidConfiguration, name+" is not set")
	}
	return key, nil
}

// collector keeps the first limit distinct http(s) URLs it is offered.
type collector struct {
	limit int
	seen  map[string]struct{}
	urls  []string
}

func newCollector(limit int) *collector {
	return &collector{limit: limit, seen: make(map[string]struct{})}
}

func (c *collector) add(raw string) {
	u := strings.TrimSpace(raw)
	if c.full() || !urlhandler.IsHTTPURL(u) {
		return
	}
	if _, dup := c.seen[u]; dup {
		return
	}
	c.seen[u] = struct{}{}
	c.urls = append(c.urls, u)
}

func (c *collector) full() bool {
	return c.limit > 0 && len(c.urls) >= c.limit
}
