package extractor

import (
	"net/url"

	"github.com/BishopFox/jsluice"
	"github.com/rs/zerolog"
)

// ScriptRouteAnalyzer finds URL strings in JavaScript. Client-rendered sites keep
// their routes (/about, /contact) in bundles instead of anchors.
type ScriptRouteAnalyzer struct {
	logger zerolog.Logger
}

// NewScriptRouteAnalyzer creates a new jsluice backed analyzer
func NewScriptRouteAnalyzer(logger zerolog.Logger) *ScriptRouteAnalyzer {
	return &ScriptRouteAnalyzer{
		logger: logger.With().Str("component", "ScriptRouteAnalyzer").Logger(),
	}
}

// Routes returns absolute http(s) URLs referenced by the script, resolved against
// base and deduplicated in first-seen order.
func (a *ScriptRouteAnalyzer) Routes(script []byte, base *url.URL) []string {
	if len(script) == 0 {
		return nil
	}

	found := jsluice.NewAnalyzer(script).GetURLs()
	a.logger.Debug().Int("jsluice_url_count", len(found)).Str("base", base.String()).Msg("Script analysis completed")

	var out []string
	seen := make(map[string]struct{})
	for _, u := range found {
		abs, ok := resolveHTTP(u.URL, base)
		if !ok {
			continue
		}
		if _, dup := seen[abs]; dup {
			continue
		}
		seen[abs] = struct{}{}
		out = append(out, abs)
	}
	return out
}
