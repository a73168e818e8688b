package models

// RenderingMode records how a root's content is produced.
type RenderingMode string

const (
	RenderingUnknown        RenderingMode = "unknown"
	RenderingStatic         RenderingMode = "static"
	RenderingClientRendered RenderingMode = "client-rendered"
)

// RootTarget is the top-level URL a ContactRecord is produced for.
// RenderingMode is decided once, from the first static fetch.
type RootTarget struct {
	BaseURL        string
	RenderingMode  RenderingMode
	Blocked        bool
	SitemapPresent bool
}

// NewRootTarget creates a target whose rendering mode is not yet known.
func NewRootTarget(baseURL string) *RootTarget {
	return &RootTarget{BaseURL: baseURL, RenderingMode: RenderingUnknown}
}

// SetRenderingMode sets the mode if it has not been determined yet and reports
// whether it did.
func (t *RootTarget) SetRenderingMode(mode RenderingMode) bool {
	if t.RenderingMode != RenderingUnknown {
		return false
	}
	t.RenderingMode = mode
	return true
}
