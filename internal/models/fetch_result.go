package models

// RenderingHint classifies a fetched page before any extraction happens.
type RenderingHint int

const (
	HintOK RenderingHint = iota
	HintClientRendered
	HintBlocked
	HintError
)

func (h RenderingHint) String() string {
	switch h {
	case HintOK:
		return "ok"
	case HintClientRendered:
		return "client-rendered"
	case HintBlocked:
		return "blocked"
	default:
		return "error"
	}
}

// FetchResult is the outcome of one static page fetch. Err is set for network
// failures and for non-2xx responses after the header-profile retry.
type FetchResult struct {
	URL    string
	Status int
	Body   []byte
	Hint   RenderingHint
	Err    error
}

// OK reports a usable 2xx response.
func (r FetchResult) OK() bool {
	return r.Err == nil && r.Status >= 200 && r.Status < 300
}

// Unreachable reports a transport failure with no HTTP response at all.
func (r FetchResult) Unreachable() bool {
	return r.Err != nil && r.Status == 0
}
