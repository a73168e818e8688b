package models

// CandidateSource names the discovery channel that first produced a candidate.
type CandidateSource string

const (
	SourceSitemap    CandidateSource = "sitemap"
	SourceCommonPath CandidateSource = "common-path"
	SourceHyperlink  CandidateSource = "hyperlink"
	SourceRoot       CandidateSource = "root"
)

// CandidatePage is a URL considered for fetching while discovering a root.
type CandidatePage struct {
	URL     string
	Source  CandidateSource
	Visited bool
}
