package models

// RenderResult holds what a headless session could read after the page settled.
// Emails carries validated mailto targets.
type RenderResult struct {
	URL      string
	BodyText string
	Hrefs    []string
	Emails   []string
}
