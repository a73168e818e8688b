package discovery

import (
	"sync"

	"github.com/aleister1102/contacthound/internal/models"
)

// Frontier is the visited set of one root, keyed by exact URL string. The first
// source to add a URL owns it; later additions from any channel are ignored.
type Frontier struct {
	mu    sync.Mutex
	index map[string]int
	pages []models.CandidatePage
}

// NewFrontier creates an empty frontier.
func NewFrontier() *Frontier {
	return &Frontier{index: make(map[string]int)}
}

// Add records url as a candidate and reports whether it was new.
func (f *Frontier) Add(url string, source models.CandidateSource) bool {
	if url == "" {
		return false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, seen := f.index[url]; seen {
		return false
	}
	f.index[url] = len(f.pages)
	f.pages = append(f.pages, models.CandidatePage{URL: url, Source: source})
	return true
}

// MarkVisited flags url as fetched. Unknown URLs are ignored.
func (f *Frontier) MarkVisited(url string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if i, ok := f.index[url]; ok {
		f.pages[i].Visited = true
	}
}

// Seen reports whether url was ever added.
func (f *Frontier) Seen(url string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.index[url]
	return ok
}

// Len returns the number of admitted candidates.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pages)
}

// Candidates returns a snapshot in discovery order.
func (f *Frontier) Candidates() []models.CandidatePage {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.CandidatePage, len(f.pages))
	copy(out, f.pages)
	return out
}
