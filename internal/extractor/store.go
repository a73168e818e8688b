package extractor

import (
	"strings"
	"sync"

	"github.com/aleister1102/contacthound/internal/models"
	"github.com/aleister1102/contacthound/internal/patterns"
)

// Store accumulates the contact sets of one root. It is owned by a single run and
// guarded by a mutex so discovery fan-out can ingest concurrently.
type Store struct {
	mu        sync.Mutex
	website   string
	lib       *patterns.Library
	emails    map[string]struct{}
	phones    map[string]struct{}
	finalized *models.ContactRecord
}

// NewStore creates an empty store for website. A nil library selects patterns.Default().
func NewStore(website string, lib *patterns.Library) *Store {
	if lib == nil {
		lib = patterns.Default()
	}
	return &Store{
		website: website,
		lib:     lib,
		emails:  make(map[string]struct{}),
		phones:  make(map[string]struct{}),
	}
}

// Ingest folds strict emails and phones found in text into the sets and returns
// how many entries were new. Ingesting the same text twice adds nothing.
func (s *Store) Ingest(text string) int {
	return s.ingest(text, patterns.ModeStrict)
}

// IngestPermissive is Ingest with obfuscated email forms accepted.
func (s *Store) IngestPermissive(text string) int {
	return s.ingest(text, patterns.ModePermissive)
}

func (s *Store) ingest(text string, mode patterns.Mode) int {
	if text == "" {
		return 0
	}
	emails := s.lib.MatchEmails(text, mode)
	phones := s.lib.MatchPhones(text)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finalized != nil {
		return 0
	}
	return addAll(s.emails, emails) + addAll(s.phones, phones)
}

// AddEmail adds a single address after strict validation, lowercased.
func (s *Store) AddEmail(addr string) bool {
	email := strings.ToLower(strings.TrimSpace(addr))
	if !s.lib.IsStrictEmail(email) {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finalized != nil {
		return false
	}
	return addAll(s.emails, []string{email}) == 1
}

// Counts returns the current set sizes.
func (s *Store) Counts() (emails, phones int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.emails), len(s.phones)
}

// Finalize freezes the store and returns the sorted record. Later calls return
// the same record and later ingests are ignored.
func (s *Store) Finalize() models.ContactRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finalized == nil {
		record := models.NewContactRecord(s.website, keys(s.emails), keys(s.phones))
		s.finalized = &record
	}
	return *s.finalized
}

func addAll(set map[string]struct{}, values []string) int {
	added := 0
	for _, v := range values {
		if _, ok := set[v]; ok {
			continue
		}
		set[v] = struct{}{}
		added++
	}
	return added
}

func keys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}
