package patterns

var defaultLibrary = mustDefault()

func mustDefault() *Library {
	lib, err := NewLibrary(DefaultRules())
	if err != nil {
		panic(err)
	}
	return lib
}

// Default returns the shared library compiled from DefaultRules.
func Default() *Library { return defaultLibrary }

// MatchEmails runs Library.MatchEmails on the default library.
func MatchEmails(text string, mode Mode) []string { return defaultLibrary.MatchEmails(text, mode) }

// MatchPhones returns the normalized phone numbers found in text.
func MatchPhones(text string) []string { return defaultLibrary.MatchPhones(text) }

// NormalizePhone strips separators from raw and checks the length and leading digit bounds.
func NormalizePhone(raw string) (string, bool) { return defaultLibrary.NormalizePhone(raw) }

// MatchAboutPaths returns the contact and about URLs listed in a sitemap.
func MatchAboutPaths(sitemapXML string) []string { return defaultLibrary.MatchAboutPaths(sitemapXML) }

// HasFrameworkMarker reports whether body looks like a client-rendered app shell.
func HasFrameworkMarker(body string) bool { return defaultLibrary.HasFrameworkMarker(body) }

// HasBlockMarker reports whether body is an anti-bot challenge page.
func HasBlockMarker(body string) bool { return defaultLibrary.HasBlockMarker(body) }
