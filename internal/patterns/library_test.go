package patterns

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchEmails_Strict(t *testing.T) {
	text := `Write to Info@Example.com or info@example.com. Sales: sales@shop.example.com.np`

	got := MatchEmails(text, ModeStrict)

	assert.Equal(t, []string{"info@example.com", "sales@shop.example.com.np"}, got)
}

func TestMatchEmails_StrictIgnoresObfuscated(t *testing.T) {
	assert.Empty(t, MatchEmails("Contact: jane.doe [at] example.com", ModeStrict))
}

func TestMatchEmails_Permissive(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"bracket at", "Contact: jane.doe [at] example.com", []string{"jane.doe@example.com"}},
		{"paren at", "mail: admin(at)college.edu.np", []string{"admin@college.edu.np"}},
		{"upper case token", "Office [AT] Example.ORG", []string{"office@example.org"}},
		{"spaced at", "hello @ example.com", []string{"hello@example.com"}},
		{"plain", "a@b.co", []string{"a@b.co"}},
		{"case duplicates", "X@Y.com x@y.COM x [at] y.com", []string{"x@y.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchEmails(tt.text, ModePermissive))
		})
	}
}

func TestMatchPhones_SeparatorRoundTrip(t *testing.T) {
	for _, text := range []string{
		"Call us: 977-1-4567890",
		"Call us: 977.1.4567890",
		"Call us: 977 1 4567890",
		"Call us: +977-1-4567890",
		"Call us: 977-1.456 7890",
	} {
		assert.Equal(t, []string{"97714567890"}, MatchPhones(text), text)
	}
}

func TestMatchPhones_Bounds(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"landline", "Tel: 01-4567890", []string{"014567890"}},
		{"mobile", "Mob: +977 9812345678", []string{"9779812345678"}},
		{"too short", "Tel: 01-45678", nil},
		{"too long", "Ref 977-1-4567890-1234567", nil},
		{"no prefix", "Tel: 4567890123", nil},
		{"dedup", "977-1-4567890 / 977 1 4567890", []string{"97714567890"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchPhones(tt.text))
		})
	}
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		raw    string
		want   string
		wantOK bool
	}{
		{"977-1-4567890", "97714567890", true},
		{"(01) 456 7890", "014567890", true},
		{"555-123-4567", "5551234567", true},
		{"123-456-7890", "", false},
		{"12345678", "", false},
		{"9999999999999999", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := NormalizePhone(tt.raw)
		assert.Equal(t, tt.wantOK, ok, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
	}
}

func TestMatchAboutPaths(t *testing.T) {
	sitemap := `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
<url><loc>https://example.com/</loc></url>
<url><loc>https://example.com/news</loc></url><url><loc>https://example.com/About-Us</loc></url>
<url><loc>https://example.com/contact</loc></url>
<url><loc>https://example.com/contact</loc></url>
<url><loc>https://example.com/our-team/</loc></url>
</urlset>`

	got := MatchAboutPaths(sitemap)

	assert.Equal(t, []string{
		"https://example.com/About-Us",
		"https://example.com/contact",
		"https://example.com/our-team/",
	}, got)
}

func TestMarkers(t *testing.T) {
	assert.True(t, HasFrameworkMarker(`<div id="root"></div>`))
	assert.True(t, HasFrameworkMarker(`<div id='root'></div>`))
	assert.False(t, HasFrameworkMarker(`<div ID="ROOT"></div>`))

	assert.True(t, HasBlockMarker(`<title>Attention Required! | Cloudflare</title>`))
	assert.True(t, HasBlockMarker(`<div id="cf-challenge-running">`))
	assert.False(t, HasBlockMarker(`<p>Welcome</p>`))
}

func TestLibrary_HyperlinkKeyword(t *testing.T) {
	lib := Default()
	assert.True(t, lib.MatchesHyperlinkKeyword("https://example.com/Contact-Us"))
	assert.True(t, lib.MatchesHyperlinkKeyword("https://example.com/about"))
	assert.False(t, lib.MatchesHyperlinkKeyword("https://example.com/team"))
}

func TestLibrary_IsStrictEmail(t *testing.T) {
	lib := Default()
	assert.True(t, lib.IsStrictEmail("info@example.com"))
	assert.False(t, lib.IsStrictEmail("info@example.com?subject=hi"))
	assert.False(t, lib.IsStrictEmail("not an email"))
}

func TestNewLibrary_CustomRules(t *testing.T) {
	rules := DefaultRules()
	rules.PhoneMinDigits = 7
	rules.PhoneLeadingDigits = "094"
	rules.AboutKeywords = []string{"kontakt"}

	lib, err := NewLibrary(rules)
	require.NoError(t, err)

	got, ok := lib.NormalizePhone("01-45678")
	assert.True(t, ok)
	assert.Equal(t, "0145678", got)

	_, ok = lib.NormalizePhone("5551234567")
	assert.False(t, ok)

	assert.Equal(t, []string{"https://example.de/kontakt"}, lib.MatchAboutPaths("<loc>https://example.de/kontakt</loc><loc>https://example.de/about</loc>"))
}

func TestNewLibrary_InvalidRules(t *testing.T) {
	rules := DefaultRules()
	rules.PhoneMaxDigits = 3
	_, err := NewLibrary(rules)
	assert.Error(t, err)

	rules = DefaultRules()
	rules.Phone = `(`
	_, err = NewLibrary(rules)
	assert.Error(t, err)
}
