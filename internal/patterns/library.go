package patterns

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/aleister1102/contacthound/internal/common/errorwrapper"
)

// Mode selects the email matcher.
type Mode int

const (
	// ModeStrict is used for machine-facing text such as rendered DOM and mailto targets.
	ModeStrict Mode = iota
	// ModePermissive is used for raw HTML likely to contain obfuscated addresses.
	ModePermissive
)

// Library holds compiled matchers. It is immutable and safe for concurrent use.
type Library struct {
	rules           Rules
	strictEmail     *regexp.Regexp
	strictEmailFull *regexp.Regexp
	permissiveEmail *regexp.Regexp
	atSubstitute    *regexp.Regexp
	phone           *regexp.Regexp
	aboutPath       *regexp.Regexp
	nonDigit        *regexp.Regexp
	blockMarkers    []string
}

// NewLibrary compiles rules into a Library.
func NewLibrary(rules Rules) (*Library, error) {
	if rules.PhoneMinDigits <= 0 || rules.PhoneMaxDigits < rules.PhoneMinDigits {
		return nil, errorwrapper.NewValidationError("phone_digits", fmt.Sprintf("[%d,%d]", rules.PhoneMinDigits, rules.PhoneMaxDigits), "invalid phone length bounds")
	}
	if len(rules.AboutKeywords) == 0 {
		return nil, errorwrapper.NewValidationError("about_keywords", rules.AboutKeywords, "at least one keyword is required")
	}

	lib := &Library{rules: rules, nonDigit: regexp.MustCompile(`\D`)}

	compile := func(name, expr string) (*regexp.Regexp, error) {
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, errorwrapper.WrapError(err, fmt.Sprintf("failed to compile %s pattern", name))
		}
		return re, nil
	}

	var err error
	if lib.strictEmail, err = compile("strict email", rules.StrictEmail); err != nil {
		return nil, err
	}
	if lib.strictEmailFull, err = compile("strict email", `^(?:`+rules.StrictEmail+`)$`); err != nil {
		return nil, err
	}
	if lib.permissiveEmail, err = compile("permissive email", rules.PermissiveEmail); err != nil {
		return nil, err
	}
	if lib.atSubstitute, err = compile("at substitute", rules.AtSubstitute); err != nil {
		return nil, err
	}
	if lib.phone, err = compile("phone", rules.Phone); err != nil {
		return nil, err
	}

	keywords := make([]string, len(rules.AboutKeywords))
	for i, k := range rules.AboutKeywords {
		keywords[i] = regexp.QuoteMeta(k)
	}
	aboutExpr := `(?i)(?:https?://)?(?:www\.)?[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}(?:/[^\s<>"]*?)?(?:` +
		strings.Join(keywords, "|") + `)[^\s<>"]*`
	if lib.aboutPath, err = compile("about path", aboutExpr); err != nil {
		return nil, err
	}

	lib.blockMarkers = make([]string, len(rules.BlockMarkers))
	for i, m := range rules.BlockMarkers {
		lib.blockMarkers[i] = strings.ToLower(m)
	}

	return lib, nil
}

// Rules returns the rules the library was compiled from.
func (l *Library) Rules() Rules {
	return l.rules
}

// MatchEmails returns lowercase addresses in first-seen order, without duplicates.
func (l *Library) MatchEmails(text string, mode Mode) []string {
	re := l.strictEmail
	if mode == ModePermissive {
		re = l.permissiveEmail
	}

	var out []string
	seen := make(map[string]struct{})
	for _, raw := range re.FindAllString(text, -1) {
		email := strings.ToLower(raw)
		if mode == ModePermissive {
			email = l.atSubstitute.ReplaceAllString(email, "@")
		}
		if _, dup := seen[email]; dup {
			continue
		}
		seen[email] = struct{}{}
		out = append(out, email)
	}
	return out
}

// IsStrictEmail reports whether s is exactly one strict email address.
func (l *Library) IsStrictEmail(s string) bool {
	return l.strictEmailFull.MatchString(s)
}

// NormalizePhone strips every non-digit and applies the length and leading digit bounds.
func (l *Library) NormalizePhone(raw string) (string, bool) {
	digits := l.nonDigit.ReplaceAllString(raw, "")
	if len(digits) < l.rules.PhoneMinDigits || len(digits) > l.rules.PhoneMaxDigits {
		return "", false
	}
	if !strings.ContainsRune(l.rules.PhoneLeadingDigits, rune(digits[0])) {
		return "", false
	}
	return digits, true
}

// MatchPhones returns normalized phone numbers in first-seen order. Matches
// failing normalization are dropped.
func (l *Library) MatchPhones(text string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, raw := range l.phone.FindAllString(text, -1) {
		phone, ok := l.NormalizePhone(raw)
		if !ok {
			continue
		}
		if _, dup := seen[phone]; dup {
			continue
		}
		seen[phone] = struct{}{}
		out = append(out, phone)
	}
	return out
}

// MatchAboutPaths extracts about/contact style URLs from sitemap text, deduplicated
// by exact string in first-seen order.
func (l *Library) MatchAboutPaths(sitemapXML string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, raw := range l.aboutPath.FindAllString(sitemapXML, -1) {
		if _, dup := seen[raw]; dup {
			continue
		}
		seen[raw] = struct{}{}
		out = append(out, raw)
	}
	return out
}

// MatchesHyperlinkKeyword reports whether the lowercased href contains a hyperlink keyword.
func (l *Library) MatchesHyperlinkKeyword(href string) bool {
	lower := strings.ToLower(href)
	for _, k := range l.rules.HyperlinkKeywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// HasFrameworkMarker is a case-sensitive scan for client-rendering markers.
func (l *Library) HasFrameworkMarker(body string) bool {
	for _, m := range l.rules.FrameworkMarkers {
		if strings.Contains(body, m) {
			return true
		}
	}
	return false
}

// HasBlockMarker is a case-insensitive scan for anti-bot interstitial markers.
func (l *Library) HasBlockMarker(body string) bool {
	if len(l.blockMarkers) == 0 {
		return false
	}
	lower := strings.ToLower(body)
	for _, m := range l.blockMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}
