package patterns

// Rules is the swappable source of every matcher and bound in a Library.
type Rules struct {
	// StrictEmail matches plain local@domain.tld addresses.
	StrictEmail string
	// PermissiveEmail also accepts obfuscated separators such as "[at]".
	PermissiveEmail string
	// AtSubstitute matches the separator of a permissive match, including surrounding
	// whitespace; it is replaced by "@" during canonicalization.
	AtSubstitute string

	Phone              string
	PhoneMinDigits     int
	PhoneMaxDigits     int
	PhoneLeadingDigits string

	// AboutKeywords are matched case-insensitively inside sitemap URLs.
	AboutKeywords []string
	// HyperlinkKeywords are matched against lowercased anchor hrefs.
	HyperlinkKeywords []string

	// FrameworkMarkers are case-sensitive substrings identifying client-rendered roots.
	FrameworkMarkers []string
	// BlockMarkers are case-insensitive substrings identifying anti-bot interstitials.
	BlockMarkers []string
}

// DefaultRules returns the rule set tuned for Nepali business and school sites.
func DefaultRules() Rules {
	return Rules{
		StrictEmail:     `[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`,
		PermissiveEmail: `(?i)[a-zA-Z0-9._%+-]+\s*(?:@|\[at\]|\(at\))\s*[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`,
		AtSubstitute:    `(?i)\s*(?:@|\[at\]|\(at\))\s*`,

		Phone:              `\b(?:\+?977|01)[\d\-. ]{5,}\d\b`,
		PhoneMinDigits:     9,
		PhoneMaxDigits:     15,
		PhoneLeadingDigits: "09456",

		AboutKeywords:     []string{"about", "contact", "reach-us", "team", "info"},
		HyperlinkKeywords: []string{"about", "contact"},

		FrameworkMarkers: []string{
			`id="root"`,
			`id='root'`,
			`[data-reactroot]`,
			`[data-reactid]`,
			`[data-react-root]`,
			`react`,
		},
		BlockMarkers: []string{
			"cf-browser-verification",
			"cf-challenge",
			"cf_chl_opt",
			"captcha-delivery.com",
			"px-captcha",
			"verify you are human",
			"attention required! | cloudflare",
		},
	}
}
