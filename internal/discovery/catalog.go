package discovery

// DefaultCommonPaths are probed under every root whether or not it has a sitemap.
// The list leans towards school and college sites, where contact details hide
// behind admissions and campus pages.
var DefaultCommonPaths = []string{
	"/college", "/school", "/hss",
	"/contact", "/contact-us", "/contact/", "/reach-us", "/get-in-touch",
	"/about", "/about-us", "/about/", "/who-we-are", "/mission-vision",
	"/admissions", "/admission", "/apply", "/apply-now", "/enroll",
	"/academics", "/programs", "/courses", "/departments", "/faculty",
	"/student-life", "/campus-life", "/housing", "/events",
	"/privacy-policy", "/sitemap", "/sitemap.xml",
}

// sitemapPaths are probed in order; the first 2xx wins.
var sitemapPaths = []string{"/sitemap.xml", "/sitemap"}
