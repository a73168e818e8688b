package extractor

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/aleister1102/contacthound/internal/common/errorwrapper"
	"github.com/aleister1102/contacthound/internal/urlhandler"
)

// Page is a parsed HTML document together with the URL it was fetched from.
type Page struct {
	URL *url.URL
	Doc *goquery.Document
}

// ParsePage parses an HTML body. Malformed markup is tolerated by the parser.
func ParsePage(pageURL string, body []byte) (*Page, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to parse page URL")
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to parse HTML")
	}
	return &Page{URL: base, Doc: doc}, nil
}

// Anchors returns the absolute http(s) targets of every a[href], in document order.
// Relative hrefs are resolved against the page URL; mailto and script links are skipped.
func (p *Page) Anchors() []string {
	var out []string
	p.Doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if abs, ok := resolveHTTP(href, p.URL); ok {
			out = append(out, abs)
		}
	})
	return out
}

// MailtoTargets returns the address part of each mailto: link, before any query string.
func (p *Page) MailtoTargets() []string {
	var out []string
	p.Doc.Find(`a[href^="mailto:"], a[href^="MAILTO:"]`).Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if addr, ok := MailtoAddress(href); ok {
			out = append(out, addr)
		}
	})
	return out
}

// InlineScripts concatenates the text of inline script elements.
func (p *Page) InlineScripts() []byte {
	var buf bytes.Buffer
	p.Doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		if _, external := s.Attr("src"); external {
			return
		}
		buf.WriteString(s.Text())
		buf.WriteByte('\n')
	})
	return buf.Bytes()
}

// ScriptSources returns the resolved src of external scripts.
func (p *Page) ScriptSources() []string {
	var out []string
	p.Doc.Find("script[src]").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		if abs, ok := resolveHTTP(src, p.URL); ok {
			out = append(out, abs)
		}
	})
	return out
}

// IsMailto reports whether href uses the mailto scheme, in any case.
func IsMailto(href string) bool {
	href = strings.TrimSpace(href)
	return len(href) >= len("mailto:") && strings.EqualFold(href[:len("mailto:")], "mailto:")
}

// MailtoAddress extracts the address of a mailto: href without validating it.
func MailtoAddress(href string) (string, bool) {
	if !IsMailto(href) {
		return "", false
	}
	addr := strings.TrimSpace(href)[len("mailto:"):]
	if i := strings.IndexByte(addr, '?'); i >= 0 {
		addr = addr[:i]
	}
	if unescaped, err := url.PathUnescape(addr); err == nil {
		addr = unescaped
	}
	addr = strings.TrimSpace(addr)
	return addr, addr != ""
}

func resolveHTTP(href string, base *url.URL) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return "", false
	}
	abs, err := urlhandler.ResolveURL(href, base)
	if err != nil || !urlhandler.IsHTTPURL(abs) {
		return "", false
	}
	return abs, true
}
