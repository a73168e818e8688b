package urlhandler

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// NormalizeBaseURL turns user or harvester input into a root base URL: scheme
// defaulted to https, host lowercased, fragment dropped and trailing slash stripped.
func NormalizeBaseURL(rawURL string) (string, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return "", errors.New("URL is empty or only whitespace")
	}

	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + strings.TrimPrefix(trimmed, "//")
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("could not parse URL '%s': %w", trimmed, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme '%s'", parsed.Scheme)
	}
	if parsed.Host == "" {
		return "", errors.New("URL lacks a valid hostname")
	}

	parsed.Host = strings.ToLower(parsed.Host)
	parsed.Fragment = ""
	parsed.RawFragment = ""

	return strings.TrimRight(parsed.String(), "/"), nil
}

// ResolveURL resolves a (possibly relative) href against base. Fragments are dropped.
func ResolveURL(href string, base *url.URL) (string, error) {
	trimmed := strings.TrimSpace(href)
	if trimmed == "" {
		return "", errors.New("href is empty")
	}

	ref, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("error parsing href '%s': %w", trimmed, err)
	}

	resolved := ref
	if base != nil {
		resolved = base.ResolveReference(ref)
	} else if !ref.IsAbs() {
		return "", fmt.Errorf("cannot process relative URL '%s' without a base URL", trimmed)
	}

	resolved.Fragment = ""
	resolved.RawFragment = ""
	return resolved.String(), nil
}

// IsHTTPURL reports whether raw is an absolute http(s) URL with a host.
func IsHTTPURL(raw string) bool {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}

// RegistrableDomain returns the eTLD+1 of a hostname ("www.example.co.uk" -> "example.co.uk").
// IP addresses and single-label hosts are returned unchanged.
func RegistrableDomain(hostname string) (string, error) {
	host := strings.ToLower(strings.TrimSpace(hostname))
	if host == "" {
		return "", errors.New("hostname is empty")
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	if net.ParseIP(host) != nil || !strings.Contains(host, ".") {
		return host, nil
	}
	return publicsuffix.EffectiveTLDPlusOne(host)
}

// SameSite reports whether two absolute URLs share a registrable domain.
func SameSite(a, b string) bool {
	ua, err := url.Parse(a)
	if err != nil {
		return false
	}
	ub, err := url.Parse(b)
	if err != nil {
		return false
	}
	da, err := RegistrableDomain(ua.Hostname())
	if err != nil {
		return false
	}
	db, err := RegistrableDomain(ub.Hostname())
	if err != nil {
		return false
	}
	return da == db
}
