package httpclient

import (
	"time"

	"github.com/aleister1102/contacthound/internal/config"
)

// Options configures the transport and the request helpers of an HTTPClient.
type Options struct {
	Timeout            time.Duration
	InsecureSkipVerify bool
	FollowRedirects    bool
	MaxRedirects       int
	Proxy              string
	// Header is sent on every request made through Do.
	Header         map[string]string
	MaxContentSize int // 0 means unlimited
	HTTP2          bool

	MaxIdleConnsPerHost int
	IdleConnTimeout     time.Duration
	DialTimeout         time.Duration
}

// DefaultOptions mirrors the fetcher defaults so every transport of a run behaves alike.
func DefaultOptions() Options {
	return Options{
		Timeout:             time.Duration(config.DefaultFetcherTimeoutSecs) * time.Second,
		InsecureSkipVerify:  config.DefaultFetcherInsecureSkipTLS,
		FollowRedirects:     true,
		MaxRedirects:        config.DefaultFetcherMaxRedirects,
		MaxContentSize:      config.DefaultFetcherMaxBodyBytes,
		HTTP2:               true,
		MaxIdleConnsPerHost: 8,
		IdleConnTimeout:     90 * time.Second,
		DialTimeout:         10 * time.Second,
	}
}
