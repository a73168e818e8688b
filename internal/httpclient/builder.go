package httpclient

import (
	"time"

	"github.com/aleister1102/contacthound/internal/config"
	"github.com/rs/zerolog"
)

// HTTPClientBuilder builds an HTTPClient with a fluent interface
type HTTPClientBuilder struct {
	opts   Options
	retry  *RetryPolicy
	logger zerolog.Logger
}

// NewHTTPClientBuilder creates a builder with DefaultOptions
func NewHTTPClientBuilder(logger zerolog.Logger) *HTTPClientBuilder {
	return &HTTPClientBuilder{
		opts:   DefaultOptions(),
		logger: logger.With().Str("component", "HTTPClient").Logger(),
	}
}

// WithFetcherConfig applies the fetcher section of the application config
func (b *HTTPClientBuilder) WithFetcherConfig(cfg config.FetcherConfig) *HTTPClientBuilder {
	if cfg.TimeoutSecs > 0 {
		b.opts.Timeout = cfg.Timeout()
	}
	if cfg.MaxBodyBytes > 0 {
		b.opts.MaxContentSize = cfg.MaxBodyBytes
	}
	b.opts.MaxRedirects = cfg.MaxRedirects
	b.opts.InsecureSkipVerify = cfg.InsecureSkipTLS
	b.opts.Proxy = cfg.Proxy
	return b
}

// WithTimeout sets the per-request timeout
func (b *HTTPClientBuilder) WithTimeout(timeout time.Duration) *HTTPClientBuilder {
	b.opts.Timeout = timeout
	return b
}

// WithFollowRedirects toggles redirect following
func (b *HTTPClientBuilder) WithFollowRedirects(follow bool) *HTTPClientBuilder {
	b.opts.FollowRedirects = follow
	return b
}

// WithMaxContentSize caps response bodies read by Do, 0 for no cap
func (b *HTTPClientBuilder) WithMaxContentSize(size int) *HTTPClientBuilder {
	b.opts.MaxContentSize = size
	return b
}

// WithHeader adds a header sent on every request made through Do
func (b *HTTPClientBuilder) WithHeader(key, value string) *HTTPClientBuilder {
	if b.opts.Header == nil {
		b.opts.Header = map[string]string{}
	}
	b.opts.Header[key] = value
	return b
}

// WithProxy routes all requests through proxy
func (b *HTTPClientBuilder) WithProxy(proxy string) *HTTPClientBuilder {
	b.opts.Proxy = proxy
	return b
}

// WithHTTP2 toggles HTTP/2 on the transport
func (b *HTTPClientBuilder) WithHTTP2(enabled bool) *HTTPClientBuilder {
	b.opts.HTTP2 = enabled
	return b
}

// WithRetry makes Do retry according to policy
func (b *HTTPClientBuilder) WithRetry(policy RetryPolicy) *HTTPClientBuilder {
	b.retry = &policy
	return b
}

// Build creates the HTTPClient
func (b *HTTPClientBuilder) Build() (*HTTPClient, error) {
	client, err := newHTTPClient(b.opts, b.logger)
	if err != nil {
		return nil, err
	}
	client.retry = b.retry
	return client, nil
}
