package httpclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"

	"github.com/aleister1102/contacthound/internal/common/errorwrapper"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
)

// HTTPClient owns the shared *http.Client of a run. Colly borrows it through
// StdClient; JSON APIs go through Do, which reads bodies fully and may retry.
type HTTPClient struct {
	client *http.Client
	opts   Options
	retry  *RetryPolicy
	logger zerolog.Logger
}

func newHTTPClient(opts Options, logger zerolog.Logger) (*HTTPClient, error) {
	transport, err := newTransport(opts, logger)
	if err != nil {
		return nil, err
	}

	client := &http.Client{
		Transport:     transport,
		Timeout:       opts.Timeout,
		CheckRedirect: redirectPolicy(opts),
	}

	logger.Debug().
		Dur("timeout", opts.Timeout).
		Bool("insecure_skip_verify", opts.InsecureSkipVerify).
		Bool("http2", opts.HTTP2).
		Str("proxy", opts.Proxy).
		Msg("HTTP client created")

	return &HTTPClient{client: client, opts: opts, logger: logger}, nil
}

func newTransport(opts Options, logger zerolog.Logger) (*http.Transport, error) {
	t := &http.Transport{
		MaxIdleConnsPerHost: opts.MaxIdleConnsPerHost,
		IdleConnTimeout:     opts.IdleConnTimeout,
		TLSHandshakeTimeout: opts.DialTimeout,
		DialContext:         (&net.Dialer{Timeout: opts.DialTimeout}).DialContext,
		TLSClientConfig:     &tls.Config{InsecureSkipVerify: opts.InsecureSkipVerify},
	}
	if opts.Proxy != "" {
		proxyURL, err := url.Parse(opts.Proxy)
		if err != nil {
			return nil, errorwrapper.WrapError(err, "failed to parse proxy URL")
		}
		t.Proxy = http.ProxyURL(proxyURL)
	}
	if opts.HTTP2 {
		if err := http2.ConfigureTransport(t); err != nil {
			logger.Warn().Err(err).Msg("HTTP/2 unavailable, using HTTP/1.1")
		}
	}
	return t, nil
}

func redirectPolicy(opts Options) func(*http.Request, []*http.Request) error {
	switch {
	case !opts.FollowRedirects:
		return func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }
	case opts.MaxRedirects > 0:
		limit := opts.MaxRedirects
		return func(_ *http.Request, via []*http.Request) error {
			if len(via) >= limit {
				return fmt.Errorf("stopped after %d redirects", limit)
			}
			return nil
		}
	default:
		return nil
	}
}

// StdClient exposes the configured *http.Client.
func (c *HTTPClient) StdClient() *http.Client {
	return c.client
}

// Config returns the options the client was built with.
func (c *HTTPClient) Config() Options {
	return c.opts
}

// Do sends req and reads the whole body, up to MaxContentSize. Transport
// failures come back as *errorwrapper.NetworkError.
func (c *HTTPClient) Do(req *HTTPRequest) (*HTTPResponse, error) {
	ctx := req.Context
	if ctx == nil {
		ctx = context.Background()
	}

	var payload []byte
	if req.Body != nil {
		var err error
		if payload, err = io.ReadAll(req.Body); err != nil {
			return nil, errorwrapper.WrapError(err, "failed to read request body")
		}
	}

	if c.retry != nil {
		return c.retry.do(ctx, c.logger, req.URL, func() (*HTTPResponse, error) {
			return c.send(ctx, req, payload)
		})
	}
	return c.send(ctx, req, payload)
}

func (c *HTTPClient) send(ctx context.Context, req *HTTPRequest, payload []byte) (*HTTPResponse, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, body)
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to create HTTP request")
	}

	httpReq.Header.Set("Accept", "*/*")
	for k, v := range c.opts.Header {
		httpReq.Header.Set(k, v)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, errorwrapper.NewNetworkError(req.URL, "HTTP request failed", err)
	}
	defer resp.Body.Close()

	var r io.Reader = resp.Body
	if c.opts.MaxContentSize > 0 {
		r = io.LimitReader(resp.Body, int64(c.opts.MaxContentSize))
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errorwrapper.NewNetworkError(req.URL, "failed to read response body", err)
	}

	return &HTTPResponse{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}, nil
}
