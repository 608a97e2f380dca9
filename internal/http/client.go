// Package http talks to the ladder backend's query interface.
package http

import (
	"context"
	"crypto/tls"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/publicsuffix"

	"github.com/PentesterFlow/ladderadmin/internal/envelope"
	"github.com/PentesterFlow/ladderadmin/internal/errors"
	"github.com/PentesterFlow/ladderadmin/internal/form"
	"github.com/PentesterFlow/ladderadmin/internal/logger"
	"github.com/PentesterFlow/ladderadmin/internal/metrics"
	"github.com/PentesterFlow/ladderadmin/internal/ratelimit"
)

// maxBody caps how much of a response is read.
const maxBody = 5 * 1024 * 1024

// LoginPath is where credentials are posted.
const LoginPath = "/login"

// Client issues backend requests and decodes their envelopes.
type Client struct {
	client    *http.Client
	base      *url.URL
	userAgent string
	headers   map[string]string
	limiter   *ratelimit.Limiter
	metrics   *metrics.Collector
	log       *logger.Logger
	mu        sync.RWMutex
}

// ClientConfig holds configuration for the backend client.
type ClientConfig struct {
	BaseURL           string
	Timeout           time.Duration
	UserAgent         string
	Headers           map[string]string
	SkipTLSVerify     bool
	RequestsPerSecond float64
	Burst             int
	CommandRates      map[string]CommandRate
}

// CommandRate is a dedicated rate for one backend command.
type CommandRate struct {
	RequestsPerSecond float64
	Burst             int
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		BaseURL:           "http://localhost:8080",
		Timeout:           10 * time.Second,
		UserAgent:         "ladderctl/1.0",
		RequestsPerSecond: 5,
		Burst:             5,
	}
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithLogger sets the request logger.
func WithLogger(l *logger.Logger) ClientOption {
	return func(c *Client) {
		c.log = l.WithComponent("http")
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Collector) ClientOption {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient creates a backend client.
func NewClient(config ClientConfig, opts ...ClientOption) (*Client, error) {
	base, err := url.Parse(config.BaseURL)
	if err != nil {
		return nil, errors.NewParseError(config.BaseURL, "config", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, errors.New(errors.Parse, "config", config.BaseURL, "base URL must be http or https", nil)
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: config.SkipTLSVerify,
		},
	}

	limiter := ratelimit.NewLimiter(config.RequestsPerSecond, config.Burst)
	for cmd, r := range config.CommandRates {
		limiter.SetCommandRate(cmd, r.RequestsPerSecond, r.Burst)
	}

	c := &Client{
		client: &http.Client{
			Transport: transport,
			Timeout:   config.Timeout,
			Jar:       jar,
		},
		base:      base,
		userAgent: config.UserAgent,
		headers:   config.Headers,
		limiter:   limiter,
		metrics:   metrics.Global(),
		log:       logger.Global().WithComponent("http"),
	}

	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() *url.URL {
	u := *c.base
	return &u
}

// Resolve turns a query string built against "/" into an absolute URL.
func (c *Client) Resolve(query string) (string, error) {
	ref, err := url.Parse(query)
	if err != nil {
		return "", errors.NewParseError(query, "", err)
	}
	return c.base.ResolveReference(ref).String(), nil
}

// Cookies returns the cookies the jar holds for the backend.
func (c *Client) Cookies() []*http.Cookie {
	if c.client.Jar == nil {
		return nil
	}
	return c.client.Jar.Cookies(c.base)
}

// SetCookies seeds the jar, typically from a persisted session.
func (c *Client) SetCookies(cookies []*http.Cookie) {
	if c.client.Jar == nil || len(cookies) == 0 {
		return
	}
	c.client.Jar.SetCookies(c.base, cookies)
}

// Get issues a GET for query and decodes the envelope. Application-level
// failures are not errors here; check the envelope.
func (c *Client) Get(ctx context.Context, command, query string) (*envelope.Envelope, error) {
	return c.do(ctx, http.MethodGet, command, query, nil, "")
}

// Post issues a POST for query with body sent verbatim. Used for commands
// that carry a credential, which never appears in the URL.
func (c *Client) Post(ctx context.Context, command, query, body string) (*envelope.Envelope, error) {
	return c.do(ctx, http.MethodPost, command, query, strings.NewReader(body), "text/plain; charset=utf-8")
}

// Login posts name and password as form values to the login endpoint and
// keeps whatever session cookie comes back. The backend answers with a
// redirect to an HTML page, so a body is only inspected when it is an
// envelope.
func (c *Client) Login(ctx context.Context, name, password string) error {
	target, err := c.Resolve(LoginPath)
	if err != nil {
		return err
	}

	values := url.Values{}
	values.Set("name", name)
	values.Set("password", password)

	resp, err := c.send(ctx, http.MethodPost, "login", target, strings.NewReader(values.Encode()), "application/x-www-form-urlencoded")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return c.fail(errors.NewNetworkError(target, "login", err), "login")
	}
	c.metrics.RecordBytes(int64(len(data)))

	if env, err := envelope.Decode(data); err == nil && !env.Success() {
		c.metrics.RecordError(errors.Application.String())
		return env.Err("login", target)
	}
	return nil
}

// FetchForms downloads an HTML page and parses its forms.
func (c *Client) FetchForms(ctx context.Context, path string) ([]*form.Form, error) {
	target, err := c.Resolve(path)
	if err != nil {
		return nil, err
	}

	resp, err := c.send(ctx, http.MethodGet, "page", target, nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	forms, err := form.ParseReader(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, errors.NewParseError(target, "page", err)
	}
	return forms, nil
}

func (c *Client) do(ctx context.Context, method, command, query string, body io.Reader, contentType string) (*envelope.Envelope, error) {
	target, err := c.Resolve(query)
	if err != nil {
		return nil, err
	}

	resp, err := c.send(ctx, method, command, target, body, contentType)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		netErr := errors.NewNetworkError(target, command, err)
		c.metrics.RecordError(netErr.Type.String())
		return nil, netErr
	}
	c.metrics.RecordBytes(int64(len(data)))

	env, err := envelope.Decode(data)
	if err != nil {
		parseErr := errors.NewParseError(target, command, err)
		c.metrics.RecordError(parseErr.Type.String())
		return nil, parseErr
	}
	if !env.Success() {
		c.metrics.RecordError(errors.Application.String())
	}
	return env, nil
}

// send performs the request and rejects any non-200 status. The caller
// closes the body.
func (c *Client) send(ctx context.Context, method, command, target string, body io.Reader, contentType string) (*http.Response, error) {
	if err := c.limiter.WaitCommand(ctx, command); err != nil {
		return nil, c.fail(errors.Categorize(err, target), command)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, c.fail(errors.New(errors.Parse, command, target, "failed to create request", err), command)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json, text/html;q=0.9, */*;q=0.8")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	c.mu.RLock()
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	c.mu.RUnlock()

	start := time.Now()
	c.metrics.RecordRequest(command)

	resp, err := c.client.Do(req)
	duration := time.Since(start)
	if err != nil {
		c.log.RequestEvent(method, target, 0, duration)
		return nil, c.fail(errors.Categorize(err, target), command)
	}

	c.metrics.RecordStatusCode(resp.StatusCode)
	c.metrics.RecordResponseTime(duration)
	c.log.RequestEvent(method, target, resp.StatusCode, duration)

	if httpErr := errors.CategorizeHTTPStatus(resp.StatusCode, target); httpErr != nil {
		resp.Body.Close()
		return nil, c.fail(httpErr, command)
	}
	return resp, nil
}

func (c *Client) fail(err *errors.LadderError, command string) *errors.LadderError {
	if err.Command == "" {
		err.Command = command
	}
	c.metrics.RecordError(err.Type.String())
	return err
}
