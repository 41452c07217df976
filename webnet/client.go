// Package webnet sends HTTP requests and performs platform logins off the
// owning goroutine, reporting results as ogalib Values through a job.Pool.
//
// Every result has the shape
//
//	{"statusCode": 200, "statusText": "OK", "response": "<body>"}
//
// with "error" in place of "response" when the transport failed or the
// status was not 2xx.
package webnet

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ogahub/ogalib"
	"github.com/ogahub/ogalib/job"
)

// ErrEmptyURL is reported when SendURL is called without a URL.
var ErrEmptyURL = errors.New("webnet: empty url")

const defaultContentType = "application/x-www-form-urlencoded"

// Client issues requests with the settings of a Config and owns the login
// Session.
type Client struct {
	cfg      Config
	pool     *job.Pool
	logger   *slog.Logger
	registry *Registry
	session  *Session

	secure   *http.Client
	insecure *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for request and login diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRegistry sets the providers available to Login.
func WithRegistry(r *Registry) Option {
	return func(c *Client) {
		if r != nil {
			c.registry = r
		}
	}
}

// WithTLSConfig replaces the TLS settings of verified requests, e.g. to
// trust a private certificate authority.
func WithTLSConfig(tc *tls.Config) Option {
	return func(c *Client) {
		if tc != nil {
			c.secure = newHTTPClient(c.cfg, tc)
		}
	}
}

// New returns a Client that runs asynchronous work on pool.
func New(cfg Config, pool *job.Pool, opts ...Option) *Client {
	c := &Client{
		cfg:      cfg,
		pool:     pool,
		logger:   slog.Default().With("component", "webnet"),
		registry: newRegistry(),
		session:  &Session{},
		secure:   newHTTPClient(cfg, &tls.Config{}),
		insecure: newHTTPClient(cfg, &tls.Config{InsecureSkipVerify: true}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// newHTTPClient maps the Config timeouts onto a transport. Name resolution
// and connecting share the dialer budget; SendTimeout covers writing the
// request and waiting for the response headers.
func newHTTPClient(cfg Config, tlsConfig *tls.Config) *http.Client {
	dialer := &net.Dialer{Timeout: cfg.ResolveTimeout + cfg.ConnectTimeout}
	return &http.Client{
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           dialer.DialContext,
			TLSClientConfig:       tlsConfig,
			TLSHandshakeTimeout:   cfg.ConnectTimeout,
			ResponseHeaderTimeout: cfg.SendTimeout,
			ForceAttemptHTTP2:     true,
		},
	}
}

// Config returns the settings the client was built with.
func (c *Client) Config() Config { return c.cfg }

// Session returns the login state.
func (c *Client) Session() *Session { return c.session }

// Registry returns the providers available to Login.
func (c *Client) Registry() *Registry { return c.registry }

// SendURL performs a request and blocks until the body has been read. The
// params object accepts:
//
//	method          "GET" (default) or another HTTP method
//	data            request body
//	contentType     body type, defaults to application/x-www-form-urlencoded
//	bearer          token sent as "Authorization: Bearer <token>"
//	usesAPIKey      send Config.APIKey as the bearer token
//	ignoreSSLErrors skip certificate verification
//	skipResponse    discard the body
//
// The bool result is true for a 2xx response without transport errors.
func (c *Client) SendURL(ctx context.Context, url string, params *ogalib.Value) (*ogalib.Value, bool) {
	result := ogalib.New(ogalib.Obj{
		{Key: "statusCode", Value: 0},
		{Key: "statusText", Value: ""},
	})
	if params == nil {
		params = &ogalib.Value{}
	}

	fail := func(err error) (*ogalib.Value, bool) {
		c.logger.Debug("request failed", slog.String("url", url), slog.Any("error", err))
		result.Key("error").Assign(err.Error())
		return result, false
	}

	if url == "" {
		return fail(ErrEmptyURL)
	}

	method := http.MethodGet
	if it := params.Lookup("method"); it.IsString() && it.Str() != "" {
		method = strings.ToUpper(it.Str())
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var body *strings.Reader
	data := params.Lookup("data")
	if data.Ok() {
		body = strings.NewReader(data.Str())
	}

	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequestWithContext(ctx, method, url, body)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, url, nil)
	}
	if err != nil {
		return fail(fmt.Errorf("build request: %w", err))
	}

	if data.Ok() {
		contentType := defaultContentType
		if it := params.Lookup("contentType"); it.IsString() {
			contentType = it.Str()
		}
		req.Header.Set("Content-Type", contentType)
	}
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}
	if token := c.bearer(params); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := c.secure
	if c.cfg.IgnoreSSLErrors || params.Lookup("ignoreSSLErrors").Bool() {
		client = c.insecure
	}

	res, err := client.Do(req)
	if err != nil {
		return fail(err)
	}
	defer res.Body.Close()

	result.Key("statusCode").Assign(res.StatusCode)
	result.Key("statusText").Assign(statusText(res))

	text := ""
	if !params.Lookup("skipResponse").Bool() {
		var r io.Reader = res.Body
		var timedOut atomic.Bool
		if c.cfg.ReceiveTimeout > 0 {
			timer := time.AfterFunc(c.cfg.ReceiveTimeout, func() {
				timedOut.Store(true)
				cancel()
			})
			defer timer.Stop()
			r = &idleReader{r: res.Body, timer: timer, timeout: c.cfg.ReceiveTimeout}
		}
		text, err = readBody(r, chunkSize(res.ContentLength))
		if err != nil {
			if timedOut.Load() {
				err = fmt.Errorf("receive timeout after %s", c.cfg.ReceiveTimeout)
			}
			return fail(fmt.Errorf("read response: %w", err))
		}
	}

	c.logger.Debug("request done",
		slog.String("method", method),
		slog.String("url", url),
		slog.Int("status", res.StatusCode),
		slog.Int("bytes", len(text)))

	if res.StatusCode < 200 || res.StatusCode > 299 {
		result.Key("error").Assign(fmt.Sprintf("HTTP status code: %d", res.StatusCode))
		return result, false
	}
	result.Key("response").Assign(text)
	return result, true
}

func (c *Client) bearer(params *ogalib.Value) string {
	if it := params.Lookup("bearer"); it.IsString() && it.Str() != "" {
		return it.Str()
	}
	if params.Lookup("usesAPIKey").Bool() {
		return c.cfg.APIKey
	}
	return ""
}

func statusText(res *http.Response) string {
	prefix := strconv.Itoa(res.StatusCode) + " "
	if text, ok := strings.CutPrefix(res.Status, prefix); ok {
		return text
	}
	return http.StatusText(res.StatusCode)
}

// SendURLAsync runs SendURL on a pool worker and hands the result to
// callback on the goroutine that calls Pool.Update. params is copied before
// SendURLAsync returns.
func (c *Client) SendURLAsync(url string, params *ogalib.Value, callback func(result *ogalib.Value)) error {
	if params != nil {
		params = params.Clone()
	}
	_, err := c.pool.Submit(func(j *job.Job) {
		result, _ := c.SendURL(context.Background(), url, params)
		j.Data.Set(result)
	}, func(j *job.Job) {
		if callback != nil {
			callback(j.Data)
		}
	})
	if err != nil {
		return fmt.Errorf("send %s: %w", url, err)
	}
	return nil
}
