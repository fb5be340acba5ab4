package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/shopadmin/pkg/errors"
	"github.com/angelmondragon/shopadmin/pkg/logger"
	"github.com/angelmondragon/shopadmin/pkg/metrics"
	"github.com/angelmondragon/shopadmin/pkg/types"
	"github.com/google/uuid"
)

const (
	// DefaultBearerPrefix is prepended verbatim to the token, trailing space included.
	DefaultBearerPrefix = "Bearer "

	// RequestIDHeader carries a per-call identifier the backend echoes into its logs.
	RequestIDHeader = "X-Request-ID"

	errorBodyReadLimit int64 = 64 << 10
	responseReadLimit  int64 = 32 << 20
)

var errBaseURLRequired = errors.New("api base url is required")

// Encoding selects how a request body is serialized.
type Encoding int

const (
	EncodingJSON Encoding = iota
	EncodingMultipart
)

func (e Encoding) String() string {
	if e == EncodingMultipart {
		return "multipart"
	}
	return "json"
}

// TokenSource supplies the bearer token for each call. An empty token sends no Authorization header.
type TokenSource interface {
	Token() string
}

// Request describes one API call. Path is relative to the client's base URL.
type Request struct {
	Method   string
	Path     string
	Headers  map[string]string
	Params   map[string]string
	Body     any
	Encoding Encoding
	// Name labels the call in logs and metrics, e.g. "Categories.list". Defaults to Path.
	Name string
}

// Response is a successful (2xx) API response with its body fully read.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Client issues authenticated calls against the shop API. Every call is a single attempt.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	bearerPrefix string
	tokens       TokenSource
	logg         *logger.Logger
	metrics      *metrics.ClientMetrics
	maxBody      int64
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout bounds each call. Zero leaves the platform default (no timeout).
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout, Transport: c.httpClient.Transport}
		}
	}
}

// WithBearerPrefix overrides DefaultBearerPrefix. The prefix is used exactly as given.
func WithBearerPrefix(prefix string) Option {
	return func(c *Client) {
		if prefix != "" {
			c.bearerPrefix = prefix
		}
	}
}

func WithLogger(logg *logger.Logger) Option {
	return func(c *Client) {
		if logg != nil {
			c.logg = logg
		}
	}
}

// WithResponseLimit caps how many bytes of a success body are read. Larger
// bodies fail with a TRANSPORT error.
func WithResponseLimit(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxBody = n
		}
	}
}

func WithMetrics(m *metrics.ClientMetrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient builds a client rooted at baseURL. tokens may be nil for unauthenticated use.
func NewClient(baseURL string, tokens TokenSource, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, errBaseURLRequired
	}
	if _, err := url.Parse(trimmed); err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}

	client := &Client{
		httpClient:   &http.Client{},
		baseURL:      trimmed,
		bearerPrefix: DefaultBearerPrefix,
		tokens:       tokens,
		logg:         logger.Nop(),
		maxBody:      responseReadLimit,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// BaseURL returns the root every request path is resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do performs the call and returns the response when the status is 2xx.
// Any other outcome is a *errors.Error: TRANSPORT when no response arrived,
// otherwise a status-derived code carrying the API's error list.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	name := req.Name
	if name == "" {
		name = req.Path
	}
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	start := time.Now()

	ctx = c.logg.WithFields(ctx, map[string]any{
		"method":    method,
		"path":      req.Path,
		"operation": name,
	})

	resp, status, err := c.do(ctx, method, req)
	elapsed := time.Since(start)
	c.metrics.Observe(method, name, status, elapsed, err)

	logCtx := c.logg.WithFields(ctx, map[string]any{
		"status":      status,
		"duration_ms": elapsed.Milliseconds(),
	})
	if err != nil {
		c.logg.Debug(c.logg.WithField(logCtx, "error", err.Error()), "api call failed")
		return nil, err
	}
	c.logg.Debug(logCtx, "api call completed")
	return resp, nil
}

func (c *Client) do(ctx context.Context, method string, req Request) (*Response, int, error) {
	target, err := c.buildURL(req.Path, req.Params)
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeTransport, err, pkgerrors.GenericMessage)
	}

	body, contentType, err := encodeBody(req.Body, req.Encoding)
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeTransport, err, "encode request body")
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeTransport, err, "build request")
	}
	httpReq.Header.Set("Accept", "application/json")
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	httpReq.Header.Set(RequestIDHeader, uuid.NewString())
	if token := c.token(); token != "" {
		httpReq.Header.Set("Authorization", c.bearerPrefix+token)
	}
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeTransport, err, pkgerrors.GenericMessage)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, resp.StatusCode, statusError(method, req.Path, resp)
	}

	payload, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, resp.StatusCode, pkgerrors.Wrap(pkgerrors.CodeTransport, err, pkgerrors.GenericMessage).WithStatus(resp.StatusCode)
	}
	if int64(len(payload)) > c.maxBody {
		return nil, resp.StatusCode, pkgerrors.New(pkgerrors.CodeTransport, fmt.Sprintf("%s %s response exceeds %d bytes", method, req.Path, c.maxBody)).
			WithMessages(pkgerrors.GenericMessage).
			WithStatus(resp.StatusCode)
	}
	return &Response{Status: resp.StatusCode, Header: resp.Header.Clone(), Body: payload}, resp.StatusCode, nil
}

func (c *Client) token() string {
	if c.tokens == nil {
		return ""
	}
	return strings.TrimSpace(c.tokens.Token())
}

func (c *Client) buildURL(path string, params map[string]string) (string, error) {
	path = strings.TrimSpace(path)
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	target, err := url.Parse(c.baseURL + path)
	if err != nil {
		return "", err
	}
	if len(params) > 0 {
		query := target.Query()
		keys := make([]string, 0, len(params))
		for key := range params {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			query.Set(key, params[key])
		}
		target.RawQuery = query.Encode()
	}
	return target.String(), nil
}

// statusError converts a non-2xx response into the error taxonomy.
func statusError(method, path string, resp *http.Response) *pkgerrors.Error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))

	var messages []string
	var env types.ErrorEnvelope
	if len(bytes.TrimSpace(raw)) > 0 && json.Unmarshal(raw, &env) == nil {
		messages = env.List()
	}
	if len(messages) == 0 {
		messages = []string{pkgerrors.GenericMessage}
	}

	code := pkgerrors.CodeForStatus(resp.StatusCode)
	return pkgerrors.New(code, fmt.Sprintf("%s %s returned %d", method, path, resp.StatusCode)).
		WithStatus(resp.StatusCode).
		WithMessages(messages...)
}
