package piston

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sakif/piston-go/internal/apperror"
)

const (
	// DefaultURL is the public Piston v2 endpoint.
	DefaultURL = "https://emkc.org/api/v2/piston"
	// UserAgent identifies this client to the service.
	UserAgent = "piston-go"
)

// Error kinds returned by Client. Test for them with errors.Is.
var (
	// ErrTransport means no reply was obtained: connection, DNS, TLS or body read failure,
	// or the context ended first.
	ErrTransport = apperror.ErrTransport
	// ErrDecode means a 200 reply did not match the expected schema.
	ErrDecode = apperror.ErrDecode
	// ErrUnexpectedStatus is returned by FetchRuntimes for a non-200 reply.
	ErrUnexpectedStatus = apperror.ErrUnexpectedStatus
)

// Client talks to a Piston instance. It holds only immutable configuration and is safe
// for concurrent use.
type Client struct {
	url     string
	headers http.Header
	hc      *http.Client
	logger  *slog.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient sets the transport. Timeouts and retries, if any, belong there.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.hc = hc
		}
	}
}

// WithLogger sets the logger used for per-request debug logs.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New returns a Client for the public endpoint without an API key.
func New(opts ...Option) *Client {
	return newClient(DefaultURL, nil, opts)
}

// NewWithURL returns a Client for a self-hosted instance.
func NewWithURL(url string, opts ...Option) *Client {
	return newClient(url, nil, opts)
}

// NewWithKey returns a Client for the public endpoint that sends key as Authorization.
func NewWithKey(key string, opts ...Option) *Client {
	return newClient(DefaultURL, &key, opts)
}

// NewWithURLAndKey returns a Client for a self-hosted instance that sends key as
// Authorization.
func NewWithURLAndKey(url, key string, opts ...Option) *Client {
	return newClient(url, &key, opts)
}

func newClient(url string, key *string, opts []Option) *Client {
	c := &Client{
		url:     url,
		headers: generateHeaders(key),
		hc:      http.DefaultClient,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// URL returns the base URL requests are sent to.
func (c *Client) URL() string {
	return c.url
}

// Headers returns a copy of the headers sent with every request.
func (c *Client) Headers() http.Header {
	return c.headers.Clone()
}

// generateHeaders builds the fixed header set. Authorization is present only when key
// is non-nil.
func generateHeaders(key *string) http.Header {
	h := make(http.Header, 3)
	h.Set("Accept", "application/json")
	h.Set("User-Agent", UserAgent)
	if key != nil {
		h.Set("Authorization", *key)
	}
	return h
}

// FetchRuntimes lists the languages installed on the service.
func (c *Client) FetchRuntimes(ctx context.Context) ([]Runtime, error) {
	resp, err := c.do(ctx, http.MethodGet, "/runtimes", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperror.Transport("piston: reading runtimes response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, apperror.UnexpectedStatus(resp.StatusCode, string(body))
	}

	var runtimes []Runtime
	if err := json.Unmarshal(body, &runtimes); err != nil {
		return nil, apperror.Decode("piston: runtimes", err)
	}
	return runtimes, nil
}

// Execute runs the request described by e.
//
// An error is returned only when no usable reply was obtained: the exchange failed
// (ErrTransport) or a 200 body could not be decoded (ErrDecode). Any other status is
// turned into an ExecResponse whose Run holds "{status}: {body}" in Stderr and Output
// with Code 1, and whose Language and Version are those of e.
func (c *Client) Execute(ctx context.Context, e Executor) (*ExecResponse, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("piston: encoding request: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, "/execute", payload)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperror.Transport("piston: reading execute response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return rejected(e, resp.StatusCode, string(body)), nil
	}

	var raw rawExecResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, apperror.Decode("piston: execute response", err)
	}

	return &ExecResponse{
		Language: raw.Language,
		Version:  raw.Version,
		Run:      raw.Run,
		Compile:  raw.Compile,
		Status:   resp.StatusCode,
	}, nil
}

// rejected builds the response for a reply the service refused to run.
func rejected(e Executor, status int, body string) *ExecResponse {
	text := fmt.Sprintf("%s: %s", statusLine(status), body)
	return &ExecResponse{
		Language: e.Language,
		Version:  e.Version,
		Run: ExecResult{
			Stdout: "",
			Stderr: text,
			Output: text,
			Code:   1,
			Signal: nil,
		},
		Compile: nil,
		Status:  status,
	}
}

// statusLine renders a status as "400 Bad Request".
func statusLine(code int) string {
	reason := http.StatusText(code)
	if reason == "" {
		reason = "<unknown status code>"
	}
	return fmt.Sprintf("%d %s", code, reason)
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	endpoint := c.url + path
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("piston: building %s request: %w", path, err)
	}
	req.Header = c.headers.Clone()
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		c.logger.Debug("piston request failed",
			slog.String("method", method),
			slog.String("url", endpoint),
			slog.String("error", err.Error()),
		)
		return nil, apperror.Transport(fmt.Sprintf("piston: %s %s", method, path), err)
	}

	c.logger.Debug("piston request",
		slog.String("method", method),
		slog.String("url", endpoint),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)
	return resp, nil
}
