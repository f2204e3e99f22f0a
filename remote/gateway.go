// ABOUTME: Typed HTTP gateway to the hosted backend
// ABOUTME: Normalizes heterogeneous response envelopes into one discriminated shape
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"
)

// DefaultTimeout bounds every request; a request that exceeds it resolves to
// a timeout failure rather than hanging.
const DefaultTimeout = 30 * time.Second

// ErrTimeout is returned when the per-request deadline elapses.
var ErrTimeout = errors.New("request timed out after 30 seconds")

// Gateway is the typed request/response wrapper around the remote API. It
// attaches a bearer credential (the session token when available, else the
// configured anonymous key) and applies the request timeout.
type Gateway struct {
	baseURL    string
	anonKey    string
	tokens     oauth2.TokenSource
	httpClient *http.Client
	logger     *log.Logger
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithHTTPClient swaps the underlying HTTP client (tests).
func WithHTTPClient(c *http.Client) Option {
	return func(g *Gateway) { g.httpClient = c }
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) { g.httpClient.Timeout = d }
}

// WithTokenSource supplies session bearer tokens. When absent or failing,
// the gateway falls back to the anonymous key so public endpoints (quote
// approval links) still work.
func WithTokenSource(ts oauth2.TokenSource) Option {
	return func(g *Gateway) { g.tokens = ts }
}

// WithLogger overrides the default logger.
func WithLogger(l *log.Logger) Option {
	return func(g *Gateway) { g.logger = l }
}

// NewGateway creates a gateway for the given base URL.
func NewGateway(baseURL, anonKey string, opts ...Option) *Gateway {
	g := &Gateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		anonKey: anonKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Response is the single discriminated envelope every remote call resolves
// to. Callers above the gateway never branch on raw body shape.
type Response struct {
	OK     bool            `json:"success"`
	Data   json.RawMessage `json:"data,omitempty"`
	Err    string          `json:"error,omitempty"`
	Status int             `json:"-"`
}

// envelope mirrors the wire shapes the backend may produce: a flat
// {success,data,error} or the org-scoped nested
// {success, data:{success,data,metadata}} variant.
type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

func (g *Gateway) bearer() string {
	if g.tokens != nil {
		if tok, err := g.tokens.Token(); err == nil && tok.AccessToken != "" {
			return tok.AccessToken
		}
	}
	return g.anonKey
}

// Request performs one HTTP round trip and normalizes the result. The error
// return is reserved for transport-level failures (unreachable network,
// timeout, unreadable or non-JSON body); every HTTP-level failure comes back
// as a Response with OK=false.
func (g *Gateway) Request(ctx context.Context, method, path string, body any) (*Response, error) {
	var bodyReader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if tok := g.bearer(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, ErrTimeout
		}
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return g.normalize(method, path, resp.StatusCode, raw)
}

// normalize folds the two backend envelope families and bare bodies into one
// Response. A body that already carries {success,data} passes through
// (unwrapping the org-scoped nested envelope); any other JSON body is
// wrapped as a success.
func (g *Gateway) normalize(method, path string, status int, raw []byte) (*Response, error) {
	if status < 200 || status >= 300 {
		msg := serverMessage(raw)
		if msg == "" {
			msg = http.StatusText(status)
		}
		if status == http.StatusNotFound {
			// Expected condition, e.g. entity deleted concurrently.
			g.logger.Debug("remote returned 404", "method", method, "path", path)
		} else {
			g.logger.Error("remote request failed", "method", method, "path", path, "status", status, "error", msg)
		}
		return &Response{OK: false, Err: msg, Status: status}, nil
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return &Response{OK: true, Status: status}, nil
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Success != nil {
		data := env.Data
		// Org-scoped responses nest a second envelope inside data.
		var inner envelope
		if len(data) > 0 && json.Unmarshal(data, &inner) == nil && inner.Success != nil {
			data = inner.Data
		}
		errMsg := env.Error
		if errMsg == "" {
			errMsg = env.Message
		}
		return &Response{OK: *env.Success, Data: data, Err: errMsg, Status: status}, nil
	}

	// Raw bodies (arrays, bare objects) are legitimate success payloads,
	// but a body that is not JSON at all is a transport-level failure.
	if !json.Valid(raw) {
		return nil, fmt.Errorf("remote returned non-JSON body (%d bytes)", len(raw))
	}
	return &Response{OK: true, Data: raw, Status: status}, nil
}

func serverMessage(raw []byte) string {
	var env envelope
	if json.Unmarshal(raw, &env) == nil {
		if env.Error != "" {
			return env.Error
		}
		return env.Message
	}
	return ""
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne interface{ Timeout() bool }
	return errors.As(err, &ne) && ne.Timeout()
}

// NotFound reports whether the response is a legitimate absence rather than
// a failure worth falling back over.
func (r *Response) NotFound() bool {
	return r != nil && r.Status == http.StatusNotFound
}

// IsTransport classifies a request outcome: true when the failure means the
// backend is effectively unreachable (network error, timeout, non-JSON body,
// server-side 5xx). A 404 or an empty result is never transport.
func IsTransport(resp *Response, err error) bool {
	if err != nil {
		return true
	}
	if resp == nil {
		return true
	}
	return resp.Status >= 500
}

// Decode unmarshals a successful response's payload.
func Decode[T any](resp *Response) (T, error) {
	var v T
	if resp == nil || !resp.OK {
		return v, fmt.Errorf("cannot decode failed response")
	}
	if len(resp.Data) == 0 {
		return v, nil
	}
	if err := json.Unmarshal(resp.Data, &v); err != nil {
		return v, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return v, nil
}
