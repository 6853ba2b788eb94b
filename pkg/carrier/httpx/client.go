// Package httpx is the single HTTP gateway used by carrier adapters.
// It applies per-call timeouts and classifies every outcome into the
// closed carrier error taxonomy before anything reaches a caller.
package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/cybership/rateshop/pkg/carrier"
	"golang.org/x/time/rate"
)

// maxBodyDetail caps how much of an unparseable body is carried in
// error details.
const maxBodyDetail = 500

// Request describes one outbound HTTP call.
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	// Body is JSON-encoded when set.
	Body any
	// Raw is sent verbatim with a form-urlencoded content type.
	// Used by OAuth token exchanges. Takes precedence over Body.
	Raw string
}

// Response is a completed HTTP exchange. Body is guaranteed to be
// valid JSON; anything else fails with MALFORMED_RESPONSE before a
// Response is returned.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Decode unmarshals the response body into v.
func (r *Response) Decode(v any) error {
	return json.Unmarshal(r.Body, v)
}

// Client issues HTTP requests with a fixed timeout and optional
// client-side request pacing.
type Client struct {
	http    *http.Client
	timeout time.Duration
	limiter *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithRateLimit paces outbound requests at rps with the given burst.
// A burst of fan-out calls then queues instead of tripping carrier
// rate limits. Zero rps disables pacing.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
		}
	}
}

// NewClient creates a client with the given per-request timeout.
func NewClient(timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &Client{
		http:    &http.Client{},
		timeout: timeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do performs one HTTP call. Failures come back as classified carrier
// errors: TIMEOUT for a deadline hit, NETWORK_ERROR for DNS/connection
// failures, MALFORMED_RESPONSE when the body is not valid JSON.
// A cancelled call never returns a partial body.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, classifyTransportError(err, req.URL, c.timeout)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var bodyReader io.Reader
	contentType := "application/json"
	switch {
	case req.Raw != "":
		bodyReader = strings.NewReader(req.Raw)
		contentType = "application/x-www-form-urlencoded"
	case req.Body != nil:
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return nil, carrier.NewError(carrier.KindUnknown, "failed to encode request body").WithCause(err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, bodyReader)
	if err != nil {
		return nil, carrier.NewError(carrier.KindUnknown, "failed to build request").WithCause(err)
	}

	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", "application/json")
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, classifyTransportError(err, req.URL, c.timeout)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, classifyTransportError(err, req.URL, c.timeout)
	}

	// Some error responses are not valid JSON (HTML gateway pages, empty
	// bodies). Never hand those back as if they were structured data.
	if !json.Valid(raw) {
		return nil, carrier.NewError(carrier.KindMalformedResponse, "response is not valid JSON").
			WithStatusCode(httpResp.StatusCode).
			WithDetails(map[string]any{"body": Truncate(raw, maxBodyDetail)})
	}

	return &Response{
		Status: httpResp.StatusCode,
		Header: httpResp.Header,
		Body:   raw,
	}, nil
}

func classifyTransportError(err error, url string, timeout time.Duration) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return carrier.NewError(carrier.KindTimeout, fmt.Sprintf("request timed out after %s", timeout)).
			WithDetails(map[string]any{"url": url, "timeout": timeout.String()}).
			WithCause(err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return carrier.NewError(carrier.KindTimeout, fmt.Sprintf("request timed out after %s", timeout)).
			WithDetails(map[string]any{"url": url, "timeout": timeout.String()}).
			WithCause(err)
	}
	return carrier.NewError(carrier.KindNetworkError, err.Error()).
		WithDetails(map[string]any{"url": url}).
		WithCause(err)
}

// Truncate bounds b for inclusion in error details.
func Truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n])
}
