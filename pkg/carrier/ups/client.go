// Package ups provides the UPS carrier adapter: OAuth token caching,
// payload mapping, and Rating API calls, all surfaced through the
// carrier.Carrier contract.
package ups

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/cybership/rateshop/pkg/carrier"
	"github.com/cybership/rateshop/pkg/carrier/httpx"
	"github.com/google/uuid"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	carrierCode = "UPS"
	carrierName = "UPS"

	ratingVersion  = "v2403"
	transactionSrc = "cybership"
)

// Config holds UPS account configuration.
type Config struct {
	ClientID      string
	ClientSecret  string
	AccountNumber string
	BaseURL       string
	Timeout       time.Duration
	// MaxRPS paces outbound UPS calls client-side. Zero disables pacing.
	MaxRPS float64
}

// Client is the UPS carrier adapter. It coordinates the token cache,
// the wire mapper, and the transport into one GetRates pipeline and
// owns the UPS-specific status-code classification.
type Client struct {
	config Config
	http   *httpx.Client
	auth   *auth
	mapper mapper
	logger *otelzap.Logger
	tracer trace.Tracer
}

// New creates a UPS client from account configuration.
func New(cfg Config, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	httpClient := httpx.NewClient(cfg.Timeout, httpx.WithRateLimit(cfg.MaxRPS, 1))
	return NewWithHTTPClient(cfg, httpClient, logger, tracer)
}

// NewWithHTTPClient creates a UPS client with a custom transport.
// Useful for injecting a pre-configured client in tests.
func NewWithHTTPClient(cfg Config, httpClient *httpx.Client, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	return &Client{
		config: cfg,
		http:   httpClient,
		auth:   newAuth(cfg.ClientID, cfg.ClientSecret, cfg.BaseURL, httpClient),
		mapper: newMapper(cfg.AccountNumber),
		logger: logger,
		tracer: tracer,
	}
}

// Name returns the carrier name.
func (c *Client) Name() string {
	return carrierName
}

// Code returns the registry key.
func (c *Client) Code() string {
	return carrierCode
}

// GetRates returns normalized quotes from the UPS Rating API.
//
// Pipeline: validate, obtain token, map to wire format, call the Shop
// or Rate endpoint depending on whether a service code was requested,
// classify the outcome, map the response. Wire order is preserved; no
// re-sorting, filtering, or deduplication happens here.
func (c *Client) GetRates(ctx context.Context, req *carrier.RateRequest) ([]carrier.RateQuote, error) {
	if c.tracer != nil {
		var span trace.Span
		ctx, span = c.tracer.Start(ctx, "ups.get_rates")
		defer span.End()
	}

	if verr := carrier.ValidateRateRequest(req); verr != nil {
		return nil, verr.WithCarrier(carrierCode)
	}

	token, err := c.auth.Token(ctx)
	if err != nil {
		return nil, err
	}

	wireReq := c.mapper.toRatingRequest(req)

	// "Shop" for rate shopping, "Rate" for a specific service. This
	// mirrors the mapper's inclusion or omission of the service selector.
	endpoint := "Shop"
	if req.ServiceCode != "" {
		endpoint = "Rate"
	}

	c.logger.Ctx(ctx).Info("Requesting UPS rates",
		zap.String("endpoint", endpoint),
		zap.String("origin_postal", req.Origin.PostalCode),
		zap.String("destination_postal", req.Destination.PostalCode),
		zap.Int("package_count", len(req.Packages)),
	)

	resp, err := c.http.Do(ctx, httpx.Request{
		Method: http.MethodPost,
		URL:    fmt.Sprintf("%s/api/rating/%s/%s", c.config.BaseURL, ratingVersion, endpoint),
		Headers: map[string]string{
			"Authorization":  "Bearer " + token,
			"transId":        uuid.NewString(),
			"transactionSrc": transactionSrc,
		},
		Body: wireReq,
	})
	if err != nil {
		return nil, err
	}

	switch {
	case resp.Status == http.StatusUnauthorized:
		// Token expired or was revoked between check and use. Clear it
		// so the next call re-authenticates; this call is not retried.
		c.auth.Invalidate()
		return nil, carrier.NewError(carrier.KindAuthFailed, "UPS authentication expired or revoked").
			WithCarrier(carrierCode).
			WithStatusCode(resp.Status)

	case resp.Status == http.StatusTooManyRequests:
		return nil, carrier.NewError(carrier.KindRateLimit, "UPS rate limit exceeded, try again later").
			WithCarrier(carrierCode).
			WithStatusCode(resp.Status)

	case resp.Status >= 400:
		return nil, c.apiError(resp)
	}

	var wireResp RatingResponse
	if err := resp.Decode(&wireResp); err != nil {
		return nil, malformed(resp, err)
	}

	quotes, err := c.mapper.fromRatingResponse(&wireResp)
	if err != nil {
		return nil, malformed(resp, err)
	}

	c.logger.Ctx(ctx).Info("UPS rates received",
		zap.String("endpoint", endpoint),
		zap.Int("quote_count", len(quotes)),
	)
	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.SetAttributes(attribute.Int("ups.quote_count", len(quotes)))
	}

	return quotes, nil
}

// apiError extracts the UPS structured error list from a non-2xx body.
func (c *Client) apiError(resp *httpx.Response) error {
	message := "UPS API error"
	var details map[string]any

	var wireErr ErrorResponse
	if err := resp.Decode(&wireErr); err == nil && len(wireErr.Response.Errors) > 0 {
		message = wireErr.Response.Errors[0].Message
		details = map[string]any{"errors": wireErr.Response.Errors}
	}

	return carrier.NewError(carrier.KindCarrierAPIError, message).
		WithCarrier(carrierCode).
		WithStatusCode(resp.Status).
		WithDetails(details)
}

func malformed(resp *httpx.Response, cause error) error {
	return carrier.NewError(carrier.KindMalformedResponse, "failed to parse UPS rate response").
		WithCarrier(carrierCode).
		WithStatusCode(resp.Status).
		WithDetails(map[string]any{"body": httpx.Truncate(resp.Body, 500)}).
		WithCause(cause)
}
