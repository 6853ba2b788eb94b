// Package mock provides a configurable mock carrier for testing and for
// running the service without live credentials.
package mock

import (
	"context"

	"github.com/cybership/rateshop/pkg/carrier"
)

// Client is a mock carrier. The zero behavior returns two canned quotes;
// set Err or OnGetRates to script failures or custom responses.
type Client struct {
	code string

	// Err, when set, is returned by every GetRates call.
	Err error

	// OnGetRates overrides the canned response entirely.
	OnGetRates func(ctx context.Context, req *carrier.RateRequest) ([]carrier.RateQuote, error)
}

// New creates a mock carrier registered under code.
func New(code string) *Client {
	return &Client{code: code}
}

// Name returns the carrier name.
func (c *Client) Name() string {
	return c.code
}

// Code returns the registry key.
func (c *Client) Code() string {
	return c.code
}

// GetRates returns scripted or canned quotes.
func (c *Client) GetRates(ctx context.Context, req *carrier.RateRequest) ([]carrier.RateQuote, error) {
	if c.OnGetRates != nil {
		return c.OnGetRates(ctx, req)
	}
	if c.Err != nil {
		return nil, c.Err
	}

	return []carrier.RateQuote{
		{
			Carrier:            c.code,
			ServiceCode:        "STANDARD",
			ServiceName:        c.code + " Standard",
			TotalCost:          15.82,
			Currency:           "USD",
			TransitDays:        5,
			GuaranteedDelivery: false,
			Charges: []carrier.ChargeBreakdown{
				{Description: "Transportation", Amount: 14.00, Currency: "USD"},
				{Description: "Service Options", Amount: 1.82, Currency: "USD"},
			},
		},
		{
			Carrier:            c.code,
			ServiceCode:        "EXPRESS",
			ServiceName:        c.code + " Express",
			TotalCost:          29.95,
			Currency:           "USD",
			TransitDays:        2,
			GuaranteedDelivery: true,
			Charges: []carrier.ChargeBreakdown{
				{Description: "Transportation", Amount: 27.45, Currency: "USD"},
				{Description: "Service Options", Amount: 2.50, Currency: "USD"},
			},
		},
	}, nil
}
