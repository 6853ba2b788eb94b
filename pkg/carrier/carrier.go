// Package carrier provides the carrier-agnostic domain model, the Carrier
// capability contract, and the registry and aggregation layers that sit on
// top of individual carrier adapters.
package carrier

import (
	"context"
)

// Carrier is the capability contract every carrier adapter implements.
// The service layer works through this interface and never imports
// carrier-specific code. Future capabilities (label purchase, tracking,
// address validation) extend this same contract.
type Carrier interface {
	// Name returns the human-readable carrier name (e.g. "UPS").
	Name() string

	// Code returns the unique carrier key used for registry lookup.
	Code() string

	// GetRates returns normalized rate quotes for a shipment,
	// preserving the carrier's wire order.
	GetRates(ctx context.Context, req *RateRequest) ([]RateQuote, error)
}
