package carrier_test

import (
	"context"
	"testing"
	"time"

	"github.com/cybership/rateshop/pkg/carrier"
	"github.com/cybership/rateshop/pkg/carrier/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

func newTestService(registry *carrier.Registry) *carrier.Service {
	return carrier.NewService(registry, otelzap.New(zap.NewNop()))
}

func sampleRateRequest() *carrier.RateRequest {
	return &carrier.RateRequest{
		Origin: carrier.Address{
			Name:        "Cybership Warehouse",
			StreetLines: []string{"123 Commerce Blvd"},
			City:        "Atlanta",
			StateCode:   "GA",
			PostalCode:  "30301",
			CountryCode: "US",
		},
		Destination: carrier.Address{
			Name:        "Jane Smith",
			StreetLines: []string{"456 Oak Ave", "Apt 2B"},
			City:        "Brooklyn",
			StateCode:   "NY",
			PostalCode:  "11201",
			CountryCode: "US",
		},
		Packages: []carrier.PackageSpec{
			{
				Dimensions: carrier.PackageDimensions{Length: 12, Width: 8, Height: 6, Unit: carrier.DimensionIN},
				Weight:     carrier.PackageWeight{Value: 5.5, Unit: carrier.WeightLBS},
			},
		},
	}
}

func TestService_GetRates(t *testing.T) {
	registry := carrier.NewRegistry()
	registry.Register(mock.New("UPS"))
	service := newTestService(registry)

	quotes, err := service.GetRates(context.Background(), "UPS", sampleRateRequest())

	require.NoError(t, err)
	require.Len(t, quotes, 2)
	assert.Equal(t, "UPS", quotes[0].Carrier)
}

func TestService_GetRates_UnknownCarrier(t *testing.T) {
	registry := carrier.NewRegistry()
	registry.Register(mock.New("UPS"))
	service := newTestService(registry)

	_, err := service.GetRates(context.Background(), "FEDEX", sampleRateRequest())

	require.Error(t, err)
	assert.Equal(t, carrier.KindCarrierNotFound, carrier.KindOf(err))
}

func TestService_GetRatesFromAll(t *testing.T) {
	registry := carrier.NewRegistry()
	registry.Register(mock.New("UPS"))
	registry.Register(mock.New("FEDEX"))
	service := newTestService(registry)

	results := service.GetRatesFromAll(context.Background(), sampleRateRequest())

	require.Len(t, results, 2)
	assert.Equal(t, "UPS", results[0].Carrier)
	assert.Equal(t, "FEDEX", results[1].Carrier)
	for _, result := range results {
		assert.Empty(t, result.Error)
		assert.Len(t, result.Quotes, 2)
	}
}

func TestService_GetRatesFromAll_PartialFailure(t *testing.T) {
	failing := mock.New("UPS")
	failing.Err = carrier.NewError(carrier.KindAuthFailed, "failed to obtain access token").
		WithCarrier("UPS").
		WithStatusCode(401)

	registry := carrier.NewRegistry()
	registry.Register(failing)
	registry.Register(mock.New("FEDEX"))
	service := newTestService(registry)

	results := service.GetRatesFromAll(context.Background(), sampleRateRequest())

	require.Len(t, results, 2)

	assert.Equal(t, "UPS", results[0].Carrier)
	assert.NotNil(t, results[0].Quotes)
	assert.Empty(t, results[0].Quotes)
	assert.NotEmpty(t, results[0].Error)
	assert.Contains(t, results[0].Error, "AUTH_FAILED")

	assert.Equal(t, "FEDEX", results[1].Carrier)
	assert.Empty(t, results[1].Error)
	assert.Len(t, results[1].Quotes, 2)
}

func TestService_GetRatesFromAll_AllFailing(t *testing.T) {
	failing := mock.New("UPS")
	failing.Err = carrier.NewError(carrier.KindNetworkError, "connection refused")

	registry := carrier.NewRegistry()
	registry.Register(failing)
	service := newTestService(registry)

	results := service.GetRatesFromAll(context.Background(), sampleRateRequest())

	require.Len(t, results, 1)
	assert.Empty(t, results[0].Quotes)
	assert.NotEmpty(t, results[0].Error)
}

func TestService_GetRatesFromAll_EmptyRegistry(t *testing.T) {
	service := newTestService(carrier.NewRegistry())

	results := service.GetRatesFromAll(context.Background(), sampleRateRequest())

	assert.Empty(t, results)
}

// Output order tracks registry order, not completion order.
func TestService_GetRatesFromAll_OrderIndependentOfCompletion(t *testing.T) {
	slow := mock.New("UPS")
	slow.OnGetRates = func(ctx context.Context, req *carrier.RateRequest) ([]carrier.RateQuote, error) {
		time.Sleep(50 * time.Millisecond)
		return []carrier.RateQuote{{Carrier: "UPS", ServiceCode: "03", ServiceName: "UPS Ground"}}, nil
	}

	registry := carrier.NewRegistry()
	registry.Register(slow)
	registry.Register(mock.New("FEDEX"))
	service := newTestService(registry)

	results := service.GetRatesFromAll(context.Background(), sampleRateRequest())

	require.Len(t, results, 2)
	assert.Equal(t, "UPS", results[0].Carrier)
	assert.Equal(t, "FEDEX", results[1].Carrier)
}
