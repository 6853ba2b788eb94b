package server_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/cybership/rateshop/internal/server"
	"github.com/cybership/rateshop/pkg/carrier"
	"github.com/cybership/rateshop/pkg/carrier/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// One server for the whole package: metrics register on the global
// Prometheus registerer, so constructing a second server would panic.
var (
	buildOnce   sync.Once
	testHandler http.Handler
)

func handler(t *testing.T) http.Handler {
	t.Helper()
	buildOnce.Do(func() {
		failing := mock.New("BROKEN")
		failing.Err = carrier.NewError(carrier.KindAuthFailed, "failed to obtain access token").
			WithCarrier("BROKEN").
			WithStatusCode(401)

		registry := carrier.NewRegistry()
		registry.Register(mock.New("UPS"))
		registry.Register(failing)

		srv := server.New(server.Config{Port: 8080}, registry, otelzap.New(zap.NewNop()))
		testHandler = srv.Handler()
	})
	return testHandler
}

const rateRequestJSON = `{
	"origin": {
		"name": "Cybership Warehouse",
		"streetLines": ["123 Commerce Blvd"],
		"city": "Atlanta",
		"stateCode": "GA",
		"postalCode": "30301",
		"countryCode": "US"
	},
	"destination": {
		"name": "Jane Smith",
		"streetLines": ["456 Oak Ave"],
		"city": "Brooklyn",
		"stateCode": "NY",
		"postalCode": "11201",
		"countryCode": "US"
	},
	"packages": [
		{
			"dimensions": {"length": 12, "width": 8, "height": 6, "unit": "IN"},
			"weight": {"value": 5.5, "unit": "LBS"}
		}
	]
}`

func TestServer_Health(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	handler(t).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestServer_Carriers(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/carriers", nil)
	rec := httptest.NewRecorder()

	handler(t).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Carriers []struct {
			Code string `json:"code"`
			Name string `json:"name"`
		} `json:"carriers"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Carriers, 2)
	assert.Equal(t, "UPS", resp.Carriers[0].Code)
	assert.Equal(t, "BROKEN", resp.Carriers[1].Code)
}

// The fan-out endpoint returns 200 even when a carrier fails; the
// failure shows up inside its per-carrier record.
func TestServer_RatesAll(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/v1/rates", strings.NewReader(rateRequestJSON))
	rec := httptest.NewRecorder()

	handler(t).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Results []struct {
			Carrier string              `json:"carrier"`
			Quotes  []carrier.RateQuote `json:"quotes"`
			Error   string              `json:"error,omitempty"`
		} `json:"results"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Results, 2)

	assert.Equal(t, "UPS", resp.Results[0].Carrier)
	assert.Empty(t, resp.Results[0].Error)
	assert.Len(t, resp.Results[0].Quotes, 2)

	assert.Equal(t, "BROKEN", resp.Results[1].Carrier)
	assert.NotEmpty(t, resp.Results[1].Error)
	assert.Empty(t, resp.Results[1].Quotes)
}

func TestServer_RatesForCarrier(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/v1/rates/UPS", strings.NewReader(rateRequestJSON))
	rec := httptest.NewRecorder()

	handler(t).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Carrier string              `json:"carrier"`
		Quotes  []carrier.RateQuote `json:"quotes"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "UPS", resp.Carrier)
	assert.Len(t, resp.Quotes, 2)
}

func TestServer_RatesForCarrier_NotFound(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/v1/rates/FEDEX", strings.NewReader(rateRequestJSON))
	rec := httptest.NewRecorder()

	handler(t).ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp struct {
		Error struct {
			Kind    string `json:"kind"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "CARRIER_NOT_FOUND", resp.Error.Kind)
	assert.Contains(t, resp.Error.Message, "FEDEX")
}

func TestServer_RatesForCarrier_AuthFailureMapsToBadGateway(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/v1/rates/BROKEN", strings.NewReader(rateRequestJSON))
	rec := httptest.NewRecorder()

	handler(t).ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadGateway, rec.Code)

	var resp struct {
		Error struct {
			Kind       string `json:"kind"`
			Carrier    string `json:"carrier"`
			StatusCode int    `json:"statusCode"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "AUTH_FAILED", resp.Error.Kind)
	assert.Equal(t, "BROKEN", resp.Error.Carrier)
	assert.Equal(t, 401, resp.Error.StatusCode)
}

func TestServer_Rates_InvalidJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/v1/rates", strings.NewReader("not json"))
	rec := httptest.NewRecorder()

	handler(t).ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Error struct {
			Kind string `json:"kind"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Kind)
}

func TestServer_Metrics(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()

	handler(t).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
