package ups

import (
	"bytes"
	"encoding/json"
)

// UPS Rating API wire types. Internal to the UPS adapter; only this
// package knows the UPS JSON structure.
// Ref: https://developer.ups.com/api/reference/rating/api/Rate

// TokenResponse is the OAuth token endpoint response.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	IssuedAt    string `json:"issued_at"`
	ClientID    string `json:"client_id"`
	// UPS returns this as a string of seconds.
	ExpiresIn string `json:"expires_in"`
	Status    string `json:"status"`
}

// RatingRequest is the envelope for both the Shop and Rate endpoints.
type RatingRequest struct {
	RateRequest RatingRequestBody `json:"RateRequest"`
}

// RatingRequestBody holds the request options and shipment details.
type RatingRequestBody struct {
	Request  RequestOptions `json:"Request"`
	Shipment Shipment       `json:"Shipment"`
}

// RequestOptions carries caller context echoed back by UPS.
type RequestOptions struct {
	TransactionReference *TransactionReference `json:"TransactionReference,omitempty"`
}

// TransactionReference identifies the request in UPS logs.
type TransactionReference struct {
	CustomerContext string `json:"CustomerContext,omitempty"`
}

// Shipment describes the shipment being rated.
type Shipment struct {
	Shipper  Party     `json:"Shipper"`
	ShipTo   Party     `json:"ShipTo"`
	ShipFrom Party     `json:"ShipFrom"`
	Service  *Service  `json:"Service,omitempty"`
	Package  []Package `json:"Package"`

	ShipmentRatingOptions *ShipmentRatingOptions `json:"ShipmentRatingOptions,omitempty"`
}

// Party is a shipper, ship-to, or ship-from block.
type Party struct {
	Name          string      `json:"Name"`
	ShipperNumber string      `json:"ShipperNumber,omitempty"`
	Address       WireAddress `json:"Address"`
}

// WireAddress is the UPS address block.
type WireAddress struct {
	AddressLine       []string `json:"AddressLine"`
	City              string   `json:"City"`
	StateProvinceCode string   `json:"StateProvinceCode"`
	PostalCode        string   `json:"PostalCode"`
	CountryCode       string   `json:"CountryCode"`
}

// Service selects one UPS service. Omitted for rate shopping.
type Service struct {
	Code        string `json:"Code"`
	Description string `json:"Description,omitempty"`
}

// Package is one rated package.
type Package struct {
	PackagingType CodeDescription `json:"PackagingType"`
	Dimensions    Dimensions      `json:"Dimensions"`
	PackageWeight WeightBlock     `json:"PackageWeight"`
}

// CodeDescription is the UPS code/description pair used throughout the API.
type CodeDescription struct {
	Code        string `json:"Code"`
	Description string `json:"Description,omitempty"`
}

// Dimensions carries package dimensions as strings, per the UPS schema.
type Dimensions struct {
	UnitOfMeasurement CodeDescription `json:"UnitOfMeasurement"`
	Length            string          `json:"Length"`
	Width             string          `json:"Width"`
	Height            string          `json:"Height"`
}

// WeightBlock carries a weight as a string, per the UPS schema.
type WeightBlock struct {
	UnitOfMeasurement CodeDescription `json:"UnitOfMeasurement"`
	Weight            string          `json:"Weight"`
}

// ShipmentRatingOptions toggles negotiated rate lookup.
type ShipmentRatingOptions struct {
	NegotiatedRatesIndicator string `json:"NegotiatedRatesIndicator,omitempty"`
}

// RatingResponse is the envelope returned by the Shop and Rate endpoints.
type RatingResponse struct {
	RateResponse RateResponseBody `json:"RateResponse"`
}

// RateResponseBody holds the response status and rated shipments.
type RateResponseBody struct {
	Response      ResponseBlock  `json:"Response"`
	RatedShipment RatedShipments `json:"RatedShipment"`
}

// ResponseBlock reports UPS-side status and alerts.
type ResponseBlock struct {
	ResponseStatus       CodeDescription       `json:"ResponseStatus"`
	Alert                []Alert               `json:"Alert,omitempty"`
	TransactionReference *TransactionReference `json:"TransactionReference,omitempty"`
}

// Alert is an informational message attached to a response.
type Alert struct {
	Code        string `json:"Code"`
	Description string `json:"Description"`
}

// RatedShipments normalizes the RatedShipment field, which UPS encodes
// as a single object for one-service requests and an array for rate
// shopping. It always iterates as a list.
type RatedShipments []RatedShipment

// UnmarshalJSON accepts either a single object or an array.
func (r *RatedShipments) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*r = nil
		return nil
	}
	if trimmed[0] == '[' {
		var list []RatedShipment
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*r = list
		return nil
	}
	var single RatedShipment
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	*r = RatedShipments{single}
	return nil
}

// RatedShipment is one priced service in a rating response.
type RatedShipment struct {
	Service               Service                `json:"Service"`
	RatedShipmentAlert    []Alert                `json:"RatedShipmentAlert,omitempty"`
	BillingWeight         *WeightBlock           `json:"BillingWeight,omitempty"`
	TransportationCharges Charge                 `json:"TransportationCharges"`
	ServiceOptionsCharges Charge                 `json:"ServiceOptionsCharges"`
	TotalCharges          Charge                 `json:"TotalCharges"`
	GuaranteedDelivery    *GuaranteedDelivery    `json:"GuaranteedDelivery,omitempty"`
	NegotiatedRateCharges *NegotiatedRateCharges `json:"NegotiatedRateCharges,omitempty"`
}

// Charge is a monetary amount with its currency, both strings on the wire.
type Charge struct {
	CurrencyCode  string `json:"CurrencyCode"`
	MonetaryValue string `json:"MonetaryValue"`
}

// GuaranteedDelivery is present when the service carries a delivery guarantee.
type GuaranteedDelivery struct {
	BusinessDaysInTransit string `json:"BusinessDaysInTransit"`
	DeliveryByTime        string `json:"DeliveryByTime,omitempty"`
}

// NegotiatedRateCharges carries account-specific contract pricing.
type NegotiatedRateCharges struct {
	TotalCharge Charge `json:"TotalCharge"`
}

// ErrorResponse is the UPS structured error envelope on non-2xx responses.
type ErrorResponse struct {
	Response ErrorResponseBody `json:"response"`
}

// ErrorResponseBody holds the error list.
type ErrorResponseBody struct {
	Errors []APIError `json:"errors"`
}

// APIError is one UPS error entry.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ServiceCodes maps UPS service codes to display names.
var ServiceCodes = map[string]string{
	"01": "UPS Next Day Air",
	"02": "UPS 2nd Day Air",
	"03": "UPS Ground",
	"07": "UPS Express",
	"08": "UPS Expedited",
	"11": "UPS Standard",
	"12": "UPS 3 Day Select",
	"13": "UPS Next Day Air Saver",
	"14": "UPS Next Day Air Early",
	"54": "UPS Express Plus",
	"59": "UPS 2nd Day Air A.M.",
	"65": "UPS Saver",
}
