package ups

import (
	"fmt"
	"strconv"

	"github.com/cybership/rateshop/pkg/carrier"
)

// Customer Supplied Package.
const defaultPackagingType = "02"

// mapper translates between the carrier-agnostic domain model and the
// UPS wire format. Pure functions, no I/O; the only state is the
// shipper account number captured at construction.
//
// Mapping failures surface as plain errors; the adapter is responsible
// for re-classifying them as MALFORMED_RESPONSE.
type mapper struct {
	accountNumber string
}

func newMapper(accountNumber string) mapper {
	return mapper{accountNumber: accountNumber}
}

// toRatingRequest maps a domain rate request into the UPS envelope.
// Shipper identity comes from adapter configuration, not the request.
// Unit codes pass through verbatim.
func (m mapper) toRatingRequest(req *carrier.RateRequest) *RatingRequest {
	packages := make([]Package, len(req.Packages))
	for i, pkg := range req.Packages {
		packagingType := pkg.PackagingType
		if packagingType == "" {
			packagingType = defaultPackagingType
		}
		packages[i] = Package{
			PackagingType: CodeDescription{
				Code:        packagingType,
				Description: "Package",
			},
			Dimensions: Dimensions{
				UnitOfMeasurement: CodeDescription{
					Code:        string(pkg.Dimensions.Unit),
					Description: dimensionUnitName(pkg.Dimensions.Unit),
				},
				Length: formatNumber(pkg.Dimensions.Length),
				Width:  formatNumber(pkg.Dimensions.Width),
				Height: formatNumber(pkg.Dimensions.Height),
			},
			PackageWeight: WeightBlock{
				UnitOfMeasurement: CodeDescription{
					Code:        string(pkg.Weight.Unit),
					Description: weightUnitName(pkg.Weight.Unit),
				},
				Weight: formatNumber(pkg.Weight.Value),
			},
		}
	}

	wire := &RatingRequest{
		RateRequest: RatingRequestBody{
			Request: RequestOptions{
				TransactionReference: &TransactionReference{
					CustomerContext: "Cybership Rate Request",
				},
			},
			Shipment: Shipment{
				Shipper: Party{
					Name:          req.Origin.Name,
					ShipperNumber: m.accountNumber,
					Address:       toWireAddress(req.Origin),
				},
				ShipTo: Party{
					Name:    req.Destination.Name,
					Address: toWireAddress(req.Destination),
				},
				ShipFrom: Party{
					Name:    req.Origin.Name,
					Address: toWireAddress(req.Origin),
				},
				Package: packages,
			},
		},
	}

	// When a specific service is requested, include it. When omitted,
	// UPS returns all available services (rate shop).
	if req.ServiceCode != "" {
		wire.RateRequest.Shipment.Service = &Service{
			Code:        req.ServiceCode,
			Description: serviceName(req.ServiceCode, ""),
		}
	}

	return wire
}

// fromRatingResponse maps a UPS rating response into normalized quotes,
// preserving wire order.
func (m mapper) fromRatingResponse(resp *RatingResponse) ([]carrier.RateQuote, error) {
	shipments := resp.RateResponse.RatedShipment
	if len(shipments) == 0 {
		return nil, fmt.Errorf("rate response contains no rated shipments")
	}

	quotes := make([]carrier.RateQuote, len(shipments))
	for i, shipment := range shipments {
		quote, err := mapRatedShipment(shipment)
		if err != nil {
			return nil, err
		}
		quotes[i] = quote
	}
	return quotes, nil
}

func mapRatedShipment(shipment RatedShipment) (carrier.RateQuote, error) {
	code := shipment.Service.Code

	// Negotiated rates reflect actual account pricing; prefer them over
	// the published total whenever present.
	total := shipment.TotalCharges
	if shipment.NegotiatedRateCharges != nil {
		total = shipment.NegotiatedRateCharges.TotalCharge
	}

	totalCost, err := strconv.ParseFloat(total.MonetaryValue, 64)
	if err != nil {
		return carrier.RateQuote{}, fmt.Errorf("parsing total charge %q: %w", total.MonetaryValue, err)
	}

	transportation, err := strconv.ParseFloat(shipment.TransportationCharges.MonetaryValue, 64)
	if err != nil {
		return carrier.RateQuote{}, fmt.Errorf("parsing transportation charge %q: %w", shipment.TransportationCharges.MonetaryValue, err)
	}

	serviceOptions, err := strconv.ParseFloat(shipment.ServiceOptionsCharges.MonetaryValue, 64)
	if err != nil {
		return carrier.RateQuote{}, fmt.Errorf("parsing service options charge %q: %w", shipment.ServiceOptionsCharges.MonetaryValue, err)
	}

	var transitDays int
	if shipment.GuaranteedDelivery != nil {
		transitDays, err = strconv.Atoi(shipment.GuaranteedDelivery.BusinessDaysInTransit)
		if err != nil {
			return carrier.RateQuote{}, fmt.Errorf("parsing transit days %q: %w", shipment.GuaranteedDelivery.BusinessDaysInTransit, err)
		}
	}

	// Always emit both charge lines, even when zero, so callers can
	// inspect a consistent shape.
	charges := []carrier.ChargeBreakdown{
		{
			Description: "Transportation",
			Amount:      transportation,
			Currency:    shipment.TransportationCharges.CurrencyCode,
		},
		{
			Description: "Service Options",
			Amount:      serviceOptions,
			Currency:    shipment.ServiceOptionsCharges.CurrencyCode,
		},
	}

	return carrier.RateQuote{
		Carrier:            carrierCode,
		ServiceCode:        code,
		ServiceName:        serviceName(code, shipment.Service.Description),
		TotalCost:          totalCost,
		Currency:           total.CurrencyCode,
		TransitDays:        transitDays,
		GuaranteedDelivery: shipment.GuaranteedDelivery != nil,
		Charges:            charges,
	}, nil
}

// serviceName resolves a display name: static code table, then the wire
// description, then a label synthesized from the raw code. Never empty.
func serviceName(code, description string) string {
	if name, ok := ServiceCodes[code]; ok {
		return name
	}
	if description != "" {
		return description
	}
	return fmt.Sprintf("UPS Service %s", code)
}

func dimensionUnitName(unit carrier.DimensionUnit) string {
	if unit == carrier.DimensionIN {
		return "Inches"
	}
	return "Centimeters"
}

func weightUnitName(unit carrier.WeightUnit) string {
	if unit == carrier.WeightLBS {
		return "Pounds"
	}
	return "Kilograms"
}

func toWireAddress(addr carrier.Address) WireAddress {
	return WireAddress{
		AddressLine:       addr.StreetLines,
		City:              addr.City,
		StateProvinceCode: addr.StateCode,
		PostalCode:        addr.PostalCode,
		CountryCode:       addr.CountryCode,
	}
}

// formatNumber renders a numeric field the way UPS expects: a plain
// decimal string with no exponent.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
