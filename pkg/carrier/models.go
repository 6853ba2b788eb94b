package carrier

// DimensionUnit represents a dimension measurement unit.
type DimensionUnit string

const (
	DimensionIN DimensionUnit = "IN"
	DimensionCM DimensionUnit = "CM"
)

// WeightUnit represents a weight measurement unit.
type WeightUnit string

const (
	WeightLBS WeightUnit = "LBS"
	WeightKGS WeightUnit = "KGS"
)

// Address is the carrier-agnostic address shape. Each adapter maps it
// to and from its own wire format.
type Address struct {
	Name        string   `json:"name" validate:"required"`
	StreetLines []string `json:"streetLines" validate:"required,min=1,max=3,dive,required"`
	City        string   `json:"city" validate:"required"`
	StateCode   string   `json:"stateCode" validate:"required,min=2,max=3"`
	PostalCode  string   `json:"postalCode" validate:"required"`
	CountryCode string   `json:"countryCode" validate:"required,len=2"` // ISO 3166-1 alpha-2
	Phone       string   `json:"phone,omitempty"`
	Email       string   `json:"email,omitempty" validate:"omitempty,email"`
}

// PackageDimensions holds package dimensions with their unit.
// Unit conversion, if a carrier needs one, is the carrier's concern.
type PackageDimensions struct {
	Length float64       `json:"length" validate:"required,gt=0"`
	Width  float64       `json:"width" validate:"required,gt=0"`
	Height float64       `json:"height" validate:"required,gt=0"`
	Unit   DimensionUnit `json:"unit" validate:"required,oneof=IN CM"`
}

// PackageWeight holds a package weight with its unit.
type PackageWeight struct {
	Value float64    `json:"value" validate:"required,gt=0"`
	Unit  WeightUnit `json:"unit" validate:"required,oneof=LBS KGS"`
}

// PackageSpec describes one package in a shipment.
type PackageSpec struct {
	Dimensions  PackageDimensions `json:"dimensions" validate:"required"`
	Weight      PackageWeight     `json:"weight" validate:"required"`
	Description string            `json:"description,omitempty"`
	// Carrier-specific packaging type code. Adapters default it to
	// customer-supplied packaging when empty.
	PackagingType string `json:"packagingType,omitempty"`
}

// RateRequest asks a carrier to price a shipment.
type RateRequest struct {
	Origin      Address       `json:"origin" validate:"required"`
	Destination Address       `json:"destination" validate:"required"`
	Packages    []PackageSpec `json:"packages" validate:"required,min=1,dive"`
	// When set, fetch a rate for this service only.
	// When empty, return all available services (rate shop).
	ServiceCode string `json:"serviceCode,omitempty"`
}

// ChargeBreakdown is one named charge line within a quote.
type ChargeBreakdown struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
}

// RateQuote is a normalized rate quote returned by any carrier adapter.
// Quotes are immutable adapter output; the aggregation layer keeps them
// grouped by carrier and never merges across carriers.
type RateQuote struct {
	Carrier     string  `json:"carrier"`
	ServiceCode string  `json:"serviceCode"`
	ServiceName string  `json:"serviceName"`
	TotalCost   float64 `json:"totalCost"`
	Currency    string  `json:"currency"`
	// TransitDays is zero when the carrier did not provide an estimate.
	TransitDays        int               `json:"transitDays,omitempty"`
	GuaranteedDelivery bool              `json:"guaranteedDelivery"`
	Charges            []ChargeBreakdown `json:"charges,omitempty"`
}
