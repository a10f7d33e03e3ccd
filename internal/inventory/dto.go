package inventory

import "github.com/shopspring/decimal"

// DateLayout is the wire format for calendar dates, both toward the
// provider and on the read API.
const DateLayout = "2006-01-02"

// DefaultCurrency is substituted when an inventory has no price rows at all.
const DefaultCurrency = "SGD"

func init() {
	// Prices travel as bare JSON numbers on both the provider and read
	// APIs. This flips a process-wide decimal package switch: every
	// decimal marshaled anywhere in a binary that imports this package
	// encodes unquoted. All wire-facing decimal fields live in this
	// package and internal/provider, which both need the same encoding.
	decimal.MarshalJSONWithoutQuotes = true
}

// PriceDTO is the (final, original, currency) triple exposed by the read API.
type PriceDTO struct {
	FinalPrice    decimal.Decimal `json:"finalPrice"`
	OriginalPrice decimal.Decimal `json:"originalPrice"`
	CurrencyCode  string          `json:"currencyCode"`
}

// PaxDTO is one passenger type's terms within a slot view.
type PaxDTO struct {
	Type        string   `json:"type"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       PriceDTO `json:"price"`
	Min         int      `json:"min"`
	Max         int      `json:"max"`
	Remaining   int      `json:"remaining"`
}

// SlotDTO is one bookable time window with its representative (lowest)
// price and the full passenger-type breakdown.
type SlotDTO struct {
	StartTime       string   `json:"startTime"`
	StartDate       string   `json:"startDate"`
	Price           PriceDTO `json:"price"`
	Remaining       int      `json:"remaining"`
	PaxAvailability []PaxDTO `json:"paxAvailability"`
}

// DateDTO pairs an available date with its lowest price across all slots.
type DateDTO struct {
	Date  string   `json:"date"`
	Price PriceDTO `json:"price"`
}

// DatesDTO is the response envelope for the available-dates view.
type DatesDTO struct {
	Dates []DateDTO `json:"dates"`
}
