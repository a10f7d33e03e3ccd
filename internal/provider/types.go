package provider

import "github.com/shopspring/decimal"

// SlotData is one bookable time window as reported by the upstream API.
type SlotData struct {
	StartTime       string            `json:"startTime"`
	EndTime         string            `json:"endTime"`
	ProviderSlotID  string            `json:"providerSlotId"`
	Remaining       int               `json:"remaining"`
	CurrencyCode    string            `json:"currencyCode"`
	VariantID       int               `json:"variantId"`
	PaxAvailability []PaxAvailability `json:"paxAvailability"`
}

// PaxAvailability is the upstream price/capacity entry for one passenger type.
type PaxAvailability struct {
	Type        string `json:"type"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Min         int    `json:"min"`
	Max         int    `json:"max"`
	Remaining   int    `json:"remaining"`
	Price       Price  `json:"price"`
}

// Price is the upstream price triple.
type Price struct {
	FinalPrice    decimal.Decimal `json:"finalPrice"`
	OriginalPrice decimal.Decimal `json:"originalPrice"`
	CurrencyCode  string          `json:"currencyCode"`
}
