package models

import "time"

// PriceRecord is one entry of a product's price history. ConversionFactor is a
// snapshot taken when the price was set, so old unit prices stay reproducible
// after the catalog changes.
type PriceRecord struct {
	ID               string    `json:"id" bson:"_id"`
	ProductID        int64     `json:"productId" bson:"productId"`
	BaseRate         float64   `json:"baseRate" bson:"baseRate"`
	ConversionFactor float64   `json:"conversionFactor" bson:"conversionFactor"`
	EffectiveDate    time.Time `json:"effectiveDate" bson:"effectiveDate"`
	IsCurrent        bool      `json:"isCurrent" bson:"isCurrent"`
}

// CurrentPrice is a current PriceRecord joined with its product.
type CurrentPrice struct {
	ID               string    `json:"id"`
	ProductID        int64     `json:"productId"`
	Product          Product   `json:"product"`
	BaseRate         float64   `json:"baseRate"`
	ConversionFactor float64   `json:"conversionFactor"`
	EffectiveDate    time.Time `json:"effectiveDate"`
	UnitPrice        float64   `json:"unitPrice"`
}
