package models

// UnitType is the base measure a product is billed in.
type UnitType string

const (
	UnitKilogram   UnitType = "kg"
	UnitLitre      UnitType = "L"
	UnitMillilitre UnitType = "ml"
)

// Product is a sellable pack. ConversionFactor is the number of base units
// (kg, L) per pack.
type Product struct {
	ID               int64    `json:"id" bson:"_id"`
	Name             string   `json:"name" bson:"name"`
	Category         string   `json:"category" bson:"category"`
	UnitType         UnitType `json:"unitType" bson:"unitType"`
	ConversionFactor float64  `json:"conversionFactor" bson:"conversionFactor"`
	IsActive         bool     `json:"isActive" bson:"isActive"`
}

// Route is a delivery line dispatches are tagged with.
type Route struct {
	ID       int64  `json:"id" bson:"_id"`
	Name     string `json:"name" bson:"name"`
	IsActive bool   `json:"isActive" bson:"isActive"`
}

// Vehicle is a delivery vehicle identified by its registration number.
type Vehicle struct {
	ID       int64  `json:"id" bson:"_id"`
	Number   string `json:"number" bson:"number"`
	IsActive bool   `json:"isActive" bson:"isActive"`
}
