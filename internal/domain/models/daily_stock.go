package models

import "time"

// StockField names a user-editable quantity of a DailyStockEntry.
type StockField string

const (
	FieldOpening     StockField = "opening"
	FieldReceipts    StockField = "receipts"
	FieldSalesOffice StockField = "salesOffice"
)

// Valid reports whether the field may be set through an upsert. Dispatch is
// only ever moved by the dispatch log.
func (f StockField) Valid() bool {
	switch f {
	case FieldOpening, FieldReceipts, FieldSalesOffice:
		return true
	default:
		return false
	}
}

// DailyStockEntry is the ledger line of one product on one day.
type DailyStockEntry struct {
	ID           string         `json:"id" bson:"_id"`
	ProductID    int64          `json:"productId" bson:"productId"`
	Date         string         `json:"date" bson:"date"`
	Opening      int            `json:"opening" bson:"opening"`
	Receipts     int            `json:"receipts" bson:"receipts"`
	SalesOffice  int            `json:"salesOffice" bson:"salesOffice"`
	Dispatch     int            `json:"dispatch" bson:"dispatch"`
	VehicleSales map[string]int `json:"vehicleSales" bson:"vehicleSales"`
	CreatedAt    time.Time      `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt" bson:"updatedAt"`
}

// Get returns the value of an editable field.
func (e DailyStockEntry) Get(field StockField) int {
	switch field {
	case FieldOpening:
		return e.Opening
	case FieldReceipts:
		return e.Receipts
	case FieldSalesOffice:
		return e.SalesOffice
	default:
		return 0
	}
}

// Set assigns an editable field.
func (e *DailyStockEntry) Set(field StockField, value int) {
	switch field {
	case FieldOpening:
		e.Opening = value
	case FieldReceipts:
		e.Receipts = value
	case FieldSalesOffice:
		e.SalesOffice = value
	}
}
