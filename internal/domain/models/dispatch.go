package models

import "time"

// DispatchLine is one product quantity loaded onto a vehicle.
type DispatchLine struct {
	ProductID int64 `json:"productId" bson:"productId"`
	Quantity  int   `json:"quantity" bson:"quantity"`
}

// DispatchEntry is an immutable shipment record for a route and vehicle.
type DispatchEntry struct {
	ID            string         `json:"id" bson:"_id"`
	Date          string         `json:"date" bson:"date"`
	RouteName     string         `json:"routeName" bson:"routeName"`
	VehicleNumber string         `json:"vehicleNumber" bson:"vehicleNumber"`
	CreatedAt     time.Time      `json:"createdAt" bson:"createdAt"`
	Lines         []DispatchLine `json:"lines" bson:"lines"`
}

// DispatchCorrection records one stock dispatch total fixed by reconciliation.
type DispatchCorrection struct {
	ProductID int64 `json:"productId"`
	Recorded  int   `json:"recorded"`
	Logged    int   `json:"logged"`
}
