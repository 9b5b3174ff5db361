package models

// PivotRow is one product line of the vehicle dispatch pivot.
type PivotRow struct {
	ProductID          int64          `json:"productId"`
	Name               string         `json:"name"`
	QuantityPerVehicle map[string]int `json:"quantityPerVehicle"`
	RowTotal           int            `json:"rowTotal"`
}

// DispatchPivot is the vehicles x products dispatch table. VehicleTotals carries
// the synthetic GrandTotalKey when at least one vehicle was dispatched.
type DispatchPivot struct {
	Vehicles      []string       `json:"vehicles"`
	ProductRows   []PivotRow     `json:"productRows"`
	VehicleTotals map[string]int `json:"vehicleTotals"`
}

// GrandTotalKey is the VehicleTotals key holding the sum of all columns.
const GrandTotalKey = "grand"

// StockRow is a ledger entry decorated for display.
type StockRow struct {
	DailyStockEntry
	ProductName       string `json:"productName"`
	Category          string `json:"category"`
	VehicleSalesTotal int    `json:"vehicleSalesTotal"`
	Closing           int    `json:"closing"`
}

// DayTotals sums a day's ledger across products.
type DayTotals struct {
	Opening      int     `json:"opening"`
	Receipts     int     `json:"receipts"`
	SalesOffice  int     `json:"salesOffice"`
	VehicleSales int     `json:"vehicleSales"`
	Dispatch     int     `json:"dispatch"`
	Closing      int     `json:"closing"`
	ClosingValue float64 `json:"closingValue"`
}

// DaySummary is the composed read view of one ledger day.
type DaySummary struct {
	Date     string         `json:"date"`
	Stock    []StockRow     `json:"stock"`
	Prices   []CurrentPrice `json:"prices"`
	Dispatch DispatchPivot  `json:"dispatch"`
	Totals   DayTotals      `json:"totals"`
}
