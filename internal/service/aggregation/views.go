// Package aggregation computes the read-only ledger projections: unit prices,
// closing stock, the vehicle dispatch pivot and the composed day summary.
package aggregation

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/oilledger/internal/domain/models"
)

// ProductLookup resolves catalog products by id.
type ProductLookup interface {
	LookupProduct(id int64) (models.Product, bool)
}

// UnitPrice returns baseRate x conversionFactor, computed in decimal so that
// factors such as 13.6 or 0.425 do not pick up binary rounding noise.
func UnitPrice(rec models.PriceRecord) decimal.Decimal {
	return decimal.NewFromFloat(rec.BaseRate).Mul(decimal.NewFromFloat(rec.ConversionFactor))
}

// VehicleSalesTotal sums the per-vehicle sales of an entry.
func VehicleSalesTotal(entry models.DailyStockEntry) int {
	total := 0
	for _, qty := range entry.VehicleSales {
		total += qty
	}
	return total
}

// ClosingStock is opening + receipts - office sales - dispatch - vehicle sales.
// A negative result is returned as is: it flags over-dispatch upstream.
func ClosingStock(entry models.DailyStockEntry) int {
	return entry.Opening + entry.Receipts - entry.SalesOffice - entry.Dispatch - VehicleSalesTotal(entry)
}

// VehicleDispatchPivot folds dispatch entries into a vehicles x products table.
// Products missing from the catalog are left out of rows and totals.
func VehicleDispatchPivot(entries []models.DispatchEntry, catalog ProductLookup) models.DispatchPivot {
	pivot := models.DispatchPivot{
		Vehicles:      []string{},
		ProductRows:   []models.PivotRow{},
		VehicleTotals: map[string]int{},
	}

	seenVehicle := map[string]bool{}
	quantities := map[int64]map[string]int{}
	for _, entry := range entries {
		if !seenVehicle[entry.VehicleNumber] {
			seenVehicle[entry.VehicleNumber] = true
			pivot.Vehicles = append(pivot.Vehicles, entry.VehicleNumber)
		}
		for _, line := range entry.Lines {
			perVehicle, ok := quantities[line.ProductID]
			if !ok {
				perVehicle = map[string]int{}
				quantities[line.ProductID] = perVehicle
			}
			perVehicle[entry.VehicleNumber] += line.Quantity
		}
	}

	if len(pivot.Vehicles) == 0 {
		return pivot
	}
	sort.Strings(pivot.Vehicles)

	for productID, perVehicle := range quantities {
		product, ok := catalog.LookupProduct(productID)
		if !ok {
			continue
		}

		row := models.PivotRow{
			ProductID:          productID,
			Name:               product.Name,
			QuantityPerVehicle: make(map[string]int, len(pivot.Vehicles)),
		}
		for _, vehicle := range pivot.Vehicles {
			row.QuantityPerVehicle[vehicle] = perVehicle[vehicle]
			row.RowTotal += perVehicle[vehicle]
		}
		pivot.ProductRows = append(pivot.ProductRows, row)
	}

	sort.Slice(pivot.ProductRows, func(i, j int) bool {
		a, b := pivot.ProductRows[i], pivot.ProductRows[j]
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ProductID < b.ProductID
	})

	grand := 0
	for _, vehicle := range pivot.Vehicles {
		total := 0
		for _, row := range pivot.ProductRows {
			total += row.QuantityPerVehicle[vehicle]
		}
		pivot.VehicleTotals[vehicle] = total
		grand += total
	}
	pivot.VehicleTotals[models.GrandTotalKey] = grand

	return pivot
}
