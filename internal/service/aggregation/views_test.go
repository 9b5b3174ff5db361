package aggregation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/oilledger/internal/domain/models"
)

type productMap map[int64]models.Product

func (m productMap) LookupProduct(id int64) (models.Product, bool) {
	p, ok := m[id]
	return p, ok
}

func testProducts() productMap {
	return productMap{
		1: {ID: 1, Name: "Sunflower Oil 30kg Can", Category: "Sunflower", ConversionFactor: 30, IsActive: true},
		2: {ID: 2, Name: "Palm Oil 15L Tin", Category: "Palm", ConversionFactor: 13.6, IsActive: true},
		3: {ID: 3, Name: "Lamp Oil 1L Pouch", Category: "Lamp", ConversionFactor: 0.9, IsActive: true},
	}
}

func TestUnitPrice(t *testing.T) {
	cases := []struct {
		name   string
		rate   float64
		factor float64
		want   string
	}{
		{"whole factor", 100, 30, "3000"},
		{"fractional factor", 100, 13.6, "1360"},
		{"small pack", 200, 0.425, "85"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := UnitPrice(models.PriceRecord{BaseRate: tc.rate, ConversionFactor: tc.factor})
			assert.True(t, decimal.RequireFromString(tc.want).Equal(got), "got %s", got)
		})
	}
}

func TestUnitPriceDoubles(t *testing.T) {
	base := UnitPrice(models.PriceRecord{BaseRate: 95.5, ConversionFactor: 4.5})
	two := decimal.NewFromInt(2)

	cases := map[string]models.PriceRecord{
		"rate":   {BaseRate: 191, ConversionFactor: 4.5},
		"factor": {BaseRate: 95.5, ConversionFactor: 9},
	}
	for name, rec := range cases {
		t.Run(name, func(t *testing.T) {
			got := UnitPrice(rec)
			assert.True(t, base.Mul(two).Equal(got), "got %s", got)
		})
	}

	fractional := UnitPrice(models.PriceRecord{BaseRate: 100, ConversionFactor: 0.425})
	assert.True(t, fractional.Mul(two).Equal(UnitPrice(models.PriceRecord{BaseRate: 100, ConversionFactor: 0.85})))
}

func TestClosingStock(t *testing.T) {
	entry := models.DailyStockEntry{
		Opening:      10,
		Receipts:     5,
		SalesOffice:  2,
		Dispatch:     3,
		VehicleSales: map[string]int{"2259": 1, "5149": 1},
	}

	assert.Equal(t, 2, VehicleSalesTotal(entry))
	assert.Equal(t, 8, ClosingStock(entry))
}

func TestClosingStockCanGoNegative(t *testing.T) {
	entry := models.DailyStockEntry{Opening: 1, Dispatch: 4}
	assert.Equal(t, -3, ClosingStock(entry))
}

func TestVehicleDispatchPivot(t *testing.T) {
	entries := []models.DispatchEntry{
		{VehicleNumber: "5149", Lines: []models.DispatchLine{{ProductID: 1, Quantity: 3}}},
		{VehicleNumber: "2259", Lines: []models.DispatchLine{{ProductID: 2, Quantity: 4}}},
	}

	pivot := VehicleDispatchPivot(entries, testProducts())

	require.Equal(t, []string{"2259", "5149"}, pivot.Vehicles)
	require.Len(t, pivot.ProductRows, 2)

	palm, sunflower := pivot.ProductRows[0], pivot.ProductRows[1]
	assert.Equal(t, "Palm Oil 15L Tin", palm.Name)
	assert.Equal(t, map[string]int{"2259": 4, "5149": 0}, palm.QuantityPerVehicle)
	assert.Equal(t, 4, palm.RowTotal)
	assert.Equal(t, "Sunflower Oil 30kg Can", sunflower.Name)
	assert.Equal(t, 3, sunflower.RowTotal)

	assert.Equal(t, map[string]int{"2259": 4, "5149": 3, models.GrandTotalKey: 7}, pivot.VehicleTotals)
}

func TestVehicleDispatchPivotOneProductTwoVehicles(t *testing.T) {
	entries := []models.DispatchEntry{
		{VehicleNumber: "2259", Lines: []models.DispatchLine{{ProductID: 1, Quantity: 3}}},
		{VehicleNumber: "5149", Lines: []models.DispatchLine{{ProductID: 1, Quantity: 4}}},
	}

	pivot := VehicleDispatchPivot(entries, testProducts())

	require.Len(t, pivot.ProductRows, 1)
	assert.Equal(t, int64(1), pivot.ProductRows[0].ProductID)
	assert.Equal(t, map[string]int{"2259": 3, "5149": 4}, pivot.ProductRows[0].QuantityPerVehicle)
	assert.Equal(t, 7, pivot.ProductRows[0].RowTotal)
	assert.Equal(t, map[string]int{"2259": 3, "5149": 4, models.GrandTotalKey: 7}, pivot.VehicleTotals)
}

func TestVehicleDispatchPivotSumsRepeatedLines(t *testing.T) {
	entries := []models.DispatchEntry{
		{VehicleNumber: "2259", Lines: []models.DispatchLine{{ProductID: 1, Quantity: 2}, {ProductID: 3, Quantity: 1}}},
		{VehicleNumber: "2259", Lines: []models.DispatchLine{{ProductID: 1, Quantity: 5}}},
	}

	pivot := VehicleDispatchPivot(entries, testProducts())

	require.Equal(t, []string{"2259"}, pivot.Vehicles)
	require.Len(t, pivot.ProductRows, 2)
	assert.Equal(t, "Lamp Oil 1L Pouch", pivot.ProductRows[0].Name)
	assert.Equal(t, 7, pivot.ProductRows[1].QuantityPerVehicle["2259"])
	assert.Equal(t, 8, pivot.VehicleTotals[models.GrandTotalKey])
}

func TestVehicleDispatchPivotDropsUnknownProducts(t *testing.T) {
	entries := []models.DispatchEntry{
		{VehicleNumber: "2259", Lines: []models.DispatchLine{{ProductID: 1, Quantity: 2}, {ProductID: 99, Quantity: 50}}},
	}

	pivot := VehicleDispatchPivot(entries, testProducts())

	require.Len(t, pivot.ProductRows, 1)
	assert.Equal(t, int64(1), pivot.ProductRows[0].ProductID)
	assert.Equal(t, 2, pivot.VehicleTotals["2259"])
	assert.Equal(t, 2, pivot.VehicleTotals[models.GrandTotalKey])
}

func TestVehicleDispatchPivotEmpty(t *testing.T) {
	pivot := VehicleDispatchPivot(nil, testProducts())

	assert.Empty(t, pivot.Vehicles)
	assert.NotNil(t, pivot.Vehicles)
	assert.Empty(t, pivot.ProductRows)
	assert.Empty(t, pivot.VehicleTotals)
	_, hasGrand := pivot.VehicleTotals[models.GrandTotalKey]
	assert.False(t, hasGrand)
}
