package aggregation

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/oilledger/internal/apperror"
	"github.com/mamadbah2/oilledger/internal/domain/models"
)

// StockReader reads a ledger day.
type StockReader interface {
	Day(ctx context.Context, date string) ([]models.DailyStockEntry, error)
}

// PriceReader reads the current prices.
type PriceReader interface {
	CurrentPrices(ctx context.Context) ([]models.CurrentPrice, error)
}

// DispatchReader reads a day's dispatch log.
type DispatchReader interface {
	Log(ctx context.Context, date string) ([]models.DispatchEntry, error)
}

// Service composes the day summary from the ledgers. Nothing it returns is stored.
type Service struct {
	catalog  ProductLookup
	stock    StockReader
	prices   PriceReader
	dispatch DispatchReader
}

// NewService wires the summary composer.
func NewService(catalog ProductLookup, stock StockReader, prices PriceReader, dispatch DispatchReader) *Service {
	return &Service{catalog: catalog, stock: stock, prices: prices, dispatch: dispatch}
}

// DaySummary builds the stock rows, prices, dispatch pivot and totals for date.
func (s *Service) DaySummary(ctx context.Context, date string) (models.DaySummary, error) {
	date, err := models.ParseDate(date)
	if err != nil {
		return models.DaySummary{}, apperror.NewValidation(err.Error())
	}

	entries, err := s.stock.Day(ctx, date)
	if err != nil {
		return models.DaySummary{}, fmt.Errorf("stock for %s: %w", date, err)
	}
	prices, err := s.prices.CurrentPrices(ctx)
	if err != nil {
		return models.DaySummary{}, fmt.Errorf("prices: %w", err)
	}
	dispatches, err := s.dispatch.Log(ctx, date)
	if err != nil {
		return models.DaySummary{}, fmt.Errorf("dispatch for %s: %w", date, err)
	}

	unitPrices := make(map[int64]decimal.Decimal, len(prices))
	for _, p := range prices {
		unitPrices[p.ProductID] = decimal.NewFromFloat(p.UnitPrice)
	}

	summary := models.DaySummary{
		Date:     date,
		Stock:    make([]models.StockRow, 0, len(entries)),
		Prices:   prices,
		Dispatch: VehicleDispatchPivot(dispatches, s.catalog),
	}

	closingValue := decimal.Zero
	for _, entry := range entries {
		row := models.StockRow{
			DailyStockEntry:   entry,
			VehicleSalesTotal: VehicleSalesTotal(entry),
			Closing:           ClosingStock(entry),
		}
		if product, ok := s.catalog.LookupProduct(entry.ProductID); ok {
			row.ProductName = product.Name
			row.Category = product.Category
		}
		summary.Stock = append(summary.Stock, row)

		t := &summary.Totals
		t.Opening += entry.Opening
		t.Receipts += entry.Receipts
		t.SalesOffice += entry.SalesOffice
		t.VehicleSales += row.VehicleSalesTotal
		t.Dispatch += entry.Dispatch
		t.Closing += row.Closing

		if price, ok := unitPrices[entry.ProductID]; ok {
			closingValue = closingValue.Add(price.Mul(decimal.NewFromInt(int64(row.Closing))))
		}
	}
	summary.Totals.ClosingValue = closingValue.Round(2).InexactFloat64()

	return summary, nil
}
