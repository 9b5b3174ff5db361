package reporting

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/mamadbah2/oilledger/internal/domain/models"
)

const (
	stockSheet    = "Stock"
	dispatchSheet = "Dispatch"
	pricesSheet   = "Prices"
)

// WriteWorkbook renders the summary of date as an XLSX workbook with Stock,
// Dispatch and Prices sheets.
func (s *Service) WriteWorkbook(ctx context.Context, date string, w io.Writer) error {
	summary, err := s.summaries.DaySummary(ctx, date)
	if err != nil {
		return fmt.Errorf("build summary for %s: %w", date, err)
	}

	f, err := BuildWorkbook(summary)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// BuildWorkbook lays a summary out over three sheets.
func BuildWorkbook(summary models.DaySummary) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", stockSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(dispatchSheet); err != nil {
		return nil, fmt.Errorf("add dispatch sheet: %w", err)
	}
	if _, err := f.NewSheet(pricesSheet); err != nil {
		return nil, fmt.Errorf("add prices sheet: %w", err)
	}

	stockRows := [][]interface{}{
		{"Date", "Product", "Category", "Opening", "Receipts", "Office sales", "Vehicle sales", "Dispatch", "Closing"},
	}
	for _, row := range summary.Stock {
		stockRows = append(stockRows, []interface{}{
			summary.Date, row.ProductName, row.Category, row.Opening, row.Receipts,
			row.SalesOffice, row.VehicleSalesTotal, row.Dispatch, row.Closing,
		})
	}
	t := summary.Totals
	stockRows = append(stockRows, []interface{}{
		"Total", "", "", t.Opening, t.Receipts, t.SalesOffice, t.VehicleSales, t.Dispatch, t.Closing,
	})
	if err := writeRows(f, stockSheet, stockRows); err != nil {
		return nil, err
	}

	header := []interface{}{"Product"}
	for _, vehicle := range summary.Dispatch.Vehicles {
		header = append(header, vehicle)
	}
	header = append(header, "Total")
	dispatchRows := [][]interface{}{header}
	for _, row := range summary.Dispatch.ProductRows {
		line := []interface{}{row.Name}
		for _, vehicle := range summary.Dispatch.Vehicles {
			line = append(line, row.QuantityPerVehicle[vehicle])
		}
		line = append(line, row.RowTotal)
		dispatchRows = append(dispatchRows, line)
	}
	if len(summary.Dispatch.Vehicles) > 0 {
		totals := []interface{}{"Total"}
		for _, vehicle := range summary.Dispatch.Vehicles {
			totals = append(totals, summary.Dispatch.VehicleTotals[vehicle])
		}
		totals = append(totals, summary.Dispatch.VehicleTotals[models.GrandTotalKey])
		dispatchRows = append(dispatchRows, totals)
	}
	if err := writeRows(f, dispatchSheet, dispatchRows); err != nil {
		return nil, err
	}

	priceRows := [][]interface{}{
		{"Product", "Category", "Base rate", "Conversion factor", "Unit price", "Effective"},
	}
	for _, p := range summary.Prices {
		priceRows = append(priceRows, []interface{}{
			p.Product.Name, p.Product.Category, p.BaseRate, p.ConversionFactor, p.UnitPrice,
			p.EffectiveDate.Format(models.DateLayout),
		})
	}
	if err := writeRows(f, pricesSheet, priceRows); err != nil {
		return nil, err
	}

	return f, nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for r, row := range rows {
		for c, value := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return fmt.Errorf("cell %d,%d: %w", c+1, r+1, err)
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("set %s!%s: %w", sheet, cell, err)
			}
		}
	}
	return nil
}
