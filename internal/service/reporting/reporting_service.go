package reporting

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/oilledger/internal/domain/models"
	repo "github.com/mamadbah2/oilledger/internal/repository/sheets"
)

// SummaryBuilder produces the composed view of a ledger day.
type SummaryBuilder interface {
	DaySummary(ctx context.Context, date string) (models.DaySummary, error)
}

// Service turns day summaries into the daily report text, spreadsheet rows and
// workbooks.
type Service struct {
	summaries SummaryBuilder
	sheets    repo.Repository
	logger    *zap.Logger
}

// NewService wires a new reporting service instance. sheetsRepo may be nil
// when the spreadsheet export is not configured.
func NewService(summaries SummaryBuilder, sheetsRepo repo.Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{summaries: summaries, sheets: sheetsRepo, logger: logger}
}

// DailyReport builds the text report for date.
func (s *Service) DailyReport(ctx context.Context, date string) (string, error) {
	summary, err := s.summaries.DaySummary(ctx, date)
	if err != nil {
		return "", fmt.Errorf("build summary for %s: %w", date, err)
	}
	return FormatDailyReport(summary), nil
}

// FormatDailyReport renders a summary as a plain text message.
func FormatDailyReport(summary models.DaySummary) string {
	if len(summary.Stock) == 0 && len(summary.Dispatch.Vehicles) == 0 {
		return fmt.Sprintf("Stock report %s: no ledger entries yet.", summary.Date)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Stock report %s\n", summary.Date)

	for _, row := range summary.Stock {
		name := row.ProductName
		if name == "" {
			name = fmt.Sprintf("Product #%d", row.ProductID)
		}
		fmt.Fprintf(&b, "%s: open %d, in %d, office %d, vehicles %d, dispatch %d, close %d\n",
			name, row.Opening, row.Receipts, row.SalesOffice, row.VehicleSalesTotal, row.Dispatch, row.Closing)
		if row.Closing < 0 {
			fmt.Fprintf(&b, "  ! negative closing stock, check entries for %s\n", name)
		}
	}

	t := summary.Totals
	fmt.Fprintf(&b, "Totals: open %d, in %d, office %d, vehicles %d, dispatch %d, close %d\n",
		t.Opening, t.Receipts, t.SalesOffice, t.VehicleSales, t.Dispatch, t.Closing)
	fmt.Fprintf(&b, "Closing stock value: %.2f\n", t.ClosingValue)

	if len(summary.Dispatch.Vehicles) > 0 {
		parts := make([]string, 0, len(summary.Dispatch.Vehicles))
		for _, vehicle := range summary.Dispatch.Vehicles {
			parts = append(parts, fmt.Sprintf("%s=%d", vehicle, summary.Dispatch.VehicleTotals[vehicle]))
		}
		fmt.Fprintf(&b, "Dispatch by vehicle: %s (total %d)\n",
			strings.Join(parts, ", "), summary.Dispatch.VehicleTotals[models.GrandTotalKey])
	}

	return strings.TrimRight(b.String(), "\n")
}

// ExportToSheets appends one row per product of date to the Closing sheet and
// returns the number of rows written. A date already present in the sheet is
// skipped so the scheduled export can be rerun safely.
func (s *Service) ExportToSheets(ctx context.Context, date string) (int, error) {
	if s.sheets == nil {
		return 0, nil
	}

	summary, err := s.summaries.DaySummary(ctx, date)
	if err != nil {
		return 0, fmt.Errorf("build summary for %s: %w", date, err)
	}
	if len(summary.Stock) == 0 {
		return 0, nil
	}

	exported, err := s.sheets.ExportedDates(ctx)
	if err != nil {
		return 0, err
	}
	if exported[summary.Date] {
		s.logger.Info("day already exported", zap.String("date", summary.Date))
		return 0, nil
	}

	rows := make([][]interface{}, 0, len(summary.Stock))
	for _, row := range summary.Stock {
		rows = append(rows, []interface{}{
			summary.Date,
			row.ProductName,
			row.Opening,
			row.Receipts,
			row.SalesOffice,
			row.VehicleSalesTotal,
			row.Dispatch,
			row.Closing,
			row.Category,
		})
	}

	if err := s.sheets.AppendClosingRows(ctx, rows); err != nil {
		return 0, fmt.Errorf("export %s: %w", summary.Date, err)
	}

	s.logger.Info("day exported to sheets", zap.String("date", summary.Date), zap.Int("rows", len(rows)))
	return len(rows), nil
}
