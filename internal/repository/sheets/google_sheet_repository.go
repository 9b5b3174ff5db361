// Package sheets keeps the Closing sheet of the spreadsheet: one row per
// product and day, keyed by the date in column A.
package sheets

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mamadbah2/oilledger/internal/config"
)

const (
	closingRange     = "Closing!A:I"
	closingDateRange = "Closing!A:A"
)

// Repository is the Closing sheet as seen by the daily export.
type Repository interface {
	// ExportedDates lists the dates that already have rows.
	ExportedDates(ctx context.Context) (map[string]bool, error)
	// AppendClosingRows adds rows of [date, product, opening, receipts,
	// salesOffice, vehicleSales, dispatch, closing, category].
	AppendClosingRows(ctx context.Context, rows [][]interface{}) error
}

// GoogleSheetRepository stores the Closing sheet in a Google spreadsheet.
type GoogleSheetRepository struct {
	service       *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger
}

// NewGoogleSheetRepository authenticates with the service-account file from cfg.
func NewGoogleSheetRepository(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*GoogleSheetRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("init sheets client: %w", err)
	}

	return &GoogleSheetRepository{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		logger:        logger,
	}, nil
}

// AppendClosingRows inserts rows below the last closing row in one call.
func (r *GoogleSheetRepository) AppendClosingRows(ctx context.Context, rows [][]interface{}) error {
	if len(rows) == 0 {
		return nil
	}

	_, err := r.service.Spreadsheets.Values.
		Append(r.spreadsheetID, closingRange, &sheetsapi.ValueRange{Values: rows}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append %d closing rows: %w", len(rows), err)
	}

	r.logger.Debug("closing rows appended", zap.Int("rows", len(rows)))
	return nil
}

// ExportedDates reads column A of the Closing sheet.
func (r *GoogleSheetRepository) ExportedDates(ctx context.Context) (map[string]bool, error) {
	resp, err := r.service.Spreadsheets.Values.Get(r.spreadsheetID, closingDateRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read exported dates: %w", err)
	}
	return datesFromColumn(resp.Values), nil
}

// datesFromColumn keeps the YYYY-MM-DD prefix of every cell, since
// USER_ENTERED values may come back as date-times.
func datesFromColumn(values [][]interface{}) map[string]bool {
	dates := make(map[string]bool, len(values))
	for _, row := range values {
		if len(row) == 0 {
			continue
		}
		cell := strings.TrimSpace(fmt.Sprint(row[0]))
		if len(cell) > 10 {
			cell = cell[:10]
		}
		if cell != "" {
			dates[cell] = true
		}
	}
	return dates
}
