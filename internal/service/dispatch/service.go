// Package dispatch is the append-only dispatch log. Posting a dispatch also
// moves the stock ledger's dispatch totals for the day.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/oilledger/internal/apperror"
	"github.com/mamadbah2/oilledger/internal/domain/models"
	"github.com/mamadbah2/oilledger/internal/platform/lock"
	"github.com/mamadbah2/oilledger/internal/repository/store"
)

// Catalog is the subset of the catalog the dispatch log needs.
type Catalog interface {
	ActiveProduct(id int64) (models.Product, error)
	ActiveRoute(name string) (models.Route, error)
	ActiveVehicle(number string) (models.Vehicle, error)
}

// StockLedger receives the per-product dispatch quantities.
type StockLedger interface {
	Day(ctx context.Context, date string) ([]models.DailyStockEntry, error)
	AddDispatch(ctx context.Context, productID int64, date string, quantity int) (models.DailyStockEntry, error)
	SetDispatch(ctx context.Context, productID int64, date string, total int) (models.DailyStockEntry, error)
}

// PostInput is a dispatch request.
type PostInput struct {
	RouteName     string                `json:"routeName" validate:"required"`
	VehicleNumber string                `json:"vehicleNumber" validate:"required"`
	Date          string                `json:"date" validate:"required"`
	Lines         []models.DispatchLine `json:"lines" validate:"dive"`
}

// Service is the dispatch log.
type Service struct {
	store    store.Store
	catalog  Catalog
	stock    StockLedger
	locker   lock.Locker
	validate *validator.Validate
	logger   *zap.Logger
	now      func() time.Time
	newID    func() string
}

// NewService wires the dispatch log. Posts and reconciliations of the same day
// are serialized through locker.
func NewService(st store.Store, catalog Catalog, stock StockLedger, locker lock.Locker, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:    st,
		catalog:  catalog,
		stock:    stock,
		locker:   locker,
		validate: validator.New(),
		logger:   logger,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Post records a dispatch and adds its quantities to the day's stock ledger.
// Lines with a zero quantity are dropped; if none remain nothing is stored and
// (nil, nil) is returned.
//
// The entry is written first. When some stock increments fail afterwards the
// entry stays and a PARTIAL_APPLY error is returned with it; Reconcile repairs
// the totals.
func (s *Service) Post(ctx context.Context, in PostInput) (*models.DispatchEntry, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, apperror.FromValidator(err)
	}
	date, err := models.ParseDate(in.Date)
	if err != nil {
		return nil, apperror.NewValidation(err.Error())
	}
	if _, err := s.catalog.ActiveRoute(in.RouteName); err != nil {
		return nil, err
	}
	if _, err := s.catalog.ActiveVehicle(in.VehicleNumber); err != nil {
		return nil, err
	}

	lines := make([]models.DispatchLine, 0, len(in.Lines))
	for _, line := range in.Lines {
		if line.Quantity < 0 {
			return nil, apperror.NewValidation(fmt.Sprintf("quantity of product %d must not be negative", line.ProductID))
		}
		if line.Quantity == 0 {
			continue
		}
		if _, err := s.catalog.ActiveProduct(line.ProductID); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		s.logger.Debug("dispatch without quantities ignored",
			zap.String("route", in.RouteName),
			zap.String("vehicle", in.VehicleNumber))
		return nil, nil
	}

	release, err := s.acquireDay(ctx, date)
	if err != nil {
		return nil, err
	}
	defer release()

	entry := models.DispatchEntry{
		ID:            s.newID(),
		Date:          date,
		RouteName:     in.RouteName,
		VehicleNumber: in.VehicleNumber,
		CreatedAt:     s.now().UTC(),
		Lines:         lines,
	}
	if err := s.store.Insert(ctx, store.DispatchLog, entry.ID, entry); err != nil {
		return nil, fmt.Errorf("insert dispatch: %w", err)
	}

	var (
		failed []int64
		errs   []error
	)
	for _, line := range lines {
		if _, err := s.stock.AddDispatch(ctx, line.ProductID, date, line.Quantity); err != nil {
			s.logger.Warn("dispatch not applied to stock ledger",
				zap.String("dispatch_id", entry.ID),
				zap.Int64("product_id", line.ProductID),
				zap.Int("quantity", line.Quantity),
				zap.Error(err))
			failed = append(failed, line.ProductID)
			errs = append(errs, err)
		}
	}

	s.logger.Info("dispatch recorded",
		zap.String("dispatch_id", entry.ID),
		zap.String("date", date),
		zap.String("route", entry.RouteName),
		zap.String("vehicle", entry.VehicleNumber),
		zap.Int("lines", len(lines)),
		zap.Int("failed", len(failed)))

	if len(failed) > 0 {
		return &entry, apperror.NewPartialApply(entry.ID, failed, errors.Join(errs...))
	}
	return &entry, nil
}

// Log returns the dispatches of a day, newest first.
func (s *Service) Log(ctx context.Context, date string) ([]models.DispatchEntry, error) {
	date, err := models.ParseDate(date)
	if err != nil {
		return nil, apperror.NewValidation(err.Error())
	}

	entries := []models.DispatchEntry{}
	if err := s.store.Find(ctx, store.DispatchLog, store.Filter{"date": date}, &entries); err != nil {
		return nil, fmt.Errorf("load dispatch log for %s: %w", date, err)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	return entries, nil
}

// Reconcile makes every product's stock dispatch total for date equal the sum
// of the day's dispatch log and returns the totals it changed.
func (s *Service) Reconcile(ctx context.Context, date string) ([]models.DispatchCorrection, error) {
	date, err := models.ParseDate(date)
	if err != nil {
		return nil, apperror.NewValidation(err.Error())
	}
	release, err := s.acquireDay(ctx, date)
	if err != nil {
		return nil, err
	}
	defer release()

	entries, err := s.Log(ctx, date)
	if err != nil {
		return nil, err
	}
	stockEntries, err := s.stock.Day(ctx, date)
	if err != nil {
		return nil, err
	}

	logged := map[int64]int{}
	for _, entry := range entries {
		for _, line := range entry.Lines {
			logged[line.ProductID] += line.Quantity
		}
	}
	recorded := map[int64]int{}
	for _, entry := range stockEntries {
		recorded[entry.ProductID] = entry.Dispatch
	}

	productIDs := make([]int64, 0, len(logged)+len(recorded))
	for id := range logged {
		productIDs = append(productIDs, id)
	}
	for id := range recorded {
		if _, ok := logged[id]; !ok {
			productIDs = append(productIDs, id)
		}
	}
	sort.Slice(productIDs, func(i, j int) bool { return productIDs[i] < productIDs[j] })

	corrections := []models.DispatchCorrection{}
	for _, id := range productIDs {
		if logged[id] == recorded[id] {
			continue
		}
		if _, err := s.stock.SetDispatch(ctx, id, date, logged[id]); err != nil {
			return corrections, fmt.Errorf("reconcile dispatch of product %d: %w", id, err)
		}
		corrections = append(corrections, models.DispatchCorrection{
			ProductID: id,
			Recorded:  recorded[id],
			Logged:    logged[id],
		})
	}

	if len(corrections) > 0 {
		s.logger.Warn("dispatch totals reconciled", zap.String("date", date), zap.Any("corrections", corrections))
	}
	return corrections, nil
}

func (s *Service) acquireDay(ctx context.Context, date string) (func(), error) {
	key := "dispatch:" + date
	release, err := s.locker.Acquire(ctx, key)
	if err != nil {
		return nil, apperror.NewLockTimeout(key, err)
	}
	return release, nil
}
