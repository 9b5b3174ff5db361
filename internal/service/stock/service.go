// Package stock is the daily stock ledger: one entry per product and day.
package stock

import (
	"context"
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

// Catalog is the subset of the catalog the stock ledger needs.
type Catalog interface {
	ActiveProduct(id int64) (models.Product, error)
	ActiveVehicle(number string) (models.Vehicle, error)
}

// UpsertFieldInput sets one editable quantity of a day's entry.
type UpsertFieldInput struct {
	ProductID int64             `json:"productId" validate:"required,gt=0"`
	Date      string            `json:"date" validate:"required"`
	Field     models.StockField `json:"field" validate:"required"`
	Value     *int              `json:"value" validate:"required,gte=0"`
}

// VehicleSaleInput records the quantity sold through one vehicle.
type VehicleSaleInput struct {
	ProductID     int64  `json:"productId" validate:"required,gt=0"`
	Date          string `json:"date" validate:"required"`
	VehicleNumber string `json:"vehicleNumber" validate:"required"`
	Quantity      *int   `json:"quantity" validate:"required,gte=0"`
}

// Service is the daily stock ledger. Every write holds the (product, date) lock
// across its read-modify-write.
type Service struct {
	store    store.Store
	catalog  Catalog
	locker   lock.Locker
	opening  OpeningPolicy
	validate *validator.Validate
	logger   *zap.Logger
	now      func() time.Time
	newID    func() string
}

// NewService wires the stock ledger. A nil opening policy means ZeroOpening.
func NewService(st store.Store, catalog Catalog, locker lock.Locker, opening OpeningPolicy, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opening == nil {
		opening = ZeroOpening{}
	}
	return &Service{
		store:    st,
		catalog:  catalog,
		locker:   locker,
		opening:  opening,
		validate: validator.New(),
		logger:   logger,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Day returns the entries touched on date, ordered by product id. A day with
// no entries yields an empty slice.
func (s *Service) Day(ctx context.Context, date string) ([]models.DailyStockEntry, error) {
	date, err := models.ParseDate(date)
	if err != nil {
		return nil, apperror.NewValidation(err.Error())
	}

	entries := []models.DailyStockEntry{}
	if err := s.store.Find(ctx, store.StockLog, store.Filter{"date": date}, &entries); err != nil {
		return nil, fmt.Errorf("load stock log for %s: %w", date, err)
	}
	for i := range entries {
		if entries[i].VehicleSales == nil {
			entries[i].VehicleSales = map[string]int{}
		}
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].ProductID < entries[j].ProductID })
	return entries, nil
}

// UpsertField sets opening, receipts or office sales. The entry is created on
// first write with the remaining fields at their defaults.
func (s *Service) UpsertField(ctx context.Context, in UpsertFieldInput) (models.DailyStockEntry, error) {
	if err := s.validate.Struct(in); err != nil {
		return models.DailyStockEntry{}, apperror.FromValidator(err)
	}
	value := *in.Value
	if !in.Field.Valid() {
		return models.DailyStockEntry{}, apperror.NewValidation(fmt.Sprintf("field %q cannot be set; use opening, receipts or salesOffice", in.Field))
	}
	date, err := models.ParseDate(in.Date)
	if err != nil {
		return models.DailyStockEntry{}, apperror.NewValidation(err.Error())
	}
	if _, err := s.catalog.ActiveProduct(in.ProductID); err != nil {
		return models.DailyStockEntry{}, err
	}

	release, err := s.acquire(ctx, in.ProductID, date)
	if err != nil {
		return models.DailyStockEntry{}, err
	}
	defer release()

	entry, found, err := s.find(ctx, in.ProductID, date)
	if err != nil {
		return models.DailyStockEntry{}, err
	}

	if !found {
		entry, err = s.newEntry(ctx, in.ProductID, date, in.Field == models.FieldOpening)
		if err != nil {
			return models.DailyStockEntry{}, err
		}
		entry.Set(in.Field, value)
		if err := s.insert(ctx, entry); err != nil {
			return models.DailyStockEntry{}, err
		}
		return entry, nil
	}

	entry.Set(in.Field, value)
	entry.UpdatedAt = s.now().UTC()
	if err := s.store.Update(ctx, store.StockLog, entry.ID, store.Fields{
		string(in.Field): value,
		"updatedAt":      entry.UpdatedAt,
	}); err != nil {
		return models.DailyStockEntry{}, fmt.Errorf("update %s of product %d on %s: %w", in.Field, in.ProductID, date, err)
	}

	s.logger.Debug("stock field updated",
		zap.Int64("product_id", in.ProductID),
		zap.String("date", date),
		zap.String("field", string(in.Field)),
		zap.Int("value", value))
	return entry, nil
}

// PostVehicleSale replaces the quantity sold via a vehicle. The day's entry
// must already exist.
func (s *Service) PostVehicleSale(ctx context.Context, in VehicleSaleInput) (models.DailyStockEntry, error) {
	if err := s.validate.Struct(in); err != nil {
		return models.DailyStockEntry{}, apperror.FromValidator(err)
	}
	date, err := models.ParseDate(in.Date)
	if err != nil {
		return models.DailyStockEntry{}, apperror.NewValidation(err.Error())
	}
	if _, err := s.catalog.ActiveVehicle(in.VehicleNumber); err != nil {
		return models.DailyStockEntry{}, err
	}

	release, err := s.acquire(ctx, in.ProductID, date)
	if err != nil {
		return models.DailyStockEntry{}, err
	}
	defer release()

	entry, found, err := s.find(ctx, in.ProductID, date)
	if err != nil {
		return models.DailyStockEntry{}, err
	}
	if !found {
		return models.DailyStockEntry{}, apperror.NewNotFound("stock entry", map[string]any{"productId": in.ProductID, "date": date})
	}

	if entry.VehicleSales == nil {
		entry.VehicleSales = map[string]int{}
	}
	entry.VehicleSales[in.VehicleNumber] = *in.Quantity
	entry.UpdatedAt = s.now().UTC()

	if err := s.store.Update(ctx, store.StockLog, entry.ID, store.Fields{
		"vehicleSales": entry.VehicleSales,
		"updatedAt":    entry.UpdatedAt,
	}); err != nil {
		return models.DailyStockEntry{}, fmt.Errorf("update vehicle sales of product %d on %s: %w", in.ProductID, date, err)
	}
	return entry, nil
}

// AddDispatch increments the day's dispatch total of a product, creating the
// entry when absent.
func (s *Service) AddDispatch(ctx context.Context, productID int64, date string, quantity int) (models.DailyStockEntry, error) {
	return s.adjustDispatch(ctx, productID, date, func(current int) int { return current + quantity })
}

// SetDispatch overwrites the day's dispatch total of a product. Used by
// reconciliation against the dispatch log.
func (s *Service) SetDispatch(ctx context.Context, productID int64, date string, total int) (models.DailyStockEntry, error) {
	return s.adjustDispatch(ctx, productID, date, func(int) int { return total })
}

func (s *Service) adjustDispatch(ctx context.Context, productID int64, date string, next func(int) int) (models.DailyStockEntry, error) {
	date, err := models.ParseDate(date)
	if err != nil {
		return models.DailyStockEntry{}, apperror.NewValidation(err.Error())
	}

	release, err := s.acquire(ctx, productID, date)
	if err != nil {
		return models.DailyStockEntry{}, err
	}
	defer release()

	entry, found, err := s.find(ctx, productID, date)
	if err != nil {
		return models.DailyStockEntry{}, err
	}

	if !found {
		entry, err = s.newEntry(ctx, productID, date, false)
		if err != nil {
			return models.DailyStockEntry{}, err
		}
		entry.Dispatch = next(0)
		if err := s.insert(ctx, entry); err != nil {
			return models.DailyStockEntry{}, err
		}
		return entry, nil
	}

	entry.Dispatch = next(entry.Dispatch)
	entry.UpdatedAt = s.now().UTC()
	if err := s.store.Update(ctx, store.StockLog, entry.ID, store.Fields{
		"dispatch":  entry.Dispatch,
		"updatedAt": entry.UpdatedAt,
	}); err != nil {
		return models.DailyStockEntry{}, fmt.Errorf("update dispatch of product %d on %s: %w", productID, date, err)
	}
	return entry, nil
}

func (s *Service) acquire(ctx context.Context, productID int64, date string) (func(), error) {
	key := fmt.Sprintf("stock:%s:%d", date, productID)
	release, err := s.locker.Acquire(ctx, key)
	if err != nil {
		return nil, apperror.NewLockTimeout(key, err)
	}
	return release, nil
}

func (s *Service) find(ctx context.Context, productID int64, date string) (models.DailyStockEntry, bool, error) {
	var entry models.DailyStockEntry
	err := s.store.FindOne(ctx, store.StockLog, store.Filter{"productId": productID, "date": date}, &entry)
	if apperror.IsNotFound(err) {
		return models.DailyStockEntry{}, false, nil
	}
	if err != nil {
		return models.DailyStockEntry{}, false, fmt.Errorf("load stock entry of product %d on %s: %w", productID, date, err)
	}
	return entry, true, nil
}

// newEntry builds an unsaved entry. The opening policy is skipped when the
// caller is about to set opening itself.
func (s *Service) newEntry(ctx context.Context, productID int64, date string, settingOpening bool) (models.DailyStockEntry, error) {
	now := s.now().UTC()
	entry := models.DailyStockEntry{
		ID:           s.newID(),
		ProductID:    productID,
		Date:         date,
		VehicleSales: map[string]int{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if settingOpening {
		return entry, nil
	}

	opening, err := s.opening.Opening(ctx, productID, date)
	if err != nil {
		return models.DailyStockEntry{}, fmt.Errorf("seed opening of product %d on %s: %w", productID, date, err)
	}
	entry.Opening = opening
	return entry, nil
}

func (s *Service) insert(ctx context.Context, entry models.DailyStockEntry) error {
	if err := s.store.Insert(ctx, store.StockLog, entry.ID, entry); err != nil {
		return fmt.Errorf("create stock entry of product %d on %s: %w", entry.ProductID, entry.Date, err)
	}
	s.logger.Info("stock entry created",
		zap.Int64("product_id", entry.ProductID),
		zap.String("date", entry.Date),
		zap.Int("opening", entry.Opening))
	return nil
}
