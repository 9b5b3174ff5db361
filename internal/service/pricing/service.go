// Package pricing keeps the per-product price history and its single current
// entry.
package pricing

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/oilledger/internal/apperror"
	"github.com/mamadbah2/oilledger/internal/domain/models"
	"github.com/mamadbah2/oilledger/internal/platform/lock"
	"github.com/mamadbah2/oilledger/internal/repository/store"
	"github.com/mamadbah2/oilledger/internal/service/aggregation"
)

// Catalog is the subset of the catalog the price ledger needs.
type Catalog interface {
	LookupProduct(id int64) (models.Product, bool)
	ActiveProduct(id int64) (models.Product, error)
}

// SetPriceInput is a price change request. A zero ConversionFactor snapshots
// the product's catalog factor.
type SetPriceInput struct {
	ProductID        int64   `json:"productId" validate:"required,gt=0"`
	BaseRate         float64 `json:"baseRate" validate:"gt=0"`
	ConversionFactor float64 `json:"conversionFactor" validate:"gte=0"`
}

// Service is the price ledger.
type Service struct {
	store    store.Store
	catalog  Catalog
	locker   lock.Locker
	validate *validator.Validate
	logger   *zap.Logger
	now      func() time.Time
	newID    func() string
}

// NewService wires the price ledger.
func NewService(st store.Store, catalog Catalog, locker lock.Locker, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:    st,
		catalog:  catalog,
		locker:   locker,
		validate: validator.New(),
		logger:   logger,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// CurrentPrices returns one row per priced product, ordered by category then name.
func (s *Service) CurrentPrices(ctx context.Context) ([]models.CurrentPrice, error) {
	var records []models.PriceRecord
	if err := s.store.Find(ctx, store.PriceLog, store.Filter{"isCurrent": true}, &records); err != nil {
		return nil, fmt.Errorf("load current prices: %w", err)
	}

	latest := make(map[int64]models.PriceRecord, len(records))
	for _, rec := range records {
		prev, seen := latest[rec.ProductID]
		if seen {
			s.logger.Warn("product has more than one current price",
				zap.Int64("product_id", rec.ProductID),
				zap.String("kept", newer(prev, rec).ID))
			rec = newer(prev, rec)
		}
		latest[rec.ProductID] = rec
	}

	out := make([]models.CurrentPrice, 0, len(latest))
	for productID, rec := range latest {
		product, ok := s.catalog.LookupProduct(productID)
		if !ok {
			s.logger.Warn("skipping price for unknown product", zap.Int64("product_id", productID), zap.String("price_id", rec.ID))
			continue
		}
		out = append(out, models.CurrentPrice{
			ID:               rec.ID,
			ProductID:        productID,
			Product:          product,
			BaseRate:         rec.BaseRate,
			ConversionFactor: rec.ConversionFactor,
			EffectiveDate:    rec.EffectiveDate,
			UnitPrice:        aggregation.UnitPrice(rec).InexactFloat64(),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Product, out[j].Product
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
	return out, nil
}

// SetPrice demotes the product's current price and records a new current one.
// Old records are kept for audit.
func (s *Service) SetPrice(ctx context.Context, in SetPriceInput) (models.PriceRecord, error) {
	if err := s.validate.Struct(in); err != nil {
		return models.PriceRecord{}, apperror.FromValidator(err)
	}

	product, err := s.catalog.ActiveProduct(in.ProductID)
	if err != nil {
		return models.PriceRecord{}, err
	}
	if in.ConversionFactor == 0 {
		in.ConversionFactor = product.ConversionFactor
	}

	key := "price:" + strconv.FormatInt(in.ProductID, 10)
	release, err := s.locker.Acquire(ctx, key)
	if err != nil {
		return models.PriceRecord{}, apperror.NewLockTimeout(key, err)
	}
	defer release()

	var current []models.PriceRecord
	filter := store.Filter{"productId": in.ProductID, "isCurrent": true}
	if err := s.store.Find(ctx, store.PriceLog, filter, &current); err != nil {
		return models.PriceRecord{}, fmt.Errorf("load current price of product %d: %w", in.ProductID, err)
	}
	for _, rec := range current {
		if err := s.store.Update(ctx, store.PriceLog, rec.ID, store.Fields{"isCurrent": false}); err != nil {
			return models.PriceRecord{}, fmt.Errorf("demote price %s: %w", rec.ID, err)
		}
	}

	rec := models.PriceRecord{
		ID:               s.newID(),
		ProductID:        in.ProductID,
		BaseRate:         in.BaseRate,
		ConversionFactor: in.ConversionFactor,
		EffectiveDate:    s.now().UTC(),
		IsCurrent:        true,
	}
	if err := s.store.Insert(ctx, store.PriceLog, rec.ID, rec); err != nil {
		return models.PriceRecord{}, fmt.Errorf("insert price for product %d: %w", in.ProductID, err)
	}

	s.logger.Info("price updated",
		zap.Int64("product_id", rec.ProductID),
		zap.Float64("base_rate", rec.BaseRate),
		zap.Float64("conversion_factor", rec.ConversionFactor),
		zap.Int("demoted", len(current)))
	return rec, nil
}

// History returns every price recorded for a product, newest first.
func (s *Service) History(ctx context.Context, productID int64) ([]models.PriceRecord, error) {
	if _, ok := s.catalog.LookupProduct(productID); !ok {
		return nil, apperror.NewNotFound("product", productID)
	}

	var records []models.PriceRecord
	if err := s.store.Find(ctx, store.PriceLog, store.Filter{"productId": productID}, &records); err != nil {
		return nil, fmt.Errorf("load price history of product %d: %w", productID, err)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].EffectiveDate.After(records[j].EffectiveDate)
	})
	return records, nil
}

func newer(a, b models.PriceRecord) models.PriceRecord {
	if b.EffectiveDate.After(a.EffectiveDate) {
		return b
	}
	return a
}
