package catalog

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/mamadbah2/oilledger/internal/apperror"
	"github.com/mamadbah2/oilledger/internal/domain/models"
	"github.com/mamadbah2/oilledger/internal/repository/store"
)

// SeedResult counts what Seed inserted and skipped.
type SeedResult struct {
	Products int `json:"products"`
	Routes   int `json:"routes"`
	Vehicles int `json:"vehicles"`
	Skipped  int `json:"skipped"`
}

// Service holds the reference data snapshot shared by every ledger component.
// The snapshot is read from the store by Load and replaced wholesale.
type Service struct {
	store  store.Store
	logger *zap.Logger

	mu       sync.RWMutex
	products map[int64]models.Product
	routes   map[string]models.Route
	vehicles map[string]models.Vehicle
}

// NewService returns a catalog with an empty snapshot; call Load before use.
func NewService(st store.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:    st,
		logger:   logger,
		products: map[int64]models.Product{},
		routes:   map[string]models.Route{},
		vehicles: map[string]models.Vehicle{},
	}
}

// Seed inserts the reference rows. Rows that already exist are logged and
// skipped; any other failure aborts.
func (s *Service) Seed(ctx context.Context, data SeedData) (SeedResult, error) {
	var res SeedResult

	insert := func(entity store.Entity, id any, doc any) (bool, error) {
		err := s.store.Insert(ctx, entity, id, doc)
		if apperror.IsDuplicate(err) {
			s.logger.Warn("catalog row already exists", zap.String("entity", string(entity)), zap.Any("id", id))
			res.Skipped++
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("seed %s %v: %w", entity, id, err)
		}
		return true, nil
	}

	for _, p := range data.Products {
		ok, err := insert(store.Products, p.ID, p)
		if err != nil {
			return res, err
		}
		if ok {
			res.Products++
		}
	}
	for _, r := range data.Routes {
		ok, err := insert(store.Routes, r.ID, r)
		if err != nil {
			return res, err
		}
		if ok {
			res.Routes++
		}
	}
	for _, v := range data.Vehicles {
		ok, err := insert(store.Vehicles, v.ID, v)
		if err != nil {
			return res, err
		}
		if ok {
			res.Vehicles++
		}
	}

	s.logger.Info("catalog seeded",
		zap.Int("products", res.Products),
		zap.Int("routes", res.Routes),
		zap.Int("vehicles", res.Vehicles),
		zap.Int("skipped", res.Skipped))

	return res, s.Load(ctx)
}

// Load replaces the snapshot with the store's current reference data.
func (s *Service) Load(ctx context.Context) error {
	var products []models.Product
	if err := s.store.Find(ctx, store.Products, store.Filter{}, &products); err != nil {
		return fmt.Errorf("load products: %w", err)
	}
	var routes []models.Route
	if err := s.store.Find(ctx, store.Routes, store.Filter{}, &routes); err != nil {
		return fmt.Errorf("load routes: %w", err)
	}
	var vehicles []models.Vehicle
	if err := s.store.Find(ctx, store.Vehicles, store.Filter{}, &vehicles); err != nil {
		return fmt.Errorf("load vehicles: %w", err)
	}

	productIdx := make(map[int64]models.Product, len(products))
	for _, p := range products {
		productIdx[p.ID] = p
	}
	routeIdx := make(map[string]models.Route, len(routes))
	for _, r := range routes {
		routeIdx[r.Name] = r
	}
	vehicleIdx := make(map[string]models.Vehicle, len(vehicles))
	for _, v := range vehicles {
		vehicleIdx[v.Number] = v
	}

	s.mu.Lock()
	s.products, s.routes, s.vehicles = productIdx, routeIdx, vehicleIdx
	s.mu.Unlock()

	s.logger.Debug("catalog loaded",
		zap.Int("products", len(products)),
		zap.Int("routes", len(routes)),
		zap.Int("vehicles", len(vehicles)))
	return nil
}

// Products lists active products ordered by category then name.
func (s *Service) Products() []models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		if p.IsActive {
			out = append(out, p)
		}
	}
	SortProducts(out)
	return out
}

// Routes lists active routes ordered by id.
func (s *Service) Routes() []models.Route {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Route, 0, len(s.routes))
	for _, r := range s.routes {
		if r.IsActive {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Vehicles lists active vehicles ordered by id.
func (s *Service) Vehicles() []models.Vehicle {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Vehicle, 0, len(s.vehicles))
	for _, v := range s.vehicles {
		if v.IsActive {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// LookupProduct resolves any product, active or not.
func (s *Service) LookupProduct(id int64) (models.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	return p, ok
}

// ActiveProduct resolves a product that can receive new ledger postings.
func (s *Service) ActiveProduct(id int64) (models.Product, error) {
	p, ok := s.LookupProduct(id)
	if !ok || !p.IsActive {
		return models.Product{}, apperror.NewNotFound("product", id)
	}
	return p, nil
}

// ActiveRoute resolves a route by name.
func (s *Service) ActiveRoute(name string) (models.Route, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.routes[name]
	if !ok || !r.IsActive {
		return models.Route{}, apperror.NewNotFound("route", name)
	}
	return r, nil
}

// ActiveVehicle resolves a vehicle by number.
func (s *Service) ActiveVehicle(number string) (models.Vehicle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vehicles[number]
	if !ok || !v.IsActive {
		return models.Vehicle{}, apperror.NewNotFound("vehicle", number)
	}
	return v, nil
}

// SortProducts orders products by category, then name, then id.
func SortProducts(products []models.Product) {
	sort.Slice(products, func(i, j int) bool {
		a, b := products[i], products[j]
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
}
