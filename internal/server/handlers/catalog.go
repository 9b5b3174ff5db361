package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/oilledger/internal/domain/models"
	"github.com/mamadbah2/oilledger/internal/service/catalog"
)

// CatalogService is the reference data surface served over HTTP.
type CatalogService interface {
	Products() []models.Product
	Routes() []models.Route
	Vehicles() []models.Vehicle
	Seed(ctx context.Context, data catalog.SeedData) (catalog.SeedResult, error)
}

// CatalogHandler serves products, routes and vehicles.
type CatalogHandler struct {
	svc    CatalogService
	logger *zap.Logger
}

// NewCatalogHandler constructs the catalog HTTP adapter.
func NewCatalogHandler(svc CatalogService, logger *zap.Logger) *CatalogHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogHandler{svc: svc, logger: logger}
}

// Products lists active products.
func (h *CatalogHandler) Products(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Products())
}

// Routes lists active routes.
func (h *CatalogHandler) Routes(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Routes())
}

// Vehicles lists active vehicles.
func (h *CatalogHandler) Vehicles(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Vehicles())
}

// InitDB seeds the default catalog. Existing rows are left untouched.
func (h *CatalogHandler) InitDB(c *gin.Context) {
	res, err := h.svc.Seed(c.Request.Context(), catalog.DefaultSeed())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.logger.Info("catalog seeded",
		zap.Int("products", res.Products),
		zap.Int("routes", res.Routes),
		zap.Int("vehicles", res.Vehicles),
		zap.Int("skipped", res.Skipped))
	c.JSON(http.StatusOK, res)
}
