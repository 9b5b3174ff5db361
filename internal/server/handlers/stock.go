package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/oilledger/internal/domain/models"
	"github.com/mamadbah2/oilledger/internal/service/stock"
)

// StockService is the daily stock ledger.
type StockService interface {
	Day(ctx context.Context, date string) ([]models.DailyStockEntry, error)
	UpsertField(ctx context.Context, in stock.UpsertFieldInput) (models.DailyStockEntry, error)
	PostVehicleSale(ctx context.Context, in stock.VehicleSaleInput) (models.DailyStockEntry, error)
}

// StockHandler serves the stock log and vehicle sales.
type StockHandler struct {
	svc    StockService
	clock  Clock
	logger *zap.Logger
}

// NewStockHandler constructs the stock HTTP adapter.
func NewStockHandler(svc StockService, clock Clock, logger *zap.Logger) *StockHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockHandler{svc: svc, clock: clock, logger: logger}
}

// Day lists the ledger entries of ?date=, today by default.
func (h *StockHandler) Day(c *gin.Context) {
	date, err := h.clock.date(c.Query("date"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	entries, err := h.svc.Day(c.Request.Context(), date)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// Upsert sets opening, receipts or salesOffice for a product and day.
func (h *StockHandler) Upsert(c *gin.Context) {
	var in stock.UpsertFieldInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, h.logger, invalidBody(err))
		return
	}
	if in.Date == "" {
		in.Date = h.clock.today()
	}

	entry, err := h.svc.UpsertField(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// VehicleSale replaces the quantity a vehicle sold of a product on a day.
func (h *StockHandler) VehicleSale(c *gin.Context) {
	var in stock.VehicleSaleInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, h.logger, invalidBody(err))
		return
	}
	if in.Date == "" {
		in.Date = h.clock.today()
	}

	entry, err := h.svc.PostVehicleSale(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}
