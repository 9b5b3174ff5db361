package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/oilledger/internal/apperror"
	"github.com/mamadbah2/oilledger/internal/domain/models"
	"github.com/mamadbah2/oilledger/internal/service/pricing"
)

// PriceService is the price ledger.
type PriceService interface {
	CurrentPrices(ctx context.Context) ([]models.CurrentPrice, error)
	SetPrice(ctx context.Context, in pricing.SetPriceInput) (models.PriceRecord, error)
	History(ctx context.Context, productID int64) ([]models.PriceRecord, error)
}

// PriceHandler serves the price ledger.
type PriceHandler struct {
	svc    PriceService
	logger *zap.Logger
}

// NewPriceHandler constructs the price HTTP adapter.
func NewPriceHandler(svc PriceService, logger *zap.Logger) *PriceHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PriceHandler{svc: svc, logger: logger}
}

// Current lists the current price of every product that has one.
func (h *PriceHandler) Current(c *gin.Context) {
	prices, err := h.svc.CurrentPrices(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, prices)
}

// Set records a new current price.
func (h *PriceHandler) Set(c *gin.Context) {
	var in pricing.SetPriceInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, h.logger, invalidBody(err))
		return
	}

	rec, err := h.svc.SetPrice(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (h *PriceHandler) History(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Query("productId"), 10, 64)
	if err != nil || productID <= 0 {
		respondError(c, h.logger, apperror.NewValidation("productId must be a positive integer"))
		return
	}

	history, err := h.svc.History(c.Request.Context(), productID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, history)
}
