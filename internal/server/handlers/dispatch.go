package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/oilledger/internal/apperror"
	"github.com/mamadbah2/oilledger/internal/domain/models"
	"github.com/mamadbah2/oilledger/internal/service/dispatch"
)

// DispatchService is the dispatch log.
type DispatchService interface {
	Post(ctx context.Context, in dispatch.PostInput) (*models.DispatchEntry, error)
	Log(ctx context.Context, date string) ([]models.DispatchEntry, error)
	Reconcile(ctx context.Context, date string) ([]models.DispatchCorrection, error)
}

// DispatchHandler serves the dispatch log.
type DispatchHandler struct {
	svc    DispatchService
	clock  Clock
	logger *zap.Logger
}

// NewDispatchHandler constructs the dispatch HTTP adapter.
func NewDispatchHandler(svc DispatchService, clock Clock, logger *zap.Logger) *DispatchHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DispatchHandler{svc: svc, clock: clock, logger: logger}
}

type partialApplyBody struct {
	Error *apperror.AppError    `json:"error"`
	Entry *models.DispatchEntry `json:"entry"`
}

// Post records a dispatch. A request whose lines are all zero records nothing
// and answers 204.
func (h *DispatchHandler) Post(c *gin.Context) {
	var in dispatch.PostInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, h.logger, invalidBody(err))
		return
	}
	if in.Date == "" {
		in.Date = h.clock.today()
	}

	entry, err := h.svc.Post(c.Request.Context(), in)
	if err != nil {
		if appErr, ok := apperror.AsAppError(err); ok && appErr.Code == apperror.CodePartialApply && entry != nil {
			h.logger.Error("dispatch partially applied", zap.String("dispatch_id", entry.ID), zap.Error(err))
			c.JSON(appErr.HTTPStatus, partialApplyBody{Error: appErr, Entry: entry})
			return
		}
		respondError(c, h.logger, err)
		return
	}
	if entry == nil {
		c.Status(http.StatusNoContent)
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// Log lists the dispatches of ?date=, newest first.
func (h *DispatchHandler) Log(c *gin.Context) {
	date, err := h.clock.date(c.Query("date"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	entries, err := h.svc.Log(c.Request.Context(), date)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// Reconcile realigns the stock dispatch totals of ?date= with the log.
func (h *DispatchHandler) Reconcile(c *gin.Context) {
	date, err := h.clock.date(c.Query("date"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	corrections, err := h.svc.Reconcile(c.Request.Context(), date)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if corrections == nil {
		corrections = []models.DispatchCorrection{}
	}

	c.JSON(http.StatusOK, gin.H{"date": date, "corrections": corrections})
}
