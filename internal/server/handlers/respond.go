package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/oilledger/internal/apperror"
	"github.com/mamadbah2/oilledger/internal/domain/models"
)

type errorBody struct {
	Error *apperror.AppError `json:"error"`
}

// respondError renders err as {"error": {code, message, details}}.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	status := apperror.GetHTTPStatus(err)
	appErr, ok := apperror.AsAppError(err)
	if !ok {
		appErr = apperror.NewInternal(err)
	}

	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.String("code", appErr.Code),
			zap.Error(err))
	} else {
		logger.Debug("request rejected",
			zap.String("path", c.FullPath()),
			zap.String("code", appErr.Code),
			zap.String("message", appErr.Message))
	}

	c.JSON(status, errorBody{Error: appErr})
}

func invalidBody(err error) error {
	return apperror.NewValidation("invalid request body").WithCause(err)
}

// Clock resolves the default ledger date.
type Clock struct {
	Location *time.Location
	Now      func() time.Time
}

func (k Clock) today() string {
	now := time.Now
	if k.Now != nil {
		now = k.Now
	}
	return models.Today(now(), k.Location)
}

// date returns value in canonical form, or today when value is empty.
func (k Clock) date(value string) (string, error) {
	if value == "" {
		return k.today(), nil
	}
	date, err := models.ParseDate(value)
	if err != nil {
		return "", apperror.NewValidation(err.Error())
	}
	return date, nil
}
