package handlers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/oilledger/internal/domain/models"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// SummaryService builds the day summary.
type SummaryService interface {
	DaySummary(ctx context.Context, date string) (models.DaySummary, error)
}

// WorkbookWriter renders a day as an XLSX workbook.
type WorkbookWriter interface {
	WriteWorkbook(ctx context.Context, date string, w io.Writer) error
}

// SummaryHandler serves the composed day view.
type SummaryHandler struct {
	summaries SummaryService
	workbooks WorkbookWriter
	clock     Clock
	logger    *zap.Logger
}

// NewSummaryHandler constructs the summary HTTP adapter.
func NewSummaryHandler(summaries SummaryService, workbooks WorkbookWriter, clock Clock, logger *zap.Logger) *SummaryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SummaryHandler{summaries: summaries, workbooks: workbooks, clock: clock, logger: logger}
}

func (h *SummaryHandler) Day(c *gin.Context) {
	date, err := h.clock.date(c.Query("date"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	summary, err := h.summaries.DaySummary(c.Request.Context(), date)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Export downloads the day as a workbook.
func (h *SummaryHandler) Export(c *gin.Context) {
	date, err := h.clock.date(c.Query("date"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	var buf bytes.Buffer
	if err := h.workbooks.WriteWorkbook(c.Request.Context(), date, &buf); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="oil-ledger-%s.xlsx"`, date))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
