// handlers_record.go - Billing record handlers
package api

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/mickey-water/billing/internal/models"
)

// RecordHandlerImpl implements the RecordHandler interface
type RecordHandlerImpl struct {
	logger *slog.Logger
	now    func() time.Time
}

// NewRecordHandler creates a new record handler
func NewRecordHandler(logger *slog.Logger) RecordHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecordHandlerImpl{logger: logger, now: time.Now}
}

// HandleSaveRecord validates a billing record and logs it. Records are not
// stored.
func (h *RecordHandlerImpl) HandleSaveRecord(c echo.Context) error {
	var req saveRecordRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}

	values, err := req.validate()
	if err != nil {
		return err
	}

	now := h.now()
	date := req.Date
	if date == "" {
		date = now.UTC().Format("2006-01-02T15:04:05.000Z")
	}

	record := models.BillingRecord{
		ID:    now.UnixMilli(),
		Name:  strings.TrimSpace(req.Name.text()),
		Phone: strings.TrimSpace(req.Phone.text()),
		Prev:  values["prev"],
		Curr:  values["curr"],
		Usage: values["curr"] - values["prev"],
		Rate:  values["rate"],
		Fixed: values["fixed"],
		Total: values["total"],
		Date:  date,
	}

	h.logger.InfoContext(c.Request().Context(), "billing record saved",
		"id", record.ID,
		"name", record.Name,
		"phone", record.Phone,
		"usage", record.Usage,
		"total", record.Total,
		"date", record.Date,
	)

	return respond(c, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Record saved successfully",
		"record":  record,
	})
}
