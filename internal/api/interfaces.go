// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/mickey-water/billing/internal/models"
)

// RelayHandler handles remote storage upload relay operations
type RelayHandler interface {
	HandleSaveToMega(c echo.Context) error
}

// RecordHandler handles billing record operations
type RecordHandler interface {
	HandleSaveRecord(c echo.Context) error
}

// SMSHandler handles SMS operations
type SMSHandler interface {
	HandleSendSMS(c echo.Context) error
}

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}

// Uploader defines the relay coordinator used by RelayHandler.
// This allows mocking in tests
type Uploader interface {
	HandleUpload(ctx context.Context, req models.UploadRequest) models.UploadResult
	Provider() string
}
