// routes.go - Route registration helpers
// This file provides a clean way to register all API routes
package api

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/mickey-water/billing/internal/sms"
	"golang.org/x/time/rate"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Relay                Uploader
	SMS                  sms.Sender
	Logger               *slog.Logger
	Version              string
	MaxConcurrentUploads int
	SMSRatePerMinute     int
}

// Handlers holds all handler instances
type Handlers struct {
	Health HealthHandler
	Relay  RelayHandler
	Record RecordHandler
	SMS    SMSHandler
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		Health: NewHealthHandler(deps.Version),
		Relay:  NewRelayHandler(deps.Relay, deps.MaxConcurrentUploads),
		Record: NewRecordHandler(deps.Logger),
		SMS:    NewSMSHandler(deps.SMS),
	}
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers, deps *Dependencies) {
	e.GET("/health", handlers.Health.HandleHealth)

	e.POST("/save-to-mega", handlers.Relay.HandleSaveToMega)
	e.POST("/save-record", handlers.Record.HandleSaveRecord)

	if deps.SMSRatePerMinute > 0 {
		e.POST("/send-sms", handlers.SMS.HandleSendSMS, smsRateLimiter(deps.SMSRatePerMinute))
	} else {
		e.POST("/send-sms", handlers.SMS.HandleSendSMS)
	}
}

// smsRateLimiter limits each client IP to perMinute messages.
func smsRateLimiter(perMinute int) echo.MiddlewareFunc {
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(float64(perMinute) / 60),
		Burst:     perMinute,
		ExpiresIn: 3 * time.Minute,
	})
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
	})
}

// SetupMiddleware configures common middleware
func SetupMiddleware(e *echo.Echo, logger *slog.Logger, showDetails bool) {
	e.HTTPErrorHandler = NewErrorHandler(logger, showDetails)
	e.Use(middleware.Recover())
}
