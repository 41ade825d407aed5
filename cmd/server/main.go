package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/mickey-water/billing/internal/api"
	"github.com/mickey-water/billing/internal/config"
	"github.com/mickey-water/billing/internal/relay"
	"github.com/mickey-water/billing/internal/sms"
	"github.com/mickey-water/billing/internal/storage"
	"github.com/mickey-water/billing/internal/web"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

const shutdownTimeout = 15 * time.Second

func main() {
	configPath, err := config.DefaultPath()
	if err != nil {
		fmt.Printf("Failed to resolve config path: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(os.Stdout, cfg.Advanced)
	slog.SetDefault(logger)

	provider, err := storage.NewProvider(cfg.Relay.Provider, storage.Options{
		Mega: storage.MegaOptions{
			APIURL:      cfg.Mega.APIURL,
			Retries:     cfg.Mega.Retries,
			HTTPTimeout: time.Duration(cfg.Mega.HTTPTimeoutSeconds) * time.Second,
		},
		S3: storage.S3Options{
			Endpoint:  cfg.S3.Endpoint,
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			KeyPrefix: cfg.S3.KeyPrefix,
			UseSSL:    cfg.S3.UseSSL,
		},
	})
	if err != nil {
		logger.Error("failed to initialize storage provider", "error", err)
		os.Exit(1)
	}

	coordinator := relay.NewCoordinator(provider, relay.Config{
		AuthTimeout:   cfg.AuthTimeout(),
		UploadTimeout: cfg.UploadTimeout(),
	}, logger)

	embeddedMode := web.HasEmbeddedFiles()

	e := echo.New()
	e.HideBanner = true
	api.SetupMiddleware(e, logger, Version == "dev")

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			// Skip logging if disabled in config
			if !cfg.Advanced.EnableRequestLogging {
				return true
			}
			return c.Request().URL.Path == "/health"
		},
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{"method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency, "ip", v.RemoteIP}
			if v.Error != nil {
				logger.Warn("request", append(attrs, "error", v.Error)...)
				return nil
			}
			logger.Info("request", attrs...)
			return nil
		},
	}))

	e.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout: time.Duration(cfg.Server.ReadTimeout) * time.Second,
		Skipper: func(c echo.Context) bool {
			// The relay enforces its own auth and upload budgets.
			return c.Request().URL.Path == "/save-to-mega"
		},
		ErrorMessage: "Request timeout",
	}))

	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	if cfg.Server.EnableCORS {
		origins := strings.Split(cfg.Server.AllowOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		if len(origins) == 1 && origins[0] == "" {
			origins = []string{"*"}
		}
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: origins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}

	deps := &api.Dependencies{
		Relay:                coordinator,
		SMS:                  sms.NewLogSender(logger),
		Logger:               logger,
		Version:              Version,
		MaxConcurrentUploads: cfg.Relay.MaxConcurrentUploads,
		SMSRatePerMinute:     cfg.SMS.RatePerMinute,
	}
	api.RegisterRoutes(e, api.NewHandlers(deps), deps)

	if embeddedMode {
		if err := web.RegisterStaticRoutes(e); err != nil {
			logger.Warn("failed to register static routes", "error", err)
		}
	}

	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		Handler:      e,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	printBanner(configPath, cfg, coordinator.Provider(), embeddedMode)

	go func() {
		if err := e.StartServer(s); err != nil && err != http.ErrServerClosed {
			logger.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"http-server": func(ctx context.Context) error {
				logger.Info("graceful shutdown initiated")
				return e.Shutdown(ctx)
			},
		},
	)

	exitCode := <-wait
	logger.Info("server exited", "code", exitCode)
	os.Exit(exitCode)
}

func printBanner(configPath string, cfg *config.AppConfig, provider string, embedded bool) {
	pages := "disabled"
	if embedded {
		pages = "embedded"
	}

	fmt.Printf("\n")
	fmt.Printf("╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║           Mickey Water Billing Server                     ║\n")
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Version:    %-45s║\n", Version)
	fmt.Printf("║  Build Time: %-45s║\n", BuildTime)
	fmt.Printf("║  Pages:      %-45s║\n", pages)
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Config:    %-46s║\n", configPath)
	fmt.Printf("║  Listen:    http://%-38s║\n", cfg.GetServerAddr())
	fmt.Printf("║  Relay:     %-46s║\n", fmt.Sprintf("%s (auth %s, upload %s)", provider, cfg.AuthTimeout(), cfg.UploadTimeout()))
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Printf("\n")
}
