// Package relay forwards client files to a remote storage account using
// credentials supplied with each request.
package relay

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/google/uuid"
	"github.com/mickey-water/billing/internal/models"
	"github.com/mickey-water/billing/internal/storage"
)

const (
	msgMissingCredentials = "missing credentials"
	msgMissingFilename    = "missing filename"
	msgMissingContent     = "missing content"
)

// Config holds the per-step time budgets.
type Config struct {
	AuthTimeout   time.Duration
	UploadTimeout time.Duration
}

// Coordinator validates relay requests, authenticates, and uploads. It holds
// no per-request state and is safe for concurrent use.
type Coordinator struct {
	provider storage.Provider
	auth     *Authenticator
	exec     *Executor
	logger   *slog.Logger
}

// NewCoordinator creates a coordinator for provider.
func NewCoordinator(provider storage.Provider, cfg Config, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		provider: provider,
		auth:     NewAuthenticator(provider, cfg.AuthTimeout),
		exec:     NewExecutor(cfg.UploadTimeout),
		logger:   logger,
	}
}

// Provider returns the name of the remote provider.
func (c *Coordinator) Provider() string {
	return c.provider.Name()
}

// HandleUpload performs one relay call. Every failure is reported in the
// result; it never returns later than the auth and upload budgets combined.
func (c *Coordinator) HandleUpload(ctx context.Context, req models.UploadRequest) models.UploadResult {
	if err := validateRequest(&req); err != nil {
		return failure(err)
	}

	id := uuid.New().String()[:8]
	log := c.logger.With("request", id, "provider", c.provider.Name(), "file", req.FileName)
	start := time.Now()

	sess, err := c.auth.Authenticate(ctx, req.AccountEmail, req.AccountSecret)
	if err != nil {
		log.Warn("relay login failed", "error", err, "elapsed", time.Since(start))
		return failure(err)
	}
	log.Debug("relay session ready", "elapsed", time.Since(start))

	file, err := c.exec.Upload(ctx, sess, req.FileName, req.Payload)
	if err != nil {
		log.Warn("relay upload failed", "error", err, "elapsed", time.Since(start))
		return failure(err)
	}

	log.Info("relay upload complete", "bytes", len(req.Payload), "remote_id", file.ID, "elapsed", time.Since(start))
	return models.UploadResult{Success: true, File: file}
}

// validateRequest checks fields in order and trims the file name. No network
// call is made for an invalid request.
func validateRequest(req *models.UploadRequest) error {
	req.FileName = strings.TrimSpace(req.FileName)

	checks := []error{
		validation.Validate(req.AccountEmail, validation.Required.Error(msgMissingCredentials)),
		validation.Validate(req.AccountSecret, validation.Required.Error(msgMissingCredentials)),
		validation.Validate(req.FileName, validation.Required.Error(msgMissingFilename)),
		validation.Validate(req.Payload, validation.NotNil.Error(msgMissingContent)),
	}
	for _, err := range checks {
		if err != nil {
			return newError(KindValidation, err.Error(), err)
		}
	}
	return nil
}

func failure(err error) models.UploadResult {
	var rerr *Error
	if errors.As(err, &rerr) {
		return models.UploadResult{ErrorMessage: rerr.Error(), Code: string(rerr.Kind)}
	}
	return models.UploadResult{ErrorMessage: err.Error()}
}
