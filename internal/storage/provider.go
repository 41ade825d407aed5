// Package storage provides authenticated access to remote storage accounts.
package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/mickey-water/billing/internal/models"
)

// Provider opens authenticated sessions against a remote storage account.
type Provider interface {
	// Name is the human readable provider name used in messages ("MEGA").
	Name() string
	// Login authenticates with per-request account credentials.
	Login(ctx context.Context, account, secret string) (Session, error)
}

// Session is an authenticated handle to a remote account. A session serves a
// single upload and is never shared between requests.
type Session interface {
	Upload(ctx context.Context, name string, payload []byte) (*models.RemoteFile, error)
}

// Options configures the available providers.
type Options struct {
	Mega MegaOptions
	S3   S3Options
}

// NewProvider returns the provider registered under name.
func NewProvider(name string, opts Options) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "mega":
		return NewMegaProvider(opts.Mega), nil
	case "s3":
		if opts.S3.Endpoint == "" || opts.S3.Bucket == "" {
			return nil, fmt.Errorf("s3 provider requires endpoint and bucket")
		}
		return NewS3Provider(opts.S3), nil
	default:
		return nil, fmt.Errorf("unknown storage provider: %s", name)
	}
}
