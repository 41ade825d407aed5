package relay

import (
	"context"
	"errors"
	"time"

	"github.com/mickey-water/billing/internal/models"
	"github.com/mickey-water/billing/internal/race"
	"github.com/mickey-water/billing/internal/storage"
)

// DefaultUploadTimeout bounds a single transfer. It is larger than the login
// budget because payloads can be large.
const DefaultUploadTimeout = 60 * time.Second

// Executor transfers one payload over an authenticated session.
type Executor struct {
	timeout time.Duration
}

// NewExecutor creates an executor. A non-positive timeout selects
// DefaultUploadTimeout.
func NewExecutor(timeout time.Duration) *Executor {
	if timeout <= 0 {
		timeout = DefaultUploadTimeout
	}
	return &Executor{timeout: timeout}
}

// Upload makes exactly one transfer attempt raced against the timeout.
func (x *Executor) Upload(ctx context.Context, sess storage.Session, name string, payload []byte) (*models.RemoteFile, error) {
	transfer := func(ctx context.Context) (*models.RemoteFile, error) {
		return sess.Upload(ctx, name, payload)
	}

	out := race.Resolve(ctx, x.timeout, transfer)
	switch out.Kind {
	case race.Resolved:
		if out.Value == nil {
			return nil, newError(KindUpload, "upload returned no file metadata", nil)
		}
		return out.Value, nil
	case race.TimedOut:
		return nil, newError(KindUploadTimeout, "upload timeout", nil)
	default:
		if errors.Is(out.Err, context.DeadlineExceeded) {
			return nil, newError(KindUploadTimeout, "upload timeout", out.Err)
		}
		return nil, newError(KindUpload, out.Err.Error(), out.Err)
	}
}
