package relay

import (
	"context"
	"errors"
	"time"

	"github.com/mickey-water/billing/internal/race"
	"github.com/mickey-water/billing/internal/storage"
)

// DefaultAuthTimeout bounds a single provider login.
const DefaultAuthTimeout = 20 * time.Second

// Authenticator opens one authenticated session per call.
type Authenticator struct {
	provider storage.Provider
	timeout  time.Duration
}

// NewAuthenticator creates an authenticator. A non-positive timeout selects
// DefaultAuthTimeout.
func NewAuthenticator(provider storage.Provider, timeout time.Duration) *Authenticator {
	if timeout <= 0 {
		timeout = DefaultAuthTimeout
	}
	return &Authenticator{provider: provider, timeout: timeout}
}

// Authenticate makes exactly one login attempt and races it against the
// timeout. There is no retry.
func (a *Authenticator) Authenticate(ctx context.Context, account, secret string) (storage.Session, error) {
	login := func(ctx context.Context) (storage.Session, error) {
		return a.provider.Login(ctx, account, secret)
	}

	out := race.Resolve(ctx, a.timeout, login)
	switch out.Kind {
	case race.Resolved:
		if out.Value == nil {
			return nil, newError(KindAuth, a.provider.Name()+" login returned no session", nil)
		}
		return out.Value, nil
	case race.TimedOut:
		return nil, newError(KindAuthTimeout, a.provider.Name()+" login timeout", nil)
	default:
		if errors.Is(out.Err, context.DeadlineExceeded) {
			return nil, newError(KindAuthTimeout, a.provider.Name()+" login timeout", out.Err)
		}
		return nil, newError(KindAuth, out.Err.Error(), out.Err)
	}
}
