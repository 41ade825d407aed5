// stub_provider.go - Scriptable storage provider for testing
package testutil

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mickey-water/billing/internal/models"
	"github.com/mickey-water/billing/internal/storage"
)

// StubProvider implements storage.Provider with configurable latency and
// failures, and counts every remote call it receives.
type StubProvider struct {
	ProviderName string

	LoginDelay time.Duration
	LoginErr   error
	LoginHang  bool // never signal until the caller gives up

	UploadDelay time.Duration
	UploadErr   error
	UploadHang  bool

	// File is returned by successful uploads. When nil, metadata is derived
	// from the request.
	File *models.RemoteFile

	logins  atomic.Int32
	uploads atomic.Int32

	mu       sync.Mutex
	accounts []string
	payloads map[string][]byte
}

// NewStubProvider creates a stub that succeeds immediately.
func NewStubProvider() *StubProvider {
	return &StubProvider{
		ProviderName: "MEGA",
		payloads:     make(map[string][]byte),
	}
}

func (p *StubProvider) Name() string {
	return p.ProviderName
}

func (p *StubProvider) Login(ctx context.Context, account, secret string) (storage.Session, error) {
	p.logins.Add(1)
	p.mu.Lock()
	p.accounts = append(p.accounts, account)
	p.mu.Unlock()

	if err := wait(ctx, p.LoginDelay, p.LoginHang); err != nil {
		return nil, err
	}
	if p.LoginErr != nil {
		return nil, p.LoginErr
	}
	return &stubSession{provider: p}, nil
}

// Logins returns the number of authentication attempts.
func (p *StubProvider) Logins() int {
	return int(p.logins.Load())
}

// Uploads returns the number of upload attempts.
func (p *StubProvider) Uploads() int {
	return int(p.uploads.Load())
}

// Accounts returns the account identifiers used to log in, in order.
func (p *StubProvider) Accounts() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.accounts...)
}

// Payload returns the bytes uploaded under name.
func (p *StubProvider) Payload(name string) ([]byte, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	data, ok := p.payloads[name]
	return data, ok
}

type stubSession struct {
	provider *StubProvider
}

func (s *stubSession) Upload(ctx context.Context, name string, payload []byte) (*models.RemoteFile, error) {
	p := s.provider
	p.uploads.Add(1)

	if err := wait(ctx, p.UploadDelay, p.UploadHang); err != nil {
		return nil, err
	}
	if p.UploadErr != nil {
		return nil, p.UploadErr
	}

	p.mu.Lock()
	p.payloads[name] = append([]byte(nil), payload...)
	p.mu.Unlock()

	if p.File != nil {
		file := *p.File
		return &file, nil
	}
	return &models.RemoteFile{
		ID:         "stub-" + name,
		Name:       name,
		Size:       int64(len(payload)),
		Provider:   p.ProviderName,
		UploadedAt: time.Now(),
	}, nil
}

func wait(ctx context.Context, delay time.Duration, hang bool) error {
	if hang {
		<-ctx.Done()
		return ctx.Err()
	}
	if delay <= 0 {
		return nil
	}
	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
