package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 answers the two calls the relay makes: HEAD bucket and PUT object.
type fakeS3 struct {
	mu      sync.Mutex
	bucket  string
	objects map[string][]byte
	types   map[string]string
}

func newFakeS3(bucket string) *fakeS3 {
	return &fakeS3{
		bucket:  bucket,
		objects: make(map[string][]byte),
		types:   make(map[string]string),
	}
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	parts := strings.SplitN(strings.TrimPrefix(r.URL.Path, "/"), "/", 2)
	if parts[0] != f.bucket {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	switch {
	case r.Method == http.MethodHead && len(parts) == 1:
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodPut && len(parts) == 2:
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.objects[parts[1]] = body
		f.types[parts[1]] = r.Header.Get("Content-Type")
		f.mu.Unlock()
		w.Header().Set("ETag", `"etag-1"`)
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newTestS3Provider(t *testing.T, fake *fakeS3, bucket string) *S3Provider {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	return NewS3Provider(S3Options{
		Endpoint:  strings.TrimPrefix(srv.URL, "http://"),
		Bucket:    bucket,
		Region:    "us-east-1",
		KeyPrefix: "billing",
	})
}

func TestS3Provider_LoginAndUpload(t *testing.T) {
	fake := newFakeS3("records")
	p := newTestS3Provider(t, fake, "records")

	sess, err := p.Login(context.Background(), "access-key", "secret-key")
	require.NoError(t, err)

	payload := []byte(`{"a":1}`)
	file, err := sess.Upload(context.Background(), "report.json", payload)
	require.NoError(t, err)

	assert.Equal(t, "etag-1", file.ID)
	assert.Equal(t, "report.json", file.Name)
	assert.Equal(t, int64(len(payload)), file.Size)
	assert.Equal(t, "S3", file.Provider)
	assert.Equal(t, "records/billing/report.json", file.Location)
	assert.Contains(t, file.ContentType, "application/json")

	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.Contains(t, fake.objects, "billing/report.json")
}

func TestS3Provider_MissingBucket(t *testing.T) {
	fake := newFakeS3("records")
	p := newTestS3Provider(t, fake, "other")

	_, err := p.Login(context.Background(), "access-key", "secret-key")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBucketNotFound)
}

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		opts     Options
		wantName string
		wantErr  bool
	}{
		{name: "default is mega", provider: "", wantName: "MEGA"},
		{name: "mega case insensitive", provider: " MEGA ", wantName: "MEGA"},
		{
			name:     "s3 with endpoint",
			provider: "s3",
			opts:     Options{S3: S3Options{Endpoint: "localhost:9000", Bucket: "records"}},
			wantName: "S3",
		},
		{name: "s3 without endpoint", provider: "s3", wantErr: true},
		{name: "unknown", provider: "dropbox", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProvider(tt.provider, tt.opts)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, p.Name())
		})
	}
}
