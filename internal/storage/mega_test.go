package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	mega "github.com/t3rm1n4l/go-mega"
)

// fakeTransfer splits the payload into fixed chunk sizes and records what it
// receives.
type fakeTransfer struct {
	sizes     []int
	failChunk int // -1 for none
	finishErr error
	onChunk   func(id int)

	mu       sync.Mutex
	received [][]byte
	finished bool
	name     string
}

func newFakeTransfer(sizes ...int) *fakeTransfer {
	return &fakeTransfer{sizes: sizes, failChunk: -1}
}

func (f *fakeTransfer) Chunks() int {
	return len(f.sizes)
}

func (f *fakeTransfer) ChunkLocation(id int) (int64, int, error) {
	if id < 0 || id >= len(f.sizes) {
		return 0, 0, mega.EARGS
	}
	var pos int64
	for _, s := range f.sizes[:id] {
		pos += int64(s)
	}
	return pos, f.sizes[id], nil
}

func (f *fakeTransfer) UploadChunk(id int, chunk []byte) error {
	if id == f.failChunk {
		return errors.New("connection reset")
	}
	f.mu.Lock()
	f.received = append(f.received, append([]byte(nil), chunk...))
	f.mu.Unlock()
	if f.onChunk != nil {
		f.onChunk(id)
	}
	return nil
}

func (f *fakeTransfer) Finish() (megaNode, error) {
	if f.finishErr != nil {
		return megaNode{}, f.finishErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.finished = true
	var size int64
	for _, c := range f.received {
		size += int64(len(c))
	}
	return megaNode{hash: "h4sh", name: f.name, size: size}, nil
}

func sessionFor(f *fakeTransfer) *megaSession {
	return &megaSession{begin: func(name string, size int64) (megaTransfer, error) {
		f.name = name
		return f, nil
	}}
}

func TestMegaSession_Upload(t *testing.T) {
	tests := []struct {
		name    string
		sizes   []int
		payload []byte
	}{
		{"single chunk", []int{5}, []byte("hello")},
		{"several chunks", []int{4, 4, 3}, []byte("hello world")},
		{"empty payload", []int{0}, []byte{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeTransfer(tt.sizes...)

			file, err := sessionFor(f).Upload(context.Background(), "report.json", tt.payload)
			require.NoError(t, err)

			assert.True(t, f.finished)
			assert.Len(t, f.received, len(tt.sizes))
			var joined []byte
			for _, c := range f.received {
				joined = append(joined, c...)
			}
			assert.Equal(t, string(tt.payload), string(joined))

			assert.Equal(t, "h4sh", file.ID)
			assert.Equal(t, "report.json", file.Name)
			assert.Equal(t, int64(len(tt.payload)), file.Size)
			assert.Equal(t, "MEGA", file.Provider)
			assert.Equal(t, "/Root/report.json", file.Location)
			assert.NotEmpty(t, file.ContentType)
			assert.False(t, file.UploadedAt.IsZero())
		})
	}
}

func TestMegaSession_UploadFailures(t *testing.T) {
	t.Run("begin fails", func(t *testing.T) {
		s := &megaSession{begin: func(string, int64) (megaTransfer, error) {
			return nil, mega.EOVERQUOTA
		}}
		_, err := s.Upload(context.Background(), "a.txt", []byte("x"))
		assert.ErrorIs(t, err, mega.EOVERQUOTA)
	})

	t.Run("chunk fails", func(t *testing.T) {
		f := newFakeTransfer(2, 2)
		f.failChunk = 1
		_, err := sessionFor(f).Upload(context.Background(), "a.txt", []byte("abcd"))
		assert.ErrorContains(t, err, "uploading chunk 1")
		assert.False(t, f.finished)
	})

	t.Run("finish fails", func(t *testing.T) {
		f := newFakeTransfer(1)
		f.finishErr = mega.EINTERNAL
		_, err := sessionFor(f).Upload(context.Background(), "a.txt", []byte("x"))
		assert.ErrorIs(t, err, mega.EINTERNAL)
	})

	t.Run("cancelled between chunks", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		f := newFakeTransfer(1, 1, 1)
		f.onChunk = func(id int) {
			if id == 0 {
				cancel()
			}
		}
		_, err := sessionFor(f).Upload(ctx, "a.txt", []byte("abc"))
		assert.ErrorIs(t, err, context.Canceled)
		assert.Len(t, f.received, 1)
		assert.False(t, f.finished)
	})
}

func TestMegaProvider_LoginHonoursCancelledContext(t *testing.T) {
	p := NewMegaProvider(MegaOptions{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Login(ctx, "a@x.com", "p")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMegaProvider_LoginRejected(t *testing.T) {
	var mu sync.Mutex
	var bodies []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, r.URL.Path+" "+string(body))
		mu.Unlock()
		// ENOENT: no such user.
		_, _ = w.Write([]byte("-9"))
	}))
	defer srv.Close()

	p := NewMegaProvider(MegaOptions{APIURL: srv.URL, Retries: 1})
	sess, err := p.Login(context.Background(), "A@X.com", "p")

	assert.Nil(t, sess)
	assert.ErrorIs(t, err, mega.ENOENT)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, bodies, 1)
	assert.Contains(t, bodies[0], "/cs ")
	assert.Contains(t, bodies[0], `"a":"us0"`)
	assert.Contains(t, bodies[0], `"user":"a@x.com"`)
}
