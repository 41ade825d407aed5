package storage

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/mickey-water/billing/internal/models"
	mega "github.com/t3rm1n4l/go-mega"
)

// MegaOptions contains MEGA client settings.
type MegaOptions struct {
	APIURL      string // empty selects the public MEGA API
	Retries     int
	HTTPTimeout time.Duration
}

// MegaProvider authenticates against MEGA accounts.
type MegaProvider struct {
	opts MegaOptions
}

// NewMegaProvider creates a new MEGA provider.
func NewMegaProvider(opts MegaOptions) *MegaProvider {
	return &MegaProvider{opts: opts}
}

// Name implements Provider.
func (p *MegaProvider) Name() string {
	return "MEGA"
}

// Login opens a fresh MEGA client and logs in. The MEGA client does not
// accept a context, so a login that outlives ctx finishes in the background.
func (p *MegaProvider) Login(ctx context.Context, account, secret string) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	client := mega.New().SetClient(&http.Client{Timeout: p.opts.HTTPTimeout})
	if p.opts.APIURL != "" {
		client.SetAPIUrl(p.opts.APIURL)
	}
	if p.opts.Retries > 0 {
		client.SetRetries(p.opts.Retries)
	}

	if err := client.Login(account, secret); err != nil {
		return nil, err
	}

	return &megaSession{begin: func(name string, size int64) (megaTransfer, error) {
		root := client.FS.GetRoot()
		if root == nil {
			return nil, fmt.Errorf("mega account has no root node")
		}
		u, err := client.NewUpload(root, name, size)
		if err != nil {
			return nil, err
		}
		return megaUpload{u}, nil
	}}, nil
}

// megaNode is the metadata MEGA assigns to a finished upload.
type megaNode struct {
	hash string
	name string
	size int64
}

// megaTransfer is one chunked upload as driven by megaSession.
type megaTransfer interface {
	Chunks() int
	ChunkLocation(id int) (position int64, size int, err error)
	UploadChunk(id int, chunk []byte) error
	Finish() (megaNode, error)
}

type megaUpload struct {
	*mega.Upload
}

func (u megaUpload) Finish() (megaNode, error) {
	node, err := u.Upload.Finish()
	if err != nil {
		return megaNode{}, err
	}
	return megaNode{hash: node.GetHash(), name: node.GetName(), size: node.GetSize()}, nil
}

type megaSession struct {
	begin func(name string, size int64) (megaTransfer, error)
}

// Upload stores payload in the account root, chunk by chunk. Cancellation is
// checked between chunks.
func (s *megaSession) Upload(ctx context.Context, name string, payload []byte) (*models.RemoteFile, error) {
	u, err := s.begin(name, int64(len(payload)))
	if err != nil {
		return nil, fmt.Errorf("starting upload: %w", err)
	}

	for id := 0; id < u.Chunks(); id++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		pos, size, err := u.ChunkLocation(id)
		if err != nil {
			return nil, fmt.Errorf("locating chunk %d: %w", id, err)
		}
		if err := u.UploadChunk(id, payload[pos:pos+int64(size)]); err != nil {
			return nil, fmt.Errorf("uploading chunk %d: %w", id, err)
		}
	}

	node, err := u.Finish()
	if err != nil {
		return nil, fmt.Errorf("finishing upload: %w", err)
	}

	return &models.RemoteFile{
		ID:          node.hash,
		Name:        node.name,
		Size:        node.size,
		Provider:    "MEGA",
		Location:    path.Join("/Root", node.name),
		ContentType: mimetype.Detect(payload).String(),
		UploadedAt:  time.Now(),
	}, nil
}
