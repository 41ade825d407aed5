package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/mickey-water/billing/internal/models"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ErrBucketNotFound is returned by Login when the configured bucket does not
// exist or is not visible to the account.
var ErrBucketNotFound = errors.New("bucket not found")

// S3Options contains S3-compatible endpoint settings. The account identifier
// sent by clients is used as the access key.
type S3Options struct {
	Endpoint  string
	Bucket    string
	Region    string
	KeyPrefix string
	UseSSL    bool
}

// S3Provider authenticates against an S3-compatible object store.
type S3Provider struct {
	opts S3Options
}

// NewS3Provider creates a new S3-compatible provider.
func NewS3Provider(opts S3Options) *S3Provider {
	return &S3Provider{opts: opts}
}

// Name implements Provider.
func (p *S3Provider) Name() string {
	return "S3"
}

// Login builds a client for the account keys and verifies them by checking
// that the bucket is reachable.
func (p *S3Provider) Login(ctx context.Context, account, secret string) (Session, error) {
	client, err := minio.New(p.opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(account, secret, ""),
		Secure: p.opts.UseSSL,
		Region: p.opts.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("creating s3 client: %w", err)
	}

	ok, err := client.BucketExists(ctx, p.opts.Bucket)
	if err != nil {
		return nil, translateError(err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBucketNotFound, p.opts.Bucket)
	}

	return &s3Session{client: client, opts: p.opts}, nil
}

type s3Session struct {
	client *minio.Client
	opts   S3Options
}

// Upload puts payload as a single object under the configured key prefix.
func (s *s3Session) Upload(ctx context.Context, name string, payload []byte) (*models.RemoteFile, error) {
	key := path.Join(s.opts.KeyPrefix, name)
	contentType := mimetype.Detect(payload).String()

	info, err := s.client.PutObject(ctx, s.opts.Bucket, key, bytes.NewReader(payload), int64(len(payload)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return nil, translateError(err)
	}

	id := info.VersionID
	if id == "" {
		id = info.ETag
	}

	return &models.RemoteFile{
		ID:          id,
		Name:        name,
		Size:        info.Size,
		Provider:    "S3",
		Location:    info.Bucket + "/" + info.Key,
		ContentType: contentType,
		UploadedAt:  time.Now(),
	}, nil
}

// translateError prefers the provider's own message over the transport error.
func translateError(err error) error {
	resp := minio.ToErrorResponse(err)
	if resp.Code != "" && resp.Message != "" {
		return errors.New(resp.Message)
	}
	return err
}
