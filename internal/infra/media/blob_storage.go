// Package media stores uploaded files in a blob bucket and serves back
// public URLs.
package media

import (
	"context"
	"io"
	"path"
	"strings"
	"time"

	"storefront/config"
	"storefront/internal/domain/lifecycle"
	"storefront/internal/domain/service"
	"storefront/internal/errors"

	"github.com/google/uuid"
	"go.uber.org/fx"
	"gocloud.dev/blob"

	// Bucket drivers selected by the configured bucket URL scheme.
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/s3blob"
)

// Params defines the required parameters
type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
}

// blobStorage implements service.MediaStorage on top of gocloud.dev/blob.
type blobStorage struct {
	bucket        *blob.Bucket
	publicBaseURL string
}

// NewBlobStorage opens the configured bucket and manages its lifecycle.
func NewBlobStorage(params Params) (service.MediaStorage, error) {
	cfg := params.Config.Media
	if cfg == nil || cfg.BucketURL == "" {
		return nil, errors.New("media bucket url is required")
	}

	openCtx, cancel := context.WithTimeout(context.Background(), lifecycle.DefaultTimeout)
	defer cancel()

	bucket, err := blob.OpenBucket(openCtx, cfg.BucketURL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open media bucket")
	}

	params.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return bucket.Close()
		},
	})

	return &blobStorage{
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}, nil
}

// Upload streams the file into the bucket under a generated key and
// returns the public URL of the stored object.
func (s *blobStorage) Upload(ctx context.Context, filename, contentType string, body io.Reader) (string, error) {
	key := objectKey(filename)

	writer, err := s.bucket.NewWriter(ctx, key, &blob.WriterOptions{ContentType: contentType})
	if err != nil {
		return "", errors.Wrap(err, "failed to open bucket writer")
	}

	if _, err := io.Copy(writer, body); err != nil {
		_ = writer.Close()

		return "", errors.Wrap(err, "failed to write media object")
	}

	if err := writer.Close(); err != nil {
		return "", errors.Wrap(err, "failed to finalize media object")
	}

	return s.publicBaseURL + "/" + key, nil
}

// objectKey builds a collision-free key that keeps the original file
// extension so content type sniffing keeps working downstream.
func objectKey(filename string) string {
	ext := strings.ToLower(path.Ext(filename))

	return time.Now().UTC().Format("2006/01/02") + "/" + uuid.NewString() + ext
}
