package service

import (
	"context"
	"io"
)

// MediaStorage stores uploaded files and returns their public URL.
// Implementations decide the backing bucket; callers only ever persist
// the returned URL.
type MediaStorage interface {
	// Upload streams the file into the bucket under a generated key and
	// returns the public URL of the stored object.
	Upload(ctx context.Context, filename, contentType string, body io.Reader) (string, error)
}
