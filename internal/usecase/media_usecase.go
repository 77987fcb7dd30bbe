package usecase

import (
	"context"
	"io"
)

// --- Input DTOs ---

// UploadFileInput is one incoming multipart file.
type UploadFileInput struct {
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// --- Output DTOs ---

// UploadFileOutput returns the public URL of the stored object.
type UploadFileOutput struct {
	URL string `json:"url"`
}

// MediaUsecase defines the interface for media file uploads.
type MediaUsecase interface {
	UploadImage(ctx context.Context, input *UploadFileInput) (*UploadFileOutput, error)
}
