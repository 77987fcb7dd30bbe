package impl

import (
	"context"
	"log/slog"

	deliverycontext "storefront/internal/delivery/context"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/domain/service"
	"storefront/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// maxUploadBytes caps a single image upload at 5 MiB.
const maxUploadBytes = 5 << 20

// allowedImageTypes whitelists the accepted upload content types.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// mediaService implements the MediaUsecase interface.
type mediaService struct {
	storage service.MediaStorage
	logger  *slog.Logger
}

// MediaServiceParams holds dependencies for mediaService, injected by Fx.
type MediaServiceParams struct {
	fx.In

	Storage service.MediaStorage
	Logger  *slog.Logger
}

// NewMediaService is the constructor for mediaService.
func NewMediaService(params MediaServiceParams) usecase.MediaUsecase {
	return &mediaService{
		storage: params.Storage,
		logger:  params.Logger,
	}
}

func (srv *mediaService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// UploadImage validates and stores one product image, returning its
// public URL.
func (srv *mediaService) UploadImage(ctx context.Context, input *usecase.UploadFileInput) (*usecase.UploadFileOutput, error) {
	if !allowedImageTypes[input.ContentType] {
		return nil, errors.Wrap(domainerrors.ErrValidationFailed, "unsupported image type")
	}
	if input.Size > maxUploadBytes {
		return nil, errors.Wrap(domainerrors.ErrValidationFailed, "image exceeds the 5 MiB limit")
	}

	url, err := srv.storage.Upload(ctx, input.Filename, input.ContentType, input.Reader)
	if err != nil {
		srv.log(ctx).Error("Image upload failed", slog.String("filename", input.Filename), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to store image")
	}

	srv.log(ctx).Info("Image uploaded", slog.String("filename", input.Filename), slog.String("url", url))

	return &usecase.UploadFileOutput{URL: url}, nil
}
