package impl

import (
	"context"
	"strings"
	"testing"

	domainerrors "storefront/internal/domain/errors"
	mockSvc "storefront/internal/mocks/service"
	"storefront/internal/usecase"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func createTestMediaService(t *testing.T) (usecase.MediaUsecase, *mockSvc.MockMediaStorage) {
	storage := mockSvc.NewMockMediaStorage(t)
	svc := NewMediaService(MediaServiceParams{
		Storage: storage,
		Logger:  newDiscardLogger(),
	})

	return svc, storage
}

func TestMediaService_UploadImage_Success(t *testing.T) {
	svc, storage := createTestMediaService(t)

	ctx := context.Background()
	body := strings.NewReader("fake image bytes")

	storage.On("Upload", ctx, "keyboard.png", "image/png", body).
		Return("https://cdn.example.com/uploads/keyboard.png", nil)

	output, err := svc.UploadImage(ctx, &usecase.UploadFileInput{
		Filename:    "keyboard.png",
		ContentType: "image/png",
		Size:        1024,
		Reader:      body,
	})

	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/uploads/keyboard.png", output.URL)
}

func TestMediaService_UploadImage_UnsupportedType(t *testing.T) {
	svc, storage := createTestMediaService(t)

	output, err := svc.UploadImage(context.Background(), &usecase.UploadFileInput{
		Filename:    "report.pdf",
		ContentType: "application/pdf",
		Size:        1024,
	})

	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))
	storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestMediaService_UploadImage_TooLarge(t *testing.T) {
	svc, storage := createTestMediaService(t)

	output, err := svc.UploadImage(context.Background(), &usecase.UploadFileInput{
		Filename:    "huge.jpg",
		ContentType: "image/jpeg",
		Size:        maxUploadBytes + 1,
	})

	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))
	storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
