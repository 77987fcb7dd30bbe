package handler

import (
	"log/slog"
	"net/http"

	"storefront/internal/delivery/http/response"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// UploadHandler holds dependencies for media upload handlers.
type UploadHandler struct {
	uc     usecase.MediaUsecase
	logger *slog.Logger
}

// NewUploadHandler is the constructor for UploadHandler, injected by Fx.
func NewUploadHandler(uc usecase.MediaUsecase, logger *slog.Logger) *UploadHandler {
	return &UploadHandler{uc: uc, logger: logger}
}

// UploadImage stores a product image and returns its public URL. The
// file is sent as multipart form data under the "file" field.
func (h *UploadHandler) UploadImage(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Missing file field")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return errors.WithStack(err)
	}
	defer file.Close()

	output, err := h.uc.UploadImage(c.Request().Context(), &usecase.UploadFileInput{
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		Reader:      file,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, output, "File uploaded successfully")
}
