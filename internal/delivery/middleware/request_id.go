package middleware

import (
	"log/slog"

	deliverycontext "storefront/internal/delivery/context"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// RequestIDMiddleware tags every request with an id and a child logger
// carrying it, so service-layer log lines can be correlated with the
// response the client saw.
type RequestIDMiddleware struct {
	logger *slog.Logger
}

// NewRequestIDMiddleware is the constructor for RequestIDMiddleware.
func NewRequestIDMiddleware(logger *slog.Logger) *RequestIDMiddleware {
	return &RequestIDMiddleware{logger: logger}
}

// Process honours a client-supplied X-Request-Id, minting one otherwise,
// echoes it on the response and threads it through the request context.
func (m *RequestIDMiddleware) Process(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := c.Request().Header.Get(deliverycontext.HeaderXRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Response().Header().Set(deliverycontext.HeaderXRequestID, requestID)

		ctx := deliverycontext.WithRequestID(c.Request().Context(), requestID)
		ctx = deliverycontext.WithLogger(ctx, m.logger.With(slog.String("requestID", requestID)))
		c.SetRequest(c.Request().WithContext(ctx))

		return next(c)
	}
}
