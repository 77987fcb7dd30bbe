// Package handler contains the HTTP handlers for the application.
package handler

import (
	"net/http"

	"storefront/internal/delivery/http/middleware"
	"storefront/internal/delivery/http/response"
	"storefront/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// currentUserID extracts the authenticated user's ID set by the auth middleware.
func currentUserID(c echo.Context) (uuid.UUID, bool) {
	userID, ok := c.Get(middleware.ContextKeyUserID).(uuid.UUID)

	return userID, ok
}

// currentRole extracts the authenticated user's role set by the auth middleware.
func currentRole(c echo.Context) (entity.Role, bool) {
	role, ok := c.Get(middleware.ContextKeyRole).(entity.Role)

	return role, ok
}

// pathUUID parses a path parameter as a UUID.
func pathUUID(c echo.Context, name string) (uuid.UUID, error) {
	return uuid.Parse(c.Param(name))
}

// HealthCheck is a simple handler to check if the service is up.
func HealthCheck(c echo.Context) error {
	return response.Success(c, http.StatusOK, map[string]string{"status": "ok"}, "Service is healthy")
}
