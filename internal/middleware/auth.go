package middleware

import (
	"crypto/subtle"
	"net/http"

	"nutristat-api/internal/shared"

	"github.com/labstack/echo/v4"
)

// NewAPIKeyMiddleware requires a bearer token equal to apiKey. An empty
// apiKey leaves the route open.
func NewAPIKeyMiddleware(apiKey string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if apiKey == "" {
				return next(c)
			}
			key, err := shared.ExtractAPIKey(c)
			if err != nil {
				return c.String(http.StatusUnauthorized, "Missing or invalid API key")
			}
			if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) != 1 {
				return c.String(http.StatusUnauthorized, "Unauthorized API key")
			}
			return next(c)
		}
	}
}
