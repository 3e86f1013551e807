package middleware

import (
	"net/http"

	"nutristat-api/internal/metrics"
	"nutristat-api/internal/shared"

	"github.com/labstack/echo/v4"
	emw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// NewRateLimitMiddleware limits each client ip to limit requests per second.
// A limit of zero or less disables limiting.
func NewRateLimitMiddleware(limit float64, burst int, log *zap.SugaredLogger) echo.MiddlewareFunc {
	if limit <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return next
		}
	}
	if burst <= 0 {
		burst = int(limit)
	}
	store := emw.NewRateLimiterMemoryStoreWithConfig(emw.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(limit),
		Burst:     burst,
		ExpiresIn: shared.RateLimiterExpiresIn,
	})
	return emw.RateLimiterWithConfig(emw.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusForbidden, map[string]string{"error": "unable to identify client"})
		},
		DenyHandler: func(c echo.Context, id string, err error) error {
			metrics.RateLimited.Inc()
			log.Warnw("Rate limited", "client", id)
			return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "too many requests"})
		},
	})
}
