package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/opendatahub/dataset-api/internal/api/metrics"
	"github.com/opendatahub/dataset-api/internal/core/ports"
)

// RateLimit throttles requests per client address using a fixed-window
// limiter. Limiter errors fail open with a warning so a counter outage
// degrades to no throttling rather than no service.
func RateLimit(limiter ports.RateLimiter, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ok, err := limiter.Allow(c.Request().Context(), c.RealIP())
			if err != nil {
				log.Warn().Err(err).Msg("rate limiter unavailable")
				return next(c)
			}
			if !ok {
				metrics.RateLimitedTotal.Inc()
				return echo.NewHTTPError(http.StatusTooManyRequests, "Too many requests, please slow down.")
			}
			return next(c)
		}
	}
}
