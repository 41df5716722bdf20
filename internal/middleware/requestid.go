package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/shinyyama/broadcast-feed/internal/logctx"
)

// CorrelationID copies the request id set by echo's RequestID middleware
// into the request context so lower layers can log it.
func CorrelationID(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		rid := c.Response().Header().Get(echo.HeaderXRequestID)
		if rid == "" {
			rid = c.Request().Header.Get(echo.HeaderXRequestID)
		}
		if rid == "" {
			return next(c)
		}
		req := c.Request()
		c.SetRequest(req.WithContext(logctx.WithRID(req.Context(), rid)))
		return next(c)
	}
}
