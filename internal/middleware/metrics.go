package middleware

import (
	"time"

	"ordermgmt-be/internal/metrics"

	"github.com/labstack/echo/v4"
)

// HTTPObserver records one finished request.
type HTTPObserver interface {
	ObserveHTTP(route string, status int, d time.Duration)
}

// Metrics times every request and labels it with the matched route pattern,
// so /api/orders/:orderId/done counts as one series.
func Metrics(obs HTTPObserver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			timer := metrics.StartTimer()

			err := next(c)
			if err != nil {
				// let echo write the error response so the status is final
				c.Error(err)
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			obs.ObserveHTTP(route, c.Response().Status, timer.Duration())
			return nil
		}
	}
}
