package transport

import (
	"net/http"
	"strings"

	"ordermgmt-be/internal/catalog"
	"ordermgmt-be/internal/logger"
	"ordermgmt-be/internal/middleware"
	"ordermgmt-be/internal/order"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/shopspring/decimal"
)

func init() {
	// Money goes over the wire as JSON numbers, like the order_total column.
	decimal.MarshalJSONWithoutQuotes = true
}

// Server holds the HTTP handlers for orders and the catalog.
type Server struct {
	orders  order.Service
	catalog catalog.Service
}

func NewServer(orders order.Service, catalog catalog.Service) *Server {
	return &Server{orders: orders, catalog: catalog}
}

// Options carries the optional pieces of the router. Nil fields are skipped.
type Options struct {
	Limiter     *middleware.RateLimiter
	Metrics     MetricsHandler
	Events      http.Handler
	CORSOrigins string
	PublicDir   string
}

// MetricsHandler observes requests and exposes the scrape endpoint.
type MetricsHandler interface {
	middleware.HTTPObserver
	Handler() http.Handler
}

// NewRouter wires middleware and routes onto a fresh echo instance.
func NewRouter(s *Server, opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(echo.WrapMiddleware(logger.RequestIDMiddleware))
	e.Use(echo.WrapMiddleware(logger.LoggingMiddleware))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: splitOrigins(opts.CORSOrigins),
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowHeaders: []string{
			echo.HeaderContentType,
			echo.HeaderAuthorization,
			echo.HeaderXRequestID,
			"X-Device-ID",
			"X-Client-Type",
			"X-Service-Auth",
		},
	}))
	if opts.Metrics != nil {
		e.Use(middleware.Metrics(opts.Metrics))
	}
	if opts.Limiter != nil {
		e.Use(echo.WrapMiddleware(opts.Limiter.Middleware))
	}

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})
	if opts.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(opts.Metrics.Handler()))
	}
	if opts.Events != nil {
		e.GET("/ws", echo.WrapHandler(opts.Events))
	}

	orders := e.Group("/api/orders")
	orders.POST("/createorder", s.CreateOrder)
	orders.GET("/pendingorders", s.GetPendingOrders)
	orders.GET("/doneorders", s.GetDoneOrders)
	orders.PUT("/:orderId/done", s.MarkDone)
	orders.PUT("/:orderId/close", s.MarkClosed)

	inventory := e.Group("/api/inventory")
	inventory.GET("/getactivecategories", s.GetActiveCategories)
	inventory.GET("/getproductsbycategory", s.GetProductsByCategory)

	if opts.PublicDir != "" {
		e.Static("/api/files", opts.PublicDir)
	}

	return e
}

func splitOrigins(csv string) []string {
	var origins []string
	for _, o := range strings.Split(csv, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
