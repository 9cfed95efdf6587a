package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry owns a private prometheus registry so tests can build as many as
// they like without colliding on the global one.
type Registry struct {
	reg *prometheus.Registry

	OrdersCreated    prometheus.Counter
	OrderFailures    *prometheus.CounterVec
	OrderTransitions *prometheus.CounterVec
	TxDuration       *prometheus.HistogramVec
	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()

	created := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Orders committed.",
	})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_failures_total",
		Help: "Failed order operations by error code.",
	}, []string{"operation", "code"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_transitions_total",
		Help: "Committed status transitions by target status.",
	}, []string{"status"})
	txDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "order_tx_duration_seconds",
		Help:    "Time spent inside order transactions.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests.",
	}, []string{"route", "status"})
	httpDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	r.MustRegister(created, failures, transitions, txDuration, requests, httpDuration)
	return &Registry{
		reg:              r,
		OrdersCreated:    created,
		OrderFailures:    failures,
		OrderTransitions: transitions,
		TxDuration:       txDuration,
		HTTPRequests:     requests,
		HTTPDuration:     httpDuration,
	}
}

func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

func (r *Registry) OrderCreated() {
	r.OrdersCreated.Inc()
}

func (r *Registry) OrderFailed(operation string, code int) {
	r.OrderFailures.WithLabelValues(operation, strconv.Itoa(code)).Inc()
}

func (r *Registry) StatusChanged(status string) {
	r.OrderTransitions.WithLabelValues(status).Inc()
}

func (r *Registry) ObserveTx(operation string, d time.Duration) {
	r.TxDuration.WithLabelValues(operation).Observe(d.Seconds())
}

func (r *Registry) ObserveHTTP(route string, status int, d time.Duration) {
	r.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	r.HTTPDuration.WithLabelValues(route).Observe(d.Seconds())
}

type Timer struct {
	start time.Time
}

func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
