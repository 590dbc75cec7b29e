package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "supershop",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "supershop",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// PaymentsCreated: попытки оплаты по результату (created, provider_error, rejected)
	PaymentsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "supershop",
			Subsystem: "checkout",
			Name:      "payments_total",
			Help:      "Payment creation attempts by result",
		},
		[]string{"result"},
	)

	// WebhookEvents: обработанные уведомления провайдера (applied, replay, ignored, not_found, locked, error)
	WebhookEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "supershop",
			Subsystem: "checkout",
			Name:      "webhook_events_total",
			Help:      "Payment webhook deliveries by outcome",
		},
		[]string{"status", "outcome"},
	)

	StockRowsDeleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "supershop",
			Subsystem: "stock",
			Name:      "rows_deleted_total",
			Help:      "Item stock rows removed after reaching zero",
		},
	)
)

func init() {
	prometheus.MustRegister(HTTPDuration, HTTPRequests, PaymentsCreated, WebhookEvents, StockRowsDeleted)
}

// Handler отдает метрики для /metrics
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware считает запросы по шаблону маршрута chi, чтобы не плодить метки
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unknown"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		labels := prometheus.Labels{
			"method": r.Method,
			"route":  route,
			"status": strconv.Itoa(ww.Status()),
		}

		HTTPRequests.With(labels).Inc()
		HTTPDuration.With(labels).Observe(time.Since(start).Seconds())
	})
}
