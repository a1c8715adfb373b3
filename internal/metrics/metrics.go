package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	namespace = "chronolens"

	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "code"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	captureTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "capture_total",
			Help:      "Number of finished captures",
		},
		[]string{"style", "status"},
	)

	captureDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "capture_duration_seconds",
			Help:      "Capture duration from key check to publish",
			Buckets:   []float64{1, 5, 10, 20, 30, 60, 120},
		},
		[]string{"style"},
	)

	capturePhaseTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "capture_phase_total",
			Help:      "Number of capture phase transitions",
		},
		[]string{"phase"},
	)
)

// CaptureTotal は撮影 1 件の結果を記録します。status は "ok" か失敗コードです。
func CaptureTotal(style, status string) {
	captureTotal.With(prometheus.Labels{
		"style":  style,
		"status": status,
	}).Inc()
}

// CaptureDuration は撮影 1 件の所要時間を記録します。
func CaptureDuration(style string, duration time.Duration) {
	captureDuration.With(prometheus.Labels{
		"style": style,
	}).Observe(duration.Seconds())
}

// CapturePhase は段階遷移を記録します。lens.PhaseListener として使えます。
func CapturePhase(phase string) {
	capturePhaseTotal.With(prometheus.Labels{
		"phase": phase,
	}).Inc()
}

// Middleware は HTTP リクエストの件数と所要時間を記録します。
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := &statusResponseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)

		duration := time.Since(start)
		httpRequestsTotal.With(prometheus.Labels{
			"method": r.Method,
			"path":   r.URL.Path,
			"code":   strconv.Itoa(ww.status),
		}).Inc()
		httpRequestDuration.With(prometheus.Labels{
			"method": r.Method,
			"path":   r.URL.Path,
		}).Observe(duration.Seconds())
	})
}

type statusResponseWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusResponseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
