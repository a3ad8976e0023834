package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

// Metrics holds the HTTP request collectors.
type Metrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "http_requests_total", Help: "Count of HTTP requests"},
			[]string{"path", "method", "status"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Latency of HTTP requests",
				Buckets: prometheus.DefBuckets,
			}, []string{"path", "method"},
		),
	}
	for _, c := range []prometheus.Collector{m.requests, m.latency} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

const requestIDHeader = "X-Request-ID"

// instrument wraps h so that every call is counted, timed and access-logged under pattern.
// Requests without an X-Request-ID header get a generated one, echoed on the response.
// A panicking handler answers 500 unless it already started its response.
func (m *Metrics) instrument(method, pattern string, h runtime.HandlerFunc) runtime.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
		start := time.Now()
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		defer func() {
			if p := recover(); p != nil {
				log.WithField("request-id", requestID).WithField("panic", p).Error("handler panicked")
				if !rec.wroteHeader {
					writeJSON(rec, http.StatusInternalServerError, errorBody{Message: internalErrorMessage})
				}
			}
			elapsed := time.Since(start)
			m.requests.WithLabelValues(pattern, method, strconv.Itoa(rec.status)).Inc()
			m.latency.WithLabelValues(pattern, method).Observe(elapsed.Seconds())
			log.WithField("request-id", requestID).
				WithField("method", method).
				WithField("path", pattern).
				WithField("status", rec.status).
				WithField("duration", elapsed.String()).
				Debug("request served")
		}()
		h(rec, r, pathParams)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (s *statusRecorder) WriteHeader(status int) {
	if s.wroteHeader {
		return
	}
	s.status = status
	s.wroteHeader = true
	s.ResponseWriter.WriteHeader(status)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if !s.wroteHeader {
		s.WriteHeader(http.StatusOK)
	}
	return s.ResponseWriter.Write(b)
}
