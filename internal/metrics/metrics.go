// Package metrics exposes Prometheus counters for status computations,
// store failures and HTTP traffic.
package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder owns a private registry. A nil *Recorder discards everything.
type Recorder struct {
	reg *prometheus.Registry

	statusCounter *prometheus.CounterVec // driveassist_status_computations_total
	storeErrors   *prometheus.CounterVec // driveassist_store_errors_total
	httpRequests  *prometheus.CounterVec // driveassist_http_requests_total
}

// NewRecorder registers the app collectors on a fresh registry.
func NewRecorder() (*Recorder, error) {
	reg := prometheus.NewRegistry()

	statusCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "driveassist_status_computations_total",
			Help: "Computed statuses, partitioned by kind and severity.",
		},
		[]string{"kind", "severity"},
	)
	storeErrors := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "driveassist_store_errors_total",
			Help: "Failed key-value store operations, partitioned by operation.",
		},
		[]string{"op"},
	)
	httpRequests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "driveassist_http_requests_total",
			Help: "HTTP requests, partitioned by method and status code.",
		},
		[]string{"method", "code"},
	)

	for name, c := range map[string]prometheus.Collector{
		"status counter":      statusCounter,
		"store error counter": storeErrors,
		"http counter":        httpRequests,
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("metrics: register %s: %w", name, err)
		}
	}

	return &Recorder{
		reg:           reg,
		statusCounter: statusCounter,
		storeErrors:   storeErrors,
		httpRequests:  httpRequests,
	}, nil
}

func (r *Recorder) StatusComputed(kind, severity string) {
	if r == nil {
		return
	}
	r.statusCounter.WithLabelValues(kind, severity).Inc()
}

func (r *Recorder) StoreError(op string) {
	if r == nil {
		return
	}
	r.storeErrors.WithLabelValues(op).Inc()
}

func (r *Recorder) HTTPRequest(method string, code int) {
	if r == nil {
		return
	}
	r.httpRequests.WithLabelValues(method, fmt.Sprint(code)).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
