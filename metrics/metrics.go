// Package metrics provides Prometheus metrics for the simulated desktop.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// File system metrics
	fsMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "macsim_fs_mutations_total",
			Help: "Total number of file system mutations",
		},
		[]string{"op"},
	)

	fsPersistTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "macsim_fs_persist_total",
			Help: "Total number of node table writes to storage",
		},
		[]string{"status"},
	)

	fsPersistDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "macsim_fs_persist_duration_seconds",
			Help:    "Time to serialize and store the node table",
			Buckets: prometheus.DefBuckets,
		},
	)

	fsNodes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "macsim_fs_nodes",
			Help: "Number of nodes in the node table",
		},
	)

	// Window metrics
	windowsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "macsim_windows_open",
			Help: "Number of open windows",
		},
	)

	appOpensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "macsim_app_opens_total",
			Help: "Total number of open-application requests",
		},
		[]string{"app"},
	)

	// Assistant metrics
	assistantRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "macsim_assistant_requests_total",
			Help: "Total number of assistant requests",
		},
		[]string{"status"},
	)
)

// RecordFSMutation counts one successful mutation.
func RecordFSMutation(op string) {
	fsMutationsTotal.WithLabelValues(op).Inc()
}

// RecordPersist records one write of the node table.
func RecordPersist(err error, d time.Duration, nodes int) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	fsPersistTotal.WithLabelValues(status).Inc()
	fsPersistDuration.Observe(d.Seconds())
	if err == nil {
		fsNodes.Set(float64(nodes))
	}
}

// SetWindowsOpen sets the open-window gauge.
func SetWindowsOpen(n int) {
	windowsOpen.Set(float64(n))
}

// RecordAppOpen counts an open request for app.
func RecordAppOpen(app string) {
	appOpensTotal.WithLabelValues(app).Inc()
}

// RecordAssistantRequest counts an assistant round trip by outcome.
func RecordAssistantRequest(status string) {
	assistantRequestsTotal.WithLabelValues(status).Inc()
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Serve exposes /metrics on addr until ctx is done.
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
