// Package metrics exposes Prometheus collectors for the client runtime.
// Collectors are created per Metrics value and registered explicitly, so
// several connections in one process never collide on the default registry.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "docdb"

type Metrics struct {
	RequestsTotal        *prometheus.CounterVec
	ConflictRetriesTotal prometheus.Counter
	AuthRefreshesTotal   prometheus.Counter
	CursorBatchesTotal   prometheus.Counter
	CacheLookupsTotal    *prometheus.CounterVec
}

// New creates the collectors and registers them with reg. A nil reg leaves
// them unregistered; they still count, which is what tests and libraries
// without a metrics endpoint want.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "client",
				Name:      "requests_total",
				Help:      "HTTP requests sent to the cluster, by method and status code",
			},
			[]string{"method", "status"},
		),
		ConflictRetriesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "client",
			Name:      "conflict_retries_total",
			Help:      "Requests repeated because the server reported a write conflict",
		}),
		AuthRefreshesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "refreshes_total",
			Help:      "Token logins performed against the cluster",
		}),
		CursorBatchesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cursor",
			Name:      "batches_total",
			Help:      "Cursor batches fetched, including the first one",
		}),
		CacheLookupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "lookups_total",
				Help:      "Document cache lookups, by result",
			},
			[]string{"result"},
		),
	}

	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{
		m.RequestsTotal,
		m.ConflictRetriesTotal,
		m.AuthRefreshesTotal,
		m.CursorBatchesTotal,
		m.CacheLookupsTotal,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Handler serves the collectors gathered by g in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// NewUnregistered is New(nil) without the error.
func NewUnregistered() *Metrics {
	m, _ := New(nil)
	return m
}

func (m *Metrics) ObserveRequest(method string, status int) {
	m.RequestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
}

func (m *Metrics) ObserveCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookupsTotal.WithLabelValues(result).Inc()
}
