// Package metrics exposes the proxy's Prometheus registry: relay traffic by
// method and status, pop outcomes, transaction heartbeats, and route-cache
// effectiveness, scraped from a dedicated HTTP listener.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ProxyMetrics wraps the prometheus collectors for the proxy.
type ProxyMetrics struct {
	registry *prometheus.Registry

	rpcTotal    *prometheus.CounterVec
	rpcDuration *prometheus.HistogramVec

	popResults        *prometheus.CounterVec
	messagesForwarded *prometheus.CounterVec

	txHeartbeatsSent    prometheus.Counter
	txHeartbeatsDropped prometheus.Counter

	relayDispatched *prometheus.CounterVec
	relayExpired    prometheus.Counter

	routeCacheLookups *prometheus.CounterVec
}

// Default latency buckets in milliseconds.
var defaultBuckets = []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 15000, 30000}

var proxyMetrics *ProxyMetrics

// Init initializes the Prometheus metrics subsystem.
func Init(namespace string) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewGoCollector())
	registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	pm := &ProxyMetrics{
		registry: registry,

		rpcTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rpc_total",
				Help:      "Total inbound RPCs by method and status code",
			},
			[]string{"method", "code"},
		),
		rpcDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "rpc_duration_ms",
				Help:      "Inbound RPC duration in milliseconds",
				Buckets:   defaultBuckets,
			},
			[]string{"method"},
		),
		popResults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "pop_results_total",
				Help:      "Pop outcomes by status (found, empty, throttled, error)",
			},
			[]string{"status"},
		),
		messagesForwarded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "messages_forwarded_total",
				Help:      "Messages relayed toward brokers by direction (send, ack, nack, dlq)",
			},
			[]string{"direction"},
		),
		txHeartbeatsSent: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tx_heartbeats_sent_total",
				Help:      "Transaction producer-group heartbeat payloads sent",
			},
		),
		txHeartbeatsDropped: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tx_heartbeats_dropped_total",
				Help:      "Heartbeat tasks dropped because the queue was full",
			},
		),
		relayDispatched: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "relay_dispatched_total",
				Help:      "Broker-originated back-requests dispatched to clients by code",
			},
			[]string{"code"},
		),
		relayExpired: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "relay_expired_total",
				Help:      "Pending relay responses expired by the sweeper",
			},
		),
		routeCacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "route_cache_lookups_total",
				Help:      "Route cache lookups by outcome (hit, miss, negative)",
			},
			[]string{"outcome"},
		),
	}

	registry.MustRegister(
		pm.rpcTotal, pm.rpcDuration,
		pm.popResults, pm.messagesForwarded,
		pm.txHeartbeatsSent, pm.txHeartbeatsDropped,
		pm.relayDispatched, pm.relayExpired,
		pm.routeCacheLookups,
	)
	proxyMetrics = pm
}

// Handler returns the scrape endpoint, or a 404 handler before Init.
func Handler() http.Handler {
	if proxyMetrics == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(proxyMetrics.registry, promhttp.HandlerOpts{})
}

// RecordRPC counts one inbound RPC.
func RecordRPC(method, code string, durationMs float64) {
	if proxyMetrics == nil {
		return
	}
	proxyMetrics.rpcTotal.WithLabelValues(method, code).Inc()
	proxyMetrics.rpcDuration.WithLabelValues(method).Observe(durationMs)
}

// RecordPop counts one pop outcome.
func RecordPop(status string) {
	if proxyMetrics == nil {
		return
	}
	proxyMetrics.popResults.WithLabelValues(status).Inc()
}

// RecordForward counts relayed messages by direction.
func RecordForward(direction string, n int) {
	if proxyMetrics == nil {
		return
	}
	proxyMetrics.messagesForwarded.WithLabelValues(direction).Add(float64(n))
}

// RecordTxHeartbeat counts a sent or dropped heartbeat payload.
func RecordTxHeartbeat(dropped bool) {
	if proxyMetrics == nil {
		return
	}
	if dropped {
		proxyMetrics.txHeartbeatsDropped.Inc()
	} else {
		proxyMetrics.txHeartbeatsSent.Inc()
	}
}

// RecordRelayDispatch counts a back-request pushed toward a client.
func RecordRelayDispatch(code string) {
	if proxyMetrics == nil {
		return
	}
	proxyMetrics.relayDispatched.WithLabelValues(code).Inc()
}

// RecordRelayExpired counts a pending relay response the sweeper failed.
func RecordRelayExpired() {
	if proxyMetrics == nil {
		return
	}
	proxyMetrics.relayExpired.Inc()
}

// RecordRouteLookup counts a route-cache lookup outcome.
func RecordRouteLookup(outcome string) {
	if proxyMetrics == nil {
		return
	}
	proxyMetrics.routeCacheLookups.WithLabelValues(outcome).Inc()
}
