package redigo

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samber/lo"

	"redigolite/internal/redigo/types"
)

const metricsNamespace = "redigo"

const (
	expiredOnRead  = "read"
	expiredOnSweep = "sweep"
)

// Metrics holds the server collectors. A nil *Metrics records nothing.
type Metrics struct {
	commands       *prometheus.CounterVec
	connections    prometheus.Gauge
	protocolErrors prometheus.Counter
	expiredKeys    *prometheus.CounterVec
}

func NewMetrics(registerer prometheus.Registerer, database *RedigoDB) (*Metrics, error) {
	metrics := &Metrics{
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "commands_total",
			Help:      "Commands processed, by command name.",
		}, []string{"command"}),
		connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "connections_active",
			Help:      "Client connections currently open.",
		}),
		protocolErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "protocol_errors_total",
			Help:      "Connections closed because of a malformed or unsupported request.",
		}),
		expiredKeys: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "expired_keys_total",
			Help:      "Expired entries physically removed, by the path that removed them.",
		}, []string{"path"}),
	}

	keys := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "keys",
		Help:      "Entries held in the keyspace, including expired entries not yet removed.",
	}, func() float64 {
		return float64(database.Len())
	})

	collectors := []prometheus.Collector{
		metrics.commands,
		metrics.connections,
		metrics.protocolErrors,
		metrics.expiredKeys,
		keys,
	}
	for _, collector := range collectors {
		if err := registerer.Register(collector); err != nil {
			return nil, err
		}
	}

	lo.ForEach([]types.CommandName{types.PING, types.ECHO, types.GET, types.SET}, func(name types.CommandName, _ int) {
		metrics.commands.WithLabelValues(string(name))
	})
	lo.ForEach([]string{expiredOnRead, expiredOnSweep}, func(path string, _ int) {
		metrics.expiredKeys.WithLabelValues(path)
	})

	return metrics, nil
}

// MetricsHandler serves the collectors of gatherer in the Prometheus text format.
func MetricsHandler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func (metrics *Metrics) commandProcessed(name types.CommandName) {
	if metrics == nil {
		return
	}
	metrics.commands.WithLabelValues(string(name)).Inc()
}

func (metrics *Metrics) connectionOpened() {
	if metrics == nil {
		return
	}
	metrics.connections.Inc()
}

func (metrics *Metrics) connectionClosed() {
	if metrics == nil {
		return
	}
	metrics.connections.Dec()
}

func (metrics *Metrics) protocolError() {
	if metrics == nil {
		return
	}
	metrics.protocolErrors.Inc()
}

func (metrics *Metrics) keysExpired(path string, count int) {
	if metrics == nil || count == 0 {
		return
	}
	metrics.expiredKeys.WithLabelValues(path).Add(float64(count))
}
