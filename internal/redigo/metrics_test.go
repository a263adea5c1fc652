package redigo

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsHandler(t *testing.T) {
	registry := prometheus.NewRegistry()
	database := NewRedigoDB(DefaultShardCount)
	metrics, err := NewMetrics(registry, database)
	if err != nil {
		t.Fatal(err)
	}

	database.Set([]byte("a"), []byte("1"), nil)
	database.Set([]byte("b"), []byte("2"), nil)
	metrics.connectionOpened()
	metrics.protocolError()

	recorder := httptest.NewRecorder()
	MetricsHandler(registry).ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body, _ := io.ReadAll(recorder.Body)
	for _, want := range []string{
		"redigo_keys 2",
		"redigo_connections_active 1",
		"redigo_protocol_errors_total 1",
		`redigo_commands_total{command="PING"} 0`,
		`redigo_expired_keys_total{path="sweep"} 0`,
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("expected %q in:\n%s", want, body)
		}
	}
}

func TestNewMetricsRejectsDoubleRegistration(t *testing.T) {
	registry := prometheus.NewRegistry()
	database := NewRedigoDB(1)

	if _, err := NewMetrics(registry, database); err != nil {
		t.Fatal(err)
	}
	if _, err := NewMetrics(registry, database); err == nil {
		t.Error("expected registering twice to fail")
	}
}

func TestNilMetrics(t *testing.T) {
	var metrics *Metrics

	metrics.connectionOpened()
	metrics.connectionClosed()
	metrics.protocolError()
	metrics.keysExpired(expiredOnSweep, 3)
	metrics.commandProcessed("PING")
}

func TestKeysExpiredIgnoresZero(t *testing.T) {
	metrics, err := NewMetrics(prometheus.NewRegistry(), NewRedigoDB(1))
	if err != nil {
		t.Fatal(err)
	}

	metrics.keysExpired(expiredOnSweep, 0)
	metrics.keysExpired(expiredOnSweep, 2)

	if got := testutil.ToFloat64(metrics.expiredKeys.WithLabelValues(expiredOnSweep)); got != 2 {
		t.Errorf("expected 2, got %v", got)
	}
}
