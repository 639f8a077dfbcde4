package shkb

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cloudkucooland/HomeKitBridges/SensiboHKBridge/sensibo"
)

// Metrics collects remote call and pod state metrics. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	requests     *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	remoteErrors *prometheus.CounterVec

	power       prometheus.Gauge
	mode        *prometheus.GaugeVec
	target      prometheus.Gauge
	temperature prometheus.Gauge
	humidity    prometheus.Gauge
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sensibo_remote_requests_total",
			Help: "Requests sent to the Sensibo API",
		}, []string{"code", "method"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sensibo_remote_request_duration_seconds",
			Help:    "Latency of Sensibo API requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"code", "method"}),
		remoteErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sensibo_remote_errors_total",
			Help: "Failed Sensibo API operations by kind (transport, status)",
		}, []string{"op", "kind"}),
		power: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sensibo_power",
			Help: "Pod power (1=on, 0=off)",
		}),
		mode: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "sensibo_mode",
			Help: "Pod mode (1=current)",
		}, []string{"mode"}),
		target: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sensibo_target_temperature_celsius",
			Help: "Pod target temperature",
		}),
		temperature: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sensibo_room_temperature_celsius",
			Help: "Room temperature measured by the pod",
		}),
		humidity: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sensibo_room_humidity_percent",
			Help: "Relative humidity measured by the pod",
		}),
	}

	m.registry.MustRegister(
		m.requests,
		m.duration,
		m.remoteErrors,
		m.power,
		m.mode,
		m.target,
		m.temperature,
		m.humidity,
	)
	return m
}

// InstrumentClient wraps the transport of hc so every request is counted
func (m *Metrics) InstrumentClient(hc *http.Client) *http.Client {
	if m == nil {
		return hc
	}
	client := *hc
	next := client.Transport
	if next == nil {
		next = http.DefaultTransport
	}
	client.Transport = promhttp.InstrumentRoundTripperCounter(m.requests,
		promhttp.InstrumentRoundTripperDuration(m.duration, next))
	return &client
}

// Handler serves the registry in the prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) remoteError(op string, err error) {
	if m == nil || err == nil {
		return
	}
	kind := "other"
	var te *sensibo.TransportError
	var rse *sensibo.RemoteStatusError
	switch {
	case errors.As(err, &te):
		kind = "transport"
	case errors.As(err, &rse):
		kind = "status"
	}
	m.remoteErrors.WithLabelValues(op, kind).Inc()
}

func (m *Metrics) observeState(s State) {
	if m == nil {
		return
	}
	if s.Power {
		m.power.Set(1)
	} else {
		m.power.Set(0)
	}
	for _, mode := range []Mode{ModeCool, ModeHeat, ModeDry, ModeFan, ModeUnknown} {
		v := 0.0
		if s.Power && s.Mode == mode {
			v = 1
		}
		m.mode.WithLabelValues(mode.String()).Set(v)
	}
	m.target.Set(s.TargetTemperature)
	m.temperature.Set(s.CurrentTemperature)
	m.humidity.Set(s.CurrentHumidity)
}
