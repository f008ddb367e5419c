package server

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ShayCichocki/cadre/internal/orchestrator"
)

// Metrics holds the server's Prometheus collectors. Each server owns its
// registry so several servers can coexist in one process.
//
// Metrics:
//   - cadre_http_requests_total{method,endpoint,status}
//   - cadre_http_request_duration_seconds{method,endpoint}
//   - cadre_delegations_total{outcome}
//   - cadre_patterns_recorded_total{kind}
//   - cadre_snapshot_operations_total{op,result}
//   - cadre_registered_agents
//   - cadre_learning_velocity, cadre_transformation_effectiveness, cadre_emergence_quotient
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal      *prometheus.CounterVec
	RequestDuration    *prometheus.HistogramVec
	DelegationsTotal   *prometheus.CounterVec
	PatternsTotal      *prometheus.CounterVec
	SnapshotOperations *prometheus.CounterVec
}

// NewMetrics creates and registers the collectors. Gauges read engine on scrape.
func NewMetrics(engine *orchestrator.Engine) *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	m := &Metrics{
		registry: reg,
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cadre_http_requests_total",
				Help: "Total HTTP requests by method, endpoint and status",
			},
			[]string{"method", "endpoint", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cadre_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
			},
			[]string{"method", "endpoint"},
		),
		DelegationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cadre_delegations_total",
				Help: "Delegations by outcome (assigned, unassigned, rejected)",
			},
			[]string{"outcome"},
		),
		PatternsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cadre_patterns_recorded_total",
				Help: "Learning patterns recorded by kind",
			},
			[]string{"kind"},
		),
		SnapshotOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cadre_snapshot_operations_total",
				Help: "Snapshot save and load operations by result",
			},
			[]string{"op", "result"},
		),
	}

	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "cadre_registered_agents",
		Help: "Agents in the current registry",
	}, func() float64 { return float64(engine.Registry().Len()) })
	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "cadre_learning_velocity",
		Help: "Current learning velocity",
	}, func() float64 { return engine.Metrics().LearningVelocity })
	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "cadre_transformation_effectiveness",
		Help: "Current transformation effectiveness",
	}, func() float64 { return engine.Metrics().TransformationEffectiveness })
	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "cadre_emergence_quotient",
		Help: "Current emergence quotient",
	}, func() float64 { return engine.Metrics().EmergenceQuotient })

	return m
}

// Registry returns the registry backing /metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Middleware records request counts and latency. The route template is used
// as the endpoint label to keep cardinality bounded.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}
			endpoint := c.Path()
			if endpoint == "" {
				endpoint = "unmatched"
			}
			method := c.Request().Method

			m.RequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
			m.RequestDuration.WithLabelValues(method, endpoint).Observe(time.Since(start).Seconds())
			return err
		}
	}
}
