package observability

import (
	"context"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the RPC and planner collectors.
type Metrics struct {
	RPCRequests     *prometheus.CounterVec
	RPCDuration     *prometheus.HistogramVec
	RoutesGenerated *prometheus.CounterVec
	SolveDuration   *prometheus.HistogramVec
	UnfilledMeals   *prometheus.CounterVec
	SolvesInFlight  prometheus.Gauge
}

// NewMetrics registers collectors on reg; nil means the default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		RPCRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "loci",
			Name:      "rpc_requests_total",
			Help:      "Connect RPC calls by procedure and status code.",
		}, []string{"procedure", "code"}),
		RPCDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "loci",
			Name:      "rpc_duration_seconds",
			Help:      "Connect RPC latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure"}),
		RoutesGenerated: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "loci",
			Subsystem: "planner",
			Name:      "routes_total",
			Help:      "Travel routes planned by solver and outcome.",
		}, []string{"solver", "status"}),
		SolveDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "loci",
			Subsystem: "planner",
			Name:      "solve_duration_seconds",
			Help:      "Time spent planning one itinerary.",
			Buckets:   []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"solver"}),
		UnfilledMeals: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "loci",
			Subsystem: "planner",
			Name:      "unfilled_meals_total",
			Help:      "Requested meals left empty because no eating place was in range.",
		}, []string{"meal"}),
		SolvesInFlight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "loci",
			Subsystem: "planner",
			Name:      "solves_in_flight",
			Help:      "Itineraries currently being planned.",
		}),
	}
}

// NewMetricsInterceptor records call counts and latency per procedure.
func NewMetricsInterceptor(m *Metrics) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			resp, err := next(ctx, req)

			code := "ok"
			if err != nil {
				code = connect.CodeOf(err).String()
			}
			procedure := req.Spec().Procedure
			m.RPCRequests.WithLabelValues(procedure, code).Inc()
			m.RPCDuration.WithLabelValues(procedure).Observe(time.Since(start).Seconds())
			return resp, err
		}
	}
}
