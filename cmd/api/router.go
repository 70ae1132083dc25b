package main

import (
	"net/http"

	"connectrpc.com/connect"
	connectcors "connectrpc.com/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.opentelemetry.io/otel"
	"golang.org/x/time/rate"

	placehandler "github.com/FACorreiaa/loci-travelroute-api/internal/domain/place/handler"
	travelroutehandler "github.com/FACorreiaa/loci-travelroute-api/internal/domain/travelroute/handler"
	"github.com/FACorreiaa/loci-travelroute-api/pkg/interceptors"
	"github.com/FACorreiaa/loci-travelroute-api/pkg/observability"
)

// SetupRouter configures all routes and returns the HTTP handler
func SetupRouter(deps *Dependencies) http.Handler {
	mux := http.NewServeMux()

	tracer := otel.GetTracerProvider().Tracer("loci/api")

	chain := []connect.Interceptor{
		interceptors.NewRequestIDInterceptor("X-Request-ID"),
		interceptors.NewTracingInterceptor(tracer),
	}
	if deps.Config.Server.RateLimitPerSecond > 0 && deps.Config.Server.RateLimitBurst > 0 {
		limiter := rate.NewLimiter(
			rate.Limit(float64(deps.Config.Server.RateLimitPerSecond)),
			deps.Config.Server.RateLimitBurst,
		)
		chain = append(chain, interceptors.NewRateLimitInterceptor(limiter))
	}
	chain = append(chain,
		interceptors.NewRecoveryInterceptor(deps.Logger),
		interceptors.NewLoggingInterceptor(deps.Logger),
		interceptors.NewValidationInterceptor(nil),
		observability.NewMetricsInterceptor(deps.Metrics),
	)
	interceptorChain := connect.WithInterceptors(chain...)

	// Register Connect RPC routes
	registerConnectRoutes(mux, deps, interceptorChain)

	// Register health and metrics routes
	registerUtilityRoutes(mux, deps)

	// Enable CORS for browser clients
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   deps.Config.Server.AllowedOrigins,
		AllowedMethods:   connectcors.AllowedMethods(),
		AllowedHeaders:   append(connectcors.AllowedHeaders(), "X-Request-ID"),
		ExposedHeaders:   append(connectcors.ExposedHeaders(), "X-Request-ID"),
		AllowCredentials: true,
	})

	return corsHandler.Handler(mux)
}

// registerConnectRoutes registers all Connect RPC services
func registerConnectRoutes(mux *http.ServeMux, deps *Dependencies, opts connect.HandlerOption) {
	travelRoutePath, travelRouteHandler := travelroutehandler.NewTravelRouteServiceHandler(deps.TravelRouteHandler, opts)
	mux.Handle(travelRoutePath, travelRouteHandler)
	deps.Logger.Info("registered Connect RPC service", "path", travelRoutePath)

	placePath, placeHandler := placehandler.NewPlaceServiceHandler(deps.PlaceHandler, opts)
	mux.Handle(placePath, placeHandler)
	deps.Logger.Info("registered Connect RPC service", "path", placePath)

	deps.Logger.Info("Connect RPC routes configured")
}

// registerUtilityRoutes registers health check, metrics, and other utility routes
func registerUtilityRoutes(mux *http.ServeMux, deps *Dependencies) {
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := deps.Health(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("database unhealthy"))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	deps.Logger.Info("registered health check", "path", "/health")

	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ready"))
	})
	deps.Logger.Info("registered readiness check", "path", "/ready")

	if deps.Config.Observability.MetricsEnabled {
		mux.Handle("/metrics", promhttp.Handler())
		deps.Logger.Info("registered metrics endpoint", "path", "/metrics")
	}
}
