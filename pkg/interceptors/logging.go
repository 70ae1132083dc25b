package interceptors

import (
	"context"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/FACorreiaa/loci-travelroute-api/pkg/rpcjson"
)

// NewLoggingInterceptor logs every call with its JSON payload sizes.
func NewLoggingInterceptor(logger *slog.Logger) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			requestSize := rpcjson.Size(req.Any())

			logger.InfoContext(ctx, "RPC started", appendLoggerFields(ctx,
				"procedure", req.Spec().Procedure,
				"peer", req.Peer().Addr,
				"request_size_bytes", requestSize,
			)...)

			resp, err := next(ctx, req)
			duration := time.Since(start)

			// resp.Any() can be nil even when resp is not
			responseSize := 0
			if resp != nil {
				responseSize = rpcjson.Size(resp.Any())
			}

			if err != nil {
				logger.ErrorContext(ctx, "RPC failed", appendLoggerFields(ctx,
					"procedure", req.Spec().Procedure,
					"code", connect.CodeOf(err).String(),
					"duration_ms", duration.Milliseconds(),
					"request_size_bytes", requestSize,
					"error", err,
				)...)
				return resp, err
			}

			logger.InfoContext(ctx, "RPC completed", appendLoggerFields(ctx,
				"procedure", req.Spec().Procedure,
				"duration_ms", duration.Milliseconds(),
				"request_size_bytes", requestSize,
				"response_size_bytes", responseSize,
			)...)
			return resp, nil
		}
	}
}

func appendLoggerFields(ctx context.Context, base ...any) []any {
	if requestID, ok := RequestIDFromContext(ctx); ok && requestID != "" {
		base = append(base, "request_id", requestID)
	}
	return base
}
