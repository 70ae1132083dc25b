package interceptors

import (
	"context"
	"errors"
	"strings"

	"connectrpc.com/connect"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// splitProcedure turns "/pkg.Service/Method" into its service and method.
func splitProcedure(procedure string) (string, string) {
	procedure = strings.TrimPrefix(procedure, "/")
	service, method, ok := strings.Cut(procedure, "/")
	if !ok {
		return procedure, ""
	}
	return service, method
}

func asConnectError(err error, target **connect.Error) bool {
	return errors.As(err, target)
}

// NewTracingInterceptor opens a server span per procedure.
func NewTracingInterceptor(tracer trace.Tracer) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			service, method := splitProcedure(req.Spec().Procedure)
			ctx, span := tracer.Start(ctx, req.Spec().Procedure,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					semconv.RPCSystemKey.String("connect_rpc"),
					semconv.RPCService(service),
					semconv.RPCMethod(method),
				),
			)
			defer span.End()

			if id, ok := RequestIDFromContext(ctx); ok {
				span.SetAttributes(attribute.String("request.id", id))
			}

			resp, err := next(ctx, req)
			if err != nil {
				span.RecordError(err)
				span.SetAttributes(attribute.String("rpc.connect_rpc.error_code", connect.CodeOf(err).String()))
				span.SetStatus(codes.Error, err.Error())
				return resp, err
			}
			span.SetStatus(codes.Ok, "")
			return resp, nil
		}
	}
}
