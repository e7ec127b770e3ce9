package observability

import (
	"context"
	"time"

	"github.com/oriys/quasar/internal/logging"
	"github.com/oriys/quasar/internal/metrics"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// Common attribute keys for proxy spans.
var (
	AttrTopic    = attribute.Key("quasar.topic")
	AttrGroup    = attribute.Key("quasar.group")
	AttrBroker   = attribute.Key("quasar.broker")
	AttrClientID = attribute.Key("quasar.client_id")
)

// StartSpan creates an internal span under the current trace.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return Tracer().Start(ctx, name,
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// SetSpanError marks the span as errored.
func SetSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(otelcodes.Error, err.Error())
}

// UnaryInterceptor opens a server span per unary RPC, logs the outcome, and
// records the method metrics.
func UnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler) (any, error) {

		start := time.Now()
		ctx, span := Tracer().Start(ctx, info.FullMethod,
			trace.WithSpanKind(trace.SpanKindServer),
		)
		defer span.End()

		resp, err := handler(ctx, req)

		duration := time.Since(start)
		code := status.Code(err)
		metrics.RecordRPC(info.FullMethod, code.String(), float64(duration.Milliseconds()))

		if err != nil {
			SetSpanError(span, err)
			logging.Op().Warn("rpc failed",
				"method", info.FullMethod,
				"code", code.String(),
				"duration", duration,
				"error", err,
			)
		} else {
			logging.Op().Debug("rpc completed",
				"method", info.FullMethod,
				"duration", duration,
			)
		}
		return resp, err
	}
}

// StreamInterceptor opens a server span per streaming RPC.
func StreamInterceptor() grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo,
		handler grpc.StreamHandler) error {

		start := time.Now()
		ctx, span := Tracer().Start(ss.Context(), info.FullMethod,
			trace.WithSpanKind(trace.SpanKindServer),
		)
		defer span.End()

		err := handler(srv, &tracedStream{ServerStream: ss, ctx: ctx})

		code := status.Code(err)
		metrics.RecordRPC(info.FullMethod, code.String(), float64(time.Since(start).Milliseconds()))
		if err != nil {
			SetSpanError(span, err)
		}
		return err
	}
}

type tracedStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *tracedStream) Context() context.Context { return s.ctx }
