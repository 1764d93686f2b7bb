package grpcserver

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"github.com/nmxmxh/desktop-automation-service/pkg/apierror"
	"github.com/nmxmxh/desktop-automation-service/pkg/logger"
	"github.com/nmxmxh/desktop-automation-service/pkg/metrics"
)

// LoggingInterceptor logs every unary RPC's request/response and converts
// any error returned by a handler into a real gRPC status, enriched with the
// AIP-193 ErrorInfo detail apierror.Error carries, instead of the generic
// codes.Unknown a bare Go error would become.
func LoggingInterceptor(log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		method := extractServiceName(info.FullMethod)
		ctx = logger.WithMethod(ctx, method)
		reqLogger := logger.FromContext(ctx, log)

		reqLogger.Info("received request", zap.String("method", info.FullMethod))

		resp, err := handler(ctx, req)
		if err != nil {
			reqLogger.Error("request failed", zap.String("method", info.FullMethod), zap.Error(err))
			return resp, apierror.ToGRPCError(err)
		}
		reqLogger.Info("request completed", zap.String("method", info.FullMethod))
		return resp, nil
	}
}

// MetricsInterceptor records grpc_request_duration_seconds (by method and
// terminal status code) and tracks grpc_active_requests for the duration of
// each unary call.
func MetricsInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		method := info.FullMethod

		metrics.ActiveRequests.Inc()
		defer metrics.ActiveRequests.Dec()

		start := time.Now()
		resp, err := handler(ctx, req)
		metrics.RequestDuration.WithLabelValues(method, status.Code(err).String()).Observe(time.Since(start).Seconds())
		return resp, err
	}
}

// extractServiceName pulls the lower-cased service name out of a full
// method path of the form /package.ServiceName/MethodName.
func extractServiceName(fullMethod string) string {
	parts := strings.Split(fullMethod, ".")
	if len(parts) < 2 {
		return ""
	}
	methodParts := strings.Split(parts[len(parts)-1], "/")
	if len(methodParts) < 1 {
		return ""
	}
	return strings.ToLower(methodParts[0])
}
