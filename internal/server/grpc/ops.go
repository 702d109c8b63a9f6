// Package grpcserver runs the operational gRPC endpoint: health checks and,
// in development, server reflection.
package grpcserver

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// Pinger checks a backing dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewOps builds a gRPC server with recover and logging interceptors and the
// standard health service registered. The overall status starts NOT_SERVING.
func NewOps(log *zap.Logger, dev bool) (*grpc.Server, *health.Server) {
	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			RecoverUnary(log),
			LoggingUnary(log),
		),
	)
	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	healthpb.RegisterHealthServer(s, hs)
	if dev {
		reflection.Register(s)
	}
	return s, hs
}

// MonitorHealth pings p every interval and mirrors the result into hs until
// ctx is done. On return the status is NOT_SERVING.
func MonitorHealth(ctx context.Context, hs *health.Server, p Pinger, interval time.Duration, log *zap.Logger) {
	last := healthpb.HealthCheckResponse_UNKNOWN
	check := func() {
		pctx, cancel := context.WithTimeout(ctx, interval)
		defer cancel()

		st := healthpb.HealthCheckResponse_SERVING
		if err := p.Ping(pctx); err != nil {
			st = healthpb.HealthCheckResponse_NOT_SERVING
			if last != st {
				log.Warn("health: dependency down", zap.Error(err))
			}
		}
		if st != last {
			hs.SetServingStatus("", st)
			last = st
		}
	}

	check()
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
			return
		case <-t.C:
			check()
		}
	}
}
