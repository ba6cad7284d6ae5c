// Package grpc provides the gRPC surface of the registry. It currently
// serves health checks; its error interceptor projects taxonomy errors onto
// gRPC statuses so any handler added here reports failures with the same
// classification HTTP clients see.
package grpc

import (
	"context"
	"errors"
	"log/slog"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/mvaleed/registry/internal/apperr"
)

// Server wraps the gRPC server with dependencies.
type Server struct {
	grpcServer *grpc.Server
	logger     *slog.Logger
}

// NewServer creates a gRPC server with the error interceptor and health
// service registered.
func NewServer(logger *slog.Logger) *Server {
	s := &Server{logger: logger}
	s.grpcServer = grpc.NewServer(
		grpc.ChainUnaryInterceptor(s.errorInterceptor),
	)
	grpc_health_v1.RegisterHealthServer(s.grpcServer, health.NewServer())
	return s
}

// Serve starts serving on the given listener. Blocks until Stop.
func (s *Server) Serve(lis net.Listener) error {
	return s.grpcServer.Serve(lis)
}

// GracefulStop drains in-flight RPCs and stops the server.
func (s *Server) GracefulStop() {
	s.grpcServer.GracefulStop()
}

// errorInterceptor maps handler failures onto gRPC statuses. Taxonomy errors
// keep their classification and details; anything else is reported as an
// internal fault with a fixed message so internal detail never leaks onto
// the wire.
func (s *Server) errorInterceptor(
	ctx context.Context,
	req any,
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (any, error) {
	resp, err := handler(ctx, req)
	if err == nil {
		return resp, nil
	}

	var ae *apperr.Error
	if !errors.As(err, &ae) {
		ae = apperr.Internal("")
		ae.Operational = false
	}

	if !ae.Operational {
		s.logger.Error("non-operational error",
			slog.Any("error", err),
			slog.String("method", info.FullMethod),
		)
	}

	return nil, apperr.GRPCStatus(ae).Err()
}
