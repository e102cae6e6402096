// Package server exposes the daemon's gRPC surface.
package server

import (
	"context"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/joseph-ayodele/cropcatalog/internal/common"
)

type Server struct {
	grpc   *grpc.Server
	health *Health
	logger *slog.Logger
}

func New(h *Health, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	gs := grpc.NewServer(grpc.ChainUnaryInterceptor(unaryLogging(logger)))
	h.Register(gs)
	// reflection for grpcurl
	reflection.Register(gs)
	return &Server{grpc: gs, health: h, logger: logger}
}

// Serve blocks until the listener fails or Stop is called.
func (s *Server) Serve(lis net.Listener) error {
	s.logger.Info("grpc.serve", "addr", lis.Addr().String())
	return s.grpc.Serve(lis)
}

// Stop flips health to not serving and drains in-flight calls.
func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
	s.logger.Info("grpc.stopped")
}

// unaryLogging logs each call and maps application errors onto gRPC codes.
func unaryLogging(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		if err != nil {
			if _, ok := status.FromError(err); !ok {
				err = common.ToStatus(err)
			}
			logger.Warn("grpc.call.failed", "method", info.FullMethod, "error", err,
				"elapsed_ms", time.Since(start).Milliseconds())
			return nil, err
		}
		logger.Debug("grpc.call", "method", info.FullMethod, "elapsed_ms", time.Since(start).Milliseconds())
		return resp, nil
	}
}
