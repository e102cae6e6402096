package server

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/joseph-ayodele/cropcatalog/constants"
)

// ExtractionService is the health service name that mirrors AI connectivity.
const ExtractionService = "extraction"

// Prober tests AI backend connectivity. *llm.Adapter satisfies it.
type Prober interface {
	TestConnection(ctx context.Context) bool
	Status() constants.ConnectionStatus
}

// Health publishes process liveness under "" and AI connectivity under ExtractionService.
type Health struct {
	hs     *health.Server
	prober Prober
	logger *slog.Logger
}

func NewHealth(prober Prober, logger *slog.Logger) *Health {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Health{hs: health.NewServer(), prober: prober, logger: logger}
	h.hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	h.hs.SetServingStatus(ExtractionService, healthpb.HealthCheckResponse_UNKNOWN)
	return h
}

func (h *Health) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, h.hs)
}

// Probe runs one connectivity check and publishes the result.
func (h *Health) Probe(ctx context.Context) constants.ConnectionStatus {
	ok := h.prober.TestConnection(ctx)
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if ok {
		st = healthpb.HealthCheckResponse_SERVING
	}
	h.hs.SetServingStatus(ExtractionService, st)
	status := h.prober.Status()
	h.logger.Info("health.probe", "service", ExtractionService, "connection", status, "serving", ok)
	return status
}

// Run probes immediately and then every interval until ctx ends. A
// non-positive interval probes once.
func (h *Health) Run(ctx context.Context, interval time.Duration) {
	h.Probe(ctx)
	if interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			h.Probe(ctx)
		}
	}
}

// Shutdown marks every service as not serving.
func (h *Health) Shutdown() {
	h.hs.Shutdown()
}
