// internal/grpcapi/health.go
package grpcapi

import (
	"context"
	"log"
	"net"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/taiyakiedu/edugames/internal/game"
)

// CatalogService is the health service name that tracks the games root.
const CatalogService = "edugames.Catalog"

// HealthReporter implements grpc.health.v1.Health on top of the game
// catalog: SERVING while the games root is readable, NOT_SERVING otherwise.
type HealthReporter struct {
	catalog *game.Catalog
	health  *health.Server

	mu   sync.Mutex
	last healthpb.HealthCheckResponse_ServingStatus
}

// NewHealthReporter creates a reporter and runs one check so the first
// client never sees SERVICE_UNKNOWN.
func NewHealthReporter(catalog *game.Catalog) *HealthReporter {
	h := &HealthReporter{
		catalog: catalog,
		health:  health.NewServer(),
	}
	h.Check()
	return h
}

// Register adds the health service to s.
func (h *HealthReporter) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, h.health)
}

// Check re-reads the games root and publishes the result for both the
// catalog service and the overall ("") service.
func (h *HealthReporter) Check() healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING
	err := h.catalog.Available()
	if err != nil {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}

	h.mu.Lock()
	changed := status != h.last
	h.last = status
	h.mu.Unlock()

	if changed {
		if err != nil {
			log.Printf("games root unavailable: %v", err)
		} else {
			log.Printf("games root available: %s", h.catalog.Dir())
		}
	}

	h.health.SetServingStatus(CatalogService, status)
	h.health.SetServingStatus("", status)
	return status
}

// Run re-checks every interval until ctx is done, then marks everything
// NOT_SERVING.
func (h *HealthReporter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.health.Shutdown()
			return
		case <-ticker.C:
			h.Check()
		}
	}
}

// Serve runs a gRPC server with the health service on lis until ctx is
// done.
func Serve(ctx context.Context, lis net.Listener, h *HealthReporter, interval time.Duration) error {
	grpcServer := grpc.NewServer()
	h.Register(grpcServer)

	go h.Run(ctx, interval)
	go func() {
		<-ctx.Done()
		grpcServer.GracefulStop()
	}()

	log.Printf("gRPC health server listening on %s", lis.Addr())
	return grpcServer.Serve(lis)
}
