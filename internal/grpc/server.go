package grpc

import (
	"net"

	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the name the worker reports in health checks.
const ServiceName = "admin-console.worker"

// HealthServer exposes the standard grpc.health.v1 service for the worker.
type HealthServer struct {
	server *grpc.Server
	health *health.Server
	lis    net.Listener
}

// NewHealthServer listens on port and registers the health service. The
// service starts as NOT_SERVING until SetServing is called.
func NewHealthServer(port string) (*HealthServer, error) {
	lis, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return nil, err
	}
	s := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	return &HealthServer{server: s, health: hs, lis: lis}, nil
}

func (h *HealthServer) Addr() net.Addr { return h.lis.Addr() }

func (h *HealthServer) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	h.health.SetServingStatus(ServiceName, status)
	h.health.SetServingStatus("", status)
}

// Serve blocks until Stop is called.
func (h *HealthServer) Serve() error {
	log.Info().Str("addr", h.lis.Addr().String()).Msg("gRPC health server listening")
	return h.server.Serve(h.lis)
}

func (h *HealthServer) Stop() {
	h.health.Shutdown()
	h.server.GracefulStop()
}
