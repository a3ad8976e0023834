package grpc

import (
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the name under which the user API reports its health.
const ServiceName = "gestionusers.UserAPI"

// HealthService reports the serving status of the user API over the standard grpc.health.v1 protocol.
type HealthService struct {
	server *health.Server
}

// NewHealthService creates a HealthService. Both the overall and the ServiceName status start as NOT_SERVING.
func NewHealthService() *HealthService {
	s := health.NewServer()
	s.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	s.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	return &HealthService{server: s}
}

// Serving marks the API as ready to handle requests.
func (h *HealthService) Serving() {
	h.server.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	h.server.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
}

// Shutdown marks every service as NOT_SERVING and rejects further status changes.
func (h *HealthService) Shutdown() {
	h.server.Shutdown()
}

// NewServer builds a gRPC server exposing the health service and reflection.
func NewServer(h *HealthService, opts ...grpc.ServerOption) *grpc.Server {
	s := grpc.NewServer(opts...)
	healthpb.RegisterHealthServer(s, h.server)

	// Register reflection service on gRPC server.
	reflection.Register(s)
	return s
}
