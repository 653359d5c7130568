// Package grpc exposes the process health over the standard gRPC health protocol.
package grpc

import (
	"sync"

	grpcprom "github.com/grpc-ecosystem/go-grpc-middleware/providers/prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// PlayerService is the health service name that follows Kodi reachability.
// The empty service name reports the process itself and is always SERVING.
const PlayerService = "kodipresence.v1.Player"

var (
	grpcServerMetrics         *grpcprom.ServerMetrics
	registerServerMetricsOnce sync.Once
)

// PlayerHealth flips the PlayerService status as polls succeed or fail.
type PlayerHealth struct {
	server *health.Server
}

// SetPlayerReachable reports SERVING when the last poll reached Kodi.
func (p *PlayerHealth) SetPlayerReachable(reachable bool) {
	status := grpc_health_v1.HealthCheckResponse_NOT_SERVING
	if reachable {
		status = grpc_health_v1.HealthCheckResponse_SERVING
	}
	p.server.SetServingStatus(PlayerService, status)
}

// Shutdown marks every service NOT_SERVING so watchers see the process going away.
func (p *PlayerHealth) Shutdown() {
	p.server.Shutdown()
}

// NewGRPCServer creates a gRPC server with Prometheus metrics, health checking
// and reflection. The player service starts NOT_SERVING until the first poll.
func NewGRPCServer() (*grpc.Server, *PlayerHealth) {
	registerServerMetricsOnce.Do(func() {
		grpcServerMetrics = grpcprom.NewServerMetrics(
			grpcprom.WithServerHandlingTimeHistogram(),
		)
		prometheus.MustRegister(grpcServerMetrics)
	})

	srvMetrics := grpcServerMetrics

	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(srvMetrics.UnaryServerInterceptor()),
		grpc.ChainStreamInterceptor(srvMetrics.StreamServerInterceptor()),
	)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(PlayerService, grpc_health_v1.HealthCheckResponse_NOT_SERVING)

	// Register reflection service for tools like grpcurl
	reflection.Register(grpcServer)

	srvMetrics.InitializeMetrics(grpcServer)

	return grpcServer, &PlayerHealth{server: healthServer}
}
