package grpc

import (
	"context"
	"net"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection/grpc_reflection_v1"
)

func startServer(t *testing.T) (*grpc.ClientConn, *PlayerHealth) {
	t.Helper()
	srv, player := NewGRPCServer()

	lis, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}

	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient(lis.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("Failed to dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn, player
}

func check(t *testing.T, client grpc_health_v1.HealthClient, service string) grpc_health_v1.HealthCheckResponse_ServingStatus {
	t.Helper()
	resp, err := client.Check(context.Background(), &grpc_health_v1.HealthCheckRequest{Service: service})
	if err != nil {
		t.Fatalf("Health check for %q failed: %v", service, err)
	}
	return resp.Status
}

func TestNewGRPCServer_ReturnsNonNil(t *testing.T) {
	srv, player := NewGRPCServer()
	if srv == nil || player == nil {
		t.Fatal("Expected non-nil gRPC server and player health")
	}
}

func TestNewGRPCServer_HealthCheck(t *testing.T) {
	conn, _ := startServer(t)
	healthClient := grpc_health_v1.NewHealthClient(conn)

	if got := check(t, healthClient, ""); got != grpc_health_v1.HealthCheckResponse_SERVING {
		t.Errorf("Expected SERVING status, got %v", got)
	}
	if got := check(t, healthClient, PlayerService); got != grpc_health_v1.HealthCheckResponse_NOT_SERVING {
		t.Errorf("Expected NOT_SERVING before the first poll, got %v", got)
	}
}

func TestPlayerHealth_SetPlayerReachable(t *testing.T) {
	conn, player := startServer(t)
	healthClient := grpc_health_v1.NewHealthClient(conn)

	player.SetPlayerReachable(true)
	if got := check(t, healthClient, PlayerService); got != grpc_health_v1.HealthCheckResponse_SERVING {
		t.Errorf("Expected SERVING once Kodi answered, got %v", got)
	}

	player.SetPlayerReachable(false)
	if got := check(t, healthClient, PlayerService); got != grpc_health_v1.HealthCheckResponse_NOT_SERVING {
		t.Errorf("Expected NOT_SERVING after a failed poll, got %v", got)
	}

	// The process itself stays healthy
	if got := check(t, healthClient, ""); got != grpc_health_v1.HealthCheckResponse_SERVING {
		t.Errorf("Expected overall status SERVING, got %v", got)
	}
}

func TestPlayerHealth_Shutdown(t *testing.T) {
	conn, player := startServer(t)
	healthClient := grpc_health_v1.NewHealthClient(conn)

	player.SetPlayerReachable(true)
	player.Shutdown()

	if got := check(t, healthClient, ""); got != grpc_health_v1.HealthCheckResponse_NOT_SERVING {
		t.Errorf("Expected NOT_SERVING after shutdown, got %v", got)
	}
	// Updates after shutdown are ignored by the health server
	player.SetPlayerReachable(true)
	if got := check(t, healthClient, PlayerService); got != grpc_health_v1.HealthCheckResponse_NOT_SERVING {
		t.Errorf("Expected player to stay NOT_SERVING after shutdown, got %v", got)
	}
}

func TestNewGRPCServer_ReflectionEnabled(t *testing.T) {
	conn, _ := startServer(t)

	reflectionClient := grpc_reflection_v1.NewServerReflectionClient(conn)
	stream, err := reflectionClient.ServerReflectionInfo(context.Background())
	if err != nil {
		t.Fatalf("Failed to create reflection stream: %v", err)
	}

	err = stream.Send(&grpc_reflection_v1.ServerReflectionRequest{
		MessageRequest: &grpc_reflection_v1.ServerReflectionRequest_ListServices{
			ListServices: "",
		},
	})
	if err != nil {
		t.Fatalf("Failed to send reflection request: %v", err)
	}

	resp, err := stream.Recv()
	if err != nil {
		t.Fatalf("Failed to receive reflection response: %v", err)
	}

	listResp := resp.GetListServicesResponse()
	if listResp == nil {
		t.Fatal("Expected list services response")
	}

	found := false
	for _, svc := range listResp.Service {
		if svc.Name == "grpc.health.v1.Health" {
			found = true
			break
		}
	}
	if !found {
		t.Error("Expected the health service to be registered")
	}
}

func TestNewGRPCServer_CalledMultipleTimes(t *testing.T) {
	// sync.Once prevents double-registration panics
	srv1, _ := NewGRPCServer()
	srv2, _ := NewGRPCServer()

	if srv1 == nil || srv2 == nil {
		t.Fatal("Expected non-nil servers from multiple calls")
	}
}
