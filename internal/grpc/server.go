// Package grpc hosts the client-facing gRPC server, serving both protocol
// revisions off the shared proxy façade.
package grpc

import (
	"fmt"
	"net"
	"time"

	"github.com/oriys/quasar/api/mqv1"
	"github.com/oriys/quasar/api/mqv2"
	"github.com/oriys/quasar/internal/logging"
	"github.com/oriys/quasar/internal/observability"
	"github.com/oriys/quasar/internal/service"
	v1 "github.com/oriys/quasar/internal/service/v1"
	v2 "github.com/oriys/quasar/internal/service/v2"
	"google.golang.org/grpc"
)

// Server wraps the gRPC listener and the registered activities.
type Server struct {
	server *grpc.Server
	proxy  *service.Proxy
}

// NewServer builds the server with the interceptor chain and both protocol
// revisions registered.
func NewServer(proxy *service.Proxy, maxRecvMsgSize int) *Server {
	opts := []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(observability.UnaryInterceptor()),
		grpc.ChainStreamInterceptor(observability.StreamInterceptor()),
	}
	if maxRecvMsgSize > 0 {
		opts = append(opts, grpc.MaxRecvMsgSize(maxRecvMsgSize))
	}

	s := &Server{
		server: grpc.NewServer(opts...),
		proxy:  proxy,
	}
	mqv1.RegisterMessagingServiceServer(s.server, v1.NewActivity(proxy))
	mqv2.RegisterMessagingServiceServer(s.server, v2.NewActivity(proxy))
	return s
}

// Start listens on the port and serves in a background goroutine.
func (s *Server) Start(port int) error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return fmt.Errorf("listen :%d: %w", port, err)
	}

	logging.Op().Info("grpc server started", "port", port)
	go func() {
		if err := s.server.Serve(lis); err != nil {
			logging.Op().Error("grpc server stopped", "error", err)
		}
	}()
	return nil
}

// Stop drains in-flight RPCs, falling back to a hard stop after the grace
// period.
func (s *Server) Stop(grace time.Duration) {
	done := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(grace):
		s.server.Stop()
	}
}
