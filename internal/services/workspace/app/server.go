// Package app wires the workspace session to its transports: the browser
// page and WebSocket feed, the MCP endpoint, and the gRPC health service.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/louisbranch/gmworkspace/internal/platform/timeouts"
	"github.com/louisbranch/gmworkspace/internal/services/workspace/api/tools"
	"github.com/louisbranch/gmworkspace/internal/services/workspace/domain/panel"
	"github.com/louisbranch/gmworkspace/internal/services/workspace/session"
	"github.com/louisbranch/gmworkspace/internal/services/workspace/storage"
	"github.com/louisbranch/gmworkspace/internal/services/workspace/storage/sqlite"
)

const (
	// TransportHTTP serves the page, WebSocket feed, and MCP over HTTP.
	TransportHTTP = "http"
	// TransportStdio serves MCP on stdin/stdout. The gRPC health service
	// still runs so supervisors can probe the process.
	TransportStdio = "stdio"
)

// Config defines the inputs for the workspace process.
type Config struct {
	HTTPAddr          string
	GRPCAddr          string
	DBPath            string
	Transport         string
	Stage             string
	UserID            string
	CampaignID        string
	Locale            string
	Version           string
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
}

// Server hosts one workspace session.
type Server struct {
	transport       string
	shutdownTimeout time.Duration

	store     *sqlite.Store
	session   *session.Session
	mcpServer *mcp.Server

	httpListener net.Listener
	httpServer   *http.Server
	handler      *Handler

	grpcListener net.Listener
	grpcServer   *grpc.Server
	health       *health.Server
}

// New opens the layout store, restores the default layout for the
// configured stage, and binds the listeners.
func New(ctx context.Context, cfg Config) (*Server, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	transport := strings.TrimSpace(cfg.Transport)
	if transport == "" {
		transport = TransportHTTP
	}
	if transport != TransportHTTP && transport != TransportStdio {
		return nil, fmt.Errorf("transport %q is not supported", cfg.Transport)
	}
	stage := panel.StagePrep
	if strings.TrimSpace(cfg.Stage) != "" {
		parsed, err := panel.ParseStage(cfg.Stage)
		if err != nil {
			return nil, err
		}
		stage = parsed
	}

	store, err := openStore(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	sess, err := session.New(session.Config{
		Store:  store,
		Scope:  storage.Scope{UserID: strings.TrimSpace(cfg.UserID), CampaignID: strings.TrimSpace(cfg.CampaignID)},
		Stage:  stage,
		Locale: cfg.Locale,
	})
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	loadCtx, cancel := context.WithTimeout(ctx, timeouts.StoreCall)
	loaded, err := sess.LoadDefault(loadCtx)
	cancel()
	if err != nil {
		// Only a saved default that no longer resolves gets here; start empty.
		log.Printf("load default layout: %v", err)
	} else {
		log.Printf("restored layout %q for stage %s (template=%t)", loaded.Layout.Name, stage, loaded.FromTemplate)
	}

	mcpServer, err := tools.NewServer(sess, cfg.Version)
	if err != nil {
		sess.Shutdown()
		_ = store.Close()
		return nil, err
	}

	srv := &Server{
		transport:       transport,
		shutdownTimeout: cfg.ShutdownTimeout,
		store:           store,
		session:         sess,
		mcpServer:       mcpServer,
	}
	if srv.shutdownTimeout <= 0 {
		srv.shutdownTimeout = timeouts.Shutdown
	}

	if err := srv.listen(cfg); err != nil {
		srv.Close()
		return nil, err
	}
	return srv, nil
}

func (s *Server) listen(cfg Config) error {
	grpcListener, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.GRPCAddr, err)
	}
	s.grpcListener = grpcListener
	s.grpcServer = grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	s.health = health.NewServer()
	grpc_health_v1.RegisterHealthServer(s.grpcServer, s.health)
	s.health.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)

	if s.transport != TransportHTTP {
		return nil
	}
	httpListener, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.HTTPAddr, err)
	}
	readHeaderTimeout := cfg.ReadHeaderTimeout
	if readHeaderTimeout <= 0 {
		readHeaderTimeout = timeouts.ReadHeader
	}
	s.httpListener = httpListener
	s.handler = NewHandler(s.session, s.mcpServer)
	s.httpServer = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	return nil
}

// Run builds a server from cfg and serves until ctx ends.
func Run(ctx context.Context, cfg Config) error {
	srv, err := New(ctx, cfg)
	if err != nil {
		return err
	}
	defer srv.Close()
	return srv.Serve(ctx)
}

// HTTPAddr returns the bound HTTP address, or "" under the stdio transport.
func (s *Server) HTTPAddr() string {
	if s == nil || s.httpListener == nil {
		return ""
	}
	return s.httpListener.Addr().String()
}

// GRPCAddr returns the bound gRPC health address.
func (s *Server) GRPCAddr() string {
	if s == nil || s.grpcListener == nil {
		return ""
	}
	return s.grpcListener.Addr().String()
}

// Session exposes the hosted session.
func (s *Server) Session() *session.Session {
	if s == nil {
		return nil
	}
	return s.session
}

// Serve runs every transport until ctx ends or one of them fails.
func (s *Server) Serve(ctx context.Context) error {
	if s == nil {
		return errors.New("server is nil")
	}
	if ctx == nil {
		return errors.New("context is required")
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	errs := make(chan error, 2)
	running := 1
	go func() {
		log.Printf("gRPC health listening at %v", s.grpcListener.Addr())
		err := s.grpcServer.Serve(s.grpcListener)
		if errors.Is(err, grpc.ErrServerStopped) {
			err = nil
		}
		errs <- err
	}()

	switch s.transport {
	case TransportHTTP:
		running++
		go func() {
			log.Printf("workspace listening at http://%v", s.httpListener.Addr())
			err := s.httpServer.Serve(s.httpListener)
			if errors.Is(err, http.ErrServerClosed) {
				err = nil
			}
			errs <- err
		}()
	case TransportStdio:
		running++
		go func() {
			log.Printf("workspace serving MCP on stdio")
			err := s.mcpServer.Run(runCtx, &mcp.StdioTransport{})
			if errors.Is(err, context.Canceled) {
				err = nil
			}
			errs <- err
		}()
	}

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errs:
		running--
	}
	cancel()
	s.shutdown()
	for ; running > 0; running-- {
		if err := <-errs; err != nil && serveErr == nil {
			serveErr = err
		}
	}
	if serveErr != nil {
		return fmt.Errorf("serve workspace: %w", serveErr)
	}
	return nil
}

func (s *Server) shutdown() {
	if s.health != nil {
		s.health.Shutdown()
	}
	// Subscribers see their channels close so WebSocket handlers return
	// before the HTTP server waits on them.
	s.session.Shutdown()
	if s.httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown http server: %v", err)
			_ = s.httpServer.Close()
		}
		cancel()
		s.handler.Wait()
	}
	if s.grpcServer != nil {
		s.grpcServer.GracefulStop()
	}
}

// Close releases the listeners and the layout store.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.httpListener != nil {
		_ = s.httpListener.Close()
	}
	if s.grpcServer != nil {
		s.grpcServer.Stop()
	}
	if s.grpcListener != nil {
		_ = s.grpcListener.Close()
	}
	if s.session != nil {
		s.session.Shutdown()
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			log.Printf("close layout store: %v", err)
		}
	}
}

func openStore(path string) (*sqlite.Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	store, err := sqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open layout store: %w", err)
	}
	return store, nil
}
