package mcp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/knowbase/internal/core/domain"
	"github.com/custodia-labs/knowbase/internal/logger"
)

// Version is the MCP server version.
const Version = "0.1.0"

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// ServeOptions selects the transport used by Serve.
type ServeOptions struct {
	// Port serves streamable HTTP on that port. Zero serves stdio.
	Port int

	// Host is the HTTP bind host. Empty binds every interface.
	Host string
}

// HTTP reports whether the options select the HTTP transport.
func (o ServeOptions) HTTP() bool {
	return o.Port != 0
}

// Addr returns the HTTP listen address.
func (o ServeOptions) Addr() string {
	return net.JoinHostPort(o.Host, strconv.Itoa(o.Port))
}

// Server exposes the knowledge base to MCP clients.
// One knowbase server backs every session, whether the transport is a single
// stdio pipe or many concurrent HTTP streams.
type Server struct {
	ports  *Ports
	server *mcp.Server
}

// NewServer validates ports and registers every tool and resource.
func NewServer(ports *Ports) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	s := &Server{
		ports: ports,
		server: mcp.NewServer(&mcp.Implementation{
			Name:    "knowbase",
			Version: Version,
		}, nil),
	}
	s.registerTools()
	s.registerResources()
	return s, nil
}

// Serve runs the server on the transport chosen by opts until ctx is done.
// Cancellation is a clean stop, not an error.
func (s *Server) Serve(ctx context.Context, opts ServeOptions) error {
	if opts.Port < 0 || opts.Port > 65535 {
		return fmt.Errorf("%w: mcp port %d is out of range", domain.ErrInvalidInput, opts.Port)
	}
	if !opts.HTTP() {
		return s.serveTransport(ctx, &mcp.StdioTransport{})
	}

	ln, err := net.Listen("tcp", opts.Addr())
	if err != nil {
		return fmt.Errorf("mcp listen on %s: %w", opts.Addr(), err)
	}
	return s.ServeListener(ctx, ln)
}

// Handler returns the streamable HTTP handler for this server.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.server
	}, nil)
}

// ServeListener serves streamable HTTP on ln until ctx is done, then shuts
// down, giving open streams a short grace period. ln is closed on return.
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	served := make(chan error, 1)
	go func() {
		served <- httpServer.Serve(ln)
	}()
	logger.Info("MCP server listening on http://%s", ln.Addr())

	select {
	case err := <-served:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("mcp http: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		_ = httpServer.Close()
		logger.Warn("MCP server forced closed: %v", err)
	}
	logger.Info("MCP server on %s stopped", ln.Addr())
	return nil
}

// serveTransport runs a single session on t, such as stdio.
func (s *Server) serveTransport(ctx context.Context, t mcp.Transport) error {
	logger.Debug("MCP session starting over %T", t)
	err := s.server.Run(ctx, t)
	if ctx.Err() != nil {
		logger.Debug("MCP session stopped: %v", ctx.Err())
		return nil
	}
	return err
}
