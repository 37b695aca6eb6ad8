package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/louisbranch/courtroom.space/internal/platform/discovery"
	"github.com/louisbranch/courtroom.space/internal/platform/httpx"
	"github.com/louisbranch/courtroom.space/internal/platform/timeouts"
	sceneclient "github.com/louisbranch/courtroom.space/internal/services/scene/client"
)

var (
	defaultHTTPAddr  = discovery.LocalHTTPAddr(discovery.ServiceMCP)
	defaultSceneAddr = discovery.LocalHTTPAddr(discovery.ServiceScene)
)

const (
	// HTTPPath is where the streamable HTTP transport is mounted.
	HTTPPath = "/mcp"
)

// completionHandler returns empty completions; resource templates take free-form ids.
func completionHandler(context.Context, *mcp.CompleteRequest) (*mcp.CompleteResult, error) {
	return &mcp.CompleteResult{
		Completion: mcp.CompletionResultDetails{
			Values: []string{},
		},
	}, nil
}

// Run is the service entrypoint for MCP and blocks until context cancellation.
func Run(ctx context.Context, cfg Config) error {
	if cfg.Transport == "" {
		cfg.Transport = TransportStdio
	}
	if cfg.Transport != TransportStdio && cfg.Transport != TransportHTTP {
		return fmt.Errorf("transport %q is not supported", cfg.Transport)
	}

	sceneAddr := strings.TrimSpace(cfg.SceneAddr)
	if sceneAddr == "" {
		sceneAddr = defaultSceneAddr
	}
	api, err := sceneclient.New(sceneAddr)
	if err != nil {
		return err
	}
	server, err := New(api)
	if err != nil {
		return err
	}

	switch cfg.Transport {
	case TransportHTTP:
		httpAddr := cfg.HTTPAddr
		if httpAddr == "" {
			httpAddr = defaultHTTPAddr
		}
		listener, err := net.Listen("tcp", httpAddr)
		if err != nil {
			return fmt.Errorf("listen on %s: %w", httpAddr, err)
		}
		return server.Serve(ctx, listener)
	default:
		return server.runWithTransport(ctx, &mcp.StdioTransport{})
	}
}

// runWithTransport serves one session over transport until it ends or ctx is cancelled.
func (s *Server) runWithTransport(ctx context.Context, transport mcp.Transport) error {
	err := s.mcpServer.Run(ctx, transport)
	if err == nil || errors.Is(err, context.Canceled) {
		return nil
	}
	return fmt.Errorf("run MCP server: %w", err)
}

// Handler returns the streamable HTTP handler for this server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(HTTPPath, mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.mcpServer
	}, nil))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		_ = httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return httpx.Chain(mux, httpx.RequestID("mcp"), httpx.RecoverPanic(), httpx.Trace("mcp/http"))
}

// Serve serves the streamable HTTP transport on listener until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: timeouts.ReadHeader,
	}
	log.Printf("MCP HTTP server listening at http://%s%s", listener.Addr(), HTTPPath)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- httpServer.Serve(listener)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown MCP http: %w", err)
		}
		<-serveErr
		return nil
	case err := <-serveErr:
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve MCP http: %w", err)
	}
}
