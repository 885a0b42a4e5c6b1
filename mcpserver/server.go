package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/rgonek/notion-md/batch"
	"github.com/rgonek/notion-md/mdconverter"
	"github.com/rgonek/notion-md/projector"
	"github.com/rgonek/notion-md/rewrite"
)

// Version is the MCP server version.
const Version = "0.1.0"

// Options tunes tool defaults.
type Options struct {
	// MaxChars bounds get_*_markdown output when the call gives no limit.
	MaxChars int
	// PreviewChars bounds each search preview.
	PreviewChars int
	// ValidateBeforeDelete is the replace_page_content default.
	ValidateBeforeDelete bool
	// Markdown configures the Markdown to block converter.
	Markdown mdconverter.Config
	Logger   *zap.Logger
}

// Server is the notion-md MCP server.
type Server struct {
	ports     *Ports
	opts      Options
	converter *mdconverter.Converter
	rewriter  *rewrite.Rewriter
	projector *projector.Projector
	logger    *zap.Logger
	server    *mcp.Server
}

// NewServer creates a server over the given ports.
func NewServer(ports *Ports, opts Options) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	conv, err := mdconverter.New(opts.Markdown)
	if err != nil {
		return nil, fmt.Errorf("markdown converter: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MaxChars <= 0 {
		opts.MaxChars = projector.DefaultMaxChars
	}
	if opts.PreviewChars <= 0 {
		opts.PreviewChars = defaultPreviewChars
	}

	engine := batch.New(ports.Writer, batch.WithLogger(logger.Named("batch")))
	s := &Server{
		ports:     ports,
		opts:      opts,
		converter: conv,
		rewriter:  rewrite.New(conv, engine, logger.Named("rewrite")),
		projector: projector.New(ports.Reader),
		logger:    logger,
		server: mcp.NewServer(&mcp.Implementation{
			Name:    "notion-md",
			Version: Version,
		}, nil),
	}

	s.registerTools()
	return s, nil
}

// MCP returns the underlying SDK server.
func (s *Server) MCP() *mcp.Server {
	return s.server
}

// Run serves over stdio until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP serves the streamable HTTP transport on addr until ctx is cancelled.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	ctx, cancel := context.WithCancel(ctx)

	handler := mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	stopped := make(chan struct{})
	defer func() {
		cancel()
		<-stopped
	}()

	go func() {
		defer close(stopped)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("http shutdown", zap.Error(err))
		}
	}()

	s.logger.Info("mcp http transport listening", zap.String("addr", addr))
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
