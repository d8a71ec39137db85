package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/printbridge/printbridge/bridge/http/handlers"
	"github.com/printbridge/printbridge/bridge/http/middleware"
	"github.com/printbridge/printbridge/internal/logging"
	"github.com/printbridge/printbridge/internal/relay"
)

const defaultPort = 3000

// Server represents the HTTP server
type Server struct {
	server *http.Server
	port   int
}

// Options configures the HTTP server
type Options struct {
	Port        int
	Relay       *relay.Relay
	Logger      *logging.Logger
	CORSOrigins []string
}

// NewServer creates a new HTTP server instance
func NewServer(opts *Options) *Server {
	if opts == nil {
		opts = &Options{}
	}
	port := opts.Port
	if port == 0 {
		port = defaultPort
	}
	rl := opts.Relay
	if rl == nil {
		rl = relay.New(&relay.Options{Logger: opts.Logger})
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", handlers.HealthHandler)
	mux.Handle("/print", handlers.NewPrintHandler(rl))
	mux.Handle("/ws/print", handlers.NewPrintStreamHandler(rl))

	// Telemetry runs outermost so the request ID is available to the
	// logging middleware; CORS sits inside so preflights are still logged.
	var handler http.Handler = mux
	handler = middleware.CORS(opts.CORSOrigins)(handler)
	handler = middleware.Logger(logger)(handler)
	handler = middleware.Telemetry(handler)

	return &Server{
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		port: port,
	}
}

// Handler returns the fully assembled handler chain, for tests
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Close immediately closes the server
func (s *Server) Close() error {
	return s.server.Close()
}

// Port returns the port the server is configured to listen on
func (s *Server) Port() int {
	return s.port
}
