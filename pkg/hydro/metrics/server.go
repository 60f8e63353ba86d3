package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/tigerroll/hydrocli/pkg/hydro/support/logger"
)

// Server exposes a PrometheusRecorder registry over HTTP at /metrics.
type Server struct {
	srv *http.Server
}

// NewServer builds a metrics server bound to addr, e.g. ":9464".
func NewServer(addr string, recorder *PrometheusRecorder) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", recorder.Handler())
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Start begins serving in a goroutine. Listen errors are returned; serve
// errors after startup are logged.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return err
	}
	logger.Infof("metrics listening on %s", ln.Addr())
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("metrics server stopped: %v", err)
		}
	}()
	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
