// Package server exposes the monitored directory over HTTP, read-only, and
// optionally the Prometheus registry on a second address.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ErrAddrInUse is returned by Start when the address is already bound.
var ErrAddrInUse = errors.New("address already in use")

const shutdownTimeout = 5 * time.Second

// Server is a started HTTP server.
type Server struct {
	srv  *http.Server
	ln   net.Listener
	done chan error
}

// Start binds addr and serves handler until ctx is cancelled. Binding happens
// before Start returns so the caller learns about a taken port immediately.
func Start(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		if errors.Is(err, syscall.EADDRINUSE) {
			return nil, fmt.Errorf("listen %s: %w", addr, ErrAddrInUse)
		}
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}

	s := &Server{
		srv: &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		ln:   ln,
		done: make(chan error, 1),
	}

	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.srv.Shutdown(sctx); err != nil {
			logger.Error("http server shutdown error", "addr", s.Addr(), "err", err)
		}
	}()

	go func() {
		err := s.srv.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		if err != nil {
			logger.Error("http server failed", "addr", s.Addr(), "err", err)
		}
		s.done <- err
	}()

	logger.Info("http server listening", "addr", s.Addr())
	return s, nil
}

// Addr is the bound address, useful when Start was given port 0.
func (s *Server) Addr() string {
	return s.ln.Addr().String()
}

// Wait blocks until the server has stopped and returns its serve error, if
// any. It returns nil after a clean shutdown.
func (s *Server) Wait() error {
	return <-s.done
}

// FileHandler serves dir read-only. Anything but GET and HEAD gets 405.
func FileHandler(dir string) http.Handler {
	fs := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead:
			fs.ServeHTTP(w, r)
		default:
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		}
	})
}

// MetricsHandler serves the default Prometheus registry at /metrics.
func MetricsHandler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}
