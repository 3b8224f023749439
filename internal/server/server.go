package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

// Server terminates websocket connections and hands them to the hub.
type Server struct {
	cfg      *Config
	logger   *log.Logger
	hub      *Hub
	upgrader websocket.Upgrader
	httpSrv  *http.Server
}

// NewServer builds the HTTP layer over an existing hub.
func NewServer(cfg *Config, logger *log.Logger, hub *Hub) *Server {
	s := &Server{
		cfg:    cfg,
		logger: logger.WithPrefix("server"),
		hub:    hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	s.httpSrv = &http.Server{
		Addr:    cfg.ListenAddress(),
		Handler: mux,
	}
	return s
}

// ListenAndServe blocks until the context is cancelled or the listener
// fails.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.httpSrv.Addr)
		errCh <- s.httpSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpSrv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("upgrade failed", "error", err, "remote", r.RemoteAddr)
		return
	}
	s.logger.Debug("connection opened", "remote", conn.RemoteAddr())
	go NewConnection(s.hub, conn, s.logger).Run()
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
