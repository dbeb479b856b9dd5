package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/ayham/sitekit/internal/repository"
	"github.com/gorilla/mux"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Config holds the preview server settings.
type Config struct {
	Port    int
	SiteDir string
	Version string
}

// Server serves a built site for local preview.
type Server struct {
	config     Config
	httpServer *http.Server
	router     *mux.Router
	startTime  time.Time
	log        *zap.Logger
}

// New creates a preview server over the given build directory.
func New(cfg Config, fsRepo repository.FileSystemRepository, log *zap.Logger) *Server {
	router := mux.NewRouter()
	s := &Server{
		config:    cfg,
		router:    router,
		startTime: time.Now(),
		log:       log,
	}
	s.setupRoutes(fsRepo)
	handler := s.loggingMiddleware(s.recoveryMiddleware(router))
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) setupRoutes(fsRepo repository.FileSystemRepository) {
	s.router.HandleFunc("/healthz", s.handleHealth).Methods("GET")
	httpFs := afero.NewHttpFs(fsRepo)
	s.router.PathPrefix("/").Handler(http.FileServer(httpFs.Dir(s.config.SiteDir))).Methods("GET", "HEAD")
}

// Handler exposes the routed handler, used by tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start listens and serves until Shutdown or a listener error.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	s.log.Info("preview server listening",
		zap.String("addr", listener.Addr().String()),
		zap.String("dir", s.config.SiteDir))
	if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("preview server shutting down")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	response := map[string]any{
		"status":  "ok",
		"version": s.config.Version,
		"uptime":  time.Since(s.startTime).Round(time.Second).String(),
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		s.log.Warn("failed to encode health response", zap.Error(err))
	}
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		s.log.Debug("request served",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", recorder.status),
			zap.Duration("duration", time.Since(start)))
	})
}

func (s *Server) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				s.log.Error("panic while serving request",
					zap.Any("panic", err),
					zap.ByteString("stack", debug.Stack()))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				if _, wErr := w.Write([]byte(`{"error":"internal server error"}`)); wErr != nil {
					s.log.Warn("failed to write error response", zap.Error(wErr))
				}
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
