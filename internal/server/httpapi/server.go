// Package httpapi exposes the record store over HTTP: health, register,
// login, save and the backup/restore pair, JSON in and out.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/dmitrijs2005/wormkeeper/internal/logging"
	"github.com/dmitrijs2005/wormkeeper/internal/server/backup"
	"github.com/dmitrijs2005/wormkeeper/internal/server/config"
	"github.com/dmitrijs2005/wormkeeper/internal/server/users"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	address   string
	usersDir  string
	backupDir string
	logger    logging.Logger
	handlers  *Handlers
}

func NewServer(cfg *config.Config, l logging.Logger, us *users.Service, bs *backup.Service) *Server {
	s := &Server{
		address:   cfg.EndpointAddr,
		usersDir:  cfg.UsersDir,
		backupDir: cfg.BackupDir,
		logger:    l.With("module", "http_server"),
	}
	s.handlers = NewHandlers(us, bs, l, cfg.MaxBodyBytes, cfg.DebugResponses)
	return s
}

// Handler builds the full middleware/router chain.
func (s *Server) Handler() http.Handler {
	h := s.handlers

	r := mux.NewRouter()
	r.HandleFunc("/api/health", h.Health).Methods(http.MethodGet)
	r.HandleFunc("/api/register", h.Register).Methods(http.MethodPost)
	r.HandleFunc("/api/login", h.Login).Methods(http.MethodPost)
	r.HandleFunc("/api/save", h.Save).Methods(http.MethodPost)
	r.HandleFunc("/api/backup", h.Backup).Methods(http.MethodPost)
	r.HandleFunc("/api/restore", h.Restore).Methods(http.MethodPost)

	// anything unmatched, wrong method included, is a JSON 404
	r.NotFoundHandler = http.HandlerFunc(h.NotFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(h.NotFound)

	var handler http.Handler = r
	handler = s.withStorageDirs(handler)
	handler = s.withRecovery(handler)
	handler = s.withCORS(handler)
	handler = s.withRequestLog(handler)
	return handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {

	srv := &http.Server{
		Addr:    s.address,
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err.Error())
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
