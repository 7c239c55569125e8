package httpapi

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/wormkeeper/internal/filex"
)

// statusRecorder tracks whether a response has been started, so the recovery
// middleware never writes a second head and the logger knows the final status.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(status int) {
	if r.wroteHeader {
		return
	}
	r.wroteHeader = true
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if !r.wroteHeader {
		r.WriteHeader(http.StatusOK)
	}
	return r.ResponseWriter.Write(b)
}

// withRequestLog assigns each request an id and logs method, path, status and
// duration.
func (s *Server) withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		log := s.logger.With("request_id", uuid.NewString())

		start := time.Now()
		next.ServeHTTP(rec, r)

		log.Info(r.Context(), "request served",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start).String(),
		)
	})
}

// withCORS applies the permissive development-posture headers to every
// response and short-circuits preflight before any routing or storage access.
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRecovery is the outer backstop: whatever a handler panics with, the
// client still gets exactly one 500 response and the server keeps serving.
func (s *Server) withRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			p := recover()
			if p == nil {
				return
			}
			if p == http.ErrAbortHandler {
				panic(p)
			}
			s.logger.Error(r.Context(), "panic while serving request",
				"method", r.Method, "path", r.URL.Path, "panic", p)
			if rec, ok := w.(*statusRecorder); !ok || !rec.wroteHeader {
				writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "Internal server error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// withStorageDirs makes sure both record directories exist before the
// handlers run. Failures are logged but do not block the request: health must
// stay up regardless of storage state, and storage-touching handlers fail
// with their own 500s.
func (s *Server) withStorageDirs(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := filex.EnsureDir(s.usersDir); err != nil {
			s.logger.Warn(r.Context(), "live records dir unavailable", "dir", s.usersDir, "error", err.Error())
		}
		if err := filex.EnsureDir(s.backupDir); err != nil {
			s.logger.Warn(r.Context(), "backup dir unavailable", "dir", s.backupDir, "error", err.Error())
		}
		next.ServeHTTP(w, r)
	})
}
