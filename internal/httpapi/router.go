package httpapi

import (
	"net/http"
	"time"

	"github.com/fekuna/omnipos-ledger-service/pkg/logger"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Registrar is implemented by every domain HTTP handler.
type Registrar interface {
	Register(r *mux.Router)
}

// NewRouter mounts the handlers under /api/v1 and adds request logging and panic recovery.
func NewRouter(log logger.ZapLogger, handlers ...Registrar) *mux.Router {
	root := mux.NewRouter()
	root.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	api := root.PathPrefix("/api/v1").Subrouter()
	api.Use(recoverer(log), requestLogger(log))
	for _, h := range handlers {
		h.Register(api)
	}
	return root
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func requestLogger(log logger.ZapLogger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			log.Debug("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Duration("took", time.Since(start)),
			)
		})
	}
}

func recoverer(log logger.ZapLogger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if v := recover(); v != nil {
					log.Error("panic in handler", zap.Any("panic", v), zap.String("path", r.URL.Path))
					JSON(w, http.StatusInternalServerError, ErrorBody{Error: "internal", Message: "internal error"})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
