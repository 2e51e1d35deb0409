package handle

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// NewRouter mounts the API under /api/v1. Routes are registered with and
// without the trailing slash so older clients keep working.
func NewRouter(h *Handle, log *zap.Logger) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(accessLog(log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(h.timeout + 10*time.Second))

	r.Get("/healthz", h.Healthz)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/healthz", h.Healthz)
		post(r, "/upload-resume", h.UploadResume)
		post(r, "/generate-questions", h.GenerateQuestions)
		post(r, "/update-question", h.UpdateQuestion)
		post(r, "/normalize", h.Normalize)
		post(r, "/save-script", h.SaveScript)
		r.Get("/get-script/{id}", h.GetScript)
	})
	return r
}

func post(r chi.Router, pattern string, fn http.HandlerFunc) {
	r.Post(pattern, fn)
	r.Post(pattern+"/", fn)
}

func accessLog(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				log.Info("http request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
					zap.String("request_id", middleware.GetReqID(r.Context())),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
