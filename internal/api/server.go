package api

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"university-form-agent/internal/api/middleware"
	"university-form-agent/internal/endpoint"
	"university-form-agent/internal/pkg/response"
)

const maxBodyBytes = 1 << 20

// SetupRouter creates and configures the HTTP router. requestTimeout bounds
// each request and should exceed the model call timeout.
func SetupRouter(e *endpoint.Endpoints, logger *zap.Logger, requestTimeout time.Duration) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS)
	r.Use(chimiddleware.Timeout(requestTimeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, http.StatusOK, endpoint.Health)
	})
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(endpoint.LandingPage)
	})

	r.Post("/chat", serve(e.Chat))
	r.Post("/generate", serve(e.Generate))

	return r
}

func serve(fn func(ctx context.Context, body []byte) endpoint.Reply) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			ctxzap.Info(r.Context(), "read request body", zap.Error(err))
			body = nil
		}
		reply := fn(r.Context(), body)
		response.JSON(w, reply.Status, reply.Body)
	}
}
