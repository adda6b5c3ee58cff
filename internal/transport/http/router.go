package http

import (
	"net/http"
	"time"

	"brainchild-quiz-service/internal/app"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter mounts the REST play API, the WebSocket endpoint and health check.
func NewRouter(service *app.PlayService, auth *PlayerAuth, allowedOrigins []string) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		ExposedHeaders: []string{"Content-Length"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	plays := NewPlayHandlers(service)
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))
		r.Use(auth.Middleware)
		r.Route("/quizzes/{quizID}/play", func(r chi.Router) {
			r.Post("/", plays.Start)
			r.Get("/current", plays.Current)
			r.Post("/answers", plays.Answer)
			r.Post("/finish", plays.Finish)
			r.Delete("/", plays.Abandon)
		})
		r.Get("/results/{resultID}", plays.Result)
	})

	// Long-lived connections stay outside the request timeout.
	ws := NewWSHandler(service)
	r.With(auth.Middleware).Get("/ws", ws.ServeWS)
	return r
}
