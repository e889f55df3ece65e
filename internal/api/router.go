package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"whisper-gateway/internal/api/handlers"
	"whisper-gateway/internal/api/middleware"
	"whisper-gateway/internal/jobs"
	"whisper-gateway/internal/webhook"
	"whisper-gateway/internal/whisper"
)

type Router struct {
	mux      *chi.Mux
	engine   whisper.Transcriber
	runner   *jobs.Runner
	notifier *webhook.Notifier
}

func NewRouter(engine whisper.Transcriber, runner *jobs.Runner, notifier *webhook.Notifier) *Router {
	return &Router{
		mux:      chi.NewRouter(),
		engine:   engine,
		runner:   runner,
		notifier: notifier,
	}
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))

	rl := middleware.NewRateLimiter(100, 200)
	r.Use(rl.Limit)

	health := handlers.NewHealthHandler(rt.engine, rt.runner)
	r.Get("/", health.Root)
	r.Get("/health", health.Health)

	transcribe := handlers.NewTranscribeHandler(rt.engine, rt.runner, rt.notifier)
	r.Post("/transcribe", transcribe.Transcribe)

	return r
}
