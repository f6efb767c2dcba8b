// Package server assembles the chi router and the http.Server around it.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/taskeeper/internal/di"
	"github.com/BuzzLyutic/taskeeper/internal/handler"
	"github.com/BuzzLyutic/taskeeper/internal/metrics"
	"github.com/BuzzLyutic/taskeeper/internal/repo"
	"github.com/BuzzLyutic/taskeeper/pkg/respond"
)

type Options struct {
	Env      string
	Logger   *zap.Logger
	Bindings di.Bindings
	Metrics  *metrics.Metrics
	// Repo is passed to every per-request repository, e.g. to pin the clock.
	Repo     []repo.Option
}

func NewRouter(opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	m := opts.Metrics
	if m == nil {
		m = metrics.New()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"Location"},
		MaxAge:         300,
	}))
	r.Use(m.Middleware)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, r, http.StatusOK, map[string]string{
			"message": "Hello from Taskeeper API!",
			"env":     opts.Env,
		})
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", m.Handler())

	tasks := handler.NewTaskHandler(logger)
	r.Route("/tasks", func(r chi.Router) {
		r.Use(di.Middleware(opts.Bindings, logger, opts.Repo...))
		r.Get("/", tasks.List)
		r.Post("/", tasks.Create)
		r.Get("/{id}", tasks.Get)
		r.Patch("/{id}", tasks.Update)
		r.Delete("/{id}", tasks.Delete)
	})

	return r
}

func New(port string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:         ":" + port,
		Handler:      h,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
}
