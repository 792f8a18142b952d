package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/tetraeducacao/leadtracker/internal/infra/http/handlers"
	mw "github.com/tetraeducacao/leadtracker/internal/infra/http/middleware"
)

type Handlers struct {
	Page    *handlers.PageHandler
	Search  *handlers.SearchHandler
	History *handlers.HistoryHandler
	Health  *handlers.HealthHandler
}

type Options struct {
	AllowedOrigins []string
	RateLimiter    *mw.RateLimiter
	// RequestTimeout deve cobrir o timeout do webhook.
	RequestTimeout time.Duration
	Logger         logrus.FieldLogger
}

func New(h Handlers, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.RequestLogger(opts.Logger))
	r.Use(middleware.Recoverer)
	r.Use(mw.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/health", h.Health.Handle)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		if opts.RequestTimeout > 0 {
			r.Use(middleware.Timeout(opts.RequestTimeout))
		}

		r.Get("/", h.Page.Index)
		r.Post("/nova-busca", h.Page.Reset)
		r.Get("/api/consultas", h.History.Handle)

		// Só as rotas que chamam o webhook passam pelo limite por IP.
		// O formulário recusado volta para a tela com o alerta de erro.
		r.Group(func(r chi.Router) {
			if opts.RateLimiter != nil {
				r.Use(opts.RateLimiter.Limit(http.HandlerFunc(h.Page.Throttled)))
			}
			r.Post("/buscar", h.Page.Search)
		})
		r.Group(func(r chi.Router) {
			if opts.RateLimiter != nil {
				r.Use(opts.RateLimiter.Middleware)
			}
			r.Post("/api/leads/search", h.Search.Handle)
		})
	})

	return r
}
