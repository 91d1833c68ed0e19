package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MrJamesThe3rd/titledeed/internal/http/application"
	"github.com/MrJamesThe3rd/titledeed/internal/http/auth"
	"github.com/MrJamesThe3rd/titledeed/internal/http/cadastre"
	"github.com/MrJamesThe3rd/titledeed/internal/http/events"
	"github.com/MrJamesThe3rd/titledeed/internal/http/ledger"
	"github.com/MrJamesThe3rd/titledeed/internal/http/property"
	"github.com/MrJamesThe3rd/titledeed/internal/http/review"
	"github.com/MrJamesThe3rd/titledeed/internal/http/transaction"
)

type Options struct {
	JWTSecret      string
	JWTIssuer      string
	AllowedOrigins []string
	Metrics        prometheus.Gatherer
}

type Handlers struct {
	Transactions *transaction.Handler
	Properties   *property.Handler
	Applications *application.Handler
	Cadastre     *cadastre.Handler
	Review       *review.Handler
	Ledger       *ledger.Handler
	Events       *events.Handler
}

func New(opts Options, h Handlers) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", auth.RoleHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	if opts.Metrics != nil {
		router.Handle("/metrics", promhttp.HandlerFor(opts.Metrics, promhttp.HandlerOpts{}))
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.Middleware(opts.JWTSecret, opts.JWTIssuer))

		r.Route("/transactions", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Transactions.Routes(r)
		})

		r.Route("/properties", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Properties.Routes(r)
		})

		r.Route("/applications", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Applications.Routes(r)
		})

		r.Route("/cadastre", h.Cadastre.Routes)
		r.Route("/review", h.Review.Routes)
		r.Route("/ledger", h.Ledger.Routes)
		r.Route("/events", h.Events.Routes)
	})

	return router
}
