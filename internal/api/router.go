package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/shopspring/decimal"

	"github.com/comigor/creatorvault/internal/session"
	"github.com/comigor/creatorvault/internal/vault"
)

// Registry is the asset vault as used by the API.
type Registry interface {
	ListAssets(ctx context.Context) ([]vault.Asset, error)
	GetAsset(ctx context.Context, id string) (vault.Asset, error)
	Revenue(ctx context.Context) ([]vault.RevenuePoint, error)
}

type Summarizer interface {
	Summarize(ctx context.Context, source string) (string, error)
}

type Forecaster interface {
	Next(ctx context.Context, history []vault.RevenuePoint) ([]decimal.Decimal, error)
}

// RouterDependencies holds everything the handlers need.
type RouterDependencies struct {
	Registry       Registry
	Sessions       *session.Manager
	Summarizer     Summarizer
	Forecaster     Forecaster
	AllowedOrigins []string
}

// NewRouter creates and configures the chi router for the API.
func NewRouter(deps RouterDependencies) *chi.Mux {
	h := &handlers{deps: deps}
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: deps.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Requested-With"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Route("/v1", func(r chi.Router) {
		r.Route("/assets", func(r chi.Router) {
			r.Get("/", h.listAssets)
			r.Get("/{assetID}", h.getAsset)
		})

		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/revenue", h.revenue)
			r.Post("/forecast", h.forecast)
		})

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", h.startSession)
			r.Route("/{sessionID}", func(r chi.Router) {
				r.Get("/", h.getSession)
				r.Delete("/", h.endSession)
				r.Post("/messages", h.postMessage)
				r.Post("/reconnect", h.reconnect)
			})
		})

		r.Route("/contracts", func(r chi.Router) {
			r.Get("/sample", h.contractSample)
			// summaries can take a while upstream
			r.With(middleware.Timeout(2*time.Minute)).Post("/summarize", h.summarize)
		})
	})

	return r
}
