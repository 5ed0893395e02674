package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/user/roleta-service/internal/delivery/http/handler"
	"github.com/user/roleta-service/internal/delivery/http/middleware"
)

// RequestTimeout bounds a request; it sits above the 50s list fetch timeout.
const RequestTimeout = 60 * time.Second

func New(h *handler.Handler, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Metrics)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(RequestTimeout))

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.HandleHealthCheck)
		r.Post("/roleta", h.HandleSpin)
		r.Get("/festim", h.HandleFestim)
		r.Get("/lists/{category}", h.HandleGetList)
	})

	return r
}
