package rest

import (
	"net/http"
	"time"

	"kopimas-be/internal/catalog"
	"kopimas-be/internal/logger"
	"kopimas-be/internal/middleware"
	"kopimas-be/internal/order"
	"kopimas-be/internal/report"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// NewRouter assembles the full HTTP surface: /health plus the /api tree.
func NewRouter(catalogSvc catalog.Service, orderSvc order.Service, reportSvc report.Service, env string) http.Handler {
	r := chi.NewRouter()

	r.Use(logger.RequestIDMiddleware)
	r.Use(middleware.LoggingMiddleware)
	r.Use(recoverMiddleware)
	r.Use(middleware.CORS)
	r.Use(middleware.RateLimitMiddleware)

	r.Get("/health", healthHandler(env))

	r.Route("/api", func(api chi.Router) {
		api.Mount("/products", NewProductHandler(catalogSvc).Routes())
		api.Mount("/orders", NewOrderHandler(orderSvc).Routes())
		api.Mount("/dashboard", NewDashboardHandler(reportSvc).Routes())

		api.NotFound(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusNotFound, struct {
				Error   string `json:"error"`
				Message string `json:"message"`
			}{
				Error:   "not found",
				Message: "unknown API route: " + r.URL.Path,
			})
		})
	})

	return r
}

func healthHandler(env string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, struct {
			Status      string    `json:"status"`
			Timestamp   time.Time `json:"timestamp"`
			Environment string    `json:"environment"`
		}{
			Status:      "ok",
			Timestamp:   time.Now(),
			Environment: env,
		})
	}
}

func recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.FromCtx(r.Context()).Error("panic recovered",
					zap.Any("panic", rec),
					zap.String("path", r.URL.Path),
				)
				writeError(w, http.StatusInternalServerError, genericErrorMessage)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
