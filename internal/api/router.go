package api

import (
	"credit-engine/internal/api/handler"
	mw "credit-engine/internal/api/middleware"
	"credit-engine/internal/config"
	"credit-engine/internal/domain/customer"
	"credit-engine/internal/domain/loan"
	"log/slog"
	"net/http"
	"time"

	_ "credit-engine/docs"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/traceid"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// SetupRouter wires the public routes. rateLimiter may be nil, in which case
// requests are not throttled.
func SetupRouter(rateLimiter *mw.RateLimiterMiddleware, loanService loan.LoanService, customerService customer.CustomerService, cfg *config.Config, logger *slog.Logger) *chi.Mux {
	router := chi.NewRouter()

	setupMiddleware(router, rateLimiter, logger)
	setupMetricsEndpoint(router, cfg, logger)
	setupCustomerRoutes(router, customerService, logger)
	setupLoanRoutes(router, loanService, customerService, logger)
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	setupSwaggerEndpoint(router, logger)

	return router
}

func setupMiddleware(router *chi.Mux, rateLimiter *mw.RateLimiterMiddleware, logger *slog.Logger) {
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(traceid.Middleware)
	router.Use(mw.StructuredLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(middleware.Timeout(60 * time.Second))
	if rateLimiter != nil {
		router.Use(rateLimiter.Middleware)
	}
	router.Use(mw.MetricsMiddleware())
}

func setupMetricsEndpoint(router *chi.Mux, cfg *config.Config, logger *slog.Logger) {
	metricsPath := cfg.Metrics.Path
	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	logger.Info("Setting up Prometheus metrics endpoint", "path", metricsPath)
	router.Handle(metricsPath, promhttp.Handler())
}

func setupSwaggerEndpoint(router *chi.Mux, logger *slog.Logger) {
	logger.Info("Setting up Swagger UI endpoint", "path", "/swagger/")
	router.Get("/swagger/*", httpSwagger.WrapHandler)
	router.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/index.html", http.StatusMovedPermanently)
	})
}

func setupLoanRoutes(router *chi.Mux, loanService loan.LoanService, customerService customer.CustomerService, logger *slog.Logger) {
	loanHandler := handler.NewLoanHandler(loanService, customerService, logger)

	router.Post("/check-eligibility", loanHandler.CheckEligibility)
	router.Post("/create-loan", loanHandler.CreateLoan)
	router.Get("/view-loan/{loanID}", loanHandler.ViewLoan)
	router.Get("/view-loans/{customerID}", loanHandler.ViewCustomerLoans)
	router.Post("/make-payment/{customerID}/{loanID}", loanHandler.MakePayment)
	router.Get("/view-statement/{customerID}/{loanID}", loanHandler.ViewStatement)
}

func setupCustomerRoutes(r chi.Router, svc customer.CustomerService, logger *slog.Logger) {
	h := handler.NewCustomerHandler(svc, logger)

	r.Post("/register", h.RegisterCustomer)
	r.Get("/customers/{customerID}", h.GetCustomer)
}
