package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/lankamarket/lankamarket-api/internal/auth"
	"github.com/lankamarket/lankamarket-api/internal/catalog"
	"github.com/lankamarket/lankamarket-api/internal/config"
	"github.com/lankamarket/lankamarket-api/internal/httputil"
	"github.com/lankamarket/lankamarket-api/internal/listing"
	"github.com/lankamarket/lankamarket-api/internal/logging"
	"github.com/lankamarket/lankamarket-api/internal/metrics"
	"github.com/lankamarket/lankamarket-api/internal/user"
)

// Handlers groups everything the router mounts
type Handlers struct {
	Auth           *auth.Handler
	AuthMiddleware *auth.Middleware
	Catalog        *catalog.Handler
	Listings       *listing.Handler
	Users          *user.Handler
	Metrics        *metrics.Metrics
}

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, h Handlers, logger *logging.Logger) *chi.Mux {
	r := chi.NewRouter()

	// CORS - must be first
	if len(cfg.Server.TrustedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.Server.TrustedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           300, // 5 minutes
		}))
	}

	// Global middleware
	r.Use(SecurityHeaders(!cfg.Server.IsDevelopment()))
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	if cfg.Server.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(logging.RequestLogger(logger))
	r.Use(h.Metrics.Middleware)
	r.Use(middleware.Compress(5))
	r.Use(LimitBody)

	r.Get("/health", handleHealth)
	r.Method(http.MethodGet, "/metrics", h.Metrics.Handler())

	// Swagger UI - only in development
	if cfg.Server.IsDevelopment() {
		logger.Info("swagger UI enabled at /swagger/*")
		r.Get("/swagger/*", httpSwagger.WrapHandler)
	}

	r.Get("/categories", h.Catalog.ListCategories)
	r.Get("/categories/type/{type}", h.Catalog.ListCategoriesByType)
	r.Get("/users", h.Users.List)

	// Browsing works anonymously; a valid session is attached when present
	r.Group(func(r chi.Router) {
		r.Use(h.AuthMiddleware.OptionalAuth)
		r.Get("/products", h.Catalog.ListProducts)
		r.Get("/products/{id}", h.Catalog.GetProduct)
		r.Get("/services", h.Catalog.ListServices)
		r.Get("/services/{id}", h.Catalog.GetService)
		r.Get("/listings", h.Listings.List)
	})

	r.Route("/customers", func(r chi.Router) {
		r.Use(NoStore)
		r.Post("/register", h.Auth.Register)
		r.Post("/login", h.Auth.Login)
		r.Post("/logout", h.Auth.Logout)
		r.With(h.AuthMiddleware.RequireAuth).Get("/me", h.Auth.Me)
	})

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(h.AuthMiddleware.RequireAuth)
		r.Post("/products", h.Catalog.CreateProduct)
	})

	return r
}

// handleHealth is a simple health check endpoint
// @Summary      Health check
// @Description  Check if the API is running
// @Tags         health
// @Produce      json
// @Success      200 {object} map[string]string
// @Router       /health [get]
func handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, map[string]string{"status": "api is running"}, http.StatusOK)
}
