package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/gaowanliang/TG-Gallery/internal/api/middleware"
	"github.com/gaowanliang/TG-Gallery/internal/auth"
	"github.com/gaowanliang/TG-Gallery/internal/config"
	"github.com/gaowanliang/TG-Gallery/internal/gallery"
	"github.com/gaowanliang/TG-Gallery/internal/handlers"
	"github.com/gaowanliang/TG-Gallery/internal/resolver"
	"github.com/gaowanliang/TG-Gallery/internal/store"
)

// NewRouter creates and configures the HTTP router. redisStore may be nil;
// rate limiting is disabled without it.
func NewRouter(logger zerolog.Logger, cfg *config.Config, dataStore store.DataStore, redisStore *store.RedisStore) *chi.Mux {
	r := chi.NewRouter()

	// Unmatched routes and methods answer with the same JSON envelope as
	// every other error in the API.
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		jsonError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		jsonError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	// Metrics middleware (first to capture all requests)
	r.Use(middleware.Metrics)

	// Security middleware (order matters!)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.MaxBodySize(8 * 1024)) // 8KB max body
	r.Use(middleware.ValidateRequest)

	// Standard middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(chimw.Recoverer)

	// Rate limiting
	if redisStore != nil {
		limiter := middleware.NewRateLimiter(redisStore.Client(), logger, cfg.RateLimitWhitelist)
		r.Use(limiter.Middleware)
	}

	// CORS - the gallery frontend is served from arbitrary origins
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Wire the core components
	engine := gallery.NewEngine(dataStore)
	providers := []resolver.Provider{
		{Name: "telegram", BaseURL: cfg.TelegramAPIURL},
		{Name: "mirror", BaseURL: cfg.TelegramMirrorURL},
	}
	res := resolver.New(providers, dataStore, cfg.BotToken, logger)

	issuer := auth.NewTokenIssuer(cfg.JWTSecret)
	creds := auth.Credentials{
		User:     cfg.AdminUser,
		Pass:     cfg.AdminPass,
		PassHash: cfg.AdminPassHash,
	}
	turnstile := auth.NewTurnstileVerifier(cfg.TurnstileSecretKey, logger)

	h := handlers.NewHandler(engine, res, dataStore, redisStore, issuer, creds, turnstile)
	authGate := middleware.NewAuthMiddleware(issuer)

	// Metrics endpoint (for Prometheus scraping)
	r.Handle("/metrics", promhttp.Handler())

	// Public routes
	r.Get("/health", h.Health)
	r.Post("/api/login", h.Login)
	r.Get("/api/fileurl", h.FileURL)
	r.Get("/api/file", h.FileProxy)

	// Authenticated routes (require bearer token)
	r.Group(func(r chi.Router) {
		r.Use(authGate.RequireAuth)

		r.Get("/api/gallery", h.ListGallery)
		r.Delete("/api/gallery", h.DeleteGalleryItem)
	})

	return r
}

func jsonError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
