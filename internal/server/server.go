package server

import (
	"fmt"
	"net/http"
	"time"

	"aura-hype/internal/config"
	"aura-hype/internal/database"
	"aura-hype/internal/images"
	"aura-hype/internal/metrics"
	custommiddleware "aura-hype/internal/middleware"
	"aura-hype/internal/repository"
	"aura-hype/internal/service"
	"aura-hype/internal/storage"
	"aura-hype/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Dependencies are the process-wide resources built once in main
type Dependencies struct {
	DB       database.Service
	Redis    *redis.Client   // nil disables rate limiting
	Storage  storage.Backend // nil when no backend could be configured
	Registry *prometheus.Registry
}

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	deps   Dependencies
}

func NewServer(cfg *config.Config, logger *zap.Logger, deps Dependencies) *Server {
	return &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      NewRouter(cfg, logger, deps),
			IdleTimeout:  time.Minute,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: time.Minute,
		},
		config: cfg,
		logger: logger,
		deps:   deps,
	}
}

// NewRouter wires middleware, handlers and their services
func NewRouter(cfg *config.Config, logger *zap.Logger, deps Dependencies) http.Handler {
	router := chi.NewRouter()

	for _, mw := range custommiddleware.DefaultMiddlewareStack() {
		router.Use(mw)
	}
	router.Use(custommiddleware.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.Server.IsDevelopment()))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))

	registry := deps.Registry
	if registry == nil {
		registry = metrics.NewRegistry()
	}
	m := metrics.New(registry)
	router.Use(m.Middleware)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		health := map[string]interface{}{"status": "ok"}

		if deps.DB != nil {
			dbHealth := deps.DB.Health()
			health["database"] = dbHealth
			if dbHealth["status"] != "up" {
				status = http.StatusServiceUnavailable
				health["status"] = "degraded"
			}
		}

		storageStatus := "unavailable"
		if deps.Storage != nil {
			storageStatus = deps.Storage.Name()
		}
		health["storage"] = storageStatus

		custommiddleware.RespondWithJSON(w, status, health)
	})
	router.Method(http.MethodGet, "/metrics", metrics.Handler(registry))

	// Generated keys resolve to /uploads/<key> in local development
	if local, ok := deps.Storage.(*storage.LocalBackend); ok && cfg.Storage.LocalDev {
		router.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(local.Root()))))
	}

	urls := images.URLResolver{
		PublicBaseURL: cfg.Storage.PublicURL,
		LocalDev:      cfg.Storage.LocalDev,
	}

	imageService := service.NewImageService(deps.Storage, urls, m, logger)
	imageHandler := transport.NewImageHandler(imageService, cfg.Storage.MaxUpload, logger)

	limiter := mutationLimiter(cfg, deps.Redis, logger)
	imageHandler.RegisterRoutes(router, limiter)

	// The catalog needs the database; without it only images and health are served
	if deps.DB == nil {
		logger.Warn("No database configured, catalog routes disabled")
		return router
	}

	productRepo := repository.NewProductRepository(deps.DB.DB())
	catalogService := service.NewCatalogService(productRepo, urls, logger)
	productHandler := transport.NewProductHandler(catalogService, logger)
	productHandler.RegisterRoutes(router, limiter)

	return router
}

func mutationLimiter(cfg *config.Config, redisClient *redis.Client, logger *zap.Logger) func(http.Handler) http.Handler {
	if !cfg.RateLimit.Enabled || redisClient == nil {
		return func(next http.Handler) http.Handler { return next }
	}

	return custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
		RequestsPerWindow: cfg.RateLimit.RequestsPerWindow,
		Window:            cfg.RateLimit.Window,
		KeyPrefix:         "ratelimit:mutations",
		Methods:           []string{http.MethodPost, http.MethodPut, http.MethodDelete},
	}, logger)
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.deps.Redis != nil {
		if err := s.deps.Redis.Close(); err != nil {
			s.logger.Error("Failed to close redis client", zap.Error(err))
		}
	}

	// Close database connection
	if s.deps.DB != nil {
		if err := s.deps.DB.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	_ = s.logger.Sync()
	return nil
}
