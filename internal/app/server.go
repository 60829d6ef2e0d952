// internal/app/server.go
package app

import (
	"context"
	"fmt"
	"log"

	"dossier-service/internal/config"
	"dossier-service/internal/database"
	"dossier-service/internal/db"
	appointmentHandler "dossier-service/internal/handlers/appointment"
	counterHandler "dossier-service/internal/handlers/counters"
	dossierHandler "dossier-service/internal/handlers/dossier"
	statsHandler "dossier-service/internal/handlers/stats"
	"dossier-service/internal/middleware"
	"dossier-service/internal/pkg/jwt"
	"dossier-service/internal/pkg/ratelimit"
	"dossier-service/internal/repository/postgres"
	appointmentUsecase "dossier-service/internal/service/appointment"
	countersUsecase "dossier-service/internal/service/counters"
	dossierUsecase "dossier-service/internal/service/dossier"
	statsUsecase "dossier-service/internal/service/stats"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	cfg    config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
}

func NewServer() *Server {
	cfg := config.Load()
	engine := gin.New()
	return &Server{cfg: cfg, engine: engine}
}

func (s *Server) Start() error {
	ctx := context.Background()

	// ----- Logger -----
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync()
	s.logger = logger

	// ----- Migrations -----
	if s.cfg.RunMigrations {
		if err := database.MigrateUp(s.cfg.DatabaseURL, logger); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	// ----- PostgreSQL -----
	pool, err := db.NewPostgresPool(ctx, s.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	// ----- Redis -----
	redisClient, err := db.NewRedisClient(s.cfg.RedisAddr, s.cfg.RedisPass)
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	log.Println("[REDIS] connected successfully")

	// ----- JWT Verifier -----
	verifier, err := jwt.LoadVerifier(s.cfg.JWT)
	if err != nil {
		return fmt.Errorf("failed to load JWT verifier: %w", err)
	}

	// ----- Rate Limiter -----
	limiter := ratelimit.NewLimiter(redisClient)

	// ----- Repositories -----
	dossierRepo := postgres.NewDossierRepository(pool)
	appointmentRepo := postgres.NewAppointmentRepository(pool)
	counterRepo := postgres.NewCounterRepository(pool)
	snapshotRepo := postgres.NewSnapshotRepository(pool)

	// ----- Services -----
	dossierService := dossierUsecase.NewService(dossierRepo, counterRepo, logger)
	appointmentService := appointmentUsecase.NewService(appointmentRepo, dossierRepo, counterRepo, logger)
	counterService := countersUsecase.NewService(counterRepo, logger)
	statsService := statsUsecase.NewService(snapshotRepo, counterRepo, dossierRepo, logger)

	// ----- Handlers -----
	dossierHandlerInst := dossierHandler.NewDossierHandler(dossierService)
	appointmentHandlerInst := appointmentHandler.NewAppointmentHandler(appointmentService)
	counterHandlerInst := counterHandler.NewCounterHandler(counterService)
	statsHandlerInst := statsHandler.NewStatsHandler(statsService)

	// ----- Middlewares -----
	authMiddleware := middleware.NewAuthMiddleware(verifier)

	s.engine.Use(
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger),
		middleware.CORSMiddleware(),
	)

	// ----- Router -----
	handlers := &Handlers{
		DossierHandler:     dossierHandlerInst,
		AppointmentHandler: appointmentHandlerInst,
		CounterHandler:     counterHandlerInst,
		StatsHandler:       statsHandlerInst,
		AuthMiddleware:     authMiddleware,
		RateLimit:          middleware.RateLimitMiddleware(limiter, int64(s.cfg.RateLimitMax), s.cfg.RateLimitWindow, logger),
	}
	SetupRouter(s.engine, logger, handlers)

	// ----- Start HTTP -----
	log.Printf("server running on %s", s.cfg.HTTPAddr)
	return s.engine.Run(s.cfg.HTTPAddr)
}
