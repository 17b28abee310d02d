package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/IANDYI/maternal-care-service/internal/adapters/handler"
	"github.com/IANDYI/maternal-care-service/internal/adapters/middleware"
	"github.com/IANDYI/maternal-care-service/internal/adapters/repository"
	"github.com/IANDYI/maternal-care-service/internal/config"
	"github.com/IANDYI/maternal-care-service/internal/core/domain"
	"github.com/IANDYI/maternal-care-service/internal/core/rules"
	"github.com/IANDYI/maternal-care-service/internal/core/services"
	"github.com/IANDYI/maternal-care-service/internal/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

const limiterSweepInterval = 5 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}
	log := logger.New(cfg.LogLevel, "maternal-care-service")

	db, err := config.ConnectDatabase(cfg.DatabaseURL, cfg.DBConnectRetries, cfg.DBConnectDelay, log)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer db.Close()

	if cfg.RunMigrations {
		migrateCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
		err := config.RunMigrations(migrateCtx, db)
		cancel()
		if err != nil {
			log.WithError(err).Fatal("failed to run migrations")
		}
	}

	publisher, err := repository.NewRabbitMQPublisher(cfg.RabbitMQURL, cfg.AlertsQueueName, log)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize RabbitMQ publisher")
	}
	defer publisher.Close()

	repoOpts := repository.DefaultOptions()
	repoOpts.MaxRequests = cfg.CircuitBreakerMaxRequests
	repoOpts.Interval = cfg.CircuitBreakerInterval
	repoOpts.Timeout = cfg.CircuitBreakerTimeout
	repoOpts.MaxRetries = cfg.RepositoryRetries
	sqlRepo := repository.NewSQLRepository(db, repoOpts)

	// One decision table serves the diet plan and the risk analysis
	engine := rules.NewEngine()

	symptomService := services.NewSymptomService(sqlRepo, publisher, engine, log)
	dietService := services.NewDietService(sqlRepo, engine, log)
	doctorService := services.NewDoctorService(sqlRepo)
	contactService := services.NewContactService(sqlRepo)
	familyAlertService := services.NewFamilyAlertService(sqlRepo, publisher, log)

	symptomHandler := handler.NewSymptomHandler(symptomService, log)
	dietHandler := handler.NewDietHandler(dietService, log)
	directoryHandler := handler.NewDirectoryHandler(doctorService, log)
	contactHandler := handler.NewContactHandler(contactService, log)
	alertHandler := handler.NewAlertHandler(familyAlertService, log)
	healthHandler := handler.NewHealthHandler(db, log)

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWTPublicKey, log)
	defer authMiddleware.Stop()
	analyzeLimiter := middleware.NewRateLimiter(cfg.AnalyzeRatePerMinute, cfg.AnalyzeBurst, log)

	mux := http.NewServeMux()

	// Health endpoints (OpenShift compatible, no auth required)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.HandleFunc("GET /health/ready", healthHandler.Ready)
	mux.HandleFunc("GET /health/live", healthHandler.Live)

	// Risk analysis - anonymous, rate limited per client
	mux.HandleFunc("POST /analyze-symptoms", analyzeLimiter.Limit(symptomHandler.Analyze))

	// Symptom tracker - PATIENT submits, ADMIN may read any history
	mux.HandleFunc("POST /symptoms", authMiddleware.RequireRole(domain.RolePatient, symptomHandler.Submit))
	mux.HandleFunc("GET /symptoms", authMiddleware.RequireAuth(symptomHandler.List))
	mux.HandleFunc("GET /symptoms/latest", authMiddleware.RequireAuth(symptomHandler.Latest))

	// Diet plan - PATIENT only
	mux.HandleFunc("GET /diet-plan/personalized", authMiddleware.RequireRole(domain.RolePatient, dietHandler.Personalized))

	// Reference data - any authenticated user
	mux.HandleFunc("GET /doctors", authMiddleware.RequireAuth(directoryHandler.SearchDoctors))
	mux.HandleFunc("GET /ultrasound/milestones", authMiddleware.RequireAuth(directoryHandler.Milestones))

	// Emergency contacts and family alerts - PATIENT, own data only
	mux.HandleFunc("POST /contacts", authMiddleware.RequireRole(domain.RolePatient, contactHandler.Create))
	mux.HandleFunc("GET /contacts", authMiddleware.RequireRole(domain.RolePatient, contactHandler.List))
	mux.HandleFunc("DELETE /contacts/{contact_id}", authMiddleware.RequireRole(domain.RolePatient, contactHandler.Delete))
	mux.HandleFunc("GET /alerts/templates", authMiddleware.RequireAuth(alertHandler.Templates))
	mux.HandleFunc("POST /alerts", authMiddleware.RequireRole(domain.RolePatient, alertHandler.Send))

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      middleware.MetricsMiddleware(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go sweepLimiter(ctx, analyzeLimiter, log)

	go func() {
		log.WithField("port", cfg.Port).Info("starting maternal care service")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("server failed")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server forced to shutdown")
		os.Exit(1)
	}

	log.Info("server exited")
}

func sweepLimiter(ctx context.Context, limiter *middleware.RateLimiter, log *logrus.Logger) {
	ticker := time.NewTicker(limiterSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := limiter.Sweep(); removed > 0 {
				log.WithField("removed", removed).Debug("rate limiter sweep")
			}
		}
	}
}
