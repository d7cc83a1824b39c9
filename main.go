// File: medibook/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"medibook/config"
	"medibook/cron"
	"medibook/database"
	doctorRepoPkg "medibook/database/repository/doctor"
	scheduleRepoPkg "medibook/database/repository/schedule"
	"medibook/handlers"
	"medibook/routes"
	"medibook/services/booking"
	"medibook/services/conversation"
	"medibook/services/intent"
	"medibook/services/schedule"
	"medibook/services/search"
	"medibook/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	// Repositories: Mongo-backed when DATABASE_URL is set, otherwise an
	// in-memory demo directory seeded around Pune.
	var doctorRepo doctorRepoPkg.DoctorRepository
	var scheduleRepo scheduleRepoPkg.ScheduleRepository
	if config.AppConfig.DatabaseURL != "" {
		if err := database.InitDB(); err != nil {
			logger.Sugar().Fatalf("main: %v", err)
		}
		doctorRepo = doctorRepoPkg.NewMongoDoctorRepo()
		scheduleRepo = scheduleRepoPkg.NewMongoScheduleRepo()
	} else {
		logger.Sugar().Info("main: no DATABASE_URL, running with seeded in-memory repositories")
		doctors := doctorRepoPkg.SeedDoctors(60, 18.5204, 73.8567)
		doctorRepo = doctorRepoPkg.NewMemoryDoctorRepo(doctors)
		ids := make([]string, 0, len(doctors))
		for _, d := range doctors {
			ids = append(ids, d.ID)
		}
		scheduleRepo = scheduleRepoPkg.NewMemoryScheduleRepo(scheduleRepoPkg.SeedSlots(ids, time.Now()))
	}

	utils.InitSessionCache()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())

	// services.
	searchService := &search.DefaultRankingService{
		DoctorRepo:   doctorRepo,
		ScheduleRepo: scheduleRepo,
		PageSize:     config.AppConfig.SearchPageSize,
	}
	viewer := &schedule.DefaultViewer{
		DoctorRepo:   doctorRepo,
		ScheduleRepo: scheduleRepo,
	}

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisHoldQueueDB,
	})
	defer asynqClient.Close()

	bookingManager := &booking.DefaultManager{
		ScheduleRepo: scheduleRepo,
		Queue:        asynqClient,
		HoldTTL:      time.Duration(config.AppConfig.HoldTTLMins) * time.Minute,
	}
	cron.InitHoldExpiryWorker(bookingManager)

	var primary intent.Classifier
	if config.AppConfig.GeminiAPIKey != "" {
		gemini, err := intent.NewGeminiClassifier(
			config.AppConfig.GeminiAPIKey,
			time.Duration(config.AppConfig.ClassifierTimeoutSecs)*time.Second,
		)
		if err != nil {
			logger.Sugar().Warnf("main: Gemini classifier unavailable, keyword rules only: %v", err)
		} else {
			primary = gemini
		}
	} else {
		logger.Sugar().Info("main: no GEMINI_API_KEY, keyword rules only")
	}
	classifier := intent.NewPolicyClassifier(primary, config.AppConfig.ClassifierMinConfidence)

	sessionStore := conversation.NewRedisSessionStore(
		utils.GetSessionCacheClient(),
		time.Duration(config.AppConfig.SessionIdleTTLMins)*time.Minute,
	)
	conversationService := conversation.NewDefaultService(
		sessionStore,
		classifier,
		searchService,
		viewer,
		bookingManager,
		doctorRepo,
		config.AppConfig.RepoRetryAttempts,
	)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		ChatHandler:         handlers.ChatHandler(conversationService),
		ResetSessionHandler: handlers.ResetSessionHandler(conversationService),

		SpecialtiesHandler:    handlers.SpecialtiesHandler(),
		GetDoctorHandler:      handlers.GetDoctorHandler(doctorRepo),
		DoctorScheduleHandler: handlers.DoctorScheduleHandler(viewer),
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}
	if err := database.CloseDB(ctx); err != nil {
		logger.Sugar().Warnf("main: database disconnect: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
