package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"crewbook/config"
	"crewbook/cron"
	"crewbook/database"
	bookingRepo "crewbook/database/repository/booking"
	participantRepo "crewbook/database/repository/participant"
	"crewbook/handlers"
	"crewbook/middleware"
	"crewbook/routes"
	"crewbook/services/booking"
	"crewbook/services/cache"
	"crewbook/services/events"
	"crewbook/services/notification"
	"crewbook/utils"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("main: %v", err)
	}
	logger, err := utils.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("main: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tokens, err := utils.NewTokenValidator(cfg.JWTSecret)
	if err != nil {
		logger.Fatal("main: JWT_SECRET must be set", zap.Error(err))
	}

	// Remote cache tier. An unreachable Redis is not fatal: the store serves from its
	// local tier until Redis answers again.
	cacheClient, err := utils.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisCacheDB, cfg.CacheRemoteTimeout, true)
	if err != nil {
		logger.Warn("main: Redis cache unreachable, starting degraded", zap.Error(err))
	}
	store := cache.New(cache.NewRedisTier(cacheClient), cache.Options{
		RemoteTimeout:   cfg.CacheRemoteTimeout,
		MaxLocalEntries: cfg.CacheLocalMaxEntries,
		SweepInterval:   cfg.CacheSweepInterval,
	}, logger)

	checks := map[string]utils.HealthCheck{
		"redis": func(ctx context.Context) error { return cacheClient.Ping(ctx).Err() },
	}

	// repositories.
	var (
		repo         bookingRepo.BookingRepository
		participants participantRepo.ParticipantRepository
	)
	switch cfg.BookingStore {
	case "memory":
		logger.Warn("main: using in-memory booking store; data is lost on restart")
		repo = bookingRepo.NewMemoryBookingRepo()
		participants = participantRepo.NewMemoryParticipantRepo()
	default:
		client, err := database.Connect(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			logger.Fatal("main: database unavailable", zap.Error(err))
		}
		defer func() {
			_ = client.Disconnect(context.Background())
		}()
		db := client.Database(cfg.DatabaseName)

		mongoRepo := bookingRepo.NewMongoBookingRepo(db)
		if err := mongoRepo.EnsureIndexes(ctx); err != nil {
			logger.Warn("main: failed to ensure booking indexes", zap.Error(err))
		}
		repo = mongoRepo
		participants = participantRepo.NewMongoParticipantRepo(db)
		checks["mongo"] = database.PingCheck(client)
	}

	// notifications: the bus subscribers enqueue, the worker delivers.
	redisOpts := asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisQueueDB,
	}
	queueClient := asynq.NewClient(redisOpts)
	defer queueClient.Close()
	inspector := asynq.NewInspector(redisOpts)
	defer inspector.Close()
	dispatcher := notification.NewQueueDispatcher(queueClient, inspector, logger)

	var push notification.PushSender = notification.NewLogSender(logger)
	if cfg.FirebaseCredentialsFile != "" {
		fcmClient, err := utils.NewFCMClient(ctx, cfg.FirebaseCredentialsFile)
		if err != nil {
			logger.Fatal("main: failed to initialize FCM", zap.Error(err))
		}
		push = notification.NewFCMSender(fcmClient, logger)
	}
	worker := cron.NewWorker(redisOpts, cfg.NotificationConcurrency, notification.NewDeliverer(participants, repo, push, logger), logger)
	worker.Start()

	// services.
	bus := events.NewBus(30*time.Second, logger)
	bookingService := booking.NewService(repo, participants, store, bus, booking.Options{
		BookingTTL:    cfg.CacheBookingTTL,
		ProfileTTL:    cfg.CacheProfileTTL,
		StatusRetries: cfg.StatusUpdateRetries,
	}, logger)
	bookingService.RegisterSubscribers(bus, dispatcher, dispatcher, cfg.ReminderLeadTime)

	monitor := utils.NewHealthMonitor(checks, cfg.HealthCheckInterval, logger)
	monitor.Start(ctx)

	// Create the Gin router.
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(utils.ErrorHandler(logger))
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.RateLimitMiddleware(middleware.NewRateLimiterStore(cfg.MaxRequestsPerMin), logger))

	handlerBundle := handlers.NewHandlerBundle(
		tokens,
		handlers.NewBookingHandler(bookingService),
		handlers.HealthHandler(monitor, store),
	)
	routes.RegisterRoutes(router, handlerBundle)

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.AppPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Starting server", zap.String("addr", srv.Addr))
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("main: server failed to start", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("main: server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("main: server forced to shutdown", zap.Error(err))
	}
	if err := bus.Close(shutdownCtx); err != nil {
		logger.Warn("main: pending events dropped", zap.Error(err))
	}
	worker.Shutdown()
	store.Close()
	_ = cacheClient.Close()

	logger.Info("main: server stopped gracefully")
}
