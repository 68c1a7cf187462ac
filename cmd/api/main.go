package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/edutrack-admin-api/internal/clock"
	"github.com/noah-isme/edutrack-admin-api/internal/config"
	"github.com/noah-isme/edutrack-admin-api/internal/database"
	"github.com/noah-isme/edutrack-admin-api/internal/handler"
	"github.com/noah-isme/edutrack-admin-api/internal/middleware"
	"github.com/noah-isme/edutrack-admin-api/internal/repository"
	"github.com/noah-isme/edutrack-admin-api/internal/router"
	"github.com/noah-isme/edutrack-admin-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", cfg.AppName).Logger()
	if cfg.AppEnv == "production" {
		logger = logger.Level(zerolog.InfoLevel)
	}

	db, err := database.ConnectPostgres(cfg.DatabaseURL, cfg.AppEnv == "development")
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("%v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(context.Background(), cfg.RedisURL, cfg.AppName)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	} else {
		logger.Warn().Msg("redis url not set; activity feed cache and pub/sub disabled")
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL, cfg.AppName)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Drain()
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	clk := clock.System(cfg.Timezone)

	tx := repository.NewTransactor(db)
	activityRepo := repository.NewActivityLogRepository(db)
	batchRepo := repository.NewBatchRepository(db)
	personRepo := repository.NewPersonRepository(db)
	memberRepo := repository.NewMemberRepository(db)
	partnerRepo := repository.NewPartnerRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	amenityRepo := repository.NewAmenityRepository(db)

	rootCtx, cancelRoot := context.WithCancel(context.Background())
	defer cancelRoot()

	publisher := service.NewActivityPublisher(redisClient, natsConn, cfg.EventsChannel, logger)
	activityStream := service.NewActivityStream(publisher, redisClient, natsConn, cfg.EventsChannel, logger)
	activityStream.Start(rootCtx)
	activityService := service.NewActivityService(activityRepo, activityStream, validate, clk, logger)
	feedService := service.NewActivityFeedService(activityRepo, redisClient, cfg.ActivityFeedTTL, validate, clk, logger)
	snapshotService := service.NewAttendanceSnapshotService(batchRepo, attendanceRepo, validate, clk, logger)
	attendanceService := service.NewAttendanceService(tx, batchRepo, personRepo, attendanceRepo, activityService, validate, clk, logger)
	excuseService := service.NewExcuseService(tx, personRepo, activityService, validate, clk, logger)
	memberService := service.NewMemberService(tx, memberRepo, validate, activityService, clk, logger)
	partnerService := service.NewPartnerService(tx, partnerRepo, validate, activityService, clk, logger)
	sessionService := service.NewBatchSessionService(tx, batchRepo, activityService, validate, clk, logger)
	amenityService := service.NewAmenityService(tx, amenityRepo, activityService, validate, logger)

	healthChecks := map[string]handler.DependencyCheck{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if redisClient != nil {
		healthChecks["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{
		Logger:       &logger,
		AllowOrigins: cfg.CORSOrigins,
		AccessLog:    cfg.AppEnv == "development",
	})
	router.Register(app, cfg, router.Dependencies{
		ActivityHandler:     handler.NewAdminActivityHandler(activityService, logger),
		ActivityFeedHandler: handler.NewActivityFeedHandler(feedService, logger),
		ActivityStream:      handler.NewActivityStreamHandler(activityStream, 30*time.Second, logger),
		AttendanceHandler:   handler.NewAttendanceHandler(snapshotService, attendanceService, excuseService, logger),
		MemberHandler:       handler.NewMemberHandler(memberService, logger),
		PartnerHandler:      handler.NewPartnerHandler(partnerService, logger),
		BatchSessionHandler: handler.NewBatchSessionHandler(sessionService, logger),
		AmenityHandler:      handler.NewAmenityHandler(amenityService, logger),
		HealthChecks:        healthChecks,
		JWTMiddleware:       middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
