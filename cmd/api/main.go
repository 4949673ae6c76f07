package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/djnacci/backend/docs"
	"github.com/djnacci/backend/internal/auth"
	"github.com/djnacci/backend/internal/config"
	"github.com/djnacci/backend/internal/handlers"
	"github.com/djnacci/backend/internal/imaging"
	"github.com/djnacci/backend/internal/logger"
	"github.com/djnacci/backend/internal/middlewares"
	"github.com/djnacci/backend/internal/models"
	"github.com/djnacci/backend/internal/repositories"
	"github.com/djnacci/backend/internal/seed"
	"github.com/djnacci/backend/internal/services"
	"github.com/djnacci/backend/internal/storage"
	"github.com/djnacci/backend/internal/tasks"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

const (
	// maxRequestSize bounds every request body except uploads
	maxRequestSize = 1 << 20
	// multipart overhead allowed on top of the file payloads of one upload
	uploadEnvelope = 1 << 20
	uploadPath     = "/api/media/upload"
)

// @title DJ Nacci Site API
// @version 1.0
// @description Backend of the DJ Nacci promo site: media sections, social links and booking requests

// @contact.name DJ Nacci
// @contact.email booking@djnacci.com

// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Admin access token, "Bearer <token>"
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
// @description API key for service-to-service authentication
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v\n", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v\n", err)
	}
	defer logger.Sync()

	logger.Logger.Info("Starting DJ Nacci API", zap.String("media_storage", cfg.Media.Storage))

	// Connect to database
	db, err := connectDB(cfg.DSN())
	if err != nil {
		logger.Logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	if err := runMigrations(db); err != nil {
		logger.Logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	ctx := context.Background()

	// Initialize storage (nil in database mode)
	blob, err := storage.FromConfig(ctx, cfg)
	if err != nil {
		logger.Logger.Fatal("Failed to initialize media storage", zap.Error(err))
	}

	// Initialize repositories
	mediaRepo := repositories.NewMediaRepository(db)
	socialLinkRepo := repositories.NewSocialLinkRepository(db)
	bookingRepo := repositories.NewBookingRepository(db)

	// Readiness checks
	checks := map[string]handlers.Pinger{
		"database": handlers.PingerFunc(db.PingContext),
	}
	if blob != nil {
		checks["storage"] = handlers.PingerFunc(blob.Health)
	}

	// Booking notifications go through the asynq queue when Redis is configured
	var notifier services.BookingNotifier
	if cfg.Redis.Enabled() {
		redisOpt := asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}
		asynqClient := asynq.NewClient(redisOpt)
		defer asynqClient.Close()
		notifier = tasks.NewBookingNotifier(asynqClient)

		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		checks["redis"] = handlers.PingerFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
	} else {
		logger.Logger.Warn("REDIS_HOST is not set, booking notifications are disabled")
	}

	// Initialize services
	var blobStorage services.BlobStorage
	if blob != nil {
		blobStorage = blob
	}
	mediaService := services.NewMediaService(mediaRepo, blobStorage, imaging.NewConverter(imaging.DefaultQuality), logger.Logger)
	socialLinkService := services.NewSocialLinkService(socialLinkRepo, logger.Logger)
	bookingService := services.NewBookingService(bookingRepo, notifier, logger.Logger)

	tokenGenerator := auth.NewTokenGenerator(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)
	authService := services.NewAuthService(cfg.Admin.Username, cfg.Admin.PasswordHash, tokenGenerator, logger.Logger)
	if cfg.Admin.PasswordHash == "" {
		logger.Logger.Warn("ADMIN_PASSWORD_HASH is not set, admin login is disabled")
	}

	// Seed default social links
	if err := seedSocialLinks(ctx, cfg.SeedFile, socialLinkService); err != nil {
		logger.Logger.Error("Failed to seed social links", zap.Error(err))
	}

	// Initialize middleware
	adminMw := auth.AdminMiddleware(tokenGenerator, cfg.APIKey)
	bookingLimitMw := httprate.LimitByIP(5, time.Minute)
	loginLimitMw := httprate.LimitByIP(10, time.Minute)
	maxUploadSize := cfg.Media.MaxFileSize*services.MaxFilesPerUpload + uploadEnvelope

	// Initialize handlers
	mediaHandler := handlers.NewMediaHandler(mediaService, logger.Logger, adminMw, cfg.Media.MaxFileSize)
	socialLinkHandler := handlers.NewSocialLinkHandler(socialLinkService, logger.Logger, adminMw)
	bookingHandler := handlers.NewBookingHandler(bookingService, logger.Logger, adminMw, bookingLimitMw)
	authHandler := handlers.NewAuthHandler(authService, logger.Logger, loginLimitMw)
	healthHandler := handlers.NewHealthHandler(logger.Logger, checks)

	// Setup router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(middlewares.RequestIDMiddleware)
	r.Use(middlewares.LoggerMiddleware(logger.Logger))
	r.Use(middlewares.RecoveryMiddleware(logger.Logger))
	r.Use(middlewares.CORSMiddleware(cfg.CORS.AllowedOrigins))
	r.Use(middlewares.MetricsMiddleware)
	r.Use(httprate.LimitByIP(100, time.Minute))
	r.Use(middlewares.RequestSizeLimitByPathMiddleware(maxRequestSize, map[string]int64{
		uploadPath: maxUploadSize,
	}))

	// Operational endpoints
	healthHandler.RegisterRoutes(r)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	// Register routes
	mediaHandler.RegisterRoutes(r)
	socialLinkHandler.RegisterRoutes(r)
	bookingHandler.RegisterRoutes(r)
	authHandler.RegisterRoutes(r)

	// Stored files are served directly in filesystem mode
	if cfg.Media.Storage == config.StorageFilesystem {
		fileServer := http.StripPrefix(cfg.Media.PublicPath, http.FileServer(http.Dir(cfg.Media.BasePath)))
		r.Handle(cfg.Media.PublicPath+"/*", fileServer)
	}

	// Start server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  60 * time.Second, // uploads of up to 20 files
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Logger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Logger.Info("Server exited")
}

// socialLinkSeeder is satisfied by the social link service
type socialLinkSeeder interface {
	SeedDefaults(ctx context.Context, links []models.SocialLink) (int, error)
}

// seedSocialLinks inserts the default links of the seed file that are missing
func seedSocialLinks(ctx context.Context, path string, seeder socialLinkSeeder) error {
	links, err := seed.LoadSocialLinks(path)
	if err != nil {
		return err
	}
	if len(links) == 0 {
		return nil
	}

	created, err := seeder.SeedDefaults(ctx, links)
	if err != nil {
		return err
	}
	if created > 0 {
		logger.Logger.Info("Seeded social links", zap.Int("count", created))
	}

	return nil
}

// connectDB connects to the database
func connectDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// runMigrations runs database migrations
func runMigrations(db *sql.DB) error {
	driver, err := mysql.WithInstance(db, &mysql.Config{
		MigrationsTable: "site_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	// Migrations live next to the working directory, or one level up when running from cmd/
	migrationPath := "file://migrations"
	if _, err := os.Stat("migrations"); os.IsNotExist(err) {
		if _, err := os.Stat("../../migrations"); err == nil {
			migrationPath = "file://../../migrations"
		}
	}

	m, err := migrate.NewWithDatabaseInstance(
		migrationPath,
		"mysql",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
