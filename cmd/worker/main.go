package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/djnacci/backend/internal/config"
	"github.com/djnacci/backend/internal/logger"
	"github.com/djnacci/backend/internal/repositories"
	"github.com/djnacci/backend/internal/services"
	"github.com/djnacci/backend/internal/storage"
	"github.com/djnacci/backend/internal/tasks"
	_ "github.com/go-sql-driver/mysql"
	"github.com/hibiken/asynq"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

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

	logger.Logger.Info("Starting DJ Nacci Worker")

	ctx := context.Background()

	blob, err := storage.FromConfig(ctx, cfg)
	if err != nil {
		logger.Logger.Fatal("Failed to initialize media storage", zap.Error(err))
	}

	if !cfg.Redis.Enabled() && blob == nil {
		logger.Logger.Fatal("Nothing to run: REDIS_HOST is not set and media is stored in the database")
	}

	// Orphan sweep is only meaningful when payloads live outside the database
	var scheduler *cron.Cron
	if blob != nil {
		db, err := connectDB(cfg.DSN())
		if err != nil {
			logger.Logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer db.Close()

		sweeper := services.NewOrphanSweeper(repositories.NewMediaRepository(db), blob, cfg.Sweep.Grace, logger.Logger)
		scheduler, err = NewScheduler(cfg.Sweep.Schedule, NewWorker(logger.Logger, sweeper))
		if err != nil {
			logger.Logger.Fatal("Failed to create scheduler", zap.Error(err))
		}
		scheduler.Start()
		logger.Logger.Info("Orphan sweeper scheduled",
			zap.String("schedule", cfg.Sweep.Schedule),
			zap.String("backend", blob.Name()),
		)
	}

	// Booking notifications
	var srv *asynq.Server
	if cfg.Redis.Enabled() {
		srv = asynq.NewServer(
			asynq.RedisClientOpt{
				Addr:     cfg.Redis.Addr(),
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			},
			asynq.Config{
				Queues: map[string]int{
					tasks.QueueImmediate: 5,
					"default":            1,
				},
			},
		)

		if cfg.NotifyAddress == "" {
			logger.Logger.Warn("BOOKING_NOTIFY_EMAIL is not set, booking notifications will be dropped")
		}
		mailer := tasks.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From)

		// Register task handlers
		mux := asynq.NewServeMux()
		mux.Handle(tasks.TypeBookingNotify, tasks.NewBookingNotifyHandler(mailer, cfg.NotifyAddress, logger.Logger))

		// Start worker
		go func() {
			if err := srv.Run(mux); err != nil {
				logger.Logger.Fatal("Failed to start worker", zap.Error(err))
			}
		}()
	}

	logger.Logger.Info("Worker started")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down worker...")
	if srv != nil {
		srv.Shutdown()
	}
	if scheduler != nil {
		// Wait for a running sweep to finish
		<-scheduler.Stop().Done()
	}
	logger.Logger.Info("Worker exited")
}

// connectDB connects to the database
func connectDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}
