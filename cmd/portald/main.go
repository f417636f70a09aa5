package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"

	"campus-portal-backend/config"
	"campus-portal-backend/internal/api"
	"campus-portal-backend/internal/db"
	"campus-portal-backend/internal/model"
	"campus-portal-backend/internal/notification"
	"campus-portal-backend/internal/reminder"
	"campus-portal-backend/internal/schedule"
	"campus-portal-backend/internal/store"
)

func main() {
	logger := log.New(os.Stdout, "campus-portal ", log.LstdFlags)

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	policy, err := bookingPolicy(cfg)
	if err != nil {
		logger.Fatalf("invalid booking policy: %v", err)
	}

	webpushOptions := webpush.Options{
		VAPIDPublicKey:  cfg.Push.PublicKey,
		VAPIDPrivateKey: cfg.Push.PrivateKey,
		Subscriber:      cfg.Push.Subject,
		TTL:             cfg.Push.TTL,
	}
	if cfg.Push.PublicKey == "" || cfg.Push.PrivateKey == "" {
		logger.Println("VAPID keys are not configured; push notifications will not be delivered")
	}

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB, policy)
	logger.Println("data store initialized")

	pool := notification.NewWorkerPool(cfg.WorkerPool.Size, gormDB, &webpushOptions)
	pool.Start(ctx)

	reminderSvc := reminder.NewService(cfg, appStore, pool)
	go reminderSvc.Run(ctx)

	router := api.NewRouter(cfg, appStore, &webpushOptions, pool)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Println("Shutdown signal received, stopping services...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}

// bookingPolicy turns the configured operating hours into the store's policy.
func bookingPolicy(cfg *config.Config) (store.Policy, error) {
	window, err := schedule.ParseInterval(cfg.Booking.OpenTime, cfg.Booking.CloseTime)
	if err != nil {
		return store.Policy{}, err
	}
	if !model.ValidBookingStatus(cfg.Booking.DefaultStatus) || cfg.Booking.DefaultStatus == string(model.BookingCancelled) {
		return store.Policy{}, fmt.Errorf("booking.default_status must be pending or confirmed, got %q", cfg.Booking.DefaultStatus)
	}
	return store.Policy{
		Window:         window,
		MinSlotMinutes: cfg.Booking.MinSlotMinutes,
		DefaultStatus:  model.BookingStatus(cfg.Booking.DefaultStatus),
	}, nil
}
