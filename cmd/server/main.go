package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"reseller_hub/internal/auth"
	"reseller_hub/internal/config"
	"reseller_hub/internal/database"
	"reseller_hub/internal/gateway"
	"reseller_hub/internal/handlers"
	"reseller_hub/internal/logger"
	"reseller_hub/internal/migrations"
	"reseller_hub/internal/redis"
	"reseller_hub/internal/repository"
	"reseller_hub/internal/services"
	"reseller_hub/pkg/whatsapp"
)

func main() {
	// Load configuration
	cfg := config.Load()
	if err := logger.Setup(cfg.GetLoggerConfig()); err != nil {
		logger.Fatal(err, "Failed to initialize logger")
	}
	defer logger.Close()
	log := logger.WithComponent("main")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal(err, "Failed to connect to database")
	}
	defer database.Close(db)

	err = migrations.RunMigrations(ctx, db, migrations.Defaults{
		AdminEmail:     cfg.AdminEmail,
		AdminPassword:  cfg.AdminPassword,
		CommissionRate: cfg.CommissionRate,
	})
	if err != nil {
		logger.Fatal(err, "Failed to migrate database")
	}

	// Initialize Redis
	redisClient, err := redis.Initialize(cfg.RedisURL)
	if err != nil {
		logger.Fatal(err, "Failed to connect to Redis")
	}
	defer redisClient.Close()

	gw := gateway.New(db)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	itemRepo := repository.NewItemRepository(db)
	resellerRepo := repository.NewResellerRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	financialRepo := repository.NewFinancialRepository(db)

	// Initialize services
	authService := auth.NewService(userRepo, redisClient, cfg.SessionTTL())
	payoutOpts := []services.PayoutOption{
		services.WithToggleGuard(redisClient.ToggleLock(cfg.PendingWriteTimeout())),
	}
	if cfg.WhatsAppEnabled() {
		whatsappClient := whatsapp.NewClient(cfg.WhatsAppAPIURL, cfg.WhatsAppUsername, cfg.WhatsAppPassword, cfg.WhatsAppPath)
		payoutOpts = append(payoutOpts, services.WithNotifier(whatsappClient))
	}

	catalog := handlers.NewCatalogHandler(
		services.NewInventoryService(itemRepo),
		services.NewResellerService(resellerRepo),
		services.NewOrderService(orderRepo, itemRepo, resellerRepo, financialRepo, cfg.CommissionRate),
	)
	payouts := handlers.NewPayoutHandler(
		services.NewPayoutService(orderRepo, services.NewOrderPaidStore(gw), cfg.Location(), payoutOpts...),
		services.NewExportService(gw),
		services.NewMaintenanceService(gw, cfg.AdminPassphrase),
		time.Now,
	)

	healthChecks := map[string]handlers.HealthCheck{
		"database": func(ctx context.Context) error { return database.Ping(ctx, db) },
		"redis":    redisClient.Ping,
	}

	go logSessionEvents(ctx, authService)

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           handlers.NewRouter(handlers.NewAuthHandler(authService), catalog, payouts, healthChecks),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server shutdown failed")
		}
	}()

	log.Info().Str("port", cfg.ServerPort).Msg("Server starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal(err, "Failed to start server")
	}
	log.Info().Msg("Server stopped")
}

// logSessionEvents records operator sign-ins and sign-outs until ctx ends.
func logSessionEvents(ctx context.Context, a *auth.Service) {
	log := logger.WithComponent("sessions")
	events, cancel := a.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			log.Info().
				Str("event", string(ev.Kind)).
				Uint("user_id", ev.Session.UserID).
				Time("expires_at", ev.Session.ExpiresAt).
				Msg("session changed")
		}
	}
}
