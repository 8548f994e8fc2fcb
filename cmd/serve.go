package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	_ "eventcheckin/docs"
	"eventcheckin/internal/adapters/auth"
	"eventcheckin/internal/clock"
	delivery "eventcheckin/internal/delivery/http"
	"eventcheckin/internal/delivery/http/controllers"
	"eventcheckin/internal/delivery/http/middleware"
	"eventcheckin/internal/repository/postgres"
	"eventcheckin/internal/services"
	"eventcheckin/migrations"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("port", "", "listen port (env PORT)")
	serveCmd.Flags().Bool("migrate", false, "apply pending migrations before serving")
	_ = viper.BindPFlag("port", serveCmd.Flags().Lookup("port"))
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if migrate, _ := cmd.Flags().GetBool("migrate"); migrate {
		applied, err := migrations.Apply(ctx, db)
		if err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		logger.Info("migrations applied", "count", len(applied), "names", applied)
	}

	clk := clock.NewSystem()
	tx := postgres.NewTransactor(db)
	eventRepo := postgres.NewEventRepository(db)
	registrationRepo := postgres.NewRegistrationRepository(db)
	statsRepo := postgres.NewStatsRepository(db)

	statsSvc := services.NewStatsService(statsRepo, eventRepo, cfg.StatsCacheTTL, cfg.RequestTimeout)
	registrationSvc := services.NewRegistrationService(tx, eventRepo, registrationRepo, statsSvc, clk, logger, cfg.RequestTimeout)
	ticketSvc := services.NewTicketService(registrationRepo, statsSvc, logger, cfg.RequestTimeout)
	validationSvc := services.NewValidationService(registrationRepo, statsSvc, clk, logger, cfg.RequestTimeout)
	eventSvc := services.NewEventService(eventRepo, registrationRepo, clk, logger, cfg.RequestTimeout)

	router := delivery.NewRouter(delivery.Controllers{
		Registrations: controllers.NewRegistrationController(logger, registrationSvc, ticketSvc),
		CheckIn:       controllers.NewCheckInController(logger, validationSvc),
		Stats:         controllers.NewStatsController(logger, statsSvc),
		Events:        controllers.NewEventController(logger, eventSvc),
	}, auth.NewJWTVerifier(cfg.JWTSecret), db, logger)

	handler := middleware.LoggingMiddleware(logger, middleware.CORS(cfg.CORSOrigins, router))
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
