package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/hms/hms/internal/config"
	"github.com/hms/hms/internal/domain/account"
	"github.com/hms/hms/internal/domain/appointment"
	"github.com/hms/hms/internal/domain/billing"
	"github.com/hms/hms/internal/domain/medication"
	"github.com/hms/hms/internal/domain/prescription"
	"github.com/hms/hms/internal/domain/record"
	"github.com/hms/hms/internal/platform/auth"
	"github.com/hms/hms/internal/platform/db"
	"github.com/hms/hms/internal/platform/httpx"
	"github.com/hms/hms/internal/platform/middleware"
)

func main() {
	root := &cobra.Command{
		Use:   "hms-server",
		Short: "Hospital management API server",
	}

	root.AddCommand(serveCmd(), migrateCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			count, err := db.NewMigrator(pool, cfg.MigrationsDir).Up(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("applied %d migration(s)\n", count)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			statuses, err := db.NewMigrator(pool, cfg.MigrationsDir).Status(ctx)
			if err != nil {
				return err
			}
			for _, s := range statuses {
				state := "pending"
				if s.Applied {
					state = "applied " + s.AppliedAt.Format(time.RFC3339)
				}
				fmt.Printf("%03d  %-40s %s\n", s.Version, s.Name, state)
			}
			return nil
		},
	})

	return cmd
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return err
	}
	defer pool.Close()
	logger.Info().Msg("database connected")

	issuer := auth.NewIssuer([]byte(cfg.SessionSecret), cfg.TokenTTL())
	revoked := auth.NewRevocationStore()
	defer revoked.Close()

	// Services
	accountRepo := account.NewPostgresRepository(pool)
	accountSvc := account.NewService(accountRepo)
	appointmentSvc := appointment.NewService(
		appointment.NewPostgresRepository(pool),
		&doctorDirectory{accounts: accountSvc},
	)
	recordSvc := record.NewService(record.NewPostgresRepository(pool))
	prescriptionSvc := prescription.NewService(prescription.NewPostgresRepository(pool))
	billingSvc := billing.NewService(billing.NewPostgresRepository(pool))
	medicationSvc := medication.NewService(medication.NewPostgresRepository(pool))

	// HTTP server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = httpx.ErrorHandler(logger)

	metrics := middleware.NewHTTPMetrics()

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(metrics.Middleware())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowCredentials: true,
	}))
	e.Use(auth.Middleware(issuer, revoked, auth.PathSkipper(
		"/healthz",
		"/metrics",
		"/api/v1/auth/login",
		"/api/v1/auth/register",
	)))

	e.GET("/healthz", db.HealthHandler(pool))
	e.GET("/metrics", metrics.Handler())

	api := e.Group("/api/v1")
	account.NewHandler(accountSvc, issuer, revoked).RegisterRoutes(api)
	appointment.NewHandler(appointmentSvc).RegisterRoutes(api)
	record.NewHandler(recordSvc).RegisterRoutes(api)
	prescription.NewHandler(prescriptionSvc).RegisterRoutes(api)
	billing.NewHandler(billingSvc).RegisterRoutes(api)
	medication.NewHandler(medicationSvc).RegisterRoutes(api)

	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func newLogger(cfg *config.Config) zerolog.Logger {
	if cfg.IsDev() {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
			With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

// doctorDirectory adapts the account service to the scheduler's view of a
// doctor.
type doctorDirectory struct {
	accounts *account.Service
}

func (d *doctorDirectory) GetDoctor(ctx context.Context, id uuid.UUID) (*appointment.Doctor, error) {
	a, err := d.accounts.Get(ctx, id)
	if err != nil {
		return nil, appointment.ErrDoctorNotFound
	}
	if a.Role != auth.RoleDoctor {
		return nil, appointment.ErrDoctorNotFound
	}
	return toDoctor(a), nil
}

func (d *doctorDirectory) ListDoctors(ctx context.Context) ([]*appointment.Doctor, error) {
	// The doctor roster is small; one page covers it.
	accounts, _, err := d.accounts.List(ctx, auth.RoleDoctor, 1000, 0)
	if err != nil {
		return nil, err
	}
	doctors := make([]*appointment.Doctor, 0, len(accounts))
	for _, a := range accounts {
		doctors = append(doctors, toDoctor(a))
	}
	return doctors, nil
}

func toDoctor(a *account.Account) *appointment.Doctor {
	doc := &appointment.Doctor{
		ID:   a.ID,
		Name: a.Name,
		Availability: appointment.WeeklyAvailability{
			Days: a.AvailableDays,
		},
	}
	if a.Department != nil {
		doc.Department = *a.Department
	}
	if a.AvailableFrom != nil {
		doc.Availability.Start = *a.AvailableFrom
	}
	if a.AvailableTo != nil {
		doc.Availability.End = *a.AvailableTo
	}
	return doc
}
