package main

import (
	"context"
	"errors"
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

	"github.com/clinichub/clinichub/internal/config"
	"github.com/clinichub/clinichub/internal/domain/analysis"
	"github.com/clinichub/clinichub/internal/domain/chat"
	"github.com/clinichub/clinichub/internal/domain/identity"
	"github.com/clinichub/clinichub/internal/domain/scheduling"
	"github.com/clinichub/clinichub/internal/platform/auth"
	"github.com/clinichub/clinichub/internal/platform/db"
	"github.com/clinichub/clinichub/internal/platform/middleware"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "clinic-server",
		Short: "Clinic appointment and messaging API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
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
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			target, _ := cmd.Flags().GetInt("to")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.UpTo(ctx, target)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	upCmd.Flags().Int("to", 0, "Apply migrations up to this version (0 = all)")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format(time.RFC3339)
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))
	e.Use(middleware.BodyLimit("1M"))
	e.Use(middleware.RequestTimeout(30 * time.Second))

	issuer := auth.NewTokenIssuer([]byte(cfg.JWTSecret), time.Duration(cfg.JWTTTLHours)*time.Hour)

	// Route groups. /user and /search are public; the role groups require a
	// token carrying the matching role.
	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	rateLimit := middleware.RateLimit(rateLimitCfg)

	user := e.Group("/user", rateLimit)
	search := e.Group("/search", rateLimit)
	clinic := e.Group("/clinic", rateLimit, auth.JWTMiddleware(issuer), auth.RequireRole(auth.RoleClinic))
	doctor := e.Group("/doctor", rateLimit, auth.JWTMiddleware(issuer), auth.RequireRole(auth.RoleDoctor))
	customer := e.Group("/customer", rateLimit, auth.JWTMiddleware(issuer), auth.RequireRole(auth.RoleCustomer))

	// Repositories and services
	txRunner := func(ctx context.Context, fn func(ctx context.Context) error) error {
		return db.WithTx(ctx, pool, fn)
	}

	identitySvc := identity.NewService(
		txRunner,
		identity.NewUserRepoPG(pool),
		identity.NewClinicRepoPG(pool),
		identity.NewDoctorRepoPG(pool),
		identity.NewCustomerRepoPG(pool),
		issuer,
	)

	schedSvc := scheduling.NewService(
		txRunner,
		scheduling.NewSlotRepoPG(pool),
		scheduling.NewAppointmentRepoPG(pool),
		&schedulingDoctors{resolver: identitySvc},
	)

	chatSvc := chat.NewService(
		chat.NewChatRepoPG(pool),
		chat.NewMessageRepoPG(pool),
		schedSvc,
		&chatDoctors{resolver: identitySvc},
		identitySvc,
	)

	analysisSvc := analysis.NewService(analysis.NewRepoPG(pool))

	// Routes
	identity.NewHandler(identitySvc).RegisterRoutes(user, clinic, doctor, customer, search)
	scheduling.NewHandler(schedSvc).RegisterRoutes(clinic, doctor, customer, search)
	chat.NewHandler(chatSvc).RegisterRoutes(doctor, customer)
	analysis.NewHandler(analysisSvc).RegisterRoutes(customer)

	// Health checks
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		var err error
		if cfg.TLSEnabled {
			err = e.StartTLS(addr, cfg.TLSCertFile, cfg.TLSKeyFile)
		} else {
			err = e.Start(addr)
		}
		if err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}

// clinicResolver is the slice of the identity service the scheduling and chat
// adapters need.
type clinicResolver interface {
	ClinicIDByDoctor(ctx context.Context, doctorID uuid.UUID) (uuid.UUID, error)
}

// schedulingDoctors adapts the identity service to scheduling.DoctorDirectory,
// translating the identity not-found sentinel so scheduling handlers map a
// missing doctor to 404 instead of 500.
type schedulingDoctors struct {
	resolver clinicResolver
}

func (d *schedulingDoctors) ClinicIDByDoctor(ctx context.Context, doctorID uuid.UUID) (uuid.UUID, error) {
	clinicID, err := d.resolver.ClinicIDByDoctor(ctx, doctorID)
	if errors.Is(err, identity.ErrNotFound) {
		return uuid.Nil, scheduling.ErrNotFound
	}
	return clinicID, err
}

// chatDoctors is the chat-side counterpart of schedulingDoctors.
type chatDoctors struct {
	resolver clinicResolver
}

func (d *chatDoctors) ClinicIDByDoctor(ctx context.Context, doctorID uuid.UUID) (uuid.UUID, error) {
	clinicID, err := d.resolver.ClinicIDByDoctor(ctx, doctorID)
	if errors.Is(err, identity.ErrNotFound) {
		return uuid.Nil, chat.ErrNotFound
	}
	return clinicID, err
}
