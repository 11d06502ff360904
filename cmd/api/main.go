package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/coffeepos-backend/api/routes"
	"github.com/angelmondragon/coffeepos-backend/internal/assembly"
	"github.com/angelmondragon/coffeepos-backend/internal/auth"
	"github.com/angelmondragon/coffeepos-backend/internal/bugreports"
	"github.com/angelmondragon/coffeepos-backend/internal/catalog"
	"github.com/angelmondragon/coffeepos-backend/internal/orders"
	"github.com/angelmondragon/coffeepos-backend/internal/reports"
	"github.com/angelmondragon/coffeepos-backend/internal/seed"
	"github.com/angelmondragon/coffeepos-backend/pkg/auth/session"
	"github.com/angelmondragon/coffeepos-backend/pkg/config"
	"github.com/angelmondragon/coffeepos-backend/pkg/db"
	"github.com/angelmondragon/coffeepos-backend/pkg/logger"
	"github.com/angelmondragon/coffeepos-backend/pkg/metrics"
	"github.com/angelmondragon/coffeepos-backend/pkg/migrate"
	"github.com/angelmondragon/coffeepos-backend/pkg/outbox"
	"github.com/angelmondragon/coffeepos-backend/pkg/redis"
	"github.com/angelmondragon/coffeepos-backend/pkg/security"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return multierr.Append(err, dbClient.Close())
	}
	defer func() {
		err = multierr.Combine(err, redisClient.Close(), dbClient.Close())
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}
	if cfg.FeatureFlags.SeedMenu {
		res, err := seed.Menu(ctx, dbClient, seed.DefaultMenu, logg)
		if err != nil {
			return err
		}
		logg.Info(logg.WithFields(ctx, map[string]any{
			"skipped":    res.Skipped,
			"categories": res.Categories,
			"items":      res.Items,
			"prices":     res.Prices,
		}), "menu seed finished")
	}

	loc := cfg.App.MustLocation()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		return err
	}
	passwords, err := security.HashRolePasswords(cfg.Staff, cfg.Password)
	if err != nil {
		return err
	}
	authService, err := auth.NewService(auth.ServiceParams{
		Passwords:      passwords,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		Logger:         logg,
	})
	if err != nil {
		return err
	}

	catalogService, err := catalog.NewService(catalog.NewRepository(dbClient.DB()), dbClient, logg)
	if err != nil {
		return err
	}
	emitter := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)
	orderService, err := orders.NewService(
		orders.NewRepository(dbClient.DB()),
		dbClient,
		emitter,
		metrics.NewOrderMetrics(prometheus.DefaultRegisterer),
		loc,
		logg,
	)
	if err != nil {
		return err
	}
	assemblyStore, err := assembly.NewRedisStore(redisClient, cfg.Redis.AssemblyTTL)
	if err != nil {
		return err
	}
	assemblyService, err := assembly.NewService(assemblyStore, orderService, catalogService, logg)
	if err != nil {
		return err
	}
	reportService, err := reports.NewService(reports.NewRepository(dbClient.DB()), loc, logg)
	if err != nil {
		return err
	}
	bugReportService, err := bugreports.NewService(bugreports.NewRepository(dbClient.DB()), logg)
	if err != nil {
		return err
	}

	handler := routes.NewRouter(routes.Dependencies{
		Config:      cfg,
		Logger:      logg,
		DB:          dbClient,
		Redis:       redisClient,
		Sessions:    sessionManager,
		HTTPMetrics: metrics.NewHTTPMetrics(prometheus.DefaultRegisterer),
		Gatherer:    prometheus.DefaultGatherer,
		Auth:        authService,
		Catalog:     catalogService,
		Assembly:    assemblyService,
		Orders:      orderService,
		Reports:     reportService,
		BugReports:  bugReportService,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logCtx := logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"timezone": loc.String(),
	})
	logg.Info(logCtx, "starting api server")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logg.Info(logCtx, "api server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
