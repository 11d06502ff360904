package controllers

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/coffeepos-backend/api/responses"
	"github.com/angelmondragon/coffeepos-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/coffeepos-backend/pkg/errors"
	"github.com/angelmondragon/coffeepos-backend/pkg/logger"
)

const readinessTimeout = 2 * time.Second

// Pinger is a dependency that the readiness probe checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-CoffeePOS-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the database and Redis concurrently and reports 503 when
// either is unreachable.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP, redisP Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-CoffeePOS-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			if dbP == nil {
				return pkgerrors.New(pkgerrors.CodeDependency, "database not configured")
			}
			if err := dbP.Ping(gctx); err != nil {
				return pkgerrors.Store(err, "database ping")
			}
			return nil
		})
		g.Go(func() error {
			if redisP == nil {
				return pkgerrors.New(pkgerrors.CodeDependency, "redis not configured")
			}
			if err := redisP.Ping(gctx); err != nil {
				return pkgerrors.Store(err, "redis ping")
			}
			return nil
		})
		if err := g.Wait(); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
