package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/angelmondragon/simpos-backend/api/responses"
	"github.com/angelmondragon/simpos-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/simpos-backend/pkg/errors"
	"github.com/angelmondragon/simpos-backend/pkg/logger"
)

const readyTimeout = 2 * time.Second

// Pinger is satisfied by the database and redis clients.
type Pinger interface {
	Ping(context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Simpos-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the database and, when configured, redis.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP Pinger, redisP Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Simpos-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		checks := map[string]string{"database": "ok"}
		if dbP == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "database not configured"))
			return
		}
		if err := dbP.Ping(ctx); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unreachable").WithDetails(map[string]any{"check": "database"}))
			return
		}

		if redisP != nil {
			if err := redisP.Ping(ctx); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis unreachable").WithDetails(map[string]any{"check": "redis"}))
				return
			}
			checks["redis"] = "ok"
		}

		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
