package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/carryconnect/carryconnect-backend/api/responses"
	"github.com/carryconnect/carryconnect-backend/pkg/config"
	"github.com/carryconnect/carryconnect-backend/pkg/db"
	pkgerrors "github.com/carryconnect/carryconnect-backend/pkg/errors"
	"github.com/carryconnect/carryconnect-backend/pkg/logger"
	"github.com/carryconnect/carryconnect-backend/pkg/redis"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-CarryConnect-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports ready only when every backing dependency answers a ping.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-CarryConnect-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		checks := map[string]string{}
		healthy := true

		ping := func(name string, fn func(context.Context) error) {
			if fn == nil {
				return
			}
			if err := fn(ctx); err != nil {
				healthy = false
				checks[name] = "unavailable"
				if logg != nil {
					logg.Error(ctx, "health."+name, err)
				}
				return
			}
			checks[name] = "ok"
		}

		if dbP != nil {
			ping("postgres", dbP.Ping)
		}
		if redisP != nil {
			ping("redis", redisP.Ping)
		}

		if !healthy {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeDependency, "dependency unavailable").WithDetails(checks))
			return
		}

		payload := map[string]any{"status": "ready"}
		if len(checks) > 0 {
			payload["checks"] = checks
		}
		responses.WriteSuccess(w, payload)
	}
}
