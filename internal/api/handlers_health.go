package api

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

const readinessCheckTimeout = 2 * time.Second

// ReadyResponse reports the overall readiness and the state of each dependency.
type ReadyResponse struct {
	Status string            `json:"status" example:"ready"`
	Checks map[string]string `json:"checks"`
}

type readinessCheck struct {
	name  string
	check func(ctx context.Context) error
}

// HandleHealthz godoc
// @Summary Health check (liveness)
// @Description Always returns 200 OK if the service is running. Used for liveness probes.
// @Tags health
// @Produce plain
// @Success 200 {string} string "OK"
// @Router /healthz [get]
func HandleHealthz() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("OK"))
	}
}

// HandleReadyz godoc
// @Summary Readiness check
// @Description Pings Postgres, the cache Redis and the asynq Redis. Returns 200 only when every dependency answers; the body lists each one.
// @Tags health
// @Produce json
// @Success 200 {object} ReadyResponse "All dependencies ready"
// @Failure 503 {object} ReadyResponse "At least one dependency unavailable"
// @Router /readyz [get]
func HandleReadyz(db *sql.DB, cache, asynqRedis *redis.Client) http.HandlerFunc {
	checks := []readinessCheck{{name: "postgres", check: db.PingContext}}
	if cache != nil {
		checks = append(checks, readinessCheck{name: "redis_cache", check: pingRedis(cache)})
	}
	if asynqRedis != nil {
		checks = append(checks, readinessCheck{name: "redis_asynq", check: pingRedis(asynqRedis)})
	}

	return func(w http.ResponseWriter, r *http.Request) {
		resp := ReadyResponse{Status: "ready", Checks: make(map[string]string, len(checks))}
		for _, c := range checks {
			ctx, cancel := context.WithTimeout(r.Context(), readinessCheckTimeout)
			err := c.check(ctx)
			cancel()
			if err != nil {
				resp.Status = "unavailable"
				resp.Checks[c.name] = "down"
				continue
			}
			resp.Checks[c.name] = "up"
		}

		status := http.StatusOK
		if resp.Status != "ready" {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, resp)
	}
}

func pingRedis(c *redis.Client) func(ctx context.Context) error {
	return func(ctx context.Context) error { return c.Ping(ctx).Err() }
}
