package handler

import (
	"context"
	"net/http"
	"time"

	"clinic-appointment-service/pkg/response"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	statusOK       = "ok"
	statusDown     = "down"
	statusDegraded = "degraded"
)

type HealthHandler struct {
	db    *gorm.DB
	redis *redis.Client
	env   string
}

func NewHealthHandler(db *gorm.DB, redisClient *redis.Client, env string) *HealthHandler {
	return &HealthHandler{
		db:    db,
		redis: redisClient,
		env:   env,
	}
}

type LivenessResponse struct {
	Status string `json:"status"`
	Env    string `json:"env,omitempty"`
}

type ReadinessResponse struct {
	Status       string            `json:"status"`
	Env          string            `json:"env,omitempty"`
	Dependencies map[string]string `json:"dependencies"`
}

func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	response.Success(w, http.StatusOK, "Service is alive", LivenessResponse{Status: statusOK, Env: h.env})
}

// Readiness pings PostgreSQL and Redis. Redis only backs the optional booking
// guard, so losing it degrades the service instead of taking it out of rotation.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	deps := map[string]string{"postgres": statusOK}
	status := statusOK

	if err := h.pingDB(ctx); err != nil {
		deps["postgres"] = statusDown
		status = statusDown
	}

	if h.redis != nil {
		deps["redis"] = statusOK
		if err := h.redis.Ping(ctx).Err(); err != nil {
			deps["redis"] = statusDown
			if status == statusOK {
				status = statusDegraded
			}
		}
	}

	resp := ReadinessResponse{
		Status:       status,
		Env:          h.env,
		Dependencies: deps,
	}

	if status == statusDown {
		response.ServiceUnavailable(w, "Service is not ready", resp)
		return
	}
	response.Success(w, http.StatusOK, "Service is ready", resp)
}

func (h *HealthHandler) pingDB(ctx context.Context) error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
