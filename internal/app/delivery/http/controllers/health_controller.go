package controllers

import (
	"database/sql"
	"net/http"

	"github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// HealthController answers the liveness probe: the engine is healthy when the
// store, redis and the message broker are all reachable.
type HealthController struct {
	DB       *sql.DB
	Redis    *redis.Client
	RabbitMQ *amqp.Connection
	Log      *zap.Logger
}

func NewHealthController(db *sql.DB, redisClient *redis.Client, rabbitConn *amqp.Connection, logger *zap.Logger) *HealthController {
	return &HealthController{
		DB:       db,
		Redis:    redisClient,
		RabbitMQ: rabbitConn,
		Log:      logger,
	}
}

type healthResponse struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services"`
}

func (c *HealthController) Check(w http.ResponseWriter, r *http.Request) {
	response := healthResponse{
		Status:   "ok",
		Services: map[string]string{"postgres": "up", "redis": "up", "rabbitmq": "up"},
	}

	if err := c.DB.PingContext(r.Context()); err != nil {
		c.Log.Error("health check postgres ping failed", zap.Error(err))
		response.Services["postgres"] = "down"
	}
	if err := c.Redis.Ping(r.Context()).Err(); err != nil {
		c.Log.Error("health check redis ping failed", zap.Error(err))
		response.Services["redis"] = "down"
	}
	if c.RabbitMQ.IsClosed() {
		c.Log.Error("health check rabbitmq connection closed")
		response.Services["rabbitmq"] = "down"
	}

	statusCode := http.StatusOK
	for _, state := range response.Services {
		if state != "up" {
			response.Status = "degraded"
			statusCode = http.StatusServiceUnavailable
			break
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(response)
}
