package config

import (
	"database/sql"

	"github.com/go-chi/chi/v5"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type (
	Bootstrap struct {
		Router         *chi.Mux
		PostgresDB     *sql.DB
		Redis          *redis.Client
		RabbitMQ       *amqp.Connection
		Logger         *zap.Logger
		DriverConfig   *DriverConfig
		InternalConfig *InternalConfig
	}

	InternalConfig struct {
		App     App
		Engine  Engine
		Queue   Queue
		Content Content
	}

	App struct {
		Env             string
		Port            string
		Version         string
		Address         string
		Timezone        string
		ShutdownTimeout int
	}

	// Engine holds the lifecycle engine's own knobs.
	Engine struct {
		SweepIntervalInMinutes    int
		WorkerCount               int
		LookAheadCycles           int
		ScopeLockTTLInSeconds     int
		ReconcileMaxRetries       int
		ReconcileRetryBackoffInMs int
	}

	Queue struct {
		ProbandEventsQueue   string
		LifecycleEventsQueue string
		ChangeFeedQueue      string
	}

	// Content points at the questionnaire-content collaborator that persists
	// instance content rows.
	Content struct {
		BaseUrl string
	}
)
