package config

import (
	"studyflow-service/internal/pkg/utils"

	"github.com/joho/godotenv"
)

func init() {
	godotenv.Load()
}

func NewDriverConfig() *DriverConfig {
	return &DriverConfig{
		PostgresDB: PostgresDB{
			Port:     utils.GetEnvString("POSTGRES_PORT", "5432"),
			Host:     utils.GetEnvString("POSTGRES_HOST", "localhost"),
			DBName:   utils.GetEnvString("POSTGRES_DB_NAME", "studyflow"),
			Username: utils.GetEnvString("POSTGRES_USERNAME", "defaultUsername"),
			Password: utils.GetEnvString("POSTGRES_PASSWORD", "defaultPassword"),
		},
		Redis: Redis{
			Host:     utils.GetEnvString("REDIS_HOST", "localhost"),
			Port:     utils.GetEnvString("REDIS_PORT", "6379"),
			Password: utils.GetEnvString("REDIS_PASSWORD", ""),
		},
		Logger: Logger{
			Level:               utils.GetEnvString("LOGGER_LEVEL", "debug"),
			OutputFileName:      utils.GetEnvString("LOGGER_OUTPUT_FILENAME", "logger.log"),
			OutputErrorFileName: utils.GetEnvString("LOGGER_OUTPUT_ERROR_FILENAME", "logger_error.log"),
		},
		RabbitMQ: RabbitMQ{
			Port:     utils.GetEnvString("RABBITMQ_PORT", "5672"),
			Host:     utils.GetEnvString("RABBITMQ_HOST", "localhost"),
			Username: utils.GetEnvString("RABBITMQ_USERNAME", "defaultUsername"),
			Password: utils.GetEnvString("RABBITMQ_PASSWORD", "defaultPassword"),
		},
	}
}

func NewInternalConfig() *InternalConfig {
	return &InternalConfig{
		App: App{
			Env:             utils.GetEnvString("APP_ENV", "development"),
			Port:            utils.GetEnvString("APP_PORT", ":8080"),
			Version:         utils.GetEnvString("APP_VERSION", "v1.0"),
			Address:         utils.GetEnvString("APP_ADDRESS", "localhost"),
			Timezone:        utils.GetEnvString("APP_TIMEZONE", "Europe/Berlin"),
			ShutdownTimeout: utils.GetEnvInt("APP_SHUTDOWN_TIMEOUT", 10),
		},
		Engine: Engine{
			SweepIntervalInMinutes:    utils.GetEnvInt("ENGINE_SWEEP_INTERVAL_IN_MINUTES", 5),
			WorkerCount:               utils.GetEnvInt("ENGINE_WORKER_COUNT", 4),
			LookAheadCycles:           utils.GetEnvInt("ENGINE_LOOK_AHEAD_CYCLES", 1),
			ScopeLockTTLInSeconds:     utils.GetEnvInt("ENGINE_SCOPE_LOCK_TTL_IN_SECONDS", 30),
			ReconcileMaxRetries:       utils.GetEnvInt("ENGINE_RECONCILE_MAX_RETRIES", 3),
			ReconcileRetryBackoffInMs: utils.GetEnvInt("ENGINE_RECONCILE_RETRY_BACKOFF_IN_MS", 250),
		},
		Queue: Queue{
			ProbandEventsQueue:   utils.GetEnvString("QUEUE_PROBAND_EVENTS", "proband_events_queue"),
			LifecycleEventsQueue: utils.GetEnvString("QUEUE_LIFECYCLE_EVENTS", "questionnaire_instance_events_queue"),
			ChangeFeedQueue:      utils.GetEnvString("QUEUE_CHANGE_FEED", "row_change_events_queue"),
		},
		Content: Content{
			BaseUrl: utils.GetEnvString("CONTENT_BASE_URL", "http://localhost:4004/questionnaire"),
		},
	}
}
