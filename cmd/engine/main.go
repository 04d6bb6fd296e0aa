package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"studyflow-service/internal/app/config"
	"studyflow-service/internal/app/delivery/http/controllers"
	"studyflow-service/internal/app/delivery/http/routers"
	"studyflow-service/internal/app/drivers/database"
	"studyflow-service/internal/app/drivers/logger"
	"studyflow-service/internal/app/drivers/messaging"
	"studyflow-service/internal/app/services/answers"
	"studyflow-service/internal/app/services/condition"
	"studyflow-service/internal/app/services/instances"
	"studyflow-service/internal/app/services/probands"
	"studyflow-service/internal/app/services/queuebuilder"
	"studyflow-service/internal/app/services/questionnaires"
	"studyflow-service/internal/app/services/reactor"
	"studyflow-service/internal/app/services/reconciler"
	"studyflow-service/internal/app/services/schedule"
	"studyflow-service/internal/app/services/shared/content"
	"studyflow-service/internal/app/services/shared/lifecycleevents"
	"studyflow-service/internal/app/services/shared/locker"
	sharedredis "studyflow-service/internal/app/services/shared/redis"
	"studyflow-service/internal/app/services/sweeper"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
)

func main() {
	driverConfig := config.NewDriverConfig()
	internalConfig := config.NewInternalConfig()

	bootstrapLog := logger.NewLogrusLogger(internalConfig)

	location, err := time.LoadLocation(internalConfig.App.Timezone)
	if err != nil {
		bootstrapLog.Fatalf("Error loading location: %v", err)
	}
	time.Local = location

	zapLogger := logger.NewZapLogger(driverConfig, internalConfig)
	defer zapLogger.Sync()

	postgresDB := database.NewPostgresDB(driverConfig)
	redisClient := database.NewRedisClient(driverConfig)
	rabbitConn := messaging.NewRabbitMQ(driverConfig)
	chiRouter := chi.NewRouter()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stopSweeper, err := bootstrapTheEngine(ctx, config.Bootstrap{
		Router:         chiRouter,
		PostgresDB:     postgresDB,
		Redis:          redisClient,
		RabbitMQ:       rabbitConn,
		Logger:         zapLogger,
		DriverConfig:   driverConfig,
		InternalConfig: internalConfig,
	})
	if err != nil {
		bootstrapLog.Fatalf("Failed to bootstrap the engine: %v", err)
	}

	server := &http.Server{
		Addr:    internalConfig.App.Port,
		Handler: chiRouter,
	}

	go func() {
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			bootstrapLog.Fatalf("Server failed to start: %v", err)
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	<-c

	bootstrapLog.Println("Waiting for in-flight reconciliations to finish..")

	stopSweeper()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(),
		time.Second*time.Duration(internalConfig.App.ShutdownTimeout),
	)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		bootstrapLog.Fatalf("Server forced to shutdown: %v", err)
	}

	rabbitConn.Close()
	postgresDB.Close()
	redisClient.Close()

	bootstrapLog.Println("Engine exiting")
}

func bootstrapTheEngine(ctx context.Context, bootstrap config.Bootstrap) (stopSweeper func(), err error) {
	// Shared services
	redisRepository := sharedredis.NewRedisRepository(bootstrap.Redis)
	lockerService := locker.NewLockService(redisRepository, bootstrap.Logger)
	contentClient := content.NewContentClient(bootstrap.InternalConfig.Content.BaseUrl, bootstrap.Logger)

	publisher, err := lifecycleevents.NewPublisherService(bootstrap.RabbitMQ, bootstrap.InternalConfig, bootstrap.Logger)
	if err != nil {
		return nil, err
	}

	// Repositories
	questionnaireRepository := questionnaires.NewQuestionnairePostgresRepository(bootstrap.PostgresDB, bootstrap.Logger)
	probandRepository := probands.NewProbandPostgresRepository(bootstrap.PostgresDB, bootstrap.Logger)
	instanceRepository := instances.NewInstancePostgresRepository(bootstrap.PostgresDB, bootstrap.Logger)
	answerRepository := answers.NewAnswerPostgresRepository(bootstrap.PostgresDB, bootstrap.Logger)

	// Engine core
	calculator := schedule.NewCalculator(bootstrap.InternalConfig.Engine.LookAheadCycles)
	evaluator := condition.NewEvaluatorService(instanceRepository, answerRepository, bootstrap.Logger)
	queueService := queuebuilder.NewInstanceQueueService(redisRepository, bootstrap.Logger)
	reconcilerService := reconciler.NewReconcilerService(
		instanceRepository,
		probandRepository,
		calculator,
		evaluator,
		contentClient,
		queueService,
		publisher,
		bootstrap.InternalConfig,
		bootstrap.Logger,
	)

	// Event reactor
	reactorService := reactor.NewReactorService(
		questionnaireRepository,
		probandRepository,
		instanceRepository,
		reconcilerService,
		queueService,
		bootstrap.Logger,
	)
	consumer := reactor.NewConsumer(bootstrap.RabbitMQ, bootstrap.InternalConfig, reactorService, bootstrap.Logger)
	if err := consumer.Start(ctx); err != nil {
		return nil, err
	}
	changeFeed := reactor.NewAmqpChangeFeed(bootstrap.RabbitMQ, bootstrap.InternalConfig, bootstrap.Logger)
	if err := changeFeed.Subscribe(ctx, reactorService.HandleChange); err != nil {
		return nil, err
	}

	// Status transition sweep
	sweepWorker := sweeper.NewWorker(
		bootstrap.Logger,
		bootstrap.InternalConfig,
		lockerService,
		instanceRepository,
		queueService,
		publisher,
	)
	stopSweeper = sweepWorker.Start(ctx)

	healthController := controllers.NewHealthController(bootstrap.PostgresDB, bootstrap.Redis, bootstrap.RabbitMQ, bootstrap.Logger)
	routers.SetupRoutes(bootstrap.Router, healthController)

	return stopSweeper, nil
}
