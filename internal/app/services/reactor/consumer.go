package reactor

import (
	"context"
	"studyflow-service/internal/app/config"
	"studyflow-service/internal/pkg/constvars"
	"studyflow-service/internal/pkg/dto"
	"studyflow-service/internal/pkg/exceptions"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Consumer drains the proband events queue with a small worker pool. Delivery
// is at-least-once: transient failures are requeued, invalid payloads are
// dropped to avoid poison-message loops.
type Consumer struct {
	conn     *amqp.Connection
	cfg      *config.InternalConfig
	reactor  *reactorService
	validate *validator.Validate
	Log      *zap.Logger
}

func NewConsumer(conn *amqp.Connection, cfg *config.InternalConfig, reactor *reactorService, logger *zap.Logger) *Consumer {
	return &Consumer{
		conn:     conn,
		cfg:      cfg,
		reactor:  reactor,
		validate: validator.New(),
		Log:      logger,
	}
}

// Start declares the queue and launches the worker pool. It returns once the
// workers are running; they stop when ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	ch, err := c.conn.Channel()
	if err != nil {
		return exceptions.ErrQueueConsume(err)
	}

	queueName := c.cfg.Queue.ProbandEventsQueue
	_, err = ch.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // autoDelete
		false,     // exclusive
		false,     // noWait
		nil,       // args
	)
	if err != nil {
		return exceptions.ErrQueueConsume(err)
	}

	workerCount := c.cfg.Engine.WorkerCount
	if workerCount <= 0 {
		workerCount = 1
	}
	if err := ch.Qos(workerCount, 0, false); err != nil {
		return exceptions.ErrQueueConsume(err)
	}

	deliveries, err := ch.Consume(queueName, "", false, false, false, false, nil)
	if err != nil {
		return exceptions.ErrQueueConsume(err)
	}

	var wg sync.WaitGroup
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case delivery, ok := <-deliveries:
					if !ok {
						return
					}
					c.handleDelivery(ctx, delivery)
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		ch.Close()
	}()

	c.Log.Info("proband event consumer started",
		zap.String("queue", queueName),
		zap.Int("worker_count", workerCount),
	)
	return nil
}

func (c *Consumer) handleDelivery(ctx context.Context, delivery amqp.Delivery) {
	var message dto.ProbandEventMessage
	if err := json.Unmarshal(delivery.Body, &message); err != nil {
		c.Log.Warn("consumer dropping unparseable message", zap.Error(err))
		delivery.Nack(false, false)
		return
	}
	if err := c.validate.Struct(&message); err != nil {
		c.Log.Warn("consumer dropping invalid message",
			zap.String(constvars.LoggingEventTypeKey, message.Type),
			zap.Error(exceptions.ErrQueueMessageInvalid(err)),
		)
		delivery.Nack(false, false)
		return
	}

	if err := c.reactor.HandleProbandEvent(ctx, &message); err != nil {
		requeue := exceptions.IsTransient(err)
		c.Log.Error("consumer failed to handle proband event",
			zap.String(constvars.LoggingEventTypeKey, message.Type),
			zap.String(constvars.LoggingPseudonymKey, message.Pseudonym),
			zap.Bool("requeue", requeue),
			zap.Error(err),
		)
		delivery.Nack(false, requeue)
		return
	}
	delivery.Ack(false)
}
