package reactor

import (
	"context"
	"studyflow-service/internal/app/config"
	"studyflow-service/internal/app/contracts"
	"studyflow-service/internal/pkg/dto"
	"studyflow-service/internal/pkg/exceptions"

	"github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// amqpChangeFeed delivers row-change events from a durable queue. It is one
// possible adapter behind the ChangeFeed contract; a polling or CDC adapter
// could replace it without the reactor noticing.
type amqpChangeFeed struct {
	conn *amqp.Connection
	cfg  *config.InternalConfig
	Log  *zap.Logger
}

func NewAmqpChangeFeed(conn *amqp.Connection, cfg *config.InternalConfig, logger *zap.Logger) contracts.ChangeFeed {
	return &amqpChangeFeed{
		conn: conn,
		cfg:  cfg,
		Log:  logger,
	}
}

func (f *amqpChangeFeed) Subscribe(ctx context.Context, handler func(ctx context.Context, event *dto.ChangeEvent) error) error {
	ch, err := f.conn.Channel()
	if err != nil {
		return exceptions.ErrQueueConsume(err)
	}

	queueName := f.cfg.Queue.ChangeFeedQueue
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
	if err := ch.Qos(1, 0, false); err != nil {
		return exceptions.ErrQueueConsume(err)
	}

	deliveries, err := ch.Consume(queueName, "", false, false, false, false, nil)
	if err != nil {
		return exceptions.ErrQueueConsume(err)
	}

	go func() {
		defer ch.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case delivery, ok := <-deliveries:
				if !ok {
					return
				}
				f.handleDelivery(ctx, delivery, handler)
			}
		}
	}()

	f.Log.Info("change feed subscribed", zap.String("queue", queueName))
	return nil
}

func (f *amqpChangeFeed) handleDelivery(ctx context.Context, delivery amqp.Delivery, handler func(ctx context.Context, event *dto.ChangeEvent) error) {
	var event dto.ChangeEvent
	if err := json.Unmarshal(delivery.Body, &event); err != nil {
		f.Log.Warn("change feed dropping unparseable event", zap.Error(err))
		delivery.Nack(false, false)
		return
	}

	if err := handler(ctx, &event); err != nil {
		requeue := exceptions.IsTransient(err)
		f.Log.Error("change feed handler failed",
			zap.String("table", event.Table),
			zap.Bool("requeue", requeue),
			zap.Error(err),
		)
		delivery.Nack(false, requeue)
		return
	}
	delivery.Ack(false)
}
