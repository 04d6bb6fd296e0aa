package lifecycleevents

import (
	"context"
	"studyflow-service/internal/app/config"
	"studyflow-service/internal/app/contracts"
	"studyflow-service/internal/app/models"
	"studyflow-service/internal/pkg/constvars"
	"studyflow-service/internal/pkg/dto"
	"studyflow-service/internal/pkg/exceptions"
	"sync"

	"github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// publisherService emits lifecycle messages on a durable queue with publisher
// confirms, so an acked message survives a broker restart.
type publisherService struct {
	ch    *amqp.Channel
	queue string
	Log   *zap.Logger
	mu    sync.Mutex
}

var (
	publisherServiceInstance contracts.LifecycleEventPublisher
	oncePublisherService     sync.Once
	publisherInitErr         error
)

func NewPublisherService(conn *amqp.Connection, internalConfig *config.InternalConfig, logger *zap.Logger) (contracts.LifecycleEventPublisher, error) {
	oncePublisherService.Do(func() {
		ch, err := conn.Channel()
		if err != nil {
			publisherInitErr = exceptions.ErrQueuePublish(err)
			return
		}
		_, err = ch.QueueDeclare(
			internalConfig.Queue.LifecycleEventsQueue, // name
			true,  // durable
			false, // autoDelete
			false, // exclusive
			false, // noWait
			nil,   // args
		)
		if err != nil {
			publisherInitErr = exceptions.ErrQueuePublish(err)
			return
		}
		if err := ch.Confirm(false); err != nil {
			publisherInitErr = exceptions.ErrQueuePublish(err)
			return
		}
		publisherServiceInstance = &publisherService{
			ch:    ch,
			queue: internalConfig.Queue.LifecycleEventsQueue,
			Log:   logger,
		}
	})
	return publisherServiceInstance, publisherInitErr
}

func (s *publisherService) PublishActivated(ctx context.Context, instance *models.QuestionnaireInstance) error {
	return s.publish(ctx, constvars.EventInstanceActivated, instance)
}

func (s *publisherService) PublishExpired(ctx context.Context, instance *models.QuestionnaireInstance) error {
	return s.publish(ctx, constvars.EventInstanceExpired, instance)
}

func (s *publisherService) publish(ctx context.Context, eventType string, instance *models.QuestionnaireInstance) error {
	message := dto.InstanceEventMessage{
		Type:       eventType,
		InstanceID: instance.ID,
		StudyID:    instance.StudyID,
		Pseudonym:  instance.Pseudonym,
		Status:     string(instance.Status),
		Questionnaire: dto.QuestionnaireReference{
			ID:   instance.QuestionnaireID,
			Name: instance.QuestionnaireName,
		},
	}

	body, err := json.Marshal(message)
	if err != nil {
		return exceptions.ErrCannotMarshalJSON(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	confirmation, err := s.ch.PublishWithDeferredConfirmWithContext(ctx, "", s.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		return exceptions.ErrQueuePublish(err)
	}
	if confirmation != nil {
		if ok, err := confirmation.WaitContext(ctx); err != nil || !ok {
			return exceptions.ErrQueuePublish(err)
		}
	}

	s.Log.Info("publisherService.publish lifecycle event sent",
		zap.String(constvars.LoggingEventTypeKey, eventType),
		zap.Int(constvars.LoggingInstanceIDKey, instance.ID),
		zap.String(constvars.LoggingPseudonymKey, instance.Pseudonym),
	)
	return nil
}
