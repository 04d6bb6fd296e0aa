package queuebuilder

import (
	"context"
	"strconv"
	"studyflow-service/internal/app/contracts"
	"studyflow-service/internal/app/models"
	"studyflow-service/internal/pkg/constvars"
	"sync"

	"go.uber.org/zap"
)

// instanceQueueService keeps one redis sorted set per proband holding the ids
// of currently presentable instances. The score orders entries by the
// definition's sortOrder first and the issue date second, so the presentation
// order is stable across restarts and independent of creation order.
type instanceQueueService struct {
	redisRepo contracts.RedisRepository
	Log       *zap.Logger
}

var (
	instanceQueueServiceInstance contracts.InstanceQueueService
	onceInstanceQueueService     sync.Once
)

func NewInstanceQueueService(repo contracts.RedisRepository, logger *zap.Logger) contracts.InstanceQueueService {
	onceInstanceQueueService.Do(func() {
		instance := &instanceQueueService{
			redisRepo: repo,
			Log:       logger,
		}
		instanceQueueServiceInstance = instance
	})
	return instanceQueueServiceInstance
}

func queueKey(pseudonym string) string {
	return constvars.RedisKeyInstanceQueuePrefix + pseudonym
}

// score packs (sortOrder, dateOfIssue) into one float; issue dates fit well
// below the sortOrder step of 1e12 seconds.
func score(instance *models.QuestionnaireInstance) float64 {
	return float64(instance.SortOrder)*1e12 + float64(instance.DateOfIssue.Unix())
}

func (s *instanceQueueService) Add(ctx context.Context, instance *models.QuestionnaireInstance) error {
	err := s.redisRepo.AddToSortedSet(ctx, queueKey(instance.Pseudonym), score(instance), strconv.Itoa(instance.ID))
	if err != nil {
		s.Log.Error("instanceQueueService.Add failed",
			zap.String(constvars.LoggingPseudonymKey, instance.Pseudonym),
			zap.Int(constvars.LoggingInstanceIDKey, instance.ID),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (s *instanceQueueService) Remove(ctx context.Context, instance *models.QuestionnaireInstance) error {
	err := s.redisRepo.RemoveFromSortedSet(ctx, queueKey(instance.Pseudonym), strconv.Itoa(instance.ID))
	if err != nil {
		s.Log.Error("instanceQueueService.Remove failed",
			zap.String(constvars.LoggingPseudonymKey, instance.Pseudonym),
			zap.Int(constvars.LoggingInstanceIDKey, instance.ID),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (s *instanceQueueService) List(ctx context.Context, pseudonym string) ([]string, error) {
	return s.redisRepo.GetSortedSetMembers(ctx, queueKey(pseudonym))
}

func (s *instanceQueueService) Clear(ctx context.Context, pseudonym string) error {
	return s.redisRepo.Delete(ctx, queueKey(pseudonym))
}
