package sweeper

import (
	"context"
	"studyflow-service/internal/app/config"
	"studyflow-service/internal/app/contracts"
	"studyflow-service/internal/app/models"
	"studyflow-service/internal/pkg/constvars"
	"time"

	"go.uber.org/zap"
)

// Worker is the periodic status-transition sweep. It activates instances whose
// issue date has arrived and expires overdue ones. It never creates or deletes
// rows, which is why it may run concurrently with event-driven reconciliation
// without coordination beyond its own singleton lock.
type Worker struct {
	log          *zap.Logger
	cfg          *config.InternalConfig
	locker       contracts.LockerService
	instanceRepo contracts.InstanceRepository
	queueService contracts.InstanceQueueService
	publisher    contracts.LifecycleEventPublisher
	stop         chan struct{}
	now          func() time.Time
}

func NewWorker(
	log *zap.Logger,
	cfg *config.InternalConfig,
	lockerSvc contracts.LockerService,
	instanceRepo contracts.InstanceRepository,
	queueService contracts.InstanceQueueService,
	publisher contracts.LifecycleEventPublisher,
) *Worker {
	return &Worker{
		log:          log,
		cfg:          cfg,
		locker:       lockerSvc,
		instanceRepo: instanceRepo,
		queueService: queueService,
		publisher:    publisher,
		stop:         make(chan struct{}),
		now:          time.Now,
	}
}

// Start begins the ticker loop. It returns a stop function to halt execution.
func (w *Worker) Start(ctx context.Context) (stop func()) {
	interval := time.Duration(w.cfg.Engine.SweepIntervalInMinutes) * time.Minute
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	stopped := make(chan struct{})

	w.log.Info("sweeper worker started", zap.Duration("interval", interval))

	go func() {
		defer close(stopped)
		for {
			select {
			case <-ctx.Done():
				ticker.Stop()
				return
			case <-w.stop:
				ticker.Stop()
				return
			case <-ticker.C:
				w.RunOnce(ctx)
			}
		}
	}()

	return func() {
		close(w.stop)
	}
}

// RunOnce executes one sweep tick. All state needed to decide activation and
// expiration is read fresh from the store; nothing carries over between ticks.
func (w *Worker) RunOnce(ctx context.Context) {
	now := w.now()

	ttl := time.Duration(w.cfg.Engine.SweepIntervalInMinutes)*time.Minute - time.Second
	if ttl < time.Second {
		ttl = time.Second
	}
	acquired, lockVal, err := w.locker.TryLock(ctx, constvars.RedisKeySweeperLock, ttl)
	if err != nil {
		w.log.Warn("sweeper lock attempt failed", zap.Error(err))
		return
	}
	if !acquired {
		w.log.Debug("sweeper lock not acquired; another instance is running")
		return
	}
	defer func() {
		if err := w.locker.Unlock(ctx, constvars.RedisKeySweeperLock, lockVal); err != nil {
			w.log.Error("sweeper unlock failed", zap.Error(err))
		}
	}()

	w.activate(ctx, now)
	w.expire(ctx, now)
}

func (w *Worker) activate(ctx context.Context, now time.Time) {
	activated, err := w.instanceRepo.ActivateDue(ctx, now)
	if err != nil {
		w.log.Error("sweeper activation query failed", zap.Error(err))
		return
	}
	if len(activated) == 0 {
		return
	}

	w.log.Info("sweeper activated due instances", zap.Int("count", len(activated)))
	for i := range activated {
		instance := &activated[i]
		if err := w.queueService.Add(ctx, instance); err != nil {
			w.log.Error("sweeper queue add failed",
				zap.Int(constvars.LoggingInstanceIDKey, instance.ID), zap.Error(err))
		}
		if err := w.publisher.PublishActivated(ctx, instance); err != nil {
			w.log.Error("sweeper activation publish failed",
				zap.Int(constvars.LoggingInstanceIDKey, instance.ID), zap.Error(err))
		}
	}
}

func (w *Worker) expire(ctx context.Context, now time.Time) {
	expired, err := w.instanceRepo.ExpireOverdue(ctx, now)
	if err != nil {
		w.log.Error("sweeper expiration query failed", zap.Error(err))
		return
	}
	if len(expired) == 0 {
		return
	}

	w.log.Info("sweeper expired overdue instances", zap.Int("count", len(expired)))
	for i := range expired {
		instance := &expired[i]
		instance.Status = models.InstanceStatusExpired
		if err := w.queueService.Remove(ctx, instance); err != nil {
			w.log.Error("sweeper queue remove failed",
				zap.Int(constvars.LoggingInstanceIDKey, instance.ID), zap.Error(err))
		}
		if err := w.publisher.PublishExpired(ctx, instance); err != nil {
			w.log.Error("sweeper expiration publish failed",
				zap.Int(constvars.LoggingInstanceIDKey, instance.ID), zap.Error(err))
		}
	}
}
