package reconciler

import (
	"context"
	"studyflow-service/internal/app/config"
	"studyflow-service/internal/app/contracts"
	"studyflow-service/internal/app/models"
	"studyflow-service/internal/app/services/schedule"
	"studyflow-service/internal/pkg/constvars"
	"studyflow-service/internal/pkg/dto"
	"studyflow-service/internal/pkg/exceptions"
	"sync"
	"time"

	"go.uber.org/zap"
)

type reconcilerService struct {
	instanceRepository contracts.InstanceRepository
	probandRepository  contracts.ProbandRepository
	calculator         *schedule.Calculator
	evaluator          contracts.ConditionEvaluator
	contentClient      contracts.InstanceContentClient
	queueService       contracts.InstanceQueueService
	publisher          contracts.LifecycleEventPublisher
	internalConfig     *config.InternalConfig
	Log                *zap.Logger
	now                func() time.Time
}

var (
	reconcilerServiceInstance contracts.ReconcilerService
	onceReconcilerService     sync.Once
)

func NewReconcilerService(
	instanceRepository contracts.InstanceRepository,
	probandRepository contracts.ProbandRepository,
	calculator *schedule.Calculator,
	evaluator contracts.ConditionEvaluator,
	contentClient contracts.InstanceContentClient,
	queueService contracts.InstanceQueueService,
	publisher contracts.LifecycleEventPublisher,
	internalConfig *config.InternalConfig,
	logger *zap.Logger,
) contracts.ReconcilerService {
	onceReconcilerService.Do(func() {
		instance := &reconcilerService{
			instanceRepository: instanceRepository,
			probandRepository:  probandRepository,
			calculator:         calculator,
			evaluator:          evaluator,
			contentClient:      contentClient,
			queueService:       queueService,
			publisher:          publisher,
			internalConfig:     internalConfig,
			Log:                logger,
			now:                time.Now,
		}
		reconcilerServiceInstance = instance
	})
	return reconcilerServiceInstance
}

func (s *reconcilerService) ReconcileScope(ctx context.Context, def *models.QuestionnaireDefinition, proband *models.Proband) error {
	maxRetries := s.internalConfig.Engine.ReconcileMaxRetries
	backoff := time.Duration(s.internalConfig.Engine.ReconcileRetryBackoffInMs) * time.Millisecond

	var err error
	for attempt := 0; ; attempt++ {
		err = s.reconcileOnce(ctx, def, proband)
		if err == nil || !exceptions.IsTransient(err) || attempt >= maxRetries {
			break
		}
		s.Log.Warn("reconcilerService.ReconcileScope retrying after transient error",
			zap.Int(constvars.LoggingQuestionnaireKey, def.ID),
			zap.String(constvars.LoggingPseudonymKey, proband.Pseudonym),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return err
		case <-time.After(backoff * time.Duration(attempt+1)):
		}
	}
	return err
}

func (s *reconcilerService) ReconcileStudy(ctx context.Context, def *models.QuestionnaireDefinition) error {
	probandList, err := s.probandRepository.FindEligibleByStudy(ctx, def.StudyID)
	if err != nil {
		return err
	}

	s.Log.Info("reconcilerService.ReconcileStudy fanning out",
		zap.Int(constvars.LoggingQuestionnaireKey, def.ID),
		zap.String(constvars.LoggingStudyIDKey, def.StudyID),
		zap.Int("proband_count", len(probandList)),
	)

	// Each proband scope takes its own lock; one failed scope must not stall
	// the remaining fan-out.
	var lastErr error
	for i := range probandList {
		if err := s.ReconcileScope(ctx, def, &probandList[i]); err != nil {
			s.Log.Error("reconcilerService.ReconcileStudy scope failed",
				zap.Int(constvars.LoggingQuestionnaireKey, def.ID),
				zap.String(constvars.LoggingPseudonymKey, probandList[i].Pseudonym),
				zap.Error(err),
			)
			lastErr = err
		}
	}
	return lastErr
}

func (s *reconcilerService) PurgeProband(ctx context.Context, pseudonym string) error {
	deleted, err := s.instanceRepository.DeleteByPseudonym(ctx, pseudonym)
	if err != nil {
		return err
	}
	s.Log.Info("reconcilerService.PurgeProband removed instances",
		zap.String(constvars.LoggingPseudonymKey, pseudonym),
		zap.Int(constvars.LoggingDeletedCountKey, deleted),
	)
	return s.queueService.Clear(ctx, pseudonym)
}

func (s *reconcilerService) reconcileOnce(ctx context.Context, def *models.QuestionnaireDefinition, proband *models.Proband) error {
	if !def.HasValidCycle() {
		// Contract violation: skip the scope entirely rather than risk
		// cascading deletion of valid history.
		s.Log.Error("reconcilerService.reconcileOnce skipping scope with malformed definition",
			zap.Int(constvars.LoggingQuestionnaireKey, def.ID),
			zap.Int(constvars.LoggingVersionKey, def.Version),
			zap.Error(exceptions.ErrDefinitionMalformed("cycle descriptor incomplete for unit "+string(def.CycleUnit))),
		)
		return nil
	}

	now := s.now()
	target, err := s.targetSet(ctx, def, proband, now)
	if err != nil {
		return err
	}

	tx, err := s.instanceRepository.BeginScopeTx(ctx, def.ID, proband.Pseudonym)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	persisted, err := tx.FindForScope(ctx)
	if err != nil {
		return err
	}

	var plan diffPlan
	if def.CycleUnit == models.CycleUnitSpontan && len(target) > 0 {
		plan = planSpontan(def, persisted, now)
	} else {
		plan = planPeriodic(def, persisted, target)
	}

	created, err := s.applyPlan(ctx, tx, def, proband, plan, now)
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	s.Log.Info("reconcilerService.reconcileOnce committed",
		zap.Int(constvars.LoggingQuestionnaireKey, def.ID),
		zap.Int(constvars.LoggingVersionKey, def.Version),
		zap.String(constvars.LoggingPseudonymKey, proband.Pseudonym),
		zap.Int(constvars.LoggingCreatedCountKey, len(plan.create)),
		zap.Int(constvars.LoggingDeletedCountKey, len(plan.remove)),
	)

	s.afterCommit(ctx, plan, created)
	return nil
}

// targetSet applies the gates of the reconciliation contract: an inactive
// definition, an ineligible proband, missing compliance or an unsatisfied
// condition all collapse the target to empty, which deletes every unanswered
// instance while released history stays untouched.
func (s *reconcilerService) targetSet(ctx context.Context, def *models.QuestionnaireDefinition, proband *models.Proband, now time.Time) ([]schedule.CyclePoint, error) {
	if !def.Active || !proband.IsEligible() {
		return nil, nil
	}
	if def.ComplianceNeeded && !proband.ComplianceSamples {
		return nil, nil
	}

	result, err := s.evaluator.Evaluate(ctx, def.Condition, proband.Pseudonym)
	if err != nil {
		return nil, err
	}
	if result != contracts.ConditionSatisfied {
		return nil, nil
	}

	anchor, anchored := anchorFor(def, proband, now)
	if !anchored {
		return nil, nil
	}
	return s.calculator.TargetSet(def, anchor, now), nil
}

// anchorFor picks the schedule anchor: the proband's first login for
// per-proband definitions, the authoring date for research-team ones. A
// spontaneous schedule for a not-yet-anchored proband starts at "now".
func anchorFor(def *models.QuestionnaireDefinition, proband *models.Proband, now time.Time) (time.Time, bool) {
	if def.Type == models.QuestionnaireTypeForResearchTeam {
		return def.CreatedAt, true
	}
	if proband.FirstLoggedInAt != nil {
		return *proband.FirstLoggedInAt, true
	}
	if def.CycleUnit == models.CycleUnitSpontan {
		return now, true
	}
	return time.Time{}, false
}

type diffPlan struct {
	create []models.QuestionnaireInstance
	remove []models.QuestionnaireInstance
}

// planPeriodic diffs the target set against the persisted rows. Rows with a
// release are never removed; unanswered rows of a superseded version are
// replaced under the current version at the same cycle.
func planPeriodic(def *models.QuestionnaireDefinition, persisted []models.QuestionnaireInstance, target []schedule.CyclePoint) diffPlan {
	var plan diffPlan

	existingCycles := make(map[int]bool)
	for _, row := range persisted {
		if row.QuestionnaireVersion != def.Version {
			if row.ReleaseVersion == 0 {
				plan.remove = append(plan.remove, row)
			}
			// Released rows of a superseded version stay untouched; the
			// current version's cycle is freshly created below.
			continue
		}
		existingCycles[row.Cycle] = true
	}

	targetCycles := make(map[int]bool, len(target))
	for _, point := range target {
		targetCycles[point.Cycle] = true
		if !existingCycles[point.Cycle] {
			plan.create = append(plan.create, newInstance(def, point))
		}
	}

	for _, row := range persisted {
		if row.ReleaseVersion >= 1 || row.QuestionnaireVersion != def.Version {
			continue
		}
		if !targetCycles[row.Cycle] {
			plan.remove = append(plan.remove, row)
		}
	}
	return plan
}

// planSpontan keeps exactly one unanswered instance open. A release appends
// the next cycle; a version bump replaces the unanswered instance in place.
func planSpontan(def *models.QuestionnaireDefinition, persisted []models.QuestionnaireInstance, now time.Time) diffPlan {
	var plan diffPlan

	maxCycle := 0
	openExists := false
	for _, row := range persisted {
		if row.Cycle > maxCycle {
			maxCycle = row.Cycle
		}
		if row.ReleaseVersion >= 1 {
			continue
		}
		if row.QuestionnaireVersion != def.Version {
			plan.remove = append(plan.remove, row)
			recreated := newInstance(def, schedule.CyclePoint{Cycle: row.Cycle, DateOfIssue: row.DateOfIssue})
			plan.create = append(plan.create, recreated)
			openExists = true
			continue
		}
		openExists = true
	}

	if !openExists {
		plan.create = append(plan.create, newInstance(def, schedule.CyclePoint{Cycle: maxCycle + 1, DateOfIssue: now}))
	}
	return plan
}

func newInstance(def *models.QuestionnaireDefinition, point schedule.CyclePoint) models.QuestionnaireInstance {
	return models.QuestionnaireInstance{
		QuestionnaireID:      def.ID,
		QuestionnaireVersion: def.Version,
		QuestionnaireName:    def.Name,
		StudyID:              def.StudyID,
		Cycle:                point.Cycle,
		DateOfIssue:          point.DateOfIssue,
		Status:               models.InstanceStatusInactive,
		ReleaseVersion:       0,
	}
}

// applyPlan executes the diff inside the scope transaction. Instances that are
// created already due come out active immediately so a proband who anchors
// late sees every overdue questionnaire right away.
func (s *reconcilerService) applyPlan(ctx context.Context, tx contracts.InstanceScopeTx, def *models.QuestionnaireDefinition, proband *models.Proband, plan diffPlan, now time.Time) ([]models.QuestionnaireInstance, error) {
	for _, row := range plan.remove {
		if err := tx.Delete(ctx, row.ID); err != nil {
			return nil, err
		}
	}

	created := make([]models.QuestionnaireInstance, 0, len(plan.create))
	for _, instance := range plan.create {
		instance.Pseudonym = proband.Pseudonym
		instance.SortOrder = def.SortOrder
		if def.CycleUnit != models.CycleUnitSpontan && !instance.DateOfIssue.After(now) {
			instance.Status = models.InstanceStatusActive
		}
		if def.CycleUnit == models.CycleUnitSpontan {
			instance.Status = models.InstanceStatusActive
		}

		id, err := tx.Create(ctx, &instance)
		if err != nil {
			return nil, err
		}
		if id == 0 {
			// Duplicate cycle from a concurrent trigger; treated as a no-op.
			s.Log.Warn("reconcilerService.applyPlan duplicate cycle create was a no-op",
				zap.Int(constvars.LoggingQuestionnaireKey, def.ID),
				zap.String(constvars.LoggingPseudonymKey, proband.Pseudonym),
				zap.Int(constvars.LoggingCycleKey, instance.Cycle),
			)
			continue
		}
		instance.ID = id
		created = append(created, instance)
	}
	return created, nil
}

// afterCommit performs the non-transactional side effects: the batch create
// request to the content collaborator, presentation-queue upkeep, and
// activation events for instances born active. Failures here are logged and
// absorbed; the next reconciliation or sweep repairs the difference.
func (s *reconcilerService) afterCommit(ctx context.Context, plan diffPlan, created []models.QuestionnaireInstance) {
	if len(created) > 0 {
		batch := make([]dto.CreateInstanceRequest, 0, len(created))
		for _, instance := range created {
			batch = append(batch, dto.CreateInstanceRequest{
				QuestionnaireID:      instance.QuestionnaireID,
				QuestionnaireVersion: instance.QuestionnaireVersion,
				QuestionnaireName:    instance.QuestionnaireName,
				StudyID:              instance.StudyID,
				Pseudonym:            instance.Pseudonym,
				Cycle:                instance.Cycle,
				DateOfIssue:          instance.DateOfIssue,
				Status:               string(instance.Status),
				SortOrder:            instance.SortOrder,
			})
		}
		if _, err := s.contentClient.CreateInstances(ctx, batch); err != nil {
			s.Log.Error("reconcilerService.afterCommit content create failed", zap.Error(err))
		}
	}

	for _, instance := range created {
		if instance.Status != models.InstanceStatusActive {
			continue
		}
		activated := instance
		if err := s.queueService.Add(ctx, &activated); err != nil {
			s.Log.Error("reconcilerService.afterCommit queue add failed",
				zap.Int(constvars.LoggingInstanceIDKey, activated.ID), zap.Error(err))
		}
		if err := s.publisher.PublishActivated(ctx, &activated); err != nil {
			s.Log.Error("reconcilerService.afterCommit activation publish failed",
				zap.Int(constvars.LoggingInstanceIDKey, activated.ID), zap.Error(err))
		}
	}

	for _, removed := range plan.remove {
		if removed.Status != models.InstanceStatusActive && removed.Status != models.InstanceStatusInProgress {
			continue
		}
		deleted := removed
		if err := s.queueService.Remove(ctx, &deleted); err != nil {
			s.Log.Error("reconcilerService.afterCommit queue remove failed",
				zap.Int(constvars.LoggingInstanceIDKey, deleted.ID), zap.Error(err))
		}
	}
}
