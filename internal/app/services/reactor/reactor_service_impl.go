package reactor

import (
	"context"
	"studyflow-service/internal/app/contracts"
	"studyflow-service/internal/app/models"
	"studyflow-service/internal/pkg/constvars"
	"studyflow-service/internal/pkg/dto"
	"studyflow-service/internal/pkg/exceptions"
	"sync"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// reactorService resolves inbound events to reconciliation scopes. Handling is
// at-least-once; the reconciler's idempotence absorbs duplicate delivery.
type reactorService struct {
	questionnaireRepo contracts.QuestionnaireRepository
	probandRepo       contracts.ProbandRepository
	instanceRepo      contracts.InstanceRepository
	reconciler        contracts.ReconcilerService
	queueService      contracts.InstanceQueueService
	Log               *zap.Logger
}

var (
	reactorServiceInstance *reactorService
	onceReactorService     sync.Once
)

func NewReactorService(
	questionnaireRepo contracts.QuestionnaireRepository,
	probandRepo contracts.ProbandRepository,
	instanceRepo contracts.InstanceRepository,
	reconciler contracts.ReconcilerService,
	queueService contracts.InstanceQueueService,
	logger *zap.Logger,
) *reactorService {
	onceReactorService.Do(func() {
		reactorServiceInstance = &reactorService{
			questionnaireRepo: questionnaireRepo,
			probandRepo:       probandRepo,
			instanceRepo:      instanceRepo,
			reconciler:        reconciler,
			queueService:      queueService,
			Log:               logger,
		}
	})
	return reactorServiceInstance
}

// HandleProbandEvent reacts to queue messages about the proband account
// lifecycle. Created and logged-in probands get every definition of their
// study reconciled against them; deleted probands get their instances purged.
func (s *reactorService) HandleProbandEvent(ctx context.Context, message *dto.ProbandEventMessage) error {
	s.Log.Info("reactorService.HandleProbandEvent called",
		zap.String(constvars.LoggingEventTypeKey, message.Type),
		zap.String(constvars.LoggingPseudonymKey, message.Pseudonym),
	)

	if message.Type == constvars.EventProbandDeleted {
		return s.reconciler.PurgeProband(ctx, message.Pseudonym)
	}

	proband, err := s.probandRepo.FindByPseudonym(ctx, message.Pseudonym)
	if err != nil {
		return err
	}
	if proband == nil {
		s.Log.Warn("reactorService.HandleProbandEvent unknown pseudonym, dropping event",
			zap.String(constvars.LoggingPseudonymKey, message.Pseudonym),
		)
		return nil
	}
	return s.reconcileAllDefinitionsForProband(ctx, proband)
}

// HandleChange reacts to one change-feed event carrying row snapshots.
func (s *reactorService) HandleChange(ctx context.Context, event *dto.ChangeEvent) error {
	ctx = context.WithValue(ctx, constvars.CONTEXT_EVENT_ID_KEY, event.ID)
	s.Log.Info("reactorService.HandleChange called",
		zap.String(constvars.LoggingEventIDKey, event.ID),
		zap.String("table", event.Table),
		zap.String("action", event.Action),
	)

	switch event.Table {
	case constvars.ChangeFeedTableQuestionnaires:
		return s.handleQuestionnaireChange(ctx, event)
	case constvars.ChangeFeedTableProbands:
		return s.handleProbandChange(ctx, event)
	case constvars.ChangeFeedTableAnswers:
		return s.handleAnswerChange(ctx, event)
	case constvars.ChangeFeedTableInstances:
		return s.handleInstanceChange(ctx, event)
	default:
		s.Log.Warn("reactorService.HandleChange ignoring unknown table",
			zap.String("table", event.Table),
		)
		return nil
	}
}

type questionnaireSnapshot struct {
	ID      int    `json:"id"`
	Version int    `json:"version"`
	StudyID string `json:"study_id"`
}

type probandSnapshot struct {
	Pseudonym string `json:"pseudonym"`
	Status    string `json:"status"`
}

type instanceSnapshot struct {
	ID              int    `json:"id"`
	QuestionnaireID int    `json:"questionnaire_id"`
	Pseudonym       string `json:"pseudonym"`
	ReleaseVersion  int    `json:"release_version"`
}

type answerSnapshot struct {
	QuestionnaireInstanceID int `json:"questionnaire_instance_id"`
}

func (s *reactorService) handleQuestionnaireChange(ctx context.Context, event *dto.ChangeEvent) error {
	var snapshot questionnaireSnapshot
	if err := json.Unmarshal(event.After, &snapshot); err != nil {
		return exceptions.ErrCannotUnmarshalJSON(err)
	}

	def, err := s.questionnaireRepo.FindLatestVersion(ctx, snapshot.ID)
	if err != nil {
		return err
	}
	if def == nil {
		s.Log.Warn("reactorService.handleQuestionnaireChange definition vanished",
			zap.Int(constvars.LoggingQuestionnaireKey, snapshot.ID),
		)
		return nil
	}
	return s.reconciler.ReconcileStudy(ctx, def)
}

func (s *reactorService) handleProbandChange(ctx context.Context, event *dto.ChangeEvent) error {
	row := event.After
	if event.Action == "delete" {
		// Delete notifications carry the row only in the before snapshot.
		row = event.Before
	}
	var snapshot probandSnapshot
	if err := json.Unmarshal(row, &snapshot); err != nil {
		return exceptions.ErrCannotUnmarshalJSON(err)
	}

	if event.Action == "delete" || snapshot.Status == string(models.ProbandStatusDeleted) {
		return s.reconciler.PurgeProband(ctx, snapshot.Pseudonym)
	}

	proband, err := s.probandRepo.FindByPseudonym(ctx, snapshot.Pseudonym)
	if err != nil {
		return err
	}
	if proband == nil {
		return nil
	}
	return s.reconcileAllDefinitionsForProband(ctx, proband)
}

// handleAnswerChange resolves an answer row to its instance and fans out to
// every definition whose condition targets the answered questionnaire.
func (s *reactorService) handleAnswerChange(ctx context.Context, event *dto.ChangeEvent) error {
	var snapshot answerSnapshot
	if err := json.Unmarshal(event.After, &snapshot); err != nil {
		return exceptions.ErrCannotUnmarshalJSON(err)
	}

	instance, err := s.instanceRepo.FindByID(ctx, snapshot.QuestionnaireInstanceID)
	if err != nil {
		return err
	}
	if instance == nil {
		return nil
	}
	return s.reconcileDependents(ctx, instance.QuestionnaireID, instance.Pseudonym)
}

// handleInstanceChange reacts to releases: a releaseVersion advance may both
// append the next spontaneous cycle and flip conditions gated on the answers.
func (s *reactorService) handleInstanceChange(ctx context.Context, event *dto.ChangeEvent) error {
	var after instanceSnapshot
	if err := json.Unmarshal(event.After, &after); err != nil {
		return exceptions.ErrCannotUnmarshalJSON(err)
	}
	var before instanceSnapshot
	if len(event.Before) > 0 {
		if err := json.Unmarshal(event.Before, &before); err != nil {
			return exceptions.ErrCannotUnmarshalJSON(err)
		}
	}
	if after.ReleaseVersion == before.ReleaseVersion {
		// Status-only transition; nothing downstream depends on it.
		return nil
	}

	// A released instance is no longer presentable.
	released := &models.QuestionnaireInstance{ID: after.ID, Pseudonym: after.Pseudonym}
	if err := s.queueService.Remove(ctx, released); err != nil {
		s.Log.Error("reactorService.handleInstanceChange queue removal failed",
			zap.Int(constvars.LoggingInstanceIDKey, after.ID),
			zap.Error(err),
		)
	}
	return s.reconcileDependents(ctx, after.QuestionnaireID, after.Pseudonym)
}

// reconcileDependents reconciles the released questionnaire's own scope (for
// spontaneous append and internal conditions) and every definition whose
// condition targets it. Each dependent scope takes its own lock.
func (s *reactorService) reconcileDependents(ctx context.Context, questionnaireID int, pseudonym string) error {
	proband, err := s.probandRepo.FindByPseudonym(ctx, pseudonym)
	if err != nil {
		return err
	}
	if proband == nil {
		return nil
	}

	var lastErr error
	ownDef, err := s.questionnaireRepo.FindLatestVersion(ctx, questionnaireID)
	if err != nil {
		lastErr = err
	} else if ownDef != nil {
		if err := s.reconciler.ReconcileScope(ctx, ownDef, proband); err != nil {
			lastErr = err
		}
	}

	conditions, err := s.questionnaireRepo.FindConditionsTargeting(ctx, questionnaireID)
	if err != nil {
		return err
	}
	for _, cond := range conditions {
		if cond.QuestionnaireID == questionnaireID {
			// Internal condition; its scope was reconciled above.
			continue
		}
		dependentDef, err := s.questionnaireRepo.FindLatestVersion(ctx, cond.QuestionnaireID)
		if err != nil {
			lastErr = err
			continue
		}
		if dependentDef == nil {
			s.Log.Warn("reactorService.reconcileDependents condition references missing definition",
				zap.Int(constvars.LoggingQuestionnaireKey, cond.QuestionnaireID),
			)
			continue
		}
		if err := s.reconciler.ReconcileScope(ctx, dependentDef, proband); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

func (s *reactorService) reconcileAllDefinitionsForProband(ctx context.Context, proband *models.Proband) error {
	defs, err := s.questionnaireRepo.FindLatestByStudy(ctx, proband.StudyID)
	if err != nil {
		return err
	}

	var lastErr error
	for i := range defs {
		if err := s.reconciler.ReconcileScope(ctx, &defs[i], proband); err != nil {
			lastErr = err
		}
	}
	return lastErr
}
