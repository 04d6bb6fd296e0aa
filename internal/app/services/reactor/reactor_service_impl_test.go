package reactor

import (
	"context"
	"studyflow-service/internal/app/contracts"
	"studyflow-service/internal/app/models"
	"studyflow-service/internal/pkg/constvars"
	"studyflow-service/internal/pkg/dto"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeQuestionnaireRepo struct {
	latest     map[int]*models.QuestionnaireDefinition
	byStudy    map[string][]models.QuestionnaireDefinition
	conditions map[int][]models.Condition
}

func (r *fakeQuestionnaireRepo) FindLatestVersion(ctx context.Context, questionnaireID int) (*models.QuestionnaireDefinition, error) {
	return r.latest[questionnaireID], nil
}

func (r *fakeQuestionnaireRepo) FindByIDAndVersion(ctx context.Context, questionnaireID, version int) (*models.QuestionnaireDefinition, error) {
	return r.latest[questionnaireID], nil
}

func (r *fakeQuestionnaireRepo) FindLatestByStudy(ctx context.Context, studyID string) ([]models.QuestionnaireDefinition, error) {
	return r.byStudy[studyID], nil
}

func (r *fakeQuestionnaireRepo) FindConditionsTargeting(ctx context.Context, questionnaireID int) ([]models.Condition, error) {
	return r.conditions[questionnaireID], nil
}

type fakeProbandRepo struct {
	probands map[string]*models.Proband
}

func (r *fakeProbandRepo) FindByPseudonym(ctx context.Context, pseudonym string) (*models.Proband, error) {
	return r.probands[pseudonym], nil
}

func (r *fakeProbandRepo) FindEligibleByStudy(ctx context.Context, studyID string) ([]models.Proband, error) {
	return nil, nil
}

type fakeInstanceLookup struct {
	byID map[int]*models.QuestionnaireInstance
}

func (r *fakeInstanceLookup) BeginScopeTx(ctx context.Context, questionnaireID int, pseudonym string) (contracts.InstanceScopeTx, error) {
	return nil, nil
}

func (r *fakeInstanceLookup) ActivateDue(ctx context.Context, now time.Time) ([]models.QuestionnaireInstance, error) {
	return nil, nil
}

func (r *fakeInstanceLookup) ExpireOverdue(ctx context.Context, now time.Time) ([]models.QuestionnaireInstance, error) {
	return nil, nil
}

func (r *fakeInstanceLookup) FindLatestReleased(ctx context.Context, questionnaireID int, pseudonym string) (*models.QuestionnaireInstance, error) {
	return nil, nil
}

func (r *fakeInstanceLookup) FindByID(ctx context.Context, instanceID int) (*models.QuestionnaireInstance, error) {
	return r.byID[instanceID], nil
}

func (r *fakeInstanceLookup) DeleteByPseudonym(ctx context.Context, pseudonym string) (int, error) {
	return 0, nil
}

type fakeQueue struct {
	removed []int
}

func (f *fakeQueue) Add(ctx context.Context, instance *models.QuestionnaireInstance) error {
	return nil
}

func (f *fakeQueue) Remove(ctx context.Context, instance *models.QuestionnaireInstance) error {
	f.removed = append(f.removed, instance.ID)
	return nil
}

func (f *fakeQueue) List(ctx context.Context, pseudonym string) ([]string, error) {
	return nil, nil
}

func (f *fakeQueue) Clear(ctx context.Context, pseudonym string) error {
	return nil
}

type scopeCall struct {
	questionnaireID int
	pseudonym       string
}

type fakeReconciler struct {
	scopes  []scopeCall
	studies []int
	purged  []string
}

func (f *fakeReconciler) ReconcileScope(ctx context.Context, def *models.QuestionnaireDefinition, proband *models.Proband) error {
	f.scopes = append(f.scopes, scopeCall{questionnaireID: def.ID, pseudonym: proband.Pseudonym})
	return nil
}

func (f *fakeReconciler) ReconcileStudy(ctx context.Context, def *models.QuestionnaireDefinition) error {
	f.studies = append(f.studies, def.ID)
	return nil
}

func (f *fakeReconciler) PurgeProband(ctx context.Context, pseudonym string) error {
	f.purged = append(f.purged, pseudonym)
	return nil
}

func newTestReactor(questionnaires *fakeQuestionnaireRepo, probands *fakeProbandRepo, lookup *fakeInstanceLookup) (*reactorService, *fakeReconciler) {
	recon := &fakeReconciler{}
	if questionnaires == nil {
		questionnaires = &fakeQuestionnaireRepo{}
	}
	if probands == nil {
		probands = &fakeProbandRepo{}
	}
	if lookup == nil {
		lookup = &fakeInstanceLookup{}
	}
	service := &reactorService{
		questionnaireRepo: questionnaires,
		probandRepo:       probands,
		instanceRepo:      lookup,
		reconciler:        recon,
		queueService:      &fakeQueue{},
		Log:               zap.NewNop(),
	}
	return service, recon
}

func TestHandleProbandEvent(t *testing.T) {
	probands := &fakeProbandRepo{probands: map[string]*models.Proband{
		"stub-1": {Pseudonym: "stub-1", StudyID: "study-a", Status: models.ProbandStatusActive},
	}}
	questionnaires := &fakeQuestionnaireRepo{byStudy: map[string][]models.QuestionnaireDefinition{
		"study-a": {{ID: 1, StudyID: "study-a"}, {ID: 2, StudyID: "study-a"}},
	}}

	t.Run("Login Reconciles Every Study Definition", func(t *testing.T) {
		service, recon := newTestReactor(questionnaires, probands, nil)

		err := service.HandleProbandEvent(context.Background(), &dto.ProbandEventMessage{
			Type: constvars.EventProbandLoggedIn, Pseudonym: "stub-1",
		})

		assert.NoError(t, err)
		assert.Equal(t, []scopeCall{{1, "stub-1"}, {2, "stub-1"}}, recon.scopes)
	})

	t.Run("Deletion Purges The Proband", func(t *testing.T) {
		service, recon := newTestReactor(questionnaires, probands, nil)

		err := service.HandleProbandEvent(context.Background(), &dto.ProbandEventMessage{
			Type: constvars.EventProbandDeleted, Pseudonym: "stub-1",
		})

		assert.NoError(t, err)
		assert.Equal(t, []string{"stub-1"}, recon.purged)
		assert.Empty(t, recon.scopes)
	})

	t.Run("Unknown Pseudonym Is Dropped", func(t *testing.T) {
		service, recon := newTestReactor(questionnaires, probands, nil)

		err := service.HandleProbandEvent(context.Background(), &dto.ProbandEventMessage{
			Type: constvars.EventProbandCreated, Pseudonym: "nobody",
		})

		assert.NoError(t, err, "an unresolvable event is dropped, not requeued")
		assert.Empty(t, recon.scopes)
	})
}

func TestHandleChangeQuestionnaires(t *testing.T) {
	questionnaires := &fakeQuestionnaireRepo{latest: map[int]*models.QuestionnaireDefinition{
		3: {ID: 3, Version: 2, StudyID: "study-a"},
	}}
	service, recon := newTestReactor(questionnaires, nil, nil)

	err := service.HandleChange(context.Background(), &dto.ChangeEvent{
		ID:     "evt-1",
		Table:  constvars.ChangeFeedTableQuestionnaires,
		Action: "update",
		After:  []byte(`{"id": 3, "version": 1, "study_id": "study-a"}`),
	})

	assert.NoError(t, err)
	assert.Equal(t, []int{3}, recon.studies, "a definition change fans out over its study")
}

func TestHandleChangeProbands(t *testing.T) {
	t.Run("Deleted Status Purges", func(t *testing.T) {
		service, recon := newTestReactor(nil, nil, nil)

		err := service.HandleChange(context.Background(), &dto.ChangeEvent{
			ID:     "evt-2",
			Table:  constvars.ChangeFeedTableProbands,
			Action: "update",
			After:  []byte(`{"pseudonym": "stub-1", "status": "deleted"}`),
		})

		assert.NoError(t, err)
		assert.Equal(t, []string{"stub-1"}, recon.purged)
	})

	t.Run("Delete Action Reads The Before Snapshot", func(t *testing.T) {
		service, recon := newTestReactor(nil, nil, nil)

		err := service.HandleChange(context.Background(), &dto.ChangeEvent{
			ID:     "evt-2b",
			Table:  constvars.ChangeFeedTableProbands,
			Action: "delete",
			Before: []byte(`{"pseudonym": "stub-2", "status": "active"}`),
		})

		assert.NoError(t, err)
		assert.Equal(t, []string{"stub-2"}, recon.purged)
	})

	t.Run("Status Change Reconciles The Proband", func(t *testing.T) {
		probands := &fakeProbandRepo{probands: map[string]*models.Proband{
			"stub-1": {Pseudonym: "stub-1", StudyID: "study-a", Status: models.ProbandStatusDeactivated},
		}}
		questionnaires := &fakeQuestionnaireRepo{byStudy: map[string][]models.QuestionnaireDefinition{
			"study-a": {{ID: 1, StudyID: "study-a"}},
		}}
		service, recon := newTestReactor(questionnaires, probands, nil)

		err := service.HandleChange(context.Background(), &dto.ChangeEvent{
			ID:     "evt-3",
			Table:  constvars.ChangeFeedTableProbands,
			Action: "update",
			After:  []byte(`{"pseudonym": "stub-1", "status": "deactivated"}`),
		})

		assert.NoError(t, err)
		assert.Equal(t, []scopeCall{{1, "stub-1"}}, recon.scopes)
	})
}

func TestHandleChangeAnswers(t *testing.T) {
	probands := &fakeProbandRepo{probands: map[string]*models.Proband{
		"stub-1": {Pseudonym: "stub-1", StudyID: "study-a", Status: models.ProbandStatusActive},
	}}
	questionnaires := &fakeQuestionnaireRepo{
		latest: map[int]*models.QuestionnaireDefinition{
			5: {ID: 5, StudyID: "study-a"},
			6: {ID: 6, StudyID: "study-a"},
		},
		conditions: map[int][]models.Condition{
			5: {{QuestionnaireID: 6, Type: models.ConditionTypeExternal, TargetQuestionnaireID: 5}},
		},
	}
	lookup := &fakeInstanceLookup{byID: map[int]*models.QuestionnaireInstance{
		40: {ID: 40, QuestionnaireID: 5, Pseudonym: "stub-1"},
	}}
	service, recon := newTestReactor(questionnaires, probands, lookup)

	err := service.HandleChange(context.Background(), &dto.ChangeEvent{
		ID:     "evt-4",
		Table:  constvars.ChangeFeedTableAnswers,
		Action: "insert",
		After:  []byte(`{"questionnaire_instance_id": 40}`),
	})

	assert.NoError(t, err)
	assert.Equal(t, []scopeCall{{5, "stub-1"}, {6, "stub-1"}}, recon.scopes,
		"the answered questionnaire and its external dependents are reconciled")
}

func TestHandleChangeInstances(t *testing.T) {
	probands := &fakeProbandRepo{probands: map[string]*models.Proband{
		"stub-1": {Pseudonym: "stub-1", StudyID: "study-a", Status: models.ProbandStatusActive},
	}}
	questionnaires := &fakeQuestionnaireRepo{
		latest: map[int]*models.QuestionnaireDefinition{
			5: {ID: 5, StudyID: "study-a"},
		},
		conditions: map[int][]models.Condition{
			5: {{QuestionnaireID: 5, Type: models.ConditionTypeInternalLast, TargetQuestionnaireID: 5}},
		},
	}

	t.Run("Release Reconciles Dependents", func(t *testing.T) {
		service, recon := newTestReactor(questionnaires, probands, nil)

		err := service.HandleChange(context.Background(), &dto.ChangeEvent{
			ID:     "evt-5",
			Table:  constvars.ChangeFeedTableInstances,
			Action: "update",
			Before: []byte(`{"id": 40, "questionnaire_id": 5, "pseudonym": "stub-1", "release_version": 0}`),
			After:  []byte(`{"id": 40, "questionnaire_id": 5, "pseudonym": "stub-1", "release_version": 1}`),
		})

		assert.NoError(t, err)
		// The internal condition targets the same scope, so it is not
		// reconciled a second time.
		assert.Equal(t, []scopeCall{{5, "stub-1"}}, recon.scopes)
	})

	t.Run("Release Removes The Instance From The Queue", func(t *testing.T) {
		service, _ := newTestReactor(questionnaires, probands, nil)
		queue := service.queueService.(*fakeQueue)

		err := service.HandleChange(context.Background(), &dto.ChangeEvent{
			ID:     "evt-5b",
			Table:  constvars.ChangeFeedTableInstances,
			Action: "update",
			Before: []byte(`{"id": 41, "questionnaire_id": 5, "pseudonym": "stub-1", "release_version": 0}`),
			After:  []byte(`{"id": 41, "questionnaire_id": 5, "pseudonym": "stub-1", "release_version": 1}`),
		})

		assert.NoError(t, err)
		assert.Equal(t, []int{41}, queue.removed, "a released instance is no longer presentable")
	})

	t.Run("Status Only Transition Is Ignored", func(t *testing.T) {
		service, recon := newTestReactor(questionnaires, probands, nil)

		err := service.HandleChange(context.Background(), &dto.ChangeEvent{
			ID:     "evt-6",
			Table:  constvars.ChangeFeedTableInstances,
			Action: "update",
			Before: []byte(`{"id": 40, "questionnaire_id": 5, "pseudonym": "stub-1", "release_version": 0}`),
			After:  []byte(`{"id": 40, "questionnaire_id": 5, "pseudonym": "stub-1", "release_version": 0}`),
		})

		assert.NoError(t, err)
		assert.Empty(t, recon.scopes)
	})
}

func TestHandleChangeUnknownTable(t *testing.T) {
	service, recon := newTestReactor(nil, nil, nil)

	err := service.HandleChange(context.Background(), &dto.ChangeEvent{
		ID:    "evt-7",
		Table: "somewhere_else",
		After: []byte(`{}`),
	})

	assert.NoError(t, err)
	assert.Empty(t, recon.scopes)
	assert.Empty(t, recon.studies)
	assert.Empty(t, recon.purged)
}
