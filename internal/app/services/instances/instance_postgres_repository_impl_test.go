package instances

import (
	"context"
	"regexp"
	"studyflow-service/internal/app/models"
	"studyflow-service/internal/pkg/queries"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

var instanceColumns = []string{
	"id", "questionnaire_id", "questionnaire_version", "questionnaire_name", "study_id",
	"pseudonym", "cycle", "date_of_issue", "status", "release_version", "sort_order",
}

func newMockRepository(t *testing.T) (*instancePostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &instancePostgresRepository{DB: db, Log: zap.NewNop()}, mock
}

func TestScopeTxLifecycle(t *testing.T) {
	repo, mock := newMockRepository(t)
	issued := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(queries.GetInstancesForScopeForUpdate)).
		WithArgs(7, "stub-1").
		WillReturnRows(sqlmock.NewRows(instanceColumns).
			AddRow(1, 7, 1, "Daily Symptoms", "study-a", "stub-1", 1, issued, "released_once", 1, 4).
			AddRow(2, 7, 1, "Daily Symptoms", "study-a", "stub-1", 2, issued, "active", 0, 4))
	mock.ExpectExec(regexp.QuoteMeta(queries.DeleteInstance)).
		WithArgs(2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(queries.InsertInstance)).
		WithArgs(7, 2, "Daily Symptoms", "study-a", "stub-1", 2, issued, "inactive", 0, 4).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
	mock.ExpectCommit()

	tx, err := repo.BeginScopeTx(context.Background(), 7, "stub-1")
	assert.NoError(t, err)

	rows, err := tx.FindForScope(context.Background())
	assert.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.Equal(t, models.InstanceStatusReleasedOnce, rows[0].Status)
	assert.Equal(t, 1, rows[0].ReleaseVersion)

	assert.NoError(t, tx.Delete(context.Background(), 2))

	id, err := tx.Create(context.Background(), &models.QuestionnaireInstance{
		QuestionnaireID: 7, QuestionnaireVersion: 2, QuestionnaireName: "Daily Symptoms",
		StudyID: "study-a", Pseudonym: "stub-1", Cycle: 2, DateOfIssue: issued,
		Status: models.InstanceStatusInactive, SortOrder: 4,
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, id)

	assert.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScopeTxCreateDuplicateCycleIsNoOp(t *testing.T) {
	repo, mock := newMockRepository(t)
	issued := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	// ON CONFLICT DO NOTHING returns no row for an existing cycle.
	mock.ExpectQuery(regexp.QuoteMeta(queries.InsertInstance)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	tx, err := repo.BeginScopeTx(context.Background(), 7, "stub-1")
	assert.NoError(t, err)

	id, err := tx.Create(context.Background(), &models.QuestionnaireInstance{
		QuestionnaireID: 7, QuestionnaireVersion: 1, Pseudonym: "stub-1", Cycle: 1,
		DateOfIssue: issued, Status: models.InstanceStatusInactive,
	})
	assert.NoError(t, err)
	assert.Zero(t, id, "a duplicate cycle reports id zero instead of failing")

	assert.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActivateDue(t *testing.T) {
	repo, mock := newMockRepository(t)
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(queries.ActivateDueInstances)).
		WithArgs(now).
		WillReturnRows(sqlmock.NewRows(instanceColumns).
			AddRow(5, 7, 1, "Daily Symptoms", "study-a", "stub-1", 3, now.AddDate(0, 0, -1), "active", 0, 4))

	activated, err := repo.ActivateDue(context.Background(), now)

	assert.NoError(t, err)
	assert.Len(t, activated, 1)
	assert.Equal(t, models.InstanceStatusActive, activated[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExpireOverdue(t *testing.T) {
	repo, mock := newMockRepository(t)
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(queries.ExpireOverdueInstances)).
		WithArgs(now).
		WillReturnRows(sqlmock.NewRows(instanceColumns).
			AddRow(6, 7, 1, "Daily Symptoms", "study-a", "stub-1", 1, now.AddDate(0, 0, -10), "expired", 0, 4))

	expired, err := repo.ExpireOverdue(context.Background(), now)

	assert.NoError(t, err)
	assert.Len(t, expired, 1)
	assert.Equal(t, models.InstanceStatusExpired, expired[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindLatestReleased(t *testing.T) {
	repo, mock := newMockRepository(t)

	t.Run("Returns The Highest Released Cycle", func(t *testing.T) {
		issued := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
		mock.ExpectQuery(regexp.QuoteMeta(queries.GetLatestReleasedInstance)).
			WithArgs(7, "stub-1").
			WillReturnRows(sqlmock.NewRows(instanceColumns).
				AddRow(9, 7, 1, "Daily Symptoms", "study-a", "stub-1", 4, issued, "released_twice", 2, 4))

		instance, err := repo.FindLatestReleased(context.Background(), 7, "stub-1")

		assert.NoError(t, err)
		assert.NotNil(t, instance)
		assert.Equal(t, 4, instance.Cycle)
		assert.Equal(t, 2, instance.ReleaseVersion)
	})

	t.Run("Returns Nil When Nothing Was Released", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(queries.GetLatestReleasedInstance)).
			WithArgs(7, "stub-2").
			WillReturnRows(sqlmock.NewRows(instanceColumns))

		instance, err := repo.FindLatestReleased(context.Background(), 7, "stub-2")

		assert.NoError(t, err)
		assert.Nil(t, instance)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteByPseudonym(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectExec(regexp.QuoteMeta(queries.DeleteInstancesByPseudonym)).
		WithArgs("stub-1").
		WillReturnResult(sqlmock.NewResult(0, 3))

	deleted, err := repo.DeleteByPseudonym(context.Background(), "stub-1")

	assert.NoError(t, err)
	assert.Equal(t, 3, deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}
