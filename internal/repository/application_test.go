// internal/repository/application_test.go
package repository

import (
	"context"
	"testing"
	"time"

	"ridehail-platform/internal/common/errors"
	"ridehail-platform/internal/common/logger"
	"ridehail-platform/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func applicationRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "profile_id", "status", "previous_violations", "has_criminal_record",
		"driving_experience_years", "rejection_reason", "reviewed_at", "reviewed_by", "version",
	})
}

func newTestRepo(t *testing.T) (*ApplicationRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	repo := NewApplicationRepository(db, logger.NewTestLogger(t))
	return repo, mock, func() { db.Close() }
}

// ==========================
// Read Tests
// ==========================

func TestGetByID_Success(t *testing.T) {
	repo, mock, done := newTestRepo(t)
	defer done()

	mock.ExpectQuery(`SELECT (.+) FROM driver_applications`).
		WithArgs("app-001").
		WillReturnRows(applicationRows().
			AddRow("app-001", "profile-001", models.StatusPending, nil, false, 3, nil, nil, nil, 1))

	app, err := repo.GetByID(context.Background(), "app-001")
	require.NoError(t, err)
	assert.Equal(t, "app-001", app.ID)
	assert.Equal(t, models.StatusPending, app.Status)
	assert.Nil(t, app.RejectionReason)
	assert.Nil(t, app.ReviewedAt)
	assert.Equal(t, 1, app.Version)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, done := newTestRepo(t)
	defer done()

	mock.ExpectQuery(`SELECT (.+) FROM driver_applications`).
		WithArgs("missing").
		WillReturnRows(applicationRows())

	app, err := repo.GetByID(context.Background(), "missing")
	assert.Nil(t, app)
	assert.True(t, errors.IsCode(err, errors.ErrCodeNotFound))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetWithProfile_Success(t *testing.T) {
	repo, mock, done := newTestRepo(t)
	defer done()

	rows := sqlmock.NewRows([]string{
		"id", "profile_id", "status", "previous_violations", "has_criminal_record",
		"driving_experience_years", "rejection_reason", "reviewed_at", "reviewed_by", "version",
		"p_id", "p_user_id", "p_full_name", "p_email", "p_phone", "p_role", "p_rating", "p_rating_count",
	}).AddRow(
		"app-001", "profile-001", models.StatusBackgroundCheckInProgress, "speeding", false,
		5, nil, time.Now(), "admin-1", 2,
		"profile-001", "user-001", "Dana Cole", "dana@example.com", "+15550100", models.RoleRider, 4.8, 12,
	)

	mock.ExpectQuery(`LEFT JOIN profiles`).
		WithArgs("app-001").
		WillReturnRows(rows)

	app, profile, err := repo.GetWithProfile(context.Background(), "app-001")
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, "profile-001", profile.ID)
	assert.Equal(t, models.RoleRider, profile.Role)
	require.NotNil(t, app.PreviousViolations)
	assert.Equal(t, "speeding", *app.PreviousViolations)
	require.NotNil(t, app.ReviewedBy)
	assert.Equal(t, "admin-1", *app.ReviewedBy)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetWithProfile_DanglingProfile(t *testing.T) {
	repo, mock, done := newTestRepo(t)
	defer done()

	rows := sqlmock.NewRows([]string{
		"id", "profile_id", "status", "previous_violations", "has_criminal_record",
		"driving_experience_years", "rejection_reason", "reviewed_at", "reviewed_by", "version",
		"p_id", "p_user_id", "p_full_name", "p_email", "p_phone", "p_role", "p_rating", "p_rating_count",
	}).AddRow(
		"app-001", "profile-gone", models.StatusPending, nil, false,
		2, nil, nil, nil, 1,
		nil, nil, nil, nil, nil, nil, nil, nil,
	)

	mock.ExpectQuery(`LEFT JOIN profiles`).
		WithArgs("app-001").
		WillReturnRows(rows)

	app, profile, err := repo.GetWithProfile(context.Background(), "app-001")
	require.NoError(t, err)
	assert.NotNil(t, app)
	assert.Nil(t, profile)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetProfileByUserID_NotFound(t *testing.T) {
	repo, mock, done := newTestRepo(t)
	defer done()

	mock.ExpectQuery(`SELECT (.+) FROM profiles`).
		WithArgs("user-x").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "full_name", "email", "phone", "role", "rating", "rating_count"}))

	profile, err := repo.GetProfileByUserID(context.Background(), "user-x")
	assert.Nil(t, profile)
	assert.True(t, errors.IsCode(err, errors.ErrCodeNotFound))

	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Conditional Write Tests
// ==========================

func TestMarkInProgress_Success(t *testing.T) {
	repo, mock, done := newTestRepo(t)
	defer done()

	mock.ExpectExec(`UPDATE driver_applications`).
		WithArgs(models.StatusBackgroundCheckInProgress, sqlmock.AnyArg(), "admin-1", "app-001", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.MarkInProgress(context.Background(), "app-001", "admin-1", time.Now().UTC(), 1)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkInProgress_VersionConflict(t *testing.T) {
	repo, mock, done := newTestRepo(t)
	defer done()

	mock.ExpectExec(`UPDATE driver_applications`).
		WithArgs(models.StatusBackgroundCheckInProgress, sqlmock.AnyArg(), "admin-1", "app-001", 1).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.MarkInProgress(context.Background(), "app-001", "admin-1", time.Now().UTC(), 1)
	assert.True(t, errors.IsCode(err, errors.ErrCodeConflictRetry))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFinalizeReview_RejectedWithReason(t *testing.T) {
	repo, mock, done := newTestRepo(t)
	defer done()

	reason := "Failed background check"
	mock.ExpectExec(`UPDATE driver_applications`).
		WithArgs(models.StatusRejected, sqlmock.AnyArg(), sqlmock.AnyArg(), "admin-1", "app-001", 2).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.FinalizeReview(context.Background(), "app-001", models.StatusRejected, &reason, "admin-1", time.Now().UTC(), 2)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFinalizeReview_WriteError(t *testing.T) {
	repo, mock, done := newTestRepo(t)
	defer done()

	mock.ExpectExec(`UPDATE driver_applications`).
		WillReturnError(assert.AnError)

	err := repo.FinalizeReview(context.Background(), "app-001", models.StatusApproved, nil, "admin-1", time.Now().UTC(), 2)
	assert.True(t, errors.IsCode(err, errors.ErrCodeUpstreamFailure))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateProfileRole_Success(t *testing.T) {
	repo, mock, done := newTestRepo(t)
	defer done()

	mock.ExpectExec(`UPDATE profiles`).
		WithArgs(models.RoleDriver, "profile-001").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateProfileRole(context.Background(), "profile-001", models.RoleDriver)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateProfileRole_MissingProfile(t *testing.T) {
	repo, mock, done := newTestRepo(t)
	defer done()

	mock.ExpectExec(`UPDATE profiles`).
		WithArgs(models.RoleDriver, "profile-gone").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateProfileRole(context.Background(), "profile-gone", models.RoleDriver)
	assert.True(t, errors.IsCode(err, errors.ErrCodeNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}
