// internal/repository/application.go
package repository

import (
	"context"
	"database/sql"
	"time"

	"ridehail-platform/internal/common/errors"
	"ridehail-platform/internal/common/logger"
	"ridehail-platform/internal/models"
)

// ApplicationStore is the persistence contract consumed by the workflow
// orchestrator and the authorization gate.
type ApplicationStore interface {
	GetByID(ctx context.Context, id string) (*models.DriverApplication, error)
	GetWithProfile(ctx context.Context, id string) (*models.DriverApplication, *models.Profile, error)
	GetProfileByUserID(ctx context.Context, userID string) (*models.Profile, error)
	MarkInProgress(ctx context.Context, id, reviewedBy string, reviewedAt time.Time, expectedVersion int) error
	FinalizeReview(ctx context.Context, id, status string, rejectionReason *string, reviewedBy string, reviewedAt time.Time, expectedVersion int) error
	UpdateProfileRole(ctx context.Context, profileID, role string) error
}

// ApplicationRepository owns driver_applications and the linked profiles rows.
type ApplicationRepository struct {
	db     *sql.DB
	logger logger.Logger
}

func NewApplicationRepository(db *sql.DB, log logger.Logger) *ApplicationRepository {
	return &ApplicationRepository{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "application-repository"}),
	}
}

const applicationColumns = `id, profile_id, status, previous_violations, has_criminal_record,
		driving_experience_years, rejection_reason, reviewed_at, reviewed_by, version`

// GetByID fetches one application. Missing rows surface as the NotFound kind.
func (r *ApplicationRepository) GetByID(ctx context.Context, id string) (*models.DriverApplication, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+applicationColumns+`
		FROM driver_applications
		WHERE id = $1`, id)

	app, err := scanApplication(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFoundError("Application", id)
		}
		return nil, errors.NewUpstreamFailureError("load application", err)
	}
	return app, nil
}

// GetWithProfile fetches an application joined with its owning profile. A
// dangling profile reference returns the application with a nil profile; the
// caller decides whether that matters.
func (r *ApplicationRepository) GetWithProfile(ctx context.Context, id string) (*models.DriverApplication, *models.Profile, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT a.id, a.profile_id, a.status, a.previous_violations, a.has_criminal_record,
			a.driving_experience_years, a.rejection_reason, a.reviewed_at, a.reviewed_by, a.version,
			p.id, p.user_id, p.full_name, p.email, p.phone, p.role, p.rating, p.rating_count
		FROM driver_applications a
		LEFT JOIN profiles p ON p.id = a.profile_id
		WHERE a.id = $1`, id)

	var (
		app     models.DriverApplication
		prevVio sql.NullString
		reason  sql.NullString
		revAt   sql.NullTime
		revBy   sql.NullString

		pID     sql.NullString
		pUserID sql.NullString
		pName   sql.NullString
		pEmail  sql.NullString
		pPhone  sql.NullString
		pRole   sql.NullString
		pRating sql.NullFloat64
		pCount  sql.NullInt64
	)

	err := row.Scan(
		&app.ID, &app.ProfileID, &app.Status, &prevVio, &app.HasCriminalRecord,
		&app.DrivingExperienceYears, &reason, &revAt, &revBy, &app.Version,
		&pID, &pUserID, &pName, &pEmail, &pPhone, &pRole, &pRating, &pCount,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, errors.NewNotFoundError("Application", id)
		}
		return nil, nil, errors.NewUpstreamFailureError("load application with profile", err)
	}

	applyNullFields(&app, prevVio, reason, revAt, revBy)

	if !pID.Valid {
		return &app, nil, nil
	}
	profile := &models.Profile{
		ID:          pID.String,
		UserID:      pUserID.String,
		FullName:    pName.String,
		Email:       pEmail.String,
		Phone:       pPhone.String,
		Role:        pRole.String,
		Rating:      pRating.Float64,
		RatingCount: int(pCount.Int64),
	}
	return &app, profile, nil
}

// GetProfileByUserID resolves the profile owned by an identity-provider user.
func (r *ApplicationRepository) GetProfileByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	var p models.Profile
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, full_name, email, phone, role, rating, rating_count
		FROM profiles
		WHERE user_id = $1`, userID).
		Scan(&p.ID, &p.UserID, &p.FullName, &p.Email, &p.Phone, &p.Role, &p.Rating, &p.RatingCount)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFoundError("Profile", userID)
		}
		return nil, errors.NewUpstreamFailureError("load profile", err)
	}
	return &p, nil
}

// MarkInProgress moves an application into background_check_in_progress and
// stamps the reviewer. The write is conditional on the version last read; a
// lost race surfaces as ConflictRetry.
func (r *ApplicationRepository) MarkInProgress(ctx context.Context, id, reviewedBy string, reviewedAt time.Time, expectedVersion int) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE driver_applications
		SET status = $1, reviewed_at = $2, reviewed_by = $3, version = version + 1
		WHERE id = $4 AND version = $5`,
		models.StatusBackgroundCheckInProgress, reviewedAt, reviewedBy, id, expectedVersion)
	if err != nil {
		return errors.NewUpstreamFailureError("mark in progress", err)
	}
	return r.requireOneRow(res, id, "mark in progress")
}

// FinalizeReview persists a terminal decision. rejectionReason nil clears the
// column (approved path).
func (r *ApplicationRepository) FinalizeReview(ctx context.Context, id, status string, rejectionReason *string, reviewedBy string, reviewedAt time.Time, expectedVersion int) error {
	var reason sql.NullString
	if rejectionReason != nil {
		reason = sql.NullString{String: *rejectionReason, Valid: true}
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE driver_applications
		SET status = $1, rejection_reason = $2, reviewed_at = $3, reviewed_by = $4, version = version + 1
		WHERE id = $5 AND version = $6`,
		status, reason, reviewedAt, reviewedBy, id, expectedVersion)
	if err != nil {
		return errors.NewUpstreamFailureError("finalize review", err)
	}
	return r.requireOneRow(res, id, "finalize review")
}

// UpdateProfileRole promotes (or demotes) a profile's role.
func (r *ApplicationRepository) UpdateProfileRole(ctx context.Context, profileID, role string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE profiles SET role = $1 WHERE id = $2`, role, profileID)
	if err != nil {
		return errors.NewUpstreamFailureError("update profile role", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return errors.NewUpstreamFailureError("update profile role", err)
	}
	if rows == 0 {
		return errors.NewNotFoundError("Profile", profileID)
	}
	return nil
}

// requireOneRow distinguishes a lost version race from a write error. The
// caller has already confirmed the row exists, and this core never deletes
// applications, so zero affected rows means a concurrent reviewer won.
func (r *ApplicationRepository) requireOneRow(res sql.Result, id, step string) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return errors.NewUpstreamFailureError(step, err)
	}
	if rows == 0 {
		r.logger.Warn("conditional update lost version race", map[string]interface{}{
			"applicationId": id,
			"step":          step,
		})
		return errors.NewConflictRetryError(id)
	}
	return nil
}

func scanApplication(row *sql.Row) (*models.DriverApplication, error) {
	var (
		app     models.DriverApplication
		prevVio sql.NullString
		reason  sql.NullString
		revAt   sql.NullTime
		revBy   sql.NullString
	)
	err := row.Scan(
		&app.ID, &app.ProfileID, &app.Status, &prevVio, &app.HasCriminalRecord,
		&app.DrivingExperienceYears, &reason, &revAt, &revBy, &app.Version,
	)
	if err != nil {
		return nil, err
	}
	applyNullFields(&app, prevVio, reason, revAt, revBy)
	return &app, nil
}

func applyNullFields(app *models.DriverApplication, prevVio, reason sql.NullString, revAt sql.NullTime, revBy sql.NullString) {
	if prevVio.Valid {
		app.PreviousViolations = &prevVio.String
	}
	if reason.Valid {
		app.RejectionReason = &reason.String
	}
	if revAt.Valid {
		t := revAt.Time
		app.ReviewedAt = &t
	}
	if revBy.Valid {
		app.ReviewedBy = &revBy.String
	}
}
