// internal/workflow/orchestrator.go
// Package workflow owns the driver application review state machine:
// pending -> background_check_in_progress -> approved | rejected.
package workflow

import (
	"context"
	"time"

	"ridehail-platform/internal/common/errors"
	"ridehail-platform/internal/common/logger"
	"ridehail-platform/internal/common/metrics"
	"ridehail-platform/internal/models"
	"ridehail-platform/internal/repository"
	"ridehail-platform/internal/verification"
)

// rejectionReason is the stored reason for every failed background check.
const rejectionReason = "Failed background check"

// DecisionNotifier delivers approval/rejection notices. Implementations must
// be best-effort: a delivery failure never affects the review outcome.
type DecisionNotifier interface {
	NotifyDecision(ctx context.Context, app *models.DriverApplication, profile *models.Profile, report *models.VerificationReport)
}

// ReviewAuditor records review events to the audit trail, best-effort.
type ReviewAuditor interface {
	RecordReview(ctx context.Context, event ReviewEvent)
}

// ProfileCacheInvalidator drops a cached profile after its role changes.
type ProfileCacheInvalidator interface {
	InvalidateProfile(ctx context.Context, userID string)
}

// ReviewEvent is one audit-trail entry for a review action.
type ReviewEvent struct {
	ApplicationID string `json:"applicationId"`
	Action        string `json:"action"`
	Status        string `json:"status"`
	ReviewedBy    string `json:"reviewedBy"`
	ReportID      string `json:"reportId,omitempty"`
	Passed        *bool  `json:"passed,omitempty"`
	OccurredAt    string `json:"occurredAt"`
}

// Result is the outcome of a review action. Warning is set only when the
// primary transition committed but a best-effort secondary effect failed; the
// caller sees the gap instead of it being swallowed into a log line.
type Result struct {
	Message string                     `json:"message"`
	Status  string                     `json:"status"`
	Report  *models.VerificationReport `json:"report,omitempty"`
	Warning string                     `json:"warning,omitempty"`
}

// Orchestrator executes review actions against the application store. All
// callers are assumed to have passed the authorization gate already.
type Orchestrator struct {
	store       repository.ApplicationStore
	checker     verification.Checker
	notifier    DecisionNotifier
	auditor     ReviewAuditor
	invalidator ProfileCacheInvalidator
	logger      logger.Logger
}

func NewOrchestrator(
	store repository.ApplicationStore,
	checker verification.Checker,
	notifier DecisionNotifier,
	auditor ReviewAuditor,
	invalidator ProfileCacheInvalidator,
	log logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		store:       store,
		checker:     checker,
		notifier:    notifier,
		auditor:     auditor,
		invalidator: invalidator,
		logger:      log.WithFields(map[string]interface{}{"component": "workflow-orchestrator"}),
	}
}

// Dispatch runs one review action for the given caller. Errors other than
// SecondaryUpdateFailure abort the action with no partial mutation committed.
func (o *Orchestrator) Dispatch(ctx context.Context, action Action, applicationID, reviewedBy string) (*Result, error) {
	started := time.Now()
	log := o.logger.WithFields(map[string]interface{}{
		"action":        action.Name(),
		"applicationId": applicationID,
	})

	var result *Result
	var err error
	switch action.(type) {
	case initiateAction:
		result, err = o.initiate(ctx, log, applicationID, reviewedBy)
	case checkStatusAction:
		result, err = o.checkStatus(ctx, log, applicationID)
	case completeAction:
		result, err = o.complete(ctx, log, applicationID, reviewedBy)
	}

	metrics.WorkflowActionDuration.WithLabelValues(action.Name()).Observe(time.Since(started).Seconds())
	if err != nil {
		metrics.WorkflowActionsFailed.WithLabelValues(action.Name(), string(errors.Normalize(err).Code)).Inc()
		return nil, err
	}
	metrics.WorkflowActionsCompleted.WithLabelValues(action.Name()).Inc()
	return result, nil
}

// initiate unconditionally moves the application into the in-progress state.
// Replays land on the same end state, so no legality check beyond existence.
func (o *Orchestrator) initiate(ctx context.Context, log logger.Logger, applicationID, reviewedBy string) (*Result, error) {
	app, err := o.store.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := o.store.MarkInProgress(ctx, app.ID, reviewedBy, now, app.Version); err != nil {
		return nil, err
	}

	log.Info("background check initiated", map[string]interface{}{
		"previousStatus": app.Status,
		"reviewedBy":     reviewedBy,
	})
	o.audit(ctx, ReviewEvent{
		ApplicationID: app.ID,
		Action:        Initiate.Name(),
		Status:        models.StatusBackgroundCheckInProgress,
		ReviewedBy:    reviewedBy,
		OccurredAt:    now.Format(time.RFC3339),
	})

	return &Result{
		Message: "Background check initiated",
		Status:  models.StatusBackgroundCheckInProgress,
	}, nil
}

// checkStatus is a pure read.
func (o *Orchestrator) checkStatus(ctx context.Context, log logger.Logger, applicationID string) (*Result, error) {
	app, err := o.store.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	log.Info("application status read", map[string]interface{}{"status": app.Status})
	return &Result{
		Message: "Application status retrieved",
		Status:  app.Status,
	}, nil
}

// complete runs the background check and settles the application. The
// application transition is authoritative; role promotion and notifications
// are best-effort secondary effects.
func (o *Orchestrator) complete(ctx context.Context, log logger.Logger, applicationID, reviewedBy string) (*Result, error) {
	app, profile, err := o.store.GetWithProfile(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	report, err := o.checker.Run(ctx, verification.Facts{
		PreviousViolations:     app.PreviousViolations,
		HasCriminalRecord:      app.HasCriminalRecord,
		DrivingExperienceYears: app.DrivingExperienceYears,
	})
	if err != nil {
		return nil, errors.Normalize(err)
	}

	newStatus := models.StatusRejected
	var reason *string
	if report.Passed {
		newStatus = models.StatusApproved
	} else {
		r := rejectionReason
		reason = &r
	}

	now := time.Now().UTC()
	if err := o.store.FinalizeReview(ctx, app.ID, newStatus, reason, reviewedBy, now, app.Version); err != nil {
		return nil, err
	}
	app.Status = newStatus
	app.RejectionReason = reason

	result := &Result{
		Message: "Background check completed",
		Status:  newStatus,
		Report:  report,
	}

	if report.Passed {
		result.Warning = o.promoteProfile(ctx, log, profile)
	}

	log.Info("background check completed", map[string]interface{}{
		"status":   newStatus,
		"reportId": report.ReportID,
		"passed":   report.Passed,
	})
	o.audit(ctx, ReviewEvent{
		ApplicationID: app.ID,
		Action:        Complete.Name(),
		Status:        newStatus,
		ReviewedBy:    reviewedBy,
		ReportID:      report.ReportID,
		Passed:        &report.Passed,
		OccurredAt:    now.Format(time.RFC3339),
	})
	if o.notifier != nil {
		o.notifier.NotifyDecision(ctx, app, profile, report)
	}

	return result, nil
}

// promoteProfile attempts the role promotion and returns a warning message on
// failure instead of an error. A nil profile means the application's profile
// row is gone; the transition stands and the gap is surfaced.
func (o *Orchestrator) promoteProfile(ctx context.Context, log logger.Logger, profile *models.Profile) string {
	if profile == nil {
		log.Warn("approved application has no linked profile, role promotion skipped", nil)
		return "Profile role promotion skipped: no linked profile"
	}

	if err := o.store.UpdateProfileRole(ctx, profile.ID, models.RoleDriver); err != nil {
		secondary := errors.NewSecondaryUpdateFailureError(profile.ID, err)
		log.WithError(secondary).Error("profile role promotion failed", map[string]interface{}{
			"profileId": profile.ID,
		})
		return secondary.Message
	}

	profile.Role = models.RoleDriver
	if o.invalidator != nil {
		o.invalidator.InvalidateProfile(ctx, profile.UserID)
	}
	return ""
}

func (o *Orchestrator) audit(ctx context.Context, event ReviewEvent) {
	if o.auditor != nil {
		o.auditor.RecordReview(ctx, event)
	}
}
