// internal/models/application.go
package models

import "time"

// Driver application statuses. Approved and rejected are terminal; records in a
// terminal state are retained as audit history, never deleted.
const (
	StatusPending                   = "pending"
	StatusBackgroundCheckInProgress = "background_check_in_progress"
	StatusApproved                  = "approved"
	StatusRejected                  = "rejected"
)

// DriverApplication represents one onboarding submission. Created at
// application submission; mutated exclusively through the review workflow.
// Version backs the conditional writes guarding concurrent reviews.
type DriverApplication struct {
	ID                     string     `json:"id"`
	ProfileID              string     `json:"profileId"`
	Status                 string     `json:"status"`
	PreviousViolations     *string    `json:"previousViolations,omitempty"`
	HasCriminalRecord      bool       `json:"hasCriminalRecord"`
	DrivingExperienceYears int        `json:"drivingExperienceYears"`
	RejectionReason        *string    `json:"rejectionReason,omitempty"`
	ReviewedAt             *time.Time `json:"reviewedAt,omitempty"`
	ReviewedBy             *string    `json:"reviewedBy,omitempty"`
	Version                int        `json:"version"`
}

// IsTerminal reports whether the application has reached a final decision.
func (a *DriverApplication) IsTerminal() bool {
	return a.Status == StatusApproved || a.Status == StatusRejected
}
