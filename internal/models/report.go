// internal/models/report.go
package models

// Sub-check names as they appear in verification reports. The mixed naming is
// the wire contract expected by the admin tooling.
const (
	CheckIdentityVerified     = "identityVerified"
	CheckCriminalHistory      = "criminalHistoryCheck"
	CheckDrivingRecord        = "drivingRecordCheck"
	CheckSSNVerification      = "ssn_verification"
	CheckSexOffenderRegistry  = "sex_offender_check"
	CheckGlobalWatchlist      = "global_watchlist_check"
)

// CheckResult is the outcome of one named sub-check.
type CheckResult struct {
	Passed  bool   `json:"passed"`
	Details string `json:"details"`
}

// VerificationReport is the ephemeral result of one background-check
// evaluation. It is embedded in the complete-action response; only the derived
// application status is persisted.
type VerificationReport struct {
	ReportID    string                 `json:"reportId"`
	Passed      bool                   `json:"passed"`
	Checks      map[string]CheckResult `json:"checks"`
	CompletedAt string                 `json:"completedAt"`
}
