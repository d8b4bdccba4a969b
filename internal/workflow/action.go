// internal/workflow/action.go
package workflow

import (
	"ridehail-platform/internal/common/errors"
)

// Action is the closed set of review operations. The unexported method keeps
// the set sealed: callers obtain values only through ParseAction, so the
// orchestrator's dispatch is exhaustive by construction.
type Action interface {
	Name() string
	sealed()
}

type initiateAction struct{}
type checkStatusAction struct{}
type completeAction struct{}

func (initiateAction) Name() string    { return "initiate" }
func (checkStatusAction) Name() string { return "check_status" }
func (completeAction) Name() string    { return "complete" }

func (initiateAction) sealed()    {}
func (checkStatusAction) sealed() {}
func (completeAction) sealed()    {}

// Initiate moves an application into review.
var Initiate Action = initiateAction{}

// CheckStatus reads the current status without mutation.
var CheckStatus Action = checkStatusAction{}

// Complete runs the background check and settles the application.
var Complete Action = completeAction{}

// ParseAction maps a raw action string onto its variant. Anything outside the
// recognized set is rejected before any state is touched.
func ParseAction(raw string) (Action, error) {
	switch raw {
	case "initiate":
		return Initiate, nil
	case "check_status":
		return CheckStatus, nil
	case "complete":
		return Complete, nil
	default:
		return nil, errors.NewUnknownActionError(raw)
	}
}
