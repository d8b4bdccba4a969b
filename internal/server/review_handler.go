// internal/server/review_handler.go
package server

import (
	"encoding/json"
	"io"
	"net/http"

	"ridehail-platform/internal/common/errors"
	"ridehail-platform/internal/workflow"

	"github.com/xeipuuv/gojsonschema"
)

// reviewRequestSchema validates the review RPC body before any state is
// touched. Action values are checked separately so an unrecognized action
// reports UnknownAction rather than a generic validation failure.
const reviewRequestSchema = `{
	"type": "object",
	"required": ["applicationId", "action"],
	"properties": {
		"applicationId": {"type": "string", "minLength": 1},
		"action": {"type": "string", "minLength": 1}
	}
}`

var reviewSchema = gojsonschema.NewStringLoader(reviewRequestSchema)

type reviewRequest struct {
	ApplicationID string `json:"applicationId"`
	Action        string `json:"action"`
}

func jsonEncode(w io.Writer, payload interface{}) error {
	return json.NewEncoder(w).Encode(payload)
}

// handleReview is the synchronous review RPC: validate, authorize, dispatch.
func (s *Server) handleReview(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		s.errorHandler.WriteHTTPError(w, errors.NewInvalidInputError("unreadable request body"), nil)
		return
	}

	result, validationErr := gojsonschema.Validate(reviewSchema, gojsonschema.NewBytesLoader(body))
	if validationErr != nil || !result.Valid() {
		details := "malformed request body"
		if validationErr == nil {
			for _, desc := range result.Errors() {
				details = desc.String()
				break
			}
		}
		s.errorHandler.WriteHTTPError(w, errors.NewMissingFieldsError(details), map[string]interface{}{
			"userId": identity.ID,
		})
		return
	}

	var req reviewRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.errorHandler.WriteHTTPError(w, errors.NewInvalidInputError(err.Error()), nil)
		return
	}

	logFields := map[string]interface{}{
		"applicationId": req.ApplicationID,
		"action":        req.Action,
		"userId":        identity.ID,
	}

	action, err := workflow.ParseAction(req.Action)
	if err != nil {
		s.errorHandler.WriteHTTPError(w, err, logFields)
		return
	}

	principal, err := s.gate.RequireAdmin(r.Context(), identity.ID, identity.Email)
	if err != nil {
		s.errorHandler.WriteHTTPError(w, err, logFields)
		return
	}

	outcome, err := s.orchestrator.Dispatch(r.Context(), action, req.ApplicationID, principal.UserID)
	if err != nil {
		s.errorHandler.WriteHTTPError(w, err, logFields)
		return
	}

	writeJSON(w, outcome)
}
