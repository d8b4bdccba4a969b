// internal/server/admin_handler.go
package server

import (
	"net/http"

	"ridehail-platform/internal/models"
)

type applicationView struct {
	Application *models.DriverApplication `json:"application"`
	Profile     *models.Profile           `json:"profile,omitempty"`
}

// handleGetApplication lets review tooling inspect an application and its
// linked profile. Admin-only, same gate as the review RPC.
func (s *Server) handleGetApplication(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}

	if _, err := s.gate.RequireAdmin(r.Context(), identity.ID, identity.Email); err != nil {
		s.errorHandler.WriteHTTPError(w, err, map[string]interface{}{
			"userId": identity.ID,
		})
		return
	}

	applicationID := r.PathValue("id")
	app, profile, err := s.applications.GetWithProfile(r.Context(), applicationID)
	if err != nil {
		s.errorHandler.WriteHTTPError(w, err, map[string]interface{}{
			"applicationId": applicationID,
		})
		return
	}
	writeJSON(w, applicationView{Application: app, Profile: profile})
}
