// internal/server/rides_handler.go
package server

import (
	"encoding/json"
	"io"
	"net/http"

	"ridehail-platform/internal/common/errors"
	"ridehail-platform/internal/rides"
)

func (s *Server) handleCreateRide(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}

	var req rides.CreateRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody)).Decode(&req); err != nil {
		s.errorHandler.WriteHTTPError(w, errors.NewInvalidInputError("malformed ride request"), nil)
		return
	}

	result, err := s.rides.Create(r.Context(), identity.ID, req)
	if err != nil {
		s.errorHandler.WriteHTTPError(w, err, map[string]interface{}{
			"userId": identity.ID,
		})
		return
	}
	writeJSON(w, result)
}

func (s *Server) handleGetRide(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}

	ride, err := s.rides.Get(r.Context(), identity.ID, r.PathValue("id"))
	if err != nil {
		s.errorHandler.WriteHTTPError(w, err, map[string]interface{}{
			"userId": identity.ID,
			"rideId": r.PathValue("id"),
		})
		return
	}
	writeJSON(w, ride)
}

func (s *Server) handleCancelRide(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}

	ride, err := s.rides.Cancel(r.Context(), identity.ID, r.PathValue("id"))
	if err != nil {
		s.errorHandler.WriteHTTPError(w, err, map[string]interface{}{
			"userId": identity.ID,
			"rideId": r.PathValue("id"),
		})
		return
	}
	writeJSON(w, ride)
}
