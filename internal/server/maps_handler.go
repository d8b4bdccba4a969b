// internal/server/maps_handler.go
package server

import (
	"net/http"
	"strconv"
	"strings"

	"ridehail-platform/internal/common/errors"
)

func (s *Server) handleGeocode(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireIdentity(w, r); !ok {
		return
	}

	places, err := s.maps.Geocode(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.errorHandler.WriteHTTPError(w, err, map[string]interface{}{
			"query": r.URL.Query().Get("q"),
		})
		return
	}
	writeJSON(w, map[string]interface{}{"results": places})
}

func (s *Server) handleDirections(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireIdentity(w, r); !ok {
		return
	}

	fromLat, fromLng, err := parseLatLng(r.URL.Query().Get("from"))
	if err != nil {
		s.errorHandler.WriteHTTPError(w, err, nil)
		return
	}
	toLat, toLng, err := parseLatLng(r.URL.Query().Get("to"))
	if err != nil {
		s.errorHandler.WriteHTTPError(w, err, nil)
		return
	}

	route, err := s.maps.Directions(r.Context(), fromLat, fromLng, toLat, toLng)
	if err != nil {
		s.errorHandler.WriteHTTPError(w, err, nil)
		return
	}
	writeJSON(w, route)
}

// parseLatLng parses a "lat,lng" pair.
func parseLatLng(raw string) (float64, float64, error) {
	parts := strings.SplitN(raw, ",", 2)
	if len(parts) != 2 {
		return 0, 0, errors.NewInvalidInputError("expected lat,lng pair, got: " + raw)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, errors.NewInvalidInputError("bad latitude: " + parts[0])
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, errors.NewInvalidInputError("bad longitude: " + parts[1])
	}
	return lat, lng, nil
}
