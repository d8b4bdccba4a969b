// internal/rides/service.go
// Package rides exposes the ride-request operations the coordination layer
// offers to riders: create, cancel, read. Matching and dispatch live in a
// separate system.
package rides

import (
	"context"
	"math"
	"strings"

	"ridehail-platform/internal/common/errors"
	"ridehail-platform/internal/common/logger"
	"ridehail-platform/internal/maps"
	"ridehail-platform/internal/models"
	"ridehail-platform/internal/repository"
)

// Fare model constants, in the platform's minor currency unit.
const (
	baseFare      = 250.0
	perMeterFare  = 0.08
	perSecondFare = 0.05
)

// RouteEstimator supplies driving distance and duration between two points.
type RouteEstimator interface {
	Directions(ctx context.Context, fromLat, fromLng, toLat, toLng float64) (*maps.Route, error)
}

// CreateRequest is the rider-supplied input for a new ride.
type CreateRequest struct {
	PickupName  string  `json:"pickupName"`
	PickupLat   float64 `json:"pickupLat"`
	PickupLng   float64 `json:"pickupLng"`
	DropoffName string  `json:"dropoffName"`
	DropoffLat  float64 `json:"dropoffLat"`
	DropoffLng  float64 `json:"dropoffLng"`
}

// Estimate is the quoted fare for a ride, derived from the routing provider.
// It is informational; final pricing is settled post-trip.
type Estimate struct {
	DistanceMeters  float64 `json:"distanceMeters"`
	DurationSeconds float64 `json:"durationSeconds"`
	Fare            float64 `json:"fare"`
}

// RideWithEstimate pairs a persisted ride with its quote.
type RideWithEstimate struct {
	Ride     *models.Ride `json:"ride"`
	Estimate *Estimate    `json:"estimate,omitempty"`
}

// Service coordinates ride-request persistence and fare quoting.
type Service struct {
	store     repository.RideStore
	estimator RouteEstimator
	logger    logger.Logger
}

func NewService(store repository.RideStore, estimator RouteEstimator, log logger.Logger) *Service {
	return &Service{
		store:     store,
		estimator: estimator,
		logger:    log.WithFields(map[string]interface{}{"component": "rides-service"}),
	}
}

// Create validates and persists a ride request, then quotes it. A routing
// failure degrades to a ride without an estimate rather than failing the
// request.
func (s *Service) Create(ctx context.Context, riderID string, req CreateRequest) (*RideWithEstimate, error) {
	if err := validateCreate(riderID, req); err != nil {
		return nil, err
	}

	ride, err := s.store.Create(ctx, &models.Ride{
		RiderID:     riderID,
		PickupName:  req.PickupName,
		PickupLat:   req.PickupLat,
		PickupLng:   req.PickupLng,
		DropoffName: req.DropoffName,
		DropoffLat:  req.DropoffLat,
		DropoffLng:  req.DropoffLng,
	})
	if err != nil {
		return nil, err
	}

	result := &RideWithEstimate{Ride: ride}
	if s.estimator != nil {
		route, routeErr := s.estimator.Directions(ctx, req.PickupLat, req.PickupLng, req.DropoffLat, req.DropoffLng)
		if routeErr != nil {
			s.logger.Warn("fare estimate unavailable", map[string]interface{}{
				"rideId": ride.ID,
				"error":  routeErr.Error(),
			})
		} else {
			result.Estimate = &Estimate{
				DistanceMeters:  route.DistanceMeters,
				DurationSeconds: route.DurationSeconds,
				Fare:            quoteFare(route),
			}
		}
	}
	return result, nil
}

// Cancel cancels a ride owned by the caller. Only rides still in the
// requested state may be cancelled.
func (s *Service) Cancel(ctx context.Context, riderID, rideID string) (*models.Ride, error) {
	ride, err := s.store.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if ride.RiderID != riderID {
		return nil, errors.NewForbiddenError("ride belongs to another rider")
	}
	if ride.Status != models.RideStatusRequested {
		return nil, errors.NewInvalidInputError("ride is not cancellable in status " + ride.Status)
	}
	return s.store.Cancel(ctx, rideID)
}

// Get returns a ride owned by the caller.
func (s *Service) Get(ctx context.Context, riderID, rideID string) (*models.Ride, error) {
	ride, err := s.store.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if ride.RiderID != riderID {
		return nil, errors.NewForbiddenError("ride belongs to another rider")
	}
	return ride, nil
}

func validateCreate(riderID string, req CreateRequest) error {
	switch {
	case riderID == "":
		return errors.NewInvalidInputError("missing rider id")
	case strings.TrimSpace(req.PickupName) == "" || strings.TrimSpace(req.DropoffName) == "":
		return errors.NewInvalidInputError("pickup and dropoff names are required")
	case !validCoord(req.PickupLat, 90) || !validCoord(req.PickupLng, 180):
		return errors.NewInvalidInputError("pickup coordinates out of range")
	case !validCoord(req.DropoffLat, 90) || !validCoord(req.DropoffLng, 180):
		return errors.NewInvalidInputError("dropoff coordinates out of range")
	}
	return nil
}

func validCoord(v, limit float64) bool {
	return !math.IsNaN(v) && v >= -limit && v <= limit
}

func quoteFare(route *maps.Route) float64 {
	fare := baseFare + route.DistanceMeters*perMeterFare + route.DurationSeconds*perSecondFare
	return math.Round(fare)
}
