// internal/rides/service_test.go
package rides

import (
	"context"
	"testing"

	"ridehail-platform/internal/common/errors"
	"ridehail-platform/internal/common/logger"
	"ridehail-platform/internal/maps"
	"ridehail-platform/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRideStore struct {
	rides   map[string]*models.Ride
	failure error
}

func newStubRideStore() *stubRideStore {
	return &stubRideStore{rides: map[string]*models.Ride{}}
}

func (s *stubRideStore) Create(ctx context.Context, ride *models.Ride) (*models.Ride, error) {
	if s.failure != nil {
		return nil, s.failure
	}
	ride.ID = "ride-1"
	ride.Status = models.RideStatusRequested
	s.rides[ride.ID] = ride
	return ride, nil
}

func (s *stubRideStore) GetByID(ctx context.Context, id string) (*models.Ride, error) {
	ride, ok := s.rides[id]
	if !ok {
		return nil, errors.NewNotFoundError("Ride", id)
	}
	return ride, nil
}

func (s *stubRideStore) Cancel(ctx context.Context, id string) (*models.Ride, error) {
	ride, ok := s.rides[id]
	if !ok {
		return nil, errors.NewNotFoundError("Ride", id)
	}
	ride.Status = models.RideStatusCancelled
	return ride, nil
}

type stubEstimator struct {
	route *maps.Route
	err   error
}

func (s *stubEstimator) Directions(ctx context.Context, fromLat, fromLng, toLat, toLng float64) (*maps.Route, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.route, nil
}

func validRequest() CreateRequest {
	return CreateRequest{
		PickupName:  "Airport",
		PickupLat:   12.97,
		PickupLng:   77.59,
		DropoffName: "Downtown",
		DropoffLat:  12.93,
		DropoffLng:  77.61,
	}
}

func TestCreate_QuotesFare(t *testing.T) {
	store := newStubRideStore()
	estimator := &stubEstimator{route: &maps.Route{DistanceMeters: 8000, DurationSeconds: 1200}}
	svc := NewService(store, estimator, logger.NewTestLogger(t))

	result, err := svc.Create(context.Background(), "rider-1", validRequest())

	require.NoError(t, err)
	assert.Equal(t, models.RideStatusRequested, result.Ride.Status)
	require.NotNil(t, result.Estimate)
	// 250 + 8000*0.08 + 1200*0.05
	assert.Equal(t, 950.0, result.Estimate.Fare)
}

func TestCreate_RoutingFailureDegradesToNoEstimate(t *testing.T) {
	store := newStubRideStore()
	estimator := &stubEstimator{err: errors.NewUpstreamFailureError("maps provider", assert.AnError)}
	svc := NewService(store, estimator, logger.NewTestLogger(t))

	result, err := svc.Create(context.Background(), "rider-1", validRequest())

	require.NoError(t, err, "routing outage must not block ride creation")
	assert.Nil(t, result.Estimate)
	assert.Equal(t, "ride-1", result.Ride.ID)
}

func TestCreate_ValidationFailures(t *testing.T) {
	svc := NewService(newStubRideStore(), nil, logger.NewTestLogger(t))

	tests := []struct {
		name    string
		riderID string
		mutate  func(*CreateRequest)
	}{
		{name: "missing rider", riderID: "", mutate: func(r *CreateRequest) {}},
		{name: "blank pickup name", riderID: "rider-1", mutate: func(r *CreateRequest) { r.PickupName = "  " }},
		{name: "latitude out of range", riderID: "rider-1", mutate: func(r *CreateRequest) { r.PickupLat = 91 }},
		{name: "longitude out of range", riderID: "rider-1", mutate: func(r *CreateRequest) { r.DropoffLng = -181 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)
			_, err := svc.Create(context.Background(), tt.riderID, req)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidInput))
		})
	}
}

func TestCancel_OwnerOnly(t *testing.T) {
	store := newStubRideStore()
	svc := NewService(store, nil, logger.NewTestLogger(t))
	_, err := svc.Create(context.Background(), "rider-1", validRequest())
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), "rider-2", "ride-1")

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeForbidden))
}

func TestCancel_Success(t *testing.T) {
	store := newStubRideStore()
	svc := NewService(store, nil, logger.NewTestLogger(t))
	_, err := svc.Create(context.Background(), "rider-1", validRequest())
	require.NoError(t, err)

	ride, err := svc.Cancel(context.Background(), "rider-1", "ride-1")

	require.NoError(t, err)
	assert.Equal(t, models.RideStatusCancelled, ride.Status)
}

func TestCancel_AlreadyCancelled(t *testing.T) {
	store := newStubRideStore()
	svc := NewService(store, nil, logger.NewTestLogger(t))
	_, err := svc.Create(context.Background(), "rider-1", validRequest())
	require.NoError(t, err)
	_, err = svc.Cancel(context.Background(), "rider-1", "ride-1")
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), "rider-1", "ride-1")

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidInput))
}

func TestGet_NotFound(t *testing.T) {
	svc := NewService(newStubRideStore(), nil, logger.NewTestLogger(t))

	_, err := svc.Get(context.Background(), "rider-1", "missing")

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeNotFound))
}
