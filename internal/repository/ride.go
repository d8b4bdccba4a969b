// internal/repository/ride.go
package repository

import (
	"context"
	"database/sql"
	"time"

	"ridehail-platform/internal/common/errors"
	"ridehail-platform/internal/common/logger"
	"ridehail-platform/internal/models"

	"github.com/google/uuid"
)

// RideStore is the persistence contract for ride requests.
type RideStore interface {
	Create(ctx context.Context, ride *models.Ride) (*models.Ride, error)
	GetByID(ctx context.Context, id string) (*models.Ride, error)
	Cancel(ctx context.Context, id string) (*models.Ride, error)
}

// RideRepository owns the rides table.
type RideRepository struct {
	db     *sql.DB
	logger logger.Logger
}

func NewRideRepository(db *sql.DB, log logger.Logger) *RideRepository {
	return &RideRepository{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "ride-repository"}),
	}
}

// Create persists a new ride request in the requested state.
func (r *RideRepository) Create(ctx context.Context, ride *models.Ride) (*models.Ride, error) {
	ride.ID = uuid.New().String()
	ride.Status = models.RideStatusRequested
	now := time.Now().UTC().Format(time.RFC3339)
	ride.CreatedAt = now
	ride.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO rides (
			id, rider_id, pickup_name, pickup_lat, pickup_lng,
			dropoff_name, dropoff_lat, dropoff_lng, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)`,
		ride.ID, ride.RiderID, ride.PickupName, ride.PickupLat, ride.PickupLng,
		ride.DropoffName, ride.DropoffLat, ride.DropoffLng, ride.Status, now,
	)
	if err != nil {
		return nil, errors.NewUpstreamFailureError("create ride", err)
	}

	r.logger.Info("ride request created", map[string]interface{}{
		"rideId":  ride.ID,
		"riderId": ride.RiderID,
	})
	return ride, nil
}

// GetByID fetches one ride request.
func (r *RideRepository) GetByID(ctx context.Context, id string) (*models.Ride, error) {
	var ride models.Ride
	err := r.db.QueryRowContext(ctx, `
		SELECT id, rider_id, pickup_name, pickup_lat, pickup_lng,
			dropoff_name, dropoff_lat, dropoff_lng, status, created_at, updated_at
		FROM rides
		WHERE id = $1`, id).
		Scan(&ride.ID, &ride.RiderID, &ride.PickupName, &ride.PickupLat, &ride.PickupLng,
			&ride.DropoffName, &ride.DropoffLat, &ride.DropoffLng, &ride.Status,
			&ride.CreatedAt, &ride.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFoundError("Ride", id)
		}
		return nil, errors.NewUpstreamFailureError("load ride", err)
	}
	return &ride, nil
}

// Cancel flips a ride request to cancelled and returns the updated record.
func (r *RideRepository) Cancel(ctx context.Context, id string) (*models.Ride, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := r.db.ExecContext(ctx, `
		UPDATE rides SET status = $1, updated_at = $2 WHERE id = $3`,
		models.RideStatusCancelled, now, id)
	if err != nil {
		return nil, errors.NewUpstreamFailureError("cancel ride", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return nil, errors.NewUpstreamFailureError("cancel ride", err)
	}
	if rows == 0 {
		return nil, errors.NewNotFoundError("Ride", id)
	}
	return r.GetByID(ctx, id)
}
