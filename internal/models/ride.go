// internal/models/ride.go
package models

// Ride request statuses.
const (
	RideStatusRequested = "requested"
	RideStatusCancelled = "cancelled"
)

// Ride represents a ride request. The coordination layer only creates, cancels
// and reads them; matching and dispatch happen elsewhere.
type Ride struct {
	ID           string  `json:"id"`
	RiderID      string  `json:"riderId"`
	PickupName   string  `json:"pickupName"`
	PickupLat    float64 `json:"pickupLat"`
	PickupLng    float64 `json:"pickupLng"`
	DropoffName  string  `json:"dropoffName"`
	DropoffLat   float64 `json:"dropoffLat"`
	DropoffLng   float64 `json:"dropoffLng"`
	Status       string  `json:"status"`
	CreatedAt    string  `json:"createdAt"`
	UpdatedAt    string  `json:"updatedAt"`
}
