// internal/models/profile.go
package models

// Platform account roles.
const (
	RoleRider  = "rider"
	RoleDriver = "driver"
	RoleAdmin  = "admin"
)

// Profile represents a platform account. Created at signup; the workflow only
// ever mutates Role, and only when promoting a user to driver.
type Profile struct {
	ID          string  `json:"id"`
	UserID      string  `json:"userId"`
	FullName    string  `json:"fullName"`
	Email       string  `json:"email"`
	Phone       string  `json:"phone,omitempty"`
	Role        string  `json:"role"`
	Rating      float64 `json:"rating"`
	RatingCount int     `json:"ratingCount"`
}

// IsAdmin reports whether the profile holds the admin capability.
func (p *Profile) IsAdmin() bool {
	return p.Role == RoleAdmin
}
