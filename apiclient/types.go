package apiclient

import (
	"github.com/articulink/admin-dashboard/sessions"
)

// User is an account as listed by /api/users/.
type User = sessions.UserProfile

// TokenPair is the body of a successful POST /api/auth/login.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	FullName *string `json:"full_name,omitempty"`
}

// Registered is returned by POST /api/auth/register.
type Registered struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// ProfileUpdate is the body of PUT /api/auth/profile. Nil fields are left
// unchanged by the backend.
type ProfileUpdate struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Birthdate *string `json:"birthdate,omitempty"`
	Gender    *string `json:"gender,omitempty"`
}

// UserFilter narrows GET /api/users/. Zero values are not sent.
type UserFilter struct {
	Skip   int
	Limit  int
	Role   string
	Status string
}

type UserStats struct {
	TotalUsers int            `json:"total_users"`
	ByRole     map[string]int `json:"by_role"`
	ByStatus   map[string]int `json:"by_status"`

	// ByDeactivationType counts inactive users by permanent or temporary.
	ByDeactivationType map[string]int `json:"by_deactivation_type,omitempty"`
}

type UserStatus string

const (
	StatusActive   UserStatus = "active"
	StatusInactive UserStatus = "inactive"
	StatusPending  UserStatus = "pending"
)

type DeactivationType string

const (
	DeactivationPermanent DeactivationType = "permanent"
	DeactivationTemporary DeactivationType = "temporary"
)

// DeactivateRequest is the body of PUT /api/users/{id}/deactivate. Duration is
// one of 1day, 1week, 1month, 1year and only applies to temporary
// deactivation.
type DeactivateRequest struct {
	DeactivationType   DeactivationType `json:"deactivation_type"`
	Duration           string           `json:"duration,omitempty"`
	DeactivationReason string           `json:"deactivation_reason,omitempty"`
}

// ActionResult is returned by the moderation endpoints.
type ActionResult struct {
	Message          string `json:"message,omitempty"`
	UpdatedCount     int    `json:"updated_count,omitempty"`
	ModifiedCount    int    `json:"modified_count,omitempty"`
	ReactivatedCount int    `json:"reactivated_count,omitempty"`
}

// ProfilePicture is returned by the profile picture endpoints.
type ProfilePicture struct {
	Message    string  `json:"message,omitempty"`
	ProfilePic *string `json:"profile_pic"`
}
