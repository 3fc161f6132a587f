package sessions

import (
	"strings"
)

// Storage keys. They match the keys used by every other ArticuLink client so a
// session file can be inspected by hand.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyUser         = "user"
)

// RoleType is the role the ArticuLink backend assigns to an account.
type RoleType string

const (
	RoleAdmin RoleType = "admin"
	RoleUser  RoleType = "user"
)

// UserProfile is the cached copy of the signed in account as returned by
// GET /api/auth/me. It is for display only; the backend decides access.
type UserProfile struct {
	ID                 string   `json:"id"`
	Email              string   `json:"email"`
	Role               RoleType `json:"role,omitempty"`
	FirstName          *string  `json:"first_name,omitempty"`
	LastName           *string  `json:"last_name,omitempty"`
	FullName           *string  `json:"full_name,omitempty"`
	ProfilePic         *string  `json:"profile_pic,omitempty"`
	Birthdate          *string  `json:"birthdate,omitempty"`
	Gender             *string  `json:"gender,omitempty"`
	Status             *string  `json:"status,omitempty"`
	DeactivationReason *string  `json:"deactivation_reason,omitempty"`
	JoinDate           *string  `json:"join_date,omitempty"`
}

// IsAdmin reports whether the cached role is admin.
func (u *UserProfile) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// DisplayName prefers first + last name, then full name, then email.
func (u *UserProfile) DisplayName() string {
	if u == nil {
		return ""
	}
	var parts []string
	if u.FirstName != nil && strings.TrimSpace(*u.FirstName) != "" {
		parts = append(parts, strings.TrimSpace(*u.FirstName))
	}
	if u.LastName != nil && strings.TrimSpace(*u.LastName) != "" {
		parts = append(parts, strings.TrimSpace(*u.LastName))
	}
	if len(parts) > 0 {
		return strings.Join(parts, " ")
	}
	if u.FullName != nil && strings.TrimSpace(*u.FullName) != "" {
		return strings.TrimSpace(*u.FullName)
	}
	return u.Email
}

// Session is a point in time view of a Store.
type Session struct {
	AccessToken  string
	RefreshToken string
	User         *UserProfile
}

// Authenticated reports whether an access token is present. A present token
// may still be expired or revoked server side.
func (s Session) Authenticated() bool {
	return s.AccessToken != ""
}

// Snapshot reads all session fields from the store. Fields are read one at a
// time so a concurrent writer may be observed half way through an update.
func Snapshot(store Store) Session {
	var s Session
	s.AccessToken, _ = store.Token()
	s.RefreshToken, _ = store.RefreshToken()
	s.User, _ = store.User()
	return s
}
