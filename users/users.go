package users

import (
	"fmt"
	"strings"
	"time"

	"github.com/articulink/admin-dashboard/internal/utils"
	"github.com/articulink/admin-dashboard/sessions"
	"golang.org/x/crypto/bcrypt"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

type StatusType string

const (
	StatusActive   StatusType = "active"
	StatusInactive StatusType = "inactive"
	StatusPending  StatusType = "pending"
)

type DeactivationType string

const (
	DeactivationPermanent DeactivationType = "permanent"
	DeactivationTemporary DeactivationType = "temporary"
)

// Deactivation durations accepted for temporary deactivation.
var deactivationDurations = map[string]func(time.Time) time.Time{
	"1day":   func(t time.Time) time.Time { return t.AddDate(0, 0, 1) },
	"1week":  func(t time.Time) time.Time { return t.AddDate(0, 0, 7) },
	"1month": func(t time.Time) time.Time { return t.AddDate(0, 1, 0) },
	"1year":  func(t time.Time) time.Time { return t.AddDate(1, 0, 0) },
}

const minPasswordLength = 6

// User is an ArticuLink account as held by the development backend.
type User struct {
	ID                  string
	Email               string
	PasswordHash        string
	FirstName           string
	LastName            string
	FullName            string
	Role                sessions.RoleType
	ProfilePic          string
	Birthdate           string // YYYY-MM-DD
	Gender              string
	Status              StatusType
	DeactivationReason  string
	DeactivationType    DeactivationType
	DeactivationEndDate time.Time
	RefreshToken        string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Profile is the wire representation of the user.
func (u *User) Profile() sessions.UserProfile {
	p := sessions.UserProfile{
		ID:                 u.ID,
		Email:              u.Email,
		Role:               u.Role,
		FirstName:          utils.PtrOrNil(u.FirstName),
		LastName:           utils.PtrOrNil(u.LastName),
		FullName:           utils.PtrOrNil(u.FullName),
		ProfilePic:         utils.PtrOrNil(u.ProfilePic),
		Birthdate:          utils.PtrOrNil(u.Birthdate),
		Gender:             utils.PtrOrNil(u.Gender),
		Status:             utils.PtrOrNil(string(u.Status)),
		DeactivationReason: utils.PtrOrNil(u.DeactivationReason),
	}
	if !u.CreatedAt.IsZero() {
		p.JoinDate = utils.Ptr(u.CreatedAt.UTC().Format(time.RFC3339))
	}
	return p
}

// Deactivate marks the user inactive. Temporary deactivation needs one of the
// known durations and ends at the computed date.
func (u *User) Deactivate(kind DeactivationType, duration, reason string) error {
	switch kind {
	case DeactivationPermanent:
		u.DeactivationEndDate = time.Time{}
	case DeactivationTemporary:
		end, ok := deactivationDurations[duration]
		if !ok {
			return fmt.Errorf("duration must be one of 1day, 1week, 1month, 1year")
		}
		u.DeactivationEndDate = end(NowTimeFunc())
	default:
		return fmt.Errorf("deactivation_type must be either 'permanent' or 'temporary'")
	}
	u.Status = StatusInactive
	u.DeactivationType = kind
	u.DeactivationReason = reason
	u.UpdatedAt = NowTimeFunc()
	return nil
}

// Activate clears every deactivation field.
func (u *User) Activate() {
	u.Status = StatusActive
	u.DeactivationType = ""
	u.DeactivationReason = ""
	u.DeactivationEndDate = time.Time{}
	u.UpdatedAt = NowTimeFunc()
}

// DueForReactivation reports whether a temporary deactivation has run out.
func (u *User) DueForReactivation(now time.Time) bool {
	return u.Status == StatusInactive &&
		u.DeactivationType == DeactivationTemporary &&
		!u.DeactivationEndDate.IsZero() &&
		!u.DeactivationEndDate.After(now)
}

// Age in whole years on the given day, or false when the birthdate is unknown.
func (u *User) Age(now time.Time) (int, bool) {
	if u.Birthdate == "" {
		return 0, false
	}
	b, err := time.Parse("2006-01-02", u.Birthdate)
	if err != nil {
		return 0, false
	}
	age := now.Year() - b.Year()
	if now.Month() < b.Month() || (now.Month() == b.Month() && now.Day() < b.Day()) {
		age--
	}
	return age, true
}

func NormaliseEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func ValidatePassword(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters long", minPasswordLength)
	}
	return nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
