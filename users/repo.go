package users

import "time"

// Filter narrows List. Empty fields match everything.
type Filter struct {
	Role   string
	Status string
	Skip   int
	Limit  int
}

type Stats struct {
	TotalUsers         int            `json:"total_users"`
	ByRole             map[string]int `json:"by_role"`
	ByStatus           map[string]int `json:"by_status"`
	ByDeactivationType map[string]int `json:"by_deactivation_type"`
}

type UserRepo interface {
	Create(user *User) error
	Update(user *User) error
	Delete(id string) error
	GetByEmail(email string) (*User, error)
	GetByID(id string) (*User, error)
	List(filter Filter) ([]*User, error)
	Stats() (Stats, error)
	// ReactivateExpired activates users whose temporary deactivation ended
	// before now and returns how many were changed.
	ReactivateExpired(now time.Time) (int, error)
}
