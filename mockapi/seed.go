package mockapi

import (
	"fmt"
	"time"

	"github.com/articulink/admin-dashboard/sessions"
	"github.com/articulink/admin-dashboard/users"
)

type seedUser struct {
	email, first, last, gender, birthdate string
	role                                  sessions.RoleType
	status                                users.StatusType
	monthsAgo                             int
}

var demoUsers = []seedUser{
	{"maria.santos@example.com", "Maria", "Santos", "Female", "1998-04-12", sessions.RoleUser, users.StatusActive, 5},
	{"juan.delacruz@example.com", "Juan", "Dela Cruz", "Male", "1990-11-02", sessions.RoleUser, users.StatusActive, 4},
	{"ana.reyes@example.com", "Ana", "Reyes", "Female", "2006-01-20", sessions.RoleUser, users.StatusPending, 3},
	{"paolo.garcia@example.com", "Paolo", "Garcia", "Male", "1979-07-30", sessions.RoleUser, users.StatusInactive, 2},
	{"lee.tan@example.com", "Lee", "Tan", "Other", "1965-03-08", sessions.RoleUser, users.StatusActive, 1},
	{"grace.lim@example.com", "Grace", "Lim", "", "", sessions.RoleUser, users.StatusActive, 0},
}

// Seed creates an admin account plus, when demo is set, a handful of regular
// users spread over the last months so the charts have something to show.
func Seed(repo users.UserRepo, adminEmail, adminPassword string, demo bool) error {
	if err := users.ValidatePassword(adminPassword); err != nil {
		return fmt.Errorf("[mockapi Seed] admin password: %w", err)
	}
	hash, err := users.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("[mockapi Seed] hash admin password: %w", err)
	}
	now := users.NowTimeFunc()
	admin := &users.User{
		Email:        adminEmail,
		PasswordHash: hash,
		FirstName:    "Admin",
		FullName:     "ArticuLink Admin",
		Role:         sessions.RoleAdmin,
		Status:       users.StatusActive,
		CreatedAt:    now.AddDate(0, -6, 0),
	}
	if err := repo.Create(admin); err != nil {
		return fmt.Errorf("[mockapi Seed] admin: %w", err)
	}
	if !demo {
		return nil
	}

	// Demo accounts all share the admin's password.
	for _, d := range demoUsers {
		u := &users.User{
			Email:        d.email,
			PasswordHash: hash,
			FirstName:    d.first,
			LastName:     d.last,
			Gender:       d.gender,
			Birthdate:    d.birthdate,
			Role:         d.role,
			Status:       d.status,
			CreatedAt:    now.AddDate(0, -d.monthsAgo, 0).Add(-time.Duration(len(d.email)) * time.Hour),
		}
		if d.status == users.StatusInactive {
			u.DeactivationType = users.DeactivationPermanent
			u.DeactivationReason = "Violation of community guidelines"
		}
		if err := repo.Create(u); err != nil {
			return fmt.Errorf("[mockapi Seed] %s: %w", d.email, err)
		}
	}
	return nil
}
