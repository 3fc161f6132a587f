package fakeuserrepo

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/articulink/admin-dashboard/internal/errors"
	"github.com/articulink/admin-dashboard/users"
)

var _ users.UserRepo = (*FakeUserRepo)(nil)

// FakeUserRepo keeps users in memory. It hands out copies so callers can
// change a user and Update it like they would with a database.
type FakeUserRepo struct {
	users    map[string]*users.User
	emailIds map[string]string // email to user id
	lock     sync.RWMutex
}

func NewFakeUserRepo() *FakeUserRepo {
	return &FakeUserRepo{
		users:    make(map[string]*users.User),
		emailIds: make(map[string]string),
	}
}

func (ur *FakeUserRepo) Create(user *users.User) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	user.Email = users.NormaliseEmail(user.Email)
	if _, ok := ur.emailIds[user.Email]; ok {
		return fmt.Errorf("email %s already registered: %w", user.Email, apperrors.ErrInvalidRequest)
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := users.NowTimeFunc()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	if user.Status == "" {
		user.Status = users.StatusActive
	}

	stored := *user
	ur.users[user.ID] = &stored
	ur.emailIds[user.Email] = user.ID
	return nil
}

func (ur *FakeUserRepo) Update(user *users.User) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	existing, ok := ur.users[user.ID]
	if !ok {
		return fmt.Errorf("user %s: %w", user.ID, apperrors.ErrNotFound)
	}
	user.Email = users.NormaliseEmail(user.Email)
	if user.Email != existing.Email {
		if _, taken := ur.emailIds[user.Email]; taken {
			return fmt.Errorf("email %s already registered: %w", user.Email, apperrors.ErrInvalidRequest)
		}
		delete(ur.emailIds, existing.Email)
		ur.emailIds[user.Email] = user.ID
	}
	stored := *user
	ur.users[user.ID] = &stored
	return nil
}

func (ur *FakeUserRepo) Delete(id string) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	user, ok := ur.users[id]
	if !ok {
		return fmt.Errorf("user %s: %w", id, apperrors.ErrNotFound)
	}
	delete(ur.emailIds, user.Email)
	delete(ur.users, id)
	return nil
}

func (ur *FakeUserRepo) GetByEmail(email string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	id, ok := ur.emailIds[users.NormaliseEmail(email)]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", email, apperrors.ErrNotFound)
	}
	u := *ur.users[id]
	return &u, nil
}

func (ur *FakeUserRepo) GetByID(id string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	user, ok := ur.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, apperrors.ErrNotFound)
	}
	u := *user
	return &u, nil
}

// List returns matching users ordered by creation time, oldest first.
func (ur *FakeUserRepo) List(filter users.Filter) ([]*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	userList := make([]*users.User, 0, len(ur.users))
	for _, v := range ur.users {
		if filter.Role != "" && string(v.Role) != filter.Role {
			continue
		}
		if filter.Status != "" && string(v.Status) != filter.Status {
			continue
		}
		u := *v
		userList = append(userList, &u)
	}

	sort.Slice(userList, func(i, j int) bool {
		if userList[i].CreatedAt.Equal(userList[j].CreatedAt) {
			return userList[i].ID < userList[j].ID
		}
		return userList[i].CreatedAt.Before(userList[j].CreatedAt)
	})

	if filter.Skip >= len(userList) {
		return []*users.User{}, nil
	}
	userList = userList[filter.Skip:]
	if filter.Limit > 0 && filter.Limit < len(userList) {
		userList = userList[:filter.Limit]
	}
	return userList, nil
}

func (ur *FakeUserRepo) Stats() (users.Stats, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	s := users.Stats{
		TotalUsers:         len(ur.users),
		ByRole:             map[string]int{"admin": 0, "user": 0},
		ByStatus:           map[string]int{"active": 0, "inactive": 0, "pending": 0},
		ByDeactivationType: map[string]int{"permanent": 0, "temporary": 0},
	}
	for _, u := range ur.users {
		s.ByRole[string(u.Role)]++
		s.ByStatus[string(u.Status)]++
		if u.Status == users.StatusInactive && u.DeactivationType != "" {
			s.ByDeactivationType[string(u.DeactivationType)]++
		}
	}
	return s, nil
}

func (ur *FakeUserRepo) ReactivateExpired(now time.Time) (int, error) {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	count := 0
	for _, u := range ur.users {
		if u.DueForReactivation(now) {
			u.Activate()
			count++
		}
	}
	return count, nil
}
