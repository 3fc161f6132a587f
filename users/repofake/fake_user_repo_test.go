package fakeuserrepo_test

import (
	"testing"
	"time"

	apperrors "github.com/articulink/admin-dashboard/internal/errors"
	"github.com/articulink/admin-dashboard/sessions"
	"github.com/articulink/admin-dashboard/users"
	fakeuserrepo "github.com/articulink/admin-dashboard/users/repofake"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T) *fakeuserrepo.FakeUserRepo {
	t.Helper()
	repo := fakeuserrepo.NewFakeUserRepo()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, u := range []users.User{
		{Email: "Admin@B.com", Role: sessions.RoleAdmin},
		{Email: "one@b.com", Role: sessions.RoleUser},
		{Email: "two@b.com", Role: sessions.RoleUser, Status: users.StatusPending},
	} {
		u.CreatedAt = base.AddDate(0, i, 0)
		require.NoError(t, repo.Create(&u))
	}
	return repo
}

func TestFakeUserRepo_CreateAndGet(t *testing.T) {
	repo := seed(t)

	u, err := repo.GetByEmail("ADMIN@b.com")
	require.NoError(t, err)
	require.Equal(t, "admin@b.com", u.Email)
	require.Equal(t, users.StatusActive, u.Status)
	require.NotEmpty(t, u.ID)

	byID, err := repo.GetByID(u.ID)
	require.NoError(t, err)
	require.Equal(t, u.Email, byID.Email)

	err = repo.Create(&users.User{Email: "admin@b.com"})
	require.ErrorIs(t, err, apperrors.ErrInvalidRequest)

	_, err = repo.GetByID("missing")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestFakeUserRepo_ReturnsCopies(t *testing.T) {
	repo := seed(t)
	u, err := repo.GetByEmail("one@b.com")
	require.NoError(t, err)

	u.FirstName = "Changed"
	again, err := repo.GetByEmail("one@b.com")
	require.NoError(t, err)
	require.Empty(t, again.FirstName)

	require.NoError(t, repo.Update(u))
	again, err = repo.GetByEmail("one@b.com")
	require.NoError(t, err)
	require.Equal(t, "Changed", again.FirstName)
}

func TestFakeUserRepo_ListFilters(t *testing.T) {
	repo := seed(t)

	all, err := repo.List(users.Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, "admin@b.com", all[0].Email)

	onlyUsers, err := repo.List(users.Filter{Role: "user"})
	require.NoError(t, err)
	require.Len(t, onlyUsers, 2)

	pending, err := repo.List(users.Filter{Status: "pending"})
	require.NoError(t, err)
	require.Len(t, pending, 1)

	page, err := repo.List(users.Filter{Skip: 1, Limit: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	require.Equal(t, "one@b.com", page[0].Email)

	empty, err := repo.List(users.Filter{Skip: 10})
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestFakeUserRepo_StatsAndReactivation(t *testing.T) {
	repo := seed(t)
	u, err := repo.GetByEmail("one@b.com")
	require.NoError(t, err)
	require.NoError(t, u.Deactivate(users.DeactivationTemporary, "1day", "cooling off"))
	require.NoError(t, repo.Update(u))

	s, err := repo.Stats()
	require.NoError(t, err)
	require.Equal(t, 3, s.TotalUsers)
	require.Equal(t, 1, s.ByRole["admin"])
	require.Equal(t, 2, s.ByRole["user"])
	require.Equal(t, 1, s.ByStatus["inactive"])
	require.Equal(t, 1, s.ByStatus["pending"])
	require.Equal(t, 1, s.ByDeactivationType["temporary"])

	n, err := repo.ReactivateExpired(time.Now())
	require.NoError(t, err)
	require.Zero(t, n)

	n, err = repo.ReactivateExpired(time.Now().AddDate(0, 0, 2))
	require.NoError(t, err)
	require.Equal(t, 1, n)

	u, err = repo.GetByEmail("one@b.com")
	require.NoError(t, err)
	require.Equal(t, users.StatusActive, u.Status)
}

func TestFakeUserRepo_Delete(t *testing.T) {
	repo := seed(t)
	u, err := repo.GetByEmail("two@b.com")
	require.NoError(t, err)

	require.NoError(t, repo.Delete(u.ID))
	_, err = repo.GetByEmail("two@b.com")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
	require.ErrorIs(t, repo.Delete(u.ID), apperrors.ErrNotFound)
}
