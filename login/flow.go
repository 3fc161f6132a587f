package login

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/articulink/admin-dashboard/apiclient"
	apperrors "github.com/articulink/admin-dashboard/internal/errors"
	"github.com/articulink/admin-dashboard/sessions"
	"github.com/rs/zerolog/log"
)

// DashboardPath is where a successful login lands.
const DashboardPath = "/dashboard"

const (
	loginFailedMessage = "Login failed"
	inProgressMessage  = "Signing in, please wait"
)

// Authenticator is the part of the backend the login flow talks to.
// apiclient.AuthAPI implements it.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (apiclient.TokenPair, error)
	Me(ctx context.Context) (sessions.UserProfile, error)
}

var _ Authenticator = apiclient.AuthAPI{}

// Result says where to go after a successful submission.
type Result struct {
	Redirect string
	User     *sessions.UserProfile
}

// Flow establishes a session in one Store. A Flow accepts one submission at a
// time; a second Submit while the first is running fails with
// ErrSubmitInProgress and makes no request.
type Flow struct {
	store    sessions.Store
	auth     Authenticator
	inFlight atomic.Bool
}

func New(store sessions.Store, auth Authenticator) (*Flow, error) {
	if store == nil {
		return nil, fmt.Errorf("[login New] session store is required")
	}
	if auth == nil {
		return nil, fmt.Errorf("[login New] authenticator is required")
	}
	return &Flow{store: store, auth: auth}, nil
}

// Submitting reports whether a submission is in flight.
func (f *Flow) Submitting() bool {
	return f.inFlight.Load()
}

// Submit validates the credentials, exchanges them for a token pair and
// persists it in place of any previous session. A rejected login leaves the
// store as it was.
func (f *Flow) Submit(ctx context.Context, email, password string) (Result, error) {
	email = strings.TrimSpace(email)
	if err := Validate(email, password); err != nil {
		return Result{}, err
	}

	if !f.inFlight.CompareAndSwap(false, true) {
		return Result{}, apperrors.ErrSubmitInProgress
	}
	defer f.inFlight.Store(false)

	pair, err := f.auth.Login(ctx, email, password)
	if err != nil {
		log.Info().Str("email", email).Str("reason", apiclient.Message(err)).Msg("Login rejected")
		return Result{}, err
	}
	if pair.AccessToken == "" {
		return Result{}, apperrors.Wrapf(apperrors.ErrDecoding, "login response without access token")
	}

	if err := f.persist(pair); err != nil {
		return Result{}, err
	}

	res := Result{Redirect: DashboardPath}
	user, err := f.auth.Me(ctx)
	switch {
	case err == nil:
		if err := f.store.SetUser(user); err != nil {
			log.Err(err).Msg("Failed to cache user after login")
		}
		res.User = &user
	case isInvalidated(err):
		inv, _ := apiclient.AsInvalidated(err)
		res.Redirect = inv.LoginURL()
	default:
		// The tokens are valid; the profile can be fetched later.
		log.Warn().Err(err).Msg("Profile fetch after login failed")
	}

	log.Info().Str("email", email).Msg("Login succeeded")
	return res, nil
}

// persist replaces whatever the store held, so a profile cached for a previous
// account never sits next to the new tokens.
func (f *Flow) persist(pair apiclient.TokenPair) error {
	if err := f.store.Clear(); err != nil {
		return apperrors.Wrapf(apperrors.ErrStorage, "clear previous session: %v", err)
	}
	if err := f.store.SetToken(pair.AccessToken); err != nil {
		return apperrors.Wrapf(apperrors.ErrStorage, "persist access token: %v", err)
	}
	if err := f.store.SetRefreshToken(pair.RefreshToken); err != nil {
		if clearErr := f.store.Clear(); clearErr != nil {
			log.Err(clearErr).Msg("Failed to roll back partial login")
		}
		return apperrors.Wrapf(apperrors.ErrStorage, "persist refresh token: %v", err)
	}
	return nil
}

// Logout clears the session and returns the login page path.
func (f *Flow) Logout() (string, error) {
	return Logout(f.store)
}

func Logout(store sessions.Store) (string, error) {
	if err := store.Clear(); err != nil {
		return apiclient.LoginPath, apperrors.Wrapf(apperrors.ErrStorage, "logout: %v", err)
	}
	return apiclient.LoginPath, nil
}

// BannerMessage is the inline text for a failed submission: the backend's
// detail verbatim, a connection hint, a validation hint or "Login failed".
func BannerMessage(err error) string {
	if err == nil {
		return ""
	}
	var verr *ValidationError
	if apperrors.As(err, &verr) {
		return verr.Message()
	}
	if apperrors.Is(err, apperrors.ErrSubmitInProgress) {
		return inProgressMessage
	}
	var apiErr *apiclient.APIError
	if apperrors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	if apperrors.Is(err, apperrors.ErrNetwork) {
		return apiclient.Message(err)
	}
	return loginFailedMessage
}

func isInvalidated(err error) bool {
	_, ok := apiclient.AsInvalidated(err)
	return ok
}
