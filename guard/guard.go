package guard

import (
	"context"
	"fmt"
	"strings"

	"github.com/articulink/admin-dashboard/apiclient"
	apperrors "github.com/articulink/admin-dashboard/internal/errors"
	"github.com/articulink/admin-dashboard/sessions"
	"github.com/rs/zerolog/log"
)

// Policy decides how much of the session has to be proven before a protected
// page is rendered.
type Policy string

const (
	// PolicyPresence trusts any stored access token. An expired token renders
	// the page once; the first backend call then fails with 401.
	PolicyPresence Policy = "presence"
	// PolicyServerVerified asks the backend who the token belongs to first.
	PolicyServerVerified Policy = "verified"
	// PolicyRoleGated is PolicyServerVerified plus role == admin.
	PolicyRoleGated Policy = "role"
)

// DefaultPolicy is used when nothing else is configured.
const DefaultPolicy = PolicyRoleGated

// ParsePolicy accepts the policy names used in configuration. An empty string
// selects DefaultPolicy.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return DefaultPolicy, nil
	case PolicyPresence, PolicyServerVerified, PolicyRoleGated:
		return p, nil
	default:
		return "", apperrors.Wrapf(apperrors.ErrInvalidRequest, "unknown guard policy %q", s)
	}
}

// State is where an evaluation stands. Pending only occurs while the backend
// is being asked; Authorized and Unauthorized are final.
type State int

const (
	StatePending State = iota
	StateAuthorized
	StateUnauthorized
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "PENDING"
	case StateAuthorized:
		return "AUTHORIZED"
	case StateUnauthorized:
		return "UNAUTHORIZED"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Decision is the outcome of one evaluation. Redirect is set only when State
// is StateUnauthorized. User is the freshest known profile, possibly nil
// under PolicyPresence.
type Decision struct {
	State    State
	Redirect string
	User     *sessions.UserProfile
}

// Verifier confirms a token with the backend. apiclient.AuthAPI implements it.
type Verifier interface {
	Me(ctx context.Context) (sessions.UserProfile, error)
}

var _ Verifier = apiclient.AuthAPI{}

// Guard evaluates a policy against a session. It holds no per session state
// and is safe for concurrent use.
type Guard struct {
	policy Policy
}

func New(policy Policy) (*Guard, error) {
	if _, err := ParsePolicy(string(policy)); err != nil {
		return nil, fmt.Errorf("[guard New] %w", err)
	}
	if policy == "" {
		policy = DefaultPolicy
	}
	return &Guard{policy: policy}, nil
}

func (g *Guard) Policy() Policy {
	return g.policy
}

// Start returns the decision available without talking to the backend:
// final for a missing token or PolicyPresence, StatePending otherwise.
func (g *Guard) Start(store sessions.Store) Decision {
	if _, ok := store.Token(); !ok {
		return unauthorized(apiclient.ReasonUnauthenticated)
	}
	if g.policy == PolicyPresence {
		user, _ := store.User()
		return Decision{State: StateAuthorized, User: user}
	}
	return Decision{State: StatePending}
}

// Evaluate runs the policy to a final decision.
func (g *Guard) Evaluate(ctx context.Context, store sessions.Store, verifier Verifier) Decision {
	return g.Run(ctx, store, verifier, nil)
}

// Run is Evaluate reporting each state it passes through to observe, which
// sees StatePending at most once and exactly one final state.
func (g *Guard) Run(ctx context.Context, store sessions.Store, verifier Verifier, observe func(Decision)) Decision {
	if observe == nil {
		observe = func(Decision) {}
	}

	d := g.Start(store)
	observe(d)
	if d.State != StatePending {
		return d
	}

	d = g.verify(ctx, store, verifier)
	observe(d)
	return d
}

func (g *Guard) verify(ctx context.Context, store sessions.Store, verifier Verifier) Decision {
	user, err := verifier.Me(ctx)
	if err != nil {
		if inv, ok := apiclient.AsInvalidated(err); ok {
			// The interceptor has already cleared the session.
			return Decision{State: StateUnauthorized, Redirect: inv.LoginURL()}
		}
		log.Warn().Err(err).Msg("Could not verify session")
		return unauthorized(apiclient.ReasonUnauthenticated)
	}

	if err := store.SetUser(user); err != nil {
		log.Err(err).Msg("Failed to cache verified user")
	}

	if g.policy == PolicyRoleGated && !user.IsAdmin() {
		log.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("Non admin session rejected")
		if err := store.Clear(); err != nil {
			log.Err(err).Msg("Failed to clear non admin session")
		}
		return unauthorized(apiclient.ReasonAdminRequired)
	}
	return Decision{State: StateAuthorized, User: &user}
}

func unauthorized(reason apiclient.Reason) Decision {
	return Decision{State: StateUnauthorized, Redirect: apiclient.LoginURL(reason)}
}
