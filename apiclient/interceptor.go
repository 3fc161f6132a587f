package apiclient

import (
	"context"
	"net/http"

	"github.com/articulink/admin-dashboard/sessions"
	"github.com/rs/zerolog/log"
)

type exchangeKey struct{}

type anonymousKey struct{}

// anonymous marks a request as sent without the session's credentials. Its
// 401/403 answers are ordinary errors and never invalidate the session.
func anonymous(ctx context.Context) context.Context {
	return context.WithValue(ctx, anonymousKey{}, true)
}

func isAnonymous(ctx context.Context) bool {
	v, _ := ctx.Value(anonymousKey{}).(bool)
	return v
}

// exchange carries what the transport observed back to Client.Do.
type exchange struct {
	invalidation *Invalidation
}

// authTransport decorates every outgoing request with the session's bearer
// token and clears the session when the backend answers 401 or 403.
type authTransport struct {
	base  http.RoundTripper
	store sessions.Store
	bus   *listenerBus
}

var _ http.RoundTripper = (*authTransport)(nil)

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if isAnonymous(req.Context()) {
		return t.base.RoundTrip(req)
	}

	sent, hasToken := sessions.OAuth2Token(t.store)

	// A RoundTripper must not modify the caller's request.
	out := req.Clone(req.Context())
	if hasToken {
		sent.SetAuthHeader(out)
	}

	resp, err := t.base.RoundTrip(out)
	if err != nil {
		return nil, err
	}

	var reason Reason
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		reason = ReasonUnauthenticated
	case http.StatusForbidden:
		reason = ReasonAdminRequired
	default:
		return resp, nil
	}

	// The user may have signed in (again) while this request was in flight. A
	// rejection of the old token, or of no token at all, must not clear the
	// new session.
	sentToken := ""
	if hasToken {
		sentToken = sent.AccessToken
	}
	if current, ok := t.store.Token(); ok && current != sentToken {
		log.Debug().Str("path", req.URL.Path).Int("status", resp.StatusCode).Msg("Ignoring rejection of a superseded token")
		return resp, nil
	}

	if err := t.store.Clear(); err != nil {
		log.Err(err).Msg("Failed to clear session after rejection")
	}
	inv := Invalidation{
		Reason: reason,
		Status: resp.StatusCode,
		Method: req.Method,
		Path:   req.URL.Path,
	}
	log.Info().Str("method", inv.Method).Str("path", inv.Path).Str("reason", string(inv.Reason)).Msg("Session invalidated")

	if ex, ok := req.Context().Value(exchangeKey{}).(*exchange); ok {
		ex.invalidation = &inv
	}
	t.bus.emit(inv)
	return resp, nil
}

func withExchange(ctx context.Context) (context.Context, *exchange) {
	ex := &exchange{}
	return context.WithValue(ctx, exchangeKey{}, ex), ex
}
