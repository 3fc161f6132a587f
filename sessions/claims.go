package sessions

import (
	"errors"
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// TokenClaims are the claims the ArticuLink backend puts in its access tokens.
// They are read without verifying the signature and must only be used for
// display: the backend remains the judge of whether a token is valid.
type TokenClaims struct {
	UserID    string
	Email     string
	Role      RoleType
	Type      string
	ExpiresAt time.Time
}

// Expired reports whether the exp claim lies in the past. A token without an
// exp claim never expires locally.
func (c TokenClaims) Expired() bool {
	return !c.ExpiresAt.IsZero() && NowTimeFunc().After(c.ExpiresAt)
}

// ParseClaims peeks into a JWT access token.
func ParseClaims(rawToken string) (TokenClaims, error) {
	token, _, err := jwtlib.NewParser().ParseUnverified(rawToken, jwtlib.MapClaims{})
	if err != nil {
		return TokenClaims{}, fmt.Errorf("failed to parse token: %w", err)
	}
	claims, ok := token.Claims.(jwtlib.MapClaims)
	if !ok {
		return TokenClaims{}, errors.New("error extracting claims")
	}

	userID, _ := claims["user_id"].(string)
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)
	tokenType, _ := claims["type"].(string)

	tc := TokenClaims{
		UserID: userID,
		Email:  email,
		Role:   RoleType(role),
		Type:   tokenType,
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		tc.ExpiresAt = exp.Time
	}
	return tc, nil
}

// OAuth2Token returns the stored credentials as an oauth2 bearer token, or
// false when no access token is present. Expiry comes from the exp claim when
// the access token is a readable JWT.
func OAuth2Token(store Store) (*oauth2.Token, bool) {
	access, ok := store.Token()
	if !ok {
		return nil, false
	}
	refresh, _ := store.RefreshToken()
	tok := &oauth2.Token{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
	}
	if c, err := ParseClaims(access); err == nil {
		tok.Expiry = c.ExpiresAt
	}
	return tok, true
}
