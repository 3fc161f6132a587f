package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/articulink/admin-dashboard/sessions"
	"github.com/articulink/admin-dashboard/users"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"

	DefaultAccessTokenExpiry  = 60 * time.Minute
	DefaultRefreshTokenExpiry = 7 * 24 * time.Hour
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrWrongType    = errors.New("wrong token type")
)

// Issuer creates and checks the access and refresh tokens of the development
// backend. Claims are user_id, email, role, type and exp.
type Issuer struct {
	signer        Signer
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

type IssuerOption func(*Issuer)

func WithAccessTokenExpiry(d time.Duration) IssuerOption {
	return func(i *Issuer) {
		i.accessExpiry = d
	}
}

func WithRefreshTokenExpiry(d time.Duration) IssuerOption {
	return func(i *Issuer) {
		i.refreshExpiry = d
	}
}

func NewIssuer(signer Signer, options ...IssuerOption) (*Issuer, error) {
	if signer == nil {
		return nil, fmt.Errorf("[token NewIssuer] signer is required")
	}
	i := &Issuer{
		signer:        signer,
		accessExpiry:  DefaultAccessTokenExpiry,
		refreshExpiry: DefaultRefreshTokenExpiry,
	}
	for _, opt := range options {
		opt(i)
	}
	return i, nil
}

func (i *Issuer) CreateAccessToken(user *users.User) (string, error) {
	return i.create(user, TypeAccess, i.accessExpiry)
}

func (i *Issuer) CreateRefreshToken(user *users.User) (string, error) {
	return i.create(user, TypeRefresh, i.refreshExpiry)
}

func (i *Issuer) create(user *users.User, tokenType string, expiry time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    string(user.Role),
		"type":    tokenType,
		"iat":     NowTimeFunc().Unix(),
		"exp":     NowTimeFunc().Add(expiry).Unix(),
	}
	return i.signer.Sign(claims)
}

// Verify checks the signature, expiry and type of a token and returns its
// claims.
func (i *Issuer) Verify(rawToken, wantType string) (sessions.TokenClaims, error) {
	parsed, err := jwt.Parse(rawToken, i.signer.GetVerificationKey,
		jwt.WithValidMethods([]string{i.signer.GetSigningMethod().Alg()}),
		jwt.WithTimeFunc(NowTimeFunc),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return sessions.TokenClaims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, err := sessions.ParseClaims(rawToken)
	if err != nil {
		return sessions.TokenClaims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Type != wantType {
		return sessions.TokenClaims{}, fmt.Errorf("%w: got %q, want %q", ErrWrongType, claims.Type, wantType)
	}
	if claims.UserID == "" {
		return sessions.TokenClaims{}, fmt.Errorf("%w: missing user_id", ErrInvalidToken)
	}
	return claims, nil
}
