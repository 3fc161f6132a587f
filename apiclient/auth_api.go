package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// AuthAPI wraps /api/auth.
type AuthAPI struct {
	c *Client
}

// Login exchanges credentials for a token pair. It does not touch the session
// store; persisting the pair is the login flow's job. The backend answers bad
// credentials with 401, which here is an *APIError and leaves the current
// session alone.
func (a AuthAPI) Login(ctx context.Context, email, password string) (TokenPair, error) {
	var tp TokenPair
	err := a.c.doJSON(anonymous(ctx), http.MethodPost, "/api/auth/login", nil, LoginRequest{Email: email, Password: password}, &tp)
	return tp, err
}

// Register creates an account. Like Login it is sent without credentials.
func (a AuthAPI) Register(ctx context.Context, req RegisterRequest) (Registered, error) {
	var out Registered
	err := a.c.doJSON(anonymous(ctx), http.MethodPost, "/api/auth/register", nil, req, &out)
	return out, err
}

// Me returns the profile of the token's owner.
func (a AuthAPI) Me(ctx context.Context) (User, error) {
	var u User
	err := a.c.doJSON(ctx, http.MethodGet, "/api/auth/me", nil, nil, &u)
	return u, err
}

func (a AuthAPI) UpdateProfile(ctx context.Context, update ProfileUpdate) (User, error) {
	var u User
	err := a.c.doJSON(ctx, http.MethodPut, "/api/auth/profile", nil, update, &u)
	return u, err
}

// UploadProfilePicture sends the image as the multipart field "file".
func (a AuthAPI) UploadProfilePicture(ctx context.Context, filename string, content io.Reader) (ProfilePicture, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return ProfilePicture{}, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return ProfilePicture{}, fmt.Errorf("copy picture: %w", err)
	}
	if err := mw.Close(); err != nil {
		return ProfilePicture{}, fmt.Errorf("close multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.c.endpoint("/api/auth/profile/picture", nil), &buf)
	if err != nil {
		return ProfilePicture{}, fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	var pp ProfilePicture
	err = a.c.Do(req, &pp)
	return pp, err
}

func (a AuthAPI) DeleteProfilePicture(ctx context.Context) (ProfilePicture, error) {
	var pp ProfilePicture
	err := a.c.doJSON(ctx, http.MethodDelete, "/api/auth/profile/picture", nil, nil, &pp)
	return pp, err
}
