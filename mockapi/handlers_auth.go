package mockapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	apperrors "github.com/articulink/admin-dashboard/internal/errors"
	"github.com/articulink/admin-dashboard/sessions"
	"github.com/articulink/admin-dashboard/users"
)

const maxPictureSize = 5 * 1024 * 1024

var allowedPictureExtensions = map[string]bool{
	"jpg": true, "jpeg": true, "png": true, "gif": true, "webp": true,
}

type credentials struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	FullName *string `json:"full_name,omitempty"`
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidation(w, "body", "email", "invalid request body")
		return
	}
	if !strings.Contains(req.Email, "@") {
		writeValidation(w, "body", "email", "value is not a valid email address")
		return
	}
	if err := users.ValidatePassword(req.Password); err != nil {
		writeValidation(w, "body", "password", err.Error())
		return
	}
	hash, err := users.HashPassword(req.Password)
	if err != nil {
		log.Err(err).Msg("Failed to hash password")
		writeDetail(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	u := &users.User{
		Email:        req.Email,
		PasswordHash: hash,
		Role:         sessions.RoleAdmin,
	}
	if req.FullName != nil {
		u.FullName = *req.FullName
	}
	if err := s.users.Create(u); err != nil {
		if apperrors.Is(err, apperrors.ErrInvalidRequest) {
			writeDetail(w, http.StatusBadRequest, "Email already registered")
			return
		}
		writeDetail(w, http.StatusInternalServerError, "Registration failed")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": u.ID, "email": u.Email})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidation(w, "body", "email", "invalid request body")
		return
	}
	user, err := s.users.GetByEmail(req.Email)
	if err != nil || !users.CheckPasswordHash(req.Password, user.PasswordHash) {
		writeDetail(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	access, err := s.issuer.CreateAccessToken(user)
	if err != nil {
		log.Err(err).Msg("Failed to create access token")
		writeDetail(w, http.StatusInternalServerError, "Login failed")
		return
	}
	refresh, err := s.issuer.CreateRefreshToken(user)
	if err != nil {
		log.Err(err).Msg("Failed to create refresh token")
		writeDetail(w, http.StatusInternalServerError, "Login failed")
		return
	}
	user.RefreshToken = refresh
	if err := s.users.Update(user); err != nil {
		log.Err(err).Msg("Failed to store refresh token")
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"access_token":  access,
		"refresh_token": refresh,
		"token_type":    "bearer",
	})
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, currentUser(r).Profile())
}

type profileUpdate struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Birthdate *string `json:"birthdate"`
	Gender    *string `json:"gender"`
}

func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidation(w, "body", "profile", "invalid request body")
		return
	}
	user := currentUser(r)
	if req.FirstName != nil {
		user.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		user.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Birthdate != nil {
		user.Birthdate = strings.TrimSpace(*req.Birthdate)
	}
	if req.Gender != nil {
		user.Gender = strings.TrimSpace(*req.Gender)
	}
	user.UpdatedAt = users.NowTimeFunc()
	if err := s.users.Update(user); err != nil {
		writeDetail(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}
	writeJSON(w, http.StatusOK, user.Profile())
}

func (s *Server) uploadProfilePicture(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPictureSize+1024*1024)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeValidation(w, "body", "file", "field required")
		return
	}
	defer file.Close()

	ext := strings.ToLower(strings.TrimPrefix(path.Ext(header.Filename), "."))
	if header.Filename == "" {
		writeDetail(w, http.StatusBadRequest, "No filename provided")
		return
	}
	if !allowedPictureExtensions[ext] {
		writeDetail(w, http.StatusBadRequest, "Invalid file type. Allowed types: jpg, jpeg, png, gif, webp")
		return
	}
	data, err := io.ReadAll(io.LimitReader(file, maxPictureSize+1))
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "Failed to read file")
		return
	}
	if len(data) > maxPictureSize {
		writeDetail(w, http.StatusBadRequest, "File size exceeds 5MB limit")
		return
	}

	user := currentUser(r)
	name := fmt.Sprintf("%s.%s", uuid.New().String(), ext)
	s.mediaLock.Lock()
	s.media[name] = mediaFile{contentType: http.DetectContentType(data), data: data}
	if old := path.Base(user.ProfilePic); user.ProfilePic != "" {
		delete(s.media, old)
	}
	s.mediaLock.Unlock()

	user.ProfilePic = fmt.Sprintf("%s://%s/media/%s", getScheme(r), r.Host, name)
	if err := s.users.Update(user); err != nil {
		writeDetail(w, http.StatusInternalServerError, "Failed to upload profile picture")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message":     "Profile picture uploaded successfully",
		"profile_pic": user.ProfilePic,
	})
}

func (s *Server) deleteProfilePicture(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if user.ProfilePic == "" {
		writeDetail(w, http.StatusNotFound, "No profile picture to delete")
		return
	}
	s.mediaLock.Lock()
	delete(s.media, path.Base(user.ProfilePic))
	s.mediaLock.Unlock()

	user.ProfilePic = ""
	if err := s.users.Update(user); err != nil {
		writeDetail(w, http.StatusInternalServerError, "Failed to delete profile picture")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":     "Profile picture deleted successfully",
		"profile_pic": nil,
	})
}

func (s *Server) serveMedia(w http.ResponseWriter, r *http.Request) {
	s.mediaLock.RLock()
	f, ok := s.media[mux.Vars(r)["name"]]
	s.mediaLock.RUnlock()
	if !ok {
		writeDetail(w, http.StatusNotFound, "Not Found")
		return
	}
	w.Header().Set("Content-Type", f.contentType)
	_, _ = w.Write(f.data)
}
