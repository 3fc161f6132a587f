package server

import (
	"net/http"

	"github.com/articulink/admin-dashboard/apiclient"
	"github.com/articulink/admin-dashboard/internal/utils"
	"github.com/rs/zerolog/log"
)

// maxPictureUpload bounds the multipart body; the backend enforces its own
// 5MB limit on the file.
const maxPictureUpload = 6 << 20

// ProfileContent is the model of the profile page.
type ProfileContent struct {
	Genders []string
}

// ProfileHandler shows the signed in admin's profile (GET /profile)
func (s *Server) ProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := s.newPageData(r, "profile", "Profile")
		data.Content = ProfileContent{Genders: []string{"Male", "Female", "Other"}}
		s.renderPage(w, "profile.html", data)
	}
}

// ProfileUpdateHandler saves name, birthdate and gender (POST /profile)
func (s *Server) ProfileUpdateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		b := sessionFromContext(r)
		update := apiclient.ProfileUpdate{
			FirstName: utils.PtrOrNil(r.FormValue("first_name")),
			LastName:  utils.PtrOrNil(r.FormValue("last_name")),
			Birthdate: utils.PtrOrNil(r.FormValue("birthdate")),
			Gender:    utils.PtrOrNil(r.FormValue("gender")),
		}
		user, err := b.client.Auth().UpdateProfile(r.Context(), update)
		if err != nil {
			actionFailed(w, r, RouteProfile, err)
			return
		}
		if err := b.store.SetUser(user); err != nil {
			log.Err(err).Msg("Failed to cache updated profile")
		}
		redirectWithNotice(w, r, RouteProfile, "Profile updated")
	}
}

// ProfilePictureUploadHandler forwards the uploaded picture (POST /profile/picture)
func (s *Server) ProfilePictureUploadHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxPictureUpload)
		file, header, err := r.FormFile("picture")
		if err != nil {
			redirectWithError(w, r, RouteProfile, "Choose an image to upload")
			return
		}
		defer file.Close()

		b := sessionFromContext(r)
		pic, err := b.client.Auth().UploadProfilePicture(r.Context(), header.Filename, file)
		if err != nil {
			actionFailed(w, r, RouteProfile, err)
			return
		}
		s.cacheProfilePicture(b, pic.ProfilePic)
		redirectWithNotice(w, r, RouteProfile, resultOr(pic.Message, "Profile picture updated"))
	}
}

// ProfilePictureDeleteHandler removes the picture (POST /profile/picture/delete)
func (s *Server) ProfilePictureDeleteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b := sessionFromContext(r)
		pic, err := b.client.Auth().DeleteProfilePicture(r.Context())
		if err != nil {
			actionFailed(w, r, RouteProfile, err)
			return
		}
		s.cacheProfilePicture(b, nil)
		redirectWithNotice(w, r, RouteProfile, resultOr(pic.Message, "Profile picture removed"))
	}
}

func (s *Server) cacheProfilePicture(b *browserSession, url *string) {
	user, ok := b.store.User()
	if !ok {
		return
	}
	user.ProfilePic = url
	if err := b.store.SetUser(*user); err != nil {
		log.Err(err).Msg("Failed to cache profile picture")
	}
}

func resultOr(message, fallback string) string {
	if message != "" {
		return message
	}
	return fallback
}
