package server

import (
	"net/http"
	"net/url"

	"github.com/articulink/admin-dashboard/apiclient"
	"github.com/articulink/admin-dashboard/login"
	"github.com/rs/zerolog/log"
)

// loginErrorMessages maps error codes put on the login URL by the guard and
// the interceptor to banner text. Anything else is shown as is.
var loginErrorMessages = map[string]string{
	string(apiclient.ReasonAdminRequired): "Admin access required",
}

// LoginPageData contains data for rendering the login page
type LoginPageData struct {
	AppName string
	Error   string
	Email   string // Preserve email on error
}

// LoginPageHandler displays the login page (GET /login)
func (s *Server) LoginPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		errorMsg := r.URL.Query().Get("error")
		if msg, ok := loginErrorMessages[errorMsg]; ok {
			errorMsg = msg
		}
		data := LoginPageData{
			AppName: s.config.GetAppName(),
			Error:   errorMsg,
			Email:   r.URL.Query().Get("email"),
		}

		w.Header().Set("Content-Type", contentTypeHTML)
		if err := s.templates.ExecuteTemplate(w, "login.html", data); err != nil {
			log.Err(err).Msg("Failed to render login template")
			http.Error(w, "Failed to render login page", http.StatusInternalServerError)
		}
	}
}

// LoginSubmissionHandler processes the login form submission
func (s *Server) LoginSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		email := r.FormValue("email")
		password := r.FormValue("password")

		b, err := s.browserSessionFor(w, r)
		if err != nil {
			log.Err(err).Msg("Login: no browser session")
			s.renderLoginError(w, r, login.BannerMessage(err), email)
			return
		}
		flow, err := s.loginFlow(b)
		if err != nil {
			log.Err(err).Msg("Login: failed to start login flow")
			s.renderLoginError(w, r, login.BannerMessage(err), email)
			return
		}

		res, err := flow.Submit(r.Context(), email, password)
		if err != nil {
			s.renderLoginError(w, r, login.BannerMessage(err), email)
			return
		}
		redirectSuccess(w, r, res.Redirect)
	}
}

func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, ok := s.existingBrowserSession(r)
		if !ok {
			redirectSuccess(w, r, RouteLogin)
			return
		}
		target, err := login.Logout(b.store)
		if err != nil {
			log.Err(err).Str("session_id", b.id).Msg("Logout: failed to clear session")
		}
		redirectSuccess(w, r, target)
	}
}

// renderLoginError redirects to login page with an error message
func (s *Server) renderLoginError(w http.ResponseWriter, r *http.Request, errorMsg, email string) {
	query := url.Values{"error": {errorMsg}}
	if email != "" {
		query.Set("email", email)
	}
	redirectWithQuery(w, r, RouteLogin, query)
}
