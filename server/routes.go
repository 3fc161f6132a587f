package server

import (
	"net/http"
)

func (s *Server) initRoutes() {
	s.RegisterRouteFunc("GET /{$}", s.IndexHandler())
	s.RegisterRouteFunc("GET "+RouteHealth, s.HealthHandler())

	// LOGIN
	s.RegisterRouteHandler("GET "+RouteLogin, ChainMiddleware(s.LoginPageHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteAuthLogin, ChainMiddleware(s.LoginSubmissionHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), s.HTMLMiddleWare()...))

	// Protected pages
	s.RegisterRouteHandler("GET "+RouteDashboard, ChainMiddleware(s.DashboardHandler(), s.HTMLMiddleWare(s.RequireSession())...))
	s.RegisterRouteHandler("GET "+RouteUsers, ChainMiddleware(s.UsersListHandler(), s.HTMLMiddleWare(s.RequireSession())...))
	s.RegisterRouteHandler("GET "+RouteProfile, ChainMiddleware(s.ProfileHandler(), s.HTMLMiddleWare(s.RequireSession())...))

	// Moderation
	s.RegisterRouteHandler("POST "+RouteUserStatus, ChainMiddleware(s.UserStatusHandler(), s.HTMLMiddleWare(s.RequireSession())...))
	s.RegisterRouteHandler("POST "+RouteUserRole, ChainMiddleware(s.UserRoleHandler(), s.HTMLMiddleWare(s.RequireSession())...))
	s.RegisterRouteHandler("POST "+RouteUserActivate, ChainMiddleware(s.UserActivateHandler(), s.HTMLMiddleWare(s.RequireSession())...))
	s.RegisterRouteHandler("POST "+RouteUserDeactivate, ChainMiddleware(s.UserDeactivateHandler(), s.HTMLMiddleWare(s.RequireSession())...))
	s.RegisterRouteHandler("POST "+RouteUserDelete, ChainMiddleware(s.UserDeleteHandler(), s.HTMLMiddleWare(s.RequireSession())...))
	s.RegisterRouteHandler("POST "+RouteUsersBulkStatus, ChainMiddleware(s.BulkStatusHandler(), s.HTMLMiddleWare(s.RequireSession())...))
	s.RegisterRouteHandler("POST "+RouteUsersAutoReactivate, ChainMiddleware(s.AutoReactivateHandler(), s.HTMLMiddleWare(s.RequireSession())...))

	// Profile
	s.RegisterRouteHandler("POST "+RouteProfile, ChainMiddleware(s.ProfileUpdateHandler(), s.HTMLMiddleWare(s.RequireSession())...))
	s.RegisterRouteHandler("POST "+RouteProfilePicture, ChainMiddleware(s.ProfilePictureUploadHandler(), s.HTMLMiddleWare(s.RequireSession())...))
	s.RegisterRouteHandler("POST "+RouteProfilePictureDelete, ChainMiddleware(s.ProfilePictureDeleteHandler(), s.HTMLMiddleWare(s.RequireSession())...))

	// Chart data for the dashboard scripts
	s.RegisterRouteHandler("GET "+RouteAPIDashboardChart, ChainMiddleware(s.ChartHandler(), s.APIMiddleware(s.RequireSession())...))
	s.RegisterRouteHandler("OPTIONS "+RouteAPIDashboardChart, ChainMiddleware(func(http.ResponseWriter, *http.Request) {}, s.APIMiddleware()...))
}

// IndexHandler sends the browser to the dashboard; the guard decides from
// there.
func (s *Server) IndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, RouteDashboard, http.StatusSeeOther)
	}
}

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
