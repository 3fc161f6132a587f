package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Auth Routes - Login & Logout
	RouteLogin      = "/login"
	RouteAuthLogin  = "/auth/login"
	RouteAuthLogout = "/auth/logout"

	// Protected pages
	RouteDashboard = "/dashboard"
	RouteUsers     = "/users"
	RouteProfile   = "/profile"

	// User moderation (form posts)
	RouteUserStatus          = "/users/{id}/status"
	RouteUserRole            = "/users/{id}/role"
	RouteUserActivate        = "/users/{id}/activate"
	RouteUserDeactivate      = "/users/{id}/deactivate"
	RouteUserDelete          = "/users/{id}/delete"
	RouteUsersBulkStatus     = "/users/bulk/status"
	RouteUsersAutoReactivate = "/users/auto-reactivate"

	// Profile (form posts)
	RouteProfilePicture       = "/profile/picture"
	RouteProfilePictureDelete = "/profile/picture/delete"

	// API Routes
	RouteAPIDashboardChart = "/api/dashboard/{chart}"

	RouteHealth = "/healthz"
)
