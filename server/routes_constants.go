package server

// Route path constants
const (
	// Session routes
	RouteAPISession     = "/api/auth/session"
	RouteAPISignOut     = "/api/auth/signout"
	RouteAPIAccessToken = "/api/auth/token"

	// Operational routes
	RouteHealth = "/healthz"
)
