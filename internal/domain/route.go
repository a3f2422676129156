package domain

// Route is a navigable view of the application.
type Route string

const (
	RouteLanding   Route = "/"
	RouteLogin     Route = "/auth/login"
	RouteSignup    Route = "/auth/signup"
	RouteDashboard Route = "/dashboard"
)

func MeetingRoute(code MeetingCode) Route {
	return Route("/meeting/" + string(code))
}
