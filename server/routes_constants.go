package server

const (
	RouteAuthLogin    = "/auth/login"
	RouteAuthLogout   = "/auth/logout"
	RouteAuthMe       = "/auth/me"
	RouteAuthPassword = "/auth/password"

	RouteUsers            = "/users"
	RouteUsersStats       = "/users/stats"
	RouteUsersGradeStats  = "/users/stats/grades"
	RouteUserByIdentifier = "/users/{identifier}"
)
