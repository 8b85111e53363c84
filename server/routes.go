package server

import "github.com/classregister/auth-server/users"

func (s *Server) initRoutes() {
	// Session endpoints
	s.RegisterRouteFunc("POST "+RouteAuthLogin, ChainMiddleware(s.LoginHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("POST "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteAuthMe, ChainMiddleware(s.MeHandler(), s.ProtectedMiddleware()...))
	s.RegisterRouteFunc("PUT "+RouteAuthPassword, ChainMiddleware(s.ChangePasswordHandler(), s.ProtectedMiddleware()...))

	// Record endpoints. Reads need authentication; every mutation passes
	// the role or ownership gate as well.
	s.RegisterRouteFunc("GET "+RouteUsers, ChainMiddleware(s.ListUsersHandler(), s.ProtectedMiddleware(s.RequireRole(users.RoleTeacher, users.RoleAdmin))...))
	s.RegisterRouteFunc("GET "+RouteUsersStats, ChainMiddleware(s.UserStatsHandler(), s.ProtectedMiddleware(s.RequireRole(users.RoleTeacher, users.RoleAdmin))...))
	s.RegisterRouteFunc("GET "+RouteUsersGradeStats, ChainMiddleware(s.GradeDistributionHandler(), s.ProtectedMiddleware(s.RequireRole(users.RoleTeacher, users.RoleAdmin))...))
	s.RegisterRouteFunc("GET "+RouteUserByIdentifier, ChainMiddleware(s.GetUserHandler(), s.ProtectedMiddleware()...))
	s.RegisterRouteFunc("POST "+RouteUsers, ChainMiddleware(s.CreateUserHandler(), s.ProtectedMiddleware(s.RequireRole(users.RoleAdmin))...))
	s.RegisterRouteFunc("PUT "+RouteUserByIdentifier, ChainMiddleware(s.UpdateUserHandler(), s.ProtectedMiddleware(s.RequireOwnerOrAdmin())...))
	s.RegisterRouteFunc("DELETE "+RouteUserByIdentifier, ChainMiddleware(s.DeleteUserHandler(), s.ProtectedMiddleware(s.RequireRole(users.RoleAdmin))...))
}
