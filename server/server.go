package server

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/classregister/auth-server/auth"
	"github.com/classregister/auth-server/internal/config"
	"github.com/classregister/auth-server/users"
)

type Server struct {
	env    string // Environment (e.g., "DEV", "PROD")
	mux    *http.ServeMux
	routes []string
	config config.Config
	auth   *auth.Service
	users  users.Repo
}

func New(cfg config.Config, authService *auth.Service, userRepo users.Repo) *Server {
	s := &Server{
		mux:    http.NewServeMux(),
		config: cfg,
		auth:   authService,
		users:  userRepo,
	}
	s.env = cfg.GetEnv()

	s.initRoutes()
	s.logRoutes()

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)
		if len(parts) > 1 {
			log.Debug().Str("method", parts[0]).Str("path", parts[1]).Msg("route registered")
		} else {
			log.Debug().Str("path", parts[0]).Msg("route registered")
		}
	}
}
