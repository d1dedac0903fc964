package server

import (
	"fmt"
	"net/http"

	"github.com/jrsteele09/go-auth-client/internal/config"
	"github.com/jrsteele09/go-auth-client/provider"
	"github.com/jrsteele09/go-auth-client/resource"
	"github.com/jrsteele09/go-auth-client/sessions"
	"github.com/jrsteele09/go-auth-client/silent"
	"github.com/jrsteele09/go-auth-client/token"
	"github.com/rs/zerolog/log"
)

// IdentityProvider is the provider surface the HTTP layer needs: the core
// Client operations plus building the interactive redirect URL.
type IdentityProvider interface {
	provider.Client
	AuthCodeURL(state, codeChallenge, nonce string) string
}

type Server struct {
	env      string // Environment (e.g., "DEV", "production")
	mux      *http.ServeMux
	routes   []string
	config   config.Config
	sessions sessions.Repo
	cache    token.Cache
	idp      IdentityProvider
	silent   *silent.Service
	resource *resource.Client
	codec    *SessionCodec
}

func New(cfg config.Config, sessionRepo sessions.Repo, cache token.Cache, idp IdentityProvider) (*Server, error) {
	silentService, err := silent.New(cache, idp)
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create silent acquisition service: %w", err)
	}

	s := &Server{
		mux:      http.NewServeMux(),
		config:   cfg,
		sessions: sessionRepo,
		cache:    cache,
		idp:      idp,
		silent:   silentService,
		resource: resource.New(cfg.GetResourceEndpoint()),
		codec:    NewSessionCodec(cfg.GetSessionSecret()),
	}
	s.env = cfg.GetEnv()

	s.initRoutes()
	s.logRoutes()

	return s, nil
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
		log.Debug().Str("route", route).Msg("Registered route")
	}
}

// Silent exposes the acquisition service so the scheduler can share it.
func (s *Server) Silent() *silent.Service {
	return s.silent
}

// sessionFromRequest resolves the signed session cookie to a session.
func (s *Server) sessionFromRequest(r *http.Request) *sessions.Session {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	sessionID, err := s.codec.Verify(cookie.Value)
	if err != nil {
		return nil
	}

	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil
	}
	return session
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
