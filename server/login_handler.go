package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-auth-client/sessions"
	"github.com/rs/zerolog/log"
)

// LoginHandler initiates the authorization code flow (GET /login).
// It creates a session carrying the flow state (state, PKCE verifier,
// nonce), sets the signed session cookie and redirects to the provider.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := s.sessions.Create()
		if err != nil {
			log.Err(err).Msg("Failed to create session")
			http.Error(w, "Failed to start sign-in", http.StatusInternalServerError)
			return
		}

		flow := &sessions.FlowState{
			State:        uuid.New().String(),
			CodeVerifier: generateRandomString(32),
			Nonce:        generateRandomString(16),
			ReturnURL:    RouteIndex,
			CreatedAt:    time.Now(),
		}
		if err := s.sessions.AttachFlow(sessionID, flow); err != nil {
			log.Err(err).Msg("Failed to attach flow state")
			http.Error(w, "Failed to start sign-in", http.StatusInternalServerError)
			return
		}

		signedSessionID, err := s.codec.Sign(sessionID)
		if err != nil {
			log.Err(err).Msg("Failed to sign session cookie")
			http.Error(w, "Failed to start sign-in", http.StatusInternalServerError)
			return
		}
		s.setSessionCookie(w, r, signedSessionID)

		authURL := s.idp.AuthCodeURL(flow.State, generateCodeChallenge(flow.CodeVerifier), flow.Nonce)
		http.Redirect(w, r, authURL, http.StatusSeeOther)
	}
}

// LogoutHandler clears the session and evicts the account's cached
// credentials (GET /logout).
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := s.sessionFromRequest(r)
		if session != nil {
			if session.SignedIn() {
				if err := s.cache.Delete(session.AccountID, s.config.GetScopes()); err != nil {
					log.Err(err).Msg("Failed to evict cached credentials")
				}
			}
			if err := s.sessions.Destroy(session.ID); err != nil {
				log.Err(err).Msg("Failed to destroy session")
			}
		}

		s.clearSessionCookie(w)
		http.Redirect(w, r, RouteIndex, http.StatusSeeOther)
	}
}
