package server

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
)

// CallbackHandler completes the authorization code flow (GET|POST /callback).
// It validates the state and nonce against the session's flow, exchanges
// the code for credentials, stores the record in the token cache and marks
// the session signed in.
func (s *Server) CallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// r.FormValue works for both query params and POST form data
		state := r.FormValue("state")
		code := r.FormValue("code")
		errorParam := r.FormValue("error")
		errorDesc := r.FormValue("error_description")

		if errorParam != "" {
			http.Error(w, fmt.Sprintf("Authentication failed: %s - %s", errorParam, errorDesc), http.StatusBadRequest)
			return
		}

		if code == "" || state == "" {
			http.Error(w, "Missing code or state parameter", http.StatusBadRequest)
			return
		}

		session := s.sessionFromRequest(r)
		if session == nil || session.Flow == nil {
			// No sign-in in progress for this browser; start over.
			http.Redirect(w, r, RouteIndex, http.StatusSeeOther)
			return
		}

		if state != session.Flow.State {
			http.Error(w, "Invalid state parameter", http.StatusBadRequest)
			return
		}

		record, claims, err := s.idp.ExchangeCode(r.Context(), code, session.Flow.CodeVerifier)
		if err != nil {
			log.Err(err).Msg("Token exchange failed")
			http.Error(w, "Token exchange failed", http.StatusInternalServerError)
			return
		}

		// Validate nonce to prevent replay attacks
		if nonce, _ := claims["nonce"].(string); nonce != session.Flow.Nonce {
			http.Error(w, "Invalid nonce", http.StatusUnauthorized)
			return
		}

		if err := s.cache.Upsert(record); err != nil {
			log.Err(err).Msg("Failed to store credential record")
			http.Error(w, "Failed to store credentials", http.StatusInternalServerError)
			return
		}

		returnURL := session.Flow.ReturnURL
		if returnURL == "" {
			returnURL = RouteIndex
		}

		if err := s.sessions.Complete(session.ID, record.AccountID, claims); err != nil {
			log.Err(err).Msg("Failed to complete session")
			http.Error(w, "Failed to complete sign-in", http.StatusInternalServerError)
			return
		}

		http.Redirect(w, r, returnURL, http.StatusSeeOther)
	}
}
