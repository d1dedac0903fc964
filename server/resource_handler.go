package server

import (
	"net/http"

	"github.com/jrsteele09/go-auth-client/internal/errors"
	"github.com/rs/zerolog/log"
)

// ResourcePageData contains data for rendering the resource page
type ResourcePageData struct {
	Profile     map[string]any
	TokenSource string
}

// ResourceHandler silently acquires an access credential and calls the
// protected resource API (GET /resource).
//
// Thanks to the proactive refresh scheduler the cached credential is
// almost always fresh, so the acquisition is an instant cache hit. If the
// silent path fails the user is sent back through interactive sign-in.
func (s *Server) ResourceHandler() http.HandlerFunc {
	resourceTmpl, err := ParseTemplate("resource.html")
	if err != nil {
		log.Err(err).Msg("Failed to parse resource template")
	}

	return func(w http.ResponseWriter, r *http.Request) {
		session := s.sessionFromRequest(r)
		if !session.SignedIn() {
			http.Redirect(w, r, RouteLogin, http.StatusSeeOther)
			return
		}

		record, err := s.silent.Acquire(r.Context(), session.AccountID, s.config.GetScopes(), false)
		if err != nil {
			if errors.Is(err, errors.ErrReauthRequired) {
				log.Warn().Err(err).Msg("Silent acquisition failed, redirecting to sign-in")
				http.Redirect(w, r, RouteLogin, http.StatusSeeOther)
				return
			}
			log.Err(err).Msg("Failed to acquire credential")
			http.Error(w, "Failed to acquire credential", http.StatusInternalServerError)
			return
		}

		profile, err := s.resource.Fetch(r.Context(), record.AccessToken)
		if err != nil {
			log.Err(err).Msg("Resource API call failed")
			http.Error(w, "Resource API call failed", http.StatusBadGateway)
			return
		}

		data := ResourcePageData{
			Profile:     profile,
			TokenSource: record.Source.String(),
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := resourceTmpl.Execute(w, data); err != nil {
			log.Err(err).Msg("Failed to render resource template")
			http.Error(w, "Failed to render page", http.StatusInternalServerError)
		}
	}
}
