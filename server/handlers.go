package server

import (
	"net/http"

	"github.com/rs/zerolog/log"
)

// IndexPageData contains data for rendering the home page
type IndexPageData struct {
	AppName string
	User    map[string]any
	Name    string
	Email   string
}

// IndexHandler renders the home / login page (GET /)
func (s *Server) IndexHandler() http.HandlerFunc {
	indexTmpl, err := ParseTemplate("index.html")
	if err != nil {
		log.Err(err).Msg("Failed to parse index template")
	}

	return func(w http.ResponseWriter, r *http.Request) {
		data := IndexPageData{AppName: s.config.GetAppName()}

		if session := s.sessionFromRequest(r); session.SignedIn() {
			data.User = session.Claims
			data.Name, _ = session.Claims["name"].(string)
			data.Email, _ = session.Claims["email"].(string)
			if data.Email == "" {
				data.Email, _ = session.Claims["preferred_username"].(string)
			}
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := indexTmpl.Execute(w, data); err != nil {
			log.Err(err).Msg("Failed to render index template")
			http.Error(w, "Failed to render page", http.StatusInternalServerError)
		}
	}
}
