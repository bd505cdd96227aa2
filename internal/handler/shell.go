package handler

import (
	"errors"
	"net/http"

	"github.com/pkordes/companion/internal/domain"
	"github.com/pkordes/companion/internal/shell"
)

// GetTab handles GET /tab.
func (s *Server) GetTab(w http.ResponseWriter, _ *http.Request) {
	tab := s.shell.ActiveTab()
	writeJSON(w, http.StatusOK, TabBody{Tab: tab, Label: tab.Label()})
}

// SwitchTab handles PUT /tab. Unknown tabs are rejected with 422.
func (s *Server) SwitchTab(w http.ResponseWriter, r *http.Request) {
	var body TabBody
	if !decodeBody(w, r, &body) {
		return
	}
	tab, err := domain.ParseTab(string(body.Tab))
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, validationBody(err))
		return
	}
	if err := s.shell.SwitchTab(tab); err != nil {
		if errors.Is(err, shell.ErrClosed) {
			writeJSON(w, http.StatusServiceUnavailable, unavailableBody())
			return
		}
		s.writeError(w, r, "", err)
		return
	}
	writeJSON(w, http.StatusOK, TabBody{Tab: tab, Label: tab.Label()})
}

// GetView handles GET /view: the active tab's view built from the roster.
func (s *Server) GetView(w http.ResponseWriter, _ *http.Request) {
	v := s.shell.Render()
	writeJSON(w, http.StatusOK, ViewResponse{Tab: v.Tab, Label: v.Label, Members: membersToResponse(v.Members)})
}

// GetSettings handles GET /settings.
func (s *Server) GetSettings(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.settingsResponse())
}

// PutSettings handles PUT /settings: {"open": true|false} shows or hides
// the overlay. Nothing is saved or reverted on close.
func (s *Server) PutSettings(w http.ResponseWriter, r *http.Request) {
	var body SettingsRequest
	if !decodeBody(w, r, &body) {
		return
	}
	if body.Open == nil {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody("open is required"))
		return
	}
	if *body.Open {
		s.shell.OpenSettings()
	} else {
		s.shell.CloseSettings()
	}
	writeJSON(w, http.StatusOK, s.settingsResponse())
}

func (s *Server) settingsResponse() SettingsResponse {
	return SettingsResponse{Open: s.shell.SettingsOpen(), Members: s.shell.SettingsRows()}
}

// GetStatus handles GET /status.
func (s *Server) GetStatus(w http.ResponseWriter, _ *http.Request) {
	st := s.shell.Status()
	resp := StatusResponse{Connected: st.Connected, Seeding: st.Seeding}
	if st.LastError != "" {
		resp.LastError = &st.LastError
		resp.LastErrorAt = &st.LastErrorAt
	}
	writeJSON(w, http.StatusOK, resp)
}
