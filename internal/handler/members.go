package handler

import (
	"errors"
	"net/http"

	"github.com/pkordes/companion/internal/domain"
	"github.com/pkordes/companion/internal/shell"
)

// ListMembers handles GET /members.
// The roster is returned in id order, exactly as the shell holds it.
func (s *Server) ListMembers(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, MemberList{Data: membersToResponse(s.shell.Members())})
}

// RenameMember handles PUT /members/{id}/name.
// The write is sent to the store and 202 is returned; the roster shows the
// new name once the store's next snapshot arrives.
func (s *Server) RenameMember(w http.ResponseWriter, r *http.Request) {
	var id string
	if err := pathParam(r, "id", &id); err != nil {
		writeJSON(w, http.StatusBadRequest, requestBody("invalid id: "+err.Error()))
		return
	}
	var body RenameRequest
	if !decodeBody(w, r, &body) {
		return
	}
	if body.Name == nil {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody("name is required"))
		return
	}
	if !domain.HasMember(s.shell.Members(), id) {
		writeJSON(w, http.StatusNotFound, notFoundBody("member not found"))
		return
	}

	if err := s.shell.Rename(r.Context(), id, *body.Name); err != nil {
		if errors.Is(err, shell.ErrClosed) {
			writeJSON(w, http.StatusServiceUnavailable, unavailableBody())
			return
		}
		s.writeError(w, r, "member not found", err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func membersToResponse(members []domain.Member) []Member {
	out := make([]Member, len(members))
	for i, m := range members {
		out[i] = Member{Id: m.ID, Name: m.Name, Color: m.Color, Avatar: m.Avatar}
	}
	return out
}
