package handler

import (
	"net/http"

	"github.com/member-cord/internal/application/member"
)

// MemberHandler lists verified members for the dashboard.
type MemberHandler struct {
	svc member.Service
}

func NewMemberHandler(svc member.Service) *MemberHandler { return &MemberHandler{svc: svc} }

func (h *MemberHandler) List(w http.ResponseWriter, r *http.Request) {
	members, err := h.svc.List(r.Context(), r.URL.Query().Get("guild_id"))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, members)
}
