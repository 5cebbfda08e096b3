package handler

import (
	"encoding/json"
	"net/http"

	"github.com/member-cord/internal/application/pull"
	"github.com/member-cord/internal/domain"
	"github.com/member-cord/internal/pkg/validate"
)

// PullHandler triggers a bulk member pull between two guilds.
type PullHandler struct {
	svc pull.Service
}

func NewPullHandler(svc pull.Service) *PullHandler { return &PullHandler{svc: svc} }

func (h *PullHandler) Pull(w http.ResponseWriter, r *http.Request) {
	var req domain.PullMembersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := h.svc.Pull(r.Context(), req.SourceGuildID, req.TargetGuildID, req.RoleID)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}
