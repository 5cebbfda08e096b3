package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/member-cord/internal/application/guild"
	"github.com/member-cord/internal/domain"
	"github.com/member-cord/internal/pkg/validate"
)

// ServerHandler exposes the stored guild list, the sync operation and
// the per-guild settings update.
type ServerHandler struct {
	svc guild.Service
}

func NewServerHandler(svc guild.Service) *ServerHandler { return &ServerHandler{svc: svc} }

func (h *ServerHandler) List(w http.ResponseWriter, r *http.Request) {
	servers, err := h.svc.List(r.Context())
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, servers)
}

func (h *ServerHandler) Sync(w http.ResponseWriter, r *http.Request) {
	servers, err := h.svc.Sync(r.Context())
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, servers)
}

func (h *ServerHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.UpdateSettings(r.Context(), chi.URLParam(r, "guildID"), req); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "settings updated"})
}
