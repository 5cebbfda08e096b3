package handler

import (
	"encoding/json"
	"net/http"

	"github.com/member-cord/internal/domain"
	jwtinfra "github.com/member-cord/internal/infrastructure/jwt"
	"github.com/member-cord/internal/pkg/validate"
	"golang.org/x/crypto/bcrypt"
)

// AuthHandler implements the dashboard password gate: one shared
// password checked against a configured bcrypt hash, rewarded with an
// admin bearer token.
type AuthHandler struct {
	jwtProvider  *jwtinfra.Provider
	passwordHash string
}

func NewAuthHandler(jwtProvider *jwtinfra.Provider, passwordHash string) *AuthHandler {
	return &AuthHandler{jwtProvider: jwtProvider, passwordHash: passwordHash}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h.passwordHash == "" || h.jwtProvider == nil {
		writeError(w, http.StatusServiceUnavailable, "dashboard login is not configured")
		return
	}

	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(h.passwordHash), []byte(req.Password)); err != nil {
		writeError(w, http.StatusUnauthorized, "incorrect password")
		return
	}

	bearer, err := h.jwtProvider.Sign(domain.RoleAdmin)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, AuthEnvelope{Bearer: bearer})
}
