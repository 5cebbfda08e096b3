package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/member-cord/internal/application/verification"
	"github.com/member-cord/internal/domain"
)

// CallbackHandler completes the Discord OAuth redirect. It owns no flow
// logic: it parses the callback parameters, extracts the client IP and
// turns the verification outcome into a redirect back to the guild's
// verification page.
type CallbackHandler struct {
	svc         verification.Service
	frontendURL string
}

func NewCallbackHandler(svc verification.Service, frontendURL string) *CallbackHandler {
	return &CallbackHandler{svc: svc, frontendURL: strings.TrimRight(frontendURL, "/")}
}

// Callback handles GET /auth/discord/callback?code=...&state=guildID:slug.
func (h *CallbackHandler) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	code := q.Get("code")
	state := q.Get("state")
	if code == "" || state == "" {
		writeError(w, http.StatusBadRequest, "missing code or state")
		return
	}
	guildID, slug, _ := strings.Cut(state, ":")

	res := h.svc.Verify(r.Context(), code, guildID, clientIP(r))

	dest := fmt.Sprintf("%s/verify/%s", h.frontendURL, slug)
	if res.Outcome == verification.OutcomeSuccess {
		dest += "?success=true"
	} else {
		dest += "?error=" + string(res.Outcome)
	}
	http.Redirect(w, r, dest, http.StatusFound)
}

// clientIP resolves the verifying user's originating address: first
// X-Forwarded-For entry, then the CDN's connecting-IP header, else the
// "unknown" sentinel that alt detection ignores.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := r.Header.Get("CF-Connecting-IP"); ip != "" {
		return ip
	}
	return domain.IPUnknown
}
