package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gaowanliang/TG-Gallery/internal/api/middleware"
)

// LoginRequest is the login request body.
type LoginRequest struct {
	Username       string `json:"username"`
	Password       string `json:"password"`
	TurnstileToken string `json:"turnstileToken,omitempty"`
}

// LoginResponse carries the issued bearer token.
type LoginResponse struct {
	Token string `json:"token"`
}

// Login handles POST /api/login: optional Turnstile human check, then
// credential verification and token issuance.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	// An unreadable body falls through to the credential check and fails there.
	_ = json.NewDecoder(r.Body).Decode(&req)

	if req.TurnstileToken != "" && h.turnstile != nil {
		if !h.turnstile.Verify(r.Context(), req.TurnstileToken, middleware.RealIP(r)) {
			h.Error(w, http.StatusForbidden, "human verification failed, please retry")
			return
		}
	}

	if !h.creds.Match(req.Username, req.Password) {
		h.Error(w, http.StatusUnauthorized, "invalid username or password")
		return
	}

	token, err := h.issuer.Issue(req.Username)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	h.JSON(w, http.StatusOK, LoginResponse{Token: token})
}
