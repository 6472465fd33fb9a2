package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gaowanliang/TG-Gallery/internal/auth"
	"github.com/gaowanliang/TG-Gallery/internal/gallery"
	"github.com/gaowanliang/TG-Gallery/internal/resolver"
	"github.com/gaowanliang/TG-Gallery/internal/store"
)

// Handler contains shared dependencies for all HTTP handlers.
type Handler struct {
	engine    *gallery.Engine
	resolver  *resolver.Resolver
	store     store.DataStore
	redis     *store.RedisStore
	issuer    *auth.TokenIssuer
	creds     auth.Credentials
	turnstile *auth.TurnstileVerifier
}

// NewHandler creates a new Handler with the given dependencies. redis and
// turnstile may be nil.
func NewHandler(
	engine *gallery.Engine,
	res *resolver.Resolver,
	ds store.DataStore,
	redis *store.RedisStore,
	issuer *auth.TokenIssuer,
	creds auth.Credentials,
	turnstile *auth.TurnstileVerifier,
) *Handler {
	return &Handler{
		engine:    engine,
		resolver:  res,
		store:     ds,
		redis:     redis,
		issuer:    issuer,
		creds:     creds,
		turnstile: turnstile,
	}
}

// JSON sends a JSON response with the given status code.
func (h *Handler) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Error sends a JSON error response with the given status code.
func (h *Handler) Error(w http.ResponseWriter, status int, message string) {
	h.JSON(w, status, map[string]string{"error": message})
}
