package admin

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/qualclamps/storefront/internal/common"
)

// Handlers serves the admin session endpoints.
type Handlers struct {
	Auth Auth
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login handles POST /admin/login and returns a bearer token.
func (h Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "invalid_input", "invalid json body", nil)
		return
	}
	token, expires, err := h.Auth.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			common.JSONError(w, http.StatusUnauthorized, "invalid_credentials", "invalid username or password", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "internal_error", "unexpected error", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"token":     token,
		"expiresAt": expires.UTC(),
	})
}

// RequireAdmin is middleware that rejects requests lacking a valid bearer
// token.
func (h Handlers) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		const prefix = "Bearer "
		if !strings.HasPrefix(header, prefix) {
			common.JSONError(w, http.StatusUnauthorized, "unauthorized", "bearer token required", nil)
			return
		}
		subject, err := h.Auth.VerifyToken(strings.TrimPrefix(header, prefix))
		if err != nil {
			common.JSONError(w, http.StatusUnauthorized, "unauthorized", "invalid or expired token", nil)
			return
		}
		next.ServeHTTP(w, r.WithContext(common.WithUserID(r.Context(), subject)))
	})
}
