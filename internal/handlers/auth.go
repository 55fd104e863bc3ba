package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/Driverassistance/driveassist-app/internal/auth"
	"github.com/Driverassistance/driveassist-app/internal/middleware"
)

// LoginRequest represents the owner login payload
type LoginRequest struct {
	Passcode string `json:"passcode"`
}

// LoginResponse carries the issued session token
type LoginResponse struct {
	Token string `json:"token"`
}

// SessionResponse describes the caller's session
type SessionResponse struct {
	AuthEnabled bool   `json:"authEnabled"`
	Subject     string `json:"subject,omitempty"`
	ExpiresAt   int64  `json:"expiresAt,omitempty"`
}

// AuthHandler handles authentication requests
type AuthHandler struct {
	authService *auth.Service
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(authService *auth.Service) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login exchanges the owner passcode for a token
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	var loginReq LoginRequest
	if err := json.Unmarshal(body, &loginReq); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if loginReq.Passcode == "" {
		http.Error(w, "Passcode is required", http.StatusBadRequest)
		return
	}

	token, err := h.authService.Login(loginReq.Passcode)
	switch {
	case errors.Is(err, auth.ErrAuthDisabled):
		http.Error(w, "Authentication is not enabled", http.StatusNotFound)
		return
	case errors.Is(err, auth.ErrInvalidCredentials):
		log.WithField("remote", r.RemoteAddr).Warn("failed owner login")
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	case err != nil:
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(LoginResponse{Token: token})
}

// Session reports who the request is authenticated as. With auth disabled
// the middleware attaches no claims and only authEnabled=false is returned.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	resp := SessionResponse{AuthEnabled: h.authService.Enabled()}
	if claims, ok := middleware.GetClaimsFromContext(r.Context()); ok {
		resp.Subject = claims.Subject
		resp.ExpiresAt = claims.Exp
	}
	writeJSON(w, http.StatusOK, resp)
}
