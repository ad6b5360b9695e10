package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/WilliamSoderberg/volley-bracket/middleware"
	"github.com/WilliamSoderberg/volley-bracket/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type loginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login handles POST /auth/token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input loginInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.Username == "" || input.Password == "" {
		badRequestResponse(w, r, errors.New("username and password are required"))
		return
	}

	token, expiresAt, err := h.authService.Login(r.Context(), input.Username, input.Password)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"token":      token,
		"expires_at": expiresAt.UTC().Format(time.RFC3339),
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Check handles GET /auth/check behind RequireAdmin.
func (h *AuthHandler) Check(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.AdminFromContext(r.Context())
	if !ok {
		unauthorizedResponse(w, r, "admin session required")
		return
	}
	response := jsonResponse{
		"admin":   true,
		"subject": claims.Subject,
	}
	if claims.ExpiresAt != nil {
		response["expires_at"] = claims.ExpiresAt.UTC().Format(time.RFC3339)
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
