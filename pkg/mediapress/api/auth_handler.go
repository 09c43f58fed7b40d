package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/jwtauth"

	"github.com/mediapress/mediapress/pkg/mediapress"
)

// AuthHandler handles registration, login and logout for the API surface.
type AuthHandler struct {
	service mediapress.Service
	tokens  *TokenAuth
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(service mediapress.Service, tokens *TokenAuth) *AuthHandler {
	return &AuthHandler{service: service, tokens: tokens}
}

// RegisterRequest is the request body for creating an account
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse carries the authenticated user and their bearer token
type TokenResponse struct {
	User  *mediapress.User `json:"user"`
	Token string           `json:"token"`
}

// Register creates an account and returns a bearer token.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondFailure(w, r, http.StatusBadRequest, "Invalid request body.", nil)
		return
	}

	user, err := h.service.RegisterUser(r.Context(), mediapress.RegisterUserRequest{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	token, err := h.tokens.IssueToken(user)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, "Registered successfully.", TokenResponse{User: user, Token: token})
}

// Login verifies credentials and returns a bearer token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondFailure(w, r, http.StatusBadRequest, "Invalid request body.", nil)
		return
	}

	user, err := h.service.AuthenticateUser(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, r, err)
		return
	}

	token, err := h.tokens.IssueToken(user)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, "Logged in successfully.", TokenResponse{User: user, Token: token})
}

// Logout revokes the presented token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.tokens.Revoke(jwtauth.TokenFromHeader(r))
	respond(w, r, http.StatusOK, "Logged out successfully.", nil)
}
