package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"myScheduleAPI/middleware"
	"myScheduleAPI/services"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	creds, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	session, err := h.authService.SignUp(ctx, creds.Email, creds.Password)
	if err != nil {
		respondWithAuthError(w, http.StatusBadRequest, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, session)
}

func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	creds, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	session, err := h.authService.SignIn(ctx, creds.Email, creds.Password)
	if err != nil {
		respondWithAuthError(w, http.StatusUnauthorized, err)
		return
	}

	respondWithJSON(w, http.StatusOK, session)
}

func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	if err := h.authService.SignOut(ctx, userID); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to sign out")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "signed out"})
}

func decodeCredentials(w http.ResponseWriter, r *http.Request) (credentialsRequest, bool) {
	var creds credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return creds, false
	}
	if creds.Email == "" || creds.Password == "" {
		respondWithError(w, http.StatusBadRequest, "Email and password are required")
		return creds, false
	}
	return creds, true
}

// respondWithAuthError passes the provider's message through verbatim;
// the login form shows it inline and stays editable for retry.
func respondWithAuthError(w http.ResponseWriter, code int, err error) {
	var authErr *services.AuthError
	if errors.As(err, &authErr) {
		respondWithError(w, code, authErr.Message)
		return
	}
	if errors.Is(err, services.ErrAuthNotConfigured) {
		respondWithError(w, http.StatusServiceUnavailable, "Identity provider is not configured")
		return
	}
	respondWithError(w, http.StatusInternalServerError, "Authentication failed")
}
