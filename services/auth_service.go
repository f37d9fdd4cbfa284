package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"firebase.google.com/go/v4/auth"
)

const identityToolkitEndpoint = "https://identitytoolkit.googleapis.com/v1"

// ErrAuthNotConfigured is returned when the identity provider's API key
// or credentials were not supplied at startup.
var ErrAuthNotConfigured = errors.New("identity provider is not configured")

// AuthError carries the provider's error message (EMAIL_EXISTS,
// INVALID_PASSWORD, WEAK_PASSWORD...). The message is shown verbatim on
// the login form.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string { return e.Message }

// AuthSession is what a successful sign-in/sign-up hands the client.
type AuthSession struct {
	UserID       string `json:"userId"`
	Email        string `json:"email"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

// AuthService fronts the hosted identity provider: email+password
// sign-up/sign-in via the Identity Toolkit REST API, token verification
// and revocation via the Admin SDK. The session lifecycle itself lives
// entirely with the provider.
type AuthService struct {
	apiKey     string
	authClient *auth.Client // nil when Firebase credentials are absent
	httpClient *http.Client
	endpoint   string
}

func NewAuthService(apiKey string, authClient *auth.Client) *AuthService {
	return &AuthService{
		apiKey:     apiKey,
		authClient: authClient,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		endpoint:   identityToolkitEndpoint,
	}
}

func (s *AuthService) SignUp(ctx context.Context, email, password string) (*AuthSession, error) {
	return s.call(ctx, "accounts:signUp", email, password)
}

func (s *AuthService) SignIn(ctx context.Context, email, password string) (*AuthSession, error) {
	return s.call(ctx, "accounts:signInWithPassword", email, password)
}

// SignOut revokes the user's refresh tokens. Idempotent: signing out a
// user who holds no session is not an error, and an unconfigured
// provider means there is nothing to revoke.
func (s *AuthService) SignOut(ctx context.Context, userID string) error {
	if s.authClient == nil {
		return nil
	}
	if err := s.authClient.RevokeRefreshTokens(ctx, userID); err != nil {
		return fmt.Errorf("failed to revoke sessions for user %s: %w", userID, err)
	}
	return nil
}

// VerifyIDToken validates a Firebase ID token and returns the owning
// user's identifier and email. Satisfies middleware.TokenVerifier.
func (s *AuthService) VerifyIDToken(ctx context.Context, idToken string) (string, string, error) {
	if s.authClient == nil {
		return "", "", ErrAuthNotConfigured
	}
	token, err := s.authClient.VerifyIDToken(ctx, idToken)
	if err != nil {
		return "", "", fmt.Errorf("token verification failed: %w", err)
	}
	email, _ := token.Claims["email"].(string)
	return token.UID, email, nil
}

func (s *AuthService) call(ctx context.Context, action, email, password string) (*AuthSession, error) {
	if s.apiKey == "" {
		return nil, ErrAuthNotConfigured
	}

	body, err := json.Marshal(map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode auth request: %w", err)
	}

	url := fmt.Sprintf("%s/%s?key=%s", s.endpoint, action, s.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, &AuthError{Message: "Identity provider unreachable. Please try again."}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil || apiErr.Error.Message == "" {
			return nil, &AuthError{Message: "Authentication failed. Please try again."}
		}
		return nil, &AuthError{Message: apiErr.Error.Message}
	}

	var result struct {
		LocalID      string `json:"localId"`
		Email        string `json:"email"`
		IDToken      string `json:"idToken"`
		RefreshToken string `json:"refreshToken"`
		ExpiresIn    string `json:"expiresIn"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode auth response: %w", err)
	}

	return &AuthSession{
		UserID:       result.LocalID,
		Email:        result.Email,
		IDToken:      result.IDToken,
		RefreshToken: result.RefreshToken,
		ExpiresIn:    result.ExpiresIn,
	}, nil
}
