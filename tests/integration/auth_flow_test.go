package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"myScheduleAPI/handlers"
	"myScheduleAPI/middleware"
	"myScheduleAPI/services"
	"myScheduleAPI/tests/helpers"
)

// fakeVerifier accepts a single known token and rejects everything else.
type fakeVerifier struct {
	token  string
	userID string
	email  string
}

func (f *fakeVerifier) VerifyIDToken(_ context.Context, idToken string) (string, string, error) {
	if idToken != f.token {
		return "", "", fmt.Errorf("token not recognized")
	}
	return f.userID, f.email, nil
}

func postCredentials(t *testing.T, handler http.HandlerFunc, path, email, password string) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

func TestAuthFlow_ProviderNotConfigured(t *testing.T) {
	h := handlers.NewAuthHandler(services.NewAuthService("", nil))

	rr := postCredentials(t, h.SignIn, "/api/v1/auth/signin", "a@example.com", "secret12")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)

	rr = postCredentials(t, h.SignUp, "/api/v1/auth/signup", "a@example.com", "secret12")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestAuthFlow_MissingCredentialsRejected(t *testing.T) {
	h := handlers.NewAuthHandler(services.NewAuthService("", nil))

	rr := postCredentials(t, h.SignIn, "/api/v1/auth/signin", "a@example.com", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/signin", bytes.NewReader([]byte("not json")))
	rr = httptest.NewRecorder()
	h.SignIn(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAuthFlow_SignOutIsIdempotent(t *testing.T) {
	h := handlers.NewAuthHandler(services.NewAuthService("", nil))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/signout", nil)
		req = helpers.RequestWithUser(req, "user-a", "a@example.com")
		rr := httptest.NewRecorder()
		h.SignOut(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
	}
}

func TestAuthMiddleware_AcceptsBearerHeader(t *testing.T) {
	verifier := &fakeVerifier{token: "good-token", userID: "uid-123", email: "a@example.com"}

	var gotUserID, gotEmail string
	protected := middleware.Auth(verifier)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID, _ = middleware.GetUserID(r.Context())
		gotEmail, _ = middleware.GetUserEmail(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/schedules", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rr := httptest.NewRecorder()
	protected.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "uid-123", gotUserID)
	assert.Equal(t, "a@example.com", gotEmail)
}

func TestAuthMiddleware_AcceptsTokenQueryParam(t *testing.T) {
	verifier := &fakeVerifier{token: "good-token", userID: "uid-123", email: "a@example.com"}

	protected := middleware.Auth(verifier)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// WebSocket clients cannot set headers during the upgrade handshake.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/schedules/ws?token=good-token", nil)
	rr := httptest.NewRecorder()
	protected.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestAuthMiddleware_RejectsBadRequests(t *testing.T) {
	verifier := &fakeVerifier{token: "good-token", userID: "uid-123", email: "a@example.com"}

	protected := middleware.Auth(verifier)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run for unauthenticated requests")
	}))

	tests := []struct {
		name  string
		setup func(*http.Request)
	}{
		{"missing header", func(r *http.Request) {}},
		{"malformed header", func(r *http.Request) { r.Header.Set("Authorization", "good-token") }},
		{"unknown token", func(r *http.Request) { r.Header.Set("Authorization", "Bearer wrong-token") }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/schedules", nil)
			tc.setup(req)
			rr := httptest.NewRecorder()
			protected.ServeHTTP(rr, req)
			assert.Equal(t, http.StatusUnauthorized, rr.Code)
		})
	}
}
