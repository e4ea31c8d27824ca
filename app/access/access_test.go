package access

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const secret = "test-secret"

func bearer(t *testing.T, a *Authenticator, roles ...string) string {
	t.Helper()
	token, err := a.Issue("user_1", "ada@example.com", roles, time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestDecide(t *testing.T) {
	testCases := []struct {
		name     string
		identity *Identity
		expected View
	}{
		{"no identity", nil, ViewSignIn},
		{"no roles", &Identity{Subject: "u"}, ViewAccessDenied},
		{"other roles", &Identity{Subject: "u", Roles: []string{"editor", "viewer"}}, ViewAccessDenied},
		{"admin", &Identity{Subject: "u", Roles: []string{"viewer", "admin"}}, ViewDashboard},
		{"custom admin role", &Identity{Subject: "u", Roles: []string{"owner"}, adminRole: "owner"}, ViewDashboard},
		{"default role ignored when custom is set", &Identity{Subject: "u", Roles: []string{"admin"}, adminRole: "owner"}, ViewAccessDenied},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Decide(tc.identity))
		})
	}
}

func TestCanUnknownCapability(t *testing.T) {
	id := &Identity{Subject: "u", Roles: []string{"admin"}}
	assert.True(t, id.Can(ManageCatalog))
	assert.False(t, id.Can(Capability("billing:refund")))
}

func TestAuthenticate(t *testing.T) {
	auth := NewAuthenticator(secret, WithIssuer("https://id.example.com"))

	t.Run("valid token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", bearer(t, auth, "admin"))

		id, err := auth.Authenticate(req)
		require.NoError(t, err)
		assert.Equal(t, "user_1", id.Subject)
		assert.Equal(t, "ada@example.com", id.Email)
		assert.Equal(t, []string{"admin"}, id.Roles)
	})

	t.Run("single role claim", func(t *testing.T) {
		claims := jwt.MapClaims{"sub": "user_2", "role": "admin", "iss": "https://id.example.com"}
		raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		require.NoError(t, err)

		id, err := auth.Verify(raw)
		require.NoError(t, err)
		assert.Equal(t, []string{"admin"}, id.Roles)
		assert.True(t, id.Can(ManageCatalog))
	})

	t.Run("missing header", func(t *testing.T) {
		_, err := auth.Authenticate(httptest.NewRequest("GET", "/", nil))
		assert.ErrorIs(t, err, ErrNoToken)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		_, err := auth.Authenticate(req)
		assert.ErrorIs(t, err, ErrNoToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewAuthenticator("another-secret", WithIssuer("https://id.example.com"))
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", bearer(t, other, "admin"))
		_, err := auth.Authenticate(req)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := NewAuthenticator(secret, WithIssuer("https://evil.example.com"))
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", bearer(t, other, "admin"))
		_, err := auth.Authenticate(req)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		past := NewAuthenticator(secret, WithIssuer("https://id.example.com"))
		past.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", bearer(t, past, "admin"))
		_, err := auth.Authenticate(req)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("unsigned token", func(t *testing.T) {
		raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "x"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = auth.Verify(raw)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestRequireAdmin(t *testing.T) {
	auth := NewAuthenticator(secret)
	var seen *Identity
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = FromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	handler := RequireAdmin(auth, zap.NewNop(), next)

	testCases := []struct {
		name               string
		header             string
		expectedStatusCode int
		expectedError      string
	}{
		{"anonymous", "", http.StatusUnauthorized, "sign in required"},
		{"garbage token", "Bearer nope", http.StatusUnauthorized, "sign in required"},
		{"signed in without admin", bearer(t, auth, "viewer"), http.StatusForbidden, "access denied"},
		{"admin", bearer(t, auth, "admin"), http.StatusNoContent, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest("GET", "/api/products", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tc.expectedStatusCode, rec.Code)
			if tc.expectedError == "" {
				require.NotNil(t, seen)
				assert.Equal(t, "user_1", seen.Subject)
				return
			}
			assert.Nil(t, seen)
			var errResp map[string]string
			assert.NoError(t, json.NewDecoder(rec.Body).Decode(&errResp))
			assert.Equal(t, tc.expectedError, errResp["error"])
		})
	}
}

func TestSessionHandler(t *testing.T) {
	auth := NewAuthenticator(secret, WithAdminRole("owner"))
	handler := NewSessionHandler(auth)

	testCases := []struct {
		name     string
		header   string
		expected SessionResponse
	}{
		{"anonymous", "", SessionResponse{View: ViewSignIn, Roles: []string{}}},
		{"invalid", "Bearer broken", SessionResponse{View: ViewSignIn, Roles: []string{}}},
		{"not an owner", bearer(t, auth, "admin"), SessionResponse{View: ViewAccessDenied, Subject: "user_1", Email: "ada@example.com", Roles: []string{"admin"}}},
		{"owner", bearer(t, auth, "owner"), SessionResponse{View: ViewDashboard, Subject: "user_1", Email: "ada@example.com", Roles: []string{"owner"}}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/session", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()

			handler.HandleGet(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			var resp SessionResponse
			assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Equal(t, tc.expected, resp)
		})
	}
}

func TestFromContextEmpty(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	assert.Nil(t, FromContext(req.Context()))
}
