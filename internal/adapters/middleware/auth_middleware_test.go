package middleware_test

import (
	"crypto/rand"
	"crypto/rsa"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/IANDYI/maternal-care-service/internal/adapters/middleware"
	"github.com/IANDYI/maternal-care-service/internal/core/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func generateTestKeyPair(t *testing.T) (*rsa.PrivateKey, *rsa.PublicKey) {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return privateKey, &privateKey.PublicKey
}

func createTestToken(t *testing.T, privateKey *rsa.PrivateKey, claims jwt.MapClaims) string {
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	tokenString, err := token.SignedString(privateKey)
	require.NoError(t, err)
	return tokenString
}

func validClaims(sub, role string) jwt.MapClaims {
	return jwt.MapClaims{
		"sub":  sub,
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
		"jti":  "test-jti-123",
	}
}

func newMiddleware(t *testing.T) (*middleware.AuthMiddleware, *rsa.PrivateKey) {
	privateKey, publicKey := generateTestKeyPair(t)
	mw := middleware.NewAuthMiddleware(publicKey, quietLogger())
	t.Cleanup(mw.Stop)
	return mw, privateKey
}

func TestAuthMiddleware_Authenticate_ValidToken(t *testing.T) {
	mw, privateKey := newMiddleware(t)
	claims := validClaims("user123", domain.RoleAdmin)
	claims["email"] = "clinic@example.com"
	tokenString := createTestToken(t, privateKey, claims)

	principal, err := mw.Authenticate(tokenString)
	require.NoError(t, err)
	assert.Equal(t, "user123", principal.UserID)
	assert.Equal(t, domain.RoleAdmin, principal.Role)
	assert.Equal(t, "clinic@example.com", principal.Email)
	assert.Equal(t, "test-jti-123", principal.JTI)
	assert.True(t, principal.IsAdmin())
}

func TestAuthMiddleware_Authenticate_CacheHit(t *testing.T) {
	mw, privateKey := newMiddleware(t)
	tokenString := createTestToken(t, privateKey, validClaims("user123", domain.RolePatient))

	first, err := mw.Authenticate(tokenString)
	require.NoError(t, err)
	second, err := mw.Authenticate(tokenString)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestAuthMiddleware_Authenticate_SameJTIDifferentKey(t *testing.T) {
	mw, privateKey := newMiddleware(t)
	tokenString := createTestToken(t, privateKey, validClaims("user123", domain.RolePatient))
	_, err := mw.Authenticate(tokenString)
	require.NoError(t, err)

	// A token with the cached jti signed by another key must still fail
	otherKey, _ := generateTestKeyPair(t)
	forged := createTestToken(t, otherKey, validClaims("intruder", domain.RoleAdmin))

	_, err = mw.Authenticate(forged)
	assert.Error(t, err)
}

func TestAuthMiddleware_Authenticate_ExpiredToken(t *testing.T) {
	mw, privateKey := newMiddleware(t)
	claims := validClaims("user123", domain.RoleAdmin)
	claims["exp"] = time.Now().Add(-time.Hour).Unix()
	tokenString := createTestToken(t, privateKey, claims)

	_, err := mw.Authenticate(tokenString)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expired")
}

func TestAuthMiddleware_Authenticate_Rejects(t *testing.T) {
	mw, privateKey := newMiddleware(t)

	noExp := validClaims("user123", domain.RolePatient)
	delete(noExp, "exp")
	noRole := validClaims("user123", "")
	noSub := validClaims("", domain.RolePatient)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "invalid-token"},
		{"missing exp", createTestToken(t, privateKey, noExp)},
		{"missing role", createTestToken(t, privateKey, noRole)},
		{"missing sub", createTestToken(t, privateKey, noSub)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := mw.Authenticate(tt.token)
			assert.Error(t, err)
		})
	}
}

func TestAuthMiddleware_Authenticate_RejectsHMAC(t *testing.T) {
	mw, _ := newMiddleware(t)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, validClaims("user123", domain.RoleAdmin))
	tokenString, err := token.SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = mw.Authenticate(tokenString)
	assert.Error(t, err)
}

func TestAuthMiddleware_RequireAuth(t *testing.T) {
	mw, privateKey := newMiddleware(t)
	userID := uuid.New()
	claims := validClaims(userID.String(), domain.RolePatient)
	claims["email"] = "test@example.com"
	tokenString := createTestToken(t, privateKey, claims)

	handler := mw.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		id, ok := middleware.GetUserID(r.Context())
		assert.True(t, ok)
		assert.Equal(t, userID.String(), id)

		parsed, err := middleware.GetUserUUID(r.Context())
		assert.NoError(t, err)
		assert.Equal(t, userID, parsed)

		role, ok := middleware.GetRole(r.Context())
		assert.True(t, ok)
		assert.Equal(t, domain.RolePatient, role)
		assert.False(t, middleware.IsAdmin(r.Context()))

		email, ok := middleware.GetUserEmail(r.Context())
		assert.True(t, ok)
		assert.Equal(t, "test@example.com", email)

		token, ok := middleware.GetToken(r.Context())
		assert.True(t, ok)
		assert.Equal(t, tokenString, token)

		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tokenString)
	w := httptest.NewRecorder()

	handler(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthMiddleware_RequireAuth_MissingHeader(t *testing.T) {
	mw, _ := newMiddleware(t)

	handler := mw.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Handler should not be called")
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	handler(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_RequireAuth_IgnoresQueryToken(t *testing.T) {
	mw, privateKey := newMiddleware(t)
	tokenString := createTestToken(t, privateKey, validClaims("user123", domain.RolePatient))

	handler := mw.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Handler should not be called")
	})

	req := httptest.NewRequest(http.MethodGet, "/?token="+tokenString, nil)
	w := httptest.NewRecorder()

	handler(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_RequireAuth_MalformedHeader(t *testing.T) {
	mw, privateKey := newMiddleware(t)
	tokenString := createTestToken(t, privateKey, validClaims("user123", domain.RolePatient))

	handler := mw.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Handler should not be called")
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Token "+tokenString)
	w := httptest.NewRecorder()

	handler(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_RequireRole(t *testing.T) {
	mw, privateKey := newMiddleware(t)
	tokenString := createTestToken(t, privateKey, validClaims("user123", domain.RoleAdmin))

	handler := mw.RequireRole(domain.RoleAdmin, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, middleware.IsAdmin(r.Context()))
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tokenString)
	w := httptest.NewRecorder()

	handler(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthMiddleware_RequireRole_WrongRole(t *testing.T) {
	mw, privateKey := newMiddleware(t)
	tokenString := createTestToken(t, privateKey, validClaims("user123", domain.RolePatient))

	handler := mw.RequireRole(domain.RoleAdmin, func(w http.ResponseWriter, r *http.Request) {
		t.Error("Handler should not be called")
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tokenString)
	w := httptest.NewRecorder()

	handler(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAuthMiddleware_RequireAnyRole(t *testing.T) {
	mw, privateKey := newMiddleware(t)
	allowed := []string{domain.RoleAdmin, domain.RolePatient}

	for _, role := range allowed {
		t.Run(role, func(t *testing.T) {
			tokenString := createTestToken(t, privateKey, validClaims("user123", role))
			handler := mw.RequireAnyRole(allowed, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", "Bearer "+tokenString)
			w := httptest.NewRecorder()

			handler(w, req)
			assert.Equal(t, http.StatusOK, w.Code)
		})
	}

	t.Run("other role", func(t *testing.T) {
		tokenString := createTestToken(t, privateKey, validClaims("user123", "NURSE"))
		handler := mw.RequireAnyRole(allowed, func(w http.ResponseWriter, r *http.Request) {
			t.Error("Handler should not be called")
		})

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+tokenString)
		w := httptest.NewRecorder()

		handler(w, req)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestTokenFromRequest(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		query      string
		allowQuery bool
		want       string
	}{
		{"bearer header", "Bearer abc", "", false, "abc"},
		{"lowercase scheme", "bearer abc", "", false, "abc"},
		{"wrong scheme", "Basic abc", "", true, ""},
		{"query allowed", "", "xyz", true, "xyz"},
		{"query not allowed", "", "xyz", false, ""},
		{"header wins over query", "Bearer abc", "xyz", true, "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := "/ws"
			if tt.query != "" {
				target += "?token=" + tt.query
			}
			req := httptest.NewRequest(http.MethodGet, target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			assert.Equal(t, tt.want, middleware.TokenFromRequest(req, tt.allowQuery))
		})
	}
}

func TestAuthMiddleware_StopTwice(t *testing.T) {
	_, publicKey := generateTestKeyPair(t)
	mw := middleware.NewAuthMiddleware(publicKey, quietLogger())

	assert.NotPanics(t, func() {
		mw.Stop()
		mw.Stop()
	})
}
