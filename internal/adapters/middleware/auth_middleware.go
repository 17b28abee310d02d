package middleware

import (
	"context"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/IANDYI/maternal-care-service/internal/core/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	errMissingToken = errors.New("missing token")
	errMissingExp   = errors.New("missing expiration claim")
	errTokenExpired = errors.New("token expired")
	errMissingSub   = errors.New("missing or invalid user ID claim")
	errMissingRole  = errors.New("missing or invalid role claim")
)

// Principal is the authenticated caller extracted from a verified token
type Principal struct {
	UserID string
	Role   string
	Email  string
	JTI    string
}

// IsAdmin reports whether the principal is a clinician
func (p Principal) IsAdmin() bool {
	return p.Role == domain.RoleAdmin
}

// cacheEntry stores verified claims until the token expires
type cacheEntry struct {
	principal Principal
	exp       int64
}

// AuthMiddleware validates RS256 tokens issued by the identity service and
// enforces role based access. Verified tokens are cached until they expire.
type AuthMiddleware struct {
	publicKey   *rsa.PublicKey
	cache       sync.Map
	janitorStop chan struct{}
	stopOnce    sync.Once
	logger      *logrus.Logger
}

const CacheCleanupInterval = 10 * time.Minute

// NewAuthMiddleware creates a new JWT authentication middleware
func NewAuthMiddleware(publicKey *rsa.PublicKey, logger *logrus.Logger) *AuthMiddleware {
	m := &AuthMiddleware{
		publicKey:   publicKey,
		janitorStop: make(chan struct{}),
		logger:      logger,
	}

	go m.startJanitor(CacheCleanupInterval)

	return m
}

// Context keys for storing user information
type contextKey string

const (
	UserIDKey    contextKey = "userID"
	RoleKey      contextKey = "role"
	TokenKey     contextKey = "token"
	UserEmailKey contextKey = "userEmail"
)

// cacheKey hashes the whole token. Keying on the unverified jti alone would
// let a forged token with a known jti reuse another caller's claims.
func cacheKey(tokenString string) string {
	sum := sha256.Sum256([]byte(tokenString))
	return hex.EncodeToString(sum[:])
}

// Authenticate verifies a token and returns its principal.
// Used by RequireAuth and by the websocket endpoint.
func (m *AuthMiddleware) Authenticate(tokenString string) (Principal, error) {
	if tokenString == "" {
		return Principal{}, errMissingToken
	}

	key := cacheKey(tokenString)
	if entry, ok := m.cache.Load(key); ok {
		cached := entry.(cacheEntry)
		if time.Now().Unix() < cached.exp {
			return cached.principal, nil
		}
		m.cache.Delete(key)
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.publicKey, nil
	})
	if err != nil {
		return Principal{}, err
	}
	if !token.Valid {
		return Principal{}, jwt.ErrSignatureInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Principal{}, errors.New("invalid token claims")
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return Principal{}, errMissingExp
	}
	if time.Now().After(exp.Time) {
		return Principal{}, errTokenExpired
	}

	principal := Principal{}
	principal.UserID, _ = claims["sub"].(string)
	if principal.UserID == "" {
		return Principal{}, errMissingSub
	}
	principal.Role, _ = claims["role"].(string)
	if principal.Role == "" {
		return Principal{}, errMissingRole
	}
	principal.Email, _ = claims["email"].(string)
	principal.JTI, _ = claims["jti"].(string)

	m.cache.Store(key, cacheEntry{principal: principal, exp: exp.Unix()})
	return principal, nil
}

// TokenFromRequest reads a bearer token from the Authorization header.
// When allowQuery is set the token query parameter is accepted too, since
// browsers cannot set headers on websocket upgrades.
func TokenFromRequest(r *http.Request, allowQuery bool) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.Fields(authHeader)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
		return ""
	}
	if allowQuery {
		return r.URL.Query().Get("token")
	}
	return ""
}

// WithPrincipal stores the principal in the context
func WithPrincipal(ctx context.Context, p Principal, tokenString string) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, p.UserID)
	ctx = context.WithValue(ctx, RoleKey, p.Role)
	ctx = context.WithValue(ctx, UserEmailKey, p.Email)
	if tokenString != "" {
		ctx = context.WithValue(ctx, TokenKey, tokenString)
	}
	return ctx
}

// RequireAuth validates the bearer token and adds the caller to the context
func (m *AuthMiddleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		if r.Header.Get("Authorization") == "" {
			m.logger.WithField("path", r.URL.Path).Debug("missing authorization header")
			http.Error(w, "missing authorization header", http.StatusUnauthorized)
			return
		}

		tokenString := TokenFromRequest(r, false)
		if tokenString == "" {
			http.Error(w, "invalid authorization header", http.StatusUnauthorized)
			return
		}

		principal, err := m.Authenticate(tokenString)
		if err != nil {
			m.logger.WithError(err).WithField("path", r.URL.Path).Info("token validation failed")
			http.Error(w, "invalid or expired token", http.StatusUnauthorized)
			return
		}

		m.logger.WithFields(logrus.Fields{
			"user_id":    principal.UserID,
			"role":       principal.Role,
			"jti":        principal.JTI,
			"elapsed_us": time.Since(start).Microseconds(),
		}).Debug("token validated")

		next(w, r.WithContext(WithPrincipal(r.Context(), principal, tokenString)))
	}
}

// RequireRole only lets callers with the given role through
func (m *AuthMiddleware) RequireRole(requiredRole string, next http.HandlerFunc) http.HandlerFunc {
	return m.RequireAnyRole([]string{requiredRole}, next)
}

// RequireAnyRole lets callers with any of the given roles through
func (m *AuthMiddleware) RequireAnyRole(allowedRoles []string, next http.HandlerFunc) http.HandlerFunc {
	return m.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		role, ok := GetRole(r.Context())
		if !ok {
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		for _, allowed := range allowedRoles {
			if role == allowed {
				next(w, r)
				return
			}
		}

		m.logger.WithFields(logrus.Fields{
			"required": allowedRoles,
			"role":     role,
			"path":     r.URL.Path,
		}).Info("role mismatch")
		http.Error(w, "forbidden", http.StatusForbidden)
	})
}

// startJanitor periodically removes expired cache entries
func (m *AuthMiddleware) startJanitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if deleted := m.purgeExpired(time.Now()); deleted > 0 {
				m.logger.WithField("purged", deleted).Debug("token cache janitor run")
			}
		case <-m.janitorStop:
			return
		}
	}
}

func (m *AuthMiddleware) purgeExpired(now time.Time) int {
	deleted := 0
	m.cache.Range(func(key, value interface{}) bool {
		if entry, ok := value.(cacheEntry); ok && now.Unix() >= entry.exp {
			m.cache.Delete(key)
			deleted++
		}
		return true
	})
	return deleted
}

// Stop stops the background janitor. Safe to call more than once.
func (m *AuthMiddleware) Stop() {
	m.stopOnce.Do(func() { close(m.janitorStop) })
}

// GetUserID extracts user ID from request context
func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok
}

// GetUserUUID extracts the user ID from request context as a UUID
func GetUserUUID(ctx context.Context) (uuid.UUID, error) {
	userID, ok := GetUserID(ctx)
	if !ok {
		return uuid.Nil, errMissingSub
	}
	return uuid.Parse(userID)
}

// GetRole extracts role from request context
func GetRole(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(RoleKey).(string)
	return role, ok
}

// GetToken extracts token string from request context
func GetToken(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(TokenKey).(string)
	return token, ok
}

// GetUserEmail extracts user email from request context
func GetUserEmail(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(UserEmailKey).(string)
	return email, ok
}

// IsAdmin checks if the user in context is a clinician
func IsAdmin(ctx context.Context) bool {
	role, ok := GetRole(ctx)
	return ok && role == domain.RoleAdmin
}
