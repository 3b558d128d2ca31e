package middleware

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type contextKey string

const ownerIDKey contextKey = "ownerID"

const (
	cookieName    = "owner_id"
	cookieExpires = 365 * 24 * time.Hour
)

// AuthMiddleware is the identity gate in front of the management API. It
// hands every request an opaque, verified owner id: either the one carried
// by a validly signed cookie, or a freshly minted one. Handlers behind it
// can rely on the owner id being present in the request context.
type AuthMiddleware struct {
	secret []byte
	logger *zap.Logger
}

func NewAuthMiddleware(secret string, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		secret: []byte(secret),
		logger: logger,
	}
}

func (a *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := a.ownerIDFromRequest(r)
		if err != nil {
			a.logger.Warn("rejected request with invalid identity cookie", zap.Error(err))
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		cookie, cookieErr := r.Cookie(cookieName)
		if cookieErr != nil || !a.validateCookie(cookie.Value, ownerID) {
			a.setOwnerCookie(w, ownerID)
		}

		ctx := context.WithValue(r.Context(), ownerIDKey, ownerID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *AuthMiddleware) ownerIDFromRequest(r *http.Request) (string, error) {
	cookie, err := r.Cookie(cookieName)
	if err != nil {
		return uuid.New().String(), nil
	}

	ownerID, valid := a.parseCookie(cookie.Value)
	if !valid {
		return "", errInvalidSignature
	}

	return ownerID, nil
}

var errInvalidSignature = &invalidSignatureError{}

type invalidSignatureError struct{}

func (*invalidSignatureError) Error() string { return "invalid cookie signature" }

func (a *AuthMiddleware) setOwnerCookie(w http.ResponseWriter, ownerID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    a.signOwnerID(ownerID),
		Path:     "/",
		Expires:  time.Now().Add(cookieExpires),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (a *AuthMiddleware) signOwnerID(ownerID string) string {
	mac := hmac.New(sha256.New, a.secret)
	mac.Write([]byte(ownerID))
	return ownerID + "." + hex.EncodeToString(mac.Sum(nil))
}

func (a *AuthMiddleware) parseCookie(value string) (string, bool) {
	parts := strings.Split(value, ".")
	if len(parts) != 2 {
		return "", false
	}

	ownerID := parts[0]
	expected := strings.Split(a.signOwnerID(ownerID), ".")
	if len(expected) != 2 {
		return "", false
	}

	if !hmac.Equal([]byte(parts[1]), []byte(expected[1])) {
		return "", false
	}

	return ownerID, true
}

func (a *AuthMiddleware) validateCookie(value, expectedOwnerID string) bool {
	ownerID, valid := a.parseCookie(value)
	return valid && ownerID == expectedOwnerID
}

// GetOwnerIDFromContext extracts the owner id placed by the middleware.
func GetOwnerIDFromContext(ctx context.Context) (string, bool) {
	ownerID, ok := ctx.Value(ownerIDKey).(string)
	return ownerID, ok
}
