// Package auth verifies HS256 bearer tokens and exposes the caller's
// identity through the request context.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type ctxKeyUserID struct{}
type ctxKeyAdmin struct{}

// UserIDFromContext reports the authenticated caller, if any.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	v, ok := ctx.Value(ctxKeyUserID{}).(uuid.UUID)
	return v, ok
}

// WithUserID injects a caller identity into context. Useful for testing.
func WithUserID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, ctxKeyUserID{}, id)
}

// IsAdmin reports whether the authenticated caller carries the admin claim.
func IsAdmin(ctx context.Context) bool {
	v, ok := ctx.Value(ctxKeyAdmin{}).(bool)
	return ok && v
}

// WithAdmin marks the context caller as an admin. Useful for testing.
func WithAdmin(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxKeyAdmin{}, true)
}

// Claims is the token payload. The subject holds the user id.
type Claims struct {
	jwt.RegisteredClaims
	Admin bool `json:"admin"`
}

// Verifier parses and validates HS256 tokens.
type Verifier struct {
	Secret   []byte
	Issuer   string
	Audience string
}

func (v Verifier) Parse(tokenString string) (*Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	}
	if v.Issuer != "" {
		options = append(options, jwt.WithIssuer(v.Issuer))
	}
	if v.Audience != "" {
		options = append(options, jwt.WithAudience(v.Audience))
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		return v.Secret, nil
	}, options...)
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// bearerToken extracts the token from an Authorization header, empty when
// the header is absent or uses another scheme.
func bearerToken(r *http.Request) string {
	authz := strings.TrimSpace(r.Header.Get("Authorization"))
	if authz == "" {
		return ""
	}
	parts := strings.SplitN(authz, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// identityContext validates the token and returns a context carrying the
// caller's id and admin flag.
func identityContext(ctx context.Context, verifier Verifier, token string) (context.Context, error) {
	claims, err := verifier.Parse(token)
	if err != nil {
		return ctx, err
	}
	userID, err := uuid.Parse(strings.TrimSpace(claims.Subject))
	if err != nil {
		return ctx, errors.New("token subject is not a user id")
	}
	ctx = context.WithValue(ctx, ctxKeyUserID{}, userID)
	if claims.Admin {
		ctx = context.WithValue(ctx, ctxKeyAdmin{}, true)
	}
	return ctx, nil
}

// Authenticate injects the caller's identity when a valid bearer token is
// present and otherwise lets the request through anonymously. Requests with
// an invalid token are rejected rather than silently downgraded.
func Authenticate(verifier Verifier) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			ctx, err := identityContext(r.Context(), verifier, token)
			if err != nil {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireUser rejects requests that did not authenticate.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserIDFromContext(r.Context()); !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects authenticated callers without the admin claim and
// unauthenticated callers outright.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserIDFromContext(r.Context()); !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if !IsAdmin(r.Context()) {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
