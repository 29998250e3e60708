package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var testSecret = []byte("test-secret-key-32-bytes-long!!!")

const (
	testIssuer   = "movies-api"
	testAudience = "movies-clients"
)

func makeToken(t *testing.T, subject string, admin bool, exp time.Time) string {
	t.Helper()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    testIssuer,
			Audience:  jwt.ClaimStrings{testAudience},
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		Admin: admin,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return signed
}

func newVerifier() Verifier {
	return Verifier{Secret: testSecret, Issuer: testIssuer, Audience: testAudience}
}

func TestVerifier_ValidToken(t *testing.T) {
	subject := uuid.New()
	tok := makeToken(t, subject.String(), true, time.Now().Add(time.Hour))

	claims, err := newVerifier().Parse(tok)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.Subject != subject.String() {
		t.Fatalf("subject = %q, want %q", claims.Subject, subject)
	}
	if !claims.Admin {
		t.Fatalf("expected admin claim to survive parsing")
	}
}

func TestVerifier_ExpiredToken(t *testing.T) {
	tok := makeToken(t, uuid.NewString(), false, time.Now().Add(-time.Hour))
	if _, err := newVerifier().Parse(tok); err == nil {
		t.Fatal("expected error for expired token")
	}
}

func TestVerifier_WrongSecret(t *testing.T) {
	tok := makeToken(t, uuid.NewString(), false, time.Now().Add(time.Hour))
	wrong := Verifier{Secret: []byte("wrong-secret"), Issuer: testIssuer, Audience: testAudience}
	if _, err := wrong.Parse(tok); err == nil {
		t.Fatal("expected error for wrong secret")
	}
}

func TestVerifier_WrongIssuer(t *testing.T) {
	tok := makeToken(t, uuid.NewString(), false, time.Now().Add(time.Hour))
	other := newVerifier()
	other.Issuer = "someone-else"
	if _, err := other.Parse(tok); err == nil {
		t.Fatal("expected error for unexpected issuer")
	}
}

func TestVerifier_WrongAudience(t *testing.T) {
	tok := makeToken(t, uuid.NewString(), false, time.Now().Add(time.Hour))
	other := newVerifier()
	other.Audience = "someone-else"
	if _, err := other.Parse(tok); err == nil {
		t.Fatal("expected error for unexpected audience")
	}
}

func TestVerifier_MalformedToken(t *testing.T) {
	if _, err := newVerifier().Parse("not.a.valid.token"); err == nil {
		t.Fatal("expected error for malformed token")
	}
}

func TestVerifier_TamperedPayload(t *testing.T) {
	tok := makeToken(t, uuid.NewString(), true, time.Now().Add(time.Hour))
	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		t.Fatal("expected 3 JWT parts")
	}
	tampered := parts[0] + ".dGFtcGVyZWQ." + parts[2]
	if _, err := newVerifier().Parse(tampered); err == nil {
		t.Fatal("expected error for tampered token")
	}
}

func callAuthenticate(req *http.Request) (*httptest.ResponseRecorder, *http.Request) {
	rr := httptest.NewRecorder()
	var seen *http.Request
	Authenticate(newVerifier())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r
		w.WriteHeader(http.StatusOK)
	})).ServeHTTP(rr, req)
	return rr, seen
}

func TestAuthenticate_ValidBearer(t *testing.T) {
	subject := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+makeToken(t, subject.String(), false, time.Now().Add(time.Hour)))

	rr, seen := callAuthenticate(req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	got, ok := UserIDFromContext(seen.Context())
	if !ok || got != subject {
		t.Fatalf("user id = (%v, %v), want %v", got, ok, subject)
	}
	if IsAdmin(seen.Context()) {
		t.Fatalf("non-admin token must not set the admin flag")
	}
}

func TestAuthenticate_AdminClaim(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+makeToken(t, uuid.NewString(), true, time.Now().Add(time.Hour)))

	rr, seen := callAuthenticate(req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !IsAdmin(seen.Context()) {
		t.Fatalf("expected admin flag in context")
	}
}

func TestAuthenticate_MissingHeaderStaysAnonymous(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr, seen := callAuthenticate(req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if _, ok := UserIDFromContext(seen.Context()); ok {
		t.Fatalf("anonymous request must carry no identity")
	}
}

func TestAuthenticate_InvalidTokenRejected(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer invalid.token.here")
	rr, _ := callAuthenticate(req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestAuthenticate_NonUUIDSubjectRejected(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+makeToken(t, "not-a-uuid", false, time.Now().Add(time.Hour)))
	rr, _ := callAuthenticate(req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func callGuard(guard func(http.Handler) http.Handler, ctx context.Context) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
	rr := httptest.NewRecorder()
	guard(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})).ServeHTTP(rr, req)
	return rr
}

func TestRequireUser(t *testing.T) {
	if rr := callGuard(RequireUser, context.Background()); rr.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous: expected 401, got %d", rr.Code)
	}
	ctx := WithUserID(context.Background(), uuid.New())
	if rr := callGuard(RequireUser, ctx); rr.Code != http.StatusOK {
		t.Fatalf("authenticated: expected 200, got %d", rr.Code)
	}
}

func TestRequireAdmin(t *testing.T) {
	if rr := callGuard(RequireAdmin, context.Background()); rr.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous: expected 401, got %d", rr.Code)
	}
	user := WithUserID(context.Background(), uuid.New())
	if rr := callGuard(RequireAdmin, user); rr.Code != http.StatusForbidden {
		t.Fatalf("plain user: expected 403, got %d", rr.Code)
	}
	admin := WithAdmin(user)
	if rr := callGuard(RequireAdmin, admin); rr.Code != http.StatusOK {
		t.Fatalf("admin: expected 200, got %d", rr.Code)
	}
}
