package auth

import (
	"strings"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/content-service/internal/domain"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestSignAndParseRoundTrip(t *testing.T) {
	issued := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	tm := NewTokenManager("secret", DefaultTokenTTL).WithClock(fixedClock(issued))

	token, err := tm.Sign(domain.Actor{ID: "u1", Role: domain.RoleAdmin})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if !token.ExpiresAt.Equal(issued.Add(7 * 24 * time.Hour)) {
		t.Fatalf("expected expiry 7 days after issuance, got %s", token.ExpiresAt)
	}

	actor, err := tm.WithClock(fixedClock(issued.Add(6 * 24 * time.Hour))).Parse(token.Value)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if actor.ID != "u1" || actor.Role != domain.RoleAdmin {
		t.Fatalf("unexpected actor %+v", actor)
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	issued := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	tm := NewTokenManager("secret", 7*24*time.Hour).WithClock(fixedClock(issued))

	token, err := tm.Sign(domain.Actor{ID: "u1", Role: domain.RoleUser})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	_, err = tm.WithClock(fixedClock(issued.Add(8 * 24 * time.Hour))).Parse(token.Value)
	if err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestParseRejectsForeignSignature(t *testing.T) {
	token, err := NewTokenManager("secret-a", time.Hour).Sign(domain.Actor{ID: "u1", Role: domain.RoleUser})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := NewTokenManager("secret-b", time.Hour).Parse(token.Value); err == nil {
		t.Fatal("expected token signed with another secret to be rejected")
	}
}

func TestParseRejectsTamperedPayload(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	token, err := tm.Sign(domain.Actor{ID: "u1", Role: domain.RoleUser})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	parts := strings.Split(token.Value, ".")
	forged, err := NewTokenManager("other", time.Hour).Sign(domain.Actor{ID: "u1", Role: domain.RoleAdmin})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	parts[1] = strings.Split(forged.Value, ".")[1]
	if _, err := tm.Parse(strings.Join(parts, ".")); err == nil {
		t.Fatal("expected tampered payload to be rejected")
	}
}

func TestParseRejectsNoneAlgorithm(t *testing.T) {
	claims := &Claims{
		Role: domain.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	if _, err := NewTokenManager("secret", time.Hour).Parse(raw); err == nil {
		t.Fatal("expected unsigned token to be rejected")
	}
}

func TestParseRejectsUnknownRole(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	token, err := tm.Sign(domain.Actor{ID: "u1", Role: domain.Role("root")})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := tm.Parse(token.Value); err == nil {
		t.Fatal("expected unknown role claim to be rejected")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("password123", 4)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "password123" {
		t.Fatal("hash must not equal the plaintext")
	}
	if err := ComparePassword(hash, "password123"); err != nil {
		t.Fatalf("expected match: %v", err)
	}
	if err := ComparePassword(hash, "password124"); err == nil {
		t.Fatal("expected mismatch")
	}
}
