package token

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/promptml/promptml/internal/metrics"
)

func TestNewService(t *testing.T) {
	tests := []struct {
		name    string
		ttl     time.Duration
		wantTTL time.Duration
	}{
		{name: "default ttl", ttl: 0, wantTTL: DefaultTTL},
		{name: "custom ttl", ttl: time.Hour, wantTTL: time.Hour},
		{name: "negative ttl falls back", ttl: -time.Minute, wantTTL: DefaultTTL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, err := NewService(tt.ttl, nil)
			if err != nil {
				t.Fatalf("failed to create service: %v", err)
			}

			if len(service.signingKey) != 32 {
				t.Errorf("expected 32-byte signing key, got %d bytes", len(service.signingKey))
			}
			if service.algorithm != jwt.SigningMethodHS256 {
				t.Errorf("expected HS256 algorithm, got %v", service.algorithm)
			}
			if got := service.TTL(); got != tt.wantTTL {
				t.Errorf("expected ttl %v, got %v", tt.wantTTL, got)
			}
		})
	}
}

func TestIssueAndVerify(t *testing.T) {
	service, err := NewService(time.Minute, nil)
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	tokenString, err := service.Issue("sess-1", "greeting")
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}
	if tokenString == "" {
		t.Fatal("expected non-empty token")
	}

	claims, err := service.Verify(tokenString)
	if err != nil {
		t.Fatalf("failed to verify token: %v", err)
	}

	if claims.SessionID != "sess-1" {
		t.Errorf("expected session sess-1, got %q", claims.SessionID)
	}
	if claims.Snippet != "greeting" {
		t.Errorf("expected snippet greeting, got %q", claims.Snippet)
	}
	if claims.Issuer != issuer {
		t.Errorf("expected issuer %q, got %q", issuer, claims.Issuer)
	}
	if claims.Subject != "sess-1" {
		t.Errorf("expected subject sess-1, got %q", claims.Subject)
	}

	remaining := time.Until(claims.ExpiresAt.Time)
	if remaining <= 0 || remaining > time.Minute {
		t.Errorf("expected expiry within a minute, got %v", remaining)
	}
}

func TestVerifyMultiUse(t *testing.T) {
	service, err := NewService(time.Minute, nil)
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	tokenString, err := service.Issue("sess-1", "greeting")
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	// reconnects present the same token again
	for i := 0; i < 3; i++ {
		if _, err := service.Verify(tokenString); err != nil {
			t.Fatalf("verification %d failed: %v", i+1, err)
		}
	}
}

func TestVerifyExpired(t *testing.T) {
	service, err := NewService(time.Minute, nil)
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	claims := &SessionToken{
		SessionID: "sess-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Minute)),
			Issuer:    issuer,
			Subject:   "sess-1",
		},
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(service.signingKey)
	if err != nil {
		t.Fatalf("failed to sign expired token: %v", err)
	}

	if _, err := service.Verify(expired); err == nil {
		t.Error("expected expired token to be rejected")
	}
}

func TestVerifyWrongAlgorithm(t *testing.T) {
	service, err := NewService(time.Minute, nil)
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	claims := &SessionToken{
		SessionID: "sess-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
			Issuer:    issuer,
		},
	}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(service.signingKey)
	if err != nil {
		t.Fatalf("failed to sign HS512 token: %v", err)
	}

	if _, err := service.Verify(forged); err == nil {
		t.Error("expected HS512 token to be rejected")
	}
}

func TestVerifyWrongIssuer(t *testing.T) {
	service, err := NewService(time.Minute, nil)
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	claims := &SessionToken{
		SessionID: "sess-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
			Issuer:    "someone-else",
		},
	}
	foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(service.signingKey)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	if _, err := service.Verify(foreign); err == nil {
		t.Error("expected foreign issuer to be rejected")
	}
}

func TestVerifyMissingSession(t *testing.T) {
	service, err := NewService(time.Minute, nil)
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	claims := &SessionToken{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
			Issuer:    issuer,
		},
	}
	anonymous, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(service.signingKey)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	_, err = service.Verify(anonymous)
	if err == nil {
		t.Fatal("expected token without session to be rejected")
	}
	if !strings.Contains(err.Error(), "missing session") {
		t.Errorf("expected missing session error, got: %v", err)
	}
}

func TestVerifyGarbage(t *testing.T) {
	service, err := NewService(time.Minute, nil)
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	for _, bad := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := service.Verify(bad); err == nil {
			t.Errorf("expected %q to be rejected", bad)
		}
	}
}

func TestRotateSigningKey(t *testing.T) {
	service, err := NewService(time.Minute, nil)
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	before, err := service.Issue("sess-1", "greeting")
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	if err := service.RotateSigningKey(); err != nil {
		t.Fatalf("failed to rotate key: %v", err)
	}

	if _, err := service.Verify(before); err == nil {
		t.Error("expected pre-rotation token to be rejected")
	}

	after, err := service.Issue("sess-2", "greeting")
	if err != nil {
		t.Fatalf("failed to issue token after rotation: %v", err)
	}
	if _, err := service.Verify(after); err != nil {
		t.Errorf("expected post-rotation token to verify: %v", err)
	}
}

func TestServiceMetrics(t *testing.T) {
	stats := metrics.NewCollector()
	service, err := NewService(time.Minute, stats)
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	first, err := service.Issue("sess-1", "greeting")
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}
	if _, err := service.Issue("sess-2", "farewell"); err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	if _, err := service.Verify(first); err != nil {
		t.Fatalf("failed to verify token: %v", err)
	}
	if _, err := service.Verify("garbage"); err == nil {
		t.Fatal("expected garbage token to be rejected")
	}

	snap := stats.Snapshot()
	if snap.TokensIssued != 2 {
		t.Errorf("expected 2 issued, got %d", snap.TokensIssued)
	}
	if snap.TokensVerified != 1 {
		t.Errorf("expected 1 verified, got %d", snap.TokensVerified)
	}
	if snap.TokenFailures != 1 {
		t.Errorf("expected 1 failure, got %d", snap.TokenFailures)
	}
}
