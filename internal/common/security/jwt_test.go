package security

import (
	"errors"
	"testing"
	"time"

	"github.com/RafaSilvaDev/Gemini-TODO-App/internal/common"
)

func issuedAt(s *TokenService, ago time.Duration) {
	s.now = func() time.Time { return time.Now().Add(-ago) }
}

func TestAccessTokenRoundTrip(t *testing.T) {
	s := NewTokenService("test-secret", 0, 0)
	token, err := s.IssueAccessToken("user-42")
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}
	got, err := s.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if got != "user-42" {
		t.Fatalf("Verify = %q, want %q", got, "user-42")
	}
}

func TestAccessTokenExpiryBoundary(t *testing.T) {
	tests := []struct {
		name  string
		age   time.Duration
		valid bool
	}{
		{name: "fresh", age: 0, valid: true},
		{name: "59 minutes old", age: 59 * time.Minute, valid: true},
		{name: "61 minutes old", age: 61 * time.Minute, valid: false},
		{name: "a day old", age: 24 * time.Hour, valid: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewTokenService("test-secret", 0, 0)
			issuedAt(s, tt.age)
			token, err := s.IssueAccessToken("user-1")
			if err != nil {
				t.Fatalf("IssueAccessToken: %v", err)
			}
			_, err = s.Verify(token)
			if tt.valid && err != nil {
				t.Fatalf("Verify: unexpected error %v", err)
			}
			if !tt.valid && !errors.Is(err, common.ErrInvalidToken) {
				t.Fatalf("Verify error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestRefreshTokenLifetime(t *testing.T) {
	s := NewTokenService("test-secret", 0, 0)

	issuedAt(s, 6*24*time.Hour)
	token, err := s.IssueRefreshToken("user-1")
	if err != nil {
		t.Fatalf("IssueRefreshToken: %v", err)
	}
	if _, err := s.Verify(token); err != nil {
		t.Fatalf("six-day-old refresh token rejected: %v", err)
	}

	issuedAt(s, 8*24*time.Hour)
	token, err = s.IssueRefreshToken("user-1")
	if err != nil {
		t.Fatalf("IssueRefreshToken: %v", err)
	}
	if _, err := s.Verify(token); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("eight-day-old refresh token: err = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyRejectsForeignSignature(t *testing.T) {
	issuer := NewTokenService("secret-a", 0, 0)
	verifier := NewTokenService("secret-b", 0, 0)

	token, err := issuer.IssueAccessToken("user-1")
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}
	if _, err := verifier.Verify(token); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("Verify error = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	s := NewTokenService("test-secret", 0, 0)
	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := s.Verify(token); !errors.Is(err, common.ErrInvalidToken) {
			t.Fatalf("Verify(%q) error = %v, want ErrInvalidToken", token, err)
		}
	}
}

func TestIssueRequiresUserID(t *testing.T) {
	s := NewTokenService("test-secret", 0, 0)
	if _, err := s.IssueAccessToken(""); err == nil {
		t.Fatal("expected error for empty user id")
	}
}

func TestFallbackSecretIsFlagged(t *testing.T) {
	if !NewTokenService("", 0, 0).Insecure() {
		t.Fatal("expected empty secret to be flagged insecure")
	}
	if NewTokenService("configured", 0, 0).Insecure() {
		t.Fatal("configured secret flagged insecure")
	}

	// Tokens signed with the fallback verify under an explicit fallback secret.
	token, err := NewTokenService("", 0, 0).IssueAccessToken("user-1")
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}
	if _, err := NewTokenService(FallbackSecret, 0, 0).Verify(token); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestCustomLifetimes(t *testing.T) {
	s := NewTokenService("test-secret", 10*time.Minute, time.Hour)
	issuedAt(s, 11*time.Minute)
	token, err := s.IssueAccessToken("user-1")
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}
	if _, err := s.Verify(token); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("Verify error = %v, want ErrInvalidToken", err)
	}
}
