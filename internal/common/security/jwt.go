package security

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RafaSilvaDev/Gemini-TODO-App/internal/common"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
)

// FallbackSecret signs tokens when no secret is configured. Never deploy with it.
const FallbackSecret = "your_secret_key"

const (
	DefaultAccessTokenTTL  = time.Hour
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour

	userIDClaim = "userId"
)

// TokenService issues and verifies HS256 access and refresh tokens.
type TokenService struct {
	auth       *jwtauth.JWTAuth
	accessTTL  time.Duration
	refreshTTL time.Duration
	insecure   bool
	now        func() time.Time
}

// NewTokenService builds a TokenService. An empty secret selects FallbackSecret
// and marks the service insecure; non-positive lifetimes select the defaults.
func NewTokenService(secret string, accessTTL, refreshTTL time.Duration) *TokenService {
	insecure := secret == ""
	if insecure {
		secret = FallbackSecret
	}
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTokenTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = DefaultRefreshTokenTTL
	}
	return &TokenService{
		auth:       jwtauth.New("HS256", []byte(secret), nil),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		insecure:   insecure,
		now:        time.Now,
	}
}

// Insecure reports whether the service signs with FallbackSecret.
func (s *TokenService) Insecure() bool {
	return s.insecure
}

func (s *TokenService) IssueAccessToken(userID string) (string, error) {
	return s.issue(userID, s.accessTTL)
}

func (s *TokenService) IssueRefreshToken(userID string) (string, error) {
	return s.issue(userID, s.refreshTTL)
}

func (s *TokenService) issue(userID string, ttl time.Duration) (string, error) {
	if userID == "" {
		return "", errors.New("cannot issue token without a user id")
	}
	issuedAt := s.now()
	claims := jwt.MapClaims{userIDClaim: userID}
	jwtauth.SetIssuedAt(claims, issuedAt)
	jwtauth.SetExpiry(claims, issuedAt.Add(ttl))

	_, tokenString, err := s.auth.Encode(claims)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return tokenString, nil
}

// Verify checks signature and expiry and returns the embedded user id.
// Every failure wraps common.ErrInvalidToken.
func (s *TokenService) Verify(tokenString string) (string, error) {
	if tokenString == "" {
		return "", common.ErrInvalidToken
	}
	token, err := jwtauth.VerifyToken(s.auth, tokenString)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	claims, err := token.AsMap(context.Background())
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	userID, err := GetUserIDFromClaims(claims)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	return userID, nil
}

func GetUserIDFromClaims(claims jwt.MapClaims) (string, error) {
	id, ok := claims[userIDClaim].(string)
	if !ok || id == "" {
		return "", errors.New("userId claim is missing or not a string")
	}
	return id, nil
}
