package security

import (
	"errors"
	"fmt"
	"time"

	"itinventory/pkg/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	PurposeAccess        = ""
	PurposePasswordReset = "password_reset"
)

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	Email       string `json:"email"`
	DisplayName string `json:"name,omitempty"`
	Role        string `json:"role"`
	Purpose     string `json:"purpose,omitempty"`
	jwt.RegisteredClaims
}

func (c *Claims) Principal() models.Principal {
	return models.Principal{
		ID:          c.Subject,
		Email:       c.Email,
		DisplayName: c.DisplayName,
		Role:        c.Role,
	}
}

// TokenManager issues and verifies HS256 tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration) (*TokenManager, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("jwt ttl must be positive")
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

func (t *TokenManager) TTL() time.Duration {
	return t.ttl
}

// Issue signs an access token for principal.
func (t *TokenManager) Issue(principal models.Principal) (string, *Claims, error) {
	return t.issue(principal, PurposeAccess, t.ttl)
}

// IssuePasswordReset signs a short-lived token that only the password reset
// confirmation accepts.
func (t *TokenManager) IssuePasswordReset(principal models.Principal, ttl time.Duration) (string, *Claims, error) {
	return t.issue(principal, PurposePasswordReset, ttl)
}

func (t *TokenManager) issue(principal models.Principal, purpose string, ttl time.Duration) (string, *Claims, error) {
	now := t.now()
	claims := &Claims{
		Email:       principal.Email,
		DisplayName: principal.DisplayName,
		Role:        principal.Role,
		Purpose:     purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   principal.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return signed, claims, nil
}

// Parse verifies signature, expiry and purpose.
func (t *TokenManager) Parse(tokenString, purpose string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Purpose != purpose || claims.Subject == "" || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
