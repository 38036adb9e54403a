// Package auth signs the callback tokens attached to reminder actions.
package auth

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/hkdf"

	"habitcoach/internal/models"
)

var ErrInvalidToken = errors.New("invalid action token")

// DefaultTokenTTL covers a reminder answered the following day.
const DefaultTokenTTL = 48 * time.Hour

const tokenType = "reminder_action"

type ActionClaims struct {
	UserID    models.UserID  `json:"user_id"`
	HabitID   models.HabitID `json:"habit_id"`
	Status    models.Status  `json:"status"`
	TokenType string         `json:"token_type"`
	jwt.RegisteredClaims
}

// ActionSigner issues and validates reminder action tokens.
type ActionSigner struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewActionSigner derives its HMAC key from appSecret with HKDF-SHA256.
func NewActionSigner(appSecret string, ttl time.Duration) (*ActionSigner, error) {
	if appSecret == "" {
		return nil, errors.New("app secret is required")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	key := make([]byte, 32)
	r := hkdf.New(sha256.New, []byte(appSecret), nil, []byte("habitcoach reminder actions"))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("derive action key: %w", err)
	}
	return &ActionSigner{key: key, ttl: ttl, now: time.Now}, nil
}

func (s *ActionSigner) Sign(userID models.UserID, habitID models.HabitID, status models.Status) (string, error) {
	now := s.now()
	claims := ActionClaims{
		UserID:    userID,
		HabitID:   habitID,
		Status:    status,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.key)
}

func (s *ActionSigner) Validate(tokenString string) (*ActionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &ActionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.key, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*ActionClaims)
	if !ok || !token.Valid || claims.TokenType != tokenType {
		return nil, ErrInvalidToken
	}
	if _, err := models.ParseStatus(string(claims.Status)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}
