package services

import (
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// AuthService is a soft gate for the admin pages, not a security boundary.
// The shared secret is the current wall-clock time as "HHmm" (14:30 ->
// "1430"), so anyone watching a clock can get in. That is acceptable for a
// one-day school event and documented as a known weak point.
type AuthService struct {
	secret       []byte
	passwordHash string
	now          func() time.Time
}

// NewAuthService builds the gate. adminPasswordHash may be empty; when set
// it is a bcrypt hash of a static password accepted in addition to the
// time-derived code.
func NewAuthService(jwtSecret, adminPasswordHash string) *AuthService {
	return &AuthService{
		secret:       []byte(jwtSecret),
		passwordHash: adminPasswordHash,
		now:          time.Now,
	}
}

// CheckPassword reports whether candidate grants admin access at this
// moment. The time-derived code only matches during the exact minute.
func (s *AuthService) CheckPassword(candidate string) bool {
	code := s.now().Format("1504")
	if subtle.ConstantTimeCompare([]byte(candidate), []byte(code)) == 1 {
		return true
	}
	if s.passwordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(candidate)) == nil
}

// IssueToken signs an admin session token. There is deliberately no expiry
// claim: once logged in, the session lasts until an explicit logout.
func (s *AuthService) IssueToken() (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"admin": true,
		"iat":   s.now().Unix(),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}
