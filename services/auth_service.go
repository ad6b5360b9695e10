package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

var ErrAuthInvalidCredentials = fmt.Errorf("%w: invalid username or password", ErrAuthenticationFailed)

const (
	defaultSessionTTL = 24 * time.Hour
	jwtClaimRole      = "role"
	roleAdmin         = "admin"
)

// AdminClaims is the payload of an admin session token.
type AdminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type AuthService interface {
	Login(ctx context.Context, username, password string) (token string, expiresAt time.Time, err error)
	// ParseToken validates a session token and returns its claims.
	ParseToken(token string) (*AdminClaims, error)
}

type AuthConfig struct {
	Username     string
	PasswordHash []byte
	Secret       []byte
	TTL          time.Duration
}

type authService struct {
	cfg AuthConfig
	now func() time.Time
}

// HashPassword bcrypt-hashes the configured admin password once at startup.
func HashPassword(password string) ([]byte, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash admin password: %w", err)
	}
	return hash, nil
}

func NewAuthService(cfg AuthConfig) (AuthService, error) {
	if cfg.Username == "" || len(cfg.PasswordHash) == 0 {
		return nil, errors.New("admin username and password hash are required")
	}
	if len(cfg.Secret) == 0 {
		return nil, errors.New("jwt secret is required")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = defaultSessionTTL
	}
	return &authService{cfg: cfg, now: time.Now}, nil
}

func (s *authService) Login(_ context.Context, username, password string) (string, time.Time, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.cfg.Username)) == 1
	err := bcrypt.CompareHashAndPassword(s.cfg.PasswordHash, []byte(password))
	if err != nil && !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return "", time.Time{}, fmt.Errorf("failed to compare password hash: %w", err)
	}
	if err != nil || !userOK {
		return "", time.Time{}, ErrAuthInvalidCredentials
	}

	now := s.now()
	expiresAt := now.Add(s.cfg.TTL)
	claims := AdminClaims{
		Role: roleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.cfg.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return token, expiresAt, nil
}

func (s *authService) ParseToken(token string) (*AdminClaims, error) {
	claims := &AdminClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.cfg.Secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: invalid or expired session", ErrAuthenticationFailed)
	}
	if claims.Role != roleAdmin {
		return nil, fmt.Errorf("%w: token lacks the %q %s", ErrAuthenticationFailed, roleAdmin, jwtClaimRole)
	}
	return claims, nil
}
