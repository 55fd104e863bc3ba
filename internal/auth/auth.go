package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token expired")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAuthDisabled       = errors.New("owner passcode not configured")
)

// OwnerSubject is the token subject of the single device owner.
const OwnerSubject = "owner"

// Claims represents the JWT claims the API relies on
type Claims struct {
	Subject string `json:"sub"`
	Exp     int64  `json:"exp"`
}

// Service handles authentication operations
type Service struct {
	jwtSecret    []byte
	tokenExp     time.Duration
	passcodeHash string
}

// NewService creates a new authentication service. An empty passcodeHash
// disables authentication.
func NewService(secret string, tokenExp time.Duration, passcodeHash string) (*Service, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	if tokenExp <= 0 {
		tokenExp = 24 * time.Hour
	}
	return &Service{
		jwtSecret:    []byte(secret),
		tokenExp:     tokenExp,
		passcodeHash: strings.TrimSpace(passcodeHash),
	}, nil
}

// Enabled reports whether requests must carry a token.
func (s *Service) Enabled() bool {
	return s.passcodeHash != ""
}

// HashPasscode hashes a passcode using bcrypt
func HashPasscode(passcode string) (string, error) {
	if err := ValidatePasscode(passcode); err != nil {
		return "", err
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(passcode), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash passcode: %w", err)
	}
	return string(bytes), nil
}

// ValidatePasscode validates passcode strength
func ValidatePasscode(passcode string) error {
	if len(passcode) < 4 {
		return errors.New("passcode must be at least 4 characters long")
	}
	return nil
}

// Login checks the owner passcode and issues a token.
func (s *Service) Login(passcode string) (string, error) {
	if !s.Enabled() {
		return "", ErrAuthDisabled
	}
	if bcrypt.CompareHashAndPassword([]byte(s.passcodeHash), []byte(passcode)) != nil {
		return "", ErrInvalidCredentials
	}
	return s.GenerateToken(OwnerSubject)
}

// GenerateToken generates a JWT token for subject
func (s *Service) GenerateToken(subject string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": subject,
		"exp": now.Add(s.tokenExp).Unix(),
		"iat": now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ValidateToken validates a JWT token and returns the claims
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	tokenString = strings.TrimPrefix(tokenString, "Bearer ")

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	subject, ok := claims["sub"].(string)
	if !ok || subject == "" {
		return nil, ErrInvalidToken
	}

	exp, ok := claims["exp"].(float64)
	if !ok {
		return nil, ErrInvalidToken
	}

	return &Claims{Subject: subject, Exp: int64(exp)}, nil
}

// ExtractTokenFromHeader extracts token from Authorization header
func (s *Service) ExtractTokenFromHeader(authHeader string) (string, error) {
	if authHeader == "" {
		return "", ErrInvalidToken
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", ErrInvalidToken
	}

	return parts[1], nil
}
