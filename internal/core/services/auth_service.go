package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/vncsmyrnk/polls/internal/core/domain"
	"github.com/vncsmyrnk/polls/internal/core/ports"
)

const adminRole = "admin"

type AuthService struct {
	jwtSecret []byte
	now       func() time.Time
}

func NewAuthService(jwtSecret string, now func() time.Time) ports.AuthService {
	if now == nil {
		now = time.Now
	}
	return &AuthService{
		jwtSecret: []byte(jwtSecret),
		now:       now,
	}
}

func (s *AuthService) IssueAdminToken(subject string, ttl time.Duration) (string, error) {
	if len(s.jwtSecret) == 0 {
		return "", errors.New("jwt secret is not configured")
	}

	issuedAt := s.now()
	claims := jwt.MapClaims{
		"sub":  subject,
		"role": adminRole,
		"exp":  issuedAt.Add(ttl).Unix(),
		"iat":  issuedAt.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func (s *AuthService) VerifyAdminToken(tokenStr string) (string, error) {
	if len(s.jwtSecret) == 0 {
		return "", domain.ErrUnauthorized
	}

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", domain.ErrUnauthorized
	}
	if role, _ := claims["role"].(string); role != adminRole {
		return "", fmt.Errorf("%w: missing admin role", domain.ErrUnauthorized)
	}

	subject, err := claims.GetSubject()
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	return subject, nil
}
