package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anonto42/wingit/backend/internal/models"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

var (
	ErrMalformed        = errors.New("malformed token")
	ErrExpired          = errors.New("token expired")
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrInvalidIssuer    = errors.New("invalid token issuer")
	ErrRevoked          = errors.New("token revoked")
)

// Claims is the JWT payload. Subject carries the username and ID the jti
// used by the blacklist.
type Claims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService issues and validates HS256 bearer tokens.
type TokenService struct {
	secret    []byte
	ttl       time.Duration
	issuer    string
	blacklist Blacklist
}

func NewTokenService(secret string, ttl time.Duration, issuer string, blacklist Blacklist) *TokenService {
	return &TokenService{
		secret:    []byte(secret),
		ttl:       ttl,
		issuer:    issuer,
		blacklist: blacklist,
	}
}

func (s *TokenService) TTL() time.Duration { return s.ttl }

// Generate signs a token for the user and returns it with its expiry.
func (s *TokenService) Generate(user *models.User) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.ttl)
	claims := &Claims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.Username,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return token, expiresAt, nil
}

// Parse validates the token and rejects revoked ones.
func (s *TokenService) Parse(ctx context.Context, tokenStr string) (*Claims, error) {
	claims, err := s.verify(tokenStr)
	if err != nil {
		return nil, err
	}
	revoked, err := s.blacklist.Contains(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("check blacklist: %w", err)
	}
	if revoked {
		return nil, ErrRevoked
	}
	return claims, nil
}

// Revoke blacklists the token until it expires. Tokens that do not verify
// are ignored since they can never authenticate anyway.
func (s *TokenService) Revoke(ctx context.Context, tokenStr string) error {
	claims, err := s.verify(tokenStr)
	if err != nil {
		return nil
	}
	return s.blacklist.Add(ctx, claims.ID, claims.ExpiresAt.Time)
}

func (s *TokenService) verify(tokenStr string) (*Claims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := &Claims{}
	token, err := parser.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrInvalidSignature
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpired
		default:
			return nil, ErrMalformed
		}
	}
	if !token.Valid || claims.ID == "" || claims.ExpiresAt == nil {
		return nil, ErrMalformed
	}
	if claims.Issuer != s.issuer {
		return nil, ErrInvalidIssuer
	}
	return claims, nil
}
