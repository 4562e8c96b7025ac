package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/doctorcare-api/internal/models"
)

// FallbackSecret signs tokens when JWT_SECRET is unset. It exists so a
// misconfigured deployment still boots; it is not a supported mode.
const FallbackSecret = "fallbacksecret"

// AdminTokenTTL is the fixed lifetime of administrator tokens.
const AdminTokenTTL = 7 * 24 * time.Hour

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	Role models.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256 identity tokens.
type TokenService struct {
	secret   []byte
	userTTL  time.Duration
	adminTTL time.Duration
	now      func() time.Time
}

func NewTokenService(secret string, userTTL time.Duration, log logrus.FieldLogger) *TokenService {
	if secret == "" {
		log.Warn("JWT_SECRET is NOT SET, signing tokens with the insecure fallback secret")
		secret = FallbackSecret
	}
	return &TokenService{
		secret:   []byte(secret),
		userTTL:  userTTL,
		adminTTL: AdminTokenTTL,
		now:      time.Now,
	}
}

// WithClock replaces the time source used for issuing and verifying tokens.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	s.now = now
	return s
}

// Issue signs a token for p and returns it with its expiry.
func (s *TokenService) Issue(p models.Principal) (string, time.Time, error) {
	if !p.Role.Valid() || p.ID.IsZero() {
		return "", time.Time{}, fmt.Errorf("cannot issue token for principal %q/%s", p.Role, p.ID.Hex())
	}
	ttl := s.userTTL
	if p.IsAdmin() {
		ttl = s.adminTTL
	}
	now := s.now()
	expiresAt := now.Add(ttl)
	claims := &Claims{
		Role: p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID.Hex(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify checks signature and expiry and resolves the token to a principal.
// Every failure is reported as ErrInvalidToken.
func (s *TokenService) Verify(tokenStr string) (models.Principal, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return models.Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !claims.Role.Valid() {
		return models.Principal{}, fmt.Errorf("%w: unknown role %q", ErrInvalidToken, claims.Role)
	}
	id, err := primitive.ObjectIDFromHex(claims.Subject)
	if err != nil {
		return models.Principal{}, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return models.Principal{Role: claims.Role, ID: id}, nil
}
