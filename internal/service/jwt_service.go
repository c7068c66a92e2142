package service

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	DefaultSessionTTL = 7 * 24 * time.Hour
	tokenIssuer       = "notes-api"
)

// JWTService emite y valida tokens de sesion firmados (HS256).
// Es una funcion pura del token y el secreto; no guarda estado.
type JWTService struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

type Claims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

var (
	ErrJWTSecretMissing = errors.New("jwt secret not configured")
	ErrJWTInvalid       = errors.New("jwt invalid")
	ErrJWTExpired       = errors.New("jwt expired")
)

// NewJWTService falla si no hay secreto: es un error de despliegue.
func NewJWTService(secret string, ttl time.Duration) (*JWTService, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrJWTSecretMissing
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &JWTService{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: tokenIssuer,
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

// Issue firma un token para userID y devuelve su expiracion.
func (s *JWTService) Issue(userID string) (string, time.Time, error) {
	if strings.TrimSpace(userID) == "" {
		return "", time.Time{}, ErrJWTInvalid
	}
	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Verify valida firma, algoritmo, expiracion e issuer y devuelve los claims.
func (s *JWTService) Verify(tokenString string) (Claims, error) {
	if strings.TrimSpace(tokenString) == "" {
		return Claims{}, ErrJWTInvalid
	}
	var claims Claims
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	_, err := parser.ParseWithClaims(tokenString, &claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrJWTExpired
		}
		return Claims{}, ErrJWTInvalid
	}
	if !s.isValidClaims(claims) {
		return Claims{}, ErrJWTInvalid
	}
	return claims, nil
}

func (s *JWTService) isValidClaims(claims Claims) bool {
	if strings.TrimSpace(claims.UserID) == "" {
		return false
	}
	if claims.Subject != claims.UserID {
		return false
	}
	return strings.TrimSpace(claims.Issuer) == s.issuer
}
