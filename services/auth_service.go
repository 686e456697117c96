package services

import (
	"errors"
	"time"

	"rental-pricing-api/config"

	"github.com/golang-jwt/jwt/v5"
)

const ScopePredict = "predict"

// AuthService issues and checks HS256 service tokens. With an empty
// secret it is disabled and every request passes.
type AuthService struct {
	jwtSecret []byte
	expiryH   int
}

func NewAuthService(cfg config.JWTConfig) *AuthService {
	return &AuthService{
		jwtSecret: []byte(cfg.Secret),
		expiryH:   cfg.ExpiryHours,
	}
}

func (s *AuthService) Enabled() bool {
	return s != nil && len(s.jwtSecret) > 0
}

type Claims struct {
	Service string `json:"service"`
	Scope   string `json:"scope"`
	jwt.RegisteredClaims
}

func (s *AuthService) GenerateToken(service, scope string) (string, error) {
	if !s.Enabled() {
		return "", errors.New("token signing disabled: no secret configured")
	}
	now := time.Now()
	claims := Claims{
		Service: service,
		Scope:   scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: service,
			ExpiresAt: jwt.NewNumericDate(now.Add(
				time.Duration(s.expiryH) * time.Hour,
			)),
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{},
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return s.jwtSecret, nil
		},
	)
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// Authorize validates a token and checks that it carries scope.
func (s *AuthService) Authorize(tokenStr, scope string) (*Claims, error) {
	claims, err := s.ValidateToken(tokenStr)
	if err != nil {
		return nil, &AppError{Kind: KindUnauthorized, Msg: "invalid or expired token", Err: err}
	}
	if claims.Scope != scope {
		return nil, &AppError{Kind: KindUnauthorized, Msg: "token scope does not allow " + scope}
	}
	return claims, nil
}
