package jwtutil

import (
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/pthv11/-pension-fund/pkg/config"
)

// UserClaims represents the JWT claims for an authenticated user
type UserClaims struct {
	UserID uint `json:"user_id"`
	jwt.RegisteredClaims
}

// JWT issues and validates signed bearer tokens. Tokens are stateless:
// validity is determined solely by signature and expiration.
type JWT struct {
	secret []byte
	ttl    time.Duration
}

// New creates a JWT utility from configuration
func New(cfg *config.JWTConfig) *JWT {
	return &JWT{
		secret: []byte(cfg.SigningKey),
		ttl:    time.Duration(cfg.ExpirationHours) * time.Hour,
	}
}

// GenerateToken creates a signed token carrying the user ID
func (j *JWT) GenerateToken(userID uint) (string, error) {
	claims := UserClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(j.ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.secret)
}

// ValidateToken validates and parses the token. It returns an error for a
// malformed token, a bad signature or an expired claim set.
func (j *JWT) ValidateToken(tokenString string) (*UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return j.secret, nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*UserClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrSignatureInvalid
}
