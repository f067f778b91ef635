package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt"
)

// TokenValidator signs and verifies HS256 access tokens. Tokens are issued by the
// account service; this process only verifies them, and signs them in tests.
type TokenValidator struct {
	secret []byte
}

func NewTokenValidator(secret string) (*TokenValidator, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is empty")
	}
	return &TokenValidator{secret: []byte(secret)}, nil
}

// GenerateToken creates a signed JWT token for subject that expires after duration.
func (v *TokenValidator) GenerateToken(subject string, duration time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub": subject,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(duration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secret)
}

// ValidateToken parses and validates a token string and returns the token if valid.
func (v *TokenValidator) ValidateToken(tokenString string) (*jwt.Token, error) {
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Ensure that the token's signing method is HMAC.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return v.secret, nil
	})
}

// ExtractIDFromToken returns the subject of a valid token.
func (v *TokenValidator) ExtractIDFromToken(tokenString string) (string, error) {
	token, err := v.ValidateToken(tokenString)
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", errors.New("invalid token")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", errors.New("token does not contain a valid 'sub' claim")
	}
	return sub, nil
}
