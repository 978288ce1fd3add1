package security

import (
	"errors"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenManager mints and describes session credentials. A credential is a
// stateless HS256 JWT carrying the user id, role and a token id (jti); the
// jti is what the logout denylist keys on.
type TokenManager struct {
	auth   *jwtauth.JWTAuth
	expiry time.Duration
}

func NewTokenManager(key []byte, expiry time.Duration) *TokenManager {
	return &TokenManager{
		auth:   jwtauth.New("HS256", key, nil),
		expiry: expiry,
	}
}

// Auth exposes the underlying verifier for the router's jwtauth middleware.
func (tm *TokenManager) Auth() *jwtauth.JWTAuth {
	return tm.auth
}

func (tm *TokenManager) Expiry() time.Duration {
	return tm.expiry
}

// Generate returns the signed token and its jti.
func (tm *TokenManager) Generate(userID, role string) (string, string, error) {
	jti := uuid.NewString()
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"jti":     jti,
		"exp":     now.Add(tm.expiry).Unix(),
		"iat":     now.Unix(),
	}
	_, tokenString, err := tm.auth.Encode(claims)
	if err != nil {
		return "", "", err
	}
	return tokenString, jti, nil
}

// Helper functions to extract claims, used by middleware and handlers.

func GetUserIDFromClaims(claims jwt.MapClaims) (string, error) {
	id, ok := claims["user_id"].(string)
	if !ok {
		return "", errors.New("user_id claim is missing or not a string")
	}
	return id, nil
}

func GetUserRoleFromClaims(claims jwt.MapClaims) (string, error) {
	role, ok := claims["role"].(string)
	if !ok {
		return "", errors.New("role claim is missing or not a string")
	}
	return role, nil
}

func GetTokenIDFromClaims(claims jwt.MapClaims) (string, error) {
	jti, ok := claims["jti"].(string)
	if !ok {
		return "", errors.New("jti claim is missing or not a string")
	}
	return jti, nil
}
