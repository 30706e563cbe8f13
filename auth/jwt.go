package auth

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour

	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

var secret = []byte(os.Getenv("JWT_SECRET"))

// SetSecret replaces the signing key. Called once at boot with the
// configured secret.
func SetSecret(s string) {
	secret = []byte(s)
}

func GenerateAccessToken(userID uint64, tokenVersion uint64) (string, error) {
	return generate(userID, tokenVersion, tokenTypeAccess, accessTokenTTL)
}

func GenerateRefreshToken(userID uint64, tokenVersion uint64) (string, error) {
	return generate(userID, tokenVersion, tokenTypeRefresh, refreshTokenTTL)
}

func generate(userID, tokenVersion uint64, typ string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id":       userID,
		"token_version": tokenVersion,
		"typ":           typ,
		"exp":           time.Now().Add(ttl).Unix(),
		"iat":           time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func VerifyJWT(tokenString string) (*jwt.Token, error) {
	jwtToken, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}

	if !jwtToken.Valid {
		return nil, errors.New("token invalid")
	}

	return jwtToken, nil
}

// GetDataFromToken extracts the user id and token version.
func GetDataFromToken(token *jwt.Token) (uint64, uint64, error) {
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, 0, errors.New("invalid claims")
	}

	// numbers decode as float64
	userID, ok := claims["user_id"].(float64)
	if !ok {
		return 0, 0, errors.New("user_id claim missing")
	}
	version, ok := claims["token_version"].(float64)
	if !ok {
		return 0, 0, errors.New("token_version claim missing")
	}

	return uint64(userID), uint64(version), nil
}

// IsRefreshToken reports whether the token was issued by GenerateRefreshToken.
func IsRefreshToken(token *jwt.Token) bool {
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return false
	}
	typ, _ := claims["typ"].(string)
	return typ == tokenTypeRefresh
}
