package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/maheshrc27/autopost/internal/transfer"
)

const stateDelimiter = "-"

// GenerateState builds the OAuth state for userID: "<userID>-<unix millis>"
// signed as a short-lived JWT.
func GenerateState(secretKey, userID string, now time.Time, ttl time.Duration) (string, error) {
	claims := transfer.StateClaims{
		Payload: fmt.Sprintf("%s%s%d", userID, stateDelimiter, now.UnixMilli()),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secretKey))
}

// ParseState verifies the state signature and expiry and returns the user id
// carried in the first segment of its payload.
func ParseState(secretKey, state string) (string, error) {
	claims := &transfer.StateClaims{}
	if err := parseHMAC(secretKey, state, claims); err != nil {
		return "", err
	}
	userID, _, _ := strings.Cut(claims.Payload, stateDelimiter)
	if userID == "" {
		return "", ErrInvalidToken
	}
	return userID, nil
}
