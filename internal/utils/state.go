package utils // package utils provides helper functions for the OAuth state token

import (
	"errors" // error values for verification failures
	"time"   // expiration handling

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// stateTTL bounds how long an authorization redirect stays usable. Ten
// minutes is plenty for a human clicking through the Strava consent page.
const stateTTL = 10 * time.Minute

// NewStateToken builds and signs the HS256 JWT sent as the OAuth `state`
// parameter. The token carries no user data; it only proves that the
// callback follows a redirect this server issued recently.
func NewStateToken(secret string) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"purpose": "oauth-state",
		"exp":     now.Add(stateTTL).Unix(),
		"iat":     now.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}

// VerifyStateToken checks the signature, expiry and purpose of a state
// token produced by NewStateToken.
func VerifyStateToken(secret, raw string) error {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		// Type assert the signing method to HMAC; reject others.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return errors.New("invalid state token")
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok || claims["purpose"] != "oauth-state" {
		return errors.New("invalid state token")
	}
	return nil
}
