package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// expiryBuffer is subtracted from the token's remaining lifetime when
// checking expiry. A token that expires within the buffer is treated as
// already expired so it cannot run out mid-operation.
const expiryBuffer = time.Hour

// decodeExpiry extracts the exp claim from an access token without
// verifying its signature. See the package docs for why verification is
// skipped here.
func decodeExpiry(token string) (time.Time, error) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, &DecodeError{Op: "token claims", Err: err}
	}

	if claims.ExpiresAt == nil {
		return time.Time{}, &DecodeError{Op: "token claims", Err: fmt.Errorf("missing exp claim")}
	}

	return claims.ExpiresAt.Time, nil
}

// IsTokenExpired reports whether the access token is expired or expires
// within the safety buffer. Any token that cannot be decoded counts as
// expired: re-authenticating beats operating with an unreadable token.
func (c *Client) IsTokenExpired(token string) bool {
	exp, err := decodeExpiry(token)
	if err != nil {
		c.logger.Warn("Failed to decode token for expiry check", "error", err.Error())
		return true
	}

	return !exp.After(c.now().Add(expiryBuffer))
}

// TokenExpiry returns the token's exp claim as a timestamp. It reports an
// error for tokens whose claims cannot be decoded.
func (c *Client) TokenExpiry(token string) (time.Time, error) {
	return decodeExpiry(token)
}
