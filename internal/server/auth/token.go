// Package auth implements credential primitives for the adminboard server:
// signed expiring tokens (JWT, HS256) and bcrypt password hashing.
package auth

import (
	"errors"
	"time"

	"github.com/dkravets/adminboard/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenClass scopes what a token may be used for.
type TokenClass string

const (
	// ClassSession marks tokens that satisfy request authentication.
	ClassSession TokenClass = "session"
	// ClassReset marks single-purpose password-reset tokens. The gate
	// never accepts them, whatever their expiry.
	ClassReset TokenClass = "reset"
)

// ResetTokenValidity is the fixed lifetime of password-reset tokens.
const ResetTokenValidity = 24 * time.Hour

// Claims carries the registered claims plus the token class.
// Subject holds the admin email.
type Claims struct {
	jwt.RegisteredClaims
	Class TokenClass `json:"class"`
}

// IssueToken produces a signed HS256 token for subject with the given class
// and validity. Tokens issued here verify in any process holding the same
// secret; nothing about issuance is instance-local. The jti makes every
// token distinct, so two logins in the same second still yield different
// strings and session binding can tell them apart.
func IssueToken(subject string, class TokenClass, secretKey []byte, validity time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
			ID:        uuid.NewString(),
		},
		Class: class,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// VerifyToken checks signature and expiry and returns the decoded claims.
// Expired tokens yield common.ErrTokenExpired; malformed tokens, wrong
// signatures and wrong signing methods yield common.ErrInvalidToken.
// Callers that need different messaging can tell the two apart; both mean
// "unauthenticated".
func VerifyToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, common.ErrInvalidToken
		}
		return secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
