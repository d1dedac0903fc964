package server

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-auth-client/internal/errors"
)

// SessionCodec signs and verifies the opaque session identifier for cookie
// transport. The rest of the system only ever sees the raw identifier.
type SessionCodec struct {
	secret []byte
}

// NewSessionCodec creates a codec keyed with the session secret
func NewSessionCodec(secret string) *SessionCodec {
	return &SessionCodec{secret: []byte(secret)}
}

// Sign wraps a session identifier in an HS256-signed token
func (c *SessionCodec) Sign(sessionID string) (string, error) {
	claims := jwt.MapClaims{
		"sid": sessionID,
		"iat": time.Now().Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", errors.Wrapf(err, "[SessionCodec.Sign] SignedString")
	}
	return signed, nil
}

// Verify checks the signature and returns the raw session identifier
func (c *SessionCodec) Verify(value string) (string, error) {
	parsed, err := jwt.Parse(value, func(*jwt.Token) (any, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", errors.Wrapf(err, "[SessionCodec.Verify] jwt.Parse")
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.Wrapf(errors.ErrSessionNotFound, "[SessionCodec.Verify] unexpected claims type")
	}

	sessionID, ok := claims["sid"].(string)
	if !ok || sessionID == "" {
		return "", errors.Wrapf(errors.ErrSessionNotFound, "[SessionCodec.Verify] missing session identifier")
	}
	return sessionID, nil
}
