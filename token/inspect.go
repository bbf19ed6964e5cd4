package token

import (
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-elearn-client/internal/utils"
	"github.com/pkg/errors"
)

var ErrMalformedToken = errors.New("malformed token")

// Claims is what the client can read from a bearer token without the signing key.
// Nothing here is trusted; it only drives display and expiry hints.
type Claims struct {
	Subject   string
	Email     string
	Role      string
	Roles     []string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Inspect decodes a JWT's claims without verifying the signature
func Inspect(rawToken string) (*Claims, error) {
	if strings.TrimSpace(rawToken) == "" {
		return nil, ErrMalformedToken
	}

	parsed, _, err := jwtlib.NewParser().ParseUnverified(rawToken, jwtlib.MapClaims{})
	if err != nil {
		return nil, errors.Wrap(ErrMalformedToken, err.Error())
	}
	claims, ok := parsed.Claims.(jwtlib.MapClaims)
	if !ok {
		return nil, errors.Wrap(ErrMalformedToken, "error extracting claims")
	}

	c := &Claims{}
	if sub, err := claims.GetSubject(); err == nil {
		c.Subject = sub
	}
	if c.Subject == "" {
		c.Subject, _ = claims["id"].(string)
	}
	c.Email, _ = claims["email"].(string)
	c.Role, _ = claims["role"].(string)
	c.Roles = utils.ToStringSlice(claims["roles"])
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		c.IssuedAt = iat.Time
	}
	return c, nil
}

// Expired reports whether the token carries an exp claim that is before now
func (c *Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// TimeLeft returns the remaining validity, zero when unknown or already expired
func (c *Claims) TimeLeft(now time.Time) time.Duration {
	if c.ExpiresAt.IsZero() || now.After(c.ExpiresAt) {
		return 0
	}
	return c.ExpiresAt.Sub(now)
}
