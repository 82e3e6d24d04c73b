package security

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"go-taskboard/internal/model"
)

// MinSecretLength is the minimum number of bytes of HMAC key material.
const MinSecretLength = 32

var ErrInvalidToken = model.ErrInvalidToken

// TokenConfig is shared by the issuer and the validator. Both token kinds are
// signed with the same Secret.
type TokenConfig struct {
	Secret     []byte
	Issuer     string
	Audience   string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	ClockSkew  time.Duration
}

func (c TokenConfig) Validate() error {
	if len(c.Secret) < MinSecretLength {
		return fmt.Errorf("token secret must be at least %d bytes, got %d", MinSecretLength, len(c.Secret))
	}
	if strings.TrimSpace(c.Issuer) == "" {
		return errors.New("token issuer is required")
	}
	if strings.TrimSpace(c.Audience) == "" {
		return errors.New("token audience is required")
	}
	if c.AccessTTL <= 0 {
		return errors.New("access token lifetime must be positive")
	}
	if c.RefreshTTL <= 0 {
		return errors.New("refresh token lifetime must be positive")
	}
	if c.ClockSkew < 0 {
		return errors.New("clock skew cannot be negative")
	}

	return nil
}

// tokenClaims is the JWT payload. The email lives under "name" and the
// numeric user id is string-encoded under "userId".
type tokenClaims struct {
	Name   string `json:"name"`
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

func newTokenClaims(identity model.AuthClaims) tokenClaims {
	return tokenClaims{
		Name:   identity.Email,
		UserID: strconv.FormatInt(identity.UserID, 10),
	}
}

func (c *tokenClaims) identity() (model.AuthClaims, error) {
	if strings.TrimSpace(c.Name) == "" {
		return model.AuthClaims{}, errors.New("token has no name claim")
	}

	userID, err := strconv.ParseInt(c.UserID, 10, 64)
	if err != nil || userID <= 0 {
		return model.AuthClaims{}, fmt.Errorf("token has invalid userId claim %q", c.UserID)
	}

	return model.AuthClaims{UserID: userID, Email: c.Name}, nil
}
