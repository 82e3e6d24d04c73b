package security

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"go-taskboard/internal/model"
)

type TokenIssuer struct {
	cfg TokenConfig
	now func() time.Time
}

func NewTokenIssuer(cfg TokenConfig) (*TokenIssuer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &TokenIssuer{cfg: cfg, now: time.Now}, nil
}

// GenerateAccessToken signs a short-lived token bound to the configured
// issuer and audience. The returned time is the token's expiry.
func (i *TokenIssuer) GenerateAccessToken(identity model.AuthClaims) (string, time.Time, error) {
	claims := newTokenClaims(identity)
	claims.Issuer = i.cfg.Issuer
	claims.Audience = jwt.ClaimStrings{i.cfg.Audience}

	return i.sign(claims, i.cfg.AccessTTL)
}

// GenerateRefreshToken signs a longer-lived token without issuer or audience.
func (i *TokenIssuer) GenerateRefreshToken(identity model.AuthClaims) (string, time.Time, error) {
	return i.sign(newTokenClaims(identity), i.cfg.RefreshTTL)
}

func (i *TokenIssuer) AccessTTL() time.Duration {
	return i.cfg.AccessTTL
}

func (i *TokenIssuer) sign(claims tokenClaims, ttl time.Duration) (string, time.Time, error) {
	now := i.now().UTC().Truncate(time.Second)
	expiresAt := now.Add(ttl)

	claims.ID = uuid.NewString()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(expiresAt)

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.cfg.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}

	return signed, expiresAt, nil
}
