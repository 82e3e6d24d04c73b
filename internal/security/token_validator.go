package security

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"go-taskboard/internal/model"
)

// TokenValidator checks tokens under two policies: ValidateAccess is strict,
// ValidateIgnoringExpiry only proves the token was signed by us with HS256.
type TokenValidator struct {
	cfg     TokenConfig
	now     func() time.Time
	strict  *jwt.Parser
	lenient *jwt.Parser
}

func NewTokenValidator(cfg TokenConfig) (*TokenValidator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	v := &TokenValidator{cfg: cfg, now: time.Now}
	hs256 := jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})

	v.strict = jwt.NewParser(
		hs256,
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithAudience(cfg.Audience),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(cfg.ClockSkew),
		jwt.WithTimeFunc(func() time.Time { return v.now() }),
	)
	v.lenient = jwt.NewParser(hs256, jwt.WithoutClaimsValidation())

	return v, nil
}

// ValidateAccess returns the identity of a valid access token. Every failure
// wraps ErrInvalidToken and yields zero claims.
func (v *TokenValidator) ValidateAccess(raw string) (model.AuthClaims, error) {
	claims := &tokenClaims{}
	if _, err := v.strict.ParseWithClaims(raw, claims, v.keyFunc); err != nil {
		return model.AuthClaims{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	identity, err := claims.identity()
	if err != nil {
		return model.AuthClaims{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	return identity, nil
}

// ValidateIgnoringExpiry verifies signature and algorithm only. Expiry,
// issuer and audience are not checked, which is what lets a refresh token
// outlive the access token it was issued with.
func (v *TokenValidator) ValidateIgnoringExpiry(raw string) (model.AuthClaims, bool) {
	claims := &tokenClaims{}
	token, err := v.lenient.ParseWithClaims(raw, claims, v.keyFunc)
	if err != nil || token == nil || !token.Valid {
		return model.AuthClaims{}, false
	}

	// The parser already restricts methods; the header is checked again so a
	// substituted alg can never slip through a future parser change.
	if alg, _ := token.Header["alg"].(string); alg != jwt.SigningMethodHS256.Alg() || token.Method.Alg() != alg {
		return model.AuthClaims{}, false
	}

	identity, err := claims.identity()
	if err != nil {
		return model.AuthClaims{}, false
	}

	return identity, true
}

func (v *TokenValidator) keyFunc(token *jwt.Token) (any, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method %q", token.Method.Alg())
	}

	return v.cfg.Secret, nil
}
