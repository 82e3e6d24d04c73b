package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"go-taskboard/internal/metrics"
	"go-taskboard/internal/model"
	"go-taskboard/internal/security"
	"go-taskboard/pkg/apierror"
)

const (
	opRegister = "register"
	opLogin    = "login"
	opRefresh  = "refresh"
)

// UserStore is the credential persistence the orchestrator depends on.
// Lookups report a missing record with model.ErrUserNotFound and Create
// reports a duplicate email with model.ErrUserAlreadyExists.
type UserStore interface {
	FindByID(ctx context.Context, id int64) (model.User, error)
	FindByEmail(ctx context.Context, email string) (model.User, error)
	Create(ctx context.Context, u model.User) (model.User, error)
}

// AuthService drives register, login and refresh. It holds no mutable state
// and is safe for concurrent use.
type AuthService struct {
	users     UserStore
	issuer    *security.TokenIssuer
	validator *security.TokenValidator
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func NewAuthService(tokens security.TokenConfig, users UserStore, m *metrics.Metrics, logger *slog.Logger) (*AuthService, error) {
	if users == nil {
		return nil, errors.New("auth service requires a user store")
	}
	if logger == nil {
		logger = slog.Default()
	}

	issuer, err := security.NewTokenIssuer(tokens)
	if err != nil {
		return nil, fmt.Errorf("token issuer: %w", err)
	}
	validator, err := security.NewTokenValidator(tokens)
	if err != nil {
		return nil, fmt.Errorf("token validator: %w", err)
	}

	return &AuthService{
		users:     users,
		issuer:    issuer,
		validator: validator,
		metrics:   m,
		logger:    logger.With("component", "auth.service"),
	}, nil
}

func (s *AuthService) Register(ctx context.Context, email string, password string) (pair model.TokenPair, err error) {
	defer func() { s.observe(opRegister, err) }()

	req := model.RegisterRequest{Email: normalizeEmail(email), Password: password}
	if err := validateRequest(req); err != nil {
		return model.TokenPair{}, err
	}

	_, err = s.users.FindByEmail(ctx, req.Email)
	switch {
	case err == nil:
		// Distinct from other failures, which confirms the account exists.
		return model.TokenPair{}, credentialExists(req.Email)
	case !errors.Is(err, model.ErrUserNotFound):
		return model.TokenPair{}, fmt.Errorf("register: look up credential: %w", err)
	}

	secret, err := security.HashPassword(req.Password)
	if err != nil {
		s.logger.Error("hashing password failed", "error", err)
		return model.TokenPair{}, creationFailed()
	}

	user, err := s.users.Create(ctx, model.User{
		Email:        req.Email,
		PasswordHash: secret,
		IsActive:     true,
	})
	if errors.Is(err, model.ErrUserAlreadyExists) {
		return model.TokenPair{}, credentialExists(req.Email)
	}
	if err != nil {
		s.logger.Error("persisting credential failed", "email", req.Email, "error", err)
		return model.TokenPair{}, creationFailed()
	}

	s.logger.Info("credential registered", "user_id", user.ID, "email", user.Email)
	return s.issueTokenPair(user)
}

func (s *AuthService) Login(ctx context.Context, email string, password string) (pair model.TokenPair, err error) {
	defer func() { s.observe(opLogin, err) }()

	req := model.LoginRequest{Email: normalizeEmail(email), Password: password}
	if err := validateRequest(req); err != nil {
		return model.TokenPair{}, err
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if errors.Is(err, model.ErrUserNotFound) {
		return model.TokenPair{}, invalidCredentials()
	}
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("login: look up credential: %w", err)
	}

	if !security.VerifyPassword(req.Password, user.PasswordHash) {
		return model.TokenPair{}, invalidCredentials()
	}

	return s.issueTokenPair(user)
}

// Refresh exchanges a refresh token for a new pair. The token's expiry is not
// enforced; claims are rebuilt from the stored record rather than copied.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (pair model.TokenPair, err error) {
	defer func() { s.observe(opRefresh, err) }()

	req := model.RefreshRequest{RefreshToken: strings.TrimSpace(refreshToken)}
	if err := validateRequest(req); err != nil {
		return model.TokenPair{}, err
	}

	claims, ok := s.validator.ValidateIgnoringExpiry(req.RefreshToken)
	if !ok {
		return model.TokenPair{}, apierror.New("INVALID_TOKEN", "invalid token", "", http.StatusUnauthorized)
	}

	user, err := s.users.FindByEmail(ctx, claims.Email)
	if errors.Is(err, model.ErrUserNotFound) {
		return model.TokenPair{}, apierror.New("USER_NOT_FOUND", "user not found", "", http.StatusUnauthorized)
	}
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("refresh: look up credential: %w", err)
	}

	return s.issueTokenPair(user)
}

// ValidateAccessToken applies the strict access policy for the auth middleware.
func (s *AuthService) ValidateAccessToken(token string) (*model.AuthClaims, error) {
	claims, err := s.validator.ValidateAccess(token)
	if err != nil {
		s.logger.Debug("access token rejected", "error", err)
		return nil, apierror.New("INVALID_TOKEN", "invalid or expired token", "", http.StatusUnauthorized)
	}

	return &claims, nil
}

func (s *AuthService) GetUser(ctx context.Context, id int64) (model.AuthUser, error) {
	user, err := s.users.FindByID(ctx, id)
	if errors.Is(err, model.ErrUserNotFound) {
		return model.AuthUser{}, apierror.New("NOT_FOUND", "user not found", "", http.StatusNotFound)
	}
	if err != nil {
		return model.AuthUser{}, fmt.Errorf("get user: %w", err)
	}

	return user.View(), nil
}

func (s *AuthService) issueTokenPair(user model.User) (model.TokenPair, error) {
	claims := user.Claims()

	accessToken, _, err := s.issuer.GenerateAccessToken(claims)
	if err != nil {
		return model.TokenPair{}, err
	}

	refreshToken, refreshExpiresAt, err := s.issuer.GenerateRefreshToken(claims)
	if err != nil {
		return model.TokenPair{}, err
	}

	s.metrics.TokensIssued("access", 1)
	s.metrics.TokensIssued("refresh", 1)

	return model.TokenPair{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		TokenType:        "Bearer",
		ExpiresIn:        int64(s.issuer.AccessTTL().Seconds()),
		RefreshExpiresAt: refreshExpiresAt,
		User:             user.View(),
	}, nil
}

func (s *AuthService) observe(operation string, err error) {
	outcome := metrics.OutcomeSuccess
	switch {
	case err == nil:
	case apierror.StatusOf(err) < http.StatusInternalServerError:
		outcome = metrics.OutcomeRejected
	default:
		outcome = metrics.OutcomeError
		s.logger.Error("auth operation failed", "operation", operation, "error", err)
	}

	s.metrics.AuthOperation(operation, outcome)
}

func validateRequest(req any) error {
	field, err := model.Validate(req)
	if err != nil {
		return apierror.New("BAD_REQUEST", "invalid "+strings.ReplaceAll(field, "_", " "), field, http.StatusBadRequest)
	}

	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func credentialExists(email string) error {
	return apierror.New("ALREADY_EXISTS", "credential already exists", email, http.StatusConflict)
}

func creationFailed() error {
	return apierror.New("CREATION_FAILED", "could not create credential", "", http.StatusInternalServerError)
}

func invalidCredentials() error {
	return apierror.New("INVALID_CREDENTIALS", "invalid email or password", "", http.StatusUnauthorized)
}
